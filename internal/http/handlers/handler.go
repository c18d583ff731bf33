package handlers

import (
	"context"
	"strings"

	"menu-photo-services/internal/config"
	"menu-photo-services/internal/mirror"
	"menu-photo-services/internal/photoset"
	"menu-photo-services/internal/queue"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type PhotoMirror interface {
	Mirror(ctx context.Context, sourceTemplate string, identifiers []string) ([]mirror.Photo, error)
	URLTemplate() string
}

type Handler struct {
	DB     *pgxpool.Pool
	Logger *zap.Logger
	Config config.Config
	Queue  *queue.Client
	Mirror PhotoMirror

	// PhotoSet pins the curation file. When nil it is re-read from
	// Config.PhotoSetPath on every request.
	PhotoSet *photoset.PhotoSet
}

func (h *Handler) loadPhotoSet() (photoset.PhotoSet, error) {
	if h.PhotoSet != nil {
		return *h.PhotoSet, nil
	}
	path := strings.TrimSpace(h.Config.PhotoSetPath)
	if path == "" {
		path = "photoset.yaml"
	}
	return photoset.Load(path)
}
