package mirror

import (
	"context"
	"errors"
	"fmt"
	"path"
	"sort"
	"strings"
	"time"

	"menu-photo-services/internal/imageproc"
	"menu-photo-services/internal/sqlgen"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var ErrTooLarge = errors.New("photo exceeds the maximum size")

type PhotoStore interface {
	PutObject(ctx context.Context, key string, body []byte, contentType string, cacheControl string) (string, error)
	KeySet(ctx context.Context, prefix string) (map[string]bool, error)
	PublicURL(key string) string
	PublicTemplate(prefix string) string
}

type Config struct {
	SourceTemplate string
	Prefix         string
	MaxSide        int
	ThumbSize      int
	Quality        int
	MaxBytes       int64
	Concurrency    int
	Timeout        time.Duration
}

func (c Config) withDefaults() Config {
	if strings.TrimSpace(c.SourceTemplate) == "" {
		c.SourceTemplate = sqlgen.DefaultURLTemplate
	}
	c.Prefix = strings.Trim(strings.TrimSpace(c.Prefix), "/")
	if c.Prefix == "" {
		c.Prefix = "stock-photos"
	}
	if c.MaxSide <= 0 {
		c.MaxSide = 1200
	}
	if c.ThumbSize <= 0 {
		c.ThumbSize = 320
	}
	if c.Quality <= 0 {
		c.Quality = 82
	}
	if c.MaxBytes <= 0 {
		c.MaxBytes = 5 * 1024 * 1024
	}
	if c.Concurrency <= 0 {
		c.Concurrency = 4
	}
	if c.Timeout <= 0 {
		c.Timeout = 20 * time.Second
	}
	return c
}

type Photo struct {
	Identifier   string `json:"identifier"`
	URL          string `json:"url"`
	ThumbnailURL string `json:"thumbnailUrl"`
	Width        int    `json:"width,omitempty"`
	Height       int    `json:"height,omitempty"`
	Skipped      bool   `json:"skipped"`
}

// Mirrorer copies stock photos from their origin into the object store so
// menu pages never hotlink the catalog.
type Mirrorer struct {
	store  PhotoStore
	client *resty.Client
	cfg    Config
	logger *zap.Logger
}

func New(store PhotoStore, cfg Config, logger *zap.Logger) *Mirrorer {
	cfg = cfg.withDefaults()
	if logger == nil {
		logger = zap.NewNop()
	}
	client := resty.New().
		SetTimeout(cfg.Timeout).
		SetRetryCount(2).
		SetRetryWaitTime(500 * time.Millisecond).
		SetHeader("Accept", "image/*")
	return &Mirrorer{store: store, client: client, cfg: cfg, logger: logger}
}

func (m *Mirrorer) Prefix() string {
	return m.cfg.Prefix
}

// URLTemplate is the emitter template that points at mirrored photos.
func (m *Mirrorer) URLTemplate() string {
	return m.store.PublicTemplate(m.cfg.Prefix)
}

func (m *Mirrorer) photoKey(id string) string {
	return path.Join(m.cfg.Prefix, id+".jpg")
}

func (m *Mirrorer) thumbKey(id string) string {
	return path.Join(m.cfg.Prefix, "thumbs", id+".jpg")
}

// Mirror stores every distinct identifier once, fetching each from
// sourceTemplate (the photo set's url template). An empty template falls back
// to the configured one. Photos already present are skipped. Results are
// sorted by identifier.
func (m *Mirrorer) Mirror(ctx context.Context, sourceTemplate string, identifiers []string) ([]Photo, error) {
	sourceTemplate = strings.TrimSpace(sourceTemplate)
	if sourceTemplate == "" {
		sourceTemplate = m.cfg.SourceTemplate
	}
	if err := sqlgen.ValidateTemplate(sourceTemplate); err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(identifiers))
	seen := make(map[string]bool, len(identifiers))
	for _, id := range identifiers {
		id = strings.TrimSpace(id)
		if seen[id] {
			continue
		}
		if !sqlgen.ValidIdentifier(id) {
			return nil, fmt.Errorf("invalid photo identifier %q", id)
		}
		seen[id] = true
		ids = append(ids, id)
	}
	sort.Strings(ids)

	existing, err := m.store.KeySet(ctx, m.cfg.Prefix+"/")
	if err != nil {
		return nil, err
	}

	photos := make([]Photo, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(m.cfg.Concurrency)
	for i, id := range ids {
		g.Go(func() error {
			photo, err := m.mirrorOne(gctx, sourceTemplate, id, existing)
			if err != nil {
				return fmt.Errorf("mirror photo %s: %w", id, err)
			}
			photos[i] = photo
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return photos, nil
}

func (m *Mirrorer) mirrorOne(ctx context.Context, sourceTemplate string, id string, existing map[string]bool) (Photo, error) {
	key, thumb := m.photoKey(id), m.thumbKey(id)
	if existing[key] && existing[thumb] {
		return Photo{Identifier: id, URL: m.store.PublicURL(key), ThumbnailURL: m.store.PublicURL(thumb), Skipped: true}, nil
	}

	source := sqlgen.ExpandURL(sourceTemplate, id)
	resp, err := m.client.R().SetContext(ctx).Get(source)
	if err != nil {
		return Photo{}, err
	}
	if resp.IsError() {
		return Photo{}, fmt.Errorf("origin returned %s", resp.Status())
	}
	body := resp.Body()
	if int64(len(body)) > m.cfg.MaxBytes {
		return Photo{}, ErrTooLarge
	}
	if !imageproc.IsPhotoContentType(imageproc.SniffContentType(body)) {
		return Photo{}, imageproc.ErrNotImage
	}

	full, _, err := imageproc.FitInside(body, m.cfg.MaxSide, m.cfg.Quality)
	if err != nil {
		return Photo{}, err
	}
	small, _, err := imageproc.CoverSquare(body, m.cfg.ThumbSize, m.cfg.Quality)
	if err != nil {
		return Photo{}, err
	}

	url, err := m.store.PutObject(ctx, key, full.Data, "image/jpeg", "")
	if err != nil {
		return Photo{}, err
	}
	thumbURL, err := m.store.PutObject(ctx, thumb, small.Data, "image/jpeg", "")
	if err != nil {
		return Photo{}, err
	}

	m.logger.Info("stock photo mirrored",
		zap.String("identifier", id),
		zap.String("key", key),
		zap.Int("width", full.Width),
		zap.Int("height", full.Height),
	)
	return Photo{Identifier: id, URL: url, ThumbnailURL: thumbURL, Width: full.Width, Height: full.Height}, nil
}

// MirrorIdentifiers runs Mirror and reports how many photos were uploaded.
func (m *Mirrorer) MirrorIdentifiers(ctx context.Context, sourceTemplate string, identifiers []string) (int, error) {
	photos, err := m.Mirror(ctx, sourceTemplate, identifiers)
	if err != nil {
		return 0, err
	}
	uploaded := 0
	for _, p := range photos {
		if !p.Skipped {
			uploaded++
		}
	}
	m.logger.Info("stock photo mirror finished", zap.Int("requested", len(photos)), zap.Int("uploaded", uploaded))
	return uploaded, nil
}
