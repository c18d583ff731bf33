package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"menu-photo-services/internal/menusource"
	"menu-photo-services/internal/photoassign"
	"menu-photo-services/pkg/response"

	"go.uber.org/zap"
)

type assignmentRequest struct {
	Items   json.RawMessage `json:"items"`
	Title   string          `json:"title"`
	Publish bool            `json:"publish"`
}

func readAssignmentRequest(r *http.Request, maxBytes int64) (assignmentRequest, error) {
	var body assignmentRequest
	if r.Body == nil || r.Body == http.NoBody {
		return body, nil
	}
	data, err := io.ReadAll(io.LimitReader(r.Body, maxBytes+1))
	if err != nil {
		return body, err
	}
	if int64(len(data)) > maxBytes {
		return body, errBodyTooLarge
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return body, nil
	}
	if err := json.Unmarshal(data, &body); err != nil {
		return body, err
	}
	return body, nil
}

var errBodyTooLarge = errors.New("request body too large")

func (h *Handler) itemsFor(r *http.Request, body assignmentRequest) ([]photoassign.MenuItem, error) {
	raw := bytes.TrimSpace(body.Items)
	if len(raw) > 0 && !bytes.Equal(raw, []byte("null")) {
		return menusource.ParseJSON(raw)
	}
	if h.DB == nil {
		return nil, errNoItemSource
	}
	src := menusource.PostgresSource{
		Pool:       h.DB,
		Table:      h.Config.MenuTable,
		IDColumn:   h.Config.MenuIDColumn,
		NameColumn: h.Config.MenuNameCol,
	}
	return src.Items(r.Context())
}

var errNoItemSource = errors.New("no items in request and no database configured")

func writePhotoError(w http.ResponseWriter, err *photoassign.Error) {
	status := http.StatusUnprocessableEntity
	response.JSON(w, status, map[string]any{
		"success":    false,
		"error":      string(err.Code),
		"kind":       string(err.Kind),
		"message":    err.Message,
		"statusCode": status,
		"details":    err.Details,
	})
}

// writePlanError maps typed errors to 422 and everything else to 500.
func (h *Handler) writePlanError(w http.ResponseWriter, err error, action string) {
	if perr, ok := photoassign.AsError(err); ok {
		writePhotoError(w, perr)
		return
	}
	switch {
	case errors.Is(err, errNoItemSource):
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "items are required")
		return
	case errors.Is(err, errBodyTooLarge):
		response.Error(w, http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE", "Request body too large")
		return
	}
	h.Logger.Error(action+" failed", zapError(err))
	response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", fmt.Sprintf("Failed to %s", action))
}

func sanitizeFilename(value string) string {
	var b strings.Builder
	for _, r := range value {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "photos"
	}
	return b.String()
}

func zapError(err error) zap.Field {
	return zap.Error(err)
}
