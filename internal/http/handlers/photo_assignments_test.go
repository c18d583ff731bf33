package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"menu-photo-services/internal/config"
	"menu-photo-services/internal/mirror"
	"menu-photo-services/internal/photoset"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const handlerSet = `version: 1
url_template: "https://img.example/{id}.jpg"
identifiers: ["100", "200", "300"]
buckets:
  pizza: { ids: ["100", "200"] }
rules:
  - { bucket: pizza, keywords: [pizza] }
`

type fakeMirror struct {
	requested []string
	template  string
	err       error
}

func (f *fakeMirror) Mirror(_ context.Context, sourceTemplate string, ids []string) ([]mirror.Photo, error) {
	f.requested = append([]string(nil), ids...)
	f.template = sourceTemplate
	if f.err != nil {
		return nil, f.err
	}
	out := make([]mirror.Photo, 0, len(ids))
	for _, id := range ids {
		out = append(out, mirror.Photo{Identifier: id, URL: "https://cdn.example/menu-photos/" + id + ".jpg"})
	}
	return out, nil
}

func (f *fakeMirror) URLTemplate() string {
	return "https://cdn.example/menu-photos/{id}.jpg"
}

func newTestHandler(t *testing.T) *Handler {
	t.Helper()
	set, err := photoset.Parse([]byte(handlerSet))
	require.NoError(t, err)
	return &Handler{
		Logger:   zap.NewNop(),
		Config:   config.Config{MaxFileSizeBytes: 1 << 20},
		PhotoSet: &set,
	}
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func post(h http.HandlerFunc, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/admin/photo-assignments/preview", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

func TestAdminPhotoSetGet(t *testing.T) {
	h := newTestHandler(t)
	rec := httptest.NewRecorder()
	h.AdminPhotoSetGet(rec, httptest.NewRequest(http.MethodGet, "/api/admin/photo-set", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	data := decodeBody(t, rec)["data"].(map[string]any)
	require.Equal(t, float64(3), data["poolSize"])
	require.Len(t, data["buckets"], 1)
	require.Len(t, data["rules"], 1)
}

func TestAdminPhotoAssignmentsPreview(t *testing.T) {
	h := newTestHandler(t)
	rec := post(h.AdminPhotoAssignmentsPreview, `{"items":[{"id":1,"name":"Cheese Pizza"},{"id":2,"name":"Cola"}]}`)

	require.Equal(t, http.StatusOK, rec.Code)
	data := decodeBody(t, rec)["data"].(map[string]any)
	summary := data["summary"].(map[string]any)
	require.Equal(t, float64(2), summary["itemCount"])
	require.Equal(t, true, summary["injective"])
	require.Empty(t, data["warnings"])
	require.Equal(t, false, data["published"])
	require.Contains(t, data["sql"], "WHEN '1' THEN 'https://img.example/100.jpg'")
}

func TestAdminPhotoAssignmentsPreviewWarnsOnReuse(t *testing.T) {
	h := newTestHandler(t)
	rec := post(h.AdminPhotoAssignmentsPreview, `{"items":[
		{"id":"a","name":"Soup"},{"id":"b","name":"Salad"},
		{"id":"c","name":"Tea"},{"id":"d","name":"Cake"}]}`)

	require.Equal(t, http.StatusOK, rec.Code)
	data := decodeBody(t, rec)["data"].(map[string]any)
	require.Len(t, data["warnings"], 1)
	require.Equal(t, false, data["summary"].(map[string]any)["injective"])
}

func TestAdminPhotoAssignmentsPreviewErrors(t *testing.T) {
	cases := []struct {
		name   string
		body   string
		status int
		code   string
	}{
		{name: "no items and no database", body: `{}`, status: http.StatusBadRequest, code: "VALIDATION_ERROR"},
		{name: "invalid json", body: `{"items":`, status: http.StatusUnprocessableEntity, code: "ITEM_MALFORMED"},
		{name: "blank name", body: `{"items":[{"id":"a","name":" "}]}`, status: http.StatusUnprocessableEntity, code: "ITEM_MALFORMED"},
		{name: "duplicate id", body: `{"items":[{"id":"a","name":"Tea"},{"id":"a","name":"Cake"}]}`, status: http.StatusUnprocessableEntity, code: "ITEM_DUPLICATE"},
		{name: "unsafe id", body: `{"items":[{"id":"a'--","name":"Tea"}]}`, status: http.StatusUnprocessableEntity, code: "EMIT_UNSAFE_VALUE"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := post(newTestHandler(t).AdminPhotoAssignmentsPreview, tc.body)
			require.Equal(t, tc.status, rec.Code)
			require.Equal(t, tc.code, decodeBody(t, rec)["error"])
		})
	}
}

func TestAdminPhotoAssignmentsPreviewBodyTooLarge(t *testing.T) {
	h := newTestHandler(t)
	h.Config.MaxFileSizeBytes = 8
	rec := post(h.AdminPhotoAssignmentsPreview, `{"items":[{"id":"a","name":"Tea"}]}`)
	require.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestAdminPhotoAssignmentsReview(t *testing.T) {
	h := newTestHandler(t)
	rec := post(h.AdminPhotoAssignmentsReview, `{"title":"Spring menu","items":[{"id":"a","name":"Cheese Pizza"}]}`)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	require.True(t, strings.HasPrefix(rec.Body.String(), "%PDF"))
}

func TestAdminPhotoAssignmentsMirror(t *testing.T) {
	h := newTestHandler(t)
	rec := post(h.AdminPhotoAssignmentsMirror, `{"items":[{"id":"a","name":"Tea"}]}`)
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	fm := &fakeMirror{}
	h.Mirror = fm
	rec = post(h.AdminPhotoAssignmentsMirror, `{"items":[{"id":"a","name":"Cheese Pizza"},{"id":"b","name":"Tea"}]}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, []string{"100", "200"}, fm.requested)
	require.Equal(t, "https://img.example/{id}.jpg", fm.template)

	data := decodeBody(t, rec)["data"].(map[string]any)
	require.Len(t, data["photos"], 2)
	require.Contains(t, data["sql"], "WHEN 'a' THEN 'https://cdn.example/menu-photos/100.jpg'")

	fm.err = errors.New("origin down")
	rec = post(h.AdminPhotoAssignmentsMirror, `{"items":[{"id":"a","name":"Tea"}]}`)
	require.Equal(t, http.StatusBadGateway, rec.Code)
}

type memoryPhotoStore struct {
	mu   sync.Mutex
	keys map[string]bool
}

func (s *memoryPhotoStore) PutObject(_ context.Context, key string, _ []byte, _ string, _ string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keys[key] = true
	return s.PublicURL(key), nil
}

func (s *memoryPhotoStore) KeySet(_ context.Context, prefix string) (map[string]bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := map[string]bool{}
	for k := range s.keys {
		if strings.HasPrefix(k, prefix) {
			out[k] = true
		}
	}
	return out, nil
}

func (s *memoryPhotoStore) PublicURL(key string) string {
	return "https://cdn.example/" + key
}

func (s *memoryPhotoStore) PublicTemplate(prefix string) string {
	return s.PublicURL(prefix + "/{id}.jpg")
}

func TestAdminPhotoAssignmentsMirrorUsesPhotoSetOrigin(t *testing.T) {
	var hits atomic.Int32
	origin := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		img := image.NewRGBA(image.Rect(0, 0, 8, 8))
		w.Header().Set("Content-Type", "image/png")
		_ = png.Encode(w, img)
	}))
	defer origin.Close()

	set, err := photoset.Parse([]byte(strings.Replace(handlerSet, "https://img.example/{id}.jpg", origin.URL+"/photos/{id}.png", 1)))
	require.NoError(t, err)

	h := newTestHandler(t)
	h.PhotoSet = &set
	h.Mirror = mirror.New(&memoryPhotoStore{keys: map[string]bool{}}, mirror.Config{Prefix: "menu-photos"}, zap.NewNop())

	rec := post(h.AdminPhotoAssignmentsMirror, `{"items":[{"id":"a","name":"Cheese Pizza"},{"id":"b","name":"Tea"}]}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.EqualValues(t, 2, hits.Load())

	data := decodeBody(t, rec)["data"].(map[string]any)
	require.Contains(t, data["sql"], "WHEN 'a' THEN 'https://cdn.example/menu-photos/100.jpg'")
}
