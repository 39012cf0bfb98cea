package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/angelmondragon/mediagallery-backend/internal/media"
	"github.com/angelmondragon/mediagallery-backend/pkg/db/models"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
)

type stubMediaService struct {
	assets []models.Asset
	asset  *models.Asset
	groups []media.GalleryGroup
	names  []string
	batch  *media.BatchResult
	err    error

	ingested  media.Source
	uploaded  []byte
	link      media.LinkInput
	patchID   int64
	patch     media.AssetPatch
	movedTo   *string
	deletedID int64
	gallery   string
	renamedTo string
}

func (s *stubMediaService) Ingest(ctx context.Context, src media.Source) (*models.Asset, error) {
	s.ingested = src
	if upload, ok := src.(media.UploadSource); ok {
		body, err := io.ReadAll(upload.Body)
		if err != nil {
			return nil, err
		}
		s.uploaded = body
	}
	return s.asset, s.err
}

func (s *stubMediaService) IngestUpload(ctx context.Context, input media.UploadInput) (*models.Asset, error) {
	return s.Ingest(ctx, media.UploadSource{UploadInput: input})
}

func (s *stubMediaService) IngestLink(ctx context.Context, input media.LinkInput) (*models.Asset, error) {
	s.link = input
	return s.asset, s.err
}

func (s *stubMediaService) ListMedia(ctx context.Context) ([]models.Asset, error) {
	return s.assets, s.err
}

func (s *stubMediaService) GetMedia(ctx context.Context, id int64) (*models.Asset, error) {
	return s.asset, s.err
}

func (s *stubMediaService) UpdateMedia(ctx context.Context, id int64, patch media.AssetPatch) (*models.Asset, error) {
	s.patchID = id
	s.patch = patch
	return s.asset, s.err
}

func (s *stubMediaService) DeleteMedia(ctx context.Context, id int64) error {
	s.deletedID = id
	return s.err
}

func (s *stubMediaService) ListGalleries(ctx context.Context) ([]string, error) {
	return s.names, s.err
}

func (s *stubMediaService) ListByGallery(ctx context.Context, name string) ([]models.Asset, error) {
	s.gallery = name
	return s.assets, s.err
}

func (s *stubMediaService) GalleryOverview(ctx context.Context) ([]media.GalleryGroup, error) {
	return s.groups, s.err
}

func (s *stubMediaService) MoveToGallery(ctx context.Context, id int64, name string) (*models.Asset, error) {
	s.patchID = id
	s.movedTo = &name
	return s.asset, s.err
}

func (s *stubMediaService) ClearGallery(ctx context.Context, name string) (*media.BatchResult, error) {
	s.gallery = name
	return s.batch, s.err
}

func (s *stubMediaService) RenameGallery(ctx context.Context, from, to string) (*media.BatchResult, error) {
	s.gallery = from
	s.renamedTo = to
	return s.batch, s.err
}

type stubPinger struct {
	err error
}

func (p stubPinger) Ping(context.Context) error {
	return p.err
}

// serve routes req through a chi mux so URL params resolve.
func serve(method, pattern string, handler http.HandlerFunc, req *http.Request) *httptest.ResponseRecorder {
	r := chi.NewRouter()
	r.Method(method, pattern, handler)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func jsonRequest(t *testing.T, method, target string, payload any) *http.Request {
	t.Helper()
	var body io.Reader = http.NoBody
	switch v := payload.(type) {
	case nil:
	case string:
		body = bytes.NewBufferString(v)
	default:
		raw, err := json.Marshal(v)
		require.NoError(t, err)
		body = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, target, body)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder, dest any) {
	t.Helper()
	envelope := struct {
		Data any `json:"data"`
	}{Data: dest}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&envelope))
}

type errorBody struct {
	Error struct {
		Code    string          `json:"code"`
		Message string          `json:"message"`
		Details json.RawMessage `json:"details"`
	} `json:"error"`
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorBody {
	t.Helper()
	var body errorBody
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body
}

func strPtr(v string) *string {
	return &v
}
