package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/mediagallery-backend/internal/media"
	"github.com/angelmondragon/mediagallery-backend/pkg/config"
	"github.com/angelmondragon/mediagallery-backend/pkg/db"
	"github.com/angelmondragon/mediagallery-backend/pkg/db/models"
	"github.com/angelmondragon/mediagallery-backend/pkg/logger"
	"github.com/angelmondragon/mediagallery-backend/pkg/metrics"
	"github.com/angelmondragon/mediagallery-backend/pkg/migrate"
	"github.com/angelmondragon/mediagallery-backend/pkg/storage/local"
)

type testServer struct {
	handler http.Handler
	store   *local.Storage
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	ctx := context.Background()

	cfg := &config.Config{
		App:   config.AppConfig{Env: config.AppEnvDev},
		Media: config.MediaConfig{MaxUploadMB: 1},
		CORS:  config.CORSConfig{AllowedOrigins: []string{"*"}},
	}

	client, err := db.New(ctx, config.DBConfig{
		Driver: config.DBDriverSQLite,
		DSN:    fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_")),
	}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	sqlDB, err := client.DB().DB()
	require.NoError(t, err)
	require.NoError(t, migrate.Run(ctx, sqlDB, client.Driver(), "", "up"))

	store, err := local.New(t.TempDir())
	require.NoError(t, err)

	reg := prometheus.NewRegistry()
	logg := logger.Nop()
	svc, err := media.NewService(media.ServiceParams{
		Repo:    media.NewRepository(client.DB()),
		Tx:      client,
		Store:   store,
		Policy:  media.NewPolicy(nil, nil, cfg.Media.MaxUploadBytes()),
		Metrics: metrics.NewMediaMetrics(reg),
		Logger:  logg,
	})
	require.NoError(t, err)

	handler := NewRouter(cfg, logg, client, store, svc, metrics.NewHTTPMetrics(reg), promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	return &testServer{handler: handler, store: store}
}

func (s *testServer) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func uploadRequest(t *testing.T, fileName string, content []byte, gallery string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("title", "Holiday"))
	if gallery != "" {
		require.NoError(t, mw.WriteField("gallery", gallery))
	}
	part, err := mw.CreateFormFile("file", fileName)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/media", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func jsonReq(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func decodeAsset(t *testing.T, body io.Reader) models.Asset {
	t.Helper()
	var envelope struct {
		Data models.Asset `json:"data"`
	}
	require.NoError(t, json.NewDecoder(body).Decode(&envelope))
	return envelope.Data
}

func TestHealthRoutes(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(httptest.NewRequest(http.MethodGet, "/health/live", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = srv.do(httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestUploadServeAndDeleteFlow(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(uploadRequest(t, "beach.PNG", []byte("png-bytes"), "Trips"))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decodeAsset(t, rec.Body)
	assert.Equal(t, fmt.Sprintf("/api/media/%d", created.ID), rec.Header().Get("Location"))
	require.NotNil(t, created.FilePath)
	assert.True(t, strings.HasPrefix(*created.FilePath, "/uploads/"))
	assert.Equal(t, "Trips", created.Gallery)

	rec = srv.do(httptest.NewRequest(http.MethodGet, *created.FilePath, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "png-bytes", rec.Body.String())

	rec = srv.do(httptest.NewRequest(http.MethodGet, fmt.Sprintf("/api/media/%d", created.ID), nil))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = srv.do(httptest.NewRequest(http.MethodDelete, fmt.Sprintf("/api/media/%d", created.ID), nil))
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = srv.do(httptest.NewRequest(http.MethodGet, *created.FilePath, nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = srv.do(httptest.NewRequest(http.MethodGet, fmt.Sprintf("/api/media/%d", created.ID), nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUploadRejectsDisallowedExtension(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(uploadRequest(t, "notes.txt", []byte("hello"), ""))
	require.Equal(t, http.StatusUnsupportedMediaType, rec.Code)

	rec = srv.do(httptest.NewRequest(http.MethodGet, "/api/media", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"data":[]}`, rec.Body.String())
}

func TestUploadRejectsOversizedFile(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(uploadRequest(t, "huge.mp4", bytes.Repeat([]byte("v"), (1<<20)+10), ""))
	require.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestGalleryRoutesAreNotShadowedByID(t *testing.T) {
	srv := newTestServer(t)

	for _, body := range []string{
		`{"title":"a","filePath":"https://example.com/a.jpg","gallery":"A"}`,
		`{"title":"b","filePath":"https://example.com/b.mp4","gallery":"B"}`,
		`{"title":"c","filePath":"https://example.com/c.gif","gallery":"A"}`,
		`{"title":"d","filePath":"https://example.com/d"}`,
	} {
		rec := srv.do(jsonReq(http.MethodPost, "/api/media/link", body))
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	}

	rec := srv.do(httptest.NewRequest(http.MethodGet, "/api/media/galleries", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var names struct {
		Data []string `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&names))
	assert.ElementsMatch(t, []string{"A", "B"}, names.Data)

	rec = srv.do(httptest.NewRequest(http.MethodGet, "/api/media/galleries/overview", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var overview struct {
		Data []media.GalleryGroup `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&overview))
	require.Len(t, overview.Data, 3)
	assert.True(t, overview.Data[2].Ungrouped)

	rec = srv.do(httptest.NewRequest(http.MethodGet, "/api/media/gallery/A", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var members struct {
		Data []models.Asset `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&members))
	assert.Len(t, members.Data, 2)

	rec = srv.do(jsonReq(http.MethodPut, "/api/media/gallery/A", `{"name":"Renamed"}`))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = srv.do(httptest.NewRequest(http.MethodDelete, "/api/media/gallery/B", nil))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = srv.do(httptest.NewRequest(http.MethodGet, "/api/media/galleries", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&names))
	assert.Equal(t, []string{"Renamed"}, names.Data)
}

func TestUpdateAcceptsFullEchoedResource(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(jsonReq(http.MethodPost, "/api/media/link", `{"title":"orig","filePath":"https://example.com/x.png","gallery":"G"}`))
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decodeAsset(t, rec.Body)

	echoed, err := json.Marshal(map[string]any{
		"id":          created.ID,
		"title":       "",
		"description": "new description",
		"fileSize":    0,
		"gallery":     "",
		"createdAt":   created.CreatedAt,
	})
	require.NoError(t, err)

	rec = srv.do(jsonReq(http.MethodPut, fmt.Sprintf("/api/media/%d", created.ID), string(echoed)))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decodeAsset(t, rec.Body)
	assert.Equal(t, "orig", updated.Title)
	assert.Equal(t, "new description", updated.Description)
	assert.Equal(t, "", updated.Gallery)

	rec = srv.do(jsonReq(http.MethodPut, fmt.Sprintf("/api/media/%d/gallery", created.ID), `{"gallery":"Moved"}`))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Moved", decodeAsset(t, rec.Body).Gallery)
}

func TestMetricsEndpointExposesCounters(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(jsonReq(http.MethodPost, "/api/media/link", `{"filePath":"https://example.com/m.mp4"}`))
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = srv.do(httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "media_ingested_total")
	assert.Contains(t, rec.Body.String(), "http_request_duration_seconds")
}

func TestUnknownRouteReturnsJSONNotFound(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(httptest.NewRequest(http.MethodGet, "/api/unknown", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), `"NOT_FOUND"`)
}

func TestCORSPreflight(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/media", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := srv.do(req)

	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
