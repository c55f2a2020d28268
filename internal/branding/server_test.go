package branding

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bigbatmanorg/pasreporter/internal/appcfg"
	"github.com/bigbatmanorg/pasreporter/pkg/buildinfo"
)

func newTestServer(t *testing.T) (*Server, string) {
	t.Helper()
	staticDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(staticDir, "logo-horiz.png"), []byte("png-bytes"), 0o644))
	return NewServer(t.TempDir(), staticDir), staticDir
}

func TestHealthz(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestPingEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/pasreporter/ping", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var ping PingResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ping))
	assert.Equal(t, "ok", ping.Status)
	assert.Equal(t, buildinfo.AppName, ping.AppName)
	assert.NotEmpty(t, ping.Version)
}

func TestInfoEndpoint(t *testing.T) {
	srv, staticDir := newTestServer(t)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/pasreporter/info", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var info InfoResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &info))
	assert.Equal(t, staticDir, info.BrandingDir)
	assert.Equal(t, appcfg.StaticPrefix+"/logo-horiz.png", info.BrandingAssets["logo"])
	assert.True(t, info.Features["duckdb_support"])
	assert.False(t, info.Features["celery_required"])
}

func TestStaticServesAsset(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, appcfg.StaticPrefix+"/logo-horiz.png", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "png-bytes", rec.Body.String())
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
}

func TestStaticMissingAsset(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, appcfg.StaticPrefix+"/missing.png", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestStaticRejectsTraversal(t *testing.T) {
	srv, _ := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, appcfg.StaticPrefix+"/x", nil)
	// Bypass URL normalization the way a raw client could.
	req.URL.Path = appcfg.StaticPrefix + "/../secrets.txt"
	req.URL.RawPath = appcfg.StaticPrefix + "/..%2Fsecrets.txt"
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.NotEqual(t, http.StatusOK, rec.Code)
}
