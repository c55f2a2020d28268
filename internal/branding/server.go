// Package branding serves the distribution's identity assets and probe
// endpoints over HTTP, and tracks running server instances through
// metadata records under the home directory.
package branding

import (
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/bigbatmanorg/pasreporter/internal/appcfg"
	"github.com/bigbatmanorg/pasreporter/pkg/buildinfo"
	"github.com/bigbatmanorg/pasreporter/pkg/logger"
	"github.com/bigbatmanorg/pasreporter/pkg/safeio"
)

// PingResponse is returned by the ping endpoint. Smoke tests use it to
// verify the branding layer is reachable.
type PingResponse struct {
	Status  string `json:"status"`
	AppName string `json:"app_name"`
	Version string `json:"version"`
	Message string `json:"message"`
}

// InfoResponse describes the installation for diagnostics.
type InfoResponse struct {
	AppName        string            `json:"app_name"`
	Version        string            `json:"version"`
	HomeDir        string            `json:"home_dir"`
	BrandingDir    string            `json:"branding_dir"`
	BrandingAssets map[string]string `json:"branding_assets"`
	Features       map[string]bool   `json:"features"`
}

// Server serves branding assets and probe endpoints.
type Server struct {
	homeDir   string
	staticDir string
	router    chi.Router
}

// NewServer builds the branding HTTP handler for a home directory and a
// static asset directory.
func NewServer(homeDir, staticDir string) *Server {
	s := &Server{homeDir: homeDir, staticDir: staticDir}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Get(appcfg.StaticPrefix+"/*", s.handleStatic)
	r.Get("/api/pasreporter/ping", s.handlePing)
	r.Get("/api/pasreporter/info", s.handleInfo)

	s.router = r
	return s
}

// Handler returns the HTTP handler for the server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("failed to encode response", logger.Err(err))
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handlePing(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, PingResponse{
		Status:  "ok",
		AppName: buildinfo.AppName,
		Version: buildinfo.BinaryVersion,
		Message: buildinfo.AppName + " is running!",
	})
}

func (s *Server) handleInfo(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, InfoResponse{
		AppName:     buildinfo.AppName,
		Version:     buildinfo.BinaryVersion,
		HomeDir:     s.homeDir,
		BrandingDir: s.staticDir,
		BrandingAssets: map[string]string{
			"logo":    appcfg.StaticPrefix + "/logo-horiz.png",
			"favicon": appcfg.StaticPrefix + "/favicon.png",
		},
		Features: map[string]bool{
			"duckdb_support":    true,
			"celery_required":   false,
			"redis_required":    false,
			"postgres_required": false,
		},
	})
}

// handleStatic serves files from the static directory. Requests that
// resolve outside it are rejected.
func (s *Server) handleStatic(w http.ResponseWriter, r *http.Request) {
	rel := chi.URLParam(r, "*")
	if rel == "" {
		http.NotFound(w, r)
		return
	}
	clean, err := safeio.CleanUserPath(rel)
	if err != nil {
		http.Error(w, "invalid path", http.StatusBadRequest)
		return
	}

	data, err := safeio.ReadFileContained(s.staticDir, filepath.Join(s.staticDir, filepath.FromSlash(clean)))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			http.NotFound(w, r)
			return
		}
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}

	if ctype := mime.TypeByExtension(filepath.Ext(clean)); ctype != "" {
		w.Header().Set("Content-Type", ctype)
	}
	if _, err := w.Write(data); err != nil {
		logger.Error("failed to write asset", logger.Err(err))
	}
}

// ListenAndServe runs the branding server on addr until the listener fails.
func (s *Server) ListenAndServe(addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	logger.Info("branding server listening", logger.String("addr", addr))
	return srv.ListenAndServe()
}
