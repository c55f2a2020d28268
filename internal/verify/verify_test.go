package verify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bigbatmanorg/pasreporter/internal/appcfg"
)

// fakeApp mimics the wrapped application's endpoints for smoke checks.
func fakeApp(t *testing.T, withAuth bool) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/login/", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc(appcfg.StaticPrefix+"/", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/api/pasreporter/ping", func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	})
	if withAuth {
		mux.HandleFunc("/api/v1/security/login", func(w http.ResponseWriter, r *http.Request) {
			var creds map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&creds))
			if creds["username"] != "admin" || creds["password"] != "admin" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			_ = json.NewEncoder(w).Encode(map[string]string{"access_token": "tok-123"})
		})
		authed := func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Authorization") != "Bearer tok-123" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			_ = json.NewEncoder(w).Encode(map[string]any{"result": []any{}})
		}
		mux.HandleFunc("/api/v1/database/", authed)
		mux.HandleFunc("/api/v1/chart/", authed)
	}
	return httptest.NewServer(mux)
}

func checkByName(t *testing.T, result *Result, name string) Check {
	t.Helper()
	for _, c := range result.Checks {
		if c.Name == name {
			return c
		}
	}
	t.Fatalf("check %q not found", name)
	return Check{}
}

func TestRunAllChecksPass(t *testing.T) {
	ts := fakeApp(t, true)
	defer ts.Close()

	result, err := Run(context.Background(), Options{
		BaseURL:  ts.URL,
		Username: "admin",
		Password: "admin",
		Client:   ts.Client(),
	})
	require.NoError(t, err)
	assert.True(t, result.Passed)
	assert.True(t, checkByName(t, result, "health").Passed)
	assert.True(t, checkByName(t, result, "ping").Passed)
	assert.True(t, checkByName(t, result, "login").Passed)
	assert.True(t, checkByName(t, result, "databases api").Passed)
	assert.True(t, checkByName(t, result, "charts api").Passed)
}

func TestRunSkipAuth(t *testing.T) {
	ts := fakeApp(t, false)
	defer ts.Close()

	result, err := Run(context.Background(), Options{BaseURL: ts.URL, SkipAuth: true, Client: ts.Client()})
	require.NoError(t, err)
	assert.True(t, result.Passed)
	for _, c := range result.Checks {
		assert.NotEqual(t, "login", c.Name)
	}
}

func TestRunBadCredentials(t *testing.T) {
	ts := fakeApp(t, true)
	defer ts.Close()

	result, err := Run(context.Background(), Options{
		BaseURL:  ts.URL,
		Username: "admin",
		Password: "wrong",
		Client:   ts.Client(),
	})
	require.NoError(t, err)
	assert.False(t, result.Passed)
	assert.False(t, checkByName(t, result, "login").Passed)
}

func TestRunPingOptionalDoesNotFailRun(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/pasreporter/ping" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusOK)
	})
	ts := httptest.NewServer(mux)
	defer ts.Close()

	result, err := Run(context.Background(), Options{BaseURL: ts.URL, SkipAuth: true, Client: ts.Client()})
	require.NoError(t, err)
	assert.True(t, result.Passed)
	assert.False(t, checkByName(t, result, "ping").Passed)
	assert.True(t, checkByName(t, result, "ping").Optional)
}

func TestRunServerDown(t *testing.T) {
	result, err := Run(context.Background(), Options{BaseURL: "http://127.0.0.1:1", SkipAuth: true})
	require.NoError(t, err)
	assert.False(t, result.Passed)
	health := checkByName(t, result, "health")
	assert.Contains(t, health.Detail, "connection refused")
}

func TestRunTrimsTrailingSlash(t *testing.T) {
	ts := fakeApp(t, false)
	defer ts.Close()

	result, err := Run(context.Background(), Options{BaseURL: ts.URL + "/", SkipAuth: true, Client: ts.Client()})
	require.NoError(t, err)
	assert.Equal(t, ts.URL, result.BaseURL)
}
