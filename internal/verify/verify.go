// Package verify runs smoke checks against a running instance of the
// distribution: health and login pages, branding assets, the ping
// endpoint, and a handful of authenticated API calls.
package verify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/bigbatmanorg/pasreporter/internal/appcfg"
	"github.com/bigbatmanorg/pasreporter/pkg/logger"
)

const defaultTimeout = 10 * time.Second

// Options control a smoke-check run.
type Options struct {
	BaseURL  string
	Username string
	Password string
	SkipAuth bool
	Client   *http.Client
}

// Check is the outcome of one probe.
type Check struct {
	Name     string `json:"name"`
	Passed   bool   `json:"passed"`
	Optional bool   `json:"optional,omitempty"`
	Detail   string `json:"detail,omitempty"`
}

// Result aggregates a full run.
type Result struct {
	BaseURL string  `json:"base_url"`
	Checks  []Check `json:"checks"`
	Passed  bool    `json:"passed"`
}

type runner struct {
	opts   Options
	client *http.Client
	result *Result
}

// Run executes the smoke checks against opts.BaseURL. The returned error
// is non-nil only for setup problems; check failures are reported through
// Result.Passed.
func Run(ctx context.Context, opts Options) (*Result, error) {
	if opts.BaseURL == "" {
		if env := os.Getenv("SUPERSET_BASE_URL"); env != "" {
			opts.BaseURL = env
		} else {
			opts.BaseURL = "http://127.0.0.1:8088"
		}
	}
	opts.BaseURL = strings.TrimRight(opts.BaseURL, "/")

	client := opts.Client
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}

	r := &runner{
		opts:   opts,
		client: client,
		result: &Result{BaseURL: opts.BaseURL, Passed: true},
	}

	r.checkEndpoint(ctx, "health", "/health", "", false)
	r.checkEndpoint(ctx, "login page", "/login/", "", false)
	r.checkAsset(ctx, "logo", appcfg.StaticPrefix+"/logo-horiz.png")
	r.checkAsset(ctx, "favicon", appcfg.StaticPrefix+"/favicon.png")
	r.checkEndpoint(ctx, "ping", "/api/pasreporter/ping", "status", true)

	if !opts.SkipAuth {
		token := r.login(ctx)
		if token != "" {
			r.checkAuthenticated(ctx, "databases api", "/api/v1/database/", token, "result")
			r.checkAuthenticated(ctx, "charts api", "/api/v1/chart/", token, "result")
		}
	}

	return r.result, nil
}

func (r *runner) record(check Check) {
	r.result.Checks = append(r.result.Checks, check)
	if !check.Passed && !check.Optional {
		r.result.Passed = false
	}
	if check.Passed {
		logger.Info("check passed", logger.String("check", check.Name))
	} else {
		logger.Warn("check failed", logger.String("check", check.Name), logger.String("detail", check.Detail))
	}
}

// failureDetail distinguishes a refused connection from a timeout so the
// operator knows whether the server is down or just slow.
func failureDetail(err error) string {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "timeout"
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return "connection refused (is the server running?)"
	}
	return err.Error()
}

func (r *runner) get(ctx context.Context, path string, headers map[string]string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.opts.BaseURL+path, nil)
	if err != nil {
		return nil, err
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	return r.client.Do(req)
}

func (r *runner) checkEndpoint(ctx context.Context, name, path, jsonKey string, optional bool) {
	check := Check{Name: name, Optional: optional}

	resp, err := r.get(ctx, path, nil)
	if err != nil {
		check.Detail = failureDetail(err)
		r.record(check)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		check.Detail = fmt.Sprintf("expected 200, got %d", resp.StatusCode)
		r.record(check)
		return
	}

	if jsonKey != "" {
		var body map[string]any
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
			check.Detail = "invalid JSON response"
			r.record(check)
			return
		}
		if _, ok := body[jsonKey]; !ok {
			check.Detail = fmt.Sprintf("missing key %q in response", jsonKey)
			r.record(check)
			return
		}
	}

	check.Passed = true
	r.record(check)
}

func (r *runner) checkAsset(ctx context.Context, name, path string) {
	check := Check{Name: name}

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, r.opts.BaseURL+path, nil)
	if err != nil {
		check.Detail = err.Error()
		r.record(check)
		return
	}
	resp, err := r.client.Do(req)
	if err != nil {
		check.Detail = failureDetail(err)
		r.record(check)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		check.Detail = fmt.Sprintf("status %d", resp.StatusCode)
		r.record(check)
		return
	}
	check.Passed = true
	r.record(check)
}

// login exchanges the admin credentials for an access token. A failed
// login is recorded as a check failure and returns an empty token.
func (r *runner) login(ctx context.Context) string {
	check := Check{Name: "login"}

	payload, err := json.Marshal(map[string]any{
		"username": r.opts.Username,
		"password": r.opts.Password,
		"provider": "db",
		"refresh":  true,
	})
	if err != nil {
		check.Detail = err.Error()
		r.record(check)
		return ""
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		r.opts.BaseURL+"/api/v1/security/login", bytes.NewReader(payload))
	if err != nil {
		check.Detail = err.Error()
		r.record(check)
		return ""
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		check.Detail = failureDetail(err)
		r.record(check)
		return ""
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		check.Detail = fmt.Sprintf("status %d", resp.StatusCode)
		r.record(check)
		return ""
	}

	var body struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil || body.AccessToken == "" {
		check.Detail = "no access token in response"
		r.record(check)
		return ""
	}

	check.Passed = true
	r.record(check)
	return body.AccessToken
}

func (r *runner) checkAuthenticated(ctx context.Context, name, path, token, jsonKey string) {
	check := Check{Name: name}

	resp, err := r.get(ctx, path, map[string]string{"Authorization": "Bearer " + token})
	if err != nil {
		check.Detail = failureDetail(err)
		r.record(check)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		check.Detail = fmt.Sprintf("status %d", resp.StatusCode)
		r.record(check)
		return
	}

	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		check.Detail = "invalid JSON"
		r.record(check)
		return
	}
	if _, ok := body[jsonKey]; !ok {
		check.Detail = fmt.Sprintf("missing key %q", jsonKey)
		r.record(check)
		return
	}

	check.Passed = true
	r.record(check)
}
