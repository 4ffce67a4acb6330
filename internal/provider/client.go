/*
PURPOSE:
  REST client for the remote quantum hardware provider.
  Lists backends and fetches status, configuration and calibration properties.

REQUIREMENTS:
  User-specified:
  - Backend listing, status, calibration properties (T1, T2, readout error, 2q gate error/length).

  Implementation-discovered:
  - Credentials are passed in explicitly (DialOption), never read from ambient state here.
  - Simulators answer the properties endpoint with an empty document; that is "no properties",
    not an error.

ARCHITECTURE INTEGRATION:
  - Called by: internal/calibration (through the calibration.Source interface)
  - Configured by: internal/cli from internal/config

ERROR HANDLING:
  - Non-2xx responses become *APIError with the server's message.
  - Transport errors and 5xx are retried up to the configured attempt count (default: one attempt).

USAGE:
  c, err := provider.Dial(provider.WithToken(tok))
  names, err := c.Backends(ctx)
*/

package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

var logger = logrus.New()

// SetLogLevel adjusts the client's logger ("debug", "info", "warn", "error").
func SetLogLevel(level string) error {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return err
	}
	logger.SetLevel(lvl)
	return nil
}

// SetLogOutput redirects the client's logger.
func SetLogOutput(w io.Writer) { logger.SetOutput(w) }

// Client talks to the provider API. It is not safe for concurrent use.
type Client struct {
	opts dialOptions
	http *http.Client
	base *url.URL
}

// Dial validates options and returns a Client. No request is made.
func Dial(options ...DialOption) (*Client, error) {
	opts := dialOptions{
		apiURL:    DefaultAPIURL,
		retries:   DefaultRetries,
		userAgent: DefaultUserAgent,
	}
	for _, option := range options {
		option(&opts)
	}

	if strings.TrimSpace(opts.token) == "" {
		return nil, ErrMissingCredentials
	}
	if opts.retries < 1 {
		opts.retries = 1
	}
	base, err := url.Parse(strings.TrimRight(opts.apiURL, "/") + "/")
	if err != nil {
		return nil, fmt.Errorf("provider: bad API url %q: %w", opts.apiURL, err)
	}

	hc := opts.httpClient
	if hc == nil {
		hc = &http.Client{Timeout: opts.timeout}
	}
	return &Client{opts: opts, http: hc, base: base}, nil
}

// Backends returns the names of the backends visible to the configured credentials.
func (c *Client) Backends(ctx context.Context) ([]string, error) {
	var payload struct {
		Devices []string `json:"devices"`
	}
	if err := c.get(ctx, "backends", &payload); err != nil {
		return nil, err
	}
	return payload.Devices, nil
}

// Status returns the backend's operational state.
func (c *Client) Status(ctx context.Context, backend string) (Status, error) {
	var s Status
	if err := c.get(ctx, "backends/"+url.PathEscape(backend)+"/status", &s); err != nil {
		return Status{}, err
	}
	if s.BackendName == "" {
		s.BackendName = backend
	}
	return s, nil
}

// Configuration returns the backend's static configuration.
func (c *Client) Configuration(ctx context.Context, backend string) (Configuration, error) {
	var cfg Configuration
	if err := c.get(ctx, "backends/"+url.PathEscape(backend)+"/configuration", &cfg); err != nil {
		return Configuration{}, err
	}
	if cfg.BackendName == "" {
		cfg.BackendName = backend
	}
	return cfg, nil
}

// Properties returns the backend's latest calibration, or nil when it publishes none.
func (c *Client) Properties(ctx context.Context, backend string) (*Properties, error) {
	var p Properties
	if err := c.get(ctx, "backends/"+url.PathEscape(backend)+"/properties", &p); err != nil {
		return nil, err
	}
	if len(p.Qubits) == 0 && len(p.Gates) == 0 {
		return nil, nil
	}
	if p.BackendName == "" {
		p.BackendName = backend
	}
	return &p, nil
}

func (c *Client) newRequest(ctx context.Context, method, path string) (*http.Request, error) {
	ref, err := url.Parse(path)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base.ResolveReference(ref).String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.opts.token)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.opts.userAgent)
	if c.opts.instance != "" {
		req.Header.Set("Service-CRN", c.opts.instance)
	}
	return req, nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	var lastErr error
	for attempt := 1; attempt <= c.opts.retries; attempt++ {
		if attempt > 1 {
			logger.WithFields(logrus.Fields{"path": path, "attempt": attempt}).Warn("retrying request")
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(c.opts.retryDelay):
			}
		}

		req, err := c.newRequest(ctx, http.MethodGet, path)
		if err != nil {
			return err
		}
		err = c.do(req, out)
		if err == nil {
			return nil
		}
		lastErr = err

		var apiErr *APIError
		if errors.As(err, &apiErr) && !apiErr.Temporary() {
			return err
		}
		if ctx.Err() != nil {
			return err
		}
	}
	return lastErr
}

func (c *Client) do(req *http.Request, out any) error {
	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("provider: %s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	logger.WithFields(logrus.Fields{
		"method":  req.Method,
		"path":    req.URL.Path,
		"status":  resp.StatusCode,
		"elapsed": time.Since(start),
	}).Debug("provider response")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
		return &APIError{
			Method:     req.Method,
			Path:       strings.TrimPrefix(req.URL.Path, c.base.Path),
			StatusCode: resp.StatusCode,
			Message:    errorMessage(body),
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("provider: decoding %s: %w", req.URL.Path, err)
	}
	return nil
}

// errorMessage extracts the human-readable message from the provider's error envelopes.
func errorMessage(body []byte) string {
	var env struct {
		Message string `json:"message"`
		Error   any    `json:"error"`
		Errors  []struct {
			Message string `json:"message"`
		} `json:"errors"`
	}
	if err := json.Unmarshal(body, &env); err != nil {
		return strings.TrimSpace(string(body))
	}
	var parts []string
	if env.Message != "" {
		parts = append(parts, env.Message)
	}
	switch e := env.Error.(type) {
	case string:
		parts = append(parts, e)
	case map[string]any:
		if m, ok := e["message"].(string); ok {
			parts = append(parts, m)
		}
	}
	for _, e := range env.Errors {
		if e.Message != "" {
			parts = append(parts, e.Message)
		}
	}
	if len(parts) == 0 {
		return strings.TrimSpace(string(body))
	}
	return strings.Join(parts, "; ")
}
