// Package restapi is the typed client for the marketplace REST API.
// Every call is a single attempt; failures come back as *apierror.Error or wrap apierror.ErrUnavailable.
package restapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/stagepass/portal/internal/apierror"
	"github.com/stagepass/portal/internal/observability/metrics"
	"github.com/stagepass/portal/internal/observability/statsd"
)

// maxBodyBytes caps how much of any response we read.
const maxBodyBytes = 4 << 20

// Config configures a Client.
type Config struct {
	BaseURL    string
	Timeout    time.Duration
	UserAgent  string
	HTTPClient *http.Client
	Metrics    statsd.Sink
	Logger     *slog.Logger
}

// Client implements the portal's backend ports over HTTP.
type Client struct {
	base      *url.URL
	userAgent string
	http      *http.Client
	metrics   statsd.Sink
	logger    *slog.Logger
}

// NewClient validates cfg and builds a Client.
func NewClient(cfg Config) (*Client, error) {
	raw := strings.TrimSpace(cfg.BaseURL)
	if raw == "" {
		return nil, errors.New("api base url is required")
	}
	base, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parse api base url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("api base url must be http or https, got %q", base.Scheme)
	}
	base.Path = strings.TrimRight(base.Path, "/")

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: timeout}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	ua := strings.TrimSpace(cfg.UserAgent)
	if ua == "" {
		ua = "stagepass-portal"
	}

	return &Client{base: base, userAgent: ua, http: hc, metrics: cfg.Metrics, logger: logger}, nil
}

// call describes one request. endpoint is the route template used for metrics.
type call struct {
	method      string
	path        string
	endpoint    string
	token       string
	body        io.Reader
	contentType string
}

func jsonCall(method, path, token string, payload any) (call, error) {
	c := call{method: method, path: path, endpoint: path, token: token}
	if payload == nil {
		return c, nil
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return c, fmt.Errorf("encode %s %s body: %w", method, path, err)
	}
	c.body = bytes.NewReader(b)
	c.contentType = "application/json"
	return c, nil
}

// do sends c and returns the raw success body.
func (c *Client) do(ctx context.Context, in call) ([]byte, error) {
	start := time.Now()
	status := 0
	var err error
	defer func() {
		metrics.EmitBackendCall(c.metrics, metrics.BackendMetric{
			Method:   in.method,
			Endpoint: in.endpoint,
			Status:   status,
			Duration: time.Since(start),
			Err:      err,
		})
	}()

	var req *http.Request
	req, err = http.NewRequestWithContext(ctx, in.method, c.base.String()+in.path, in.body)
	if err != nil {
		return nil, fmt.Errorf("create %s %s request: %w", in.method, in.endpoint, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if in.contentType != "" {
		req.Header.Set("Content-Type", in.contentType)
	}
	if in.token != "" {
		req.Header.Set("Authorization", "Bearer "+in.token)
	}

	var resp *http.Response
	resp, err = c.http.Do(req)
	if err != nil {
		err = fmt.Errorf("%w: %s %s: %w", apierror.ErrUnavailable, in.method, in.endpoint, err)
		return nil, err
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			c.logger.Debug("close backend response body", "error", cerr)
		}
	}()
	status = resp.StatusCode

	var body []byte
	body, err = io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		err = fmt.Errorf("%w: read %s %s: %w", apierror.ErrUnavailable, in.method, in.endpoint, err)
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := apierror.Parse(resp.StatusCode, body)
		err = apiErr
		c.logger.Debug("backend call failed",
			"method", in.method,
			"endpoint", in.endpoint,
			"status", resp.StatusCode,
			"message", apiErr.Message,
		)
		return nil, apiErr
	}
	return body, nil
}

// doJSON sends c and decodes the success body into a generic document for JMESPath.
func (c *Client) doJSON(ctx context.Context, in call) (any, error) {
	body, err := c.do(ctx, in)
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, nil
	}
	var doc any
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("decode %s %s response: %w", in.method, in.endpoint, err)
	}
	return doc, nil
}

func idPath(prefix, id string) string {
	return prefix + "/" + url.PathEscape(id)
}
