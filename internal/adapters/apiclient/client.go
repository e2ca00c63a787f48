// internal/adapters/apiclient/client.go
package apiclient

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

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/ammerola/api-framework/internal/pkg/logger"
)

const (
	// RequestIDHeader carries the id that ties client logs to server logs.
	RequestIDHeader = "X-Request-ID"

	defaultTimeout = 30 * time.Second

	// matches cache.PrefixResponse
	cacheKeyPrefix = "resp"
)

var (
	ErrInvalidBaseURL = errors.New("invalid base URL")
	ErrEncodeBody     = errors.New("failed to encode request body")
)

// Doer sends an HTTP request. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Response is the raw outcome of a call. Non-2xx statuses are not errors.
type Response struct {
	StatusCode int
	Status     string
	Header     http.Header
	Body       []byte
	Method     string
	URL        string
	RequestID  string
	Duration   time.Duration
	Cached     bool `json:"-"`
}

// JSON decodes the body into v.
func (r *Response) JSON(v any) error {
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("decode %s %s response: %w", r.Method, r.URL, err)
	}
	return nil
}

// Text returns the body as a string.
func (r *Response) Text() string {
	return string(r.Body)
}

// IsSuccess reports a 2xx status.
func (r *Response) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Client builds URLs from a base address and endpoint templates and sends
// JSON requests. It holds no per-call state and is safe for concurrent use.
type Client struct {
	baseURL *url.URL
	doer    Doer
	headers http.Header
	limiter *rate.Limiter
	timeout time.Duration
	logger  *slog.Logger

	cache    ResponseCache
	cacheTTL time.Duration
}

// New creates a client for baseURL, which must be an absolute http(s) URL.
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %v", ErrInvalidBaseURL, baseURL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%w %q: must be an absolute http(s) URL", ErrInvalidBaseURL, baseURL)
	}

	c := &Client{
		baseURL: u,
		headers: http.Header{},
		timeout: defaultTimeout,
		logger:  slog.Default(),
	}
	c.headers.Set("Accept", "application/json")

	for _, opt := range opts {
		opt(c)
	}
	if c.doer == nil {
		c.doer = &http.Client{}
	}
	c.logger = c.logger.With(slog.String("component", "apiclient"), slog.String("base_url", u.Host))

	return c, nil
}

// BaseURL returns the address endpoints are resolved against.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// URL resolves endpoint against the base URL.
func (c *Client) URL(endpoint Endpoint, path PathParams, query url.Values) (string, error) {
	expanded, err := endpoint.Expand(path)
	if err != nil {
		return "", err
	}

	expanded, templateQuery, _ := strings.Cut(expanded, "?")

	u := *c.baseURL
	rawPath := strings.TrimSuffix(u.EscapedPath(), "/") + "/" + strings.TrimPrefix(expanded, "/")
	unescaped, err := url.PathUnescape(rawPath)
	if err != nil {
		return "", &TemplateError{Endpoint: endpoint, Reason: err.Error()}
	}
	u.Path = unescaped
	u.RawPath = rawPath

	if templateQuery != "" || len(query) > 0 {
		q := u.Query()
		fixed, err := url.ParseQuery(templateQuery)
		if err != nil {
			return "", &TemplateError{Endpoint: endpoint, Reason: "invalid query: " + err.Error()}
		}
		for k, vs := range fixed {
			for _, v := range vs {
				q.Add(k, v)
			}
		}
		for k, vs := range query {
			for _, v := range vs {
				q.Add(k, v)
			}
		}
		u.RawQuery = q.Encode()
	}

	return u.String(), nil
}

// Get issues a GET request with optional query and path parameters.
func (c *Client) Get(ctx context.Context, endpoint Endpoint, query url.Values, path PathParams) (*Response, error) {
	return c.Do(ctx, http.MethodGet, endpoint, path, query, nil)
}

// Post issues a POST request with a JSON body.
func (c *Client) Post(ctx context.Context, endpoint Endpoint, body any) (*Response, error) {
	return c.Do(ctx, http.MethodPost, endpoint, nil, nil, body)
}

// Put issues a PUT request with a JSON body.
func (c *Client) Put(ctx context.Context, endpoint Endpoint, body any, path PathParams) (*Response, error) {
	return c.Do(ctx, http.MethodPut, endpoint, path, nil, body)
}

// Delete issues a DELETE request.
func (c *Client) Delete(ctx context.Context, endpoint Endpoint, path PathParams) (*Response, error) {
	return c.Do(ctx, http.MethodDelete, endpoint, path, nil, nil)
}

// Do sends one request and reads the whole response body. A nil body sends
// no payload; anything else is JSON encoded.
func (c *Client) Do(ctx context.Context, method string, endpoint Endpoint, path PathParams, query url.Values, body any) (*Response, error) {
	target, err := c.URL(endpoint, path, query)
	if err != nil {
		return nil, err
	}

	var cacheKey string
	if c.cache != nil && method == http.MethodGet {
		cacheKey = cacheKeyPrefix + ":" + method + ":" + target
		if !freshResponse(ctx) {
			if cached, ok := c.cached(ctx, cacheKey); ok {
				return cached, nil
			}
		}
	}

	var payload io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("%w for %s %s: %v", ErrEncodeBody, method, endpoint, err)
		}
		payload = bytes.NewReader(data)
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("%s %s: rate limiter: %w", method, target, err)
		}
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, method, target, payload)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, target, err)
	}
	req.Header = c.headers.Clone()
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	requestID := logger.RequestID(ctx)
	if requestID == "" {
		requestID = uuid.NewString()
	}
	req.Header.Set(RequestIDHeader, requestID)
	ctx = logger.WithRequestID(ctx, requestID)

	start := time.Now()
	resp, err := c.doer.Do(req)
	if err != nil {
		c.logger.WarnContext(ctx, "request failed",
			slog.String("method", method),
			slog.String("url", target),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("%s %s: %w", method, target, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s %s: read response body: %w", method, target, err)
	}
	duration := time.Since(start)

	c.logger.DebugContext(ctx, "request completed",
		slog.String("method", method),
		slog.String("url", target),
		slog.Int("status_code", resp.StatusCode),
		slog.Duration("duration_ms", duration),
	)

	result := &Response{
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		Header:     resp.Header,
		Body:       data,
		Method:     method,
		URL:        target,
		RequestID:  requestID,
		Duration:   duration,
	}

	if cacheKey != "" && result.IsSuccess() {
		if err := c.cache.SetWithTTL(ctx, cacheKey, result, c.cacheTTL); err != nil {
			c.logger.WarnContext(ctx, "failed to cache response",
				slog.String("url", target),
				slog.String("error", err.Error()),
			)
		}
	}

	return result, nil
}

// cached returns a stored response. Lookup failures count as misses.
func (c *Client) cached(ctx context.Context, key string) (*Response, bool) {
	var resp Response
	if err := c.cache.Get(ctx, key, &resp); err != nil {
		return nil, false
	}
	resp.Cached = true
	c.logger.DebugContext(ctx, "served from cache",
		slog.String("url", resp.URL),
		slog.Int("status_code", resp.StatusCode),
	)
	return &resp, true
}
