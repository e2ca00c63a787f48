package apiclient

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the transport. Tests pass a mock Doer here.
func WithHTTPClient(doer Doer) Option {
	return func(c *Client) {
		c.doer = doer
	}
}

// WithTimeout bounds each request, including reading the body. Zero disables
// the bound.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithRateLimit caps outgoing requests per second. A non-positive rps
// disables limiting.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithHeader adds a header sent with every request.
func WithHeader(key, value string) Option {
	return func(c *Client) {
		c.headers.Set(key, value)
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return WithHeader("User-Agent", ua)
}

// ResponseCache stores successful GET responses between runs.
type ResponseCache interface {
	Get(ctx context.Context, key string, dest any) error
	SetWithTTL(ctx context.Context, key string, value any, ttl time.Duration) error
}

// WithCache serves repeated GETs from cache. Only 2xx responses are stored.
func WithCache(cache ResponseCache, ttl time.Duration) Option {
	return func(c *Client) {
		c.cache = cache
		c.cacheTTL = ttl
	}
}

type freshResponseKey struct{}

// WithFreshResponse makes GETs on the returned context skip the cache
// lookup and always reach the server. Successful responses still refresh the
// cached entry.
func WithFreshResponse(ctx context.Context) context.Context {
	return context.WithValue(ctx, freshResponseKey{}, true)
}

func freshResponse(ctx context.Context) bool {
	fresh, _ := ctx.Value(freshResponseKey{}).(bool)
	return fresh
}

// WithLogger sets the logger used for request logs.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

var _ Doer = (*http.Client)(nil)
