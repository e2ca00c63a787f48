// internal/core/ports/api_client.go
package ports

import (
	"context"
	"net/url"

	"github.com/ammerola/api-framework/internal/adapters/apiclient"
)

// APIClient issues REST calls against a single base address.
type APIClient interface {
	BaseURL() string
	Get(ctx context.Context, endpoint apiclient.Endpoint, query url.Values, path apiclient.PathParams) (*apiclient.Response, error)
	Post(ctx context.Context, endpoint apiclient.Endpoint, body any) (*apiclient.Response, error)
	Put(ctx context.Context, endpoint apiclient.Endpoint, body any, path apiclient.PathParams) (*apiclient.Response, error)
	Delete(ctx context.Context, endpoint apiclient.Endpoint, path apiclient.PathParams) (*apiclient.Response, error)
}

var _ APIClient = (*apiclient.Client)(nil)
