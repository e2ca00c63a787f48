package ports

import (
	"context"
	"io"
)

// ReportStore keeps run artifacts such as check reports.
type ReportStore interface {
	Upload(ctx context.Context, key string, data io.Reader, contentType string) (string, error)
	Download(ctx context.Context, key string) ([]byte, error)
	Exists(ctx context.Context, key string) (bool, error)
}
