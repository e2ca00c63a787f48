// internal/core/ports/database.go
package ports

import (
	"context"

	"github.com/ammerola/api-framework/internal/adapters/db"
)

// Database is the pooled accessor as seen by datasets and commands.
type Database interface {
	WithConn(ctx context.Context, fn func(*db.Conn) error) error
	Transaction(ctx context.Context, fn func(*db.Conn) error) error
	Query(ctx context.Context, sql string, args ...any) ([]db.Row, error)
	QueryOne(ctx context.Context, sql string, args ...any) (db.Row, error)
	QueryDict(ctx context.Context, sql string, args ...any) ([]db.RowMap, error)
	Execute(ctx context.Context, sql string, args ...any) (int64, error)
	ExecuteBatch(ctx context.Context, sql string, argsList [][]any) (int64, error)
	Ping(ctx context.Context) error
	Stats() db.PoolStats
	Health(ctx context.Context) map[string]interface{}
	Close() error
}

var _ Database = (*db.Database)(nil)
