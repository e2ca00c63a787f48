package db

import "context"

// The accessor talks to its backend through these interfaces so the same
// scoping, commit and rollback rules apply to pgxpool and database/sql.

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (rowSet, error)
	Exec(ctx context.Context, sql string, args ...any) (int64, error)
}

type driverPool interface {
	Acquire(ctx context.Context) (driverConn, error)
	Ping(ctx context.Context) error
	Stats() PoolStats
	Close() error
}

type driverConn interface {
	querier
	Begin(ctx context.Context) (driverTx, error)
	Release()
}

type driverTx interface {
	querier
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

type rowSet interface {
	Columns() []string
	Next() bool
	Values() ([]any, error)
	Err() error
	Close()
}

// PoolStats is a point-in-time snapshot of the pool.
type PoolStats struct {
	MaxConns      int32 `json:"max_connections"`
	TotalConns    int32 `json:"total_connections"`
	IdleConns     int32 `json:"idle_connections"`
	AcquiredConns int32 `json:"acquired_connections"`
	AcquireCount  int64 `json:"acquire_count"`
	WaitCount     int64 `json:"wait_count"`
}
