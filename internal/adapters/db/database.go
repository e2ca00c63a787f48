// internal/adapters/db/database.go
package db

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// Row is one result row with values in column order.
type Row []any

// RowMap is one result row keyed by column name.
type RowMap map[string]any

// Database is a bounded connection pool with scoped acquisition. Every
// operation borrows one connection, runs on it and returns it to the pool
// before the call completes.
type Database struct {
	backend  driverPool
	config   *Config
	logger   *slog.Logger
	closed   atomic.Bool
	acquires atomic.Int64
	closeMu  sync.Mutex
}

func newDatabase(backend driverPool, config *Config, logger *slog.Logger) *Database {
	return &Database{
		backend: backend,
		config:  config,
		logger:  logger.With(slog.String("component", "database")),
	}
}

// acquire borrows a connection, bounded by AcquireTimeout when configured.
func (db *Database) acquire(ctx context.Context) (driverConn, error) {
	if db.closed.Load() {
		return nil, ErrPoolClosed
	}

	acquireCtx := ctx
	if db.config.AcquireTimeout > 0 {
		var cancel context.CancelFunc
		acquireCtx, cancel = context.WithTimeout(ctx, db.config.AcquireTimeout)
		defer cancel()
	}

	conn, err := db.backend.Acquire(acquireCtx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	db.acquires.Add(1)
	return conn, nil
}

// WithConn borrows a connection for the duration of fn. The connection is
// returned exactly once whether fn succeeds, fails or panics. A transaction
// still open when fn returns is rolled back; callers commit explicitly.
func (db *Database) WithConn(ctx context.Context, fn func(*Conn) error) error {
	dc, err := db.acquire(ctx)
	if err != nil {
		return queryError("acquire", err)
	}

	conn := &Conn{conn: dc, logger: db.logger}
	defer conn.release(ctx)

	if err := fn(conn); err != nil {
		return queryError("with conn", err)
	}
	return nil
}

// Transaction runs fn inside one transaction on one scoped connection and
// commits when fn returns nil.
func (db *Database) Transaction(ctx context.Context, fn func(*Conn) error) error {
	return db.WithConn(ctx, func(conn *Conn) error {
		if err := conn.begin(ctx); err != nil {
			return err
		}
		if err := fn(conn); err != nil {
			return err
		}
		return conn.Commit(ctx)
	})
}

// Query returns every row produced by sql.
func (db *Database) Query(ctx context.Context, sql string, args ...any) ([]Row, error) {
	var rows []Row
	err := db.WithConn(ctx, func(conn *Conn) error {
		var err error
		rows, err = conn.Query(ctx, sql, args...)
		return err
	})
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// QueryOne returns the first row, or nil when nothing matched.
func (db *Database) QueryOne(ctx context.Context, sql string, args ...any) (Row, error) {
	var row Row
	err := db.WithConn(ctx, func(conn *Conn) error {
		var err error
		row, err = conn.QueryOne(ctx, sql, args...)
		return err
	})
	if err != nil {
		return nil, err
	}
	return row, nil
}

// QueryDict returns rows keyed by the result's column names.
func (db *Database) QueryDict(ctx context.Context, sql string, args ...any) ([]RowMap, error) {
	var rows []RowMap
	err := db.WithConn(ctx, func(conn *Conn) error {
		var err error
		rows, err = conn.QueryDict(ctx, sql, args...)
		return err
	})
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// Execute runs a single write statement in its own transaction and returns
// the number of affected rows.
func (db *Database) Execute(ctx context.Context, sql string, args ...any) (int64, error) {
	var affected int64
	err := db.WithConn(ctx, func(conn *Conn) error {
		n, err := conn.Exec(ctx, sql, args...)
		if err != nil {
			return err
		}
		if err := conn.Commit(ctx); err != nil {
			return err
		}
		affected = n
		return nil
	})
	if err != nil {
		return 0, err
	}
	return affected, nil
}

// ExecuteBatch runs sql once per argument tuple, in order, inside a single
// transaction. It returns the total number of affected rows. Any failure
// rolls back the whole batch.
func (db *Database) ExecuteBatch(ctx context.Context, sql string, argsList [][]any) (int64, error) {
	if db.closed.Load() {
		return 0, queryError("execute batch", ErrPoolClosed)
	}
	if len(argsList) == 0 {
		return 0, nil
	}

	start := time.Now()
	var total int64
	err := db.WithConn(ctx, func(conn *Conn) error {
		var sum int64
		for i, args := range argsList {
			n, err := conn.Exec(ctx, sql, args...)
			if err != nil {
				return fmt.Errorf("batch item %d: %w", i, err)
			}
			sum += n
		}
		if err := conn.Commit(ctx); err != nil {
			return err
		}
		total = sum
		return nil
	})
	if err != nil {
		return 0, err
	}

	db.logger.DebugContext(ctx, "batch executed",
		slog.Int("statements", len(argsList)),
		slog.Int64("rows_affected", total),
		slog.Duration("duration", time.Since(start)),
	)
	return total, nil
}

// Exists reports whether the query returns at least one row.
func (db *Database) Exists(ctx context.Context, sql string, args ...any) (bool, error) {
	row, err := db.QueryOne(ctx, "SELECT EXISTS("+sql+")", args...)
	if err != nil {
		return false, err
	}
	if len(row) == 0 {
		return false, nil
	}
	exists, _ := row[0].(bool)
	return exists, nil
}

// Count runs a COUNT query and returns the first column of the first row.
func (db *Database) Count(ctx context.Context, sql string, args ...any) (int64, error) {
	row, err := db.QueryOne(ctx, sql, args...)
	if err != nil {
		return 0, err
	}
	if len(row) == 0 {
		return 0, nil
	}
	switch v := row[0].(type) {
	case int64:
		return v, nil
	case int32:
		return int64(v), nil
	case int:
		return int64(v), nil
	default:
		return 0, queryError("count", fmt.Errorf("unexpected count type %T", row[0]))
	}
}

// Ping checks connectivity through the pool.
func (db *Database) Ping(ctx context.Context) error {
	if db.closed.Load() {
		return queryError("ping", ErrPoolClosed)
	}
	if err := db.backend.Ping(ctx); err != nil {
		return queryError("ping", err)
	}
	return nil
}

// Stats returns a snapshot of the pool counters.
func (db *Database) Stats() PoolStats {
	stats := db.backend.Stats()
	stats.AcquireCount = db.acquires.Load()
	return stats
}

// Health returns pool statistics together with the result of a trivial
// round trip.
func (db *Database) Health(ctx context.Context) map[string]interface{} {
	stats := db.Stats()
	health := map[string]interface{}{
		"status":               "healthy",
		"max_connections":      stats.MaxConns,
		"total_connections":    stats.TotalConns,
		"idle_connections":     stats.IdleConns,
		"acquired_connections": stats.AcquiredConns,
		"acquire_count":        stats.AcquireCount,
		"wait_count":           stats.WaitCount,
	}

	ctx, cancel := context.WithTimeout(ctx, time.Second*2)
	defer cancel()

	if _, err := db.QueryOne(ctx, "SELECT 1"); err != nil {
		health["status"] = "unhealthy"
		health["error"] = err.Error()
	}

	return health
}

// Closed reports whether Close has been called.
func (db *Database) Closed() bool {
	return db.closed.Load()
}

// Close shuts the pool down. Calling it again is a no-op.
func (db *Database) Close() error {
	db.closeMu.Lock()
	defer db.closeMu.Unlock()

	if !db.closed.CompareAndSwap(false, true) {
		return nil
	}

	if err := db.backend.Close(); err != nil {
		db.logger.Error("failed to close database connections", slog.String("error", err.Error()))
		return shutdownError(err)
	}

	db.logger.Info("database connections closed")
	return nil
}
