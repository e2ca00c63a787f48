package db

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// OpenSQL creates an accessor backed by database/sql using the pgx stdlib
// driver.
func OpenSQL(ctx context.Context, config *Config, logger *slog.Logger) (*Database, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.validateBounds(); err != nil {
		return nil, initError("configure pool", err)
	}

	sqlDB, err := sql.Open("pgx", config.URL())
	if err != nil {
		return nil, initError("open", err)
	}

	database, err := NewSQLDatabase(ctx, sqlDB, config, logger)
	if err != nil {
		sqlDB.Close()
		return nil, err
	}
	return database, nil
}

// NewSQLDatabase wraps an already opened *sql.DB. The pool bounds from config
// are applied to it and connectivity is verified.
//
// database/sql has no minimum pool size; MinConnections only affects how many
// idle connections are retained.
func NewSQLDatabase(ctx context.Context, sqlDB *sql.DB, config *Config, logger *slog.Logger) (*Database, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.validateBounds(); err != nil {
		return nil, initError("configure pool", err)
	}

	sqlDB.SetMaxOpenConns(int(config.MaxConnections))
	sqlDB.SetMaxIdleConns(int(max(config.MinConnections, 1)))
	if config.MaxConnLifetime > 0 {
		sqlDB.SetConnMaxLifetime(config.MaxConnLifetime)
	}
	if config.MaxConnIdleTime > 0 {
		sqlDB.SetConnMaxIdleTime(config.MaxConnIdleTime)
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		return nil, initError("ping", fmt.Errorf("%s:%d/%s: %w",
			config.Host, config.Port, config.Database, err))
	}

	logger.Info("database connection established",
		slog.String("backend", "database/sql"),
		slog.String("database", config.Database),
		slog.Int("max_connections", int(config.MaxConnections)),
	)

	return newDatabase(&sqlBackend{db: sqlDB}, config, logger), nil
}

type sqlBackend struct {
	db *sql.DB
}

func (b *sqlBackend) Acquire(ctx context.Context) (driverConn, error) {
	conn, err := b.db.Conn(ctx)
	if err != nil {
		return nil, err
	}
	return &sqlConn{conn: conn}, nil
}

func (b *sqlBackend) Ping(ctx context.Context) error {
	return b.db.PingContext(ctx)
}

func (b *sqlBackend) Stats() PoolStats {
	s := b.db.Stats()
	return PoolStats{
		MaxConns:      int32(s.MaxOpenConnections),
		TotalConns:    int32(s.OpenConnections),
		IdleConns:     int32(s.Idle),
		AcquiredConns: int32(s.InUse),
		WaitCount:     s.WaitCount,
	}
}

func (b *sqlBackend) Close() error {
	return b.db.Close()
}

// sqlQuerier is satisfied by both *sql.Conn and *sql.Tx.
type sqlQuerier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func sqlQuery(ctx context.Context, q sqlQuerier, query string, args []any) (rowSet, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	columns, err := rows.Columns()
	if err != nil {
		rows.Close()
		return nil, err
	}
	return &sqlRows{rows: rows, columns: columns}, nil
}

func sqlExec(ctx context.Context, q sqlQuerier, query string, args []any) (int64, error) {
	res, err := q.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

type sqlConn struct {
	conn *sql.Conn
}

func (c *sqlConn) Query(ctx context.Context, query string, args ...any) (rowSet, error) {
	return sqlQuery(ctx, c.conn, query, args)
}

func (c *sqlConn) Exec(ctx context.Context, query string, args ...any) (int64, error) {
	return sqlExec(ctx, c.conn, query, args)
}

func (c *sqlConn) Begin(ctx context.Context) (driverTx, error) {
	tx, err := c.conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &sqlTx{tx: tx}, nil
}

func (c *sqlConn) Release() {
	_ = c.conn.Close()
}

type sqlTx struct {
	tx *sql.Tx
}

func (t *sqlTx) Query(ctx context.Context, query string, args ...any) (rowSet, error) {
	return sqlQuery(ctx, t.tx, query, args)
}

func (t *sqlTx) Exec(ctx context.Context, query string, args ...any) (int64, error) {
	return sqlExec(ctx, t.tx, query, args)
}

func (t *sqlTx) Commit(context.Context) error   { return t.tx.Commit() }
func (t *sqlTx) Rollback(context.Context) error { return t.tx.Rollback() }

type sqlRows struct {
	rows    *sql.Rows
	columns []string
}

func (r *sqlRows) Columns() []string { return r.columns }
func (r *sqlRows) Next() bool        { return r.rows.Next() }
func (r *sqlRows) Err() error        { return r.rows.Err() }
func (r *sqlRows) Close()            { _ = r.rows.Close() }

func (r *sqlRows) Values() ([]any, error) {
	values := make([]any, len(r.columns))
	dest := make([]any, len(r.columns))
	for i := range values {
		dest[i] = &values[i]
	}
	if err := r.rows.Scan(dest...); err != nil {
		return nil, err
	}
	return values, nil
}
