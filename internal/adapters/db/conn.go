package db

import (
	"context"
	"errors"
	"log/slog"
)

var errConnReleased = errors.New("connection already returned to the pool")

// Conn is a connection borrowed through Database.WithConn. It is only valid
// inside the callback and must not be shared between goroutines.
//
// Reads run on the open transaction when there is one. The first Exec opens a
// transaction that stays open until Commit or Rollback.
type Conn struct {
	conn     driverConn
	tx       driverTx
	logger   *slog.Logger
	released bool
}

func (c *Conn) target() (querier, error) {
	if c.released {
		return nil, errConnReleased
	}
	if c.tx != nil {
		return c.tx, nil
	}
	return c.conn, nil
}

func (c *Conn) begin(ctx context.Context) error {
	if c.released {
		return queryError("begin", errConnReleased)
	}
	if c.tx != nil {
		return nil
	}
	tx, err := c.conn.Begin(ctx)
	if err != nil {
		return queryError("begin", err)
	}
	c.tx = tx
	return nil
}

// InTransaction reports whether a transaction is open on the connection.
func (c *Conn) InTransaction() bool {
	return c.tx != nil
}

// Query returns every row produced by sql.
func (c *Conn) Query(ctx context.Context, sql string, args ...any) ([]Row, error) {
	var result []Row
	err := c.scan(ctx, "query", sql, args, func(_ []string, values []any) bool {
		result = append(result, Row(values))
		return true
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// QueryOne returns the first row, or nil when nothing matched.
func (c *Conn) QueryOne(ctx context.Context, sql string, args ...any) (Row, error) {
	var result Row
	err := c.scan(ctx, "query one", sql, args, func(_ []string, values []any) bool {
		result = Row(values)
		return false
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// QueryDict returns rows keyed by column name.
func (c *Conn) QueryDict(ctx context.Context, sql string, args ...any) ([]RowMap, error) {
	var result []RowMap
	err := c.scan(ctx, "query dict", sql, args, func(columns []string, values []any) bool {
		m := make(RowMap, len(columns))
		for i, col := range columns {
			m[col] = values[i]
		}
		result = append(result, m)
		return true
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// scan feeds each row to fn until fn returns false or the rows run out.
func (c *Conn) scan(ctx context.Context, op, sql string, args []any, fn func(columns []string, values []any) bool) error {
	q, err := c.target()
	if err != nil {
		return queryError(op, err)
	}

	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return queryError(op, err)
	}
	defer rows.Close()

	columns := rows.Columns()
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return queryError(op, err)
		}
		if !fn(columns, values) {
			break
		}
	}
	if err := rows.Err(); err != nil {
		return queryError(op, err)
	}
	return nil
}

// Exec runs a write statement inside the connection's transaction, opening
// one if needed, and returns the number of affected rows.
func (c *Conn) Exec(ctx context.Context, sql string, args ...any) (int64, error) {
	if err := c.begin(ctx); err != nil {
		return 0, err
	}
	n, err := c.tx.Exec(ctx, sql, args...)
	if err != nil {
		return 0, queryError("exec", err)
	}
	return n, nil
}

// Commit commits the open transaction. Without one it does nothing.
func (c *Conn) Commit(ctx context.Context) error {
	if c.released {
		return queryError("commit", errConnReleased)
	}
	if c.tx == nil {
		return nil
	}
	tx := c.tx
	c.tx = nil
	if err := tx.Commit(ctx); err != nil {
		return queryError("commit", err)
	}
	return nil
}

// Rollback discards the open transaction. Without one it does nothing.
func (c *Conn) Rollback(ctx context.Context) error {
	if c.released {
		return queryError("rollback", errConnReleased)
	}
	if c.tx == nil {
		return nil
	}
	tx := c.tx
	c.tx = nil
	if err := tx.Rollback(ctx); err != nil {
		return queryError("rollback", err)
	}
	return nil
}

// release rolls back anything left open and hands the connection back. Only
// the first call has an effect.
func (c *Conn) release(ctx context.Context) {
	if c.released {
		return
	}
	if c.tx != nil {
		c.logger.Debug("rolling back open transaction before release")
		if err := c.Rollback(context.WithoutCancel(ctx)); err != nil {
			c.logger.Warn("rollback before release failed", slog.String("error", err.Error()))
		}
	}
	c.released = true
	c.conn.Release()
}
