package database

import (
	"context"
	"database/sql"
	stderrors "errors"
	"sync"
	"sync/atomic"

	"event-service/core/errors"

	"github.com/jmoiron/sqlx"
	"go.uber.org/multierr"
)

// Handle is a scoped store resource backed by a single pooled connection.
type Handle interface {
	GetContext(ctx context.Context, dest any, query string, args ...any) error
	SelectContext(ctx context.Context, dest any, query string, args ...any) error
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	Rebind(query string) string
	Dialect() Dialect
	// WithTx commits when fn returns nil and rolls back otherwise. A panic in fn
	// rolls back and is re-raised.
	WithTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error
	Close() error
}

type handle struct {
	conn    *sqlx.Conn
	dialect Dialect
	once    sync.Once
	inUse   *atomic.Int64
}

func newHandle(conn *sqlx.Conn, dialect Dialect, inUse *atomic.Int64) *handle {
	inUse.Add(1)
	return &handle{conn: conn, dialect: dialect, inUse: inUse}
}

func (h *handle) GetContext(ctx context.Context, dest any, query string, args ...any) error {
	return h.conn.GetContext(ctx, dest, query, args...)
}

func (h *handle) SelectContext(ctx context.Context, dest any, query string, args ...any) error {
	return h.conn.SelectContext(ctx, dest, query, args...)
}

func (h *handle) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return h.conn.ExecContext(ctx, query, args...)
}

func (h *handle) Rebind(query string) string {
	return h.conn.Rebind(query)
}

func (h *handle) Dialect() Dialect {
	return h.dialect
}

func (h *handle) WithTx(ctx context.Context, fn func(tx *sqlx.Tx) error) (err error) {
	tx, err := h.conn.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Store("failed to begin transaction", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err = fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && !stderrors.Is(rbErr, sql.ErrTxDone) {
			err = multierr.Append(err, rbErr)
		}
		return err
	}

	if err = tx.Commit(); err != nil {
		return errors.Store("failed to commit transaction", err)
	}
	return nil
}

// Close returns the connection to the pool. Later calls are no-ops.
func (h *handle) Close() error {
	var err error
	h.once.Do(func() {
		err = h.conn.Close()
		h.inUse.Add(-1)
	})
	return err
}
