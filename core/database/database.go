package database

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"event-service/core/config"
	"event-service/core/errors"
	"event-service/core/logger"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

type Dialect string

const (
	DialectPostgres Dialect = "postgres"
	DialectSQLite   Dialect = "sqlite3"

	defaultConnMaxLifetime = 30 * time.Minute
	pingTimeout            = 5 * time.Second
)

// Pool hands out store handles. Every handle must be closed by its owner.
type Pool interface {
	Acquire(ctx context.Context) (Handle, error)
	Dialect() Dialect
}

type Database struct {
	sqlx    *sqlx.DB
	dialect Dialect
	inUse   atomic.Int64
}

// ParseURL maps DATABASE_URL onto a registered driver name and its DSN.
func ParseURL(url string) (Dialect, string, error) {
	url = strings.TrimSpace(url)
	switch {
	case strings.HasPrefix(url, "postgres://"), strings.HasPrefix(url, "postgresql://"):
		return DialectPostgres, url, nil
	case url == "sqlite://:memory:", url == "sqlite:///:memory:":
		return DialectSQLite, "file::memory:?cache=shared", nil
	case strings.HasPrefix(url, "sqlite:///"):
		return DialectSQLite, strings.TrimPrefix(url, "sqlite:///"), nil
	case strings.HasPrefix(url, "sqlite://"):
		return DialectSQLite, strings.TrimPrefix(url, "sqlite://"), nil
	case strings.HasPrefix(url, "file:"):
		return DialectSQLite, url, nil
	}
	return "", "", errors.Config(fmt.Sprintf("unsupported DATABASE_URL scheme in %q", redact(url)))
}

func InitDB(cfg config.DatabaseConfig) (*Database, error) {
	logger.Info("Initializing database...")

	dialect, dsn, err := ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	sqlxDB, err := sqlx.Open(string(dialect), dsn)
	if err != nil {
		logger.Error("Failed to open database", "error", err)
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if cfg.MaxOpenConns > 0 {
		sqlxDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		sqlxDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if dialect == DialectPostgres {
		sqlxDB.SetConnMaxLifetime(defaultConnMaxLifetime)
	}

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err = sqlxDB.PingContext(ctx); err != nil {
		_ = sqlxDB.Close()
		logger.Error("Failed to ping database", "error", err)
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info("Database initialized successfully",
		"dialect", dialect,
		"url", redact(cfg.URL),
		"maxOpenConns", cfg.MaxOpenConns,
		"maxIdleConns", cfg.MaxIdleConns,
	)

	return &Database{sqlx: sqlxDB, dialect: dialect}, nil
}

// Acquire reserves one pooled connection for the caller.
func (d *Database) Acquire(ctx context.Context) (Handle, error) {
	conn, err := d.sqlx.Connx(ctx)
	if err != nil {
		return nil, errors.Store("failed to acquire store handle", err)
	}
	return newHandle(conn, d.dialect, &d.inUse), nil
}

// InUse counts handles that have been acquired and not yet closed.
func (d *Database) InUse() int64 {
	return d.inUse.Load()
}

func (d *Database) Dialect() Dialect {
	return d.dialect
}

func (d *Database) Close() error {
	return d.sqlx.Close()
}

// redact hides the password component of a connection URL.
func redact(url string) string {
	schemeEnd := strings.Index(url, "://")
	at := strings.LastIndex(url, "@")
	if schemeEnd < 0 || at < schemeEnd {
		return url
	}
	userinfo := url[schemeEnd+3 : at]
	if colon := strings.Index(userinfo, ":"); colon >= 0 {
		return url[:schemeEnd+3] + userinfo[:colon] + ":***" + url[at:]
	}
	return url
}
