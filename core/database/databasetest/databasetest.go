// Package databasetest opens throwaway in-memory SQLite stores for tests.
package databasetest

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"

	"event-service/core/config"
	"event-service/core/database"
)

var seq atomic.Int64

// Open returns a store with the events schema applied. It is closed when the
// test ends.
func Open(t testing.TB) *database.Database {
	t.Helper()
	return OpenWithPool(t, 8)
}

// OpenWithPool is Open with at most maxOpen connections.
func OpenWithPool(t testing.TB, maxOpen int) *database.Database {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_", "#", "_").Replace(t.Name())
	url := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, seq.Add(1))

	db, err := database.InitDB(config.DatabaseConfig{URL: url, MaxOpenConns: maxOpen, MaxIdleConns: maxOpen})
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := db.EnsureSchema(context.Background()); err != nil {
		t.Fatalf("create schema: %v", err)
	}
	return db
}
