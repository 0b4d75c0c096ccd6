// Package dbtest opens throwaway SQLite databases with the real migrations applied.
package dbtest

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/angelmondragon/postoko-backend/pkg/db"
	"github.com/angelmondragon/postoko-backend/pkg/migrate"
	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// DSN returns an isolated in-memory SQLite DSN with foreign keys enforced.
func DSN() string {
	return fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", uuid.NewString())
}

// New returns a migrated client that is closed when the test ends.
func New(t testing.TB) *db.Client {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open(DSN()), db.GormConfig())
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := conn.DB()
	if err != nil {
		t.Fatalf("sql handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := migrate.Up(context.Background(), sqlDB, db.DialectSQLite); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	client := db.Open(conn, db.DialectSQLite)
	t.Cleanup(func() { _ = client.Close() })
	return client
}

// InterleaveOnce executes stmt on the same connection as the next gorm create
// or update against table, right before gorm issues its own statement. It
// stands in for a concurrent writer that slips in after an application check.
func InterleaveOnce(t testing.TB, client *db.Client, table, stmt string, args ...any) {
	t.Helper()

	var once sync.Once
	hook := func(tx *gorm.DB) {
		if tx.Statement.Table != table {
			return
		}
		once.Do(func() {
			if err := tx.Session(&gorm.Session{NewDB: true}).Exec(stmt, args...).Error; err != nil {
				_ = tx.AddError(fmt.Errorf("interleaved write: %w", err))
			}
		})
	}

	name := "dbtest:interleave:" + uuid.NewString()
	callbacks := client.DB().Callback()
	if err := callbacks.Create().Before("gorm:create").Register(name, hook); err != nil {
		t.Fatalf("register create hook: %v", err)
	}
	if err := callbacks.Update().Before("gorm:update").Register(name, hook); err != nil {
		t.Fatalf("register update hook: %v", err)
	}
}
