// Package dbtest 为各包测试提供迁移好的内存 sqlite
package dbtest

import (
	"fmt"
	"sync/atomic"
	"testing"

	"gorm.io/gorm"

	"community-events/internal/core/database"
)

var seq atomic.Int64

func Open(t testing.TB) *gorm.DB {
	t.Helper()
	// 每个测试独立的共享缓存库，连接池内多连接看到同一份数据
	dsn := fmt.Sprintf("file:test%d?mode=memory&cache=shared&_pragma=foreign_keys(1)", seq.Add(1))
	db, err := database.NewGorm(database.Opts{Driver: "sqlite", DSN: dsn, MaxOpenConns: 1, LogLevel: "silent"})
	if err != nil {
		t.Fatalf("failed opening in-memory sqlite database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed getting sql.DB from gorm: %v", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := database.Migrate(db); err != nil {
		t.Fatalf("failed automigrating models: %v", err)
	}
	return db
}
