package testutil

import (
	"context"
	"fmt"
	"testing"

	"kasap-service/internal/database"
	"kasap-service/internal/migrate"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// SetupTestSQLite opens a private in-memory database with every table migrated.
// The pool is pinned to one connection, so code under test must use the
// transaction handle inside WithTx callbacks.
func SetupTestSQLite(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), database.GormConfig(gormlogger.Silent))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := migrate.MigrateKasapDB(context.Background(), db, zap.NewNop(), migrate.MigrateOptions{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}
