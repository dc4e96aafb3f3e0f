// Package rdbtest 提供基于sqlite临时文件的测试数据库
package rdbtest

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/xiebiao/librarydesk/internal/infrastructure/config"
	"github.com/xiebiao/librarydesk/internal/infrastructure/persistence/rdb"
)

// New 创建已迁移的测试库,测试结束时关闭
// 单连接使事务在连接池上整体串行执行: 并发用例验证的是结果不变量,
// 不会触发SELECT ... FOR UPDATE的锁等待
func New(t testing.TB) *gorm.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "librarydesk_test.db")
	db, err := rdb.Open(config.DriverSQLite, path+"?_busy_timeout=5000", logger.Silent)
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, rdb.AutoMigrate(db))

	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}
