/*
 * @module testutil/test_helper
 * @description 测试工具和辅助函数
 * @architecture 测试基础设施 - 提供测试通用工具和数据工厂
 * @documentReference DESIGN.md
 * @stateFlow 测试环境初始化 -> 测试数据创建 -> 测试执行 -> 清理资源
 * @rules 提供可重用的测试工具，确保测试环境的一致性
 * @dependencies gorm, sqlite, testify
 * @refs service/models
 */

package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"catalog-cleaner/service/models"
)

// CatalogColumns 目录数据集的标准表头
var CatalogColumns = []string{
	"show_id", "type", "title", "director", "cast", "country",
	"date_added", "release_year", "rating", "duration", "listed_in", "description",
}

// NewTestDB 创建基于临时文件的 SQLite 测试数据库，测试结束时关闭
func NewTestDB(t testing.TB) (*gorm.DB, string) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "catalog_test.db")
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err, "failed to connect test database")

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db, path
}

// NewTable 创建数据表，行内 nil 表示缺失值
func NewTable(t testing.TB, columns []string, rows ...[]interface{}) *models.Table {
	t.Helper()

	records := make([]models.Record, 0, len(rows))
	for _, row := range rows {
		records = append(records, models.Record(row))
	}

	table, err := models.NewTable(columns, records)
	require.NoError(t, err)
	return table
}

// CatalogRowOption 目录数据行选项函数类型
type CatalogRowOption func(map[string]interface{})

// WithField 设置目录数据行的某个字段
func WithField(column string, value interface{}) CatalogRowOption {
	return func(row map[string]interface{}) {
		row[column] = value
	}
}

// CatalogRow 按 CatalogColumns 顺序生成一行完整的目录数据
func CatalogRow(id string, opts ...CatalogRowOption) []interface{} {
	values := map[string]interface{}{
		"show_id":      id,
		"type":         "Movie",
		"title":        "Title " + id,
		"director":     "Director " + id,
		"cast":         "Actor A, Actor B",
		"country":      "United States",
		"date_added":   "September 25, 2021",
		"release_year": "2020",
		"rating":       "PG-13",
		"duration":     "90 min",
		"listed_in":    "Dramas",
		"description":  "Description " + id,
	}

	for _, opt := range opts {
		opt(values)
	}

	row := make([]interface{}, len(CatalogColumns))
	for i, col := range CatalogColumns {
		row[i] = values[col]
	}
	return row
}

// WriteFile 在目录下写入测试文件并返回路径
func WriteFile(t testing.TB, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}
