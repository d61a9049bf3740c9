/*
 * @module service/datasource/manager
 * @description 数据源管理器，根据位置字符串识别类型并创建记录源与记录落地
 * @architecture 工厂模式 - 按类型创建实例
 * @documentReference DESIGN.md
 * @stateFlow 位置字符串 -> 类型识别 -> 打开连接(数据库) -> 返回实例
 * @rules postgres:// 与 postgresql:// 为 PostgreSQL；sqlite:// 前缀或 .db/.sqlite/.sqlite3 后缀为 SQLite；其余按 CSV 处理
 * @dependencies os, path/filepath
 * @refs csv.go, database.go
 */

package datasource

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const sqlitePrefix = "sqlite://"

// DetectType 根据位置识别数据源类型
func DetectType(location string) string {
	lower := strings.ToLower(location)
	switch {
	case strings.HasPrefix(lower, "postgres://"), strings.HasPrefix(lower, "postgresql://"):
		return TypePostgres
	case strings.HasPrefix(lower, sqlitePrefix):
		return TypeSQLite
	}

	switch strings.ToLower(filepath.Ext(location)) {
	case ".db", ".sqlite", ".sqlite3":
		return TypeSQLite
	default:
		return TypeCSV
	}
}

// sqlitePath 去掉 sqlite:// 前缀
func sqlitePath(location string) string {
	if strings.HasPrefix(strings.ToLower(location), sqlitePrefix) {
		return location[len(sqlitePrefix):]
	}
	return location
}

// OpenSource 按位置创建记录源，数据库类型从 table 读取
func OpenSource(location, table string) (RecordSource, error) {
	switch DetectType(location) {
	case TypePostgres:
		db, err := OpenDatabase(TypePostgres, location)
		if err != nil {
			return nil, err
		}
		return NewDatabaseSource(db, table, location), nil
	case TypeSQLite:
		path := sqlitePath(location)
		// SQLite 打开不存在的文件会新建，先检查
		if !fileExists(path) {
			return nil, fmt.Errorf("数据库文件 %s: %w", path, ErrSourceNotFound)
		}
		db, err := OpenDatabase(TypeSQLite, path)
		if err != nil {
			return nil, err
		}
		return NewDatabaseSource(db, table, location), nil
	default:
		return NewCSVSource(location), nil
	}
}

// OpenSink 按位置创建记录落地，数据库类型写入 table
func OpenSink(location, table string) (RecordSink, error) {
	switch DetectType(location) {
	case TypePostgres:
		db, err := OpenDatabase(TypePostgres, location)
		if err != nil {
			return nil, err
		}
		return NewDatabaseSink(db, table, location), nil
	case TypeSQLite:
		path := sqlitePath(location)
		if err := ensureParentDir(path); err != nil {
			return nil, err
		}
		db, err := OpenDatabase(TypeSQLite, path)
		if err != nil {
			return nil, err
		}
		return NewDatabaseSink(db, table, location), nil
	default:
		return NewCSVSink(location), nil
	}
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// ensureParentDir 创建文件所在目录
func ensureParentDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "" || dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("创建输出目录失败: %w", err)
	}
	return nil
}
