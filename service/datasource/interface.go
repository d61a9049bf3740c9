/*
 * @module service/datasource/interface
 * @description 记录源与记录落地的统一接口定义
 * @architecture 接口隔离原则 - 清洗核心只依赖接口，不关心文件或数据库细节
 * @documentReference DESIGN.md
 * @stateFlow 记录源读取 -> 清洗 -> 记录落地写入
 * @rules 读取失败时不得产生任何输出；找不到数据源统一返回 ErrSourceNotFound
 * @dependencies context, catalog-cleaner/service/models
 * @refs csv.go, database.go, manager.go
 */

package datasource

import (
	"context"
	"errors"

	"catalog-cleaner/service/models"
)

// ErrSourceNotFound 数据源不存在
var ErrSourceNotFound = errors.New("数据源不存在")

const (
	TypeCSV      = "csv"
	TypeSQLite   = "sqlite"
	TypePostgres = "postgres"
)

// RecordSource 记录源，一次性读取整张表
type RecordSource interface {
	// Read 读取整张表，列名取自表头
	Read(ctx context.Context) (*models.Table, error)

	// Location 数据源位置，用于日志
	Location() string
}

// RecordSink 记录落地
type RecordSink interface {
	// Write 按输入列顺序写出整张表
	Write(ctx context.Context, table *models.Table) error

	// Location 落地位置，用于日志与运行摘要
	Location() string
}
