/*
 * @module service/datasource/database
 * @description 数据库记录源与记录落地，支持 SQLite 与 PostgreSQL
 * @architecture 适配器模式 - 通过 gorm 适配不同数据库方言
 * @documentReference DESIGN.md
 * @stateFlow 删除旧表 -> 按列顺序建表(TEXT) -> 分批插入 -> 提交事务
 * @rules 写入在单个事务内完成，缺失值写为 NULL，读取时 NULL 还原为缺失值
 * @dependencies gorm.io/gorm, gorm.io/driver/sqlite, gorm.io/driver/postgres
 * @refs interface.go, manager.go
 */

package datasource

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"catalog-cleaner/service/models"
	"catalog-cleaner/service/normalizer"
)

// maxBindVars 单条 INSERT 的最大绑定参数数
const maxBindVars = 900

// OpenDatabase 按类型打开数据库连接
func OpenDatabase(dbType, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch dbType {
	case TypeSQLite:
		dialector = sqlite.Open(dsn)
	case TypePostgres:
		dialector = postgres.Open(dsn)
	default:
		return nil, fmt.Errorf("不支持的数据库类型: %s", dbType)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("连接数据库失败: %w", err)
	}
	return db, nil
}

// DatabaseSink 数据库记录落地
type DatabaseSink struct {
	db       *gorm.DB
	table    string
	location string
}

// NewDatabaseSink 创建数据库记录落地
func NewDatabaseSink(db *gorm.DB, table, location string) *DatabaseSink {
	return &DatabaseSink{db: db, table: table, location: location}
}

// Location 落地位置，连接串中的密码已脱敏
func (s *DatabaseSink) Location() string {
	return redactLocation(s.location) + "#" + s.table
}

// Close 关闭数据库连接
func (s *DatabaseSink) Close() error {
	return closeDatabase(s.db)
}

// Write 重建目标表并写入全部记录
func (s *DatabaseSink) Write(ctx context.Context, table *models.Table) error {
	if len(table.Columns) == 0 {
		return fmt.Errorf("数据表没有列，无法写入 %s", s.table)
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Migrator().DropTable(s.table); err != nil {
			return fmt.Errorf("删除旧表失败: %w", err)
		}
		if err := tx.Exec(createTableSQL(s.table, table.Columns)).Error; err != nil {
			return fmt.Errorf("创建目标表失败: %w", err)
		}

		batchSize := maxBindVars / len(table.Columns)
		if batchSize < 1 {
			batchSize = 1
		}

		for start := 0; start < table.Len(); start += batchSize {
			end := start + batchSize
			if end > table.Len() {
				end = table.Len()
			}
			query, values := insertSQL(s.table, table.Columns, table.Records[start:end])
			if err := tx.Exec(query, values...).Error; err != nil {
				return fmt.Errorf("写入第 %d-%d 行失败: %w", start, end-1, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	slog.Info("清洗结果写入数据库完成", "table", s.table, "rows", table.Len())
	return nil
}

// DatabaseSource 数据库记录源
type DatabaseSource struct {
	db       *gorm.DB
	table    string
	location string
}

// NewDatabaseSource 创建数据库记录源
func NewDatabaseSource(db *gorm.DB, table, location string) *DatabaseSource {
	return &DatabaseSource{db: db, table: table, location: location}
}

// Location 数据源位置，连接串中的密码已脱敏
func (s *DatabaseSource) Location() string {
	return redactLocation(s.location) + "#" + s.table
}

// Close 关闭数据库连接
func (s *DatabaseSource) Close() error {
	return closeDatabase(s.db)
}

// Read 读取整张表，NULL 还原为缺失值
func (s *DatabaseSource) Read(ctx context.Context) (*models.Table, error) {
	db := s.db.WithContext(ctx)
	if !db.Migrator().HasTable(s.table) {
		return nil, fmt.Errorf("数据表 %s: %w", s.table, ErrSourceNotFound)
	}

	rows, err := db.Raw("SELECT * FROM " + quoteIdent(s.table)).Rows()
	if err != nil {
		return nil, fmt.Errorf("查询数据表 %s 失败: %w", s.table, err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("获取列信息失败: %w", err)
	}

	var records []models.Record
	for rows.Next() {
		cells := make([]sql.NullString, len(columns))
		dest := make([]interface{}, len(columns))
		for i := range cells {
			dest[i] = &cells[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("读取数据行失败: %w", err)
		}

		record := make(models.Record, len(columns))
		for i, cell := range cells {
			if cell.Valid {
				record[i] = cell.String
			}
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("遍历数据行失败: %w", err)
	}

	slog.Info("数据库原始数据读取完成", "table", s.table, "rows", len(records))
	return models.NewTable(columns, records)
}

// redactLocation 隐藏 URL 形式连接串中的密码，文件路径原样返回
func redactLocation(location string) string {
	u, err := url.Parse(location)
	if err != nil || u.User == nil {
		return location
	}
	return u.Redacted()
}

func closeDatabase(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("获取数据库连接失败: %w", err)
	}
	return sqlDB.Close()
}

// quoteIdent 以双引号引用标识符，SQLite 与 PostgreSQL 均适用
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func createTableSQL(table string, columns []string) string {
	defs := make([]string, len(columns))
	for i, col := range columns {
		defs[i] = quoteIdent(col) + " TEXT"
	}
	return fmt.Sprintf("CREATE TABLE %s (%s)", quoteIdent(table), strings.Join(defs, ", "))
}

func insertSQL(table string, columns []string, records []models.Record) (string, []interface{}) {
	quoted := make([]string, len(columns))
	for i, col := range columns {
		quoted[i] = quoteIdent(col)
	}

	placeholder := "(" + strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", ") + ")"
	groups := make([]string, len(records))
	values := make([]interface{}, 0, len(records)*len(columns))
	for i, record := range records {
		groups[i] = placeholder
		for _, value := range record {
			if value == nil {
				values = append(values, nil)
				continue
			}
			values = append(values, normalizer.ToText(value))
		}
	}

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES %s",
		quoteIdent(table), strings.Join(quoted, ", "), strings.Join(groups, ", "))
	return query, values
}
