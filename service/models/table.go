/*
 * @module service/models/table
 * @description 目录数据表模型，定义记录、数据表和清洗指标
 * @architecture 数据模型层
 * @documentReference DESIGN.md
 * @stateFlow 数据源读取 -> Table -> 清洗阶段(生成新Table) -> 数据落地
 * @rules 所有记录列数与表头一致，清洗阶段不得修改调用方持有的Table
 * @dependencies errors, fmt
 * @refs service/cleansing, service/datasource
 */

package models

import (
	"errors"
	"fmt"
)

// ErrShapeMismatch 记录列数与表头不一致
var ErrShapeMismatch = errors.New("记录列数与表头不一致")

// Record 单行记录，按表头顺序保存取值，nil 表示缺失
type Record []interface{}

// Table 内存数据表
type Table struct {
	Columns []string `json:"columns"`
	Records []Record `json:"records"`

	index map[string]int
}

// NewTable 创建数据表，校验每条记录的列数
func NewTable(columns []string, records []Record) (*Table, error) {
	for i, record := range records {
		if len(record) != len(columns) {
			return nil, fmt.Errorf("第 %d 行有 %d 列, 表头 %d 列: %w", i, len(record), len(columns), ErrShapeMismatch)
		}
	}

	cols := make([]string, len(columns))
	copy(cols, columns)

	if records == nil {
		records = []Record{}
	}

	return &Table{
		Columns: cols,
		Records: records,
		index:   buildIndex(cols),
	}, nil
}

func buildIndex(columns []string) map[string]int {
	index := make(map[string]int, len(columns))
	for i, col := range columns {
		// 重名列以第一次出现为准
		if _, exists := index[col]; !exists {
			index[col] = i
		}
	}
	return index
}

// ColumnIndex 返回列下标
func (t *Table) ColumnIndex(name string) (int, bool) {
	if t.index == nil {
		t.index = buildIndex(t.Columns)
	}
	i, ok := t.index[name]
	return i, ok
}

// HasColumn 判断列是否存在
func (t *Table) HasColumn(name string) bool {
	_, ok := t.ColumnIndex(name)
	return ok
}

// Len 返回记录数
func (t *Table) Len() int {
	return len(t.Records)
}

// Value 获取指定行、列的取值，列不存在时返回 nil
func (t *Table) Value(row int, column string) interface{} {
	i, ok := t.ColumnIndex(column)
	if !ok || row < 0 || row >= len(t.Records) {
		return nil
	}
	return t.Records[row][i]
}

// Clone 深拷贝数据表，记录切片不与原表共享
func (t *Table) Clone() *Table {
	cols := make([]string, len(t.Columns))
	copy(cols, t.Columns)

	records := make([]Record, len(t.Records))
	for i, record := range t.Records {
		copied := make(Record, len(record))
		copy(copied, record)
		records[i] = copied
	}

	return &Table{
		Columns: cols,
		Records: records,
		index:   buildIndex(cols),
	}
}

// WithRecords 以相同表头构造新表，records 直接被新表持有
func (t *Table) WithRecords(records []Record) *Table {
	cols := make([]string, len(t.Columns))
	copy(cols, t.Columns)
	if records == nil {
		records = []Record{}
	}
	return &Table{
		Columns: cols,
		Records: records,
		index:   buildIndex(cols),
	}
}

// CleaningMetrics 清洗指标
type CleaningMetrics struct {
	RowsBefore           int `json:"rows_before" yaml:"rows_before"`                       // 清洗前行数
	DuplicatesRemoved    int `json:"duplicates_removed" yaml:"duplicates_removed"`         // 去除的重复行
	InvalidTitlesDropped int `json:"invalid_titles_dropped" yaml:"invalid_titles_dropped"` // 标题缺失被丢弃的行
	MissingValuesFilled  int `json:"missing_values_filled" yaml:"missing_values_filled"`   // 填充的缺失值个数
	RowsAfter            int `json:"rows_after" yaml:"rows_after"`                         // 清洗后行数
}
