/*
 * @module service/datasource/csv
 * @description CSV 文件记录源与记录落地
 * @architecture 适配器模式 - 将分隔文本文件适配为 RecordSource/RecordSink
 * @documentReference DESIGN.md
 * @stateFlow 文件检查 -> 表头解析 -> 逐行读取 -> Table；Table -> 创建目录 -> 写表头 -> 写记录
 * @rules 空单元格读取为缺失值(nil)，列数与表头不一致的行交由解析器报错
 * @dependencies encoding/csv, os
 * @refs interface.go
 */

package datasource

import (
	"bufio"
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"catalog-cleaner/service/models"
	"catalog-cleaner/service/normalizer"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// CSVSource CSV 记录源
type CSVSource struct {
	path string
}

// NewCSVSource 创建 CSV 记录源
func NewCSVSource(path string) *CSVSource {
	return &CSVSource{path: path}
}

// Location 文件路径
func (s *CSVSource) Location() string {
	return s.path
}

// Read 读取整个 CSV 文件
func (s *CSVSource) Read(ctx context.Context) (*models.Table, error) {
	file, err := os.Open(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("原始数据文件 %s: %w", s.path, ErrSourceNotFound)
		}
		return nil, fmt.Errorf("打开原始数据文件失败: %w", err)
	}
	defer file.Close()

	table, err := ReadCSV(ctx, file)
	if err != nil {
		return nil, fmt.Errorf("解析原始数据文件 %s 失败: %w", s.path, err)
	}

	slog.Info("原始数据读取完成", "path", s.path, "columns", len(table.Columns), "rows", table.Len())
	return table, nil
}

// ReadCSV 从 reader 解析 CSV，首行为表头
func ReadCSV(ctx context.Context, r io.Reader) (*models.Table, error) {
	reader := csv.NewReader(stripBOM(r))

	header, err := reader.Read()
	if err == io.EOF {
		return models.NewTable([]string{}, nil)
	}
	if err != nil {
		return nil, fmt.Errorf("读取表头失败: %w", err)
	}
	columns := make([]string, len(header))
	copy(columns, header)

	var records []models.Record
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("读取数据行失败: %w", err)
		}

		record := make(models.Record, len(row))
		for i, cell := range row {
			if cell == "" {
				record[i] = nil
				continue
			}
			record[i] = cell
		}
		records = append(records, record)
	}

	return models.NewTable(columns, records)
}

// stripBOM 去除 UTF-8 BOM
func stripBOM(r io.Reader) io.Reader {
	br := bufio.NewReader(r)
	prefix, err := br.Peek(len(utf8BOM))
	if err == nil && bytes.Equal(prefix, utf8BOM) {
		_, _ = br.Discard(len(utf8BOM))
	}
	return br
}

// CSVSink CSV 记录落地
type CSVSink struct {
	path string
}

// NewCSVSink 创建 CSV 记录落地
func NewCSVSink(path string) *CSVSink {
	return &CSVSink{path: path}
}

// Location 文件路径
func (s *CSVSink) Location() string {
	return s.path
}

// Write 写出整张表，自动创建父目录
func (s *CSVSink) Write(ctx context.Context, table *models.Table) error {
	if err := ensureParentDir(s.path); err != nil {
		return err
	}

	file, err := os.Create(s.path)
	if err != nil {
		return fmt.Errorf("创建输出文件失败: %w", err)
	}
	defer file.Close()

	if err := WriteCSV(ctx, file, table); err != nil {
		return fmt.Errorf("写入输出文件 %s 失败: %w", s.path, err)
	}

	slog.Info("清洗结果写入完成", "path", s.path, "rows", table.Len())
	return nil
}

// WriteCSV 将表写为 CSV，缺失值写为空单元格
func WriteCSV(ctx context.Context, w io.Writer, table *models.Table) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(table.Columns); err != nil {
		return fmt.Errorf("写入表头失败: %w", err)
	}

	row := make([]string, len(table.Columns))
	for _, record := range table.Records {
		if err := ctx.Err(); err != nil {
			return err
		}
		for i, value := range record {
			row[i] = normalizer.ToText(value)
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("写入数据行失败: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}
