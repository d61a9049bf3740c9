/*
 * @module service/cleansing/cleaner
 * @description 目录数据清洗器，负责整行去重、缺失值填充、无效标题剔除和分类字段标准化
 * @architecture 管道模式 - 每个阶段都是 Table -> Table 的纯函数，由 Prepare 显式串联
 * @documentReference DESIGN.md
 * @stateFlow 整行去重 -> 缺失值填充 -> 无效标题剔除 -> 分类字段标准化 -> 指标输出
 * @rules 阶段不修改输入表；缺失值判定统一使用 normalizer.IsMissing
 * @dependencies catalog-cleaner/service/models, catalog-cleaner/service/normalizer, log/slog
 * @refs pipeline.go, service/normalizer
 */

package cleansing

import (
	"fmt"
	"log/slog"
	"strings"

	"catalog-cleaner/service/models"
	"catalog-cleaner/service/normalizer"
)

const (
	ColumnTitle    = "title"
	ColumnCountry  = "country"
	ColumnListedIn = "listed_in"
	ColumnRating   = "rating"
)

// DefaultFillColumns 缺失时填充 Sentinel 的列
var DefaultFillColumns = []string{
	"director",
	"cast",
	"country",
	"date_added",
	"rating",
	"duration",
	"listed_in",
	"description",
}

// ColumnRuleType 列标准化规则类型
type ColumnRuleType string

const (
	RuleCategories ColumnRuleType = "categories" // 多值分类字段
	RuleRating     ColumnRuleType = "rating"     // 分级字段
)

// ColumnRule 列标准化规则
type ColumnRule struct {
	Column    string         `json:"column" yaml:"column"`
	Type      ColumnRuleType `json:"type" yaml:"type"`
	TitleCase bool           `json:"title_case" yaml:"title_case"`
}

// DefaultColumnRules 默认分类字段标准化规则
var DefaultColumnRules = []ColumnRule{
	{Column: ColumnCountry, Type: RuleCategories, TitleCase: true},
	{Column: ColumnListedIn, Type: RuleCategories, TitleCase: false},
	{Column: ColumnRating, Type: RuleRating},
}

// Cleaner 数据集清洗器
type Cleaner struct {
	FillColumns []string
	TitleColumn string
	Rules       []ColumnRule
}

// NewCleaner 创建使用默认清洗策略的清洗器
func NewCleaner() *Cleaner {
	fill := make([]string, len(DefaultFillColumns))
	copy(fill, DefaultFillColumns)
	rules := make([]ColumnRule, len(DefaultColumnRules))
	copy(rules, DefaultColumnRules)

	return &Cleaner{
		FillColumns: fill,
		TitleColumn: ColumnTitle,
		Rules:       rules,
	}
}

// Prepare 使用默认策略执行完整清洗流程
func Prepare(table *models.Table) (*models.Table, models.CleaningMetrics) {
	return NewCleaner().Prepare(table)
}

// Prepare 执行完整清洗流程并返回清洗后的表和指标
func (c *Cleaner) Prepare(table *models.Table) (*models.Table, models.CleaningMetrics) {
	metrics := models.CleaningMetrics{RowsBefore: table.Len()}

	deduped, removed := DropDuplicates(table)
	metrics.DuplicatesRemoved = removed
	slog.Debug("整行去重完成", "rows_before", metrics.RowsBefore, "duplicates_removed", removed)

	filled, filledCount := FillMissing(deduped, c.FillColumns)
	metrics.MissingValuesFilled = filledCount
	slog.Debug("缺失值填充完成", "filled", filledCount)

	titled, dropped := DropMissingColumn(filled, c.TitleColumn)
	metrics.InvalidTitlesDropped = dropped
	metrics.RowsAfter = titled.Len()
	slog.Debug("无效标题剔除完成", "dropped", dropped)

	normalized := ApplyColumnRules(titled, c.Rules)

	return normalized, metrics
}

// DropDuplicates 去除与之前某行完全相同的行，保留首次出现并维持顺序
func DropDuplicates(table *models.Table) (*models.Table, int) {
	cloned := table.Clone()
	seen := make(map[string]struct{}, cloned.Len())
	kept := make([]models.Record, 0, cloned.Len())

	for _, record := range cloned.Records {
		key := recordKey(record)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		kept = append(kept, record)
	}

	return cloned.WithRecords(kept), cloned.Len() - len(kept)
}

// recordKey 生成整行比较键，区分 nil、取值类型和文本
func recordKey(record models.Record) string {
	var b strings.Builder
	for _, value := range record {
		if value == nil {
			b.WriteString("\x00;")
			continue
		}
		text := normalizer.ToText(value)
		fmt.Fprintf(&b, "%T:%d:%s;", value, len(text), text)
	}
	return b.String()
}

// FillMissing 将指定列中的缺失值替换为 Sentinel，不存在的列跳过
func FillMissing(table *models.Table, columns []string) (*models.Table, int) {
	cloned := table.Clone()
	filled := 0

	for _, column := range columns {
		idx, ok := cloned.ColumnIndex(column)
		if !ok {
			continue
		}
		for _, record := range cloned.Records {
			if normalizer.IsMissing(record[idx]) {
				record[idx] = normalizer.Sentinel
				filled++
			}
		}
	}

	return cloned, filled
}

// DropMissingTitles 剔除标题缺失的行
func DropMissingTitles(table *models.Table) (*models.Table, int) {
	return DropMissingColumn(table, ColumnTitle)
}

// DropMissingColumn 剔除指定列缺失的行，列不存在时原样返回
func DropMissingColumn(table *models.Table, column string) (*models.Table, int) {
	cloned := table.Clone()
	idx, ok := cloned.ColumnIndex(column)
	if !ok {
		return cloned, 0
	}

	kept := make([]models.Record, 0, cloned.Len())
	for _, record := range cloned.Records {
		if normalizer.IsMissing(record[idx]) {
			continue
		}
		kept = append(kept, record)
	}

	return cloned.WithRecords(kept), cloned.Len() - len(kept)
}

// NormalizeCategoricalColumns 按默认规则标准化 country、listed_in 和 rating
func NormalizeCategoricalColumns(table *models.Table) *models.Table {
	return ApplyColumnRules(table, DefaultColumnRules)
}

// ApplyColumnRules 按规则逐列标准化，不存在的列跳过
func ApplyColumnRules(table *models.Table, rules []ColumnRule) *models.Table {
	cloned := table.Clone()

	for _, rule := range rules {
		idx, ok := cloned.ColumnIndex(rule.Column)
		if !ok {
			continue
		}
		for _, record := range cloned.Records {
			record[idx] = applyRule(rule, record[idx])
		}
	}

	return cloned
}

func applyRule(rule ColumnRule, value interface{}) interface{} {
	switch rule.Type {
	case RuleCategories:
		return normalizer.EncodeCategories(value, rule.TitleCase)
	case RuleRating:
		return NormalizeRating(value)
	default:
		return value
	}
}

// NormalizeRating 标准化分级：去空白并转大写，空值、NAN 和哨兵统一为 Sentinel
func NormalizeRating(value interface{}) string {
	rating := strings.ToUpper(strings.TrimSpace(normalizer.ToText(value)))
	switch rating {
	// 大写后的哨兵也还原为 Sentinel，保证所有列的缺失占位一致
	case "", "NAN", strings.ToUpper(normalizer.Sentinel):
		return normalizer.Sentinel
	default:
		return rating
	}
}
