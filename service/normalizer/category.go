/*
 * @module service/normalizer/category
 * @description 分类编码器，负责多值字段拆分、去重排序以及确定性的竖线拼接序列化
 * @architecture 工具函数模式 - 无状态纯函数
 * @documentReference DESIGN.md
 * @stateFlow 逗号分隔文本 -> 拆分 -> 逐项标准化 -> 去哨兵/去重/排序 -> 竖线拼接
 * @rules 输出与输入顺序、重复无关；Sentinel 不与真实取值同时出现；分隔符不做转义
 * @dependencies sort, strings, golang.org/x/text/cases, golang.org/x/text/language
 * @refs text.go
 */

package normalizer

import (
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	// CategoryDelimiter 原始多值字段的分隔符
	CategoryDelimiter = ","
	// EncodedDelimiter 序列化后的分隔符
	EncodedDelimiter = "|"
)

// SplitAndNormalizeCategories 拆分逗号分隔的多值字段，返回去重并排序后的取值
func SplitAndNormalizeCategories(value interface{}, titleCase bool) []string {
	if value == nil {
		return []string{Sentinel}
	}

	parts := strings.Split(ToText(value), CategoryDelimiter)
	tokens := make([]string, 0, len(parts))
	for _, part := range parts {
		tokens = append(tokens, NormalizeText(part, titleCase))
	}

	cleaned := uniqueSorted(tokens)
	if len(cleaned) == 0 {
		return []string{Sentinel}
	}
	return cleaned
}

// ToPipeSeparated 将取值集合序列化为竖线分隔的确定性文本
func ToPipeSeparated(tokens []string, titleCase bool) string {
	normalized := make([]string, 0, len(tokens))
	for _, token := range tokens {
		normalized = append(normalized, NormalizeText(token, titleCase))
	}

	cleaned := uniqueSorted(normalized)
	if len(cleaned) == 0 {
		return Sentinel
	}
	return strings.Join(cleaned, EncodedDelimiter)
}

// SplitPipeSeparated 解析 ToPipeSeparated 的输出，Sentinel 解析为空集合
func SplitPipeSeparated(encoded string) []string {
	if encoded == "" || encoded == Sentinel {
		return []string{}
	}
	return strings.Split(encoded, EncodedDelimiter)
}

// EncodeCategories 拆分并重新序列化一个多值字段，仅大小写不同的取值合并为一项
func EncodeCategories(value interface{}, titleCase bool) string {
	return ToPipeSeparated(FoldCaseVariants(SplitAndNormalizeCategories(value, titleCase)), titleCase)
}

// FoldCaseVariants 合并仅大小写不同的取值，保留字节序最小的写法，结果有序
// 以小写形式比较，ß 与 ss 等非大小写差异不合并
func FoldCaseVariants(tokens []string) []string {
	lower := cases.Lower(language.Und)
	chosen := make(map[string]string, len(tokens))
	for _, token := range tokens {
		key := lower.String(token)
		if current, ok := chosen[key]; !ok || token < current {
			chosen[key] = token
		}
	}

	out := make([]string, 0, len(chosen))
	for _, token := range chosen {
		out = append(out, token)
	}
	sort.Strings(out)
	return out
}

// uniqueSorted 去除空值和 Sentinel 后去重排序
func uniqueSorted(tokens []string) []string {
	seen := make(map[string]struct{}, len(tokens))
	out := make([]string, 0, len(tokens))
	for _, token := range tokens {
		if token == "" || token == Sentinel {
			continue
		}
		if _, ok := seen[token]; ok {
			continue
		}
		seen[token] = struct{}{}
		out = append(out, token)
	}
	sort.Strings(out)
	return out
}
