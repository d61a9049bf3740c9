/*
 * @module service/normalizer/text
 * @description 文本标准化器，负责空白折叠、大小写规范和缺失值哨兵替换
 * @architecture 工具函数模式 - 无状态纯函数
 * @documentReference DESIGN.md
 * @stateFlow 原始取值 -> 转文本 -> Unicode NFC -> 空白折叠 -> (可选)标题大小写 -> 输出
 * @rules 任意输入都有确定输出，缺失或空白统一返回 Sentinel
 * @dependencies github.com/spf13/cast, golang.org/x/text
 * @refs category.go, service/cleansing/cleaner.go
 */

package normalizer

import (
	"fmt"
	"strings"

	"github.com/spf13/cast"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// Sentinel 缺失或无效取值的统一占位符
const Sentinel = "Unknown"

// ToText 将任意取值转为文本，nil 返回空串
func ToText(value interface{}) string {
	if value == nil {
		return ""
	}
	s, err := cast.ToStringE(value)
	if err != nil {
		return fmt.Sprintf("%v", value)
	}
	return s
}

// IsMissing 判断取值是否缺失：nil 或仅包含空白字符
func IsMissing(value interface{}) bool {
	if value == nil {
		return true
	}
	return strings.TrimSpace(ToText(value)) == ""
}

// CollapseWhitespace 去除首尾空白并将连续空白折叠为单个空格
func CollapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// NormalizeText 标准化单个文本值
func NormalizeText(value interface{}, titleCase bool) string {
	if value == nil {
		return Sentinel
	}

	cleaned := CollapseWhitespace(norm.NFC.String(ToText(value)))
	if cleaned == "" {
		return Sentinel
	}

	if titleCase {
		// Caser 有状态，不能跨调用共享
		return cases.Title(language.Und).String(cleaned)
	}
	return cleaned
}
