/*
 * @module service/normalizer/text_test
 * @description 文本标准化器单元测试
 * @architecture 测试层 - 纯函数测试，无外部依赖
 * @documentReference DESIGN.md
 * @stateFlow 输入参数 -> 函数调用 -> 输出验证
 * @rules 确保缺失值、空白折叠、大小写与幂等性符合约定
 * @dependencies testing, testify
 * @refs text.go
 */

package normalizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeText(t *testing.T) {
	testCases := []struct {
		name      string
		input     interface{}
		titleCase bool
		expected  string
	}{
		{name: "nil值", input: nil, expected: Sentinel},
		{name: "nil值标题大小写", input: nil, titleCase: true, expected: Sentinel},
		{name: "空字符串", input: "", expected: Sentinel},
		{name: "仅空白", input: "   ", expected: Sentinel},
		{name: "制表符与换行", input: "\t\n ", titleCase: true, expected: Sentinel},
		{name: "空白折叠", input: "  a   b ", expected: "a b"},
		{name: "国家名折叠", input: "  United   States ", expected: "United States"},
		{name: "保持原大小写", input: "united STATES", expected: "united STATES"},
		{name: "标题大小写", input: "united STATES", titleCase: true, expected: "United States"},
		{name: "缩写标题化", input: "USA", titleCase: true, expected: "Usa"},
		{name: "整数转文本", input: 2019, expected: "2019"},
		{name: "浮点数转文本", input: 1.5, expected: "1.5"},
		{name: "布尔转文本", input: true, expected: "true"},
		{name: "组合字符归一", input: "Cote\u0301", expected: "Cot\u00e9"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, NormalizeText(tc.input, tc.titleCase))
		})
	}
}

func TestNormalizeTextIdempotent(t *testing.T) {
	inputs := []interface{}{
		nil, "", "   ", "  a   b ", "UNITED kingdom", "Dramas,  Comedies", "ñandú  ", "x y", 42,
	}

	for _, input := range inputs {
		for _, titleCase := range []bool{false, true} {
			once := NormalizeText(input, titleCase)
			assert.Equal(t, once, NormalizeText(once, titleCase), "input=%v titleCase=%v", input, titleCase)
		}
	}
}

func TestIsMissing(t *testing.T) {
	assert.True(t, IsMissing(nil))
	assert.True(t, IsMissing(""))
	assert.True(t, IsMissing(" \t "))
	assert.False(t, IsMissing("a"))
	assert.False(t, IsMissing(" a "))
	assert.False(t, IsMissing(0))
	assert.False(t, IsMissing(Sentinel))
}

func TestToText(t *testing.T) {
	assert.Equal(t, "", ToText(nil))
	assert.Equal(t, "abc", ToText("abc"))
	assert.Equal(t, "12", ToText(int64(12)))
	assert.Equal(t, "{1}", ToText(struct{ A int }{1}))
}
