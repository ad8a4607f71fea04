// internal/parser/parser_test.go
package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_TwoSections(t *testing.T) {
	raw := `===SECTION===
[[LOGIC]]
本段功能识别：[动机]
Part 1: 开头段保留原有故事线，替换目标专业。
[[DRAFT]]
Part 2: My interest in data began early. 这里补充一句关于新专业的动机.
===SECTION===
[[LOGIC]]
本段功能识别：[择校理由]
整段重写，围绕核心课程展开。
[[DRAFT]]
这一段整体用中文重写，强调课程A与课程B的方法学。
`

	sections := Parse(raw)
	require.Len(t, sections, 2)

	assert.Contains(t, sections[0].Rationale, "本段功能识别：[动机]")
	assert.NotContains(t, sections[0].Rationale, "Part 1:")
	assert.NotContains(t, sections[0].Rationale, "[[LOGIC]]")
	assert.Equal(t, "My interest in data began early. 这里补充一句关于新专业的动机.", sections[0].Draft)

	assert.Contains(t, sections[1].Rationale, "择校理由")
	assert.Contains(t, sections[1].Draft, "课程A")
}

func TestParse_SkipsNoise(t *testing.T) {
	raw := `好的，下面是修改结果。
===SECTION===

===SECTION===
[[LOGIC]]
只有思路没有草稿。
[[DRAFT]]
Draft text here.
`

	sections := Parse(raw)
	require.Len(t, sections, 1)
	assert.Equal(t, "Draft text here.", sections[0].Draft)
}

func TestParse_DraftOnlyChunk(t *testing.T) {
	raw := `===SECTION===
[[DRAFT]]
Only a draft, no logic part.
`

	sections := Parse(raw)
	require.Len(t, sections, 1)
	// 没有LOGIC标记时整块视为草稿
	assert.Equal(t, "", sections[0].Rationale)
	assert.Contains(t, sections[0].Draft, "Only a draft")
	assert.NotContains(t, sections[0].Draft, "[[DRAFT]]")
}

func TestParse_LogicWithoutDraftMarker(t *testing.T) {
	raw := `===SECTION===
[[LOGIC]]
Part 1: 只有思路，模型漏掉了草稿标记。
`

	sections := Parse(raw)
	require.Len(t, sections, 1)
	assert.Equal(t, "只有思路，模型漏掉了草稿标记。", sections[0].Rationale)
	assert.Equal(t, "", sections[0].Draft)
}

func TestParse_Empty(t *testing.T) {
	assert.Empty(t, Parse(""))
	assert.Empty(t, Parse("没有任何分隔符的闲聊文本"))
}

func TestTokenize_PreservesOrder(t *testing.T) {
	raw := "===SECTION===\n[[DRAFT]]\nfirst\n===SECTION===\n[[DRAFT]]\nsecond\n===SECTION===\n[[DRAFT]]\nthird"

	chunks := Tokenize(raw)
	require.Len(t, chunks, 3)
	assert.Contains(t, chunks[0], "first")
	assert.Contains(t, chunks[1], "second")
	assert.Contains(t, chunks[2], "third")
}
