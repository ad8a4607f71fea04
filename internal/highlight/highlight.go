// internal/highlight/highlight.go
// Package highlight 对修改前后的文本做句子级差异标注。
//
// 这是一个刻意保持简单的启发式实现，不是真正的diff算法：
// 新文本的句子只要在原文中找不到同样的子串就标记为修改。
// 子串巧合会漏标，空白或标点的细微差异会误标——作为给用户看的
// 视觉提示这是可接受的，不要在不声明行为变化的前提下升级为真diff。
package highlight

import (
	"fmt"
	"regexp"
	"strings"
)

// sentenceSeparator 句子分隔符：中英文句号、叹号、问号与换行
var sentenceSeparator = regexp.MustCompile(`([.!?。！？\n]+)`)

const modifiedSpan = `<span class="modified-text">%s</span>`

// Highlight 比较原始文本与新文本，为修改部分加上高亮span
// 原文为空时整段新文本视为修改
func Highlight(original, modified string) string {
	if original == "" {
		return fmt.Sprintf(modifiedSpan, modified)
	}

	units := splitSentences(modified)

	var b strings.Builder
	for _, unit := range units {
		trimmed := strings.TrimSpace(unit)
		if trimmed != "" && !strings.Contains(original, trimmed) {
			b.WriteString(fmt.Sprintf(modifiedSpan, unit))
		} else {
			b.WriteString(unit)
		}
	}
	return b.String()
}

// splitSentences 按标点切分并把分隔符并回前一个片段
func splitSentences(text string) []string {
	// 与正则分组切分等价：先找到所有分隔符区间，再逐段拼接
	indices := sentenceSeparator.FindAllStringIndex(text, -1)
	if len(indices) == 0 {
		return []string{text}
	}

	var units []string
	prev := 0
	for _, idx := range indices {
		// 片段 + 紧随其后的分隔符合并为一个句子单元
		units = append(units, text[prev:idx[1]])
		prev = idx[1]
	}
	if prev < len(text) {
		units = append(units, text[prev:])
	}
	return units
}
