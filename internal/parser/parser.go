// internal/parser/parser.go
// Package parser 解析生成模型输出的分段文本格式。
//
// 线格式约定（与提示词中的输出格式示例一一对应）：
//
//	===SECTION===
//	[[LOGIC]]
//	Part 1: 修改思路...
//	[[DRAFT]]
//	Part 2: 段落草稿...
//	===SECTION===
//	...
//
// 该格式是模型与本程序之间最关键的兼容性契约，解析规则不可更改。
package parser

import (
	"strings"

	"github.com/SteveJiangWorkPlace/Personal-Statement-Refine/internal/models"
)

const (
	// SectionDelimiter 段落分隔符
	SectionDelimiter = "===SECTION==="
	// LogicMarker 修改思路标记
	LogicMarker = "[[LOGIC]]"
	// DraftMarker 草稿标记
	DraftMarker = "[[DRAFT]]"

	partOneLabel = "Part 1:"
	partTwoLabel = "Part 2:"
)

// Tokenize 按分隔符把完整响应切成原始块，保持输入顺序
// 空白块与既无LOGIC也无DRAFT标记的块被视为噪声（如开场白）而丢弃
func Tokenize(raw string) []string {
	chunks := strings.Split(raw, SectionDelimiter)
	valid := make([]string, 0, len(chunks))
	for _, chunk := range chunks {
		if strings.TrimSpace(chunk) == "" {
			continue
		}
		if !strings.Contains(chunk, LogicMarker) && !strings.Contains(chunk, DraftMarker) {
			continue
		}
		valid = append(valid, chunk)
	}
	return valid
}

// Parse 把一次完整生成解析为有序的段落记录
// 没有任何有效块时返回空切片而非错误，调用方视为"无可编辑内容"
func Parse(raw string) []models.Section {
	chunks := Tokenize(raw)
	sections := make([]models.Section, 0, len(chunks))
	for _, chunk := range chunks {
		sections = append(sections, parseChunk(chunk))
	}
	return sections
}

// parseChunk 解析单个块：LOGIC标记前后切一次，分别剥掉标记与Part标签
func parseChunk(chunk string) models.Section {
	if !strings.Contains(chunk, LogicMarker) {
		// 只有DRAFT标记的块：整块作为草稿
		draft := strings.ReplaceAll(chunk, DraftMarker, "")
		draft = strings.ReplaceAll(draft, partTwoLabel, "")
		return models.Section{Draft: strings.TrimSpace(draft)}
	}

	var rationale, draft string
	parts := strings.SplitN(chunk, DraftMarker, 2)
	rationale = strings.ReplaceAll(parts[0], LogicMarker, "")
	rationale = strings.ReplaceAll(rationale, partOneLabel, "")
	rationale = strings.TrimSpace(rationale)
	if len(parts) > 1 {
		draft = strings.ReplaceAll(parts[1], partTwoLabel, "")
		draft = strings.TrimSpace(draft)
	}
	return models.Section{Rationale: rationale, Draft: draft}
}
