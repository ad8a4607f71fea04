// internal/models/session.go
package models

import "time"

// Section 一个段落的解析结果：修改思路 + 中英混合草稿
// 顺序在解析时固定，段落索引即文档位置
type Section struct {
	Rationale string `json:"rationale"` // AI识别的段落功能与修改思路
	Draft     string `json:"draft"`     // 中英混合草稿文本
}

// TranslationStyle 拼写规范
type TranslationStyle string

const (
	StyleUS TranslationStyle = "US"
	StyleUK TranslationStyle = "UK"
)

// Translation 一次翻译的结果
type Translation struct {
	Text  string           `json:"text"`
	Style TranslationStyle `json:"style"`
}

// ParagraphState 单个段落的编辑状态
// 在用户第一次操作该段落时惰性创建，整篇重新生成时整体丢弃
type ParagraphState struct {
	Index             int          `json:"index"`
	CurrentDraft      string       `json:"current_draft"`                // 最新的可编辑文本
	OriginalText      string       `json:"original_text,omitempty"`      // 批注修改前的文本，用于差异高亮
	RefineResult      string       `json:"refine_result,omitempty"`      // 最近一次批注修改的结果
	Translation       *Translation `json:"translation,omitempty"`        // 翻译结果，每次翻译整体覆盖
	EditedTranslation string       `json:"edited_translation,omitempty"` // 用户可编辑的翻译副本
	TranslationOrigin string       `json:"translation_origin,omitempty"` // 翻译精修前的文本，用于差异高亮
	Confirmed         bool         `json:"confirmed"`
	ConfirmedContent  string       `json:"confirmed_content,omitempty"` // 确认时的内容快照
	ConfirmedAt       time.Time    `json:"confirmed_at,omitempty"`
}

// SourceInput 生成所需的全部用户输入
type SourceInput struct {
	School       string      `json:"school"`
	Major        string      `json:"major"`
	StatementText string     `json:"statement_text"` // 旧PS内容
	CourseText   string      `json:"course_text"`    // 新项目课程信息
	StrategyText string      `json:"strategy_text"`  // 可选的写作策略
	Images       []ImageData `json:"images,omitempty"`
}

// ImageData 上传的课程截图
type ImageData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"` // base64编码
}

// Session 单用户编辑会话的全部状态
// 显式结构体传引用，整篇重新生成时整体替换，不跨会话共享
type Session struct {
	Input              SourceInput             `json:"input"`
	FullResponse       string                  `json:"full_response"`        // 流式生成的完整原始响应
	Sections           []Section               `json:"sections"`             // 权威段落顺序
	Paragraphs         map[int]*ParagraphState `json:"paragraphs"`           // 按段落索引的编辑状态
	FinalText          string                  `json:"final_text"`           // 已确认段落按序拼接的结果
	FinalTextCleaned   string                  `json:"final_text_cleaned"`   // 去AI词汇后的覆盖版本，用户再编辑即失效
	GenerationComplete bool                    `json:"generation_complete"`
	CreatedAt          time.Time               `json:"created_at"`
}

// NewSession 创建一个空会话
func NewSession() *Session {
	return &Session{
		Paragraphs: make(map[int]*ParagraphState),
		CreatedAt:  time.Now(),
	}
}

// Paragraph 返回指定索引的段落状态，不存在时基于解析结果惰性创建
// 索引越界返回nil
func (s *Session) Paragraph(i int) *ParagraphState {
	if i < 0 || i >= len(s.Sections) {
		return nil
	}
	if p, ok := s.Paragraphs[i]; ok {
		return p
	}
	p := &ParagraphState{
		Index:        i,
		CurrentDraft: s.Sections[i].Draft,
	}
	s.Paragraphs[i] = p
	return p
}

// ConfirmedIndices 返回升序的已确认段落索引
func (s *Session) ConfirmedIndices() []int {
	indices := make([]int, 0, len(s.Paragraphs))
	for i, p := range s.Paragraphs {
		if p.Confirmed {
			indices = append(indices, i)
		}
	}
	// 段落数量很小，插入排序足够
	for i := 1; i < len(indices); i++ {
		for j := i; j > 0 && indices[j] < indices[j-1]; j-- {
			indices[j], indices[j-1] = indices[j-1], indices[j]
		}
	}
	return indices
}

// DisplayText 返回当前应展示/导出的全文：清理版本优先
func (s *Session) DisplayText() string {
	if s.FinalTextCleaned != "" {
		return s.FinalTextCleaned
	}
	return s.FinalText
}

// ExportResult 导出生成的文件
type ExportResult struct {
	FileName  string    `json:"file_name"`
	MimeType  string    `json:"mime_type"`
	Content   []byte    `json:"-"`
	FilePath  string    `json:"file_path,omitempty"`
	FileSize  int64     `json:"file_size"`
	CreatedAt time.Time `json:"created_at"`
}
