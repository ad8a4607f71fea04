// internal/services/statement_service.go
package services

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	apperrors "github.com/SteveJiangWorkPlace/Personal-Statement-Refine/internal/errors"
	"github.com/SteveJiangWorkPlace/Personal-Statement-Refine/internal/highlight"
	"github.com/SteveJiangWorkPlace/Personal-Statement-Refine/internal/llm"
	"github.com/SteveJiangWorkPlace/Personal-Statement-Refine/internal/models"
	"github.com/SteveJiangWorkPlace/Personal-Statement-Refine/internal/parser"
	"github.com/SteveJiangWorkPlace/Personal-Statement-Refine/internal/prompt"
	"github.com/SteveJiangWorkPlace/Personal-Statement-Refine/internal/storage"
	"github.com/SteveJiangWorkPlace/Personal-Statement-Refine/internal/utils"
)

const sessionSnapshotFile = "session.json"

// topicPatterns 从修改思路中提取段落功能标签的模式，按优先级匹配
var topicPatterns = []*regexp.Regexp{
	regexp.MustCompile(`本段功能识别：\[(.+?)\]`),
	regexp.MustCompile(`功能：(.+?)(?:\n|$)`),
	regexp.MustCompile(`主题：(.+?)(?:\n|$)`),
}

// topicKeywords 模式匹配失败时按关键词推断，顺序即优先级
var topicKeywords = []struct {
	Topic string
	Keys  []string
}{
	{"动机", []string{"动机", "兴趣", "inspiration", "motivation"}},
	{"学术背景", []string{"学术", "学习", "课程", "academic"}},
	{"研究经历", []string{"研究", "项目", "实验", "research"}},
	{"工作经历", []string{"工作", "实习", "职业", "work"}},
	{"职业规划", []string{"规划", "目标", "未来", "career"}},
	{"择校理由", []string{"学校", "课程", "专业", "why school"}},
}

// StatementService 管理单用户的文书编辑会话
// 所有操作串行执行，持锁期间不发起网络调用以外的阻塞
type StatementService struct {
	mutex      sync.Mutex
	session    *models.Session
	llmService *LLMService
	store      *storage.FileStorage
	logger     *utils.Logger
	metrics    *utils.APIMetrics
}

// RefinePreview 批注修改的返回结果：新文本 + 差异高亮HTML
type RefinePreview struct {
	Text            string `json:"text"`
	HighlightedHTML string `json:"highlighted_html"`
}

// NewStatementService 创建文书服务
// store不为nil时每次状态变更后保存会话快照，启动时尝试恢复上次的会话
func NewStatementService(llmService *LLMService, store *storage.FileStorage) *StatementService {
	s := &StatementService{
		session:    models.NewSession(),
		llmService: llmService,
		store:      store,
		logger:     utils.GetLogger(),
		metrics:    utils.NewAPIMetrics(),
	}

	if store != nil && store.FileExists("", sessionSnapshotFile) {
		var saved models.Session
		if err := store.LoadJSONFile("", sessionSnapshotFile, &saved); err == nil {
			if saved.Paragraphs == nil {
				saved.Paragraphs = make(map[int]*models.ParagraphState)
			}
			s.session = &saved
			s.logger.Info("已恢复上次的会话", map[string]interface{}{
				"sections": len(saved.Sections),
			})
		}
	}

	return s
}

// persistLocked 保存会话快照，调用方持锁
// 持久化失败只记录警告，不影响内存中的状态
func (s *StatementService) persistLocked() {
	if s.store == nil {
		return
	}
	if err := s.store.SaveJSONFile("", sessionSnapshotFile, s.session); err != nil {
		s.logger.Warn("保存会话快照失败", map[string]interface{}{"error": err.Error()})
	}
}

// Session 返回当前会话
func (s *StatementService) Session() *models.Session {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	return s.session
}

// Reset 丢弃当前会话的全部状态
func (s *StatementService) Reset() {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.session = models.NewSession()
	s.persistLocked()
	s.logger.Info("会话已重置", nil)
}

// Generate 发起全篇结构分析与重写
// 会话整体重置后流式生成，完成后解析为段落数据
// 生成失败时保留重置后的空会话，不会留下半成品状态
func (s *StatementService) Generate(ctx context.Context, input models.SourceInput, onFlush func(accumulated string)) (*models.Session, error) {
	if strings.TrimSpace(input.School) == "" || strings.TrimSpace(input.StatementText) == "" {
		return nil, apperrors.NewValidationError("请检查旧PS内容和目标学校是否完整", nil)
	}
	if ready, state := s.llmService.GetProviderStatus(); !ready {
		return nil, apperrors.NewNotConfiguredError(state)
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	// 新会话先在本地构建，生成成功后才替换旧状态
	session := models.NewSession()
	session.Input = input

	promptText := prompt.BuildAnalysisPrompt(
		input.School, input.Major, input.StatementText,
		input.CourseText, len(input.Images) > 0, input.StrategyText)

	req := llm.CompletionRequest{Prompt: promptText, Stream: true}
	for _, img := range input.Images {
		req.Images = append(req.Images, llm.ImageData{MimeType: img.MimeType, Data: img.Data})
	}

	s.logger.Info("开始全篇结构分析", map[string]interface{}{
		"school":     input.School,
		"major":      input.Major,
		"has_images": len(input.Images) > 0,
	})

	fullResponse, err := s.llmService.StreamGenerate(ctx, req, onFlush)
	if err != nil {
		s.logger.Error("全篇生成失败", map[string]interface{}{"error": err.Error()})
		return nil, err
	}

	session.FullResponse = fullResponse
	session.Sections = parser.Parse(fullResponse)
	session.GenerationComplete = true
	s.session = session
	s.persistLocked()

	s.logger.Info("全篇生成完成", map[string]interface{}{
		"sections": len(session.Sections),
		"length":   len(fullResponse),
	})

	return session, nil
}

// EditDraft 直接替换段落的可编辑文本，任何时候都允许
func (s *StatementService) EditDraft(i int, text string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	p := s.session.Paragraph(i)
	if p == nil {
		return apperrors.NewNotFoundError(fmt.Sprintf("段落 %d 不存在", i), nil)
	}

	p.CurrentDraft = text
	s.persistLocked()
	return nil
}

// RefineAnnotation 根据文本中的【】或[]批注执行一次段落修改
// 成功后新文本替换当前草稿，原文本保留用于差异高亮，
// 该段落的翻译结果一并失效；失败时段落状态不变
func (s *StatementService) RefineAnnotation(ctx context.Context, i int) (*RefinePreview, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	p := s.session.Paragraph(i)
	if p == nil {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("段落 %d 不存在", i), nil)
	}

	if !prompt.ContainsAnnotation(p.CurrentDraft) {
		return nil, apperrors.NewAnnotationError("未检测到批注标记，请在文本中添加【】或[]形式的批注", nil)
	}

	hasChinese := prompt.ContainsChinese(p.CurrentDraft)
	refined, err := s.llmService.Complete(ctx, llm.CompletionRequest{
		Prompt: prompt.BuildRefinePrompt(p.CurrentDraft, hasChinese),
	})
	if err != nil {
		return nil, err
	}

	p.OriginalText = p.CurrentDraft
	p.RefineResult = refined
	p.CurrentDraft = refined

	// 草稿变了，旧的翻译结果不再对应当前内容
	p.Translation = nil
	p.EditedTranslation = ""
	p.TranslationOrigin = ""

	s.persistLocked()
	s.metrics.RecordParagraphAction("refine", i)
	s.logger.Info("批注修改完成", map[string]interface{}{"paragraph": i})

	return &RefinePreview{
		Text:            refined,
		HighlightedHTML: highlight.Highlight(p.OriginalText, refined),
	}, nil
}

// Translate 将段落翻译为指定拼写规范的英文
// 翻译结果整体覆盖，可编辑副本只在不存在时初始化
func (s *StatementService) Translate(ctx context.Context, i int, style models.TranslationStyle) (*models.Translation, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	p := s.session.Paragraph(i)
	if p == nil {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("段落 %d 不存在", i), nil)
	}

	translated, err := s.llmService.Complete(ctx, llm.CompletionRequest{
		Prompt: prompt.BuildTranslatePrompt(p.CurrentDraft, style),
	})
	if err != nil {
		return nil, err
	}

	p.Translation = &models.Translation{Text: translated, Style: style}
	if p.EditedTranslation == "" {
		p.EditedTranslation = translated
	}

	s.persistLocked()
	s.metrics.RecordParagraphAction("translate", i)
	s.logger.Info("段落翻译完成", map[string]interface{}{
		"paragraph": i,
		"style":     string(style),
	})

	return p.Translation, nil
}

// EditTranslation 直接替换翻译的可编辑副本
func (s *StatementService) EditTranslation(i int, text string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	p := s.session.Paragraph(i)
	if p == nil {
		return apperrors.NewNotFoundError(fmt.Sprintf("段落 %d 不存在", i), nil)
	}

	p.EditedTranslation = text
	s.persistLocked()
	return nil
}

// RefineTranslation 根据翻译副本中的批注执行英文精修
func (s *StatementService) RefineTranslation(ctx context.Context, i int) (*RefinePreview, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	p := s.session.Paragraph(i)
	if p == nil {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("段落 %d 不存在", i), nil)
	}

	if !prompt.ContainsAnnotation(p.EditedTranslation) {
		return nil, apperrors.NewAnnotationError("未检测到批注标记，请在文本中添加【】或[]形式的批注", nil)
	}

	refined, err := s.llmService.Complete(ctx, llm.CompletionRequest{
		Prompt: prompt.BuildEnglishRefinePrompt(p.EditedTranslation),
	})
	if err != nil {
		return nil, err
	}

	p.TranslationOrigin = p.EditedTranslation
	p.EditedTranslation = refined

	s.persistLocked()
	s.metrics.RecordParagraphAction("translate_refine", i)
	s.logger.Info("翻译批注修改完成", map[string]interface{}{"paragraph": i})

	return &RefinePreview{
		Text:            refined,
		HighlightedHTML: highlight.Highlight(p.TranslationOrigin, refined),
	}, nil
}

// Confirm 确认段落内容并重建最终预览
// 快照取当前草稿，草稿为空白时回退到解析出的原始草稿；
// 翻译文本永远不会进入快照。重复确认会刷新快照。
// 确认之后对草稿的编辑不会自动更新快照，需要再次确认。
func (s *StatementService) Confirm(i int) (string, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	p := s.session.Paragraph(i)
	if p == nil {
		return "", apperrors.NewNotFoundError(fmt.Sprintf("段落 %d 不存在", i), nil)
	}

	content := p.CurrentDraft
	if strings.TrimSpace(content) == "" {
		content = s.session.Sections[i].Draft
	}

	p.Confirmed = true
	p.ConfirmedContent = content
	p.ConfirmedAt = time.Now()

	s.metrics.RecordParagraphAction("confirm", i)
	s.logger.Info("段落已确认", map[string]interface{}{
		"paragraph": i,
		"length":    len(content),
	})

	rebuilt, err := s.rebuildLocked()
	if err != nil {
		return "", err
	}

	s.session.FinalText = rebuilt
	// 内容已更新，清理版本失效
	s.session.FinalTextCleaned = ""
	s.persistLocked()

	return rebuilt, nil
}

// Rebuild 按段落顺序重建最终预览文本
func (s *StatementService) Rebuild() (string, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	return s.rebuildLocked()
}

// rebuildLocked 重建逻辑本体，调用方持锁
// 每个已确认段落按 快照 -> 当前草稿 -> 修改结果 -> 原始草稿 的顺序取内容，
// 全部为空白的段落跳过并记录警告
func (s *StatementService) rebuildLocked() (string, error) {
	if len(s.session.Sections) == 0 {
		s.logger.Warn("没有段落数据", nil)
		return "", apperrors.NewEmptyRebuildError("没有段落数据")
	}

	confirmed := s.session.ConfirmedIndices()
	if len(confirmed) == 0 {
		s.logger.Warn("已确认段落为空", nil)
		return "", apperrors.NewEmptyRebuildError("没有已确认的段落")
	}

	var paragraphs []string
	for _, idx := range confirmed {
		if idx >= len(s.session.Sections) {
			continue
		}
		p := s.session.Paragraphs[idx]

		content := p.ConfirmedContent
		if strings.TrimSpace(content) == "" {
			content = p.CurrentDraft
		}
		if strings.TrimSpace(content) == "" {
			content = p.RefineResult
		}
		if strings.TrimSpace(content) == "" {
			content = s.session.Sections[idx].Draft
		}

		if strings.TrimSpace(content) == "" {
			s.logger.Warn("段落内容为空，跳过", map[string]interface{}{"paragraph": idx})
			continue
		}
		paragraphs = append(paragraphs, content)
	}

	if len(paragraphs) == 0 {
		return "", apperrors.NewEmptyRebuildError("所有已确认段落均无内容")
	}

	return strings.Join(paragraphs, "\n\n"), nil
}

// EditFinal 用户直接编辑最终预览文本
// 新值与清理版本相同说明是自动回填，保留清理版本；
// 否则视为手动编辑，清理版本失效
func (s *StatementService) EditFinal(text string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if text == "" {
		return
	}

	sameAsCleaned := text == s.session.FinalTextCleaned

	s.session.FinalText = text
	if !sameAsCleaned && s.session.FinalTextCleaned != "" {
		s.session.FinalTextCleaned = ""
		s.logger.Info("用户手动编辑最终文本，清理版本已失效", nil)
	}
	s.persistLocked()
}

// RemoveAIVocabulary 对当前最终文本去除AI写作高频词汇
// 结果保存为清理版本，原始文本保留
func (s *StatementService) RemoveAIVocabulary(ctx context.Context) (string, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	current := s.session.DisplayText()
	if strings.TrimSpace(current) == "" {
		return "", apperrors.NewValidationError("最终预览文本为空", nil)
	}

	cleaned, err := s.llmService.Complete(ctx, llm.CompletionRequest{
		Prompt: prompt.BuildRemoveAIVocabPrompt(current),
	})
	if err != nil {
		return "", err
	}

	s.session.FinalTextCleaned = cleaned
	s.persistLocked()

	s.logger.Info("AI词汇清理完成", map[string]interface{}{
		"before": len(current),
		"after":  len(cleaned),
	})

	return cleaned, nil
}

// ParagraphTopic 从修改思路中提取段落主题，用于界面标题
func ParagraphTopic(rationale string) string {
	if strings.TrimSpace(rationale) == "" {
		return "未识别"
	}

	for _, pattern := range topicPatterns {
		if m := pattern.FindStringSubmatch(rationale); m != nil {
			return strings.TrimSpace(m[1])
		}
	}

	lower := strings.ToLower(rationale)
	for _, entry := range topicKeywords {
		for _, key := range entry.Keys {
			if strings.Contains(lower, key) {
				return entry.Topic
			}
		}
	}

	return "段落内容"
}
