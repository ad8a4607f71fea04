// internal/api/handlers.go
package api

import (
	"io"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/SteveJiangWorkPlace/Personal-Statement-Refine/internal/models"
	"github.com/SteveJiangWorkPlace/Personal-Statement-Refine/internal/services"
	"github.com/SteveJiangWorkPlace/Personal-Statement-Refine/internal/utils"
)

// 上传文件的大小上限
const maxUploadSize = 20 << 20 // 20MB

// Handler 处理API请求
type Handler struct {
	StatementService *services.StatementService // 文书编辑服务
	ExtractService   *services.ExtractService   // 文本提取服务
	ExportService    *services.ExportService    // 导出服务
	ConfigService    *services.ConfigService    // 配置服务
	LLMService       *services.LLMService       // 模型服务
	Response         *ResponseHelper            // 响应助手
}

// NewHandler 创建API处理器
func NewHandler(
	statementService *services.StatementService,
	extractService *services.ExtractService,
	exportService *services.ExportService,
	configService *services.ConfigService,
	llmService *services.LLMService,
) *Handler {
	return &Handler{
		StatementService: statementService,
		ExtractService:   extractService,
		ExportService:    exportService,
		ConfigService:    configService,
		LLMService:       llmService,
		Response:         NewResponseHelper(),
	}
}

// APIResponse 标准API响应格式
type APIResponse struct {
	Success   bool        `json:"success"`
	Data      interface{} `json:"data,omitempty"`
	Error     *APIError   `json:"error,omitempty"`
	Message   string      `json:"message,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// APIError 标准错误格式
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// GenerateRequest 全篇生成的请求结构
type GenerateRequest struct {
	School        string             `json:"school"`
	Major         string             `json:"major"`
	StatementText string             `json:"statement_text"`
	CourseText    string             `json:"course_text"`
	StrategyText  string             `json:"strategy_text"`
	Images        []models.ImageData `json:"images"`
}

// EditTextRequest 文本编辑类请求的通用结构
type EditTextRequest struct {
	Text string `json:"text"`
}

// TranslateRequest 翻译请求结构
type TranslateRequest struct {
	Style string `json:"style"` // "US" 或 "UK"
}

// SettingsRequest 设置更新请求结构
type SettingsRequest struct {
	Provider     string `json:"provider"`
	APIKey       string `json:"api_key"`
	DefaultModel string `json:"default_model"`
}

// sessionPayload 会话响应：附带每个段落的主题标签
type sessionPayload struct {
	Session *models.Session `json:"session"`
	Topics  []string        `json:"topics"`
}

func (h *Handler) sessionData() sessionPayload {
	session := h.StatementService.Session()
	topics := make([]string, len(session.Sections))
	for i, sec := range session.Sections {
		topics[i] = services.ParagraphTopic(sec.Rationale)
	}
	return sessionPayload{Session: session, Topics: topics}
}

// Generate 发起全篇结构分析与重写（非流式，流式见websocket.go）
func (h *Handler) Generate(c *gin.Context) {
	var req GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Response.BadRequest(c, "请求格式错误", err.Error())
		return
	}

	input := models.SourceInput{
		School:        req.School,
		Major:         req.Major,
		StatementText: req.StatementText,
		CourseText:    req.CourseText,
		StrategyText:  req.StrategyText,
		Images:        req.Images,
	}

	if _, err := h.StatementService.Generate(c.Request.Context(), input, nil); err != nil {
		h.Response.AppError(c, err)
		return
	}

	h.Response.Success(c, h.sessionData(), "生成完成")
}

// GetSession 获取当前会话的完整状态
func (h *Handler) GetSession(c *gin.Context) {
	h.Response.Success(c, h.sessionData())
}

// ResetSession 重置会话
func (h *Handler) ResetSession(c *gin.Context) {
	h.StatementService.Reset()
	h.Response.Success(c, nil, "会话已重置")
}

// paragraphIndex 解析路径中的段落索引
func (h *Handler) paragraphIndex(c *gin.Context) (int, bool) {
	i, err := strconv.Atoi(c.Param("index"))
	if err != nil || i < 0 {
		h.Response.BadRequest(c, "段落索引无效")
		return 0, false
	}
	return i, true
}

// EditParagraph 直接更新段落文本
func (h *Handler) EditParagraph(c *gin.Context) {
	i, ok := h.paragraphIndex(c)
	if !ok {
		return
	}

	var req EditTextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Response.BadRequest(c, "请求格式错误", err.Error())
		return
	}

	if err := h.StatementService.EditDraft(i, req.Text); err != nil {
		h.Response.AppError(c, err)
		return
	}

	h.Response.Success(c, nil)
}

// RefineParagraph 根据批注修改段落
func (h *Handler) RefineParagraph(c *gin.Context) {
	i, ok := h.paragraphIndex(c)
	if !ok {
		return
	}

	preview, err := h.StatementService.RefineAnnotation(c.Request.Context(), i)
	if err != nil {
		h.Response.AppError(c, err)
		return
	}

	h.Response.Success(c, preview, "批注修改已应用")
}

// TranslateParagraph 翻译段落
func (h *Handler) TranslateParagraph(c *gin.Context) {
	i, ok := h.paragraphIndex(c)
	if !ok {
		return
	}

	var req TranslateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Response.BadRequest(c, "请求格式错误", err.Error())
		return
	}

	style := models.TranslationStyle(req.Style)
	if style != models.StyleUS && style != models.StyleUK {
		h.Response.BadRequest(c, "翻译风格必须是US或UK")
		return
	}

	translation, err := h.StatementService.Translate(c.Request.Context(), i, style)
	if err != nil {
		h.Response.AppError(c, err)
		return
	}

	h.Response.Success(c, translation, "翻译完成")
}

// EditTranslation 更新翻译的可编辑副本
func (h *Handler) EditTranslation(c *gin.Context) {
	i, ok := h.paragraphIndex(c)
	if !ok {
		return
	}

	var req EditTextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Response.BadRequest(c, "请求格式错误", err.Error())
		return
	}

	if err := h.StatementService.EditTranslation(i, req.Text); err != nil {
		h.Response.AppError(c, err)
		return
	}

	h.Response.Success(c, nil)
}

// RefineTranslation 根据批注精修翻译
func (h *Handler) RefineTranslation(c *gin.Context) {
	i, ok := h.paragraphIndex(c)
	if !ok {
		return
	}

	preview, err := h.StatementService.RefineTranslation(c.Request.Context(), i)
	if err != nil {
		h.Response.AppError(c, err)
		return
	}

	h.Response.Success(c, preview, "翻译批注修改已应用")
}

// ConfirmParagraph 确认段落内容并重建最终预览
func (h *Handler) ConfirmParagraph(c *gin.Context) {
	i, ok := h.paragraphIndex(c)
	if !ok {
		return
	}

	finalText, err := h.StatementService.Confirm(i)
	if err != nil {
		h.Response.AppError(c, err)
		return
	}

	// 确认后的快照不随后续编辑自动更新，修改后需再次确认
	h.Response.Success(c, gin.H{"final_text": finalText}, "内容已添加到最终预览")
}

// EditFinal 直接编辑最终预览文本
func (h *Handler) EditFinal(c *gin.Context) {
	var req EditTextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Response.BadRequest(c, "请求格式错误", err.Error())
		return
	}

	h.StatementService.EditFinal(req.Text)
	h.Response.Success(c, nil)
}

// RemoveAIVocabulary 去除最终文本中的AI写作高频词汇
func (h *Handler) RemoveAIVocabulary(c *gin.Context) {
	cleaned, err := h.StatementService.RemoveAIVocabulary(c.Request.Context())
	if err != nil {
		h.Response.AppError(c, err)
		return
	}

	h.Response.Success(c, gin.H{"cleaned_text": cleaned}, "AI词汇已去除")
}

// UploadFile 上传文档并提取文本
func (h *Handler) UploadFile(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		h.Response.Error(c, 400, ErrorFileUploadFailed, "未找到上传文件", err.Error())
		return
	}
	if fileHeader.Size > maxUploadSize {
		h.Response.Error(c, 400, ErrorFileInvalid, "文件过大，限制20MB")
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		h.Response.Error(c, 400, ErrorFileUploadFailed, "打开上传文件失败", err.Error())
		return
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		h.Response.Error(c, 400, ErrorFileUploadFailed, "读取上传文件失败", err.Error())
		return
	}

	text := h.ExtractService.ExtractText(fileHeader.Filename, data)
	h.Response.Success(c, gin.H{
		"filename": fileHeader.Filename,
		"text":     text,
	})
}

// UploadImage 上传课程截图
func (h *Handler) UploadImage(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		h.Response.Error(c, 400, ErrorFileUploadFailed, "未找到上传文件", err.Error())
		return
	}
	if fileHeader.Size > maxUploadSize {
		h.Response.Error(c, 400, ErrorFileInvalid, "文件过大，限制20MB")
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		h.Response.Error(c, 400, ErrorFileUploadFailed, "打开上传文件失败", err.Error())
		return
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		h.Response.Error(c, 400, ErrorFileUploadFailed, "读取上传文件失败", err.Error())
		return
	}

	image, err := h.ExtractService.ExtractImage(fileHeader.Filename, data)
	if err != nil {
		h.Response.AppError(c, err)
		return
	}

	h.Response.Success(c, image)
}

// ExportDocx 导出最终文本为Word文档
func (h *Handler) ExportDocx(c *gin.Context) {
	keepHighlight := c.DefaultQuery("keep_highlight", "true") != "false"
	major := c.Query("major")

	session := h.StatementService.Session()
	if major == "" {
		major = session.Input.Major
	}

	result, err := h.ExportService.ExportDocx(
		session.DisplayText(), session.Input.School, major, keepHighlight)
	if err != nil {
		h.Response.AppError(c, err)
		return
	}

	h.Response.DownloadResponse(c, result)
}

// GetLLMStatus 获取模型服务状态
func (h *Handler) GetLLMStatus(c *gin.Context) {
	ready, state := h.LLMService.GetProviderStatus()
	h.Response.Success(c, gin.H{
		"ready":    ready,
		"state":    state,
		"provider": h.LLMService.GetProviderName(),
		"model":    h.LLMService.GetDefaultModel(),
	})
}

// GetMetrics 返回运行指标快照
func (h *Handler) GetMetrics(c *gin.Context) {
	h.Response.Success(c, utils.GetMetricsCollector().GetMetrics())
}

// GetSettings 获取当前设置（密钥只返回是否已配置）
func (h *Handler) GetSettings(c *gin.Context) {
	cfg := h.ConfigService.GetCurrentConfig()
	hasKey := cfg.LLMConfig != nil && cfg.LLMConfig["api_key"] != ""

	h.Response.Success(c, gin.H{
		"provider":      cfg.LLMProvider,
		"default_model": cfg.LLMConfig["default_model"],
		"has_api_key":   hasKey,
		"debug_mode":    cfg.DebugMode,
	})
}

// SaveSettings 更新LLM配置并刷新模型服务
func (h *Handler) SaveSettings(c *gin.Context) {
	var req SettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Response.BadRequest(c, "请求格式错误", err.Error())
		return
	}

	if ok, reason := h.ConfigService.ValidateAPIKey(req.APIKey); !ok {
		h.Response.Error(c, 400, ErrorAPIKeyMissing, reason)
		return
	}

	provider := req.Provider
	if provider == "" {
		provider = "google"
	}

	llmConfig := map[string]string{
		"api_key": req.APIKey,
	}
	if req.DefaultModel != "" {
		llmConfig["default_model"] = req.DefaultModel
	}

	if err := h.ConfigService.UpdateLLMConfig(provider, llmConfig); err != nil {
		h.Response.Error(c, 400, ErrorLLMConfigInvalid, "保存配置失败", err.Error())
		return
	}

	if err := h.LLMService.UpdateProvider(provider, h.ConfigService.GetLLMConfig()); err != nil {
		h.Response.Error(c, 400, ErrorLLMConfigInvalid, "应用配置失败", err.Error())
		return
	}

	h.Response.Success(c, nil, "设置已保存")
}
