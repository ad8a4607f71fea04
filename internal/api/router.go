// internal/api/router.go
package api

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/SteveJiangWorkPlace/Personal-Statement-Refine/internal/config"
	"github.com/SteveJiangWorkPlace/Personal-Statement-Refine/internal/di"
	"github.com/SteveJiangWorkPlace/Personal-Statement-Refine/internal/services"
)

// SetupRouter 配置HTTP路由
func SetupRouter() (*gin.Engine, error) {
	cfg := config.GetCurrentConfig()

	// 只从容器获取服务，不再创建新实例
	container := di.GetContainer()

	statementService, ok := container.Get("statement").(*services.StatementService)
	if !ok {
		return nil, fmt.Errorf("文书服务未正确初始化")
	}

	extractService, ok := container.Get("extract").(*services.ExtractService)
	if !ok {
		return nil, fmt.Errorf("提取服务未正确初始化")
	}

	exportService, ok := container.Get("export").(*services.ExportService)
	if !ok {
		return nil, fmt.Errorf("导出服务未正确初始化")
	}

	configService, ok := container.Get("config").(*services.ConfigService)
	if !ok {
		return nil, fmt.Errorf("配置服务未正确初始化")
	}

	llmService, ok := container.Get("llm").(*services.LLMService)
	if !ok {
		return nil, fmt.Errorf("模型服务未正确初始化")
	}

	handler := NewHandler(statementService, extractService, exportService, configService, llmService)

	if !cfg.DebugMode {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()

	// 启用CORS和请求指标
	r.Use(corsMiddleware())
	r.Use(metricsMiddleware())

	// 静态文件服务
	r.Static("/static", cfg.StaticDir)

	// WebSocket 流式生成
	r.GET("/ws/generate", handler.GenerateStream)

	// ===============================
	// API路由组
	// ===============================
	api := r.Group("/api")
	api.Use(DefaultRateLimit())
	{
		// 全篇生成
		api.POST("/generate", GenerateRateLimit(), handler.Generate)

		// 会话状态
		api.GET("/session", handler.GetSession)
		api.POST("/session/reset", handler.ResetSession)

		// 段落操作
		paragraphs := api.Group("/paragraphs/:index")
		{
			paragraphs.POST("/edit", handler.EditParagraph)
			paragraphs.POST("/refine", RefineRateLimit(), handler.RefineParagraph)
			paragraphs.POST("/translate", RefineRateLimit(), handler.TranslateParagraph)
			paragraphs.POST("/confirm", handler.ConfirmParagraph)
			paragraphs.POST("/translation/edit", handler.EditTranslation)
			paragraphs.POST("/translation/refine", RefineRateLimit(), handler.RefineTranslation)
		}

		// 最终文本
		finalGroup := api.Group("/final")
		{
			finalGroup.POST("/edit", handler.EditFinal)
			finalGroup.POST("/remove-ai-vocab", RefineRateLimit(), handler.RemoveAIVocabulary)
		}

		// 文件上传
		api.POST("/upload", handler.UploadFile)
		api.POST("/upload/image", handler.UploadImage)

		// 导出
		api.GET("/export/docx", handler.ExportDocx)

		// 设置与状态
		api.GET("/llm/status", handler.GetLLMStatus)
		api.GET("/metrics", handler.GetMetrics)
		settingsGroup := api.Group("/settings")
		{
			settingsGroup.GET("", handler.GetSettings)
			settingsGroup.POST("", handler.SaveSettings)
		}
	}

	return r, nil
}
