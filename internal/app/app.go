// internal/app/app.go
package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/SteveJiangWorkPlace/Personal-Statement-Refine/internal/config"
	"github.com/SteveJiangWorkPlace/Personal-Statement-Refine/internal/di"
	"github.com/SteveJiangWorkPlace/Personal-Statement-Refine/internal/services"
	"github.com/SteveJiangWorkPlace/Personal-Statement-Refine/internal/storage"
	"github.com/SteveJiangWorkPlace/Personal-Statement-Refine/internal/utils"

	// 注册生成服务提供者
	_ "github.com/SteveJiangWorkPlace/Personal-Statement-Refine/internal/llm/providers/google"
)

// App 应用程序实例
type App struct {
	config   *config.AppConfig
	stopChan chan os.Signal
}

// 全局应用实例
var instance *App

// GetApp 获取应用实例（单例）
func GetApp() *App {
	if instance == nil {
		instance = &App{
			stopChan: make(chan os.Signal, 1),
		}
	}
	return instance
}

// GetConfig 返回应用配置
func (a *App) GetConfig() *config.AppConfig {
	return a.config
}

// GetDIContainer 获取依赖注入容器
func GetDIContainer() *di.Container {
	return di.GetContainer()
}

// IsDebugMode 检查调试模式是否开启
func IsDebugMode() bool {
	if instance == nil || instance.config == nil {
		return false
	}
	return instance.config.DebugMode
}

// InitServices 按依赖顺序初始化所有服务并注册到容器
func InitServices() error {
	app := GetApp()
	cfg := config.GetCurrentConfig()
	if cfg == nil {
		return fmt.Errorf("配置系统未初始化")
	}
	app.config = cfg

	// 日志初始化失败不阻止启动，退化为仅stdout输出
	if err := utils.InitLogger(filepath.Join(cfg.LogDir, "psr.log")); err != nil {
		fmt.Printf("警告: 初始化日志文件失败: %v\n", err)
	}
	if cfg.DebugMode {
		utils.GetLogger().SetLogLevel(utils.DEBUG)
	}

	container := di.GetContainer()

	// LLM服务：密钥未配置时注册待机实例，可通过设置页面激活
	llmService, err := services.NewLLMService()
	if err != nil || llmService == nil {
		llmService = services.NewEmptyLLMService()
	}
	container.Register("llm", llmService)

	// 文件存储：会话快照落在数据目录
	store, err := storage.NewFileStorage(cfg.DataDir)
	if err != nil {
		return fmt.Errorf("初始化文件存储失败: %w", err)
	}
	container.Register("storage", store)

	// 核心业务服务
	container.Register("statement", services.NewStatementService(llmService, store))
	container.Register("extract", services.NewExtractService())
	container.Register("export", services.NewExportService(cfg.DataDir))
	container.Register("config", services.NewConfigService())

	// 周期性输出运行指标
	utils.NewAPIMetrics().StartMetricsCollection(context.Background())

	return nil
}
