// internal/services/config_service.go
package services

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/SteveJiangWorkPlace/Personal-Statement-Refine/internal/config"
)

// ConfigService 提供配置管理功能
type ConfigService struct {
	// 缓存最近获取的配置，减少反复访问底层存储
	cachedConfig *config.AppConfig

	// 配置更新时间
	lastUpdated time.Time

	// 配置变更记录
	changeHistory []ConfigChangeRecord

	mu sync.RWMutex
}

// ConfigChangeRecord 配置变更记录
type ConfigChangeRecord struct {
	Timestamp time.Time
	Section   string
	OldValue  interface{}
	NewValue  interface{}
}

// NewConfigService 创建配置服务实例
func NewConfigService() *ConfigService {
	return &ConfigService{
		lastUpdated:   time.Now(),
		changeHistory: make([]ConfigChangeRecord, 0, 100),
		cachedConfig:  config.GetCurrentConfig(),
	}
}

// GetCurrentConfig 获取当前配置
func (s *ConfigService) GetCurrentConfig() *config.AppConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.cachedConfig == nil {
		return config.GetCurrentConfig()
	}
	return s.cachedConfig
}

// UpdateLLMConfig 更新LLM提供商和配置
func (s *ConfigService) UpdateLLMConfig(provider string, configMap map[string]string) error {
	if provider == "" {
		return errors.New("提供商不能为空")
	}
	if configMap == nil {
		configMap = make(map[string]string)
	}
	if _, ok := configMap["default_model"]; !ok {
		configMap["default_model"] = "gemini-2.5-pro"
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var oldProvider string
	if s.cachedConfig != nil {
		oldProvider = s.cachedConfig.LLMProvider
	}

	if err := config.UpdateLLMConfig(provider, configMap); err != nil {
		return err
	}

	s.cachedConfig = config.GetCurrentConfig()
	s.lastUpdated = time.Now()
	s.changeHistory = append(s.changeHistory, ConfigChangeRecord{
		Timestamp: s.lastUpdated,
		Section:   "llm",
		OldValue:  oldProvider,
		NewValue:  provider,
	})

	return nil
}

// GetLLMProvider 获取当前LLM提供商
func (s *ConfigService) GetLLMProvider() string {
	return s.GetCurrentConfig().LLMProvider
}

// GetLLMConfig 获取当前LLM配置
func (s *ConfigService) GetLLMConfig() map[string]string {
	return s.GetCurrentConfig().LLMConfig
}

// ValidateAPIKey 对API密钥做格式检查，不发起网络请求
func (s *ConfigService) ValidateAPIKey(apiKey string) (bool, string) {
	key := strings.TrimSpace(apiKey)
	if key == "" {
		return false, "API密钥为空"
	}
	if len(key) < 20 {
		return false, "API密钥长度不足"
	}
	if strings.ContainsAny(key, " \t\n") {
		return false, "API密钥包含空白字符"
	}
	return true, ""
}

// GetChangeHistory 获取最近的配置变更记录
func (s *ConfigService) GetChangeHistory(limit int) []ConfigChangeRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 || limit > len(s.changeHistory) {
		limit = len(s.changeHistory)
	}

	records := make([]ConfigChangeRecord, limit)
	copy(records, s.changeHistory[len(s.changeHistory)-limit:])
	return records
}
