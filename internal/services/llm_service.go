// internal/services/llm_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/SteveJiangWorkPlace/Personal-Statement-Refine/internal/config"
	apperrors "github.com/SteveJiangWorkPlace/Personal-Statement-Refine/internal/errors"
	"github.com/SteveJiangWorkPlace/Personal-Statement-Refine/internal/llm"
	"github.com/SteveJiangWorkPlace/Personal-Statement-Refine/internal/utils"
)

// 流式输出的批处理参数：达到字符阈值或时间间隔即向前端刷新一次
const (
	streamBufferSize     = 200
	streamUpdateInterval = 50 * time.Millisecond
)

// greetingPatterns AI开场白过滤模式，只在完整响应上应用
var greetingPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?s)^好的，作为.*?顾问.*?\n+`),
	regexp.MustCompile(`(?s)^作为.*?顾问.*?\n+`),
	regexp.MustCompile(`(?s)^我将.*?分析.*?\n+`),
	regexp.MustCompile(`(?s)^下面我将.*?\n+`),
	regexp.MustCompile(`(?s)^我会.*?帮助您.*?\n+`),
	regexp.MustCompile(`(?s)^让我.*?为您.*?\n+`),
}

// LLMService 提供统一的大语言模型调用接口
type LLMService struct {
	providerMutex      sync.RWMutex
	provider           llm.Provider
	providerName       string
	isReady            bool
	readyState         string
	activeDefaultModel string
}

// NewLLMService 从当前配置创建LLM服务
// 配置缺失或初始化失败时返回未就绪的服务而不是错误
func NewLLMService() (*LLMService, error) {
	service := createBaseLLMService()

	cfg := config.GetCurrentConfig()
	if cfg == nil {
		service.readyState = "无法获取配置"
		return service, nil
	}

	if cfg.LLMProvider == "" || (cfg.LLMConfig != nil && cfg.LLMConfig["api_key"] == "") {
		service.readyState = "API密钥未配置"
		return service, nil
	}

	provider, err := llm.GetProvider(cfg.LLMProvider, cfg.LLMConfig)
	if err != nil {
		service.readyState = fmt.Sprintf("初始化失败: %v", err)
		return service, nil
	}

	service.provider = provider
	service.providerName = cfg.LLMProvider
	service.activeDefaultModel = extractDefaultModel(cfg.LLMConfig)
	service.isReady = true
	service.readyState = "就绪"

	return service, nil
}

// NewEmptyLLMService 创建一个空的LLM服务实例作为后备方案
func NewEmptyLLMService() *LLMService {
	service := createBaseLLMService()
	service.providerName = "empty"
	service.readyState = "待机模式，请在设置中配置API密钥"
	return service
}

func createBaseLLMService() *LLMService {
	return &LLMService{
		readyState: "未初始化",
	}
}

// NewLLMServiceWithProvider 直接注入提供者，测试用
func NewLLMServiceWithProvider(provider llm.Provider, name string) *LLMService {
	return &LLMService{
		provider:     provider,
		providerName: name,
		isReady:      true,
		readyState:   "就绪",
	}
}

// IsReady 返回服务是否已就绪
func (s *LLMService) IsReady() bool {
	s.providerMutex.RLock()
	defer s.providerMutex.RUnlock()

	return s.provider != nil && s.isReady
}

// GetReadyState 返回服务就绪状态描述
func (s *LLMService) GetReadyState() string {
	s.providerMutex.RLock()
	defer s.providerMutex.RUnlock()

	return s.readyState
}

// GetProviderStatus 返回服务是否就绪以及可读描述
func (s *LLMService) GetProviderStatus() (bool, string) {
	if s == nil {
		return false, "LLM服务实例未初始化"
	}
	if s.IsReady() {
		return true, "就绪"
	}
	return false, s.GetReadyState()
}

// GetProviderName 返回当前提供者名称
func (s *LLMService) GetProviderName() string {
	s.providerMutex.RLock()
	defer s.providerMutex.RUnlock()

	return s.providerName
}

// GetDefaultModel 返回当前默认模型
func (s *LLMService) GetDefaultModel() string {
	s.providerMutex.RLock()
	defer s.providerMutex.RUnlock()

	return s.activeDefaultModel
}

// UpdateProvider 更新LLM服务的提供商
func (s *LLMService) UpdateProvider(providerName string, cfg map[string]string) error {
	provider, err := llm.GetProvider(providerName, cfg)
	if err != nil {
		s.providerMutex.Lock()
		s.isReady = false
		s.readyState = fmt.Sprintf("配置失败: %v", err)
		s.providerMutex.Unlock()
		return err
	}

	s.providerMutex.Lock()
	defer s.providerMutex.Unlock()

	s.provider = provider
	s.providerName = providerName
	s.activeDefaultModel = extractDefaultModel(cfg)
	s.isReady = true
	s.readyState = "就绪"

	return nil
}

func (s *LLMService) currentProvider() (llm.Provider, error) {
	s.providerMutex.RLock()
	defer s.providerMutex.RUnlock()

	if s.provider == nil || !s.isReady {
		return nil, apperrors.NewNotConfiguredError("模型服务未就绪: " + s.readyState)
	}
	return s.provider, nil
}

// Complete 发起一次非流式生成，用于段落级的批注修改、翻译与去AI词汇操作
// 结果原样返回：段落修改结果里的**加粗标记要保留给预览和导出
func (s *LLMService) Complete(ctx context.Context, req llm.CompletionRequest) (string, error) {
	provider, err := s.currentProvider()
	if err != nil {
		return "", err
	}

	start := time.Now()
	resp, err := provider.CompleteText(ctx, req)
	if err != nil {
		return "", apperrors.NewGenerationError("生成内容失败", err)
	}
	utils.NewAPIMetrics().RecordLLMRequest(resp.ProviderName, resp.ModelName, resp.TokensUsed, time.Since(start))

	return resp.Text, nil
}

// StreamGenerate 发起流式生成
// 片段先进入缓冲区，达到字符阈值或时间间隔时清理星号后整体推送给onFlush；
// 全部完成后对累计文本再做一次星号清理和开场白过滤，返回最终文本
func (s *LLMService) StreamGenerate(ctx context.Context, req llm.CompletionRequest, onFlush func(accumulated string)) (string, error) {
	provider, err := s.currentProvider()
	if err != nil {
		return "", err
	}

	start := time.Now()
	stream, err := provider.StreamCompletion(ctx, req)
	if err != nil {
		return "", apperrors.NewGenerationError("流式生成失败", err)
	}

	var full strings.Builder
	var buffer strings.Builder
	lastFlush := time.Now()

	flush := func() {
		if buffer.Len() == 0 {
			return
		}
		full.WriteString(CleanAsterisks(buffer.String()))
		buffer.Reset()
		lastFlush = time.Now()
		if onFlush != nil {
			onFlush(full.String())
		}
	}

	completed := false
	for chunk := range stream {
		if chunk.Err != nil {
			return "", apperrors.NewGenerationError("流式生成中断", chunk.Err)
		}
		if chunk.Done {
			completed = true
			break
		}
		buffer.WriteString(chunk.Text)
		if buffer.Len() >= streamBufferSize || time.Since(lastFlush) >= streamUpdateInterval {
			flush()
		}
	}

	if err := ctx.Err(); err != nil {
		return "", apperrors.NewGenerationError("流式生成被中断", err)
	}
	// 通道未经终止块直接关闭，说明提供者异常退出，不能把半截文本当作完整结果
	if !completed {
		return "", apperrors.NewGenerationError("流式生成中断", errors.New("响应流提前关闭"))
	}
	flush()

	result := FilterAIGreeting(CleanAsterisks(full.String()))
	if onFlush != nil {
		onFlush(result)
	}
	// 流式接口不返回用量统计，token数记0
	utils.NewAPIMetrics().RecordLLMRequest(s.GetProviderName(), req.Model, 0, time.Since(start))
	return result, nil
}

// CleanAsterisks 移除文本中的所有星号字符
func CleanAsterisks(text string) string {
	if text == "" {
		return ""
	}
	return strings.ReplaceAll(text, "*", "")
}

// RemoveMarkdownBold 移除Markdown加粗标记
func RemoveMarkdownBold(text string) string {
	return strings.ReplaceAll(text, "**", "")
}

// FilterAIGreeting 移除AI生成内容开头的常见问候语和介绍语
func FilterAIGreeting(text string) string {
	for _, pattern := range greetingPatterns {
		text = pattern.ReplaceAllString(text, "")
	}
	return text
}

// extractDefaultModel 从提供商配置里取默认模型
func extractDefaultModel(cfg map[string]string) string {
	if cfg == nil {
		return ""
	}
	return cfg["default_model"]
}
