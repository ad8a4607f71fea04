// internal/config/config.go
package config

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"

	"github.com/joho/godotenv"

	"github.com/SteveJiangWorkPlace/Personal-Statement-Refine/internal/utils"
)

// 当前配置的单例实例
var (
	currentConfig *AppConfig
	configMutex   sync.RWMutex
	configFile    string
	configSecret  string
)

// AppConfig 包含应用程序的所有配置
type AppConfig struct {
	// 基础配置
	Port         string `json:"port"`
	GoogleAPIKey string `json:"-"`
	DataDir      string `json:"data_dir"`
	StaticDir    string `json:"static_dir"`
	TemplatesDir string `json:"templates_dir"`
	LogDir       string `json:"log_dir"`
	DebugMode    bool   `json:"debug_mode"`

	// LLM相关配置
	LLMProvider string            `json:"llm_provider"`
	LLMConfig   map[string]string `json:"llm_config"`
}

// Config 存储应用配置
type Config struct {
	Port         string
	GoogleAPIKey string
	DataDir      string
	StaticDir    string
	TemplatesDir string
	LogDir       string
	DebugMode    bool
}

// Load 从环境变量加载配置
func Load() (*Config, error) {
	// 尝试加载.env文件（可选）
	godotenv.Load()

	// 创建配置
	config := &Config{
		Port:         getEnv("PORT", "8080"),
		GoogleAPIKey: getEnv("GOOGLE_API_KEY", ""),
		DataDir:      getEnvPath("DATA_DIR", "data"),
		StaticDir:    getEnvPath("STATIC_DIR", "static"),
		TemplatesDir: getEnvPath("TEMPLATES_DIR", "web/templates"),
		LogDir:       getEnvPath("LOG_DIR", "logs"),
		DebugMode:    getEnvBool("DEBUG_MODE", true),
	}

	// 验证Gemini API密钥
	if config.GoogleAPIKey == "" {
		// 只记录警告，不返回错误
		log.Println("警告: 未设置GOOGLE_API_KEY，将需要在设置页面中配置才能使用生成功能")
	}

	return config, nil
}

// getEnv 获取环境变量，如果不存在则返回默认值
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvPath 获取环境变量表示的路径，如果不存在则返回默认值
func getEnvPath(key, defaultValue string) string {
	path := getEnv(key, defaultValue)

	// 确保目录存在
	if _, err := os.Stat(path); os.IsNotExist(err) {
		err = os.MkdirAll(path, 0755)
		if err != nil {
			fmt.Printf("警告: 创建目录失败 %s: %v\n", path, err)
		}
	}

	return path
}

// getEnvBool 获取布尔类型环境变量
func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	return value == "true" || value == "1" || value == "yes"
}

// InitConfig 初始化配置管理器
func InitConfig(dataDir string) error {
	configFile = filepath.Join(dataDir, "config.json")

	// 加载基础配置
	baseConfig, err := Load()
	if err != nil {
		return err
	}

	// 准备落盘加密所需的密钥
	secret, err := loadOrCreateSecret(dataDir)
	if err != nil {
		return err
	}

	// 创建初始配置
	configMutex.Lock()
	defer configMutex.Unlock()

	configSecret = secret
	currentConfig = &AppConfig{
		Port:         baseConfig.Port,
		GoogleAPIKey: baseConfig.GoogleAPIKey,
		DataDir:      baseConfig.DataDir,
		StaticDir:    baseConfig.StaticDir,
		TemplatesDir: baseConfig.TemplatesDir,
		LogDir:       baseConfig.LogDir,
		DebugMode:    baseConfig.DebugMode,
		LLMProvider:  getEnv("LLM_PROVIDER", "google"),
		LLMConfig: map[string]string{
			"api_key":       baseConfig.GoogleAPIKey,
			"default_model": "gemini-2.5-pro",
		},
	}

	// 尝试从文件加载已保存的配置
	if _, err := os.Stat(configFile); !os.IsNotExist(err) {
		data, err := os.ReadFile(configFile)
		if err == nil {
			var savedConfig AppConfig
			if json.Unmarshal(data, &savedConfig) == nil {
				// 合并配置，保留文件中的LLM设置，但使用最新的基础配置
				savedConfig.Port = baseConfig.Port
				savedConfig.DataDir = baseConfig.DataDir
				savedConfig.StaticDir = baseConfig.StaticDir
				savedConfig.TemplatesDir = baseConfig.TemplatesDir
				savedConfig.LogDir = baseConfig.LogDir
				savedConfig.DebugMode = baseConfig.DebugMode
				savedConfig.GoogleAPIKey = baseConfig.GoogleAPIKey

				// 文件中的api_key为密文，读入后解密
				if savedConfig.LLMConfig != nil {
					if enc := savedConfig.LLMConfig["api_key"]; enc != "" {
						if plain, err := utils.Decrypt(enc, secret); err == nil {
							savedConfig.LLMConfig["api_key"] = plain
						} else {
							// 解密失败时回退到环境变量的密钥
							savedConfig.LLMConfig["api_key"] = baseConfig.GoogleAPIKey
						}
					} else {
						savedConfig.LLMConfig["api_key"] = baseConfig.GoogleAPIKey
					}
				}

				currentConfig = &savedConfig
			}
		}
	}

	// 保存初始配置到文件
	return saveConfigLocked()
}

// loadOrCreateSecret 加载或生成配置加密密钥
// 优先使用CONFIG_SECRET环境变量，否则在数据目录下生成并持久化
func loadOrCreateSecret(dataDir string) (string, error) {
	if secret := os.Getenv("CONFIG_SECRET"); secret != "" {
		return secret, nil
	}

	secretFile := filepath.Join(dataDir, ".secret")
	if data, err := os.ReadFile(secretFile); err == nil && len(data) > 0 {
		return string(data), nil
	}

	raw, err := utils.GenerateSecureKey(32)
	if err != nil {
		return "", fmt.Errorf("生成配置密钥失败: %w", err)
	}
	secret := base64.StdEncoding.EncodeToString(raw)

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return "", err
	}
	if err := os.WriteFile(secretFile, []byte(secret), 0600); err != nil {
		return "", fmt.Errorf("保存配置密钥失败: %w", err)
	}

	return secret, nil
}

// GetCurrentConfig 返回当前配置的副本
func GetCurrentConfig() *AppConfig {
	configMutex.RLock()
	defer configMutex.RUnlock()

	if currentConfig == nil {
		// 紧急情况，返回一个基本配置
		baseConfig, _ := Load()
		return &AppConfig{
			Port:         baseConfig.Port,
			GoogleAPIKey: baseConfig.GoogleAPIKey,
			DataDir:      baseConfig.DataDir,
			StaticDir:    baseConfig.StaticDir,
			TemplatesDir: baseConfig.TemplatesDir,
			LogDir:       baseConfig.LogDir,
			DebugMode:    baseConfig.DebugMode,
			LLMProvider:  "google",
			LLMConfig: map[string]string{
				"api_key": baseConfig.GoogleAPIKey,
			},
		}
	}

	// 返回配置的副本，LLMConfig同样复制一份
	configCopy := *currentConfig
	configCopy.LLMConfig = make(map[string]string, len(currentConfig.LLMConfig))
	for k, v := range currentConfig.LLMConfig {
		configCopy.LLMConfig[k] = v
	}
	return &configCopy
}

// UpdateLLMConfig 更新LLM配置
func UpdateLLMConfig(provider string, config map[string]string) error {
	configMutex.Lock()
	defer configMutex.Unlock()

	if currentConfig == nil {
		return fmt.Errorf("配置系统未初始化")
	}

	currentConfig.LLMProvider = provider
	currentConfig.LLMConfig = config

	return saveConfigLocked()
}

// SaveConfig 保存当前配置到文件
func SaveConfig() error {
	configMutex.Lock()
	defer configMutex.Unlock()
	return saveConfigLocked()
}

// saveConfigLocked 在持有写锁的前提下落盘，api_key加密后写出
func saveConfigLocked() error {
	if currentConfig == nil {
		return fmt.Errorf("没有配置可保存")
	}

	// 确保目录存在
	dir := filepath.Dir(configFile)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("创建配置目录失败: %w", err)
		}
	}

	// 落盘前把明文api_key替换为密文
	toSave := *currentConfig
	toSave.LLMConfig = make(map[string]string, len(currentConfig.LLMConfig))
	for k, v := range currentConfig.LLMConfig {
		toSave.LLMConfig[k] = v
	}
	if plain := toSave.LLMConfig["api_key"]; plain != "" && configSecret != "" {
		enc, err := utils.Encrypt(plain, configSecret)
		if err != nil {
			return fmt.Errorf("加密API密钥失败: %w", err)
		}
		toSave.LLMConfig["api_key"] = enc
	}

	// 序列化并保存
	data, err := json.MarshalIndent(&toSave, "", "  ")
	if err != nil {
		return fmt.Errorf("序列化配置失败: %w", err)
	}

	return os.WriteFile(configFile, data, 0600)
}
