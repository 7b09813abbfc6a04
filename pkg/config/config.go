package config

import (
	"log"
	"os"
	"strings"
	"time"

	"github.com/coldline-crm/coldline/pkg/cache"
	"github.com/coldline-crm/coldline/pkg/logger"
	"github.com/coldline-crm/coldline/pkg/utils"
)

// Config 系统全局配置
type Config struct {
	ServerName string `env:"SERVER_NAME"`
	DBDriver   string `env:"DB_DRIVER"`
	DSN        string `env:"DSN"`
	Addr       string `env:"ADDR"`
	Mode       string `env:"MODE"`
	APIPrefix  string `env:"API_PREFIX"`

	Log logger.LogConfig

	// 呼叫服务商配置
	VoiceAPIBase       string `env:"VOICE_API_BASE"`
	VoiceMonitorBase   string `env:"VOICE_MONITOR_BASE"`
	VoiceAPIToken      string `env:"VOICE_API_TOKEN"`
	VoiceAssistantID   string `env:"VOICE_ASSISTANT_ID"`
	VoicePhoneNumberID string `env:"VOICE_PHONE_NUMBER_ID"`

	// 轮询与转写过滤配置
	PollInterval      time.Duration
	TranscriptMarkers []string // 命中即过滤的系统提示词标记（小写匹配）

	// 呼叫结束 Webhook（可选）
	CallEndedWebhookURL string `env:"CALL_ENDED_WEBHOOK_URL"`

	// 定时任务配置
	MonthlyResetSchedule string `env:"MONTHLY_RESET_SCHEDULE"`

	// 缓存配置
	Cache cache.Config
}

var GlobalConfig *Config

func Load() error {
	// 1. 根据环境加载 .env 文件（如果不存在也不报错，使用默认值）
	env := os.Getenv("APP_ENV")
	if err := utils.LoadEnv(env); err != nil {
		// .env文件不存在时只记录日志，不影响启动
		log.Printf("Note: .env file not found or failed to load: %v (using default values)", err)
	}

	// 2. 加载全局配置（所有配置都有默认值，确保无.env文件也能启动）
	GlobalConfig = &Config{
		ServerName: getStringOrDefault("SERVER_NAME", "coldline"),
		DBDriver:   getStringOrDefault("DB_DRIVER", "sqlite"),
		DSN:        getStringOrDefault("DSN", "./coldline.db"),
		Addr:       getStringOrDefault("ADDR", ":7080"),
		Mode:       getStringOrDefault("MODE", "development"),
		APIPrefix:  getStringOrDefault("API_PREFIX", "/api"),
		Log: logger.LogConfig{
			Level:      getStringOrDefault("LOG_LEVEL", "info"),
			Filename:   getStringOrDefault("LOG_FILENAME", "./logs/app.log"),
			MaxSize:    getIntOrDefault("LOG_MAX_SIZE", 100),
			MaxAge:     getIntOrDefault("LOG_MAX_AGE", 30),
			MaxBackups: getIntOrDefault("LOG_MAX_BACKUPS", 5),
			Daily:      getBoolOrDefault("LOG_DAILY", true),
		},
		VoiceAPIBase:       getStringOrDefault("VOICE_API_BASE", "https://api.vapi.ai"),
		VoiceMonitorBase:   getStringOrDefault("VOICE_MONITOR_BASE", "wss://api.vapi.ai"),
		VoiceAPIToken:      getStringOrDefault("VOICE_API_TOKEN", ""),
		VoiceAssistantID:   getStringOrDefault("VOICE_ASSISTANT_ID", ""),
		VoicePhoneNumberID: getStringOrDefault("VOICE_PHONE_NUMBER_ID", ""),
		PollInterval:       parseDuration(utils.GetEnv("POLL_INTERVAL"), 2*time.Second),
		TranscriptMarkers:  parseMarkers(utils.GetEnv("TRANSCRIPT_FILTER_MARKERS")),

		CallEndedWebhookURL:  getStringOrDefault("CALL_ENDED_WEBHOOK_URL", ""),
		MonthlyResetSchedule: getStringOrDefault("MONTHLY_RESET_SCHEDULE", "0 0 1 * *"),

		Cache: loadCacheConfig(),
	}
	return nil
}

// getStringOrDefault 获取环境变量值，如果为空则返回默认值
func getStringOrDefault(key, defaultValue string) string {
	value := utils.GetEnv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getBoolOrDefault 获取布尔环境变量值，如果为空则返回默认值
func getBoolOrDefault(key string, defaultValue bool) bool {
	value := utils.GetEnv(key)
	if value == "" {
		return defaultValue
	}
	return utils.GetBoolEnv(key)
}

// getIntOrDefault 获取整数环境变量值，如果为空则返回默认值
func getIntOrDefault(key string, defaultValue int) int {
	value := utils.GetIntEnv(key)
	if value == 0 {
		return defaultValue
	}
	return int(value)
}

func parseDuration(s string, defaultVal time.Duration) time.Duration {
	if s == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return defaultVal
	}
	return d
}

// parseMarkers 解析逗号分隔的转写过滤标记
func parseMarkers(s string) []string {
	if s == "" {
		return []string{"you are matt", "you are ben"}
	}
	parts := strings.Split(s, ",")
	markers := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(strings.ToLower(p)); p != "" {
			markers = append(markers, p)
		}
	}
	return markers
}

// loadCacheConfig 加载缓存配置，设置所有默认值
func loadCacheConfig() cache.Config {
	cacheType := getStringOrDefault("CACHE_TYPE", "local")

	return cache.Config{
		Type: cacheType,
		Redis: cache.RedisConfig{
			Addr:         getStringOrDefault("REDIS_ADDR", "localhost:6379"),
			Password:     utils.GetEnv("REDIS_PASSWORD"),
			DB:           int(utils.GetIntEnv("REDIS_DB")),
			PoolSize:     getIntOrDefault("REDIS_POOL_SIZE", 10),
			MinIdleConns: getIntOrDefault("REDIS_MIN_IDLE_CONNS", 5),
			DialTimeout:  parseDuration(utils.GetEnv("REDIS_DIAL_TIMEOUT"), 5*time.Second),
			ReadTimeout:  parseDuration(utils.GetEnv("REDIS_READ_TIMEOUT"), 3*time.Second),
			WriteTimeout: parseDuration(utils.GetEnv("REDIS_WRITE_TIMEOUT"), 3*time.Second),
		},
		Local: cache.LocalConfig{
			DefaultExpiration: parseDuration(utils.GetEnv("LOCAL_CACHE_DEFAULT_EXPIRATION"), 5*time.Minute),
			CleanupInterval:   parseDuration(utils.GetEnv("LOCAL_CACHE_CLEANUP_INTERVAL"), 10*time.Minute),
		},
	}
}
