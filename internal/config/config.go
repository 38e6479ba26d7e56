package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config 聚合整个服务的配置项。
type Config struct {
	Server    ServerConfig
	Log       LogConfig
	Widgets   WidgetConfig
	Handoff   HandoffConfig
	Collector CollectorConfig
	Storage   StorageConfig
}

// ServerConfig 描述 HTTP 服务配置。
type ServerConfig struct {
	Addr           string
	AllowedOrigins []string
}

// LogConfig 日志级别与编码。
type LogConfig struct {
	Level  string
	Format string
}

// WidgetConfig 聊天与漏斗的模拟延迟。
type WidgetConfig struct {
	ChatTypingDelay          time.Duration
	QuizAnalyzeDelay         time.Duration
	MatchmakerAnalyzeDelay   time.Duration
	MatchmakerStatusInterval time.Duration
}

// HandoffConfig WhatsApp 深链接的目标。
type HandoffConfig struct {
	BaseURL     string
	Destination string
}

// CollectorConfig 外部线索表格的接口地址。
type CollectorConfig struct {
	URL     string
	Timeout time.Duration
}

// Enabled 是否需要推送线索。
func (c CollectorConfig) Enabled() bool {
	return c.URL != ""
}

// StorageConfig 线索存储与统计后端。
type StorageConfig struct {
	SQLiteDSN     string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	v.SetDefault("PORT", "8080")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000,http://localhost:5173")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "console")
	v.SetDefault("CHAT_TYPING_DELAY", "1s")
	v.SetDefault("QUIZ_ANALYZE_DELAY", "2s")
	v.SetDefault("MATCHMAKER_ANALYZE_DELAY", "3.5s")
	v.SetDefault("MATCHMAKER_STATUS_INTERVAL", "800ms")
	v.SetDefault("HANDOFF_BASE_URL", "https://wa.me")
	v.SetDefault("HANDOFF_DESTINATION", "917990675093")
	v.SetDefault("COLLECTOR_URL", "")
	v.SetDefault("COLLECTOR_TIMEOUT", "10s")
	v.SetDefault("LEADS_SQLITE_DSN", "leads.db")
	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	return v
}

// Load 从环境变量加载配置。
func Load() (*Config, error) {
	v := newViper()

	server, err := loadServerConfig(v)
	if err != nil {
		return nil, err
	}

	widgets, err := loadWidgetConfig(v)
	if err != nil {
		return nil, err
	}

	collectorTimeout, err := parseDuration(v, "COLLECTOR_TIMEOUT")
	if err != nil {
		return nil, err
	}

	destination := strings.TrimSpace(v.GetString("HANDOFF_DESTINATION"))
	if destination == "" {
		return nil, fmt.Errorf("HANDOFF_DESTINATION must not be empty")
	}

	return &Config{
		Server: server,
		Log: LogConfig{
			Level:  strings.TrimSpace(v.GetString("LOG_LEVEL")),
			Format: strings.TrimSpace(v.GetString("LOG_FORMAT")),
		},
		Widgets: widgets,
		Handoff: HandoffConfig{
			BaseURL:     strings.TrimSpace(v.GetString("HANDOFF_BASE_URL")),
			Destination: destination,
		},
		Collector: CollectorConfig{
			URL:     strings.TrimSpace(v.GetString("COLLECTOR_URL")),
			Timeout: collectorTimeout,
		},
		Storage: StorageConfig{
			SQLiteDSN:     strings.TrimSpace(v.GetString("LEADS_SQLITE_DSN")),
			RedisAddr:     strings.TrimSpace(v.GetString("REDIS_ADDR")),
			RedisPassword: v.GetString("REDIS_PASSWORD"),
			RedisDB:       v.GetInt("REDIS_DB"),
		},
	}, nil
}

// loadServerConfig 解析服务器监听地址。
func loadServerConfig(v *viper.Viper) (ServerConfig, error) {
	port := strings.TrimSpace(v.GetString("PORT"))
	if port == "" {
		port = "8080"
	}

	origins := splitList(v.GetString("CORS_ALLOWED_ORIGINS"))

	if strings.Contains(port, ":") {
		// 允许用户直接传入 ":8080" 或 "127.0.0.1:8080"。
		return ServerConfig{Addr: port, AllowedOrigins: origins}, nil
	}

	if strings.Contains(port, " ") {
		return ServerConfig{}, fmt.Errorf("invalid PORT value: %q", port)
	}

	return ServerConfig{Addr: ":" + port, AllowedOrigins: origins}, nil
}

// splitList 解析逗号分隔的列表，忽略空项。
func splitList(raw string) []string {
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func loadWidgetConfig(v *viper.Viper) (WidgetConfig, error) {
	var (
		cfg WidgetConfig
		err error
	)
	if cfg.ChatTypingDelay, err = parseDuration(v, "CHAT_TYPING_DELAY"); err != nil {
		return WidgetConfig{}, err
	}
	if cfg.QuizAnalyzeDelay, err = parseDuration(v, "QUIZ_ANALYZE_DELAY"); err != nil {
		return WidgetConfig{}, err
	}
	if cfg.MatchmakerAnalyzeDelay, err = parseDuration(v, "MATCHMAKER_ANALYZE_DELAY"); err != nil {
		return WidgetConfig{}, err
	}
	if cfg.MatchmakerStatusInterval, err = parseDuration(v, "MATCHMAKER_STATUS_INTERVAL"); err != nil {
		return WidgetConfig{}, err
	}
	return cfg, nil
}

// parseDuration 按 Go duration 解析 key，拒绝负值。
func parseDuration(v *viper.Viper, key string) (time.Duration, error) {
	raw := strings.TrimSpace(v.GetString(key))
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", key, raw, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("invalid %s value %q: must not be negative", key, raw)
	}
	return d, nil
}
