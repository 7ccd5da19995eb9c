package logger

import (
	"log/slog"
	"os"
	"strings"
	"sync"
)

// 环境变量
const (
	EnvLevel     = "FLOODCHAT_LOG_LEVEL"
	EnvFormat    = "FLOODCHAT_LOG_FORMAT"
	EnvAddSource = "FLOODCHAT_LOG_ADD_SOURCE"
)

// Format 输出格式
type Format int

const (
	// FormatText logfmt 风格文本（默认）
	FormatText Format = iota
	// FormatJSON 每行一个 JSON 对象
	FormatJSON
)

// Config 日志配置
type Config struct {
	mu sync.RWMutex

	// Default 未单独配置的子系统使用的级别
	Default slog.Level

	// Subsystems 子系统级别覆盖
	Subsystems map[string]slog.Level

	Format    Format
	AddSource bool
}

// LevelFor 返回子系统的生效级别
func (c *Config) LevelFor(subsystem string) slog.Level {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if lvl, ok := c.Subsystems[subsystem]; ok {
		return lvl
	}
	return c.Default
}

var (
	envConfig     *Config
	envConfigOnce sync.Once
)

// ConfigFromEnv 解析一次环境变量并缓存结果
func ConfigFromEnv() *Config {
	envConfigOnce.Do(func() {
		envConfig = ParseConfig(os.Getenv(EnvLevel), os.Getenv(EnvFormat), os.Getenv(EnvAddSource))
	})
	return envConfig
}

// ParseConfig 从三个环境变量的原始值构造配置
//
// level 格式为 "子系统=级别,...,默认级别"，无法识别的条目被忽略。
func ParseConfig(level, format, addSource string) *Config {
	cfg := &Config{
		Default:    slog.LevelInfo,
		Subsystems: make(map[string]slog.Level),
	}

	for _, part := range strings.Split(level, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if name, lvl, ok := strings.Cut(part, "="); ok {
			if l, ok := ParseLevel(lvl); ok {
				cfg.Subsystems[strings.TrimSpace(name)] = l
			}
			continue
		}
		if l, ok := ParseLevel(part); ok {
			cfg.Default = l
		}
	}

	if strings.EqualFold(strings.TrimSpace(format), "json") {
		cfg.Format = FormatJSON
	}

	switch strings.ToLower(strings.TrimSpace(addSource)) {
	case "1", "true", "yes":
		cfg.AddSource = true
	}
	return cfg
}

// ParseLevel 解析级别名称，大小写不敏感
func ParseLevel(name string) (slog.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return slog.LevelDebug, true
	case "info":
		return slog.LevelInfo, true
	case "warn", "warning":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	}
	return slog.LevelInfo, false
}

// resetEnvConfig 仅供测试使用
func resetEnvConfig() {
	envConfigOnce = sync.Once{}
	envConfig = nil
}
