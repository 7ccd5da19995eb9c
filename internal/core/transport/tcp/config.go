package tcp

import (
	"time"

	"github.com/dep2p/go-floodchat/config"
)

// Config TCP 传输配置
type Config struct {
	KeepAlive       time.Duration
	NoDelay         bool
	MaxInboundConns int
}

// DefaultConfig 默认配置
func DefaultConfig() Config {
	return ConfigFromUnified(config.NewConfig())
}

// ConfigFromUnified 从统一配置转换
func ConfigFromUnified(cfg *config.Config) Config {
	if cfg == nil {
		return DefaultConfig()
	}
	return Config{
		KeepAlive:       cfg.Transport.TCP.KeepAlive.Duration(),
		NoDelay:         cfg.Transport.TCP.NoDelay,
		MaxInboundConns: cfg.Transport.TCP.MaxInboundConns,
	}
}
