package upgrader

import (
	"time"

	"github.com/dep2p/go-floodchat/config"
)

// defaultNegotiateTimeout 默认协商超时
const defaultNegotiateTimeout = 60 * time.Second

// Config 升级器配置
type Config struct {
	// NegotiateTimeout 协商超时，ctx 截止时间更早时以 ctx 为准
	NegotiateTimeout time.Duration
}

// NewConfig 默认配置
func NewConfig() Config {
	return Config{NegotiateTimeout: defaultNegotiateTimeout}
}

// ConfigFromUnified 从统一配置转换
func ConfigFromUnified(cfg *config.Config) Config {
	c := NewConfig()
	if cfg != nil && cfg.Upgrader.NegotiateTimeout > 0 {
		c.NegotiateTimeout = cfg.Upgrader.NegotiateTimeout.Duration()
	}
	return c
}
