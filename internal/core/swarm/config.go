package swarm

import (
	"time"

	"github.com/dep2p/go-floodchat/config"
	"github.com/dep2p/go-floodchat/internal/core/metrics"
	pkgif "github.com/dep2p/go-floodchat/pkg/interfaces"
)

// Config Swarm 配置
type Config struct {
	// DialTimeout 传输层拨号超时，不含协议协商
	DialTimeout time.Duration
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	return Config{DialTimeout: 15 * time.Second}
}

// Validate 验证配置
func (c Config) Validate() error {
	if c.DialTimeout <= 0 {
		return ErrInvalidConfig
	}
	return nil
}

// ConfigFromUnified 从统一配置创建 Swarm 配置
func ConfigFromUnified(cfg *config.Config) Config {
	c := DefaultConfig()
	if cfg != nil && cfg.Swarm.DialTimeout > 0 {
		c.DialTimeout = cfg.Swarm.DialTimeout.Duration()
	}
	return c
}

// Option Swarm 选项函数
type Option func(*Swarm) error

// WithConfig 设置配置
func WithConfig(cfg Config) Option {
	return func(s *Swarm) error {
		if err := cfg.Validate(); err != nil {
			return err
		}
		s.cfg = cfg
		return nil
	}
}

// WithTransports 添加传输层，拨号与监听按添加顺序选择
func WithTransports(ts ...pkgif.Transport) Option {
	return func(s *Swarm) error {
		for _, t := range ts {
			if t != nil {
				s.transports = append(s.transports, t)
			}
		}
		return nil
	}
}

// WithMetrics 设置指标记录器
func WithMetrics(m *metrics.Recorder) Option {
	return func(s *Swarm) error {
		s.metrics = m
		return nil
	}
}
