package floodchat

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"

	"github.com/dep2p/go-floodchat/config"
)

// Option 节点配置选项
type Option func(*nodeConfig) error

// nodeConfig 内部配置
type nodeConfig struct {
	config *config.Config

	// registerer 指标注册表，为空时每个节点使用独立 Registry
	registerer prometheus.Registerer

	userFxOptions []fx.Option
}

func newNodeConfig() *nodeConfig {
	return &nodeConfig{config: config.NewConfig()}
}

// WithConfig 使用完整配置，之后的选项在其基础上修改
func WithConfig(cfg *config.Config) Option {
	return func(c *nodeConfig) error {
		if cfg == nil {
			return errors.New("config is nil")
		}
		c.config = cfg.Clone()
		return nil
	}
}

// WithListenAddrs 设置监听地址
func WithListenAddrs(addrs ...string) Option {
	return func(c *nodeConfig) error {
		c.config.ListenAddrs = append([]string(nil), addrs...)
		return nil
	}
}

// WithPeers 设置启动时拨号的节点
func WithPeers(addrs ...string) Option {
	return func(c *nodeConfig) error {
		c.config.Peers = append([]string(nil), addrs...)
		return nil
	}
}

// WithTopic 设置默认主题
func WithTopic(name string) Option {
	return func(c *nodeConfig) error {
		c.config.Topic = name
		return nil
	}
}

// WithMaxMessageSize 设置单帧上限
func WithMaxMessageSize(n int) Option {
	return func(c *nodeConfig) error {
		if n <= 0 {
			return errors.New("max message size must be positive")
		}
		c.config.FloodSub.MaxMessageSize = n
		return nil
	}
}

// WithMetricsAddr 在 addr 上暴露 /metrics
func WithMetricsAddr(addr string) Option {
	return func(c *nodeConfig) error {
		c.config.Metrics.Enabled = true
		c.config.Metrics.ListenAddr = addr
		return nil
	}
}

// WithRegisterer 指定指标注册表
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(c *nodeConfig) error {
		c.registerer = reg
		return nil
	}
}

// WithFxOptions 追加自定义 Fx 选项
func WithFxOptions(opts ...fx.Option) Option {
	return func(c *nodeConfig) error {
		c.userFxOptions = append(c.userFxOptions, opts...)
		return nil
	}
}
