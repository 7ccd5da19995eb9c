package floodsub

import (
	"time"

	"github.com/benbjohnson/clock"

	"github.com/dep2p/go-floodchat/config"
	"github.com/dep2p/go-floodchat/internal/core/metrics"
)

// Config FloodSub 配置
type Config struct {
	// MaxMessageSize 单帧上限，发布超限返回 ErrMessageTooLarge，入站超限被丢弃
	MaxMessageSize int

	// SeenCacheSize 去重表容量
	SeenCacheSize int

	// OutboundQueueSize 每个会话的发送队列长度
	OutboundQueueSize int

	// SubscriptionBufferSize 每个订阅的缓冲
	SubscriptionBufferSize int

	// WriteTimeout 单次写超时
	WriteTimeout time.Duration

	// FilterBySubscription 只转发给声明订阅了消息主题的会话
	FilterBySubscription bool
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	return Config{
		MaxMessageSize:         1 << 20,
		SeenCacheSize:          4096,
		OutboundQueueSize:      64,
		SubscriptionBufferSize: 32,
		WriteTimeout:           10 * time.Second,
	}
}

// ConfigFromUnified 从统一配置转换
func ConfigFromUnified(cfg *config.Config) Config {
	c := DefaultConfig()
	if cfg == nil {
		return c
	}
	f := cfg.FloodSub
	if f.MaxMessageSize > 0 {
		c.MaxMessageSize = f.MaxMessageSize
	}
	if f.SeenCacheSize > 0 {
		c.SeenCacheSize = f.SeenCacheSize
	}
	if f.OutboundQueueSize > 0 {
		c.OutboundQueueSize = f.OutboundQueueSize
	}
	if f.SubscriptionBufferSize > 0 {
		c.SubscriptionBufferSize = f.SubscriptionBufferSize
	}
	if f.WriteTimeout > 0 {
		c.WriteTimeout = f.WriteTimeout.Duration()
	}
	c.FilterBySubscription = f.FilterBySubscription
	return c
}

type options struct {
	cfg     Config
	clock   clock.Clock
	metrics *metrics.Recorder
	onEvent EventHandler
}

// Option 服务选项
type Option func(*options)

// WithConfig 整体替换配置，非正值字段保留默认
func WithConfig(cfg Config) Option {
	return func(o *options) {
		if cfg.MaxMessageSize > 0 {
			o.cfg.MaxMessageSize = cfg.MaxMessageSize
		}
		if cfg.SeenCacheSize > 0 {
			o.cfg.SeenCacheSize = cfg.SeenCacheSize
		}
		if cfg.OutboundQueueSize > 0 {
			o.cfg.OutboundQueueSize = cfg.OutboundQueueSize
		}
		if cfg.SubscriptionBufferSize > 0 {
			o.cfg.SubscriptionBufferSize = cfg.SubscriptionBufferSize
		}
		if cfg.WriteTimeout > 0 {
			o.cfg.WriteTimeout = cfg.WriteTimeout
		}
		o.cfg.FilterBySubscription = cfg.FilterBySubscription
	}
}

// WithMaxMessageSize 设置单帧上限
func WithMaxMessageSize(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.cfg.MaxMessageSize = n
		}
	}
}

// WithSeenCacheSize 设置去重表容量
func WithSeenCacheSize(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.cfg.SeenCacheSize = n
		}
	}
}

// WithOutboundQueueSize 设置每个会话的发送队列长度
func WithOutboundQueueSize(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.cfg.OutboundQueueSize = n
		}
	}
}

// WithSubscriptionBufferSize 设置订阅缓冲
func WithSubscriptionBufferSize(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.cfg.SubscriptionBufferSize = n
		}
	}
}

// WithWriteTimeout 设置写超时
func WithWriteTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.cfg.WriteTimeout = d
		}
	}
}

// WithSubscriptionFilter 只向订阅了主题的会话转发
func WithSubscriptionFilter(enabled bool) Option {
	return func(o *options) {
		o.cfg.FilterBySubscription = enabled
	}
}

// WithClock 设置时钟，用于消息接收时间
func WithClock(c clock.Clock) Option {
	return func(o *options) {
		if c != nil {
			o.clock = c
		}
	}
}

// WithMetrics 设置指标记录器
func WithMetrics(m *metrics.Recorder) Option {
	return func(o *options) {
		o.metrics = m
	}
}

// WithEventHandler 设置事件回调
//
// 回调在会话 goroutine 中同步执行，可能持有引擎内部锁，
// 不能阻塞，也不能回调 Service 的方法。
func WithEventHandler(h EventHandler) Option {
	return func(o *options) {
		o.onEvent = h
	}
}
