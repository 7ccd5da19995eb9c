package config

import (
	"errors"
	"time"
)

// FloodSubConfig 泛洪发布订阅配置
type FloodSubConfig struct {
	// MaxMessageSize 单个帧的最大字节数，超过的发布被拒绝，超过的入站帧被丢弃
	MaxMessageSize int `json:"max_message_size"`

	// SeenCacheSize 去重缓存容量（条目数）
	SeenCacheSize int `json:"seen_cache_size"`

	// OutboundQueueSize 每个连接的发送队列长度，满时丢弃
	OutboundQueueSize int `json:"outbound_queue_size"`

	// SubscriptionBufferSize 每个订阅的本地投递缓冲
	SubscriptionBufferSize int `json:"subscription_buffer_size"`

	// WriteTimeout 单次写超时，超时的连接被关闭
	WriteTimeout Duration `json:"write_timeout"`

	// FilterBySubscription 只向声明订阅了该主题的对端转发
	FilterBySubscription bool `json:"filter_by_subscription,omitempty"`
}

// DefaultFloodSubConfig 默认配置
func DefaultFloodSubConfig() FloodSubConfig {
	return FloodSubConfig{
		MaxMessageSize:         1 << 20,
		SeenCacheSize:          4096,
		OutboundQueueSize:      64,
		SubscriptionBufferSize: 32,
		WriteTimeout:           Duration(10 * time.Second),
	}
}

// Validate 校验
func (c FloodSubConfig) Validate() error {
	if c.MaxMessageSize <= 0 {
		return errors.New("floodsub max message size must be positive")
	}
	if c.SeenCacheSize <= 0 {
		return errors.New("floodsub seen cache size must be positive")
	}
	if c.OutboundQueueSize <= 0 {
		return errors.New("floodsub outbound queue size must be positive")
	}
	if c.SubscriptionBufferSize <= 0 {
		return errors.New("floodsub subscription buffer size must be positive")
	}
	if c.WriteTimeout <= 0 {
		return errors.New("floodsub write timeout must be positive")
	}
	return nil
}
