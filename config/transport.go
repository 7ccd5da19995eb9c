package config

import (
	"errors"
	"time"
)

// TransportConfig 传输层配置
type TransportConfig struct {
	// TCP
	EnableTCP bool      `json:"enable_tcp"`
	TCP       TCPConfig `json:"tcp,omitempty"`

	// WebSocket（/tcp/<port>/ws）
	EnableWebSocket bool            `json:"enable_websocket"`
	WebSocket       WebSocketConfig `json:"websocket,omitempty"`

	// DialTimeout 单次拨号超时
	DialTimeout Duration `json:"dial_timeout"`
}

// TCPConfig TCP 传输配置
type TCPConfig struct {
	// KeepAlive TCP KeepAlive 周期，0 表示关闭
	KeepAlive Duration `json:"keep_alive"`

	// NoDelay 禁用 Nagle 算法
	NoDelay bool `json:"no_delay"`

	// MaxInboundConns 每个监听器的并发入站连接上限，0 表示不限制
	MaxInboundConns int `json:"max_inbound_conns,omitempty"`
}

// WebSocketConfig WebSocket 传输配置
type WebSocketConfig struct {
	// Path HTTP 升级路径
	Path string `json:"path"`

	// HandshakeTimeout HTTP 升级握手超时
	HandshakeTimeout Duration `json:"handshake_timeout"`

	ReadBufferSize  int `json:"read_buffer_size,omitempty"`
	WriteBufferSize int `json:"write_buffer_size,omitempty"`
}

// DefaultTransportConfig 默认启用 TCP 与 WebSocket
func DefaultTransportConfig() TransportConfig {
	return TransportConfig{
		EnableTCP: true,
		TCP: TCPConfig{
			KeepAlive: Duration(15 * time.Second),
			NoDelay:   true,
		},
		EnableWebSocket: true,
		WebSocket: WebSocketConfig{
			Path:             "/",
			HandshakeTimeout: Duration(10 * time.Second),
			ReadBufferSize:   4096,
			WriteBufferSize:  4096,
		},
		DialTimeout: Duration(15 * time.Second),
	}
}

// Validate 校验
func (c TransportConfig) Validate() error {
	if !c.EnableTCP && !c.EnableWebSocket {
		return errors.New("at least one transport must be enabled")
	}
	if c.DialTimeout <= 0 {
		return errors.New("transport dial timeout must be positive")
	}
	if c.TCP.KeepAlive < 0 {
		return errors.New("tcp keep alive must not be negative")
	}
	if c.TCP.MaxInboundConns < 0 {
		return errors.New("tcp max inbound conns must not be negative")
	}
	if c.EnableWebSocket {
		if c.WebSocket.HandshakeTimeout <= 0 {
			return errors.New("websocket handshake timeout must be positive")
		}
		if c.WebSocket.Path == "" || c.WebSocket.Path[0] != '/' {
			return errors.New("websocket path must begin with /")
		}
	}
	return nil
}
