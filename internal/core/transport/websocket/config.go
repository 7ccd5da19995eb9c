package websocket

import (
	"time"

	"github.com/dep2p/go-floodchat/config"
)

// Config WebSocket 传输配置
type Config struct {
	Path             string
	HandshakeTimeout time.Duration
	ReadBufferSize   int
	WriteBufferSize  int
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
	ws := cfg.Transport.WebSocket
	path := ws.Path
	if path == "" {
		path = "/"
	}
	return Config{
		Path:             path,
		HandshakeTimeout: ws.HandshakeTimeout.Duration(),
		ReadBufferSize:   ws.ReadBufferSize,
		WriteBufferSize:  ws.WriteBufferSize,
	}
}
