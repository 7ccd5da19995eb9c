package websocket

import "errors"

var (
	// ErrUnsupportedAddr 地址不是 /tcp/<port>/ws 形式
	ErrUnsupportedAddr = errors.New("websocket: unsupported address")

	// ErrTransportClosed 传输已关闭
	ErrTransportClosed = errors.New("websocket: transport closed")

	// ErrListenerClosed 监听器已关闭
	ErrListenerClosed = errors.New("websocket: listener closed")
)
