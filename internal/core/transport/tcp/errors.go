package tcp

import "errors"

var (
	// ErrUnsupportedAddr 地址不是纯 TCP 地址
	ErrUnsupportedAddr = errors.New("tcp: unsupported address")

	// ErrTransportClosed 传输已关闭
	ErrTransportClosed = errors.New("tcp: transport closed")
)
