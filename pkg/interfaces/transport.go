package interfaces

import (
	"context"
	"net"

	"github.com/dep2p/go-floodchat/pkg/lib/multiaddr"
)

// Transport 传输层接口
//
// 实现包括 TCP 与 WebSocket。
type Transport interface {
	// CanDial 是否能拨号到该地址（已去掉 /p2p 后缀）
	CanDial(addr multiaddr.Multiaddr) bool

	// CanListen 是否能在该地址监听
	CanListen(addr multiaddr.Multiaddr) bool

	// Dial 建立原始连接
	Dial(ctx context.Context, raddr multiaddr.Multiaddr) (TransportConn, error)

	// Listen 绑定监听地址
	Listen(laddr multiaddr.Multiaddr) (Listener, error)

	// Close 关闭传输及其创建的监听器
	Close() error
}

// Listener 监听器
type Listener interface {
	// Accept 阻塞直到新连接到达或监听器关闭
	Accept() (TransportConn, error)

	// Multiaddr 实际绑定地址（端口 0 已解析）
	Multiaddr() multiaddr.Multiaddr

	// Close 关闭监听器，阻塞中的 Accept 返回错误
	Close() error
}

// TransportConn 带多地址信息的原始双向字节流
type TransportConn interface {
	net.Conn

	LocalMultiaddr() multiaddr.Multiaddr
	RemoteMultiaddr() multiaddr.Multiaddr
}
