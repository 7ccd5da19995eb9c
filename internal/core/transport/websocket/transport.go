// Package websocket 提供 WebSocket 传输
//
// 每个 WebSocket 连接被适配为 net.Conn：写入一次产生一个二进制消息，
// 读取按顺序拼接收到的消息内容，对上层表现为连续字节流。
package websocket

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"sync"
	"sync/atomic"

	ws "github.com/gorilla/websocket"
	"go.uber.org/multierr"

	"github.com/dep2p/go-floodchat/internal/util/logger"
	pkgif "github.com/dep2p/go-floodchat/pkg/interfaces"
	"github.com/dep2p/go-floodchat/pkg/lib/multiaddr"
)

var log = logger.Logger("core/transport/websocket")

// wsComponent 追加在 TCP 地址后的 /ws
var wsComponent = multiaddr.StringCast("/ws")

// Transport WebSocket 传输
type Transport struct {
	cfg      Config
	dialer   *ws.Dialer
	upgrader ws.Upgrader

	mu        sync.Mutex
	listeners map[*Listener]struct{}

	closed atomic.Bool
}

var _ pkgif.Transport = (*Transport)(nil)

// NewTransport 创建 WebSocket 传输
func NewTransport(cfg Config) *Transport {
	return &Transport{
		cfg: cfg,
		dialer: &ws.Dialer{
			HandshakeTimeout: cfg.HandshakeTimeout,
			ReadBufferSize:   cfg.ReadBufferSize,
			WriteBufferSize:  cfg.WriteBufferSize,
			NetDialContext:   (&net.Dialer{}).DialContext,
		},
		upgrader: ws.Upgrader{
			HandshakeTimeout: cfg.HandshakeTimeout,
			ReadBufferSize:   cfg.ReadBufferSize,
			WriteBufferSize:  cfg.WriteBufferSize,
			// 对端不是浏览器，不校验 Origin
			CheckOrigin: func(*http.Request) bool { return true },
		},
		listeners: make(map[*Listener]struct{}),
	}
}

// CanDial 接受 ip4/ip6/dns* + tcp + ws
func (t *Transport) CanDial(addr multiaddr.Multiaddr) bool {
	names := multiaddr.ProtocolNames(addr)
	if len(names) != 3 || names[1] != "tcp" || names[2] != "ws" {
		return false
	}
	switch names[0] {
	case "ip4", "ip6", "dns", "dns4", "dns6":
		return true
	}
	return false
}

// CanListen 只接受 ip4/ip6 + tcp + ws
func (t *Transport) CanListen(addr multiaddr.Multiaddr) bool {
	names := multiaddr.ProtocolNames(addr)
	return len(names) == 3 && names[1] == "tcp" && names[2] == "ws" &&
		(names[0] == "ip4" || names[0] == "ip6")
}

// Dial 建立 WebSocket 连接
func (t *Transport) Dial(ctx context.Context, raddr multiaddr.Multiaddr) (pkgif.TransportConn, error) {
	if t.closed.Load() {
		return nil, ErrTransportClosed
	}
	if !t.CanDial(raddr) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedAddr, raddr)
	}
	_, hostport, err := multiaddr.DialArgs(raddr)
	if err != nil {
		return nil, err
	}

	url := "ws://" + hostport + t.cfg.Path
	c, resp, err := t.dialer.DialContext(ctx, url, nil)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	if err != nil {
		return nil, fmt.Errorf("连接失败: %w", err)
	}

	laddr, err := multiaddr.FromNetAddr(c.LocalAddr())
	if err != nil {
		c.Close()
		return nil, err
	}
	// 远端保留拨号时的地址，DNS 名称不被解析结果替换
	return newConn(c, laddr.Encapsulate(wsComponent), raddr), nil
}

// Listen 启动 HTTP 服务并接受 WebSocket 升级
func (t *Transport) Listen(laddr multiaddr.Multiaddr) (pkgif.Listener, error) {
	if t.closed.Load() {
		return nil, ErrTransportClosed
	}
	if !t.CanListen(laddr) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedAddr, laddr)
	}
	network, hostport, err := multiaddr.DialArgs(laddr)
	if err != nil {
		return nil, err
	}

	ln, err := net.Listen(network, hostport)
	if err != nil {
		return nil, fmt.Errorf("监听失败: %w", err)
	}
	bound, err := multiaddr.FromNetAddr(ln.Addr())
	if err != nil {
		ln.Close()
		return nil, err
	}

	l := newListener(t, ln, bound.Encapsulate(wsComponent))
	t.mu.Lock()
	t.listeners[l] = struct{}{}
	t.mu.Unlock()

	log.Debug("WebSocket 监听已启动", "addr", l.addr)
	return l, nil
}

// Close 关闭传输及其监听器
func (t *Transport) Close() error {
	if !t.closed.CompareAndSwap(false, true) {
		return nil
	}
	t.mu.Lock()
	ls := make([]*Listener, 0, len(t.listeners))
	for l := range t.listeners {
		ls = append(ls, l)
	}
	t.mu.Unlock()

	var err error
	for _, l := range ls {
		err = multierr.Append(err, l.Close())
	}
	return err
}

func (t *Transport) removeListener(l *Listener) {
	t.mu.Lock()
	delete(t.listeners, l)
	t.mu.Unlock()
}
