// Package tcp 提供 TCP 传输
package tcp

import (
	"context"
	"fmt"
	"net"
	"sync"
	"sync/atomic"

	"go.uber.org/multierr"
	"golang.org/x/net/netutil"

	"github.com/dep2p/go-floodchat/internal/util/logger"
	pkgif "github.com/dep2p/go-floodchat/pkg/interfaces"
	"github.com/dep2p/go-floodchat/pkg/lib/multiaddr"
)

var log = logger.Logger("core/transport/tcp")

// Transport TCP 传输
type Transport struct {
	cfg Config

	mu        sync.Mutex
	listeners map[*Listener]struct{}

	closed atomic.Bool
}

var _ pkgif.Transport = (*Transport)(nil)

// NewTransport 创建 TCP 传输
func NewTransport(cfg Config) *Transport {
	return &Transport{
		cfg:       cfg,
		listeners: make(map[*Listener]struct{}),
	}
}

// CanDial 接受 ip4/ip6/dns* + tcp
func (t *Transport) CanDial(addr multiaddr.Multiaddr) bool {
	names := multiaddr.ProtocolNames(addr)
	if len(names) != 2 || names[1] != "tcp" {
		return false
	}
	switch names[0] {
	case "ip4", "ip6", "dns", "dns4", "dns6":
		return true
	}
	return false
}

// CanListen 只接受 ip4/ip6 + tcp
func (t *Transport) CanListen(addr multiaddr.Multiaddr) bool {
	names := multiaddr.ProtocolNames(addr)
	return len(names) == 2 && names[1] == "tcp" && (names[0] == "ip4" || names[0] == "ip6")
}

// Dial 建立 TCP 连接
func (t *Transport) Dial(ctx context.Context, raddr multiaddr.Multiaddr) (pkgif.TransportConn, error) {
	if t.closed.Load() {
		return nil, ErrTransportClosed
	}
	if !t.CanDial(raddr) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedAddr, raddr)
	}
	network, hostport, err := multiaddr.DialArgs(raddr)
	if err != nil {
		return nil, err
	}

	d := net.Dialer{KeepAlive: t.cfg.KeepAlive}
	if t.cfg.KeepAlive <= 0 {
		d.KeepAlive = -1
	}
	c, err := d.DialContext(ctx, network, hostport)
	if err != nil {
		return nil, fmt.Errorf("连接失败: %w", err)
	}
	t.tune(c)

	conn, err := wrapConn(c)
	if err != nil {
		c.Close()
		return nil, err
	}
	return conn, nil
}

// Listen 绑定监听地址，端口 0 时由系统分配
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
	if t.cfg.MaxInboundConns > 0 {
		ln = netutil.LimitListener(ln, t.cfg.MaxInboundConns)
	}

	l := &Listener{ln: ln, addr: bound, t: t}
	t.mu.Lock()
	t.listeners[l] = struct{}{}
	t.mu.Unlock()

	log.Debug("TCP 监听已启动", "addr", bound)
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

func (t *Transport) tune(c net.Conn) {
	tc, ok := c.(*net.TCPConn)
	if !ok {
		return
	}
	_ = tc.SetNoDelay(t.cfg.NoDelay)
	if t.cfg.KeepAlive > 0 {
		_ = tc.SetKeepAlive(true)
		_ = tc.SetKeepAlivePeriod(t.cfg.KeepAlive)
	}
}

func (t *Transport) removeListener(l *Listener) {
	t.mu.Lock()
	delete(t.listeners, l)
	t.mu.Unlock()
}
