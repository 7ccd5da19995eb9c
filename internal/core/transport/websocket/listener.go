package websocket

import (
	"errors"
	"net"
	"net/http"
	"sync"

	pkgif "github.com/dep2p/go-floodchat/pkg/interfaces"
	"github.com/dep2p/go-floodchat/pkg/lib/multiaddr"
)

// Listener WebSocket 监听器
//
// 内部运行 http.Server，升级成功的连接经 incoming 交给 Accept。
type Listener struct {
	t      *Transport
	addr   multiaddr.Multiaddr
	server *http.Server

	incoming chan *Conn
	closed   chan struct{}

	closeOnce sync.Once
	closeErr  error
}

var _ pkgif.Listener = (*Listener)(nil)

func newListener(t *Transport, ln net.Listener, addr multiaddr.Multiaddr) *Listener {
	l := &Listener{
		t:        t,
		addr:     addr,
		incoming: make(chan *Conn),
		closed:   make(chan struct{}),
	}
	l.server = &http.Server{
		Handler:           l,
		ReadHeaderTimeout: t.cfg.HandshakeTimeout,
	}

	go func() {
		if err := l.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Warn("WebSocket HTTP 服务退出", "addr", addr, "err", err)
		}
	}()
	return l
}

// ServeHTTP 处理升级请求
func (l *Listener) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != l.t.cfg.Path {
		http.NotFound(w, r)
		return
	}
	c, err := l.t.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Debug("WebSocket 升级失败", "remote", r.RemoteAddr, "err", err)
		return
	}

	raddr, err := multiaddr.FromNetAddr(c.RemoteAddr())
	if err != nil {
		c.Close()
		return
	}
	conn := newConn(c, l.addr, raddr.Encapsulate(wsComponent))

	select {
	case l.incoming <- conn:
	case <-l.closed:
		conn.Close()
	}
}

// Accept 返回下一个已升级的连接
func (l *Listener) Accept() (pkgif.TransportConn, error) {
	select {
	case c := <-l.incoming:
		return c, nil
	case <-l.closed:
		return nil, ErrListenerClosed
	}
}

// Multiaddr 实际绑定地址，含 /ws
func (l *Listener) Multiaddr() multiaddr.Multiaddr {
	return l.addr
}

// Close 停止 HTTP 服务，已交出的连接不受影响
func (l *Listener) Close() error {
	l.closeOnce.Do(func() {
		close(l.closed)
		l.closeErr = l.server.Close()
		l.t.removeListener(l)
	})
	return l.closeErr
}
