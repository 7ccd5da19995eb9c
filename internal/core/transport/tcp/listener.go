package tcp

import (
	"net"
	"sync"

	pkgif "github.com/dep2p/go-floodchat/pkg/interfaces"
	"github.com/dep2p/go-floodchat/pkg/lib/multiaddr"
)

// Listener TCP 监听器
type Listener struct {
	ln   net.Listener
	addr multiaddr.Multiaddr
	t    *Transport

	closeOnce sync.Once
	closeErr  error
}

var _ pkgif.Listener = (*Listener)(nil)

// Accept 接受入站连接
func (l *Listener) Accept() (pkgif.TransportConn, error) {
	for {
		c, err := l.ln.Accept()
		if err != nil {
			return nil, err
		}
		l.t.tune(c)

		conn, err := wrapConn(c)
		if err != nil {
			// 无法表示为多地址的连接直接丢弃
			log.Debug("丢弃入站连接", "remote", c.RemoteAddr(), "err", err)
			c.Close()
			continue
		}
		return conn, nil
	}
}

// Multiaddr 实际绑定地址
func (l *Listener) Multiaddr() multiaddr.Multiaddr {
	return l.addr
}

// Close 关闭监听器
func (l *Listener) Close() error {
	l.closeOnce.Do(func() {
		l.closeErr = l.ln.Close()
		l.t.removeListener(l)
	})
	return l.closeErr
}
