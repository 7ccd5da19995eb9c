package tcp

import (
	"net"

	"github.com/dep2p/go-floodchat/pkg/lib/multiaddr"
)

// Conn 带多地址的 TCP 连接
type Conn struct {
	net.Conn

	laddr multiaddr.Multiaddr
	raddr multiaddr.Multiaddr
}

func wrapConn(c net.Conn) (*Conn, error) {
	laddr, err := multiaddr.FromNetAddr(c.LocalAddr())
	if err != nil {
		return nil, err
	}
	raddr, err := multiaddr.FromNetAddr(c.RemoteAddr())
	if err != nil {
		return nil, err
	}
	return &Conn{Conn: c, laddr: laddr, raddr: raddr}, nil
}

// LocalMultiaddr 本地地址
func (c *Conn) LocalMultiaddr() multiaddr.Multiaddr { return c.laddr }

// RemoteMultiaddr 远端地址
func (c *Conn) RemoteMultiaddr() multiaddr.Multiaddr { return c.raddr }
