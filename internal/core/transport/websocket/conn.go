package websocket

import (
	"errors"
	"io"
	"net"
	"sync"
	"time"

	ws "github.com/gorilla/websocket"

	"github.com/dep2p/go-floodchat/pkg/lib/multiaddr"
)

const closeWriteTimeout = time.Second

// Conn 把 WebSocket 适配为 net.Conn
type Conn struct {
	ws *ws.Conn

	laddr multiaddr.Multiaddr
	raddr multiaddr.Multiaddr

	readMu sync.Mutex
	reader io.Reader

	writeMu sync.Mutex

	closeOnce sync.Once
	closeErr  error
}

var _ net.Conn = (*Conn)(nil)

func newConn(c *ws.Conn, laddr, raddr multiaddr.Multiaddr) *Conn {
	return &Conn{ws: c, laddr: laddr, raddr: raddr}
}

// Read 读取当前消息，读完后继续下一条消息
func (c *Conn) Read(p []byte) (int, error) {
	c.readMu.Lock()
	defer c.readMu.Unlock()

	for {
		if c.reader == nil {
			typ, r, err := c.ws.NextReader()
			if err != nil {
				return 0, translateErr(err)
			}
			if typ != ws.BinaryMessage && typ != ws.TextMessage {
				continue
			}
			c.reader = r
		}

		n, err := c.reader.Read(p)
		if errors.Is(err, io.EOF) {
			c.reader = nil
			if n > 0 {
				return n, nil
			}
			continue
		}
		return n, err
	}
}

// Write 整块写为一个二进制消息
func (c *Conn) Write(p []byte) (int, error) {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if err := c.ws.WriteMessage(ws.BinaryMessage, p); err != nil {
		return 0, translateErr(err)
	}
	return len(p), nil
}

// Close 尽力发送关闭帧后关闭底层连接
func (c *Conn) Close() error {
	c.closeOnce.Do(func() {
		_ = c.ws.WriteControl(ws.CloseMessage,
			ws.FormatCloseMessage(ws.CloseNormalClosure, ""),
			time.Now().Add(closeWriteTimeout))
		c.closeErr = c.ws.Close()
	})
	return c.closeErr
}

func (c *Conn) LocalAddr() net.Addr  { return c.ws.LocalAddr() }
func (c *Conn) RemoteAddr() net.Addr { return c.ws.RemoteAddr() }

// LocalMultiaddr 本地地址，含 /ws
func (c *Conn) LocalMultiaddr() multiaddr.Multiaddr { return c.laddr }

// RemoteMultiaddr 远端地址，含 /ws
func (c *Conn) RemoteMultiaddr() multiaddr.Multiaddr { return c.raddr }

func (c *Conn) SetDeadline(t time.Time) error {
	if err := c.ws.SetReadDeadline(t); err != nil {
		return err
	}
	return c.ws.SetWriteDeadline(t)
}

func (c *Conn) SetReadDeadline(t time.Time) error  { return c.ws.SetReadDeadline(t) }
func (c *Conn) SetWriteDeadline(t time.Time) error { return c.ws.SetWriteDeadline(t) }

// translateErr 正常关闭映射为 io.EOF
func translateErr(err error) error {
	if ws.IsCloseError(err, ws.CloseNormalClosure, ws.CloseGoingAway, ws.CloseNoStatusReceived) {
		return io.EOF
	}
	return err
}
