package swarm

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	pkgif "github.com/dep2p/go-floodchat/pkg/interfaces"
	"github.com/dep2p/go-floodchat/pkg/lib/multiaddr"
	"github.com/dep2p/go-floodchat/pkg/types"
)

// Conn Swarm 管理的一条连接
type Conn struct {
	id     string
	dir    types.Direction
	raw    pkgif.TransportConn
	opened time.Time

	ctx    context.Context
	cancel context.CancelFunc

	protoOnce sync.Once
	proto     atomic.Value // types.ProtocolID
	upgraded  atomic.Bool

	closeOnce sync.Once
	closeErr  error
}

func newConn(parent context.Context, raw pkgif.TransportConn, dir types.Direction) *Conn {
	ctx, cancel := context.WithCancel(parent)
	c := &Conn{
		id:     uuid.NewString(),
		dir:    dir,
		raw:    raw,
		opened: time.Now(),
		ctx:    ctx,
		cancel: cancel,
	}
	// ctx 取消即关闭原始连接，阻塞中的读写随之返回
	context.AfterFunc(ctx, func() { c.closeRaw() })
	return c
}

// ID 连接唯一标识
func (c *Conn) ID() string { return c.id }

// Direction 连接方向
func (c *Conn) Direction() types.Direction { return c.dir }

// LocalMultiaddr 本端地址
func (c *Conn) LocalMultiaddr() multiaddr.Multiaddr { return c.raw.LocalMultiaddr() }

// RemoteMultiaddr 对端地址
func (c *Conn) RemoteMultiaddr() multiaddr.Multiaddr { return c.raw.RemoteMultiaddr() }

// Opened 建立时间
func (c *Conn) Opened() time.Time { return c.opened }

// Protocol 协商得到的协议，协商完成前为空
func (c *Conn) Protocol() types.ProtocolID {
	if p, ok := c.proto.Load().(types.ProtocolID); ok {
		return p
	}
	return ""
}

// IsUpgraded 是否已完成协商
func (c *Conn) IsUpgraded() bool { return c.upgraded.Load() }

// Done 连接结束时关闭
func (c *Conn) Done() <-chan struct{} { return c.ctx.Done() }

// IsClosed 是否已关闭
func (c *Conn) IsClosed() bool { return c.ctx.Err() != nil }

// Close 关闭连接，会话随之结束
func (c *Conn) Close() error {
	c.cancel()
	return c.closeRaw()
}

func (c *Conn) closeRaw() error {
	c.closeOnce.Do(func() {
		c.closeErr = c.raw.Close()
	})
	return c.closeErr
}

func (c *Conn) setProtocol(p types.ProtocolID) {
	c.protoOnce.Do(func() {
		c.proto.Store(p)
		c.upgraded.Store(true)
	})
}
