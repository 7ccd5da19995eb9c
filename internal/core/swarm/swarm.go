package swarm

import (
	"context"
	"errors"
	"sort"
	"sync"

	"go.uber.org/multierr"

	"github.com/dep2p/go-floodchat/internal/core/metrics"
	"github.com/dep2p/go-floodchat/internal/util/logger"
	pkgif "github.com/dep2p/go-floodchat/pkg/interfaces"
	"github.com/dep2p/go-floodchat/pkg/lib/multiaddr"
	"github.com/dep2p/go-floodchat/pkg/types"
)

var log = logger.Logger("core/swarm")

// Swarm 连接群管理
type Swarm struct {
	cfg        Config
	upgrader   pkgif.Upgrader
	transports []pkgif.Transport
	metrics    *metrics.Recorder

	// 所有连接 ctx 的父级，Close 时取消
	ctx    context.Context
	cancel context.CancelFunc

	mu        sync.Mutex
	conns     map[string]*Conn
	listeners []pkgif.Listener
	closed    bool

	// 连接任务与 accept 循环，只在持有 mu 且未关闭时 Add
	wg sync.WaitGroup

	events *eventQueue
}

// NewSwarm 创建 Swarm
func NewSwarm(up pkgif.Upgrader, opts ...Option) (*Swarm, error) {
	if up == nil {
		return nil, errors.New("swarm: upgrader is required")
	}

	s := &Swarm{
		cfg:      DefaultConfig(),
		upgrader: up,
		conns:    make(map[string]*Conn),
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	s.ctx, s.cancel = context.WithCancel(context.Background())
	s.events = newEventQueue()
	return s, nil
}

// Events 连接事件通道，Close 后关闭
func (s *Swarm) Events() <-chan Event {
	return s.events.out
}

// Conns 返回所有活跃连接，按建立时间排序
func (s *Swarm) Conns() []*Conn {
	s.mu.Lock()
	conns := make([]*Conn, 0, len(s.conns))
	for _, c := range s.conns {
		conns = append(conns, c)
	}
	s.mu.Unlock()

	sort.Slice(conns, func(i, j int) bool {
		return conns[i].opened.Before(conns[j].opened)
	})
	return conns
}

// ListenAddrs 返回实际绑定的监听地址
func (s *Swarm) ListenAddrs() []multiaddr.Multiaddr {
	s.mu.Lock()
	defer s.mu.Unlock()

	addrs := make([]multiaddr.Multiaddr, 0, len(s.listeners))
	for _, l := range s.listeners {
		addrs = append(addrs, l.Multiaddr())
	}
	return addrs
}

// Close 关闭所有连接与监听器，等待连接任务退出后关闭事件通道
func (s *Swarm) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrSwarmClosed
	}
	s.closed = true
	listeners := s.listeners
	s.listeners = nil
	s.mu.Unlock()

	log.Debug("关闭 Swarm", "listeners", len(listeners))

	s.cancel()

	var err error
	for _, l := range listeners {
		err = multierr.Append(err, l.Close())
	}

	s.wg.Wait()
	s.events.close()
	return err
}

// addConn 登记连接并启动其任务
func (s *Swarm) addConn(raw pkgif.TransportConn, dir types.Direction) (*Conn, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		raw.Close()
		return nil, ErrSwarmClosed
	}
	c := newConn(s.ctx, raw, dir)
	s.conns[c.id] = c
	s.wg.Add(1)
	s.mu.Unlock()

	s.metrics.ConnOpened(dir)
	log.Debug("连接已建立",
		"conn", c.id,
		"direction", dir,
		"remote", addrString(raw.RemoteMultiaddr()))

	go s.runConn(c)
	return c, nil
}

// runConn 协商后运行会话，结束时拆除连接
func (s *Swarm) runConn(c *Conn) {
	defer s.wg.Done()

	out, err := s.upgrader.Upgrade(c.ctx, c.raw, c.dir)
	if err != nil {
		if c.dir == types.DirOutbound {
			err = &DialError{Addr: c.RemoteMultiaddr(), Err: err}
		}
		log.Debug("连接协商失败", "conn", c.id, "direction", c.dir, "error", err)
		s.removeConn(c, err)
		return
	}

	c.setProtocol(out.Protocol())
	s.events.push(Event{Type: EvtConnUpgraded, Conn: c, Output: out})

	err = out.Serve(c.ctx)
	if c.ctx.Err() != nil {
		// 本端主动关闭
		err = nil
	}
	if err != nil {
		log.Debug("会话异常结束", "conn", c.id, "protocol", out.Protocol(), "error", err)
	}
	s.removeConn(c, err)
}

func (s *Swarm) removeConn(c *Conn, cause error) {
	_ = c.Close()

	s.mu.Lock()
	delete(s.conns, c.id)
	s.mu.Unlock()

	s.metrics.ConnClosed(c.dir)
	s.events.push(Event{Type: EvtConnClosed, Conn: c, Err: cause})
}
