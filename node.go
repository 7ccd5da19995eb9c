package floodchat

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"
	"golang.org/x/sync/errgroup"

	"github.com/dep2p/go-floodchat/internal/core/metrics"
	"github.com/dep2p/go-floodchat/internal/core/swarm"
	"github.com/dep2p/go-floodchat/internal/protocol/floodsub"
	"github.com/dep2p/go-floodchat/internal/util/addrutil"
	"github.com/dep2p/go-floodchat/internal/util/logger"
	"github.com/dep2p/go-floodchat/pkg/lib/multiaddr"
	"github.com/dep2p/go-floodchat/pkg/types"
)

var log = logger.Logger("floodchat")

// stopTimeout 关闭 Fx 应用的超时
const stopTimeout = 10 * time.Second

// Node 聊天节点
type Node struct {
	cfg *nodeConfig
	app *fx.App

	// 由 Fx 注入
	peerID        types.PeerID
	swarm         *swarm.Swarm
	pubsub        *floodsub.Service
	metrics       *metrics.Recorder
	metricsServer *metrics.Server
	gatherer      prometheus.Gatherer

	topic floodsub.Topic

	mu         sync.Mutex
	started    bool
	closed     bool
	defaultSub *floodsub.Subscription
	loopDone   chan struct{}

	// 启动拨号在后台进行，Close 时取消并等待
	dialCancel context.CancelFunc
	dialDone   chan struct{}
}

// ════════════════════════════════════════════════════════════════════════════
//                              构造函数
// ════════════════════════════════════════════════════════════════════════════

// New 创建节点但不启动
//
// 配置在这里校验，地址错误在任何网络活动之前返回，
// 可用 errors.As 取得 *multiaddr.ParseError。
func New(opts ...Option) (*Node, error) {
	cfg := newNodeConfig()
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, fmt.Errorf("apply option: %w", err)
		}
	}

	if err := cfg.config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	topic, err := floodsub.NewTopic(cfg.config.Topic)
	if err != nil {
		return nil, err
	}

	node := &Node{cfg: cfg, topic: topic}
	node.app, err = buildFxApp(cfg, node)
	if err != nil {
		return nil, fmt.Errorf("build fx app: %w", err)
	}
	return node, nil
}

// Start 启动节点
//
// 依次：启动组件、监听所有地址（任一失败即返回错误）、订阅默认主题，
// 然后在后台并发拨号配置的节点。Start 在监听完成后即返回，不等待拨号；
// 拨号失败只记录日志，Close 会取消未完成的拨号。
func (n *Node) Start(ctx context.Context) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.closed {
		return ErrNodeClosed
	}
	if n.started {
		return ErrAlreadyStarted
	}

	log.Info("正在启动节点", "peer", n.peerID.ShortString())
	if err := n.app.Start(ctx); err != nil {
		n.closed = true
		return fmt.Errorf("initialize failed: %w", err)
	}
	n.started = true

	n.loopDone = make(chan struct{})
	go n.eventLoop()

	for _, addr := range n.cfg.config.ListenAddrs {
		bound, err := n.swarm.Listen(addr)
		if err != nil {
			log.Error("监听地址失败", "addr", addr, "error", err)
			n.shutdownLocked()
			return fmt.Errorf("listen failed: %w", err)
		}
		log.Info("监听地址成功", "addr", bound)
	}

	sub, err := n.pubsub.Subscribe(n.topic)
	if err != nil {
		n.shutdownLocked()
		return fmt.Errorf("subscribe %s: %w", n.topic, err)
	}
	n.defaultSub = sub

	dialCtx, cancel := context.WithCancel(context.Background())
	n.dialCancel = cancel
	n.dialDone = make(chan struct{})
	go func() {
		defer close(n.dialDone)
		n.dialPeers(dialCtx, n.cfg.config.Peers)
	}()
	return nil
}

// dialPeers 并发拨号，失败只记录日志
func (n *Node) dialPeers(ctx context.Context, peers []string) {
	if len(peers) == 0 {
		return
	}

	var g errgroup.Group
	g.SetLimit(n.cfg.config.Swarm.StartupDialConcurrency)
	for _, addr := range peers {
		addr := addr
		g.Go(func() error {
			if _, err := n.swarm.Dial(ctx, addr); err != nil {
				log.Warn("拨号失败", "addr", addr, "error", err)
				return nil
			}
			log.Info("已拨号", "addr", addr)
			return nil
		})
	}
	_ = g.Wait()
}

// eventLoop 记录连接生命周期，Swarm 关闭后退出
func (n *Node) eventLoop() {
	defer close(n.loopDone)

	for evt := range n.swarm.Events() {
		c := evt.Conn
		switch evt.Type {
		case swarm.EvtConnUpgraded:
			log.Info("连接已建立",
				"conn", c.ID(),
				"direction", c.Direction(),
				"remote", c.RemoteMultiaddr(),
				"protocol", c.Protocol())
		case swarm.EvtConnClosed:
			if evt.Err != nil {
				log.Warn("连接异常结束",
					"conn", c.ID(),
					"direction", c.Direction(),
					"remote", c.RemoteMultiaddr(),
					"error", evt.Err)
				continue
			}
			log.Info("连接已关闭", "conn", c.ID(), "remote", c.RemoteMultiaddr())
		}
	}
}

// ════════════════════════════════════════════════════════════════════════════
//                              基本信息
// ════════════════════════════════════════════════════════════════════════════

// ID 返回节点 ID
func (n *Node) ID() types.PeerID {
	return n.peerID
}

// Topic 默认主题
func (n *Node) Topic() floodsub.Topic {
	return n.topic
}

// ListenAddrs 实际监听的地址
func (n *Node) ListenAddrs() []multiaddr.Multiaddr {
	return n.swarm.ListenAddrs()
}

// FullAddrs 可分享给其他节点的完整地址（带 /p2p/<id>）
//
// 通配监听地址展开为本机各接口地址，回环地址排在最后。
func (n *Node) FullAddrs() []multiaddr.Multiaddr {
	ifaces, err := net.InterfaceAddrs()
	if err != nil {
		log.Debug("获取本机地址失败", "error", err)
	}

	var out, loopback []multiaddr.Multiaddr
	for _, la := range n.ListenAddrs() {
		for _, a := range addrutil.ExpandUnspecified(la, ifaces) {
			full, err := addrutil.BuildFullAddr(a, n.peerID)
			if err != nil {
				continue
			}
			if addrutil.Classify(a) == addrutil.AddrLoopback {
				loopback = append(loopback, full)
			} else {
				out = append(out, full)
			}
		}
	}
	return append(out, loopback...)
}

// Conns 当前连接
func (n *Node) Conns() []*swarm.Conn {
	return n.swarm.Conns()
}

// PeerCount 已完成 floodsub 协商的连接数
func (n *Node) PeerCount() int {
	return n.pubsub.PeerCount()
}

// Registry 节点指标
func (n *Node) Registry() prometheus.Gatherer {
	return n.gatherer
}

// MetricsAddr /metrics 服务地址，未启用时为 nil
func (n *Node) MetricsAddr() net.Addr {
	if n.metricsServer == nil {
		return nil
	}
	return n.metricsServer.Addr()
}

// ════════════════════════════════════════════════════════════════════════════
//                              网络与发布订阅
// ════════════════════════════════════════════════════════════════════════════

// Dial 拨号到地址
func (n *Node) Dial(ctx context.Context, addr string) (*swarm.Conn, error) {
	if err := n.checkRunning(); err != nil {
		return nil, err
	}
	return n.swarm.Dial(ctx, addr)
}

// Subscribe 订阅主题
func (n *Node) Subscribe(name string) (*floodsub.Subscription, error) {
	t, err := floodsub.NewTopic(name)
	if err != nil {
		return nil, err
	}
	if err := n.checkRunning(); err != nil {
		return nil, err
	}
	return n.pubsub.Subscribe(t)
}

// Publish 发布消息
func (n *Node) Publish(name string, data []byte) error {
	t, err := floodsub.NewTopic(name)
	if err != nil {
		return err
	}
	if err := n.checkRunning(); err != nil {
		return err
	}
	return n.pubsub.Publish(t, data)
}

// DefaultSubscription 默认主题的订阅，Start 之前为 nil
func (n *Node) DefaultSubscription() *floodsub.Subscription {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.defaultSub
}

func (n *Node) checkRunning() error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.closed {
		return ErrNodeClosed
	}
	if !n.started {
		return ErrNotStarted
	}
	return nil
}

// ════════════════════════════════════════════════════════════════════════════
//                              关闭
// ════════════════════════════════════════════════════════════════════════════

// Close 关闭节点
//
// 依次停止指标服务、Swarm（关闭所有连接）、FloodSub 与传输层。
func (n *Node) Close() error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.closed {
		return ErrNodeClosed
	}
	return n.shutdownLocked()
}

func (n *Node) shutdownLocked() error {
	n.closed = true
	if !n.started {
		return nil
	}

	log.Info("正在关闭节点")
	if n.dialCancel != nil {
		n.dialCancel()
		<-n.dialDone
	}

	ctx, cancel := context.WithTimeout(context.Background(), stopTimeout)
	defer cancel()

	err := n.app.Stop(ctx)
	<-n.loopDone
	return err
}
