package floodchat

import (
	"bytes"
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-floodchat/config"
	"github.com/dep2p/go-floodchat/pkg/lib/multiaddr"
)

func startTestNode(t *testing.T, opts ...Option) *Node {
	t.Helper()

	base := []Option{
		WithListenAddrs("/ip4/127.0.0.1/tcp/0"),
	}
	n, err := New(append(base, opts...)...)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	require.NoError(t, n.Start(ctx))

	t.Cleanup(func() { _ = n.Close() })
	return n
}

func addrOf(t *testing.T, n *Node) string {
	t.Helper()
	addrs := n.ListenAddrs()
	require.NotEmpty(t, addrs)
	return addrs[0].String()
}

func waitPeerCount(t *testing.T, n *Node, want int) {
	t.Helper()
	require.Eventually(t, func() bool { return n.PeerCount() == want }, 5*time.Second, 10*time.Millisecond)
}

func nextData(t *testing.T, n *Node) []byte {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	m, err := n.DefaultSubscription().Next(ctx)
	require.NoError(t, err)
	return m.Data
}

// TestNode_Lifecycle 测试启动与关闭状态
func TestNode_Lifecycle(t *testing.T) {
	n, err := New(WithListenAddrs("/ip4/127.0.0.1/tcp/0"))
	require.NoError(t, err)

	assert.NoError(t, n.ID().Validate())
	assert.Nil(t, n.DefaultSubscription())
	assert.ErrorIs(t, n.Publish(config.DefaultTopic, []byte("x")), ErrNotStarted)

	require.NoError(t, n.Start(context.Background()))
	assert.ErrorIs(t, n.Start(context.Background()), ErrAlreadyStarted)
	assert.Len(t, n.ListenAddrs(), 1)
	full := n.FullAddrs()
	require.Len(t, full, 1)
	dial, id := multiaddr.SplitPeer(full[0])
	assert.Equal(t, n.ID(), id)
	assert.True(t, dial.Equal(n.ListenAddrs()[0]))
	require.NotNil(t, n.DefaultSubscription())
	assert.Equal(t, config.DefaultTopic, n.Topic().String())
	assert.Equal(t, config.DefaultTopic, n.DefaultSubscription().Topic().String())

	require.NoError(t, n.Close())
	assert.ErrorIs(t, n.Close(), ErrNodeClosed)
	assert.ErrorIs(t, n.Start(context.Background()), ErrNodeClosed)
	_, err = n.Dial(context.Background(), "/ip4/127.0.0.1/tcp/1")
	assert.ErrorIs(t, err, ErrNodeClosed)
}

// TestNode_InvalidAddress 测试地址错误在构造时返回
func TestNode_InvalidAddress(t *testing.T) {
	_, err := New(WithPeers("/ip4/127.0.0.1/tcp/not-a-port"))
	var perr *multiaddr.ParseError
	require.ErrorAs(t, err, &perr)

	_, err = New(WithListenAddrs("garbage"))
	require.ErrorAs(t, err, &perr)

	_, err = New(WithTopic(""))
	assert.Error(t, err)
}

// TestNode_ListenFailure 测试监听失败时启动报错
func TestNode_ListenFailure(t *testing.T) {
	n, err := New(WithListenAddrs("/ip4/127.0.0.1/udp/0"))
	require.NoError(t, err)

	err = n.Start(context.Background())
	var lerr *ListenError
	require.ErrorAs(t, err, &lerr)
	assert.ErrorIs(t, err, ErrNoTransport)
	assert.ErrorIs(t, n.Close(), ErrNodeClosed)
}

// TestNode_UnreachablePeerNotFatal 测试启动拨号失败不影响启动
func TestNode_UnreachablePeerNotFatal(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	closed := multiaddr.StringCast("/ip4/127.0.0.1/tcp/" + portOf(t, ln))
	require.NoError(t, ln.Close())

	n := startTestNode(t, WithPeers(closed.String()))
	assert.Empty(t, n.Conns())
}

// TestNode_StartDoesNotWaitForDials 测试启动不等待拨号，关闭会取消拨号
func TestNode_StartDoesNotWaitForDials(t *testing.T) {
	// 只接受 TCP 连接、从不应答 HTTP 升级，WebSocket 拨号会一直挂起
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	accepted := make(chan net.Conn, 16)
	go func() {
		defer close(accepted)
		for {
			c, err := ln.Accept()
			if err != nil {
				return
			}
			accepted <- c
		}
	}()
	t.Cleanup(func() {
		_ = ln.Close()
		for c := range accepted {
			_ = c.Close()
		}
	})
	stalled := "/ip4/127.0.0.1/tcp/" + portOf(t, ln) + "/ws"

	n, err := New(WithListenAddrs("/ip4/127.0.0.1/tcp/0"), WithPeers(stalled))
	require.NoError(t, err)

	begin := time.Now()
	require.NoError(t, n.Start(context.Background()))
	assert.Less(t, time.Since(begin), 2*time.Second)

	// 拨号进行中其他调用不被阻塞
	assert.Len(t, n.ListenAddrs(), 1)
	assert.NotNil(t, n.DefaultSubscription())
	assert.NoError(t, n.Publish(config.DefaultTopic, []byte("early")))

	begin = time.Now()
	require.NoError(t, n.Close())
	assert.Less(t, time.Since(begin), 5*time.Second)
}

func portOf(t *testing.T, ln net.Listener) string {
	t.Helper()
	_, port, err := net.SplitHostPort(ln.Addr().String())
	require.NoError(t, err)
	return port
}

// TestNode_ChainRelay 测试 A-B-C 链上消息经 B 到达 A
func TestNode_ChainRelay(t *testing.T) {
	a := startTestNode(t)
	b := startTestNode(t, WithPeers(addrOf(t, a)))
	c := startTestNode(t, WithPeers(addrOf(t, b)))

	waitPeerCount(t, a, 1)
	waitPeerCount(t, b, 2)
	waitPeerCount(t, c, 1)

	require.NoError(t, c.Publish(config.DefaultTopic, []byte("hello from c")))

	assert.Equal(t, []byte("hello from c"), nextData(t, b))
	assert.Equal(t, []byte("hello from c"), nextData(t, a))

	mfs, err := c.Registry().Gather()
	require.NoError(t, err)
	var found bool
	for _, mf := range mfs {
		if mf.GetName() == "floodchat_floodsub_published_total" {
			found = true
			assert.Equal(t, float64(1), mf.GetMetric()[0].GetCounter().GetValue())
		}
	}
	assert.True(t, found)
}

// TestNode_DialAtRuntime 测试启动后手动拨号
func TestNode_DialAtRuntime(t *testing.T) {
	a := startTestNode(t)
	b := startTestNode(t)

	conn, err := b.Dial(context.Background(), addrOf(t, a)+"/p2p/"+a.ID().String())
	require.NoError(t, err)
	assert.NotEmpty(t, conn.ID())

	waitPeerCount(t, a, 1)
	waitPeerCount(t, b, 1)
	assert.Len(t, b.Conns(), 1)

	require.NoError(t, a.Publish(config.DefaultTopic, []byte("ping")))
	assert.Equal(t, []byte("ping"), nextData(t, b))

	// 空负载同样端到端送达
	require.NoError(t, a.Publish(config.DefaultTopic, []byte{}))
	assert.Empty(t, nextData(t, b))

	_, err = b.Dial(context.Background(), "/ip4/300.0.0.1/tcp/1")
	var perr *multiaddr.ParseError
	assert.ErrorAs(t, err, &perr)
}

// TestNode_MessageTooLarge 测试默认上限拒绝 10MB 消息，调大上限后可以发送
func TestNode_MessageTooLarge(t *testing.T) {
	big := bytes.Repeat([]byte{'z'}, 10<<20)

	a := startTestNode(t)
	err := a.Publish(config.DefaultTopic, big)
	assert.True(t, errors.Is(err, ErrMessageTooLarge))

	limit := WithMaxMessageSize(16 << 20)
	x := startTestNode(t, limit)
	y := startTestNode(t, limit, WithPeers(addrOf(t, x)))
	waitPeerCount(t, x, 1)
	waitPeerCount(t, y, 1)

	require.NoError(t, y.Publish(config.DefaultTopic, big))
	assert.Equal(t, big, nextData(t, x))
}

// TestNode_Subscribe 测试额外主题
func TestNode_Subscribe(t *testing.T) {
	a := startTestNode(t)
	b := startTestNode(t, WithPeers(addrOf(t, a)))
	waitPeerCount(t, a, 1)

	sub, err := a.Subscribe("other")
	require.NoError(t, err)

	_, err = a.Subscribe("")
	assert.ErrorIs(t, err, ErrInvalidTopic)

	require.NoError(t, b.Publish("other", []byte("side channel")))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	m, err := sub.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, "side channel", string(m.Data))
	assert.Equal(t, b.ID(), m.From)
}

// TestNode_MetricsServer 测试 /metrics 服务地址
func TestNode_MetricsServer(t *testing.T) {
	n := startTestNode(t, WithMetricsAddr("127.0.0.1:0"))
	require.NotNil(t, n.MetricsAddr())

	plain := startTestNode(t)
	assert.Nil(t, plain.MetricsAddr())
}

// TestErrors_Reexported 测试根包错误与内部错误一致
func TestErrors_Reexported(t *testing.T) {
	var err error = &NegotiationError{Err: errors.New("eof")}
	assert.ErrorIs(t, err, ErrNegotiationFailed)

	_, err = multiaddr.NewMultiaddr("bad")
	var perr *ParseError
	assert.ErrorAs(t, err, &perr)

	err = &DialError{Err: ErrNoTransport}
	assert.ErrorIs(t, err, ErrNoTransport)
}
