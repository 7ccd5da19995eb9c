package floodsub

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-floodchat/pkg/protocolids"
	"github.com/dep2p/go-floodchat/pkg/types"
)

var peerSeq atomic.Int64

var testTopic = MustTopic("workshop-chapter2-topic")

func newTestPeerID(t *testing.T) types.PeerID {
	t.Helper()
	id, err := types.PeerIDFromPublicKey([]byte(fmt.Sprintf("test-key-%d", peerSeq.Add(1))))
	require.NoError(t, err)
	return id
}

func newTestService(t *testing.T, opts ...Option) *Service {
	t.Helper()
	svc, err := New(newTestPeerID(t), opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = svc.Close() })
	return svc
}

// connect 用内存管道连接两个引擎
func connect(t *testing.T, a, b *Service) {
	t.Helper()

	ca, cb := net.Pipe()
	ctx, cancel := context.WithCancel(context.Background())

	oa, err := a.Handler().Upgrade(ctx, ca, types.DirOutbound)
	require.NoError(t, err)
	ob, err := b.Handler().Upgrade(ctx, cb, types.DirInbound)
	require.NoError(t, err)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() { defer wg.Done(); _ = oa.Serve(ctx) }()
	go func() { defer wg.Done(); _ = ob.Serve(ctx) }()

	t.Cleanup(func() {
		cancel()
		wg.Wait()
	})
}

func waitPeers(t *testing.T, svc *Service, n int) {
	t.Helper()
	require.Eventually(t, func() bool { return svc.PeerCount() == n }, 2*time.Second, 5*time.Millisecond)
}

func nextMessage(t *testing.T, sub *Subscription) *Message {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	m, err := sub.Next(ctx)
	require.NoError(t, err)
	return m
}

func assertNoMessage(t *testing.T, sub *Subscription) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	m, err := sub.Next(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded, "unexpected message %v", m)
}

// rawPeer 直接读写帧的对端
type rawPeer struct {
	conn net.Conn
	br   *bufio.Reader
}

func attachRaw(t *testing.T, svc *Service) *rawPeer {
	t.Helper()

	local, remote := net.Pipe()
	ctx, cancel := context.WithCancel(context.Background())

	out, err := svc.Handler().Upgrade(ctx, local, types.DirInbound)
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = out.Serve(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		remote.Close()
		<-done
	})
	return &rawPeer{conn: remote, br: bufio.NewReader(remote)}
}

func (p *rawPeer) send(t *testing.T, body []byte) {
	t.Helper()
	require.NoError(t, p.conn.SetWriteDeadline(time.Now().Add(2*time.Second)))
	require.NoError(t, writeFrame(p.conn, body))
}

func (p *rawPeer) recv(t *testing.T, wait time.Duration) (*rpc, error) {
	t.Helper()
	require.NoError(t, p.conn.SetReadDeadline(time.Now().Add(wait)))
	body, err := readFrame(p.br, 1<<20)
	if err != nil {
		return nil, err
	}
	return decodeRPC(body)
}

// eventLog 收集引擎事件
type eventLog struct {
	ch chan Event
}

func newEventLog() *eventLog {
	return &eventLog{ch: make(chan Event, 256)}
}

func (l *eventLog) handle(e Event) {
	select {
	case l.ch <- e:
	default:
	}
}

func (l *eventLog) wait(t *testing.T, typ EventType) Event {
	t.Helper()
	timeout := time.After(2 * time.Second)
	for {
		select {
		case e := <-l.ch:
			if e.Type == typ {
				return e
			}
		case <-timeout:
			t.Fatalf("等待 %s 事件超时", typ)
		}
	}
}

// TestNew 测试创建参数
func TestNew(t *testing.T) {
	_, err := New("")
	assert.ErrorIs(t, err, types.ErrEmptyPeerID)

	svc := newTestService(t)
	assert.Equal(t, protocolids.FloodSub, svc.Handler().ID())
	assert.Equal(t, DefaultConfig(), svc.cfg)
}

// TestService_PublishDeliver 测试直连对端收到消息
func TestService_PublishDeliver(t *testing.T) {
	mock := clock.NewMock()
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	mock.Set(at)

	a := newTestService(t)
	b := newTestService(t, WithClock(mock))

	sub, err := b.Subscribe(testTopic)
	require.NoError(t, err)
	assert.Equal(t, testTopic, sub.Topic())

	connect(t, a, b)
	waitPeers(t, a, 1)
	require.Eventually(t, func() bool { return a.TopicPeerCount(testTopic) == 1 }, 2*time.Second, 5*time.Millisecond)

	require.NoError(t, a.Publish(testTopic, []byte("hello")))

	m := nextMessage(t, sub)
	assert.Equal(t, []byte("hello"), m.Data)
	assert.Equal(t, a.LocalPeer(), m.From)
	assert.Equal(t, testTopic.String(), m.Topic)
	assert.Equal(t, at, m.ReceivedAt)
	assert.NotEmpty(t, m.ReceivedFrom)
}

// TestService_NoLocalEcho 测试发布者自己的订阅不收到消息
func TestService_NoLocalEcho(t *testing.T) {
	a := newTestService(t)
	b := newTestService(t)

	sub, err := a.Subscribe(testTopic)
	require.NoError(t, err)

	connect(t, a, b)
	waitPeers(t, a, 1)

	require.NoError(t, a.Publish(testTopic, []byte("mine")))
	assertNoMessage(t, sub)
}

// TestService_PublishWithoutPeers 测试没有对端时发布不报错
func TestService_PublishWithoutPeers(t *testing.T) {
	a := newTestService(t)
	assert.NoError(t, a.Publish(testTopic, []byte("alone")))
	assert.ErrorIs(t, a.Publish(Topic{}, []byte("x")), ErrInvalidTopic)
}

// TestService_RelayChain 测试 A-B-C 链上 C 收到 A 的消息，B 未订阅也转发
func TestService_RelayChain(t *testing.T) {
	a := newTestService(t)
	b := newTestService(t)
	c := newTestService(t)

	subC, err := c.Subscribe(testTopic)
	require.NoError(t, err)

	connect(t, a, b)
	connect(t, b, c)
	waitPeers(t, b, 2)
	waitPeers(t, c, 1)

	require.NoError(t, a.Publish(testTopic, []byte("via b")))

	m := nextMessage(t, subC)
	assert.Equal(t, []byte("via b"), m.Data)
	assert.Equal(t, a.LocalPeer(), m.From)
	assertNoMessage(t, subC)
}

// TestService_TriangleDedup 测试环路中每条消息只投递一次
func TestService_TriangleDedup(t *testing.T) {
	a := newTestService(t)
	b := newTestService(t)
	c := newTestService(t)

	subB, err := b.Subscribe(testTopic)
	require.NoError(t, err)
	subC, err := c.Subscribe(testTopic)
	require.NoError(t, err)

	connect(t, a, b)
	connect(t, b, c)
	connect(t, c, a)
	for _, s := range []*Service{a, b, c} {
		waitPeers(t, s, 2)
	}

	for i := 0; i < 5; i++ {
		require.NoError(t, a.Publish(testTopic, []byte(fmt.Sprintf("m%d", i))))
	}

	for _, sub := range []*Subscription{subB, subC} {
		got := make(map[string]int)
		for i := 0; i < 5; i++ {
			got[string(nextMessage(t, sub).Data)]++
		}
		for i := 0; i < 5; i++ {
			assert.Equal(t, 1, got[fmt.Sprintf("m%d", i)])
		}
		assertNoMessage(t, sub)
	}
}

// TestService_PublishTooLarge 测试超限发布被拒绝
func TestService_PublishTooLarge(t *testing.T) {
	a := newTestService(t, WithMaxMessageSize(128))

	err := a.Publish(testTopic, make([]byte, 200))
	assert.ErrorIs(t, err, ErrMessageTooLarge)

	assert.NoError(t, a.Publish(testTopic, make([]byte, 16)))
}

// TestService_HelloListsSubscriptions 测试会话建立时先发送本地订阅
func TestService_HelloListsSubscriptions(t *testing.T) {
	a := newTestService(t)
	_, err := a.Subscribe(MustTopic("b-topic"))
	require.NoError(t, err)
	_, err = a.Subscribe(MustTopic("a-topic"))
	require.NoError(t, err)
	// 重复订阅不重复广播
	_, err = a.Subscribe(MustTopic("a-topic"))
	require.NoError(t, err)
	assert.Equal(t, []string{"a-topic", "b-topic"}, a.Topics())

	p := attachRaw(t, a)
	r, err := p.recv(t, 2*time.Second)
	require.NoError(t, err)
	assert.Equal(t, []subOpts{
		{subscribe: true, topic: "a-topic"},
		{subscribe: true, topic: "b-topic"},
	}, r.subs)

	// 之后的新订阅单独广播
	_, err = a.Subscribe(MustTopic("c-topic"))
	require.NoError(t, err)
	r, err = p.recv(t, 2*time.Second)
	require.NoError(t, err)
	assert.Equal(t, []subOpts{{subscribe: true, topic: "c-topic"}}, r.subs)
}

// TestService_MalformedFrameKeepsSession 测试无效帧被丢弃而连接保留
func TestService_MalformedFrameKeepsSession(t *testing.T) {
	events := newEventLog()
	a := newTestService(t, WithEventHandler(events.handle), WithMaxMessageSize(128))
	sub, err := a.Subscribe(testTopic)
	require.NoError(t, err)

	p := attachRaw(t, a)
	waitPeers(t, a, 1)
	_, err = p.recv(t, 2*time.Second) // hello
	require.NoError(t, err)

	p.send(t, []byte{0xff, 0xff})
	e := events.wait(t, EvtMalformedFrame)
	assert.ErrorIs(t, e.Err, ErrMalformedFrame)

	p.send(t, make([]byte, 200))
	e = events.wait(t, EvtMalformedFrame)
	assert.ErrorIs(t, e.Err, ErrMessageTooLarge)

	from := newTestPeerID(t)
	msg := encodeRPC(nil, encodeMessage(from.Bytes(), []byte("still here"), 7, []string{testTopic.String()}))
	p.send(t, msg)

	m := nextMessage(t, sub)
	assert.Equal(t, []byte("still here"), m.Data)
	assert.Equal(t, from, m.From)
	assert.Equal(t, uint64(7), m.Seqno)
	assert.Equal(t, 1, a.PeerCount())
}

// TestService_DuplicateDropped 测试同一 (from, seqno) 只投递一次
func TestService_DuplicateDropped(t *testing.T) {
	a := newTestService(t)
	sub, err := a.Subscribe(testTopic)
	require.NoError(t, err)

	p := attachRaw(t, a)
	waitPeers(t, a, 1)
	_, err = p.recv(t, 2*time.Second)
	require.NoError(t, err)

	msg := encodeRPC(nil, encodeMessage([]byte("origin"), []byte("once"), 1, []string{testTopic.String()}))
	p.send(t, msg)
	p.send(t, msg)

	assert.Equal(t, []byte("once"), nextMessage(t, sub).Data)
	assertNoMessage(t, sub)
}

// TestService_RepeatedTopicDeliveredOnce 测试主题重复的消息只投递一次
func TestService_RepeatedTopicDeliveredOnce(t *testing.T) {
	a := newTestService(t)
	sub, err := a.Subscribe(testTopic)
	require.NoError(t, err)

	p := attachRaw(t, a)
	waitPeers(t, a, 1)
	_, err = p.recv(t, 2*time.Second)
	require.NoError(t, err)

	topics := []string{testTopic.String(), testTopic.String()}
	p.send(t, encodeRPC(nil, encodeMessage([]byte("origin"), []byte("x"), 7, topics)))

	m := nextMessage(t, sub)
	assert.Equal(t, []byte("x"), m.Data)
	assert.Equal(t, uint64(7), m.Seqno)
	assertNoMessage(t, sub)
}

// TestService_EmptyPayload 测试空负载端到端投递
func TestService_EmptyPayload(t *testing.T) {
	a := newTestService(t)
	b := newTestService(t)
	sub, err := b.Subscribe(testTopic)
	require.NoError(t, err)

	connect(t, a, b)
	waitPeers(t, a, 1)

	require.NoError(t, a.Publish(testTopic, []byte{}))

	m := nextMessage(t, sub)
	assert.Empty(t, m.Data)
	assert.Equal(t, a.LocalPeer(), m.From)
}

// TestService_RelayOriginalBytes 测试转发原样发送消息字节且不回发来源
func TestService_RelayOriginalBytes(t *testing.T) {
	a := newTestService(t)
	src := attachRaw(t, a)
	dst := attachRaw(t, a)
	waitPeers(t, a, 2)

	var msg []byte
	msg = encodeMessage([]byte("origin"), []byte("payload"), 9, []string{"other-topic"})
	// 附加一个未知字段，转发后仍应保留
	msg = append(msg, 0x28, 0x01)
	src.send(t, encodeRPC(nil, msg))

	r, err := dst.recv(t, 2*time.Second)
	require.NoError(t, err)
	require.Len(t, r.publish, 1)
	assert.Equal(t, msg, r.publish[0].raw)

	_, err = src.recv(t, 200*time.Millisecond)
	assert.Error(t, err)
}

// TestService_SubscriptionFilter 测试开启过滤后只转发给订阅者
func TestService_SubscriptionFilter(t *testing.T) {
	a := newTestService(t, WithSubscriptionFilter(true))
	p := attachRaw(t, a)
	waitPeers(t, a, 1)

	require.NoError(t, a.Publish(testTopic, []byte("filtered")))
	_, err := p.recv(t, 200*time.Millisecond)
	require.Error(t, err)

	p.send(t, encodeRPC([]subOpts{{subscribe: true, topic: testTopic.String()}}))
	require.Eventually(t, func() bool { return a.TopicPeerCount(testTopic) == 1 }, 2*time.Second, 5*time.Millisecond)

	require.NoError(t, a.Publish(testTopic, []byte("delivered")))
	r, err := p.recv(t, 2*time.Second)
	require.NoError(t, err)
	require.Len(t, r.publish, 1)
	assert.Equal(t, []byte("delivered"), r.publish[0].data)
}

// TestService_SlowPeerDropsFrames 测试不读数据的对端不阻塞发布
func TestService_SlowPeerDropsFrames(t *testing.T) {
	events := newEventLog()
	a := newTestService(t, WithOutboundQueueSize(1), WithEventHandler(events.handle))
	attachRaw(t, a) // 从不读取
	waitPeers(t, a, 1)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 20; i++ {
			_ = a.Publish(testTopic, []byte("x"))
		}
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("发布被慢连接阻塞")
	}
	events.wait(t, EvtOutboundDropped)
}

// TestService_PeerEvents 测试会话与订阅事件
func TestService_PeerEvents(t *testing.T) {
	events := newEventLog()
	a := newTestService(t, WithEventHandler(events.handle))
	p := attachRaw(t, a)

	events.wait(t, EvtPeerJoined)

	p.send(t, encodeRPC([]subOpts{{subscribe: true, topic: "t"}}))
	e := events.wait(t, EvtPeerSubscribed)
	assert.Equal(t, "t", e.Topic)

	p.send(t, encodeRPC([]subOpts{{subscribe: false, topic: "t"}}))
	events.wait(t, EvtPeerUnsubscribed)
	assert.Equal(t, 0, a.TopicPeerCount(MustTopic("t")))

	require.NoError(t, p.conn.Close())
	events.wait(t, EvtPeerLeft)
	waitPeers(t, a, 0)
}

// TestService_Close 测试关闭后的行为
func TestService_Close(t *testing.T) {
	a := newTestService(t)
	b := newTestService(t)
	sub, err := a.Subscribe(testTopic)
	require.NoError(t, err)

	connect(t, a, b)
	waitPeers(t, a, 1)

	require.NoError(t, a.Close())
	waitPeers(t, b, 0)

	_, err = sub.Next(context.Background())
	assert.ErrorIs(t, err, ErrClosed)

	_, err = a.Subscribe(testTopic)
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, a.Publish(testTopic, []byte("x")), ErrClosed)
	assert.ErrorIs(t, a.Close(), ErrClosed)

	_, err = a.Handler().Upgrade(context.Background(), nil, types.DirInbound)
	assert.ErrorIs(t, err, ErrClosed)
}

// TestSubscription_BufferFull 测试订阅缓冲满时丢弃
func TestSubscription_BufferFull(t *testing.T) {
	a := newTestService(t, WithSubscriptionBufferSize(1))
	sub, err := a.Subscribe(testTopic)
	require.NoError(t, err)

	p := attachRaw(t, a)
	waitPeers(t, a, 1)
	_, err = p.recv(t, 2*time.Second)
	require.NoError(t, err)

	for i := uint64(1); i <= 3; i++ {
		p.send(t, encodeRPC(nil, encodeMessage([]byte("o"), []byte{byte(i)}, i, []string{testTopic.String()})))
	}
	// 空帧读出时前面的消息都已处理完
	p.send(t, nil)

	assert.Equal(t, []byte{1}, nextMessage(t, sub).Data)
	assertNoMessage(t, sub)
}
