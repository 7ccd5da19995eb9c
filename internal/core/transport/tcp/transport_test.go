package tcp

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-floodchat/pkg/lib/multiaddr"
)

// TestTransport_CanDial 测试地址匹配
func TestTransport_CanDial(t *testing.T) {
	tr := NewTransport(DefaultConfig())

	cases := map[string][2]bool{
		"/ip4/127.0.0.1/tcp/1":    {true, true},
		"/ip6/::1/tcp/1":          {true, true},
		"/dns4/example.com/tcp/1": {true, false},
		"/ip4/127.0.0.1/tcp/1/ws": {false, false},
		"/ip4/127.0.0.1/udp/1":    {false, false},
		"/ip4/127.0.0.1":          {false, false},
	}
	for s, want := range cases {
		m := multiaddr.StringCast(s)
		assert.Equal(t, want[0], tr.CanDial(m), "dial %s", s)
		assert.Equal(t, want[1], tr.CanListen(m), "listen %s", s)
	}
}

// TestTransport_ListenDial 测试监听端口 0 并拨号互传数据
func TestTransport_ListenDial(t *testing.T) {
	tr := NewTransport(DefaultConfig())
	defer tr.Close()

	l, err := tr.Listen(multiaddr.StringCast("/ip4/127.0.0.1/tcp/0"))
	require.NoError(t, err)
	defer l.Close()

	port, err := l.Multiaddr().ValueForProtocol(multiaddr.P_TCP)
	require.NoError(t, err)
	assert.NotEqual(t, "0", port)

	accepted := make(chan []byte, 1)
	go func() {
		c, err := l.Accept()
		if err != nil {
			return
		}
		defer c.Close()
		buf := make([]byte, 5)
		_, _ = io.ReadFull(c, buf)
		accepted <- buf
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	c, err := tr.Dial(ctx, l.Multiaddr())
	require.NoError(t, err)
	defer c.Close()

	assert.True(t, c.RemoteMultiaddr().Equal(l.Multiaddr()))
	assert.True(t, multiaddr.HasProtocol(c.LocalMultiaddr(), multiaddr.P_IP4))

	_, err = c.Write([]byte("hello"))
	require.NoError(t, err)

	select {
	case got := <-accepted:
		assert.Equal(t, []byte("hello"), got)
	case <-time.After(5 * time.Second):
		t.Fatal("超时")
	}
}

// TestTransport_ListenInUse 测试端口占用
func TestTransport_ListenInUse(t *testing.T) {
	tr := NewTransport(DefaultConfig())
	defer tr.Close()

	l, err := tr.Listen(multiaddr.StringCast("/ip4/127.0.0.1/tcp/0"))
	require.NoError(t, err)

	_, err = tr.Listen(l.Multiaddr())
	assert.Error(t, err)
}

// TestTransport_DialRefused 测试拒绝连接
func TestTransport_DialRefused(t *testing.T) {
	tr := NewTransport(DefaultConfig())

	l, err := tr.Listen(multiaddr.StringCast("/ip4/127.0.0.1/tcp/0"))
	require.NoError(t, err)
	addr := l.Multiaddr()
	require.NoError(t, l.Close())

	_, err = tr.Dial(context.Background(), addr)
	assert.Error(t, err)
}

// TestTransport_Close 测试关闭后不可用
func TestTransport_Close(t *testing.T) {
	tr := NewTransport(DefaultConfig())
	l, err := tr.Listen(multiaddr.StringCast("/ip4/127.0.0.1/tcp/0"))
	require.NoError(t, err)

	require.NoError(t, tr.Close())

	_, err = l.Accept()
	assert.Error(t, err)
	_, err = tr.Listen(multiaddr.StringCast("/ip4/127.0.0.1/tcp/0"))
	assert.ErrorIs(t, err, ErrTransportClosed)
	_, err = tr.Dial(context.Background(), l.Multiaddr())
	assert.ErrorIs(t, err, ErrTransportClosed)
}

// TestTransport_Unsupported 测试不支持的地址
func TestTransport_Unsupported(t *testing.T) {
	tr := NewTransport(DefaultConfig())
	_, err := tr.Listen(multiaddr.StringCast("/ip4/127.0.0.1/tcp/0/ws"))
	assert.ErrorIs(t, err, ErrUnsupportedAddr)
}
