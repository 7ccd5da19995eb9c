package multiaddr

import (
	"errors"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-floodchat/pkg/types"
)

const testPeer = "QmYyQSo1c1Ym7orWxLYvCrM2EmxFTANf8wXmmE7DWjhx5N"

// TestNewMultiaddr_RoundTrip 测试文本与二进制往返
func TestNewMultiaddr_RoundTrip(t *testing.T) {
	cases := []string{
		"/ip4/127.0.0.1/tcp/4001",
		"/ip4/0.0.0.0/tcp/0",
		"/ip4/0.0.0.0/tcp/63204/ws",
		"/ip6/::1/tcp/8080",
		"/ip6/fe80::1/tcp/1/wss",
		"/dns4/example.com/tcp/443/ws",
		"/dns/localhost/udp/53",
		"/ip4/10.0.0.1/tcp/4001/p2p/" + testPeer,
	}

	for _, s := range cases {
		t.Run(s, func(t *testing.T) {
			m, err := NewMultiaddr(s)
			require.NoError(t, err)
			assert.Equal(t, s, m.String())

			back, err := NewMultiaddrBytes(m.Bytes())
			require.NoError(t, err)
			assert.True(t, m.Equal(back))
		})
	}
}

// TestNewMultiaddr_Normalize 测试旧名称与尾部斜杠
func TestNewMultiaddr_Normalize(t *testing.T) {
	m, err := NewMultiaddr("/ip4/1.2.3.4/tcp/80/ipfs/" + testPeer + "/")
	require.NoError(t, err)
	assert.Equal(t, "/ip4/1.2.3.4/tcp/80/p2p/"+testPeer, m.String())
}

// TestNewMultiaddr_Invalid 测试解析失败返回 ParseError
func TestNewMultiaddr_Invalid(t *testing.T) {
	cases := map[string]error{
		"":                          ErrInvalidMultiaddr,
		"ip4/1.2.3.4":               ErrInvalidMultiaddr,
		"/":                         ErrInvalidMultiaddr,
		"/ip4":                      ErrMissingValue,
		"/ip4/1.2.3.4/tcp":          ErrMissingValue,
		"/ip4/300.1.1.1/tcp/1":      ErrInvalidValue,
		"/ip4/1.2.3.4/tcp/70000":    ErrInvalidValue,
		"/ip4/1.2.3.4/tcp/abc":      ErrInvalidValue,
		"/ip6/1.2.3.4/tcp/1":        ErrInvalidValue,
		"/foo/bar":                  ErrUnknownProtocol,
		"/ip4/1.2.3.4/tcp/1/p2p/xx": ErrInvalidValue,
	}

	for in, want := range cases {
		_, err := NewMultiaddr(in)
		require.Error(t, err, in)

		var perr *ParseError
		require.True(t, errors.As(err, &perr), in)
		assert.Equal(t, in, perr.Input)
		assert.ErrorIs(t, err, want, in)
		assert.ErrorIs(t, err, ErrInvalidMultiaddr, in)
	}
}

// TestNewMultiaddrBytes_Invalid 测试截断的二进制
func TestNewMultiaddrBytes_Invalid(t *testing.T) {
	m := StringCast("/ip4/127.0.0.1/tcp/4001")
	b := m.Bytes()

	_, err := NewMultiaddrBytes(b[:len(b)-1])
	var perr *ParseError
	assert.True(t, errors.As(err, &perr))

	_, err = NewMultiaddrBytes([]byte{0xff, 0xff, 0xff, 0x0f})
	assert.ErrorIs(t, err, ErrUnknownProtocol)

	_, err = NewMultiaddrBytes(nil)
	assert.ErrorIs(t, err, ErrInvalidMultiaddr)
}

// TestMultiaddr_ValueForProtocol 测试按协议取值
func TestMultiaddr_ValueForProtocol(t *testing.T) {
	m := StringCast("/ip4/192.168.1.7/tcp/4001/ws")

	v, err := m.ValueForProtocol(P_IP4)
	require.NoError(t, err)
	assert.Equal(t, "192.168.1.7", v)

	v, err = m.ValueForProtocol(P_TCP)
	require.NoError(t, err)
	assert.Equal(t, "4001", v)

	v, err = m.ValueForProtocol(P_WS)
	require.NoError(t, err)
	assert.Empty(t, v)

	_, err = m.ValueForProtocol(P_UDP)
	assert.Error(t, err)

	assert.Equal(t, []string{"ip4", "tcp", "ws"}, ProtocolNames(m))
}

// TestMultiaddr_EncapsulateDecapsulate 测试封装与解封装
func TestMultiaddr_EncapsulateDecapsulate(t *testing.T) {
	base := StringCast("/ip4/127.0.0.1/tcp/4001")
	ws := StringCast("/ws")

	full := base.Encapsulate(ws)
	assert.Equal(t, "/ip4/127.0.0.1/tcp/4001/ws", full.String())
	assert.True(t, full.Decapsulate(ws).Equal(base))
	assert.Equal(t, "/ip4/127.0.0.1", full.Decapsulate(StringCast("/tcp/4001")).String())
	assert.Nil(t, full.Decapsulate(StringCast("/ip4/127.0.0.1")))
	assert.True(t, full.Decapsulate(StringCast("/udp/1")).Equal(full))
}

// TestSplitPeer 测试拆出 /p2p
func TestSplitPeer(t *testing.T) {
	m := StringCast("/ip4/127.0.0.1/tcp/4001/p2p/" + testPeer)

	transport, id := SplitPeer(m)
	assert.Equal(t, "/ip4/127.0.0.1/tcp/4001", transport.String())
	want, err := types.ParsePeerID(testPeer)
	require.NoError(t, err)
	assert.Equal(t, want, id)

	plain := StringCast("/ip4/127.0.0.1/tcp/4001")
	transport, id = SplitPeer(plain)
	assert.True(t, transport.Equal(plain))
	assert.True(t, id.IsEmpty())

	transport, id = SplitPeer(StringCast("/p2p/" + testPeer))
	assert.Nil(t, transport)
	assert.Equal(t, want, id)
}

// TestDialArgs 测试转换为拨号参数
func TestDialArgs(t *testing.T) {
	cases := []struct {
		in, network, hostport string
	}{
		{"/ip4/127.0.0.1/tcp/4001", "tcp4", "127.0.0.1:4001"},
		{"/ip6/::1/tcp/80/ws", "tcp6", "[::1]:80"},
		{"/dns4/example.com/tcp/443", "tcp4", "example.com:443"},
		{"/dns/example.com/tcp/443", "tcp", "example.com:443"},
	}
	for _, c := range cases {
		network, hostport, err := DialArgs(StringCast(c.in))
		require.NoError(t, err, c.in)
		assert.Equal(t, c.network, network)
		assert.Equal(t, c.hostport, hostport)
	}

	_, _, err := DialArgs(StringCast("/ip4/127.0.0.1/udp/53"))
	assert.ErrorIs(t, err, ErrNotThinWaist)
}

// TestFromNetAddr 测试从 net.Addr 转换
func TestFromNetAddr(t *testing.T) {
	m, err := FromNetAddr(&net.TCPAddr{IP: net.ParseIP("127.0.0.1"), Port: 9000})
	require.NoError(t, err)
	assert.Equal(t, "/ip4/127.0.0.1/tcp/9000", m.String())

	m, err = FromNetAddr(&net.TCPAddr{IP: net.IPv6loopback, Port: 1})
	require.NoError(t, err)
	assert.Equal(t, "/ip6/::1/tcp/1", m.String())

	_, err = FromNetAddr(nil)
	assert.ErrorIs(t, err, ErrNotThinWaist)
}
