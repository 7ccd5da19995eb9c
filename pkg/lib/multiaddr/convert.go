package multiaddr

import (
	"fmt"
	"net"
	"strconv"
)

// FromNetAddr 把 TCP 网络地址转为 /ip4|ip6/.../tcp/...
func FromNetAddr(a net.Addr) (Multiaddr, error) {
	switch v := a.(type) {
	case *net.TCPAddr:
		return FromIPPort(v.IP, v.Port)
	case nil:
		return nil, fmt.Errorf("%w: nil net.Addr", ErrNotThinWaist)
	}
	host, port, err := net.SplitHostPort(a.String())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotThinWaist, err)
	}
	p, err := strconv.Atoi(port)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotThinWaist, err)
	}
	ip := net.ParseIP(host)
	if ip == nil {
		return nil, fmt.Errorf("%w: host %q", ErrNotThinWaist, host)
	}
	return FromIPPort(ip, p)
}

// FromIPPort 由 IP 与端口构造 TCP 地址
func FromIPPort(ip net.IP, port int) (Multiaddr, error) {
	if ip4 := ip.To4(); ip4 != nil {
		return NewMultiaddr(fmt.Sprintf("/ip4/%s/tcp/%d", ip4, port))
	}
	if ip.To16() != nil {
		return NewMultiaddr(fmt.Sprintf("/ip6/%s/tcp/%d", ip, port))
	}
	return nil, fmt.Errorf("%w: ip %v", ErrNotThinWaist, ip)
}

// DialArgs 返回 net.Dial 所需的网络类型与 host:port
//
// 只看前两个组件，后续组件（/ws、/p2p）由调用方处理。
func DialArgs(m Multiaddr) (network, hostport string, err error) {
	if m == nil {
		return "", "", ErrNotThinWaist
	}
	ps := m.Protocols()
	if len(ps) < 2 || ps[1].Code != P_TCP {
		return "", "", fmt.Errorf("%w: %s", ErrNotThinWaist, m)
	}

	host, err := m.ValueForProtocol(ps[0].Code)
	if err != nil {
		return "", "", err
	}
	port, err := m.ValueForProtocol(P_TCP)
	if err != nil {
		return "", "", err
	}

	switch ps[0].Code {
	case P_IP4, P_DNS4:
		network = "tcp4"
	case P_IP6, P_DNS6:
		network = "tcp6"
	case P_DNS:
		network = "tcp"
	default:
		return "", "", fmt.Errorf("%w: %s", ErrNotThinWaist, m)
	}
	return network, net.JoinHostPort(host, port), nil
}
