package addrutil

import (
	"net"

	"github.com/dep2p/go-floodchat/pkg/lib/multiaddr"
)

// ============================================================================
//                              IP 类型判断工具
// ============================================================================

// AddrType 地址类别
type AddrType string

const (
	AddrLoopback    AddrType = "loopback"
	AddrPrivate     AddrType = "private"
	AddrPublic      AddrType = "public"
	AddrUnspecified AddrType = "unspecified"
	AddrUnknown     AddrType = "unknown"
)

// ExtractIP 取出地址中的 IP，没有 ip4/ip6 组件时返回 nil
func ExtractIP(addr multiaddr.Multiaddr) net.IP {
	if addr == nil {
		return nil
	}
	for _, code := range []int{multiaddr.P_IP4, multiaddr.P_IP6} {
		if v, err := addr.ValueForProtocol(code); err == nil {
			return net.ParseIP(v)
		}
	}
	return nil
}

// Classify 判断地址类别
func Classify(addr multiaddr.Multiaddr) AddrType {
	ip := ExtractIP(addr)
	switch {
	case ip == nil:
		return AddrUnknown
	case ip.IsUnspecified():
		return AddrUnspecified
	case ip.IsLoopback():
		return AddrLoopback
	case ip.IsPrivate(), ip.IsLinkLocalUnicast():
		return AddrPrivate
	default:
		return AddrPublic
	}
}

// ExpandUnspecified 把 0.0.0.0 / :: 监听地址展开为每个本机 IP 的地址
//
// ifaceAddrs 通常来自 net.InterfaceAddrs()。非通配地址原样返回。
func ExpandUnspecified(addr multiaddr.Multiaddr, ifaceAddrs []net.Addr) []multiaddr.Multiaddr {
	ip := ExtractIP(addr)
	if ip == nil || !ip.IsUnspecified() {
		return []multiaddr.Multiaddr{addr}
	}
	wantV4 := ip.To4() != nil

	// 通配 IP 组件之后的部分（/tcp/4001/ws 等）
	code := multiaddr.P_IP6
	if wantV4 {
		code = multiaddr.P_IP4
	}
	head, err := multiaddr.NewMultiaddr("/" + protoName(code) + "/" + ip.String())
	if err != nil {
		return []multiaddr.Multiaddr{addr}
	}
	rest := trimPrefix(addr, head)

	var out []multiaddr.Multiaddr
	for _, a := range ifaceAddrs {
		ipnet, ok := a.(*net.IPNet)
		if !ok {
			continue
		}
		local := ipnet.IP
		if (local.To4() != nil) != wantV4 {
			continue
		}
		name := "ip6"
		if wantV4 {
			name = "ip4"
			local = local.To4()
		}
		m, err := multiaddr.NewMultiaddr("/" + name + "/" + local.String())
		if err != nil {
			continue
		}
		if rest != nil {
			m = m.Encapsulate(rest)
		}
		out = append(out, m)
	}
	if len(out) == 0 {
		return []multiaddr.Multiaddr{addr}
	}
	return out
}

func protoName(code int) string {
	if p, ok := multiaddr.ProtocolWithCode(code); ok {
		return p.Name
	}
	return ""
}

// trimPrefix 去掉地址开头的 head，剩余为空时返回 nil
func trimPrefix(addr, head multiaddr.Multiaddr) multiaddr.Multiaddr {
	b, h := addr.Bytes(), head.Bytes()
	if len(b) <= len(h) {
		return nil
	}
	rest, err := multiaddr.NewMultiaddrBytes(append([]byte(nil), b[len(h):]...))
	if err != nil {
		return nil
	}
	return rest
}
