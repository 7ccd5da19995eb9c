package multiaddr

import "github.com/dep2p/go-floodchat/pkg/types"

// HasProtocol 地址中是否包含指定协议
func HasProtocol(m Multiaddr, code int) bool {
	if m == nil {
		return false
	}
	for _, p := range m.Protocols() {
		if p.Code == code {
			return true
		}
	}
	return false
}

// SplitPeer 拆出末尾的 /p2p/<id>
//
// 没有 /p2p 组件时原样返回地址和空 PeerID。
// 地址只有 /p2p 组件时返回 nil 传输地址。
func SplitPeer(m Multiaddr) (Multiaddr, types.PeerID) {
	if m == nil {
		return nil, ""
	}
	ma, ok := m.(*multiaddr)
	if !ok {
		var err error
		if ma, err = newFromBytes(m.Bytes()); err != nil {
			return m, ""
		}
	}

	last := ma.comps[len(ma.comps)-1]
	if last.proto.Code != P_P2P {
		return m, ""
	}
	id := types.PeerID(last.value)

	rest := ma.bytes[:len(ma.bytes)-len(last.raw)]
	if len(rest) == 0 {
		return nil, id
	}
	transport, err := newFromBytes(append([]byte(nil), rest...))
	if err != nil {
		return m, ""
	}
	return transport, id
}

// ProtocolNames 返回协议名称序列，便于日志与匹配
func ProtocolNames(m Multiaddr) []string {
	if m == nil {
		return nil
	}
	ps := m.Protocols()
	names := make([]string, len(ps))
	for i, p := range ps {
		names[i] = p.Name
	}
	return names
}
