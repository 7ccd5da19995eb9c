package multiaddr

import "github.com/multiformats/go-varint"

// 协议代码（multicodec）
const (
	P_IP4  = 0x0004
	P_TCP  = 0x0006
	P_IP6  = 0x0029
	P_DNS  = 0x0035
	P_DNS4 = 0x0036
	P_DNS6 = 0x0037
	P_UDP  = 0x0111
	P_P2P  = 0x01A5
	P_WS   = 0x01DD
	P_WSS  = 0x01DE
)

// LengthPrefixedVarSize 表示值为变长，带 varint 长度前缀
const LengthPrefixedVarSize = -1

// Protocol 描述一个地址协议
type Protocol struct {
	// Name 文本形式中的名称
	Name string

	// Code multicodec 代码
	Code int

	// VCode Code 的 varint 编码
	VCode []byte

	// Size 值的位数；0 表示无值，LengthPrefixedVarSize 表示变长
	Size int

	// Transcoder 值的编解码器，Size 为 0 时为 nil
	Transcoder Transcoder
}

// String 返回协议名称
func (p Protocol) String() string {
	return p.Name
}

func newProtocol(name string, code, size int, t Transcoder) Protocol {
	return Protocol{
		Name:       name,
		Code:       code,
		VCode:      varint.ToUvarint(uint64(code)),
		Size:       size,
		Transcoder: t,
	}
}

var (
	protocols = []Protocol{
		newProtocol("ip4", P_IP4, 32, transcoderIP4),
		newProtocol("tcp", P_TCP, 16, transcoderPort),
		newProtocol("ip6", P_IP6, 128, transcoderIP6),
		newProtocol("dns", P_DNS, LengthPrefixedVarSize, transcoderDNS),
		newProtocol("dns4", P_DNS4, LengthPrefixedVarSize, transcoderDNS),
		newProtocol("dns6", P_DNS6, LengthPrefixedVarSize, transcoderDNS),
		newProtocol("udp", P_UDP, 16, transcoderPort),
		newProtocol("p2p", P_P2P, LengthPrefixedVarSize, transcoderP2P),
		newProtocol("ws", P_WS, 0, nil),
		newProtocol("wss", P_WSS, 0, nil),
	}

	protocolsByName = make(map[string]Protocol, len(protocols))
	protocolsByCode = make(map[int]Protocol, len(protocols))
)

func init() {
	for _, p := range protocols {
		protocolsByName[p.Name] = p
		protocolsByCode[p.Code] = p
	}
	// 旧名称
	protocolsByName["ipfs"] = protocolsByCode[P_P2P]
}

// ProtocolWithName 按名称查找协议
func ProtocolWithName(name string) (Protocol, bool) {
	p, ok := protocolsByName[name]
	return p, ok
}

// ProtocolWithCode 按代码查找协议
func ProtocolWithCode(code int) (Protocol, bool) {
	p, ok := protocolsByCode[code]
	return p, ok
}
