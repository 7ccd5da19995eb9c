package types

// ProtocolID 协议标识，如 "/floodsub/1.0.0"
type ProtocolID string

// String 返回协议字符串
func (p ProtocolID) String() string {
	return string(p)
}
