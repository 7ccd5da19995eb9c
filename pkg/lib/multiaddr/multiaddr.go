package multiaddr

import (
	"bytes"
	"encoding/hex"
	"fmt"
)

// Multiaddr 自描述网络地址
//
// 实现是不可变的，可在多个 goroutine 间共享。
type Multiaddr interface {
	// Bytes 返回二进制形式，调用方不得修改
	Bytes() []byte

	// String 返回文本形式
	String() string

	// Equal 结构相等
	Equal(Multiaddr) bool

	// Protocols 按顺序返回包含的协议
	Protocols() []Protocol

	// ValueForProtocol 返回第一个匹配协议的文本值
	ValueForProtocol(code int) (string, error)

	// Encapsulate 追加另一个地址
	Encapsulate(Multiaddr) Multiaddr

	// Decapsulate 移除最后一次出现的 other 及其之后的部分
	Decapsulate(other Multiaddr) Multiaddr
}

type multiaddr struct {
	bytes []byte
	comps []component
}

// NewMultiaddr 解析文本形式，失败返回 *ParseError
func NewMultiaddr(s string) (Multiaddr, error) {
	b, err := stringToBytes(s)
	if err != nil {
		return nil, err
	}
	return newFromBytes(b)
}

// NewMultiaddrBytes 解析二进制形式，失败返回 *ParseError
func NewMultiaddrBytes(b []byte) (Multiaddr, error) {
	buf := make([]byte, len(b))
	copy(buf, b)
	return newFromBytes(buf)
}

func newFromBytes(b []byte) (*multiaddr, error) {
	comps, err := splitComponents(b)
	if err != nil {
		return nil, &ParseError{Input: hex.EncodeToString(b), Err: err}
	}
	return &multiaddr{bytes: b, comps: comps}, nil
}

// StringCast 解析已知合法的文本地址，失败时 panic
//
// 只用于常量地址。
func StringCast(s string) Multiaddr {
	m, err := NewMultiaddr(s)
	if err != nil {
		panic(err)
	}
	return m
}

func (m *multiaddr) Bytes() []byte {
	return m.bytes
}

func (m *multiaddr) String() string {
	s, err := bytesToString(m.bytes)
	if err != nil {
		// 构造时已校验
		panic(fmt.Errorf("multiaddr: corrupted address: %w", err))
	}
	return s
}

func (m *multiaddr) Equal(other Multiaddr) bool {
	if other == nil {
		return false
	}
	return bytes.Equal(m.bytes, other.Bytes())
}

func (m *multiaddr) Protocols() []Protocol {
	ps := make([]Protocol, len(m.comps))
	for i, c := range m.comps {
		ps[i] = c.proto
	}
	return ps
}

func (m *multiaddr) ValueForProtocol(code int) (string, error) {
	for _, c := range m.comps {
		if c.proto.Code != code {
			continue
		}
		if c.proto.Size == 0 {
			return "", nil
		}
		return c.proto.Transcoder.BytesToString(c.value)
	}
	return "", fmt.Errorf("multiaddr: protocol %d not present in %s", code, m)
}

func (m *multiaddr) Encapsulate(other Multiaddr) Multiaddr {
	if other == nil {
		return m
	}
	b := make([]byte, 0, len(m.bytes)+len(other.Bytes()))
	b = append(b, m.bytes...)
	b = append(b, other.Bytes()...)
	out, err := newFromBytes(b)
	if err != nil {
		return m
	}
	return out
}

func (m *multiaddr) Decapsulate(other Multiaddr) Multiaddr {
	if other == nil {
		return m
	}
	ob := other.Bytes()
	// 按组件边界查找最后一次出现
	offset := len(m.bytes)
	for i := len(m.comps) - 1; i >= 0; i-- {
		offset -= len(m.comps[i].raw)
		if bytes.HasPrefix(m.bytes[offset:], ob) {
			if offset == 0 {
				return nil
			}
			out, err := newFromBytes(append([]byte(nil), m.bytes[:offset]...))
			if err != nil {
				return m
			}
			return out
		}
	}
	return m
}
