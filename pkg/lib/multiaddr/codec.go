package multiaddr

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/multiformats/go-varint"
)

// component 地址中的一段 "/协议/值"
type component struct {
	proto Protocol
	// value 值的二进制形式，不含长度前缀
	value []byte
	// raw 完整二进制，含代码与长度前缀
	raw []byte
}

func (c component) text() (string, error) {
	if c.proto.Size == 0 {
		return "/" + c.proto.Name, nil
	}
	v, err := c.proto.Transcoder.BytesToString(c.value)
	if err != nil {
		return "", err
	}
	return "/" + c.proto.Name + "/" + v, nil
}

// stringToBytes 文本形式转二进制
func stringToBytes(s string) ([]byte, error) {
	fail := func(err error) error { return &ParseError{Input: s, Err: err} }

	if !strings.HasPrefix(s, "/") {
		return nil, fail(fmt.Errorf("%w: must begin with /", ErrInvalidMultiaddr))
	}
	parts := strings.Split(strings.TrimRight(s, "/"), "/")[1:]
	if len(parts) == 0 {
		return nil, fail(fmt.Errorf("%w: empty address", ErrInvalidMultiaddr))
	}

	var out []byte
	for len(parts) > 0 {
		name := parts[0]
		parts = parts[1:]

		p, ok := ProtocolWithName(name)
		if !ok {
			return nil, fail(fmt.Errorf("%w: %q", ErrUnknownProtocol, name))
		}
		out = append(out, p.VCode...)
		if p.Size == 0 {
			continue
		}

		if len(parts) == 0 || parts[0] == "" {
			return nil, fail(fmt.Errorf("%w: %s", ErrMissingValue, name))
		}
		v, err := p.Transcoder.StringToBytes(parts[0])
		if err != nil {
			return nil, fail(err)
		}
		parts = parts[1:]

		if p.Size == LengthPrefixedVarSize {
			out = append(out, varint.ToUvarint(uint64(len(v)))...)
		}
		out = append(out, v...)
	}
	return out, nil
}

// splitComponents 把二进制地址切分为组件并校验
func splitComponents(b []byte) ([]component, error) {
	var comps []component
	for len(b) > 0 {
		start := b
		code, n, err := varint.FromUvarint(b)
		if err != nil {
			return nil, fmt.Errorf("%w: protocol code: %v", ErrInvalidMultiaddr, err)
		}
		b = b[n:]

		p, ok := ProtocolWithCode(int(code))
		if !ok {
			return nil, fmt.Errorf("%w: code %d", ErrUnknownProtocol, code)
		}

		size := 0
		switch {
		case p.Size == LengthPrefixedVarSize:
			l, m, err := varint.FromUvarint(b)
			if err != nil {
				return nil, fmt.Errorf("%w: %s length: %v", ErrInvalidMultiaddr, p.Name, err)
			}
			b = b[m:]
			size = int(l)
		case p.Size > 0:
			size = p.Size / 8
		}
		if size > len(b) || size < 0 {
			return nil, fmt.Errorf("%w: %s value truncated", ErrInvalidMultiaddr, p.Name)
		}

		c := component{proto: p, value: b[:size]}
		b = b[size:]
		c.raw = start[:len(start)-len(b)]

		if p.Size != 0 {
			if _, err := p.Transcoder.BytesToString(c.value); err != nil {
				return nil, err
			}
		}
		comps = append(comps, c)
	}
	if len(comps) == 0 {
		return nil, fmt.Errorf("%w: empty address", ErrInvalidMultiaddr)
	}
	return comps, nil
}

// bytesToString 二进制形式转文本
func bytesToString(b []byte) (string, error) {
	comps, err := splitComponents(b)
	if err != nil {
		return "", &ParseError{Input: hex.EncodeToString(b), Err: err}
	}
	var sb strings.Builder
	for _, c := range comps {
		t, err := c.text()
		if err != nil {
			return "", err
		}
		sb.WriteString(t)
	}
	return sb.String(), nil
}
