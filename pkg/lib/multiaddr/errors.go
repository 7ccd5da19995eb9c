package multiaddr

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidMultiaddr 地址格式错误
	ErrInvalidMultiaddr = errors.New("multiaddr: invalid multiaddr")

	// ErrUnknownProtocol 协议名称或代码未知
	ErrUnknownProtocol = errors.New("multiaddr: unknown protocol")

	// ErrMissingValue 协议缺少值
	ErrMissingValue = errors.New("multiaddr: missing protocol value")

	// ErrInvalidValue 协议值无法编码
	ErrInvalidValue = errors.New("multiaddr: invalid protocol value")

	// ErrNotThinWaist 地址不是 ip/dns + tcp 形式，无法转为网络地址
	ErrNotThinWaist = errors.New("multiaddr: not an ip or dns address with a tcp port")
)

// ParseError 地址解析错误
//
// Input 为原始输入（字符串形式或二进制的十六进制），Err 为具体原因。
type ParseError struct {
	Input string
	Err   error
}

// Error 实现 error 接口
func (e *ParseError) Error() string {
	return fmt.Sprintf("multiaddr: parse %q: %v", e.Input, e.Err)
}

// Unwrap 返回底层错误
func (e *ParseError) Unwrap() error {
	return e.Err
}

// Is 使 errors.Is(err, ErrInvalidMultiaddr) 对所有解析错误成立
func (e *ParseError) Is(target error) bool {
	return target == ErrInvalidMultiaddr
}
