package swarm

import (
	"errors"
	"fmt"

	"github.com/dep2p/go-floodchat/pkg/lib/multiaddr"
)

var (
	// ErrSwarmClosed Swarm 已关闭
	ErrSwarmClosed = errors.New("swarm closed")

	// ErrNoTransport 没有可用传输层
	ErrNoTransport = errors.New("no transport for address")

	// ErrInvalidConfig 无效配置
	ErrInvalidConfig = errors.New("invalid config")
)

// DialError 拨号错误
//
// 传输层拨号失败时由 Dial 同步返回；出站连接协商失败时
// 作为 EvtConnClosed 的 Err 异步发布。
type DialError struct {
	Addr multiaddr.Multiaddr
	Err  error
}

func (e *DialError) Error() string {
	return fmt.Sprintf("failed to dial %s: %v", addrString(e.Addr), e.Err)
}

// Unwrap 返回底层错误
func (e *DialError) Unwrap() error {
	return e.Err
}

// ListenError 监听错误
type ListenError struct {
	Addr multiaddr.Multiaddr
	Err  error
}

func (e *ListenError) Error() string {
	return fmt.Sprintf("failed to listen on %s: %v", addrString(e.Addr), e.Err)
}

// Unwrap 返回底层错误
func (e *ListenError) Unwrap() error {
	return e.Err
}

func addrString(m multiaddr.Multiaddr) string {
	if m == nil {
		return "<nil>"
	}
	return m.String()
}
