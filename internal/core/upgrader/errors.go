package upgrader

import (
	"errors"
	"fmt"

	"github.com/dep2p/go-floodchat/pkg/types"
)

var (
	// ErrNegotiationFailed 协议协商失败
	ErrNegotiationFailed = errors.New("upgrader: protocol negotiation failed")

	// ErrNoProtocols 未注册任何协议
	ErrNoProtocols = errors.New("upgrader: no protocol handlers")

	// ErrDuplicateProtocol 重复注册协议
	ErrDuplicateProtocol = errors.New("upgrader: duplicate protocol handler")

	// ErrUnknownDirection 连接方向未知
	ErrUnknownDirection = errors.New("upgrader: unknown connection direction")
)

// NegotiationError 协商失败详情
//
// errors.Is(err, ErrNegotiationFailed) 对其成立。
type NegotiationError struct {
	Direction types.Direction
	Offered   []types.ProtocolID
	Err       error
}

func (e *NegotiationError) Error() string {
	return fmt.Sprintf("upgrader: protocol negotiation failed (%s, local %v): %v", e.Direction, e.Offered, e.Err)
}

func (e *NegotiationError) Unwrap() error {
	return e.Err
}

// Is 匹配 ErrNegotiationFailed
func (e *NegotiationError) Is(target error) bool {
	return target == ErrNegotiationFailed
}
