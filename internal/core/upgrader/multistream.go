package upgrader

import (
	"context"
	"fmt"
	"net"
	"time"

	mss "github.com/multiformats/go-multistream"

	"github.com/dep2p/go-floodchat/pkg/types"
)

// negotiate 在 conn 上运行 multistream-select
//
// 出站方用 SelectOneOf 依次提议，入站方用 MultistreamMuxer 响应。
// ctx 取消会立即让阻塞中的读写超时返回。
func (u *Upgrader) negotiate(ctx context.Context, conn net.Conn, dir types.Direction) (types.ProtocolID, error) {
	deadline := time.Now().Add(u.cfg.NegotiateTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := conn.SetDeadline(deadline); err != nil {
		return "", fmt.Errorf("set deadline: %w", err)
	}
	stop := context.AfterFunc(ctx, func() {
		_ = conn.SetDeadline(time.Unix(1, 0))
	})
	defer func() {
		stop()
		_ = conn.SetDeadline(time.Time{})
	}()

	switch dir {
	case types.DirOutbound:
		return mss.SelectOneOf(u.protocols, conn)
	case types.DirInbound:
		proto, _, err := u.muxer.Negotiate(conn)
		return proto, err
	}
	return "", ErrUnknownDirection
}
