package upgrader

import (
	"context"
	"fmt"
	"net"
	"time"

	mss "github.com/multiformats/go-multistream"

	"github.com/dep2p/go-floodchat/internal/core/metrics"
	"github.com/dep2p/go-floodchat/internal/util/logger"
	pkgif "github.com/dep2p/go-floodchat/pkg/interfaces"
	"github.com/dep2p/go-floodchat/pkg/types"
)

var log = logger.Logger("core/upgrader")

// Upgrader 基于 multistream-select 的连接升级器
type Upgrader struct {
	cfg Config

	protocols []types.ProtocolID
	handlers  map[types.ProtocolID]pkgif.ProtocolHandler
	muxer     *mss.MultistreamMuxer[types.ProtocolID]

	metrics *metrics.Recorder
}

var _ pkgif.Upgrader = (*Upgrader)(nil)

// New 创建升级器，handlers 的顺序即出站提议的优先级
func New(cfg Config, handlers ...pkgif.ProtocolHandler) (*Upgrader, error) {
	if len(handlers) == 0 {
		return nil, ErrNoProtocols
	}
	if cfg.NegotiateTimeout <= 0 {
		cfg.NegotiateTimeout = defaultNegotiateTimeout
	}

	u := &Upgrader{
		cfg:      cfg,
		handlers: make(map[types.ProtocolID]pkgif.ProtocolHandler, len(handlers)),
		muxer:    mss.NewMultistreamMuxer[types.ProtocolID](),
	}
	for _, h := range handlers {
		id := h.ID()
		if _, dup := u.handlers[id]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateProtocol, id)
		}
		u.handlers[id] = h
		u.protocols = append(u.protocols, id)
		// 会话由 ProtocolHandler 创建，muxer 只负责选择
		u.muxer.AddHandler(id, nil)
	}
	return u, nil
}

// SetMetrics 设置指标记录器
func (u *Upgrader) SetMetrics(m *metrics.Recorder) {
	u.metrics = m
}

// Protocols 本地协议，按优先级排序
func (u *Upgrader) Protocols() []types.ProtocolID {
	return append([]types.ProtocolID(nil), u.protocols...)
}

// Upgrade 协商协议并创建会话
//
// 失败时关闭 conn，返回的错误满足 errors.Is(err, ErrNegotiationFailed)。
func (u *Upgrader) Upgrade(ctx context.Context, conn net.Conn, dir types.Direction) (pkgif.UpgradeOutput, error) {
	start := time.Now()

	proto, err := u.negotiate(ctx, conn, dir)
	if err != nil {
		conn.Close()
		u.metrics.NegotiationFailed(dir)
		return nil, &NegotiationError{Direction: dir, Offered: u.Protocols(), Err: err}
	}
	u.metrics.ObserveHandshake(time.Since(start).Seconds())

	h, ok := u.handlers[proto]
	if !ok {
		conn.Close()
		return nil, &NegotiationError{
			Direction: dir,
			Offered:   u.Protocols(),
			Err:       fmt.Errorf("selected unknown protocol %s", proto),
		}
	}

	out, err := h.Upgrade(ctx, conn, dir)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("upgrader: %s 会话创建失败: %w", proto, err)
	}

	log.Debug("协议协商完成",
		"protocol", proto,
		"direction", dir,
		"remote", conn.RemoteAddr(),
		"elapsed", time.Since(start))
	return out, nil
}
