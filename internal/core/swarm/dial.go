package swarm

import (
	"context"

	pkgif "github.com/dep2p/go-floodchat/pkg/interfaces"
	"github.com/dep2p/go-floodchat/pkg/lib/multiaddr"
	"github.com/dep2p/go-floodchat/pkg/types"
)

// Dial 解析地址并拨号
//
// 地址无法解析时立即返回 *multiaddr.ParseError，不登记任何连接。
// 返回的连接尚未协商；协商结果通过 Events 发布。
func (s *Swarm) Dial(ctx context.Context, addr string) (*Conn, error) {
	maddr, err := multiaddr.NewMultiaddr(addr)
	if err != nil {
		return nil, err
	}
	return s.DialMultiaddr(ctx, maddr)
}

// DialMultiaddr 拨号已解析的地址
//
// 末尾的 /p2p/<id> 在拨号前去掉，对端身份不做校验。
func (s *Swarm) DialMultiaddr(ctx context.Context, maddr multiaddr.Multiaddr) (*Conn, error) {
	if s.isClosed() {
		return nil, ErrSwarmClosed
	}

	target, peer := multiaddr.SplitPeer(maddr)
	if target == nil {
		return nil, &DialError{Addr: maddr, Err: ErrNoTransport}
	}

	t := s.transportForDial(target)
	if t == nil {
		s.metrics.DialFailed()
		return nil, &DialError{Addr: maddr, Err: ErrNoTransport}
	}

	dctx, cancel := context.WithTimeout(ctx, s.cfg.DialTimeout)
	defer cancel()

	log.Debug("开始拨号", "addr", target, "peer", peer.ShortString())
	raw, err := t.Dial(dctx, target)
	if err != nil {
		s.metrics.DialFailed()
		log.Debug("拨号失败", "addr", target, "error", err)
		return nil, &DialError{Addr: maddr, Err: err}
	}

	return s.addConn(raw, types.DirOutbound)
}

func (s *Swarm) transportForDial(maddr multiaddr.Multiaddr) pkgif.Transport {
	for _, t := range s.transports {
		if t.CanDial(maddr) {
			return t
		}
	}
	return nil
}
