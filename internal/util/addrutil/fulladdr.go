// Package addrutil 提供地址解析工具
//
// 完整地址是可拨号地址加上 /p2p/<PeerID> 后缀，用于在节点之间分享。
// 拨号时后缀会被去掉，身份不做校验。
package addrutil

import (
	"errors"
	"fmt"

	"github.com/dep2p/go-floodchat/pkg/lib/multiaddr"
	"github.com/dep2p/go-floodchat/pkg/types"
)

// ============================================================================
//                              错误定义
// ============================================================================

var (
	// ErrPeerIDMismatch 地址中的 PeerID 与期望不一致
	ErrPeerIDMismatch = errors.New("peer id mismatch")

	// ErrNoDialAddr 地址只有 /p2p 部分
	ErrNoDialAddr = errors.New("address has no dialable part")
)

// ============================================================================
//                              完整地址
// ============================================================================

// ParseFullAddr 拆分完整地址
//
// 示例：
//
//	id, dial, err := ParseFullAddr("/ip4/1.2.3.4/tcp/4001/p2p/QmXXX")
//	// dial = /ip4/1.2.3.4/tcp/4001
//
// 没有 /p2p 后缀时 id 为空。
func ParseFullAddr(s string) (types.PeerID, multiaddr.Multiaddr, error) {
	m, err := multiaddr.NewMultiaddr(s)
	if err != nil {
		return "", nil, err
	}
	dial, id := multiaddr.SplitPeer(m)
	if dial == nil {
		return id, nil, fmt.Errorf("%w: %s", ErrNoDialAddr, s)
	}
	return id, dial, nil
}

// BuildFullAddr 在地址末尾附加 /p2p/<id>
//
// 地址已带 /p2p 时：与 id 一致则原样返回，否则返回 ErrPeerIDMismatch。
func BuildFullAddr(addr multiaddr.Multiaddr, id types.PeerID) (multiaddr.Multiaddr, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	dial, existing := multiaddr.SplitPeer(addr)
	if existing != "" {
		if existing != id {
			return nil, fmt.Errorf("%w: %s != %s", ErrPeerIDMismatch, existing, id)
		}
		return addr, nil
	}
	if dial == nil {
		return nil, ErrNoDialAddr
	}

	suffix, err := multiaddr.NewMultiaddr("/p2p/" + id.String())
	if err != nil {
		return nil, err
	}
	return dial.Encapsulate(suffix), nil
}
