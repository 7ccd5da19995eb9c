// Package identity 生成节点身份
//
// 身份由随机密钥材料派生，只存在于进程生命周期内。
package identity

import (
	"crypto/rand"
	"fmt"

	"github.com/dep2p/go-floodchat/internal/util/logger"
	"github.com/dep2p/go-floodchat/pkg/types"
)

var log = logger.Logger("core/identity")

// DefaultKeySize 默认随机密钥字节数
const DefaultKeySize = 2048

// Identity 节点身份
type Identity struct {
	key    []byte
	peerID types.PeerID
}

// Generate 生成 keySize 字节的随机密钥并派生 PeerID
func Generate(keySize int) (*Identity, error) {
	if keySize <= 0 {
		keySize = DefaultKeySize
	}
	key := make([]byte, keySize)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("生成随机密钥失败: %w", err)
	}
	return FromKey(key)
}

// FromKey 从给定密钥材料构造身份
func FromKey(key []byte) (*Identity, error) {
	id, err := types.PeerIDFromPublicKey(key)
	if err != nil {
		return nil, err
	}
	return &Identity{key: append([]byte(nil), key...), peerID: id}, nil
}

// PeerID 返回节点标识
func (i *Identity) PeerID() types.PeerID {
	return i.peerID
}

// PublicKey 返回密钥材料副本
func (i *Identity) PublicKey() []byte {
	return append([]byte(nil), i.key...)
}
