package types

import (
	"errors"
	"fmt"

	"github.com/minio/sha256-simd"
	"github.com/mr-tron/base58"
)

// ============================================================================
//                              PeerID - 节点标识
// ============================================================================

// multihash 前缀: sha2-256 代码 + 32 字节摘要长度
const (
	mhSha256    = 0x12
	mhSha256Len = 32

	// PeerIDLen 标准 PeerID 的字节长度
	PeerIDLen = 2 + mhSha256Len
)

var (
	// ErrEmptyPeerID PeerID 为空
	ErrEmptyPeerID = errors.New("types: empty peer id")

	// ErrInvalidPeerID PeerID 不是合法的 sha2-256 multihash
	ErrInvalidPeerID = errors.New("types: invalid peer id")

	// ErrEmptyPublicKey 公钥为空，无法派生 PeerID
	ErrEmptyPublicKey = errors.New("types: empty public key")
)

// PeerID 节点标识
//
// 内部保存 multihash 原始字节（sha2-256(公钥)），可比较、可作为 map 键。
// 外部表示为 Base58 字符串，与 libp2p 的 Qm... 形式兼容。
type PeerID string

// PeerIDFromPublicKey 从公钥材料派生 PeerID
func PeerIDFromPublicKey(pub []byte) (PeerID, error) {
	if len(pub) == 0 {
		return "", ErrEmptyPublicKey
	}
	digest := sha256.Sum256(pub)

	b := make([]byte, 0, PeerIDLen)
	b = append(b, mhSha256, mhSha256Len)
	b = append(b, digest[:]...)
	return PeerID(b), nil
}

// PeerIDFromBytes 从 multihash 字节构造 PeerID 并校验格式
func PeerIDFromBytes(b []byte) (PeerID, error) {
	id := PeerID(b)
	if err := id.Validate(); err != nil {
		return "", err
	}
	return id, nil
}

// ParsePeerID 解析 Base58 字符串
func ParsePeerID(s string) (PeerID, error) {
	if s == "" {
		return "", ErrEmptyPeerID
	}
	b, err := base58.Decode(s)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidPeerID, err)
	}
	return PeerIDFromBytes(b)
}

// Validate 校验 multihash 前缀与长度
func (id PeerID) Validate() error {
	if len(id) == 0 {
		return ErrEmptyPeerID
	}
	if len(id) != PeerIDLen || id[0] != mhSha256 || id[1] != mhSha256Len {
		return ErrInvalidPeerID
	}
	return nil
}

// String 返回 Base58 表示
func (id PeerID) String() string {
	if id == "" {
		return ""
	}
	return base58.Encode([]byte(id))
}

// ShortString 返回日志使用的短标识
//
// 跳过所有 sha2-256 PeerID 共有的 "Qm" 前缀。
func (id PeerID) ShortString() string {
	s := id.String()
	if len(s) <= 10 {
		return s
	}
	return s[2:10]
}

// Bytes 返回 multihash 字节副本
func (id PeerID) Bytes() []byte {
	return []byte(id)
}

// IsEmpty 是否为空
func (id PeerID) IsEmpty() bool {
	return id == ""
}
