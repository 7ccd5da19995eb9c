package identity

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-floodchat/config"
	"github.com/dep2p/go-floodchat/pkg/types"
)

// TestGenerate 测试每次生成不同身份
func TestGenerate(t *testing.T) {
	a, err := Generate(DefaultKeySize)
	require.NoError(t, err)
	b, err := Generate(0)
	require.NoError(t, err)

	assert.Len(t, a.PublicKey(), DefaultKeySize)
	assert.Len(t, b.PublicKey(), DefaultKeySize)
	assert.NotEqual(t, a.PeerID(), b.PeerID())
	assert.NoError(t, a.PeerID().Validate())
}

// TestFromKey 测试相同密钥得到相同 PeerID
func TestFromKey(t *testing.T) {
	key := bytes.Repeat([]byte{7}, 64)
	a, err := FromKey(key)
	require.NoError(t, err)

	want, err := types.PeerIDFromPublicKey(key)
	require.NoError(t, err)
	assert.Equal(t, want, a.PeerID())

	// 返回副本
	a.PublicKey()[0] = 0
	assert.Equal(t, key, a.PublicKey())

	_, err = FromKey(nil)
	assert.ErrorIs(t, err, types.ErrEmptyPublicKey)
}

// TestProvideIdentity 测试按配置生成
func TestProvideIdentity(t *testing.T) {
	cfg := config.NewConfig()
	cfg.Identity.KeySize = 128

	res, err := ProvideIdentity(Params{UnifiedCfg: cfg})
	require.NoError(t, err)
	assert.Len(t, res.Identity.PublicKey(), 128)
	assert.Equal(t, res.Identity.PeerID(), res.PeerID)
}
