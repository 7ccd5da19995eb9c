package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-floodchat/internal/util/addrutil"
	"github.com/dep2p/go-floodchat/pkg/types"
)

// TestPeerLabel 测试节点地址描述
func TestPeerLabel(t *testing.T) {
	id, err := types.PeerIDFromPublicKey([]byte("peer"))
	require.NoError(t, err)

	label, err := peerLabel("/ip4/10.0.0.1/tcp/4001")
	require.NoError(t, err)
	assert.Equal(t, "/ip4/10.0.0.1/tcp/4001", label)

	label, err = peerLabel("/ip4/10.0.0.1/tcp/4001/p2p/" + id.String())
	require.NoError(t, err)
	assert.Equal(t, "/ip4/10.0.0.1/tcp/4001 ("+id.ShortString()+")", label)

	_, err = peerLabel("/p2p/" + id.String())
	assert.ErrorIs(t, err, addrutil.ErrNoDialAddr)

	_, err = peerLabel("10.0.0.1:4001")
	assert.Error(t, err)
}
