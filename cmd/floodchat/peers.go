package main

import (
	"github.com/dep2p/go-floodchat/internal/util/addrutil"
)

// peerLabel 返回日志用的节点描述：拨号地址，带 /p2p 后缀时附上短 PeerID
func peerLabel(addr string) (string, error) {
	id, dial, err := addrutil.ParseFullAddr(addr)
	if err != nil {
		return "", err
	}
	if id.IsEmpty() {
		return dial.String(), nil
	}
	return dial.String() + " (" + id.ShortString() + ")", nil
}

// logPeers 启动前列出将要拨号的节点
func logPeers(peers []string) {
	for _, p := range peers {
		label, err := peerLabel(p)
		if err != nil {
			logger.Warn("节点地址无效", "addr", p, "error", err)
			continue
		}
		logger.Info("将拨号", "peer", label)
	}
}
