package multiaddr

import (
	"encoding/binary"
	"fmt"
	"net"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/dep2p/go-floodchat/pkg/types"
)

// Transcoder 协议值在文本与二进制之间的转换
type Transcoder interface {
	StringToBytes(string) ([]byte, error)
	BytesToString([]byte) (string, error)
}

type transcoder struct {
	s2b func(string) ([]byte, error)
	b2s func([]byte) (string, error)
}

func (t transcoder) StringToBytes(s string) ([]byte, error) { return t.s2b(s) }
func (t transcoder) BytesToString(b []byte) (string, error) { return t.b2s(b) }

var (
	transcoderIP4  Transcoder = transcoder{ip4StoB, ipBtoS}
	transcoderIP6  Transcoder = transcoder{ip6StoB, ipBtoS}
	transcoderPort Transcoder = transcoder{portStoB, portBtoS}
	transcoderDNS  Transcoder = transcoder{dnsStoB, dnsBtoS}
	transcoderP2P  Transcoder = transcoder{p2pStoB, p2pBtoS}
)

func ip4StoB(s string) ([]byte, error) {
	ip := net.ParseIP(s).To4()
	if ip == nil {
		return nil, fmt.Errorf("%w: %q is not an ipv4 address", ErrInvalidValue, s)
	}
	return ip, nil
}

func ip6StoB(s string) ([]byte, error) {
	ip := net.ParseIP(s)
	if ip == nil || !strings.Contains(s, ":") {
		return nil, fmt.Errorf("%w: %q is not an ipv6 address", ErrInvalidValue, s)
	}
	return ip.To16(), nil
}

func ipBtoS(b []byte) (string, error) {
	switch len(b) {
	case net.IPv4len, net.IPv6len:
		return net.IP(b).String(), nil
	}
	return "", fmt.Errorf("%w: ip length %d", ErrInvalidValue, len(b))
}

func portStoB(s string) ([]byte, error) {
	n, err := strconv.ParseUint(s, 10, 16)
	if err != nil {
		return nil, fmt.Errorf("%w: port %q", ErrInvalidValue, s)
	}
	b := make([]byte, 2)
	binary.BigEndian.PutUint16(b, uint16(n))
	return b, nil
}

func portBtoS(b []byte) (string, error) {
	if len(b) != 2 {
		return "", fmt.Errorf("%w: port length %d", ErrInvalidValue, len(b))
	}
	return strconv.Itoa(int(binary.BigEndian.Uint16(b))), nil
}

func dnsStoB(s string) ([]byte, error) {
	if err := checkDNS(s); err != nil {
		return nil, err
	}
	return []byte(s), nil
}

func dnsBtoS(b []byte) (string, error) {
	s := string(b)
	if err := checkDNS(s); err != nil {
		return "", err
	}
	return s, nil
}

func checkDNS(s string) error {
	if s == "" || len(s) > 253 || !utf8.ValidString(s) || strings.ContainsAny(s, "/ ") {
		return fmt.Errorf("%w: dns name %q", ErrInvalidValue, s)
	}
	return nil
}

func p2pStoB(s string) ([]byte, error) {
	id, err := types.ParsePeerID(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidValue, err)
	}
	return id.Bytes(), nil
}

func p2pBtoS(b []byte) (string, error) {
	id, err := types.PeerIDFromBytes(b)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidValue, err)
	}
	return id.String(), nil
}
