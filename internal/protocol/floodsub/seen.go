package floodsub

import (
	lru "github.com/hashicorp/golang-lru/v2"
)

// msgID 消息唯一标识
type msgID struct {
	from  string
	seqno uint64
}

// seenCache 已见消息表，容量满时淘汰最久未触及的条目
type seenCache struct {
	cache *lru.Cache[msgID, struct{}]
}

func newSeenCache(size int) (*seenCache, error) {
	c, err := lru.New[msgID, struct{}](size)
	if err != nil {
		return nil, err
	}
	return &seenCache{cache: c}, nil
}

// markSeen 记录消息，已存在时返回 true
func (s *seenCache) markSeen(id msgID) bool {
	seen, _ := s.cache.ContainsOrAdd(id, struct{}{})
	return seen
}

func (s *seenCache) len() int {
	return s.cache.Len()
}
