package geo

import (
	"encoding/binary"
	"fmt"
	"sync"

	"github.com/cespare/xxhash/v2"
)

const cacheShards = 16

type tileKey struct {
	kind Kind
	x, z int
}

func (k tileKey) String() string {
	return fmt.Sprintf("%s/%d_%d", k.kind, k.x, k.z)
}

func (k tileKey) hash() uint64 {
	var buf [17]byte
	buf[0] = byte(k.kind)
	binary.LittleEndian.PutUint64(buf[1:], uint64(int64(k.x)))
	binary.LittleEndian.PutUint64(buf[9:], uint64(int64(k.z)))
	return xxhash.Sum64(buf[:])
}

// tileCache is a sharded map with FIFO eviction per shard.
type tileCache struct {
	shards [cacheShards]cacheShard
}

type cacheShard struct {
	mu       sync.RWMutex
	tiles    map[tileKey]*Tile
	order    []tileKey
	capacity int
}

func newTileCache(capacity int) *tileCache {
	perShard := capacity / cacheShards
	if perShard < 1 {
		perShard = 1
	}
	c := &tileCache{}
	for i := range c.shards {
		c.shards[i].tiles = make(map[tileKey]*Tile)
		c.shards[i].capacity = perShard
	}
	return c
}

func (c *tileCache) shard(key tileKey) *cacheShard {
	return &c.shards[key.hash()%cacheShards]
}

func (c *tileCache) get(key tileKey) (*Tile, bool) {
	s := c.shard(key)
	s.mu.RLock()
	t, ok := s.tiles[key]
	s.mu.RUnlock()
	return t, ok
}

// putIfAbsent stores t unless another caller got there first and returns
// whichever tile ended up cached.
func (c *tileCache) putIfAbsent(key tileKey, t *Tile) *Tile {
	s := c.shard(key)
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.tiles[key]; ok {
		return existing
	}
	for len(s.order) >= s.capacity {
		oldest := s.order[0]
		s.order = s.order[1:]
		delete(s.tiles, oldest)
	}
	s.tiles[key] = t
	s.order = append(s.order, key)
	return t
}

func (c *tileCache) len() int {
	total := 0
	for i := range c.shards {
		s := &c.shards[i]
		s.mu.RLock()
		total += len(s.tiles)
		s.mu.RUnlock()
	}
	return total
}
