package notify

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// DedupGuard suppresses duplicate downstream notifications within a bounded
// window. It is an optimization, not the source of correctness: the payment
// unique constraint and the pending-state transition check are the backstop,
// so FirstSeen fails open.
type DedupGuard interface {
	// FirstSeen returns true the first time key is seen within ttl.
	FirstSeen(key string, ttl time.Duration) bool
}

// RedisDedup is the shared guard: SETNX with TTL, correct across instances.
type RedisDedup struct {
	rdb *redis.Client
	log *zap.Logger
}

func NewRedisDedup(rdb *redis.Client, log *zap.Logger) *RedisDedup {
	return &RedisDedup{rdb: rdb, log: log}
}

func (d *RedisDedup) FirstSeen(key string, ttl time.Duration) bool {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	ok, err := d.rdb.SetNX(ctx, "dedup:"+key, 1, ttl).Result()
	if err != nil {
		d.log.Warn("dedup guard unavailable, failing open", zap.Error(err))
		return true
	}
	return ok
}

// MemoryDedup is the process-local fallback: a set with timed eviction. Not
// shared across instances.
type MemoryDedup struct {
	mu   sync.Mutex
	seen map[string]time.Time
	now  func() time.Time
}

func NewMemoryDedup() *MemoryDedup {
	return &MemoryDedup{seen: make(map[string]time.Time), now: time.Now}
}

func (d *MemoryDedup) FirstSeen(key string, ttl time.Duration) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := d.now()
	for k, deadline := range d.seen {
		if now.After(deadline) {
			delete(d.seen, k)
		}
	}
	if _, ok := d.seen[key]; ok {
		return false
	}
	d.seen[key] = now.Add(ttl)
	return true
}
