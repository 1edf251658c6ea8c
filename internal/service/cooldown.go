package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// CooldownGate rate-limits repeated alerts for the same key. Acquire reports
// whether the caller may notify now; a successful acquire starts a new
// cooldown window. The read-check-write must be atomic: two concurrent
// evaluations inside one window yield exactly one true.
type CooldownGate interface {
	Acquire(ctx context.Context, key string, now time.Time) (bool, error)
}

// MemoryCooldownGate is the process-local gate. State does not survive a
// restart and is not shared across instances; multi-instance deployments use
// RedisCooldownGate instead.
type MemoryCooldownGate struct {
	window time.Duration

	mu   sync.Mutex
	last map[string]time.Time
}

func NewMemoryCooldownGate(window time.Duration) *MemoryCooldownGate {
	return &MemoryCooldownGate{
		window: window,
		last:   make(map[string]time.Time),
	}
}

func (g *MemoryCooldownGate) Acquire(_ context.Context, key string, now time.Time) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if last, ok := g.last[key]; ok && now.Sub(last) < g.window {
		return false, nil
	}
	g.last[key] = now
	return true, nil
}

// RedisCooldownGate backs the gate with a shared store. SET NX PX is the
// atomic set-if-not-recently-set the window needs; the key expires on its
// own, so no sweep is required.
type RedisCooldownGate struct {
	client *redis.Client
	window time.Duration
}

func NewRedisCooldownGate(client *redis.Client, window time.Duration) *RedisCooldownGate {
	return &RedisCooldownGate{client: client, window: window}
}

func (g *RedisCooldownGate) Acquire(ctx context.Context, key string, now time.Time) (bool, error) {
	ok, err := g.client.SetNX(ctx, "cooldown:"+key, now.UnixMilli(), g.window).Result()
	if err != nil {
		return false, fmt.Errorf("cooldown acquire %s: %w", key, err)
	}
	return ok, nil
}
