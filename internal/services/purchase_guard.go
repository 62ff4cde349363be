package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"paidlinks-api/pkg/logging"
)

// PurchaseGuard marks an idempotency key as in flight so a retried request
// cannot start a second charge while the first one is still running.
type PurchaseGuard interface {
	// Acquire returns ok=false when the key is already held.
	// release must be called once the purchase has finished.
	Acquire(ctx context.Context, key string) (release func(), ok bool, err error)
}

// RedisPurchaseGuard holds keys with SET NX and a TTL. Each holder stores its
// own token so a release after expiry cannot drop the next holder's lock.
type RedisPurchaseGuard struct {
	client *redis.Client
	ttl    time.Duration
}

// releaseScript deletes the lock only while it still carries the caller's token
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// NewRedisPurchaseGuard creates a Redis backed guard
func NewRedisPurchaseGuard(client *redis.Client, ttl time.Duration) *RedisPurchaseGuard {
	return &RedisPurchaseGuard{client: client, ttl: ttl}
}

func purchaseLockKey(key string) string {
	return fmt.Sprintf("purchase_lock:%s", key)
}

func (g *RedisPurchaseGuard) Acquire(ctx context.Context, key string) (func(), bool, error) {
	redisKey := purchaseLockKey(key)
	token := uuid.New().String()

	ok, err := g.client.SetNX(ctx, redisKey, token, g.ttl).Result()
	if err != nil {
		return nil, false, fmt.Errorf("failed to acquire purchase lock: %w", err)
	}
	if !ok {
		return nil, false, nil
	}

	release := func() {
		// The request context may already be cancelled here
		if err := releaseScript.Run(context.Background(), g.client, []string{redisKey}, token).Err(); err != nil {
			logging.Warnf("Failed to release purchase lock - key: %s, error: %v", key, err)
		}
	}
	return release, true, nil
}

// MemoryPurchaseGuard keeps keys in process memory. Entries expire after the
// TTL even if never released.
type MemoryPurchaseGuard struct {
	held        map[string]time.Time
	mutex       sync.Mutex
	ttl         time.Duration
	stopCleanup chan struct{}
	stopOnce    sync.Once
}

// NewMemoryPurchaseGuard creates the guard and starts its cleanup loop
func NewMemoryPurchaseGuard(ttl time.Duration) *MemoryPurchaseGuard {
	g := &MemoryPurchaseGuard{
		held:        make(map[string]time.Time),
		ttl:         ttl,
		stopCleanup: make(chan struct{}),
	}

	go g.startCleanupRoutine(ttl)

	return g
}

func (g *MemoryPurchaseGuard) Acquire(_ context.Context, key string) (func(), bool, error) {
	g.mutex.Lock()
	defer g.mutex.Unlock()

	now := time.Now()
	if heldAt, exists := g.held[key]; exists && now.Sub(heldAt) < g.ttl {
		return nil, false, nil
	}
	g.held[key] = now

	release := func() {
		g.mutex.Lock()
		defer g.mutex.Unlock()
		if g.held[key].Equal(now) {
			delete(g.held, key)
		}
	}
	return release, true, nil
}

func (g *MemoryPurchaseGuard) startCleanupRoutine(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			g.cleanup()
		case <-g.stopCleanup:
			return
		}
	}
}

// cleanup drops expired entries
func (g *MemoryPurchaseGuard) cleanup() {
	g.mutex.Lock()
	defer g.mutex.Unlock()

	now := time.Now()
	initialCount := len(g.held)

	for key, heldAt := range g.held {
		if now.Sub(heldAt) >= g.ttl {
			delete(g.held, key)
		}
	}

	if cleaned := initialCount - len(g.held); cleaned > 0 {
		logging.Debugf("Purchase guard cleanup: removed %d expired locks, remaining: %d", cleaned, len(g.held))
	}
}

// Stop stops the cleanup goroutine
func (g *MemoryPurchaseGuard) Stop() {
	g.stopOnce.Do(func() { close(g.stopCleanup) })
}
