// Package cache: 프로세스 내 TTL 캐시
package cache

import (
	"time"

	"github.com/dgraph-io/ristretto/v2"
)

// TTL: 항목 수 상한과 고정 TTL 을 갖는 ristretto 캐시. nil 이면 항상 miss 다.
// 용량이 차면 TinyLFU 정책에 따라 새 항목이 거절될 수 있으니 캐시는 힌트로만 쓴다.
type TTL[V any] struct {
	store *ristretto.Cache[string, V]
	ttl   time.Duration
}

// NewTTL: maxEntries 나 ttl 이 0 이하이면 (nil, nil) 로 캐시를 끈다.
func NewTTL[V any](maxEntries int, ttl time.Duration) (*TTL[V], error) {
	if maxEntries <= 0 || ttl <= 0 {
		return nil, nil
	}
	store, err := ristretto.NewCache(&ristretto.Config[string, V]{
		NumCounters: int64(maxEntries) * 10,
		MaxCost:     int64(maxEntries),
		BufferItems: 64,
	})
	if err != nil {
		return nil, err
	}
	return &TTL[V]{store: store, ttl: ttl}, nil
}

// Get: 만료되지 않은 값을 조회한다.
func (c *TTL[V]) Get(key string) (V, bool) {
	if c == nil {
		var zero V
		return zero, false
	}
	return c.store.Get(key)
}

// Set: 값을 고정 TTL 로 저장한다. 쓰기 버퍼를 비운 뒤 반환하므로 바로 다음 Get 에서 보인다.
func (c *TTL[V]) Set(key string, value V) {
	if c == nil {
		return
	}
	c.store.SetWithTTL(key, value, 1, c.ttl)
	c.store.Wait()
}

// Close: 캐시의 백그라운드 고루틴을 정리한다.
func (c *TTL[V]) Close() {
	if c != nil {
		c.store.Close()
	}
}
