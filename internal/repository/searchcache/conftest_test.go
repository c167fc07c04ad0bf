package searchcache

import (
	"context"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/tejaspanchall/BookCafe-Backend/internal/db"
	"github.com/tejaspanchall/BookCafe-Backend/internal/domain/search/mode"
	"github.com/tejaspanchall/BookCafe-Backend/internal/domain/search/request"
)

type mockSearcher struct {
	ids    []string
	err    error
	calls  int
	limits []int
}

func (m *mockSearcher) Search(_ context.Context, req *request.Request) ([]string, error) {
	m.calls++
	m.limits = append(m.limits, req.Limit())
	if m.err != nil {
		return nil, m.err
	}
	if req.Empty() {
		return nil, nil
	}
	return m.ids, nil
}

// mockKVStore is an in-memory key-value store with optional fault hooks.
type mockKVStore struct {
	mu    sync.Mutex
	data  map[string][]byte
	ttls  map[string]time.Duration
	getFn func(ctx context.Context, key string) ([]byte, error)
	setFn func(ctx context.Context, key string, value []byte, ttl time.Duration) error
	delFn func(ctx context.Context, keys ...string) error
	dels  [][]string
}

func newMockKVStore() *mockKVStore {
	return &mockKVStore{data: map[string][]byte{}, ttls: map[string]time.Duration{}}
}

func (m *mockKVStore) Get(ctx context.Context, key string) ([]byte, error) {
	if m.getFn != nil {
		return m.getFn(ctx, key)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	return v, nil
}

func (m *mockKVStore) SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if m.setFn != nil {
		return m.setFn(ctx, key, value, ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	m.ttls[key] = ttl
	return nil
}

func (m *mockKVStore) Del(ctx context.Context, keys ...string) error {
	m.mu.Lock()
	m.dels = append(m.dels, append([]string(nil), keys...))
	m.mu.Unlock()
	if m.delFn != nil {
		if err := m.delFn(ctx, keys...); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.data, k)
	}
	return nil
}

func (m *mockKVStore) Scan(_ context.Context, pattern string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	prefix := strings.TrimSuffix(pattern, "*")
	var keys []string
	for k := range m.data {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

func newCacheTotal() *prometheus.CounterVec {
	return prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "test_search_cache_total",
	}, []string{"result"})
}

func mustRequest(t *testing.T, q string, m mode.Mode, limit int) *request.Request {
	t.Helper()
	req, err := request.New(q, m, 1, limit)
	if err != nil {
		t.Fatalf("request.New: %v", err)
	}
	return &req
}

func newTestCache(t *testing.T, inner *mockSearcher, s store, cfg Config) *Cache {
	t.Helper()
	return New(inner, s, cfg, newCacheTotal(), zap.NewNop())
}
