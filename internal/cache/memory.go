package cache

import (
	"context"
	"sync"
)

// MemoryRevalidator tracks stale pages in process. It is the fallback when no
// redis address is configured and the implementation used in tests.
type MemoryRevalidator struct {
	mu    sync.Mutex
	stale map[string]struct{}
}

// NewMemoryRevalidator creates an in-process Revalidator.
func NewMemoryRevalidator() *MemoryRevalidator {
	return &MemoryRevalidator{stale: make(map[string]struct{})}
}

// Revalidate marks the given page paths stale.
func (m *MemoryRevalidator) Revalidate(_ context.Context, paths ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range paths {
		m.stale[p] = struct{}{}
	}
	return nil
}

// ConsumeStale reports whether the page was marked stale and clears the mark,
// the way a renderer would on its next fetch.
func (m *MemoryRevalidator) ConsumeStale(path string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.stale[path]
	delete(m.stale, path)
	return ok
}
