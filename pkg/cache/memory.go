package cache

import (
	"context"
	"regexp"
	"strings"
	"sync"
	"time"
)

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

func (e memoryEntry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && !now.Before(e.expiresAt)
}

// memoryStore is the in-process tier. Expiry is checked lazily on read and
// swept periodically once Start has been called.
type memoryStore struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	now     func() time.Time

	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

func newMemoryStore(now func() time.Time) *memoryStore {
	if now == nil {
		now = time.Now
	}
	return &memoryStore{
		entries: make(map[string]memoryEntry),
		now:     now,
		stop:    make(chan struct{}),
	}
}

func (m *memoryStore) get(key string) ([]byte, bool) {
	now := m.now()
	m.mu.RLock()
	entry, ok := m.entries[key]
	m.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if entry.expired(now) {
		m.mu.Lock()
		if current, still := m.entries[key]; still && current.expired(now) {
			delete(m.entries, key)
		}
		m.mu.Unlock()
		return nil, false
	}
	return entry.value, true
}

func (m *memoryStore) set(key string, value []byte, ttl time.Duration) {
	entry := memoryEntry{value: value}
	if ttl > 0 {
		entry.expiresAt = m.now().Add(ttl)
	}
	m.mu.Lock()
	m.entries[key] = entry
	m.mu.Unlock()
}

func (m *memoryStore) delete(key string) {
	m.mu.Lock()
	delete(m.entries, key)
	m.mu.Unlock()
}

// deletePattern removes every key matching the glob and returns how many live
// entries were removed. Expired matches are dropped but not counted.
func (m *memoryStore) deletePattern(pattern string) int {
	re := compileGlob(pattern)
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for key, entry := range m.entries {
		if !re.MatchString(key) {
			continue
		}
		if !entry.expired(now) {
			count++
		}
		delete(m.entries, key)
	}
	return count
}

// sweep drops expired entries and returns how many were removed.
func (m *memoryStore) sweep() int {
	now := m.now()
	m.mu.Lock()
	defer m.mu.Unlock()
	removed := 0
	for key, entry := range m.entries {
		if entry.expired(now) {
			delete(m.entries, key)
			removed++
		}
	}
	return removed
}

func (m *memoryStore) len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

func (m *memoryStore) start(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	m.done = make(chan struct{})
	go func() {
		defer close(m.done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-m.stop:
				return
			case <-ticker.C:
				m.sweep()
			}
		}
	}()
}

func (m *memoryStore) close() {
	m.stopOnce.Do(func() {
		close(m.stop)
		if m.done != nil {
			<-m.done
		}
	})
}

// compileGlob turns a glob with * wildcards into an anchored regexp.
func compileGlob(pattern string) *regexp.Regexp {
	segments := strings.Split(pattern, "*")
	for i, segment := range segments {
		segments[i] = regexp.QuoteMeta(segment)
	}
	return regexp.MustCompile("^" + strings.Join(segments, ".*") + "$")
}
