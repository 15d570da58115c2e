package lease

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

type memoryLease struct {
	mu      sync.Mutex
	holders map[string]memoryHolder
	now     func() time.Time
}

type memoryHolder struct {
	token     string
	expiresAt time.Time
}

// NewMemory returns a process-local lease for single-instance deployments and tests.
func NewMemory() Lease {
	return &memoryLease{holders: map[string]memoryHolder{}, now: time.Now}
}

func (m *memoryLease) Acquire(ctx context.Context, key string, ttl time.Duration) (func(), bool, error) {
	if err := ctx.Err(); err != nil {
		return noop, false, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	if h, held := m.holders[key]; held && now.Before(h.expiresAt) {
		return noop, false, nil
	}
	token := uuid.NewString()
	m.holders[key] = memoryHolder{token: token, expiresAt: now.Add(ttl)}

	var once sync.Once
	release := func() {
		once.Do(func() {
			m.mu.Lock()
			defer m.mu.Unlock()
			if h, held := m.holders[key]; held && h.token == token {
				delete(m.holders, key)
			}
		})
	}
	return release, true, nil
}
