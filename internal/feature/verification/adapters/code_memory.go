package adapters

import (
	"context"
	"sync"
	"time"

	"login_backend/internal/feature/verification/usecase"
)

type memoryEntry struct {
	value     string
	expiresAt time.Time
}

// CodeMemory is an in-process usecase.CodeStore for single-instance development runs.
// Entries expire on access. Sweep (or Run) drops entries for phones that never come back.
type CodeMemory struct {
	mu        sync.Mutex
	codes     map[string]memoryEntry
	cooldowns map[string]time.Time
	now       func() time.Time
}

var _ usecase.CodeStore = (*CodeMemory)(nil)

// NewCodeMemory creates an empty store using the wall clock.
func NewCodeMemory() *CodeMemory {
	return NewCodeMemoryWithClock(time.Now)
}

// NewCodeMemoryWithClock creates an empty store reading time from now.
func NewCodeMemoryWithClock(now func() time.Time) *CodeMemory {
	return &CodeMemory{
		codes:     make(map[string]memoryEntry),
		cooldowns: make(map[string]time.Time),
		now:       now,
	}
}

func (m *CodeMemory) SetCode(_ context.Context, phone, code string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.codes[phone] = memoryEntry{value: code, expiresAt: m.now().Add(ttl)}
	return nil
}

func (m *CodeMemory) ConsumeCode(_ context.Context, phone, code string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.codes[phone]
	if !ok {
		return false, nil
	}
	if !m.now().Before(e.expiresAt) {
		delete(m.codes, phone)
		return false, nil
	}
	if e.value != code {
		return false, nil
	}
	delete(m.codes, phone)
	return true, nil
}

func (m *CodeMemory) AcquireCooldown(_ context.Context, phone string, ttl time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	if until, ok := m.cooldowns[phone]; ok && now.Before(until) {
		return false, nil
	}
	m.cooldowns[phone] = now.Add(ttl)
	return true, nil
}

func (m *CodeMemory) ReleaseCooldown(_ context.Context, phone string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.cooldowns, phone)
	return nil
}

// Sweep removes expired codes and cooldown markers and returns how many entries were dropped.
func (m *CodeMemory) Sweep() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	removed := 0
	for phone, e := range m.codes {
		if !now.Before(e.expiresAt) {
			delete(m.codes, phone)
			removed++
		}
	}
	for phone, until := range m.cooldowns {
		if !now.Before(until) {
			delete(m.cooldowns, phone)
			removed++
		}
	}
	return removed
}

// Run sweeps every interval until ctx is done.
func (m *CodeMemory) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			m.Sweep()
		case <-ctx.Done():
			return
		}
	}
}
