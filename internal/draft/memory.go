package draft

import (
	"context"
	"encoding/json"
	"sync"
	"time"
)

type entry struct {
	data       []byte
	expiresAt  time.Time
	consumedAt *time.Time
}

type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]*entry
	ttl     time.Duration
	now     func() time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]*entry),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (s *MemoryStore) Put(_ context.Context, sessionID string, d Draft) error {
	data, err := json.Marshal(d)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[sessionID] = &entry{data: data, expiresAt: s.now().Add(s.ttl)}
	return nil
}

func (s *MemoryStore) Peek(_ context.Context, sessionID string) (*Draft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.live(sessionID)
	if !ok {
		return nil, ErrNotFound
	}
	return decode(e.data)
}

func (s *MemoryStore) Take(_ context.Context, sessionID string) (*Draft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.live(sessionID)
	if !ok {
		return nil, ErrNotFound
	}
	now := s.now()
	e.consumedAt = &now
	return decode(e.data)
}

func (s *MemoryStore) Discard(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, sessionID)
	return nil
}

// Sweep drops expired and consumed entries.
func (s *MemoryStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	now := s.now()
	for k, e := range s.entries {
		if e.consumedAt != nil || !now.Before(e.expiresAt) {
			delete(s.entries, k)
			n++
		}
	}
	return n
}

// Run sweeps on every tick until ctx is done.
func (s *MemoryStore) Run(ctx context.Context, every time.Duration) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			s.Sweep()
		}
	}
}

// live must be called with mu held.
func (s *MemoryStore) live(sessionID string) (*entry, bool) {
	e, ok := s.entries[sessionID]
	if !ok || e.consumedAt != nil || !s.now().Before(e.expiresAt) {
		return nil, false
	}
	return e, true
}

func decode(data []byte) (*Draft, error) {
	var d Draft
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, err
	}
	return &d, nil
}
