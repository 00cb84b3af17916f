package gallery

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

// MemoryStore is a process-local Store.
type MemoryStore struct {
	clock clockwork.Clock

	mu      sync.RWMutex
	records []Record // oldest first
	byID    map[string]int
}

// NewMemoryStore creates an empty store. A nil clock uses real time.
func NewMemoryStore(clock clockwork.Clock) *MemoryStore {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &MemoryStore{clock: clock, byID: make(map[string]int)}
}

func (s *MemoryStore) Add(_ context.Context, img Image) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// ids are minted under the lock so their order matches append order.
	id, err := uuid.NewV7()
	if err != nil {
		return Record{}, fmt.Errorf("generate image id: %w", err)
	}

	rec := Record{
		ID:        id.String(),
		Name:      img.Name,
		Size:      img.Size,
		MediaType: img.MediaType,
		SourceURI: img.SourceURI,
		AddedAt:   s.clock.Now(),
	}
	s.byID[rec.ID] = len(s.records)
	s.records = append(s.records, rec)

	return rec, nil
}

func (s *MemoryStore) List(context.Context) ([]Record, error) {
	s.mu.RLock()
	out := slices.Clone(s.records)
	s.mu.RUnlock()

	slices.Reverse(out)
	return out, nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i, ok := s.byID[id]
	if !ok {
		return Record{}, ErrNotFound
	}
	return s.records[i], nil
}

func (s *MemoryStore) Clear(context.Context) error {
	s.mu.Lock()
	s.records = nil
	s.byID = make(map[string]int)
	s.mu.Unlock()
	return nil
}
