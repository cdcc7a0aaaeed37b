package draft

import (
	"context"
	"fmt"
	"sync"

	"mhregistry/internal/registry/models"
	"mhregistry/pkg/domain"
	"mhregistry/pkg/platform/sentinel"
)

// InMemory is a mutex-guarded draft store for unit tests and deployments
// without Redis. TTL is not enforced; drafts live until deleted.
type InMemory struct {
	mu     sync.RWMutex
	drafts map[domain.DraftNumber]*models.Draft
	seq    int64
}

// NewInMemory constructs an empty in-memory draft store.
func NewInMemory() *InMemory {
	return &InMemory{
		drafts: make(map[domain.DraftNumber]*models.Draft),
		seq:    1000000,
	}
}

func (s *InMemory) Put(_ context.Context, draft *models.Draft) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.drafts[draft.DraftNumber] = draft
	return nil
}

func (s *InMemory) Get(_ context.Context, accountID domain.AccountID, number domain.DraftNumber) (*models.Draft, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	draft, ok := s.drafts[number]
	if !ok || draft.AccountID != accountID {
		return nil, fmt.Errorf("draft %s: %w", number, sentinel.ErrNotFound)
	}
	return draft, nil
}

func (s *InMemory) Delete(_ context.Context, accountID domain.AccountID, number domain.DraftNumber) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	draft, ok := s.drafts[number]
	if !ok || draft.AccountID != accountID {
		return fmt.Errorf("draft %s: %w", number, sentinel.ErrNotFound)
	}
	delete(s.drafts, number)
	return nil
}

func (s *InMemory) ListByAccount(_ context.Context, accountID domain.AccountID) ([]*models.Draft, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var drafts []*models.Draft
	for _, d := range s.drafts {
		if d.AccountID == accountID {
			drafts = append(drafts, d)
		}
	}
	return drafts, nil
}

func (s *InMemory) NextDraftNumber(_ context.Context) (domain.DraftNumber, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	return domain.FormatDraftNumber(s.seq), nil
}
