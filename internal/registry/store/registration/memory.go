package registration

import (
	"context"
	"fmt"
	"sync"
	"time"

	"mhregistry/internal/registry/models"
	"mhregistry/pkg/domain"
	"mhregistry/pkg/platform/sentinel"
)

// InMemory is a mutex-guarded registration store for unit tests and local
// development. It mirrors the PostgreSQL store's semantics, including
// append-only child history.
type InMemory struct {
	mu        sync.RWMutex
	chains    map[domain.MhrNumber]*models.Registration
	documents map[domain.DocumentID]bool
	mhrSeq    int64
	docSeq    int64
	regSeq    int64
}

// NewInMemory constructs an empty in-memory registration store.
func NewInMemory() *InMemory {
	return &InMemory{
		chains:    make(map[domain.MhrNumber]*models.Registration),
		documents: make(map[domain.DocumentID]bool),
		mhrSeq:    100000,
		docSeq:    5000000,
	}
}

func (s *InMemory) Create(_ context.Context, reg *models.Registration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.chains[reg.MhrNumber]; ok {
		return fmt.Errorf("registration %s: %w", reg.MhrNumber, sentinel.ErrConflict)
	}
	if reg.Document != nil {
		if s.documents[reg.Document.DocumentID] {
			return fmt.Errorf("document %s: %w", reg.Document.DocumentID, sentinel.ErrConflict)
		}
		s.documents[reg.Document.DocumentID] = true
	}
	s.chains[reg.MhrNumber] = reg
	return nil
}

func (s *InMemory) SaveChange(_ context.Context, base *models.Registration, change *models.Registration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.chains[base.MhrNumber]; !ok {
		return fmt.Errorf("registration %s: %w", base.MhrNumber, sentinel.ErrNotFound)
	}
	if change.Document != nil {
		if s.documents[change.Document.DocumentID] {
			return fmt.Errorf("document %s: %w", change.Document.DocumentID, sentinel.ErrConflict)
		}
		s.documents[change.Document.DocumentID] = true
	}
	base.AppendChange(change)
	s.chains[base.MhrNumber] = base
	return nil
}

func (s *InMemory) FindByMhrNumber(_ context.Context, mhrNumber domain.MhrNumber) (*models.Registration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	reg, ok := s.chains[mhrNumber]
	if !ok {
		return nil, fmt.Errorf("registration %s: %w", mhrNumber, sentinel.ErrNotFound)
	}
	return reg, nil
}

func (s *InMemory) ListByAccount(_ context.Context, accountID domain.AccountID) ([]*models.Registration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var regs []*models.Registration
	for _, reg := range s.chains {
		if reg.AccountID == accountID {
			regs = append(regs, reg)
		}
	}
	return regs, nil
}

func (s *InMemory) UpdateStatus(_ context.Context, mhrNumber domain.MhrNumber, status models.RegistrationStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	reg, ok := s.chains[mhrNumber]
	if !ok {
		return fmt.Errorf("registration %s: %w", mhrNumber, sentinel.ErrNotFound)
	}
	reg.Status = status
	return nil
}

func (s *InMemory) DocumentExists(_ context.Context, documentID domain.DocumentID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.documents[documentID], nil
}

func (s *InMemory) ListExpirableNotes(_ context.Context, asOf time.Time) ([]NoteRef, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var refs []NoteRef
	for _, reg := range s.chains {
		for _, n := range reg.Notes {
			if n.Status == models.NoteActive && n.ExpiryTs != nil && !n.ExpiryTs.After(asOf) {
				refs = append(refs, NoteRef{MhrNumber: reg.MhrNumber, DocumentID: n.DocumentID})
			}
		}
	}
	return refs, nil
}

func (s *InMemory) ExpireNote(_ context.Context, documentID domain.DocumentID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, reg := range s.chains {
		for _, n := range reg.Notes {
			if n.DocumentID == documentID && n.Status == models.NoteActive {
				n.Status = models.NoteExpired
				return nil
			}
		}
	}
	return fmt.Errorf("note %s: %w", documentID, sentinel.ErrNotFound)
}

func (s *InMemory) NextMhrNumber(_ context.Context) (domain.MhrNumber, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mhrSeq++
	return domain.FormatMhrNumber(s.mhrSeq), nil
}

func (s *InMemory) NextDocumentID(_ context.Context) (domain.DocumentID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docSeq++
	return domain.FormatDocumentID(s.docSeq), nil
}

func (s *InMemory) NextRegistrationID(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.regSeq++
	return s.regSeq, nil
}
