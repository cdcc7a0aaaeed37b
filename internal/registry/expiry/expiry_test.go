package expiry

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mhregistry/internal/registry/models"
	"mhregistry/internal/registry/store/registration"
	"mhregistry/pkg/domain"
)

var sweepNow = time.Date(2026, 5, 1, 3, 0, 0, 0, time.UTC)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var seedSeq int64

func seedNote(t *testing.T, store *registration.InMemory, mhr domain.MhrNumber,
	docID domain.DocumentID, expiry *time.Time) {
	t.Helper()
	seedSeq++
	require.NoError(t, store.Create(context.Background(), &models.Registration{
		ID:               seedSeq,
		MhrNumber:        mhr,
		RegistrationType: models.RegTypeManufacturedHome,
		Status:           models.StatusActive,
		RegistrationTs:   sweepNow.Add(-90 * 24 * time.Hour),
		AccountID:        "PS12345",
		Document:         &models.Document{DocumentID: docID, DocumentType: models.DocReg101},
		Notes: []*models.Note{
			{DocumentID: docID, DocumentType: models.DocCauE,
				Status: models.NoteActive, ExpiryTs: expiry},
		},
	}))
}

func TestRunExpiresElapsedNotes(t *testing.T) {
	store := registration.NewInMemory()
	elapsed := sweepNow.Add(-time.Hour)
	future := sweepNow.Add(time.Hour)
	seedNote(t, store, "100001", "10000018", &elapsed)
	seedNote(t, store, "100002", "10000027", &future)

	runner := NewRunner(store, testLogger())
	count, err := runner.Run(context.Background(), sweepNow)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	reg, err := store.FindByMhrNumber(context.Background(), "100001")
	require.NoError(t, err)
	assert.Equal(t, models.NoteExpired, reg.Notes[0].Status)

	reg, err = store.FindByMhrNumber(context.Background(), "100002")
	require.NoError(t, err)
	assert.Equal(t, models.NoteActive, reg.Notes[0].Status)
}

func TestRunIsIdempotent(t *testing.T) {
	store := registration.NewInMemory()
	elapsed := sweepNow.Add(-time.Hour)
	seedNote(t, store, "100001", "10000018", &elapsed)

	runner := NewRunner(store, testLogger())
	count, err := runner.Run(context.Background(), sweepNow)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	count, err = runner.Run(context.Background(), sweepNow)
	require.NoError(t, err)
	assert.Zero(t, count)
}

// failingStore wraps the memory store and fails ExpireNote for one note to
// exercise per-item error isolation.
type failingStore struct {
	*registration.InMemory
	mu      sync.Mutex
	failFor domain.DocumentID
	calls   int
}

func (s *failingStore) ExpireNote(ctx context.Context, documentID domain.DocumentID) error {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	if documentID == s.failFor {
		return errors.New("deadlock detected")
	}
	return s.InMemory.ExpireNote(ctx, documentID)
}

func TestRunSkipsFailingNotes(t *testing.T) {
	inner := registration.NewInMemory()
	elapsed := sweepNow.Add(-time.Hour)
	seedNote(t, inner, "100001", "10000018", &elapsed)
	seedNote(t, inner, "100002", "10000027", &elapsed)
	store := &failingStore{InMemory: inner, failFor: "10000018"}

	runner := NewRunner(store, testLogger(), WithConcurrency(2))
	count, err := runner.Run(context.Background(), sweepNow)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	assert.Equal(t, 2, store.calls)

	reg, err := inner.FindByMhrNumber(context.Background(), "100001")
	require.NoError(t, err)
	assert.Equal(t, models.NoteActive, reg.Notes[0].Status, "failed note left for the next run")
}

func TestRunFatalOnScanFailure(t *testing.T) {
	runner := NewRunner(&brokenStore{}, testLogger())
	_, err := runner.Run(context.Background(), sweepNow)
	require.Error(t, err)
}

type brokenStore struct{}

func (s *brokenStore) ListExpirableNotes(context.Context, time.Time) ([]registration.NoteRef, error) {
	return nil, errors.New("connection refused")
}

func (s *brokenStore) ExpireNote(context.Context, domain.DocumentID) error { return nil }
