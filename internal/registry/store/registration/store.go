package registration

import (
	"context"
	"time"

	"mhregistry/internal/registry/models"
	"mhregistry/pkg/domain"
)

// NoteRef identifies one note on a chain for batch processing.
type NoteRef struct {
	MhrNumber  domain.MhrNumber
	DocumentID domain.DocumentID
}

// Store persists registration chains.
//
// Implementations are append-only: SaveChange inserts the change
// registration and upserts child rows whose status or change stamp moved,
// but no row is ever deleted.
type Store interface {
	// Create persists a new base registration with its children.
	Create(ctx context.Context, reg *models.Registration) error

	// SaveChange appends a change registration to the base chain and
	// persists every child mutation the change caused, atomically.
	SaveChange(ctx context.Context, base *models.Registration, change *models.Registration) error

	// FindByMhrNumber loads the current aggregate: the base registration
	// with all chain children and ordered change registrations.
	FindByMhrNumber(ctx context.Context, mhrNumber domain.MhrNumber) (*models.Registration, error)

	// ListByAccount returns the base registrations owned by an account.
	ListByAccount(ctx context.Context, accountID domain.AccountID) ([]*models.Registration, error)

	// UpdateStatus persists a base status change outside a change
	// registration (staff review lock/unlock).
	UpdateStatus(ctx context.Context, mhrNumber domain.MhrNumber, status models.RegistrationStatus) error

	// DocumentExists reports whether a document ID is already registered.
	DocumentExists(ctx context.Context, documentID domain.DocumentID) (bool, error)

	// NextMhrNumber reserves the next MHR number from the sequence.
	NextMhrNumber(ctx context.Context) (domain.MhrNumber, error)

	// NextDocumentID reserves the next generated document ID.
	NextDocumentID(ctx context.Context) (domain.DocumentID, error)

	// NextRegistrationID reserves the next registration row ID.
	NextRegistrationID(ctx context.Context) (int64, error)

	// ListExpirableNotes returns the ACTIVE notes whose expiry has elapsed
	// as of the given instant.
	ListExpirableNotes(ctx context.Context, asOf time.Time) ([]NoteRef, error)

	// ExpireNote flips one ACTIVE note to EXPIRED. Returns ErrNotFound when
	// the note is absent or no longer active.
	ExpireNote(ctx context.Context, documentID domain.DocumentID) error
}
