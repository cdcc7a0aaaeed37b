package draft

import (
	"context"
	"time"

	"mhregistry/internal/registry/models"
	"mhregistry/pkg/domain"
)

// DefaultTTL is how long a staged draft survives without being completed.
const DefaultTTL = 90 * 24 * time.Hour

// Store stages draft registrations until payment completes.
type Store interface {
	// Put creates or replaces a draft, refreshing its TTL.
	Put(ctx context.Context, draft *models.Draft) error

	// Get loads a draft by number, scoped to the owning account.
	Get(ctx context.Context, accountID domain.AccountID, number domain.DraftNumber) (*models.Draft, error)

	// Delete removes a completed or abandoned draft.
	Delete(ctx context.Context, accountID domain.AccountID, number domain.DraftNumber) error

	// ListByAccount returns the account's pending drafts.
	ListByAccount(ctx context.Context, accountID domain.AccountID) ([]*models.Draft, error)

	// NextDraftNumber reserves the next draft number from the sequence.
	NextDraftNumber(ctx context.Context) (domain.DraftNumber, error)
}
