package registration

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"mhregistry/internal/registry/models"
	"mhregistry/pkg/domain"
	"mhregistry/pkg/platform/sentinel"
)

type RegistrationStoreSuite struct {
	suite.Suite
	store *InMemory
	ctx   context.Context
}

func (s *RegistrationStoreSuite) SetupTest() {
	s.store = NewInMemory()
	s.ctx = context.Background()
}

func TestRegistrationStoreSuite(t *testing.T) {
	suite.Run(t, new(RegistrationStoreSuite))
}

func (s *RegistrationStoreSuite) newBase(mhr domain.MhrNumber, docID domain.DocumentID) *models.Registration {
	return &models.Registration{
		ID:               1,
		MhrNumber:        mhr,
		RegistrationType: models.RegTypeManufacturedHome,
		Status:           models.StatusActive,
		RegistrationTs:   time.Now().UTC(),
		AccountID:        "PS12345",
		Document: &models.Document{
			DocumentID:   docID,
			DocumentType: models.DocReg101,
		},
	}
}

// TestCreateAndFind verifies base registrations round-trip by MHR number.
func (s *RegistrationStoreSuite) TestCreateAndFind() {
	s.Run("creates and finds by MHR number", func() {
		base := s.newBase("100001", "10000018")
		s.Require().NoError(s.store.Create(s.ctx, base))

		found, err := s.store.FindByMhrNumber(s.ctx, "100001")
		s.Require().NoError(err)
		s.Equal(base.MhrNumber, found.MhrNumber)
		s.Equal(models.StatusActive, found.Status)
	})

	s.Run("returns ErrNotFound for unknown MHR number", func() {
		_, err := s.store.FindByMhrNumber(s.ctx, "999999")
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("rejects duplicate MHR number", func() {
		base := s.newBase("100002", "10000026")
		s.Require().NoError(s.store.Create(s.ctx, base))

		dup := s.newBase("100002", "10000034")
		s.Require().ErrorIs(s.store.Create(s.ctx, dup), sentinel.ErrConflict)
	})
}

// TestDocumentUniqueness verifies document IDs are reserved chain-wide.
func (s *RegistrationStoreSuite) TestDocumentUniqueness() {
	base := s.newBase("100003", "10000042")
	s.Require().NoError(s.store.Create(s.ctx, base))

	exists, err := s.store.DocumentExists(s.ctx, "10000042")
	s.Require().NoError(err)
	s.True(exists)

	exists, err = s.store.DocumentExists(s.ctx, "10000059")
	s.Require().NoError(err)
	s.False(exists)

	s.Run("rejects a change reusing a registered document ID", func() {
		change := &models.Registration{
			ID:               2,
			MhrNumber:        base.MhrNumber,
			RegistrationType: models.RegTypeNote,
			Document: &models.Document{
				DocumentID:   "10000042",
				DocumentType: models.DocCau,
			},
		}
		s.Require().ErrorIs(s.store.SaveChange(s.ctx, base, change), sentinel.ErrConflict)
	})
}

// TestSaveChange verifies changes append to the chain in order.
func (s *RegistrationStoreSuite) TestSaveChange() {
	base := s.newBase("100004", "10000067")
	s.Require().NoError(s.store.Create(s.ctx, base))

	change := &models.Registration{
		ID:               2,
		MhrNumber:        base.MhrNumber,
		RegistrationType: models.RegTypeNote,
		Document: &models.Document{
			DocumentID:   "10000075",
			DocumentType: models.DocCau,
		},
	}
	s.Require().NoError(s.store.SaveChange(s.ctx, base, change))

	found, err := s.store.FindByMhrNumber(s.ctx, base.MhrNumber)
	s.Require().NoError(err)
	s.Require().Len(found.Changes, 1)
	s.Equal(models.RegTypeNote, found.Changes[0].RegistrationType)

	s.Run("returns ErrNotFound for an unknown base", func() {
		ghost := s.newBase("999998", "10000083")
		err := s.store.SaveChange(s.ctx, ghost, change)
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})
}

// TestUpdateStatus verifies staff lock transitions persist outside a change.
func (s *RegistrationStoreSuite) TestUpdateStatus() {
	base := s.newBase("100005", "10000091")
	s.Require().NoError(s.store.Create(s.ctx, base))

	s.Require().NoError(s.store.UpdateStatus(s.ctx, base.MhrNumber, models.StatusFrozen))

	found, err := s.store.FindByMhrNumber(s.ctx, base.MhrNumber)
	s.Require().NoError(err)
	s.Equal(models.StatusFrozen, found.Status)

	s.Require().ErrorIs(
		s.store.UpdateStatus(s.ctx, "999997", models.StatusActive), sentinel.ErrNotFound)
}

// TestListByAccount verifies account-scoped listing.
func (s *RegistrationStoreSuite) TestListByAccount() {
	first := s.newBase("100006", "10000109")
	second := s.newBase("100007", "10000117")
	other := s.newBase("100008", "10000125")
	other.AccountID = "PS99999"

	s.Require().NoError(s.store.Create(s.ctx, first))
	s.Require().NoError(s.store.Create(s.ctx, second))
	s.Require().NoError(s.store.Create(s.ctx, other))

	regs, err := s.store.ListByAccount(s.ctx, "PS12345")
	s.Require().NoError(err)
	s.Len(regs, 2)
}

// TestSequences verifies reserved identifiers are unique and well formed.
func (s *RegistrationStoreSuite) TestSequences() {
	mhr, err := s.store.NextMhrNumber(s.ctx)
	s.Require().NoError(err)
	s.True(mhr.Valid())

	next, err := s.store.NextMhrNumber(s.ctx)
	s.Require().NoError(err)
	s.NotEqual(mhr, next)

	docID, err := s.store.NextDocumentID(s.ctx)
	s.Require().NoError(err)
	s.True(docID.ChecksumValid())

	regID, err := s.store.NextRegistrationID(s.ctx)
	s.Require().NoError(err)
	regID2, err := s.store.NextRegistrationID(s.ctx)
	s.Require().NoError(err)
	s.Equal(regID+1, regID2)
}
