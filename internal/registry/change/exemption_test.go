package change

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mhregistry/internal/registry"
	"mhregistry/internal/registry/models"
)

func TestApplyExemptionCancelsOpenPermit(t *testing.T) {
	expiry := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	current := chainWithLocation()
	current.Notes = []*models.Note{
		{RegistrationID: 1, DocumentID: "10000034", DocumentType: models.DocReg103,
			Status: models.NoteActive, ExpiryTs: &expiry},
	}

	newReg := newChangeReg(4, models.DocExrs)
	req := registry.ExemptionRequest{Note: models.Note{Remarks: "affixed to land"}}
	ApplyExemption(current, req, newReg)

	// Registration exempt, permit note cancelled rather than left active.
	assert.Equal(t, models.StatusExempt, current.Status)
	assert.Equal(t, models.StatusExempt, newReg.Status)
	assert.Equal(t, models.NoteCancelled, current.Notes[0].Status)
	assert.EqualValues(t, 4, current.Notes[0].ChangeRegistrationID)

	// The exemption note is attached and active.
	exemption := current.ActiveExemptionNote()
	require.NotNil(t, exemption)
	assert.Equal(t, models.DocExrs, exemption.DocumentType)
	assert.Equal(t, "affixed to land", exemption.Remarks)
	assert.Equal(t, newReg.Document.DocumentID, exemption.DocumentID)
}

func TestApplyExemptionCancelsAmendedPermit(t *testing.T) {
	// A permit last touched by an amendment is still the open permit; the
	// exemption must close it like any other.
	expiry := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	current := chainWithLocation()
	current.Notes = []*models.Note{
		{RegistrationID: 2, DocumentID: "10000034", DocumentType: models.DocAmendPermit,
			Status: models.NoteActive, ExpiryTs: &expiry},
	}

	newReg := newChangeReg(5, models.DocExrs)
	ApplyExemption(current, registry.ExemptionRequest{}, newReg)

	assert.Equal(t, models.StatusExempt, current.Status)
	assert.Equal(t, models.NoteCancelled, current.Notes[0].Status)
	assert.EqualValues(t, 5, current.Notes[0].ChangeRegistrationID)
}

func TestApplyExemptionNonResidential(t *testing.T) {
	current := chainWithLocation()
	newReg := newChangeReg(4, models.DocExnr)
	req := registry.ExemptionRequest{NonResidential: true}
	ApplyExemption(current, req, newReg)

	exemption := current.ActiveExemptionNote()
	require.NotNil(t, exemption)
	assert.Equal(t, models.DocExnr, exemption.DocumentType)
}
