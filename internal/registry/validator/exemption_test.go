package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"mhregistry/internal/registry"
	"mhregistry/internal/registry/models"
	"mhregistry/pkg/domain"
)

func exemptionRequest() registry.ExemptionRequest {
	return registry.ExemptionRequest{
		Submission: registry.Submission{MhrNumber: "000042", DocumentID: domain.FormatDocumentID(900004)},
		Note:       models.Note{Remarks: "home exempt: affixed to land"},
	}
}

func TestValidateExemption(t *testing.T) {
	assert.Empty(t, ValidateExemption(activeRegistration(), exemptionRequest(), true, testNow, nil))
}

func TestValidateExemptionAlreadyExempt(t *testing.T) {
	current := activeRegistration()
	current.Notes = []*models.Note{
		{DocumentID: "10000042", DocumentType: models.DocExrs, Status: models.NoteActive},
	}
	result := ValidateExemption(current, exemptionRequest(), true, testNow, nil)
	assert.Contains(t, result, MsgExemptExists)
}

func TestValidateExemptionBlockedStates(t *testing.T) {
	for _, status := range []models.RegistrationStatus{
		models.StatusExempt, models.StatusHistorical, models.StatusCancelled,
	} {
		current := activeRegistration()
		current.Status = status
		result := ValidateExemption(current, exemptionRequest(), true, testNow, nil)
		assert.Contains(t, result, MsgStateNotAllowed, "status %s", status)
	}
}

func TestValidateExemptionNonResidential(t *testing.T) {
	req := exemptionRequest()
	req.NonResidential = true
	assert.Equal(t, models.DocExnr, req.DocumentType())
	assert.Empty(t, ValidateExemption(activeRegistration(), req, true, testNow, nil))
}
