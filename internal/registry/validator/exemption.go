package validator

import (
	"time"

	"mhregistry/internal/registry"
	"mhregistry/internal/registry/models"
)

// ValidateExemption checks a residential or non-residential exemption
// against the current chain.
func ValidateExemption(current *models.Registration, req registry.ExemptionRequest,
	isStaff bool, now time.Time, exists DocumentExists) string {
	e := &errs{}
	docType := req.DocumentType()

	validateDocID(e, req.DocumentID, isStaff, exists)
	validateState(e, current, docType)

	// One exemption at a time; reversing requires an EXRE admin registration.
	e.addIf(current.ActiveExemptionNote() != nil, MsgExemptExists)

	note := req.Note
	note.DocumentType = docType
	validateNoteTimes(e, &note, now)
	validateNoticeParty(e, &note)

	return e.String()
}
