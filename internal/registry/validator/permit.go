package validator

import (
	"time"

	"mhregistry/internal/registry"
	"mhregistry/internal/registry/models"
)

// ValidatePermit checks a transport permit registration (new, extension, or
// amendment) against the current chain.
func ValidatePermit(current *models.Registration, req registry.PermitRequest,
	isStaff bool, now time.Time, exists DocumentExists) string {
	e := &errs{}
	docType := req.DocumentType()

	validateDocID(e, req.DocumentID, isStaff, exists)

	// A permit on an exempt home is a staff-only path: the location change
	// may bring the home back into the registry's jurisdiction.
	if current.Status == models.StatusExempt {
		e.addIf(!isStaff, MsgPermitRequiresStaff)
	} else {
		validateState(e, current, docType)
	}

	switch docType {
	case models.DocReg103:
		e.addIf(req.NewLocation == nil, MsgPermitLocationRequired)
	case models.DocAmendPermit:
		e.addIf(req.NewLocation == nil, MsgPermitLocationRequired)
		e.addIf(current.ActivePermitNote() == nil, MsgPermitNoActive)
	case models.DocReg103E:
		// Extensions clone the existing location; a new one is not expected.
		e.addIf(current.ActivePermitNote() == nil, MsgPermitNoActive)
	}

	if req.ExpiryTs != nil {
		e.addIf(!req.ExpiryTs.After(now), MsgExpiryElapsed)
	}

	return e.String()
}
