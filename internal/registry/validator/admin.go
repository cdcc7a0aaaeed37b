package validator

import (
	"time"

	"mhregistry/internal/registry"
	"mhregistry/internal/registry/models"
)

// ValidateAdmin checks a staff correction or administrative registration.
// Admin registrations are staff-only; they are also the only document types
// permitted to act on EXEMPT and FROZEN chains.
func ValidateAdmin(current *models.Registration, req registry.AdminRequest,
	isStaff bool, now time.Time, exists DocumentExists) string {
	e := &errs{}

	if !isStaff {
		e.add(MsgGroupNotAllowed)
	}
	validateDocID(e, req.DocumentID, isStaff, exists)
	validateState(e, current, req.DocumentType)

	switch req.DocumentType {
	case models.DocExre, models.DocCan:
		validateCancelTarget(e, current, req.DocumentType, req.UpdateDocumentID)
	case models.DocReg103R, models.DocAmendPermit:
		e.addIf(current.ActivePermitNote() == nil, MsgPermitNoActive)
		if req.DocumentType == models.DocAmendPermit {
			e.addIf(req.NewLocation == nil, MsgPermitLocationRequired)
		}
	}

	if req.Note != nil {
		validateNoteTimes(e, req.Note, now)
		validateNoticeParty(e, req.Note)
	}

	return e.String()
}
