package validator

import (
	"time"

	"mhregistry/internal/registry"
	"mhregistry/internal/registry/models"
)

// ValidateNote checks a unit note registration against the current chain.
// Returns "" when valid, otherwise the concatenation of every violation.
func ValidateNote(current *models.Registration, req registry.NoteRequest,
	isStaff bool, now time.Time, exists DocumentExists) string {
	e := &errs{}

	e.addIf(!req.Note.DocumentType.IsUnitNote(), MsgNoteDocTypeInvalid)
	validateDocID(e, req.DocumentID, isStaff, exists)
	validateState(e, current, req.Note.DocumentType)
	validateNoteTimes(e, &req.Note, now)
	validateNoticeParty(e, &req.Note)

	if req.Note.DocumentType.IsCancellation() {
		validateCancelTarget(e, current, req.Note.DocumentType, req.UpdateDocumentID)
	}

	return e.String()
}
