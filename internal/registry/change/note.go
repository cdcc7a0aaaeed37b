package change

import (
	"mhregistry/internal/registry"
	"mhregistry/internal/registry/models"
)

// ApplyNote attaches a unit note to the chain. For the cancellation
// document types (NCAN, NRED) the referenced note is flipped to CANCELLED
// and stamped with the new registration; the original row is preserved.
// A plain caution without an explicit expiry gets the configured term.
func ApplyNote(cfg Config, current *models.Registration, req registry.NoteRequest,
	newReg *models.Registration) *models.Registration {
	note := req.Note
	note.RegistrationID = newReg.ID
	note.DocumentID = newReg.Document.DocumentID
	if note.Status == "" {
		note.Status = models.NoteActive
	}
	if note.DocumentType == models.DocCau && note.ExpiryTs == nil && cfg.CautionTermDays > 0 {
		expiry := newReg.RegistrationTs.AddDate(0, 0, cfg.CautionTermDays)
		note.ExpiryTs = &expiry
	}

	if note.DocumentType.IsCancellation() {
		if target := current.FindNote(req.UpdateDocumentID); target != nil {
			target.ApplyCancellation(newReg.ID)
		}
	}

	current.Notes = append(current.Notes, &note)
	newReg.Notes = append(newReg.Notes, &note)
	newReg.Status = current.Status
	return newReg
}
