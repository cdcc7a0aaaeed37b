package change

import (
	"mhregistry/internal/registry"
	"mhregistry/internal/registry/models"
)

// ApplyExemption declares the home exempt: the chain moves to EXEMPT, the
// exemption note is attached, and any open transport permit note is
// cancelled rather than left active through the exempt period.
func ApplyExemption(current *models.Registration, req registry.ExemptionRequest,
	newReg *models.Registration) *models.Registration {
	note := req.Note
	note.RegistrationID = newReg.ID
	note.DocumentID = newReg.Document.DocumentID
	note.DocumentType = req.DocumentType()
	note.Status = models.NoteActive

	if permit := current.ActivePermitNote(); permit != nil {
		permit.ApplyCancellation(newReg.ID)
	}

	current.Notes = append(current.Notes, &note)
	newReg.Notes = append(newReg.Notes, &note)

	current.ApplyTransition(models.StatusExempt)
	newReg.Status = models.StatusExempt
	return newReg
}
