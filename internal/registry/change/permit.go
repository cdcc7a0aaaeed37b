package change

import (
	"time"

	"mhregistry/internal/registry"
	"mhregistry/internal/registry/models"
)

// ApplyPermit executes a transport permit registration: new permits create
// a location and a permit note with a computed expiry; extensions clone the
// active location and carry the expiry forward; amendments replace the
// location while keeping the note expiry. Location changes that cross the
// home-province boundary flip the registration status as a side effect.
func ApplyPermit(cfg Config, current *models.Registration, req registry.PermitRequest,
	newReg *models.Registration, now time.Time) *models.Registration {
	docType := req.DocumentType()
	prior := current.ActivePermitNote()

	note := &models.Note{
		RegistrationID: newReg.ID,
		DocumentID:     newReg.Document.DocumentID,
		DocumentType:   docType,
		Status:         models.NoteActive,
	}

	var location *models.Location
	switch docType {
	case models.DocReg103:
		expiry := ComputePermitExpiry(now, cfg.PermitTermDays)
		note.ExpiryTs = &expiry
		location = supersedeLocation(current, req.NewLocation, newReg.ID)

	case models.DocReg103E:
		// Extensions keep the home where the open permit put it.
		location = supersedeLocation(current, current.ActiveLocation().Clone(newReg.ID), newReg.ID)
		switch {
		case req.ExpiryTs != nil:
			note.ExpiryTs = req.ExpiryTs
		case prior != nil && prior.ExpiryTs != nil:
			carried := prior.ExpiryTs.AddDate(0, 0, cfg.PermitTermDays)
			note.ExpiryTs = &carried
		default:
			expiry := ComputePermitExpiry(now, cfg.PermitTermDays)
			note.ExpiryTs = &expiry
		}

	case models.DocAmendPermit:
		if prior != nil {
			note.ExpiryTs = prior.ExpiryTs
		}
		location = supersedeLocation(current, req.NewLocation, newReg.ID)
	}

	// The superseded permit note is complete once its successor exists.
	if prior != nil {
		prior.Status = models.NoteCompleted
		prior.ChangeRegistrationID = newReg.ID
	}

	current.Notes = append(current.Notes, note)
	newReg.Notes = append(newReg.Notes, note)
	newReg.Location = location

	applyLocationStatusEffects(cfg, current, location)
	newReg.Status = current.Status
	return newReg
}
