package change

import (
	"mhregistry/internal/registry"
	"mhregistry/internal/registry/models"
)

// ApplyAdmin executes a staff correction or administrative registration.
//
// EXRE reverses an exemption; CAN cancels a note; REG_103R cancels the open
// permit and restores the pre-permit location; AMEND_PERMIT relocates under
// the open permit; PUBA/REGC/STAT record document corrections, optionally
// replacing the location. Location restores and replacements carry the same
// cross-province status side effects as permits.
func ApplyAdmin(cfg Config, current *models.Registration, req registry.AdminRequest,
	newReg *models.Registration) *models.Registration {
	switch req.DocumentType {
	case models.DocExre:
		if target := current.FindNote(req.UpdateDocumentID); target != nil {
			target.ApplyCancellation(newReg.ID)
		}
		if current.Status == models.StatusExempt {
			// The home returns to the registry unless its location still
			// sits outside the home province.
			loc := current.ActiveLocation()
			if loc == nil || loc.InProvince(cfg.HomeProvince) {
				current.ApplyTransition(models.StatusActive)
			}
		}

	case models.DocCan:
		if target := current.FindNote(req.UpdateDocumentID); target != nil {
			target.ApplyCancellation(newReg.ID)
		}

	case models.DocReg103R:
		cancelPermit(cfg, current, newReg)

	case models.DocAmendPermit:
		permitReq := registry.PermitRequest{
			Submission:  req.Submission,
			Amendment:   true,
			NewLocation: req.NewLocation,
		}
		return ApplyPermit(cfg, current, permitReq, newReg, newReg.RegistrationTs)

	default:
		// PUBA/REGC/STAT corrections: the document itself is the record;
		// a supplied location replaces the active one.
		if req.NewLocation != nil {
			loc := supersedeLocation(current, req.NewLocation, newReg.ID)
			newReg.Location = loc
			applyLocationStatusEffects(cfg, current, loc)
		}
	}

	if req.Note != nil {
		note := *req.Note
		note.RegistrationID = newReg.ID
		note.DocumentID = newReg.Document.DocumentID
		if note.Status == "" {
			note.Status = models.NoteActive
		}
		current.Notes = append(current.Notes, &note)
		newReg.Notes = append(newReg.Notes, &note)
	}

	newReg.Status = current.Status
	return newReg
}

// cancelPermit flips the open permit note to CANCELLED and restores the
// location the permit superseded.
func cancelPermit(cfg Config, current *models.Registration, newReg *models.Registration) {
	permit := current.ActivePermitNote()
	if permit == nil {
		return
	}
	permit.ApplyCancellation(newReg.ID)

	// The pre-permit location is the one the permit registration stamped.
	var restored *models.Location
	for _, l := range current.Locations {
		if l.ChangeRegistrationID == permit.RegistrationID {
			restored = l.Clone(newReg.ID)
			break
		}
	}
	if restored == nil {
		return
	}
	loc := supersedeLocation(current, restored, newReg.ID)
	newReg.Location = loc
	applyLocationStatusEffects(cfg, current, loc)
}
