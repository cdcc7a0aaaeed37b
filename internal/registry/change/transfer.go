package change

import (
	"mhregistry/internal/registry"
	"mhregistry/internal/registry/models"
)

// ApplyTransfer reconciles owner groups for a transfer/transmission. The
// response view of the additions comes from the same reconciled set, with
// carried-forward groups suppressed.
func ApplyTransfer(current *models.Registration, req registry.TransferRequest,
	newReg *models.Registration) *models.Registration {
	ReconcileOwnerGroups(current, req.DeleteOwnerGroups, req.AddOwnerGroups, newReg.ID)
	newReg.AddOwnerGroups = ReportAddedGroups(current.OwnerGroups, newReg.ID)
	return newReg
}

// ReconcileOwnerGroups computes the new ACTIVE owner-group set: current
// ACTIVE groups minus the delete list, plus the add list, with duplicate
// group IDs never introduced.
//
// The operation is idempotent: a second application with the same lists
// finds the deletes already PREVIOUS and the adds already ACTIVE, and
// changes nothing. Both the persistence path and the report view derive
// from this single implementation (see ReportAddedGroups).
func ReconcileOwnerGroups(current *models.Registration, deletes []registry.GroupRef,
	adds []*models.OwnerGroup, changeRegID int64) []*models.OwnerGroup {
	for _, ref := range deletes {
		if g := current.FindOwnerGroup(ref.GroupID); g != nil {
			g.ApplyRemoval(changeRegID)
		}
	}

	for _, add := range adds {
		if add.GroupID == 0 {
			add.GroupID = current.NextGroupID()
		}
		if current.FindOwnerGroup(add.GroupID) != nil {
			// Already active under this ID; never introduce a duplicate.
			continue
		}
		g := *add
		g.Status = models.GroupActive
		g.RegistrationID = changeRegID
		g.ChangeRegistrationID = 0
		current.OwnerGroups = append(current.OwnerGroups, &g)
	}

	return current.ActiveOwnerGroups()
}

// ReportAddedGroups derives the response view of the groups a change
// introduced, suppressing groups flagged as carried-forward (existing).
func ReportAddedGroups(groups []*models.OwnerGroup, changeRegID int64) []*models.OwnerGroup {
	var added []*models.OwnerGroup
	for _, g := range groups {
		if g.RegistrationID == changeRegID && !g.Existing {
			added = append(added, g)
		}
	}
	return added
}
