package validator

import (
	"time"

	"github.com/shopspring/decimal"

	"mhregistry/internal/registry"
	"mhregistry/internal/registry/models"
)

// ValidateTransfer checks a transfer/transmission against the current
// chain, including the owner-group add/delete reconciliation rules.
func ValidateTransfer(current *models.Registration, req registry.TransferRequest,
	isStaff bool, group registry.Group, now time.Time, exists DocumentExists) string {
	e := &errs{}

	validateDocID(e, req.DocumentID, isStaff, exists)
	validateState(e, current, req.DocumentType)

	// Qualified suppliers may submit sale and death transfers only; other
	// transmission documents need staff review.
	if !isStaff && group == registry.GroupQualifiedSupplier {
		switch req.DocumentType {
		case models.DocTran, models.DocDeat:
		default:
			e.add(MsgGroupNotAllowed)
		}
	}

	validateOwnerGroups(e, current, req.DeleteOwnerGroups, req.AddOwnerGroups)

	return e.String()
}

// validateOwnerGroups applies the reconciliation rules: deletes must name
// existing ACTIVE groups, adds must not collide with retained group IDs,
// added groups need owners, and the resulting COMMON interests must total 1.
func validateOwnerGroups(e *errs, current *models.Registration,
	deletes []registry.GroupRef, adds []*models.OwnerGroup) {
	active := current.ActiveOwnerGroups()

	deleted := make(map[int]bool, len(deletes))
	for _, ref := range deletes {
		deleted[ref.GroupID] = true
		e.addIf(current.FindOwnerGroup(ref.GroupID) == nil, MsgDeleteGroupNotFound)
	}

	retained := make(map[int]bool, len(active))
	for _, g := range active {
		if !deleted[g.GroupID] {
			retained[g.GroupID] = true
		}
	}

	common := false
	for _, g := range adds {
		if g.GroupID != 0 && retained[g.GroupID] {
			e.add(MsgAddGroupDuplicate)
		}
		e.addIf(len(g.Owners) == 0, MsgGroupOwnersRequired)
		if g.Tenancy == models.TenancyCommon {
			common = true
			e.addIf(!g.HasInterest(), MsgGroupInterestValues)
		}
	}

	if len(retained) == 0 && len(adds) == 0 {
		e.add(MsgGroupsEmpty)
		return
	}

	// Interest totals only apply once a COMMON tenancy group participates.
	if !common {
		return
	}
	var resulting []*models.OwnerGroup
	for _, g := range active {
		if !deleted[g.GroupID] {
			resulting = append(resulting, g)
		}
	}
	resulting = append(resulting, adds...)
	for _, g := range resulting {
		if g.Tenancy == models.TenancyCommon && !g.HasInterest() {
			// Missing values already reported; a total would be meaningless.
			return
		}
	}
	if !models.TotalInterest(resulting).Equal(decimal.NewFromInt(1)) {
		e.add(MsgGroupInterestTotal)
	}
}
