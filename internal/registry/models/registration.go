package models

import (
	"time"

	"mhregistry/pkg/domain"
	dErrors "mhregistry/pkg/domain-errors"
)

// Registration is one event in a home's history. The base registration plus
// its ordered change registrations form the chain; the aggregate loaded by
// a store carries every child row of the chain, each stamped with its
// creating registration ID.
//
// Invariants:
//   - Rows are created once and never deleted (legal record).
//   - Status transitions follow RegistrationStatus.CanTransitionTo.
//   - At most one ACTIVE location and one ACTIVE note per change.
type Registration struct {
	ID                int64              `json:"-"`
	MhrNumber         domain.MhrNumber   `json:"mhrNumber"`
	RegistrationType  RegistrationType   `json:"registrationType"`
	Status            RegistrationStatus `json:"status"`
	RegistrationTs    time.Time          `json:"createDateTime"`
	AccountID         domain.AccountID   `json:"-"`
	ClientReferenceID string             `json:"clientReferenceId,omitempty"`
	DraftNumber       domain.DraftNumber `json:"draftNumber,omitempty"`
	Document          *Document          `json:"document,omitempty"`
	Notes             []*Note            `json:"notes,omitempty"`

	// Chain-wide child history. Persistence state, not part of the wire
	// contract; the projections below carry the serialized view.
	Locations   []*Location   `json:"-"`
	OwnerGroups []*OwnerGroup `json:"-"`

	// Location is the location this registration placed or, on a loaded
	// aggregate, the chain's current location. AddOwnerGroups lists the
	// groups a change introduced, with carried-forward groups suppressed.
	Location       *Location     `json:"location,omitempty"`
	AddOwnerGroups []*OwnerGroup `json:"addOwnerGroups,omitempty"`

	Changes []*Registration `json:"changes,omitempty"`
}

// ActiveLocation returns the single current location, nil when none.
func (r *Registration) ActiveLocation() *Location {
	for _, l := range r.Locations {
		if l.Status == LocationActive {
			return l
		}
	}
	return nil
}

// ActiveOwnerGroups returns the groups partitioning current ownership.
func (r *Registration) ActiveOwnerGroups() []*OwnerGroup {
	var active []*OwnerGroup
	for _, g := range r.OwnerGroups {
		if g.Status == GroupActive {
			active = append(active, g)
		}
	}
	return active
}

// FindOwnerGroup returns the ACTIVE group with the given ID, nil when absent.
func (r *Registration) FindOwnerGroup(groupID int) *OwnerGroup {
	for _, g := range r.OwnerGroups {
		if g.Status == GroupActive && g.GroupID == groupID {
			return g
		}
	}
	return nil
}

// NextGroupID returns the next owner group sequence value for the chain.
func (r *Registration) NextGroupID() int {
	max := 0
	for _, g := range r.OwnerGroups {
		if g.GroupID > max {
			max = g.GroupID
		}
	}
	return max + 1
}

// FindNote returns the note created under the given document ID, nil when
// absent. Used to resolve cancellation linkage (updateDocumentId).
func (r *Registration) FindNote(documentID domain.DocumentID) *Note {
	for _, n := range r.Notes {
		if n.DocumentID == documentID {
			return n
		}
	}
	return nil
}

// ActivePermitNote returns the current transport permit note, nil when the
// home has no open permit.
func (r *Registration) ActivePermitNote() *Note {
	for _, n := range r.Notes {
		if n.Status == NoteActive &&
			(n.DocumentType == DocReg103 || n.DocumentType == DocReg103E ||
				n.DocumentType == DocAmendPermit) {
			return n
		}
	}
	return nil
}

// ActiveExemptionNote returns the current exemption note, nil when none.
func (r *Registration) ActiveExemptionNote() *Note {
	for _, n := range r.Notes {
		if n.Status == NoteActive && n.DocumentType.IsExemption() {
			return n
		}
	}
	return nil
}

// CanTransition checks whether the chain may move to the given status.
func (r *Registration) CanTransition(next RegistrationStatus) error {
	if !r.Status.CanTransitionTo(next) {
		return dErrors.Newf(dErrors.CodeInvariantViolation,
			"registration %s cannot transition from %s to %s", r.MhrNumber, r.Status, next)
	}
	return nil
}

// ApplyTransition moves the chain to the given status. Call CanTransition
// first; the Execute callback pattern on stores pairs the two.
func (r *Registration) ApplyTransition(next RegistrationStatus) {
	r.Status = next
}

// AppendChange records a change registration on the chain, keeping the
// list ordered by registration timestamp.
func (r *Registration) AppendChange(change *Registration) {
	r.Changes = append(r.Changes, change)
}
