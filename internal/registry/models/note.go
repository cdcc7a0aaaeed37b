package models

import (
	"encoding/json"
	"time"

	"mhregistry/pkg/domain"
	dErrors "mhregistry/pkg/domain-errors"
)

// Note records a unit note against a registration: caveats, exemptions,
// transport permit expiry, tax notices, redemptions.
//
// Invariants:
//   - At most one note is current per change registration.
//   - Rows are append-only: cancellation or expiry flips Status and stamps
//     ChangeRegistrationID with the registration that caused it; the row is
//     never deleted.
type Note struct {
	RegistrationID       int64             `json:"-"`
	ChangeRegistrationID int64             `json:"-"`
	DocumentID           domain.DocumentID `json:"documentId"`
	DocumentType         DocumentType      `json:"documentType"`
	Status               NoteStatus        `json:"status"`
	Remarks              string            `json:"remarks,omitempty"`
	EffectiveTs          *time.Time        `json:"effectiveDateTime,omitempty"`
	ExpiryTs             *time.Time        `json:"expiryDateTime,omitempty"`
	GivingNoticeParty    *Party            `json:"givingNoticeParty,omitempty"`
}

// NoteFromJSON decodes a note payload, defaulting status to ACTIVE.
func NoteFromJSON(data []byte) (*Note, error) {
	var n Note
	if err := json.Unmarshal(data, &n); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeBadRequest, "malformed note payload")
	}
	if n.Status == "" {
		n.Status = NoteActive
	}
	return &n, nil
}

// JSON serializes the note for API responses.
func (n *Note) JSON() ([]byte, error) {
	return json.Marshal(n)
}

// IsCurrent reports whether the note is still in force.
func (n *Note) IsCurrent() bool {
	return n.Status == NoteActive
}

// CanCancel checks whether the note may be cancelled by the given
// cancellation document type.
func (n *Note) CanCancel(by DocumentType) error {
	if n.Status != NoteActive {
		return dErrors.Newf(dErrors.CodeInvariantViolation,
			"note %s is %s, only ACTIVE notes can be cancelled", n.DocumentID, n.Status)
	}
	if !by.CanCancelNoteType(n.DocumentType) {
		return dErrors.Newf(dErrors.CodeInvariantViolation,
			"document type %s cannot cancel a %s note", by, n.DocumentType)
	}
	return nil
}

// ApplyCancellation flips the note to CANCELLED, stamping the registration
// that caused the transition. Call CanCancel first.
func (n *Note) ApplyCancellation(changeRegistrationID int64) {
	n.Status = NoteCancelled
	n.ChangeRegistrationID = changeRegistrationID
}

// ApplyExpiry flips an elapsed note to EXPIRED. The note row is preserved;
// only the status changes.
func (n *Note) ApplyExpiry(changeRegistrationID int64) {
	n.Status = NoteExpired
	n.ChangeRegistrationID = changeRegistrationID
}

// Elapsed reports whether the note carries an expiry at or before now.
func (n *Note) Elapsed(now time.Time) bool {
	return n.ExpiryTs != nil && !n.ExpiryTs.After(now)
}
