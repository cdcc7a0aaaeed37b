// Package validator holds the pure rule functions of the registration
// lifecycle. Each Validate* function reads the current registration
// aggregate and a proposed request and returns a concatenation of every
// violated rule's message; an empty string signals a valid request.
//
// Validators never raise faults and never touch storage. The one storage
// fact they need, document ID uniqueness, is injected as a predicate so the
// functions stay side-effect free.
package validator

import (
	"strings"
	"time"

	"mhregistry/internal/registry/models"
	"mhregistry/pkg/domain"
)

// DocumentExists reports whether a document ID is already registered.
// Injected by the service layer; kept as a predicate so validators remain
// pure functions over (current state, request).
type DocumentExists func(domain.DocumentID) bool

// errs accumulates violation messages without failing fast.
type errs struct {
	b strings.Builder
}

func (e *errs) add(msg string) { e.b.WriteString(msg) }

func (e *errs) addIf(cond bool, msg string) {
	if cond {
		e.b.WriteString(msg)
	}
}

func (e *errs) String() string { return e.b.String() }

// validateDocID applies the staff document ID rules: required for staff
// submissions, checksum-valid, and globally unique. The checksum and the
// existence violations are independent so staff see both at once.
func validateDocID(e *errs, docID domain.DocumentID, isStaff bool, exists DocumentExists) {
	if docID == "" {
		e.addIf(isStaff, MsgDocIDRequired)
		return
	}
	e.addIf(!docID.ChecksumValid(), MsgDocIDInvalidChecksum)
	if exists != nil {
		e.addIf(exists(docID), MsgDocIDExists)
	}
}

// validateState gates the requested document type on the current
// registration status. Terminal states block everything; EXEMPT and FROZEN
// admit only the admin/cancellation document types.
func validateState(e *errs, current *models.Registration, docType models.DocumentType) {
	switch {
	case current.Status.Terminal():
		e.add(MsgStateNotAllowed)
	case current.Status == models.StatusExempt || current.Status == models.StatusFrozen ||
		current.Status == models.StatusDraft:
		e.addIf(!docType.ActsOnLockedStates(), MsgStateNotAllowed)
	}
}

// validateNoteTimes applies the per-document-type effective/expiry policy.
func validateNoteTimes(e *errs, note *models.Note, now time.Time) {
	docType := note.DocumentType

	switch docType.EffectiveDatePolicy() {
	case models.EffectiveForbidden:
		e.addIf(note.EffectiveTs != nil, MsgEffectiveNotAllowed)
	case models.EffectivePast:
		e.addIf(note.EffectiveTs != nil && note.EffectiveTs.After(now), MsgEffectiveFuture)
	}

	switch docType.ExpiryDatePolicy() {
	case models.ExpiryRequired:
		if note.ExpiryTs == nil {
			e.add(MsgExpiryRequired)
			return
		}
		validateExpiryOrder(e, note, now)
	case models.ExpiryOptional:
		if note.ExpiryTs != nil {
			validateExpiryOrder(e, note, now)
		}
	case models.ExpiryForbidden:
		e.addIf(note.ExpiryTs != nil, MsgExpiryNotAllowed)
	}
}

func validateExpiryOrder(e *errs, note *models.Note, now time.Time) {
	reference := now
	if note.EffectiveTs != nil {
		reference = *note.EffectiveTs
	}
	if !note.ExpiryTs.After(reference) {
		e.add(MsgExpiryBeforeCurrent)
	}
	e.addIf(!note.ExpiryTs.After(now), MsgExpiryElapsed)
}

// validateNoticeParty applies the public-notice party rules.
func validateNoticeParty(e *errs, note *models.Note) {
	if !note.DocumentType.RequiresNoticeParty() {
		return
	}
	party := note.GivingNoticeParty
	if party == nil {
		e.add(MsgNoticeRequired)
		return
	}
	e.addIf(!party.HasName(), MsgNoticeNameRequired)
	e.addIf(!party.Address.Complete(), MsgNoticeAddressRequired)
}

// validateCancelTarget resolves the updateDocumentId linkage for the
// cancellation document types (NRED, NCAN, EXRE, CAN).
func validateCancelTarget(e *errs, current *models.Registration,
	docType models.DocumentType, updateDocID domain.DocumentID) {
	if updateDocID == "" {
		e.add(MsgUpdateDocIDRequired)
		return
	}
	target := current.FindNote(updateDocID)
	if target == nil {
		e.add(MsgUpdateDocNotFound)
		return
	}
	// Status and type mismatches are reported independently so staff can
	// correct both in one round trip.
	e.addIf(target.Status != models.NoteActive, MsgNoteNotActive)
	e.addIf(!docType.CanCancelNoteType(target.DocumentType), MsgStateCancelMismatch)
}
