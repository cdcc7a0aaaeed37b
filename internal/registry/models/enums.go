package models

// Closed vocabularies for the registration lifecycle. Every other package
// switches over these; additions require updating the rule tables below.

// RegistrationStatus is the lifecycle state of a registration chain.
type RegistrationStatus string

const (
	StatusActive     RegistrationStatus = "ACTIVE"
	StatusExempt     RegistrationStatus = "EXEMPT"
	StatusHistorical RegistrationStatus = "HISTORICAL"
	StatusFrozen     RegistrationStatus = "FROZEN"
	StatusDraft      RegistrationStatus = "DRAFT"
	StatusCancelled  RegistrationStatus = "CANCELLED"
)

// Terminal reports whether no further transition may leave this status.
func (s RegistrationStatus) Terminal() bool {
	return s == StatusHistorical || s == StatusCancelled
}

// CanTransitionTo encodes the allowed status transitions. Transitions are
// monotone forward except the explicit EXEMPT -> ACTIVE reversal when a
// permit cancellation or amendment returns the home to the home province.
func (s RegistrationStatus) CanTransitionTo(next RegistrationStatus) bool {
	if s == next {
		return false
	}
	switch s {
	case StatusActive:
		return next == StatusExempt || next == StatusHistorical ||
			next == StatusFrozen || next == StatusDraft || next == StatusCancelled
	case StatusExempt:
		return next == StatusActive || next == StatusHistorical || next == StatusCancelled
	case StatusFrozen:
		return next == StatusActive || next == StatusCancelled
	case StatusDraft:
		return next == StatusActive || next == StatusCancelled
	default:
		return false
	}
}

// NoteStatus is the lifecycle state of a unit note.
type NoteStatus string

const (
	NoteActive    NoteStatus = "ACTIVE"
	NoteCancelled NoteStatus = "CANCELLED"
	NoteExpired   NoteStatus = "EXPIRED"
	NoteCompleted NoteStatus = "COMPLETED"
)

// LocationStatus is the lifecycle state of a home location.
type LocationStatus string

const (
	LocationActive     LocationStatus = "ACTIVE"
	LocationHistorical LocationStatus = "HISTORICAL"
)

// GroupStatus is the lifecycle state of an owner group.
type GroupStatus string

const (
	GroupActive   GroupStatus = "ACTIVE"
	GroupPrevious GroupStatus = "PREVIOUS"
)

// Tenancy partitions ownership interest within a group.
type Tenancy string

const (
	TenancySole   Tenancy = "SOLE"
	TenancyJoint  Tenancy = "JOINT"
	TenancyCommon Tenancy = "COMMON"
	TenancyNA     Tenancy = "NA"
)

// RegistrationType is the family of a registration event.
type RegistrationType string

const (
	RegTypeManufacturedHome  RegistrationType = "MHREG"
	RegTypeTransfer          RegistrationType = "TRANS"
	RegTypeTransferDeath     RegistrationType = "TRAND"
	RegTypeTransferAffidavit RegistrationType = "TRANS_AFFIDAVIT"
	RegTypeTransferAdmin     RegistrationType = "TRANS_ADMIN"
	RegTypeTransferWill      RegistrationType = "TRANS_WILL"
	RegTypePermit            RegistrationType = "PERMIT"
	RegTypePermitExtension   RegistrationType = "PERMIT_EXTENSION"
	RegTypeAmendPermit       RegistrationType = "AMEND_PERMIT"
	RegTypeCancelPermit      RegistrationType = "CANCEL_PERMIT"
	RegTypeExemptionRes      RegistrationType = "EXEMPTION_RES"
	RegTypeExemptionNonRes   RegistrationType = "EXEMPTION_NON_RES"
	RegTypeNote              RegistrationType = "REG_NOTE"
	RegTypeStaffAdmin        RegistrationType = "REG_STAFF_ADMIN"
)

// DocumentType classifies the legal instrument backing a registration.
type DocumentType string

const (
	// Base and correction documents.
	DocReg101 DocumentType = "REG_101"
	DocPuba   DocumentType = "PUBA"
	DocRegc   DocumentType = "REGC"
	DocStat   DocumentType = "STAT"

	// Exemptions.
	DocExrs DocumentType = "EXRS"
	DocExnr DocumentType = "EXNR"
	DocExre DocumentType = "EXRE"

	// Transport permits.
	DocReg103      DocumentType = "REG_103"
	DocReg103E     DocumentType = "REG_103E"
	DocAmendPermit DocumentType = "AMEND_PERMIT"
	DocReg103R     DocumentType = "REG_103R"

	// Transfers / transmissions.
	DocTran DocumentType = "TRAN"
	DocDeat DocumentType = "DEAT"
	DocAffe DocumentType = "AFFE"
	DocLeta DocumentType = "LETA"
	DocWill DocumentType = "WILL"

	// Unit notes.
	DocCau  DocumentType = "CAU"
	DocCauC DocumentType = "CAUC"
	DocCauE DocumentType = "CAUE"
	DocNcan DocumentType = "NCAN"
	DocNred DocumentType = "NRED"
	DocNcon DocumentType = "NCON"
	DocTaxn DocumentType = "TAXN"
	DocNpub DocumentType = "NPUB"
	DocRest DocumentType = "REST"
	DocCan  DocumentType = "CAN"
	DocComp DocumentType = "COMP"
)

// RegistrationFamily returns the registration type recorded for a change
// backed by this document type.
func (d DocumentType) RegistrationFamily() RegistrationType {
	switch d {
	case DocReg101:
		return RegTypeManufacturedHome
	case DocTran:
		return RegTypeTransfer
	case DocDeat:
		return RegTypeTransferDeath
	case DocAffe:
		return RegTypeTransferAffidavit
	case DocLeta:
		return RegTypeTransferAdmin
	case DocWill:
		return RegTypeTransferWill
	case DocReg103:
		return RegTypePermit
	case DocReg103E:
		return RegTypePermitExtension
	case DocAmendPermit:
		return RegTypeAmendPermit
	case DocReg103R:
		return RegTypeCancelPermit
	case DocExrs:
		return RegTypeExemptionRes
	case DocExnr:
		return RegTypeExemptionNonRes
	case DocPuba, DocRegc, DocStat, DocExre, DocCan:
		return RegTypeStaffAdmin
	default:
		return RegTypeNote
	}
}

// EffectivePolicy is the per-document-type rule for effectiveDateTime.
type EffectivePolicy int

const (
	// EffectiveAny places no restriction on the effective timestamp.
	EffectiveAny EffectivePolicy = iota
	// EffectiveForbidden rejects any supplied effective timestamp.
	EffectiveForbidden
	// EffectivePast requires an effective timestamp at or before now.
	EffectivePast
)

// EffectiveDatePolicy returns the effective-date rule for the document type.
func (d DocumentType) EffectiveDatePolicy() EffectivePolicy {
	switch d {
	case DocCan, DocNcan, DocNred, DocNcon, DocExre:
		return EffectiveForbidden
	case DocCau, DocCauC, DocCauE, DocTaxn, DocRest, DocNpub:
		return EffectivePast
	default:
		return EffectiveAny
	}
}

// ExpiryPolicy is the per-document-type rule for expiryDateTime.
type ExpiryPolicy int

const (
	// ExpiryForbidden rejects any supplied expiry.
	ExpiryForbidden ExpiryPolicy = iota
	// ExpiryRequired demands an expiry after the effective timestamp.
	ExpiryRequired
	// ExpiryOptional accepts an absent or future expiry.
	ExpiryOptional
)

// ExpiryDatePolicy returns the expiry rule for the document type.
func (d DocumentType) ExpiryDatePolicy() ExpiryPolicy {
	switch d {
	case DocCauE:
		return ExpiryRequired
	case DocCau, DocCauC, DocReg103, DocReg103E:
		return ExpiryOptional
	default:
		return ExpiryForbidden
	}
}

// RequiresNoticeParty reports whether the document type mandates a
// giving-notice party on the note.
func (d DocumentType) RequiresNoticeParty() bool {
	switch d {
	case DocNred, DocNcan, DocCau, DocCauC, DocCauE:
		return true
	default:
		return false
	}
}

// IsCancellation reports whether the document type cancels a prior note.
func (d DocumentType) IsCancellation() bool {
	switch d {
	case DocNcan, DocNred, DocExre, DocCan:
		return true
	default:
		return false
	}
}

// CanCancelNoteType reports whether this cancellation document may act on a
// note of the given type.
func (d DocumentType) CanCancelNoteType(target DocumentType) bool {
	switch d {
	case DocNcan:
		switch target {
		case DocCau, DocCauC, DocCauE, DocNcon, DocRest, DocNpub:
			return true
		}
	case DocNred:
		return target == DocTaxn
	case DocExre:
		return target == DocExrs || target == DocExnr
	case DocCan:
		// Staff cancellation reaches every cancellable note family.
		return DocNcan.CanCancelNoteType(target) || target == DocTaxn ||
			target == DocExrs || target == DocExnr
	}
	return false
}

// IsUnitNote reports whether the document type may be filed as a unit
// note. Cancellations that ride the note endpoint (NCAN, NRED) are
// included; staff instruments like CAN and EXRE arrive through the
// administrative path instead.
func (d DocumentType) IsUnitNote() bool {
	switch d {
	case DocCau, DocCauC, DocCauE, DocNcan, DocNred, DocNcon, DocTaxn, DocNpub, DocRest:
		return true
	default:
		return false
	}
}

// IsPermit reports whether the document type belongs to the transport
// permit family.
func (d DocumentType) IsPermit() bool {
	switch d {
	case DocReg103, DocReg103E, DocAmendPermit, DocReg103R:
		return true
	default:
		return false
	}
}

// IsExemption reports whether the document type declares an exemption.
func (d DocumentType) IsExemption() bool {
	return d == DocExrs || d == DocExnr
}

// IsTransfer reports whether the document type conveys ownership.
func (d DocumentType) IsTransfer() bool {
	switch d {
	case DocTran, DocDeat, DocAffe, DocLeta, DocWill:
		return true
	default:
		return false
	}
}

// ActsOnLockedStates reports whether the document type may be submitted
// against an EXEMPT or FROZEN registration. Everything else is blocked on
// those states.
func (d DocumentType) ActsOnLockedStates() bool {
	switch d {
	case DocExre, DocNcan, DocCan, DocReg103R, DocAmendPermit, DocPuba, DocRegc, DocStat:
		return true
	default:
		return false
	}
}
