// Package registry defines the domain request types consumed by the
// registration service and its validators.
//
// Requests are typed structs rather than raw JSON maps: the document type
// driving each change is a discriminator field and every rule table switches
// over the closed enums in the models package.
package registry

import (
	"time"

	"mhregistry/internal/registry/models"
	"mhregistry/pkg/domain"
)

// Group classifies the submitting account for rule gating.
type Group string

const (
	GroupStaff             Group = "staff"
	GroupQualifiedSupplier Group = "qualified_supplier"
	GroupManufacturer      Group = "manufacturer"
	GroupGeneral           Group = "general"
)

// Submission carries the fields common to every change request.
type Submission struct {
	MhrNumber          domain.MhrNumber   `json:"mhrNumber"`
	DocumentID         domain.DocumentID  `json:"documentId,omitempty"`
	AttentionReference string             `json:"attentionReference,omitempty"`
	ClientReferenceID  string             `json:"clientReferenceId,omitempty"`
	DraftNumber        domain.DraftNumber `json:"draftNumber,omitempty"`
	SubmittingParty    *models.Party      `json:"submittingParty,omitempty"`
}

// GroupRef references an existing owner group by its chain sequence ID.
type GroupRef struct {
	GroupID int `json:"groupId"`
}

// TransferRequest conveys ownership between owner groups.
type TransferRequest struct {
	Submission
	DocumentType      models.DocumentType  `json:"documentType"`
	DeclaredValue     int64                `json:"declaredValue,omitempty"`
	Consideration     string               `json:"consideration,omitempty"`
	TransferDate      *time.Time           `json:"transferDate,omitempty"`
	DeleteOwnerGroups []GroupRef           `json:"deleteOwnerGroups"`
	AddOwnerGroups    []*models.OwnerGroup `json:"addOwnerGroups"`
}

// PermitRequest creates, extends, or amends a transport permit. The backing
// document type is derived from the discriminator flags: extension selects
// REG_103E, amendment selects AMEND_PERMIT, otherwise REG_103.
type PermitRequest struct {
	Submission
	Amendment   bool             `json:"amendment,omitempty"`
	Extension   bool             `json:"extendExpiryDate,omitempty"`
	NewLocation *models.Location `json:"newLocation,omitempty"`
	ExpiryTs    *time.Time       `json:"expiryDateTime,omitempty"`
}

// DocumentType derives the permit document type from the request flags.
func (r PermitRequest) DocumentType() models.DocumentType {
	switch {
	case r.Extension:
		return models.DocReg103E
	case r.Amendment:
		return models.DocAmendPermit
	default:
		return models.DocReg103
	}
}

// ExemptionRequest declares the home exempt from the registry.
type ExemptionRequest struct {
	Submission
	NonResidential bool        `json:"nonResidential,omitempty"`
	Note           models.Note `json:"note"`
}

// DocumentType derives EXNR for non-residential exemptions, EXRS otherwise.
func (r ExemptionRequest) DocumentType() models.DocumentType {
	if r.NonResidential {
		return models.DocExnr
	}
	return models.DocExrs
}

// NoteRequest attaches a unit note, or cancels a prior one (NCAN/NRED).
type NoteRequest struct {
	Submission
	Note             models.Note       `json:"note"`
	UpdateDocumentID domain.DocumentID `json:"updateDocumentId,omitempty"`
}

// AdminRequest is a staff correction or administrative registration.
// PUBA/REGC/STAT route document corrections; EXRE reverses an exemption;
// CAN cancels a note; REG_103R and AMEND_PERMIT act on the open permit.
type AdminRequest struct {
	Submission
	DocumentType     models.DocumentType `json:"documentType"`
	UpdateDocumentID domain.DocumentID   `json:"updateDocumentId,omitempty"`
	NewLocation      *models.Location    `json:"location,omitempty"`
	Note             *models.Note        `json:"note,omitempty"`
}
