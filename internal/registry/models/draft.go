package models

import (
	"encoding/json"
	"time"

	"mhregistry/pkg/domain"
)

// Draft stages an unsaved registration request with its generated numbers
// until payment clears, at which point it becomes a Registration.
type Draft struct {
	DraftNumber      domain.DraftNumber `json:"draftNumber"`
	AccountID        domain.AccountID   `json:"-"`
	RegistrationType RegistrationType   `json:"registrationType"`
	MhrNumber        domain.MhrNumber   `json:"mhrNumber,omitempty"`
	Payload          json.RawMessage    `json:"registration"`
	CreatedTs        time.Time          `json:"createDateTime"`
	UpdatedTs        time.Time          `json:"lastUpdateDateTime"`
}
