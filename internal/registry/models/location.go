package models

import (
	"strings"
	"time"
)

// Location is the physical/legal position of the home.
//
// Invariant: at most one ACTIVE location per registration chain. A new
// location becomes ACTIVE and the superseded one flips to HISTORICAL,
// stamped with the registration that caused the change.
type Location struct {
	RegistrationID       int64          `json:"-"`
	ChangeRegistrationID int64          `json:"-"`
	Status               LocationStatus `json:"status"`
	Address              Address        `json:"address"`
	LocationType         string         `json:"locationType,omitempty"`
	ParkName             string         `json:"parkName,omitempty"`
	Pad                  string         `json:"pad,omitempty"`
	PidNumber            string         `json:"pidNumber,omitempty"`
	LegalDescription     string         `json:"legalDescription,omitempty"`
	TaxCertificateTs     *time.Time     `json:"taxExpiryDate,omitempty"`
}

// InProvince reports whether the location sits in the given home province.
func (l *Location) InProvince(province string) bool {
	return strings.EqualFold(strings.TrimSpace(l.Address.Region), province)
}

// ApplySupersede marks the location HISTORICAL, stamping the registration
// that replaced it.
func (l *Location) ApplySupersede(changeRegistrationID int64) {
	l.Status = LocationHistorical
	l.ChangeRegistrationID = changeRegistrationID
}

// Clone returns a copy bound to a new creating registration, used by permit
// extensions that carry the active location forward.
func (l *Location) Clone(registrationID int64) *Location {
	clone := *l
	clone.RegistrationID = registrationID
	clone.ChangeRegistrationID = 0
	clone.Status = LocationActive
	return &clone
}
