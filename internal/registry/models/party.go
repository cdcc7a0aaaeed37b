package models

import "strings"

// Address is a civic address attached to parties and locations.
type Address struct {
	Street           string `json:"street"`
	StreetAdditional string `json:"streetAdditional,omitempty"`
	City             string `json:"city"`
	Region           string `json:"region"`
	Country          string `json:"country"`
	PostalCode       string `json:"postalCode"`
}

// Complete reports whether the address carries the minimum deliverable
// fields required for a giving-notice party.
func (a Address) Complete() bool {
	return strings.TrimSpace(a.Street) != "" &&
		strings.TrimSpace(a.City) != "" &&
		strings.TrimSpace(a.Region) != "" &&
		strings.TrimSpace(a.Country) != ""
}

// PersonName is a natural person's name.
type PersonName struct {
	First  string `json:"first"`
	Middle string `json:"middle,omitempty"`
	Last   string `json:"last"`
}

// Party identifies a person or business on a registration: an owner, a
// submitting party, or the party giving public notice on a note.
type Party struct {
	BusinessName string      `json:"businessName,omitempty"`
	PersonName   *PersonName `json:"personName,omitempty"`
	Address      Address     `json:"address"`
	EmailAddress string      `json:"emailAddress,omitempty"`
	PhoneNumber  string      `json:"phoneNumber,omitempty"`
}

// HasName reports whether the party carries either a business name or a
// complete person name.
func (p Party) HasName() bool {
	if strings.TrimSpace(p.BusinessName) != "" {
		return true
	}
	return p.PersonName != nil &&
		strings.TrimSpace(p.PersonName.First) != "" &&
		strings.TrimSpace(p.PersonName.Last) != ""
}
