package models

import (
	"github.com/shopspring/decimal"
)

// OwnerGroup partitions ownership interest among one or more owners.
//
// Invariants:
//   - ACTIVE groups partition the current ownership of the home.
//   - Transfers mark deleted groups PREVIOUS and append new ACTIVE groups;
//     owner rows are never mutated in place.
//   - COMMON tenancy groups carry an interest fraction; the interests of all
//     ACTIVE groups must total exactly one.
type OwnerGroup struct {
	RegistrationID       int64       `json:"-"`
	ChangeRegistrationID int64       `json:"-"`
	GroupID              int         `json:"groupId"`
	Tenancy              Tenancy     `json:"type"`
	Status               GroupStatus `json:"status"`
	Interest             string      `json:"interest,omitempty"`
	InterestNumerator    int64       `json:"interestNumerator,omitempty"`
	InterestDenominator  int64       `json:"interestDenominator,omitempty"`
	Owners               []Party     `json:"owners"`
	// Existing flags a group that was carried forward unchanged; report
	// views suppress these from addOwnerGroups.
	Existing bool `json:"existing,omitempty"`
}

// InterestFraction returns the group's ownership fraction as a decimal, or
// zero when no interest is recorded.
func (g *OwnerGroup) InterestFraction() decimal.Decimal {
	if g.InterestDenominator == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(g.InterestNumerator).
		Div(decimal.NewFromInt(g.InterestDenominator))
}

// HasInterest reports whether an interest fraction is recorded.
func (g *OwnerGroup) HasInterest() bool {
	return g.InterestNumerator > 0 && g.InterestDenominator > 0
}

// ApplyRemoval marks the group PREVIOUS, stamping the registration that
// removed it.
func (g *OwnerGroup) ApplyRemoval(changeRegistrationID int64) {
	g.Status = GroupPrevious
	g.ChangeRegistrationID = changeRegistrationID
}

// TotalInterest sums the interest fractions of the given groups using exact
// decimal arithmetic.
func TotalInterest(groups []*OwnerGroup) decimal.Decimal {
	total := decimal.Zero
	for _, g := range groups {
		total = total.Add(g.InterestFraction())
	}
	return total
}
