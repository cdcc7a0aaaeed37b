// Package change executes validated registration state transitions.
//
// Each Apply* function is called only after the matching validator returned
// no violations. Functions mutate the current registration aggregate
// (flipping child statuses, stamping the causing registration ID) and fill
// the new change registration's children. Nothing is ever deleted; the
// chain records history by appending rows and stamping back-references.
package change

import (
	"time"

	"mhregistry/internal/registry/models"
)

// Config carries the jurisdictional constants the transition rules depend
// on. Values come from configuration, not in-code literals, because they
// encode legal deadlines.
type Config struct {
	PermitTermDays  int
	CautionTermDays int
	HomeProvince    string
}

// ComputePermitExpiry returns the expiry of a newly issued transport
// permit: a fixed term from the issue time.
func ComputePermitExpiry(now time.Time, termDays int) time.Time {
	return now.AddDate(0, 0, termDays)
}

// supersedeLocation flips the current ACTIVE location to HISTORICAL and
// installs the replacement, returning the replacement.
func supersedeLocation(current *models.Registration, replacement *models.Location, changeRegID int64) *models.Location {
	if prev := current.ActiveLocation(); prev != nil {
		prev.ApplySupersede(changeRegID)
	}
	replacement.RegistrationID = changeRegID
	replacement.Status = models.LocationActive
	current.Locations = append(current.Locations, replacement)
	return replacement
}

// applyLocationStatusEffects flips the registration status when a location
// change crosses the home-province boundary. This is a cross-cutting side
// effect of every location-changing document type, not a permit special
// case: moving out of province exempts the home, and a cancel/amend that
// returns it reverts the exemption.
func applyLocationStatusEffects(cfg Config, current *models.Registration, location *models.Location) {
	inProvince := location.InProvince(cfg.HomeProvince)
	switch {
	case !inProvince && current.Status == models.StatusActive:
		current.ApplyTransition(models.StatusExempt)
	case inProvince && current.Status == models.StatusExempt:
		current.ApplyTransition(models.StatusActive)
	}
}
