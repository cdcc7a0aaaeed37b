// Package domain defines typed identifiers shared across the registry.
//
// Identifiers here are business keys issued by the registry itself (MHR
// numbers, document IDs) rather than surrogate UUIDs, so they are thin
// string wrappers with format validation attached.
package domain

import (
	"fmt"
	"regexp"
)

// MhrNumber identifies a manufactured home and its registration chain.
// Six digits, zero padded, issued from a sequence.
type MhrNumber string

var mhrNumberRE = regexp.MustCompile(`^\d{6}$`)

func (n MhrNumber) String() string { return string(n) }

// Valid reports whether the number matches the issued format.
func (n MhrNumber) Valid() bool { return mhrNumberRE.MatchString(string(n)) }

// FormatMhrNumber renders a sequence value as an MHR number.
func FormatMhrNumber(seq int64) MhrNumber {
	return MhrNumber(fmt.Sprintf("%06d", seq))
}

// AccountID identifies the account submitting registrations.
type AccountID string

func (a AccountID) String() string { return string(a) }

// DraftNumber identifies a staged draft prior to payment.
// Format: D followed by seven digits.
type DraftNumber string

var draftNumberRE = regexp.MustCompile(`^D\d{7}$`)

func (d DraftNumber) String() string { return string(d) }

func (d DraftNumber) Valid() bool { return draftNumberRE.MatchString(string(d)) }

// FormatDraftNumber renders a sequence value as a draft number.
func FormatDraftNumber(seq int64) DraftNumber {
	return DraftNumber(fmt.Sprintf("D%07d", seq))
}
