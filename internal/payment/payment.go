// Package payment fronts the fee collection service. Every registration
// filing pays before it is persisted; a declined or unreachable gateway
// aborts the filing.
package payment

import (
	"context"

	"mhregistry/pkg/domain"
)

// FilingType selects the fee schedule entry for a filing.
type FilingType string

const (
	FilingTransfer        FilingType = "TRANS"
	FilingTransportPermit FilingType = "TRAPP"
	FilingExemptionRes    FilingType = "EXEMPTION_RES"
	FilingExemptionNonRes FilingType = "EXEMPTION_NON_RES"
	FilingUnitNote        FilingType = "UNIT_NOTE"
	FilingAdmin           FilingType = "ADMIN"
)

// Receipt is the gateway's record of a completed payment.
type Receipt struct {
	InvoiceID  string `json:"invoiceId"`
	Reference  string `json:"reference,omitempty"`
	StatusCode string `json:"statusCode"`
}

// Client collects the filing fee for a registration.
type Client interface {
	// Pay charges the account for a filing. A nil error means the fee
	// cleared; errors carry CodePaymentRequired when the gateway declined
	// and CodeUnavailable when it could not be reached.
	Pay(ctx context.Context, accountID domain.AccountID, filingType FilingType, quantity int) (*Receipt, error)
}
