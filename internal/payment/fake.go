package payment

import (
	"context"
	"fmt"
	"sync"

	"mhregistry/pkg/domain"
	dErrors "mhregistry/pkg/domain-errors"
)

// Fake is an in-memory payment client for tests and local development.
// It approves every charge unless told otherwise.
type Fake struct {
	mu       sync.Mutex
	invoices int
	// Err, when set, is returned for every Pay call.
	Err error
	// Charges records every approved charge in order.
	Charges []FakeCharge
}

// FakeCharge is one approved charge recorded by the fake.
type FakeCharge struct {
	AccountID  domain.AccountID
	FilingType FilingType
	Quantity   int
}

// NewFake constructs an approving fake payment client.
func NewFake() *Fake {
	return &Fake{}
}

// Decline configures the fake to decline all charges.
func (f *Fake) Decline() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Err = dErrors.New(dErrors.CodePaymentRequired, "payment declined")
}

func (f *Fake) Pay(_ context.Context, accountID domain.AccountID, filingType FilingType, quantity int) (*Receipt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return nil, f.Err
	}
	if quantity < 1 {
		quantity = 1
	}
	f.invoices++
	f.Charges = append(f.Charges, FakeCharge{AccountID: accountID, FilingType: filingType, Quantity: quantity})
	return &Receipt{
		InvoiceID:  fmt.Sprintf("INV%06d", f.invoices),
		StatusCode: "COMPLETED",
	}, nil
}
