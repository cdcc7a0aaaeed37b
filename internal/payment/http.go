package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"mhregistry/pkg/domain"
	dErrors "mhregistry/pkg/domain-errors"
)

// HTTPClient calls the fee service over HTTP.
type HTTPClient struct {
	baseURL string
	client  *http.Client
	logger  *slog.Logger
}

// NewHTTPClient constructs a fee service client.
func NewHTTPClient(baseURL string, logger *slog.Logger) *HTTPClient {
	return &HTTPClient{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		logger: logger,
	}
}

type payRequest struct {
	AccountID  string `json:"accountId"`
	FilingType string `json:"filingTypeCode"`
	Quantity   int    `json:"quantity"`
}

func (c *HTTPClient) Pay(ctx context.Context, accountID domain.AccountID, filingType FilingType, quantity int) (*Receipt, error) {
	if quantity < 1 {
		quantity = 1
	}
	body, err := json.Marshal(payRequest{
		AccountID:  accountID.String(),
		FilingType: string(filingType),
		Quantity:   quantity,
	})
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "marshal payment request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/payments", bytes.NewReader(body))
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "build payment request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Account-Id", accountID.String())

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "payment service unreachable")
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		var receipt Receipt
		if err := json.NewDecoder(resp.Body).Decode(&receipt); err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "decode payment receipt")
		}
		c.logger.InfoContext(ctx, "payment completed",
			"account_id", accountID, "filing_type", filingType, "invoice_id", receipt.InvoiceID)
		return &receipt, nil
	case resp.StatusCode == http.StatusPaymentRequired, resp.StatusCode == http.StatusBadRequest,
		resp.StatusCode == http.StatusForbidden:
		c.logger.WarnContext(ctx, "payment declined",
			"account_id", accountID, "filing_type", filingType, "status", resp.StatusCode)
		return nil, dErrors.Newf(dErrors.CodePaymentRequired,
			"payment declined with status %d", resp.StatusCode)
	default:
		return nil, dErrors.New(dErrors.CodeUnavailable,
			fmt.Sprintf("payment service returned status %d", resp.StatusCode))
	}
}
