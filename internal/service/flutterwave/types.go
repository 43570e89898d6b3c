package flutterwave

import (
	"fmt"
	"math"
)

const (
	EventChargeCompleted   = "charge.completed"
	EventChargeFailed      = "charge.failed"
	EventTransferCompleted = "transfer.completed"
)

// Event is the subset of a webhook delivery the platform acts on.
type Event struct {
	Type      string
	ID        string
	Status    string
	TxRef     string
	Reference string
	Amount    float64
	Currency  string
}

// Key identifies a delivery for deduplication.
func (e Event) Key() string {
	return e.Type + ":" + e.ID
}

// Transaction is a charge as reported by the verify endpoint.
type Transaction struct {
	ID       int64   `json:"id"`
	TxRef    string  `json:"tx_ref"`
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
	Status   string  `json:"status"`
}

type verifyResponse struct {
	Status  string       `json:"status"`
	Message string       `json:"message"`
	Data    *Transaction `json:"data"`
}

// APIError is a non-2xx answer from the Flutterwave API.
type APIError struct {
	StatusCode int    `json:"-"`
	Status     string `json:"status"`
	Message    string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("flutterwave api error %d: %s", e.StatusCode, e.Message)
}

// IsRetryable returns true if the error should trigger a retry.
func (e *APIError) IsRetryable() bool {
	return e.StatusCode >= 500 || e.StatusCode == 429
}

// ToCents converts a provider decimal amount to minor units.
func ToCents(amount float64) int64 {
	return int64(math.Round(amount * 100))
}
