package model

import (
	"time"

	"github.com/google/uuid"
)

// Pool is an earnings bucket a user can withdraw from.
type Pool string

const (
	PoolReferral Pool = "referral"
	PoolSales    Pool = "sales"
)

func (p Pool) Valid() bool {
	return p == PoolReferral || p == PoolSales
}

type TxKind string

const (
	KindReferralCredit TxKind = "referral_credit"
	KindSaleCredit     TxKind = "sale_credit"
	KindWithdrawal     TxKind = "withdrawal"
)

type TxStatus string

const (
	TxPending   TxStatus = "pending"
	TxCompleted TxStatus = "completed"
	TxFailed    TxStatus = "failed"
)

// CanTransition reports whether a ledger entry may move from s to next.
// Only pending entries settle; settled entries are final.
func (s TxStatus) CanTransition(next TxStatus) bool {
	return s == TxPending && (next == TxCompleted || next == TxFailed)
}

type Transaction struct {
	ID          uuid.UUID `json:"id"`
	UserID      string    `json:"user_id"`
	Kind        TxKind    `json:"kind"`
	Pool        Pool      `json:"pool"`
	AmountCents int64     `json:"amount_cents"`
	FeeCents    int64     `json:"fee_cents"`
	NetCents    int64     `json:"net_cents"`
	Status      TxStatus  `json:"status"`
	Reference   string    `json:"reference,omitempty"`
	Method      string    `json:"method,omitempty"`
	Destination string    `json:"destination,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (t Transaction) IsCredit() bool {
	return t.Kind == KindReferralCredit || t.Kind == KindSaleCredit
}
