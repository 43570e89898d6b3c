package model

import (
	"time"

	"github.com/google/uuid"
)

type Algo struct {
	ID          uuid.UUID `json:"id"`
	SellerID    string    `json:"seller_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	PriceCents  int64     `json:"price_cents"`
	Currency    string    `json:"currency"`
	Verified    bool      `json:"verified"`
	CreatedAt   time.Time `json:"created_at"`
}

type OrderStatus string

const (
	OrderPending OrderStatus = "pending"
	OrderPaid    OrderStatus = "paid"
	OrderFailed  OrderStatus = "failed"
)

type Order struct {
	ID          uuid.UUID   `json:"id"`
	TxRef       string      `json:"tx_ref"`
	BuyerID     string      `json:"buyer_id"`
	SellerID    string      `json:"seller_id"`
	ReferrerID  string      `json:"referrer_id,omitempty"`
	AlgoID      uuid.UUID   `json:"algo_id"`
	AmountCents int64       `json:"amount_cents"`
	Currency    string      `json:"currency"`
	Status      OrderStatus `json:"status"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}
