package service

import (
	"context"
	"time"

	"fxvps/platform/internal/model"

	"github.com/google/uuid"
)

// Atomic runs fn in a single storage transaction. Repository calls made
// with the ctx passed to fn join that transaction.
type Atomic interface {
	RunAtomic(ctx context.Context, fn func(ctx context.Context) error) error
}

type LedgerRepository interface {
	Atomic
	// LockAccount creates the account row if needed and locks it until the
	// surrounding transaction ends.
	LockAccount(ctx context.Context, userID string) error
	ListTransactions(ctx context.Context, userID string) ([]model.Transaction, error)
	CreateTransaction(ctx context.Context, tx *model.Transaction) error
	GetTransactionForUpdate(ctx context.Context, id uuid.UUID) (*model.Transaction, error)
	UpdateTransactionStatus(ctx context.Context, id uuid.UUID, status model.TxStatus, at time.Time) error
}

type VPSRepository interface {
	Atomic
	CreatePlan(ctx context.Context, plan *model.VPSPlan) error
	GetPlan(ctx context.Context, id uuid.UUID) (*model.VPSPlan, error)
	GetPlanForUpdate(ctx context.Context, id uuid.UUID) (*model.VPSPlan, error)
	ListPlans(ctx context.Context, userID string) ([]model.VPSPlan, error)
	ListPlansByStatus(ctx context.Context, status model.VPSStatus) ([]model.VPSPlan, error)
	UpdatePlanStatus(ctx context.Context, id uuid.UUID, status model.VPSStatus, at time.Time) error
}

type MarketRepository interface {
	Atomic
	CreateAlgo(ctx context.Context, algo *model.Algo) error
	GetAlgo(ctx context.Context, id uuid.UUID) (*model.Algo, error)
	ListVerifiedAlgos(ctx context.Context) ([]model.Algo, error)
	SetAlgoVerified(ctx context.Context, id uuid.UUID) error
	CreateOrder(ctx context.Context, order *model.Order) error
	GetOrderByTxRefForUpdate(ctx context.Context, txRef string) (*model.Order, error)
	UpdateOrderStatus(ctx context.Context, id uuid.UUID, status model.OrderStatus, at time.Time) error
}

type WebhookRepository interface {
	// RecordEvent stores a delivery key and reports false if it was seen before.
	RecordEvent(ctx context.Context, provider, key, event string, at time.Time) (bool, error)
}

type PresenceStore interface {
	Touch(ctx context.Context, userID string, ttl time.Duration) error
	CountActive(ctx context.Context) (int64, error)
}
