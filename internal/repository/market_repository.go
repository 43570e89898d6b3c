package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fxvps/platform/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const (
	algoColumns  = `id, seller_id, name, description, price_cents, currency, verified, created_at`
	orderColumns = `id, tx_ref, buyer_id, seller_id, referrer_id, algo_id, amount_cents, currency, status,
	created_at, updated_at`
)

func scanAlgo(row scanner) (*model.Algo, error) {
	var a model.Algo
	if err := row.Scan(&a.ID, &a.SellerID, &a.Name, &a.Description, &a.PriceCents, &a.Currency, &a.Verified, &a.CreatedAt); err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *Store) CreateAlgo(ctx context.Context, a *model.Algo) error {
	_, err := r.getExecutor(ctx).Exec(ctx,
		"INSERT INTO algos ("+algoColumns+") VALUES ($1, $2, $3, $4, $5, $6, $7, $8)",
		a.ID, a.SellerID, a.Name, a.Description, a.PriceCents, a.Currency, a.Verified, a.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create algo: %w", err)
	}
	return nil
}

func (r *Store) GetAlgo(ctx context.Context, id uuid.UUID) (*model.Algo, error) {
	a, err := scanAlgo(r.getExecutor(ctx).QueryRow(ctx, "SELECT "+algoColumns+" FROM algos WHERE id = $1", id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("algo %s: %w", id, model.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get algo: %w", err)
	}
	return a, nil
}

func (r *Store) ListVerifiedAlgos(ctx context.Context) ([]model.Algo, error) {
	rows, err := r.getExecutor(ctx).Query(ctx,
		"SELECT "+algoColumns+" FROM algos WHERE verified ORDER BY created_at DESC, id")
	if err != nil {
		return nil, fmt.Errorf("failed to list algos: %w", err)
	}
	defer rows.Close()

	var out []model.Algo
	for rows.Next() {
		a, err := scanAlgo(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan algo: %w", err)
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

func (r *Store) SetAlgoVerified(ctx context.Context, id uuid.UUID) error {
	tag, err := r.getExecutor(ctx).Exec(ctx, "UPDATE algos SET verified = TRUE WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to verify algo: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("algo %s: %w", id, model.ErrNotFound)
	}
	return nil
}

// CreateOrder inserts a new order
func (r *Store) CreateOrder(ctx context.Context, o *model.Order) error {
	_, err := r.getExecutor(ctx).Exec(ctx,
		"INSERT INTO orders ("+orderColumns+") VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)",
		o.ID, o.TxRef, o.BuyerID, o.SellerID, o.ReferrerID, o.AlgoID, o.AmountCents, o.Currency, o.Status,
		o.CreatedAt, o.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}
	return nil
}

// GetOrderByTxRefForUpdate locks the order row
func (r *Store) GetOrderByTxRefForUpdate(ctx context.Context, txRef string) (*model.Order, error) {
	var o model.Order
	err := r.getExecutor(ctx).QueryRow(ctx,
		"SELECT "+orderColumns+" FROM orders WHERE tx_ref = $1 FOR UPDATE", txRef).
		Scan(&o.ID, &o.TxRef, &o.BuyerID, &o.SellerID, &o.ReferrerID, &o.AlgoID, &o.AmountCents, &o.Currency, &o.Status,
			&o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("order %q: %w", txRef, model.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	return &o, nil
}

func (r *Store) UpdateOrderStatus(ctx context.Context, id uuid.UUID, status model.OrderStatus, at time.Time) error {
	tag, err := r.getExecutor(ctx).Exec(ctx,
		"UPDATE orders SET status = $1, updated_at = $2 WHERE id = $3", status, at, id)
	if err != nil {
		return fmt.Errorf("failed to update order status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("order %s: %w", id, model.ErrNotFound)
	}
	return nil
}
