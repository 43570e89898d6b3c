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

const transactionColumns = `id, user_id, kind, pool, amount_cents, fee_cents, net_cents, status,
	reference, method, destination, created_at, updated_at`

func scanTransaction(row scanner) (*model.Transaction, error) {
	var t model.Transaction
	err := row.Scan(&t.ID, &t.UserID, &t.Kind, &t.Pool, &t.AmountCents, &t.FeeCents, &t.NetCents, &t.Status,
		&t.Reference, &t.Method, &t.Destination, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// LockAccount creates the account row on first use and locks it.
func (r *Store) LockAccount(ctx context.Context, userID string) error {
	ex := r.getExecutor(ctx)
	_, err := ex.Exec(ctx, "INSERT INTO accounts (user_id, created_at) VALUES ($1, now()) ON CONFLICT (user_id) DO NOTHING", userID)
	if err != nil {
		return fmt.Errorf("failed to create account: %w", err)
	}

	var locked string
	err = ex.QueryRow(ctx, "SELECT user_id FROM accounts WHERE user_id = $1 FOR UPDATE", userID).Scan(&locked)
	if err != nil {
		return fmt.Errorf("failed to lock account: %w", err)
	}
	return nil
}

// ListTransactions returns every ledger entry of a user, newest first.
func (r *Store) ListTransactions(ctx context.Context, userID string) ([]model.Transaction, error) {
	rows, err := r.getExecutor(ctx).Query(ctx,
		"SELECT "+transactionColumns+" FROM transactions WHERE user_id = $1 ORDER BY created_at DESC, id", userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	var out []model.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		out = append(out, *t)
	}
	return out, rows.Err()
}

// CreateTransaction inserts a new ledger entry
func (r *Store) CreateTransaction(ctx context.Context, t *model.Transaction) error {
	_, err := r.getExecutor(ctx).Exec(ctx,
		`INSERT INTO transactions (`+transactionColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		t.ID, t.UserID, t.Kind, t.Pool, t.AmountCents, t.FeeCents, t.NetCents, t.Status,
		t.Reference, t.Method, t.Destination, t.CreatedAt, t.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create transaction: %w", err)
	}
	return nil
}

// GetTransactionForUpdate locks the ledger entry row
func (r *Store) GetTransactionForUpdate(ctx context.Context, id uuid.UUID) (*model.Transaction, error) {
	row := r.getExecutor(ctx).QueryRow(ctx,
		"SELECT "+transactionColumns+" FROM transactions WHERE id = $1 FOR UPDATE", id)
	t, err := scanTransaction(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("transaction %s: %w", id, model.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	return t, nil
}

func (r *Store) UpdateTransactionStatus(ctx context.Context, id uuid.UUID, status model.TxStatus, at time.Time) error {
	tag, err := r.getExecutor(ctx).Exec(ctx,
		"UPDATE transactions SET status = $1, updated_at = $2 WHERE id = $3", status, at, id)
	if err != nil {
		return fmt.Errorf("failed to update transaction status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("transaction %s: %w", id, model.ErrNotFound)
	}
	return nil
}
