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

const planColumns = `id, user_id, name, region, cpu, memory_gb, storage_gb, price_cents, status,
	expires_at, status_changed_at, created_at`

func scanPlan(row scanner) (*model.VPSPlan, error) {
	var p model.VPSPlan
	err := row.Scan(&p.ID, &p.UserID, &p.Name, &p.Region, &p.CPU, &p.MemoryGB, &p.StorageGB, &p.PriceCents, &p.Status,
		&p.ExpiresAt, &p.StatusChangedAt, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *Store) CreatePlan(ctx context.Context, p *model.VPSPlan) error {
	_, err := r.getExecutor(ctx).Exec(ctx,
		`INSERT INTO vps_plans (`+planColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		p.ID, p.UserID, p.Name, p.Region, p.CPU, p.MemoryGB, p.StorageGB, p.PriceCents, p.Status,
		p.ExpiresAt, p.StatusChangedAt, p.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create plan: %w", err)
	}
	return nil
}

func (r *Store) GetPlan(ctx context.Context, id uuid.UUID) (*model.VPSPlan, error) {
	return r.getPlan(ctx, "SELECT "+planColumns+" FROM vps_plans WHERE id = $1", id)
}

// GetPlanForUpdate locks the plan row
func (r *Store) GetPlanForUpdate(ctx context.Context, id uuid.UUID) (*model.VPSPlan, error) {
	return r.getPlan(ctx, "SELECT "+planColumns+" FROM vps_plans WHERE id = $1 FOR UPDATE", id)
}

func (r *Store) getPlan(ctx context.Context, query string, id uuid.UUID) (*model.VPSPlan, error) {
	p, err := scanPlan(r.getExecutor(ctx).QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("plan %s: %w", id, model.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get plan: %w", err)
	}
	return p, nil
}

func (r *Store) ListPlans(ctx context.Context, userID string) ([]model.VPSPlan, error) {
	return r.listPlans(ctx, "SELECT "+planColumns+" FROM vps_plans WHERE user_id = $1 ORDER BY created_at DESC, id", userID)
}

func (r *Store) ListPlansByStatus(ctx context.Context, status model.VPSStatus) ([]model.VPSPlan, error) {
	return r.listPlans(ctx, "SELECT "+planColumns+" FROM vps_plans WHERE status = $1 ORDER BY status_changed_at, id", status)
}

func (r *Store) listPlans(ctx context.Context, query string, arg any) ([]model.VPSPlan, error) {
	rows, err := r.getExecutor(ctx).Query(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("failed to list plans: %w", err)
	}
	defer rows.Close()

	var out []model.VPSPlan
	for rows.Next() {
		p, err := scanPlan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan plan: %w", err)
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

func (r *Store) UpdatePlanStatus(ctx context.Context, id uuid.UUID, status model.VPSStatus, at time.Time) error {
	tag, err := r.getExecutor(ctx).Exec(ctx,
		"UPDATE vps_plans SET status = $1, status_changed_at = $2 WHERE id = $3", status, at, id)
	if err != nil {
		return fmt.Errorf("failed to update plan status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("plan %s: %w", id, model.ErrNotFound)
	}
	return nil
}
