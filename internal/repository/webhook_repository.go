package repository

import (
	"context"
	"fmt"
	"time"
)

func (r *Store) RecordEvent(ctx context.Context, provider, key, event string, at time.Time) (bool, error) {
	tag, err := r.getExecutor(ctx).Exec(ctx,
		`INSERT INTO webhook_events (provider, event_key, event, received_at) VALUES ($1, $2, $3, $4)
		ON CONFLICT (provider, event_key) DO NOTHING`, provider, key, event, at)
	if err != nil {
		return false, fmt.Errorf("failed to record webhook event: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}
