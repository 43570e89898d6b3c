package service

import (
	"context"
	"time"
)

type PresenceService struct {
	store PresenceStore
	ttl   time.Duration
}

func NewPresenceService(store PresenceStore, ttl time.Duration) *PresenceService {
	return &PresenceService{store: store, ttl: ttl}
}

// Heartbeat marks the user active for the presence TTL.
func (s *PresenceService) Heartbeat(ctx context.Context, userID string) error {
	return s.store.Touch(ctx, userID, s.ttl)
}

func (s *PresenceService) Active(ctx context.Context) (int64, error) {
	return s.store.CountActive(ctx)
}
