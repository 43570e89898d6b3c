package service

import (
	"context"

	"fxvps/platform/internal/model"

	"golang.org/x/sync/errgroup"
)

type Overview struct {
	Earnings    Balance         `json:"earnings"`
	Policy      Policy          `json:"policy"`
	Plans       []model.VPSPlan `json:"plans"`
	ActiveUsers int64           `json:"active_users"`
}

type OverviewService struct {
	ledger   *LedgerService
	vps      *VPSService
	presence *PresenceService
}

func NewOverviewService(ledger *LedgerService, vps *VPSService, presence *PresenceService) *OverviewService {
	return &OverviewService{ledger: ledger, vps: vps, presence: presence}
}

// Overview gathers the account dashboard in parallel.
func (s *OverviewService) Overview(ctx context.Context, userID string) (*Overview, error) {
	out := &Overview{Policy: s.ledger.Policy()}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		out.Earnings, err = s.ledger.Earnings(ctx, userID)
		return err
	})

	g.Go(func() error {
		var err error
		out.Plans, err = s.vps.ListPlans(ctx, userID)
		return err
	})

	g.Go(func() error {
		var err error
		out.ActiveUsers, err = s.presence.Active(ctx)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if out.Plans == nil {
		out.Plans = []model.VPSPlan{}
	}
	return out, nil
}
