package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"fxvps/platform/internal/metrics"
	"fxvps/platform/internal/model"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type VPSService struct {
	repo            VPSRepository
	restartDuration time.Duration
	log             logrus.FieldLogger
	now             func() time.Time
}

func NewVPSService(repo VPSRepository, restartDuration time.Duration, log logrus.FieldLogger) *VPSService {
	return &VPSService{repo: repo, restartDuration: restartDuration, log: log, now: time.Now}
}

func (s *VPSService) ListPlans(ctx context.Context, userID string) ([]model.VPSPlan, error) {
	return s.repo.ListPlans(ctx, userID)
}

// GetPlan returns a plan owned by userID. Plans of other users are reported
// as not found.
func (s *VPSService) GetPlan(ctx context.Context, userID string, id uuid.UUID) (*model.VPSPlan, error) {
	plan, err := s.repo.GetPlan(ctx, id)
	if err != nil {
		return nil, err
	}
	if plan.UserID != userID {
		return nil, fmt.Errorf("plan %s: %w", id, model.ErrNotFound)
	}
	return plan, nil
}

// Apply runs a lifecycle action on one of the user's plans.
func (s *VPSService) Apply(ctx context.Context, userID string, id uuid.UUID, action model.VPSAction) (*model.VPSPlan, error) {
	target, ok := action.Target()
	if !ok {
		return nil, fmt.Errorf("%w: %q", model.ErrInvalidAction, action)
	}

	var updated *model.VPSPlan
	err := s.repo.RunAtomic(ctx, func(ctx context.Context) error {
		plan, err := s.repo.GetPlanForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if plan.UserID != userID {
			return fmt.Errorf("plan %s: %w", id, model.ErrNotFound)
		}
		if target != model.VPSStopped && plan.Expired(s.now()) {
			return fmt.Errorf("%w: plan %s expired at %s", model.ErrPlanExpired, id, plan.ExpiresAt.Format(time.RFC3339))
		}
		updated, err = s.transition(ctx, plan, target)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// SetStatus moves a plan to status regardless of owner. The transition
// table still applies.
func (s *VPSService) SetStatus(ctx context.Context, id uuid.UUID, status model.VPSStatus) (*model.VPSPlan, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", model.ErrInvalidTransition, status)
	}

	var updated *model.VPSPlan
	err := s.repo.RunAtomic(ctx, func(ctx context.Context) error {
		plan, err := s.repo.GetPlanForUpdate(ctx, id)
		if err != nil {
			return err
		}
		updated, err = s.transition(ctx, plan, status)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *VPSService) transition(ctx context.Context, plan *model.VPSPlan, target model.VPSStatus) (*model.VPSPlan, error) {
	from := plan.Status
	if !from.CanTransition(target) {
		return nil, fmt.Errorf("%w: %s -> %s", model.ErrInvalidTransition, from, target)
	}

	now := s.now().UTC()
	if err := s.repo.UpdatePlanStatus(ctx, plan.ID, target, now); err != nil {
		return nil, err
	}
	plan.Status = target
	plan.StatusChangedAt = now

	metrics.RecordVPSTransition(string(from), string(target))
	s.log.WithFields(logrus.Fields{
		"plan_id": plan.ID,
		"user_id": plan.UserID,
		"from":    from,
		"to":      target,
	}).Info("vps status changed")

	return plan, nil
}

type NewPlan struct {
	UserID     string
	Name       string
	Region     string
	CPU        int
	MemoryGB   int
	StorageGB  int
	PriceCents int64
	ExpiresAt  time.Time
}

const (
	maxPlanCPU       = 64
	maxPlanMemoryGB  = 512
	minPlanStorageGB = 10
	maxPlanStorageGB = 4096
)

func (in NewPlan) validate() error {
	switch {
	case strings.TrimSpace(in.UserID) == "":
		return fmt.Errorf("%w: user id is required", model.ErrInvalidPlan)
	case strings.TrimSpace(in.Name) == "":
		return fmt.Errorf("%w: name is required", model.ErrInvalidPlan)
	case in.CPU < 1 || in.CPU > maxPlanCPU:
		return fmt.Errorf("%w: cpu %d outside 1..%d", model.ErrInvalidPlan, in.CPU, maxPlanCPU)
	case in.MemoryGB < 1 || in.MemoryGB > maxPlanMemoryGB:
		return fmt.Errorf("%w: memory %dGB outside 1..%d", model.ErrInvalidPlan, in.MemoryGB, maxPlanMemoryGB)
	case in.StorageGB < minPlanStorageGB || in.StorageGB > maxPlanStorageGB:
		return fmt.Errorf("%w: storage %dGB outside %d..%d", model.ErrInvalidPlan, in.StorageGB, minPlanStorageGB, maxPlanStorageGB)
	}
	return nil
}

// CreatePlan provisions a plan record. New plans start stopped.
func (s *VPSService) CreatePlan(ctx context.Context, in NewPlan) (*model.VPSPlan, error) {
	now := s.now().UTC()
	if !in.ExpiresAt.After(now) {
		return nil, fmt.Errorf("%w: expiry must be in the future", model.ErrPlanExpired)
	}
	if in.PriceCents < 0 {
		return nil, model.ErrInvalidAmount
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	plan := &model.VPSPlan{
		ID:              uuid.New(),
		UserID:          in.UserID,
		Name:            in.Name,
		Region:          in.Region,
		CPU:             in.CPU,
		MemoryGB:        in.MemoryGB,
		StorageGB:       in.StorageGB,
		PriceCents:      in.PriceCents,
		Status:          model.VPSStopped,
		ExpiresAt:       in.ExpiresAt.UTC(),
		StatusChangedAt: now,
		CreatedAt:       now,
	}
	if err := s.repo.CreatePlan(ctx, plan); err != nil {
		return nil, err
	}
	return plan, nil
}

type SweepResult struct {
	Restarted int
	Expired   int
}

// Sweep finishes restarts that have run for the restart duration and stops
// running plans past their expiry.
func (s *VPSService) Sweep(ctx context.Context) (SweepResult, error) {
	var res SweepResult
	now := s.now()

	restarting, err := s.repo.ListPlansByStatus(ctx, model.VPSRestarting)
	if err != nil {
		return res, fmt.Errorf("list restarting plans: %w", err)
	}
	for _, p := range restarting {
		if !s.restartDue(p, now) {
			continue
		}
		ok, err := s.sweepOne(ctx, p.ID, model.VPSRestarting, model.VPSRunning, now)
		if err != nil {
			return res, err
		}
		if ok {
			res.Restarted++
		}
	}

	running, err := s.repo.ListPlansByStatus(ctx, model.VPSRunning)
	if err != nil {
		return res, fmt.Errorf("list running plans: %w", err)
	}
	for _, p := range running {
		if !p.Expired(now) {
			continue
		}
		ok, err := s.sweepOne(ctx, p.ID, model.VPSRunning, model.VPSStopped, now)
		if err != nil {
			return res, err
		}
		if ok {
			res.Expired++
		}
	}

	return res, nil
}

func (s *VPSService) restartDue(p model.VPSPlan, now time.Time) bool {
	return now.Sub(p.StatusChangedAt) >= s.restartDuration
}

// sweepOne re-reads the plan under lock and re-checks the sweep rule; a
// concurrent action may have moved it or started a fresh restart.
func (s *VPSService) sweepOne(ctx context.Context, id uuid.UUID, from, to model.VPSStatus, now time.Time) (bool, error) {
	moved := false
	err := s.repo.RunAtomic(ctx, func(ctx context.Context) error {
		plan, err := s.repo.GetPlanForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if plan.Status != from {
			return nil
		}
		switch from {
		case model.VPSRestarting:
			if !s.restartDue(*plan, now) {
				return nil
			}
		case model.VPSRunning:
			if !plan.Expired(now) {
				return nil
			}
		}
		if _, err := s.transition(ctx, plan, to); err != nil {
			return err
		}
		moved = true
		return nil
	})
	return moved, err
}
