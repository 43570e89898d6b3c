package model

import (
	"time"

	"github.com/google/uuid"
)

type VPSStatus string

const (
	VPSRunning    VPSStatus = "Running"
	VPSStopped    VPSStatus = "Stopped"
	VPSRestarting VPSStatus = "Restarting"
)

func (s VPSStatus) Valid() bool {
	_, ok := vpsTransitions[s]
	return ok
}

var vpsTransitions = map[VPSStatus][]VPSStatus{
	VPSStopped:    {VPSRunning},
	VPSRunning:    {VPSStopped, VPSRestarting},
	VPSRestarting: {VPSRunning},
}

// CanTransition reports whether a plan in status s may move to next.
func (s VPSStatus) CanTransition(next VPSStatus) bool {
	for _, allowed := range vpsTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

type VPSAction string

const (
	ActionStart   VPSAction = "start"
	ActionStop    VPSAction = "stop"
	ActionRestart VPSAction = "restart"
)

// Target returns the status an action moves a plan into.
func (a VPSAction) Target() (VPSStatus, bool) {
	switch a {
	case ActionStart:
		return VPSRunning, true
	case ActionStop:
		return VPSStopped, true
	case ActionRestart:
		return VPSRestarting, true
	}
	return "", false
}

type VPSPlan struct {
	ID              uuid.UUID `json:"id"`
	UserID          string    `json:"user_id"`
	Name            string    `json:"name"`
	Region          string    `json:"region"`
	CPU             int       `json:"cpu"`
	MemoryGB        int       `json:"memory_gb"`
	StorageGB       int       `json:"storage_gb"`
	PriceCents      int64     `json:"price_cents"`
	Status          VPSStatus `json:"status"`
	ExpiresAt       time.Time `json:"expires_at"`
	StatusChangedAt time.Time `json:"status_changed_at"`
	CreatedAt       time.Time `json:"created_at"`
}

func (p VPSPlan) Expired(now time.Time) bool {
	return !p.ExpiresAt.IsZero() && !now.Before(p.ExpiresAt)
}
