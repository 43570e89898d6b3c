package handler

import (
	"net/http"
	"time"

	"fxvps/platform/internal/middleware"
	"fxvps/platform/internal/model"
	"fxvps/platform/internal/service"

	"github.com/sirupsen/logrus"
)

type VPSHandler struct {
	svc *service.VPSService
	log logrus.FieldLogger
}

func NewVPSHandler(svc *service.VPSService, log logrus.FieldLogger) *VPSHandler {
	return &VPSHandler{svc: svc, log: log}
}

func (h *VPSHandler) ListPlans(w http.ResponseWriter, r *http.Request) {
	plans, err := h.svc.ListPlans(r.Context(), middleware.UserID(r.Context()))
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	if plans == nil {
		plans = []model.VPSPlan{}
	}
	writeJSON(w, http.StatusOK, plans)
}

func (h *VPSHandler) GetPlan(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	plan, err := h.svc.GetPlan(r.Context(), middleware.UserID(r.Context()), id)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, plan)
}

type ActionRequest struct {
	Action string `json:"action" validate:"required,oneof=start stop restart"`
}

func (h *VPSHandler) Apply(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	var req ActionRequest
	if !decode(w, r, &req) {
		return
	}

	plan, err := h.svc.Apply(r.Context(), middleware.UserID(r.Context()), id, model.VPSAction(req.Action))
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, plan)
}

type CreatePlanRequest struct {
	UserID     string    `json:"user_id" validate:"required,max=128"`
	Name       string    `json:"name" validate:"required,max=64"`
	Region     string    `json:"region" validate:"required,max=64"`
	CPU        int       `json:"cpu" validate:"min=1,max=64"`
	MemoryGB   int       `json:"memory_gb" validate:"min=1,max=512"`
	StorageGB  int       `json:"storage_gb" validate:"min=10,max=4096"`
	PriceCents int64     `json:"price_cents" validate:"min=0"`
	ExpiresAt  time.Time `json:"expires_at" validate:"required"`
}

func (h *VPSHandler) CreatePlan(w http.ResponseWriter, r *http.Request) {
	var req CreatePlanRequest
	if !decode(w, r, &req) {
		return
	}

	plan, err := h.svc.CreatePlan(r.Context(), service.NewPlan{
		UserID:     req.UserID,
		Name:       req.Name,
		Region:     req.Region,
		CPU:        req.CPU,
		MemoryGB:   req.MemoryGB,
		StorageGB:  req.StorageGB,
		PriceCents: req.PriceCents,
		ExpiresAt:  req.ExpiresAt,
	})
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, plan)
}

type StatusRequest struct {
	Status string `json:"status" validate:"required,oneof=Running Stopped Restarting"`
}

func (h *VPSHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	var req StatusRequest
	if !decode(w, r, &req) {
		return
	}

	plan, err := h.svc.SetStatus(r.Context(), id, model.VPSStatus(req.Status))
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, plan)
}
