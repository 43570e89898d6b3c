package handler

import (
	"net/http"

	"fxvps/platform/internal/middleware"
	"fxvps/platform/internal/model"
	"fxvps/platform/internal/service"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type MarketHandler struct {
	svc *service.MarketService
	log logrus.FieldLogger
}

func NewMarketHandler(svc *service.MarketService, log logrus.FieldLogger) *MarketHandler {
	return &MarketHandler{svc: svc, log: log}
}

func (h *MarketHandler) ListAlgos(w http.ResponseWriter, r *http.Request) {
	algos, err := h.svc.ListAlgos(r.Context())
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	if algos == nil {
		algos = []model.Algo{}
	}
	writeJSON(w, http.StatusOK, algos)
}

type SubmitAlgoRequest struct {
	Name        string `json:"name" validate:"required,max=120"`
	Description string `json:"description" validate:"max=2000"`
	PriceCents  int64  `json:"price_cents" validate:"required,gt=0"`
	Currency    string `json:"currency" validate:"required,len=3,alpha"`
}

func (h *MarketHandler) SubmitAlgo(w http.ResponseWriter, r *http.Request) {
	var req SubmitAlgoRequest
	if !decode(w, r, &req) {
		return
	}

	algo, err := h.svc.SubmitAlgo(r.Context(), service.AlgoSubmission{
		SellerID:    middleware.UserID(r.Context()),
		Name:        req.Name,
		Description: req.Description,
		PriceCents:  req.PriceCents,
		Currency:    req.Currency,
	})
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, algo)
}

func (h *MarketHandler) VerifyAlgo(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	if err := h.svc.VerifyAlgo(r.Context(), id); err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "verified"})
}

type OrderRequest struct {
	AlgoID     string `json:"algo_id" validate:"required,uuid"`
	ReferrerID string `json:"referrer_id" validate:"omitempty,max=128"`
}

func (h *MarketHandler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	var req OrderRequest
	if !decode(w, r, &req) {
		return
	}

	order, err := h.svc.PlaceOrder(r.Context(), middleware.UserID(r.Context()), uuid.MustParse(req.AlgoID), req.ReferrerID)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, order)
}
