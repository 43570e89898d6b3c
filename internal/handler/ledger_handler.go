package handler

import (
	"net/http"
	"strconv"

	"fxvps/platform/internal/middleware"
	"fxvps/platform/internal/model"
	"fxvps/platform/internal/service"

	"github.com/sirupsen/logrus"
)

type LedgerHandler struct {
	svc *service.LedgerService
	log logrus.FieldLogger
}

func NewLedgerHandler(svc *service.LedgerService, log logrus.FieldLogger) *LedgerHandler {
	return &LedgerHandler{svc: svc, log: log}
}

type earningsResponse struct {
	service.Balance
	TotalAvailableCents int64          `json:"total_available_cents"`
	Policy              service.Policy `json:"policy"`
}

func (h *LedgerHandler) Earnings(w http.ResponseWriter, r *http.Request) {
	bal, err := h.svc.Earnings(r.Context(), middleware.UserID(r.Context()))
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, earningsResponse{
		Balance:             bal,
		TotalAvailableCents: bal.Total(),
		Policy:              h.svc.Policy(),
	})
}

func (h *LedgerHandler) Quote(w http.ResponseWriter, r *http.Request) {
	amount, err := strconv.ParseInt(r.URL.Query().Get("amount_cents"), 10, 64)
	if err != nil {
		badRequest(w, "amount_cents must be an integer")
		return
	}
	q, err := h.svc.Quote(amount)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, q)
}

type WithdrawalRequest struct {
	Pool        string `json:"pool" validate:"required,oneof=referral sales"`
	AmountCents int64  `json:"amount_cents" validate:"required,gt=0"`
	Method      string `json:"method" validate:"required,max=64"`
	Destination string `json:"destination" validate:"required,max=256"`
}

func (h *LedgerHandler) RequestWithdrawal(w http.ResponseWriter, r *http.Request) {
	var req WithdrawalRequest
	if !decode(w, r, &req) {
		return
	}

	tx, err := h.svc.RequestWithdrawal(r.Context(), service.WithdrawalRequest{
		UserID:      middleware.UserID(r.Context()),
		Pool:        model.Pool(req.Pool),
		AmountCents: req.AmountCents,
		Method:      req.Method,
		Destination: req.Destination,
	})
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, tx)
}

func (h *LedgerHandler) ListWithdrawals(w http.ResponseWriter, r *http.Request) {
	txs, err := h.svc.ListWithdrawals(r.Context(), middleware.UserID(r.Context()))
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, txs)
}

func (h *LedgerHandler) CompleteWithdrawal(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	tx, err := h.svc.CompleteWithdrawal(r.Context(), id)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, tx)
}

func (h *LedgerHandler) FailWithdrawal(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	tx, err := h.svc.FailWithdrawal(r.Context(), id)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, tx)
}
