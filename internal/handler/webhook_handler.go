package handler

import (
	"io"
	"net/http"

	"fxvps/platform/internal/service"
	"fxvps/platform/internal/service/flutterwave"

	"github.com/sirupsen/logrus"
)

type WebhookHandler struct {
	payments   *service.PaymentService
	secretHash string
	log        logrus.FieldLogger
}

func NewWebhookHandler(payments *service.PaymentService, secretHash string, log logrus.FieldLogger) *WebhookHandler {
	return &WebhookHandler{payments: payments, secretHash: secretHash, log: log}
}

// Flutterwave authenticates the delivery against the raw body before any
// parsing. A 200 tells the provider to stop redelivering; a 500 asks it to
// try again.
func (h *WebhookHandler) Flutterwave(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		badRequest(w, "unreadable body")
		return
	}

	if err := flutterwave.VerifySignature(r.Header, body, h.secretHash); err != nil {
		h.log.WithError(err).Warn("webhook signature rejected")
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "invalid signature"})
		return
	}

	ev, err := flutterwave.ParseEvent(body)
	if err != nil {
		badRequest(w, err.Error())
		return
	}

	outcome, err := h.payments.HandleEvent(r.Context(), ev)
	if err != nil {
		h.log.WithError(err).WithField("event_id", ev.ID).Error("webhook processing failed")
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "processing failed"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": string(outcome)})
}
