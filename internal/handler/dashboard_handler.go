package handler

import (
	"net/http"

	"fxvps/platform/internal/middleware"
	"fxvps/platform/internal/service"

	"github.com/sirupsen/logrus"
)

// DashboardHandler serves the presence counter and the account overview.
type DashboardHandler struct {
	presence *service.PresenceService
	overview *service.OverviewService
	log      logrus.FieldLogger
}

func NewDashboardHandler(presence *service.PresenceService, overview *service.OverviewService, log logrus.FieldLogger) *DashboardHandler {
	return &DashboardHandler{presence: presence, overview: overview, log: log}
}

func (h *DashboardHandler) Heartbeat(w http.ResponseWriter, r *http.Request) {
	if err := h.presence.Heartbeat(r.Context(), middleware.UserID(r.Context())); err != nil {
		writeError(w, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *DashboardHandler) ActiveUsers(w http.ResponseWriter, r *http.Request) {
	n, err := h.presence.Active(r.Context())
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"active_users": n})
}

func (h *DashboardHandler) Overview(w http.ResponseWriter, r *http.Request) {
	ov, err := h.overview.Overview(r.Context(), middleware.UserID(r.Context()))
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, ov)
}
