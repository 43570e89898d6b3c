package handler

import (
	"io"
	"net/http"

	"fxvps/platform/internal/metrics"
	mw "fxvps/platform/internal/middleware"

	"github.com/andybalholm/brotli"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"
)

type Handler struct {
	router *chi.Mux

	auth    *mw.Auth
	limiter *mw.RateLimiter

	ledger    *LedgerHandler
	vps       *VPSHandler
	market    *MarketHandler
	webhook   *WebhookHandler
	dashboard *DashboardHandler
}

type Deps struct {
	Auth    *mw.Auth
	Limiter *mw.RateLimiter

	Ledger    *LedgerHandler
	VPS       *VPSHandler
	Market    *MarketHandler
	Webhook   *WebhookHandler
	Dashboard *DashboardHandler
}

func NewHandler(deps Deps, log logrus.FieldLogger) *Handler {
	router := chi.NewRouter()

	compressor := middleware.NewCompressor(5)
	compressor.SetEncoder("br", func(w io.Writer, level int) io.Writer {
		return brotli.NewWriterLevel(w, level)
	})

	// Middleware
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(mw.Logger(log))
	router.Use(middleware.Recoverer)
	router.Use(mw.Metrics)
	router.Use(compressor.Handler)

	h := &Handler{
		router:    router,
		auth:      deps.Auth,
		limiter:   deps.Limiter,
		ledger:    deps.Ledger,
		vps:       deps.VPS,
		market:    deps.Market,
		webhook:   deps.Webhook,
		dashboard: deps.Dashboard,
	}

	h.registerRoutes()
	return h
}

func (h *Handler) registerRoutes() {
	h.router.Method(http.MethodGet, "/metrics", metrics.Handler())

	h.router.Route("/v1", func(r chi.Router) {
		r.Get("/health", h.HealthCheck)
		r.Post("/webhooks/flutterwave", h.webhook.Flutterwave)

		// Public, limited per client IP.
		r.Group(func(r chi.Router) {
			r.Use(h.limiter.Handler)
			r.Get("/algos", h.market.ListAlgos)
			r.Get("/presence", h.dashboard.ActiveUsers)
		})

		// Authenticated, limited per user.
		r.Group(func(r chi.Router) {
			r.Use(h.auth.Handler)
			r.Use(h.limiter.Handler)

			r.Post("/presence/heartbeat", h.dashboard.Heartbeat)

			r.Route("/me", func(r chi.Router) {
				r.Get("/overview", h.dashboard.Overview)

				r.Post("/algos", h.market.SubmitAlgo)
				r.Post("/orders", h.market.PlaceOrder)

				r.Get("/earnings", h.ledger.Earnings)
				r.Get("/withdrawals/quote", h.ledger.Quote)
				r.Get("/withdrawals", h.ledger.ListWithdrawals)
				r.Post("/withdrawals", h.ledger.RequestWithdrawal)

				r.Get("/vps", h.vps.ListPlans)
				r.Get("/vps/{id}", h.vps.GetPlan)
				r.Post("/vps/{id}/actions", h.vps.Apply)
			})

			r.Route("/admin", func(r chi.Router) {
				r.Use(mw.RequireRole(mw.RoleAdmin))

				r.Post("/algos/{id}/verify", h.market.VerifyAlgo)
				r.Post("/vps", h.vps.CreatePlan)
				r.Post("/vps/{id}/status", h.vps.SetStatus)
				r.Post("/withdrawals/{id}/complete", h.ledger.CompleteWithdrawal)
				r.Post("/withdrawals/{id}/fail", h.ledger.FailWithdrawal)
			})
		})
	})
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.router.ServeHTTP(w, r)
}

func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}
