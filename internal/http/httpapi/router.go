package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"rewardengine/internal/http/handlers"
	"rewardengine/internal/infra"
	"rewardengine/internal/middleware"
)

func NewRouter(cfg *infra.Config, logger infra.Logger, app *handlers.App) http.Handler {
	r := chi.NewRouter()

	r.Use(
		chimw.RealIP,
		chimw.Recoverer,
		middleware.RequestID,
		middleware.Logger(logger),
		middleware.CORS(cfg.CORSAllowedOrigins),
		middleware.RateLimit(cfg.RateLimitPerMin, time.Minute),
		middleware.Locale(cfg.DefaultLocale),
	)

	r.Get("/v1/healthz", app.Health)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/v1/transactions", func(r chi.Router) {
		r.Post("/", app.TransactionsProcess)
		r.Post("/{transactionID}/cancel", app.TransactionsCancel)
	})

	r.Get("/v1/holders/{holderID}/vesting", app.VestingSummary)
	r.Get("/v1/merchants/{merchantID}/points", app.MerchantPoints)

	r.Route("/v1/governance/changes", func(r chi.Router) {
		r.Post("/", app.GovernancePropose)
		r.Get("/", app.GovernancePending)
		r.Get("/{changeID}/approval", app.GovernanceApproval)
		r.Post("/{changeID}/execute", app.GovernanceExecute)
	})

	return r
}
