package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/griha-erp/griha-erp/internal/billing"
	"github.com/griha-erp/griha-erp/internal/complaints"
	"github.com/griha-erp/griha-erp/internal/forms"
	"github.com/griha-erp/griha-erp/internal/observability"
	"github.com/griha-erp/griha-erp/internal/registry/blocks"
	"github.com/griha-erp/griha-erp/internal/registry/properties"
	reporthttp "github.com/griha-erp/griha-erp/internal/reports/http"
	"github.com/griha-erp/griha-erp/internal/shared"
	"github.com/griha-erp/griha-erp/jobs"
	"github.com/griha-erp/griha-erp/report"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger         *slog.Logger
	Config         *Config
	SessionManager *shared.SessionManager

	BlocksHandler     *blocks.Handler
	PropertiesHandler *properties.Handler
	FormsHandler      *forms.Handler
	BillingHandler    *billing.Handler
	ComplaintsHandler *complaints.Handler
	ReportsHandler    *reporthttp.Handler
	ReportHandler     *report.Handler
	JobHandler        *jobs.Handler
	Metrics           *observability.Metrics
}

// NewRouter constructs the chi.Router with Griha defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:         params.Logger,
		Config:         params.Config,
		SessionManager: params.SessionManager,
		Metrics:        params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Group(func(r chi.Router) {
		r.Use(RequireSession)

		if params.BlocksHandler != nil {
			r.Route("/blocks", params.BlocksHandler.MountRoutes)
		}
		if params.PropertiesHandler != nil {
			r.Route("/properties", params.PropertiesHandler.MountRoutes)
		}
		if params.FormsHandler != nil {
			r.Route("/bill-form-fields", params.FormsHandler.MountRoutes)
		}
		if params.BillingHandler != nil {
			params.BillingHandler.MountRoutes(r)
		}
		if params.ComplaintsHandler != nil {
			r.Route("/complaints", params.ComplaintsHandler.MountRoutes)
		}
		if params.ReportsHandler != nil {
			r.Route("/reports", params.ReportsHandler.MountRoutes)
		}
	})

	if params.ReportHandler != nil {
		r.Route("/report", params.ReportHandler.MountRoutes)
	}
	if params.JobHandler != nil {
		r.Route("/jobs", params.JobHandler.MountRoutes)
	}
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	return r
}
