package reporthttp

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/griha-erp/griha-erp/internal/platform/httpx"
	"github.com/griha-erp/griha-erp/internal/reports"
	"github.com/griha-erp/griha-erp/internal/reports/export"
	"github.com/griha-erp/griha-erp/internal/shared"
)

// Handler serves the collection and defaulters reports as JSON or CSV.
type Handler struct {
	logger  *slog.Logger
	service *reports.Service
}

func NewHandler(logger *slog.Logger, service *reports.Service) *Handler {
	return &Handler{logger: logger, service: service}
}

func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/collection", h.collection)
	r.Get("/defaulters", h.defaulters)
}

func (h *Handler) collection(w http.ResponseWriter, r *http.Request) {
	month, _ := strconv.Atoi(r.URL.Query().Get("month"))
	year, _ := strconv.Atoi(r.URL.Query().Get("year"))

	report, err := h.service.Collection(r.Context(), shared.Period{Month: month, Year: year})
	if err != nil {
		h.logger.Error("collection report failed", "error", err, "month", month, "year", year)
		httpx.RespondError(w, err)
		return
	}

	if r.URL.Query().Get("format") == "csv" {
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", `attachment; filename="collection-`+report.Period.String()+`.csv"`)
		if err := export.WriteCollectionCSV(w, report); err != nil {
			h.logger.Error("write collection csv failed", "error", err)
		}
		return
	}
	httpx.JSON(w, http.StatusOK, report)
}

func (h *Handler) defaulters(w http.ResponseWriter, r *http.Request) {
	report, err := h.service.Defaulters(r.Context())
	if err != nil {
		h.logger.Error("defaulters report failed", "error", err)
		httpx.RespondError(w, err)
		return
	}

	if r.URL.Query().Get("format") == "csv" {
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", `attachment; filename="defaulters-`+report.AsOf+`.csv"`)
		if err := export.WriteDefaultersCSV(w, report); err != nil {
			h.logger.Error("write defaulters csv failed", "error", err)
		}
		return
	}
	httpx.JSON(w, http.StatusOK, report)
}
