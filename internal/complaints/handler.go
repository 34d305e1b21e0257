package complaints

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/griha-erp/griha-erp/internal/platform/httpx"
)

type Handler struct {
	logger  *slog.Logger
	service *Service
}

func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.file)
	r.Get("/{id}", h.show)
	r.Post("/{id}/status", h.advance)
}

type fileComplaintRequest struct {
	PropertyNumber string `json:"property_number"`
	Category       string `json:"category"`
	Description    string `json:"description"`
}

type advanceRequest struct {
	Status     Status `json:"status"`
	Resolution string `json:"resolution"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	list, total, err := h.service.List(r.Context(), ListRequest{
		PropertyNumber: r.URL.Query().Get("property_number"),
		Status:         Status(r.URL.Query().Get("status")),
		Page:           page,
		Limit:          limit,
	})
	if err != nil {
		h.logger.Error("list complaints failed", "error", err)
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"complaints": list, "total": total})
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid complaint id")
		return
	}
	c, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, c)
}

func (h *Handler) file(w http.ResponseWriter, r *http.Request) {
	var req fileComplaintRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	created, err := h.service.File(r.Context(), Complaint{
		PropertyNumber: req.PropertyNumber,
		Category:       req.Category,
		Description:    req.Description,
	})
	if err != nil {
		h.logger.Error("file complaint failed", "error", err)
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, created)
}

func (h *Handler) advance(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid complaint id")
		return
	}
	var req advanceRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	updated, err := h.service.Advance(r.Context(), id, req.Status, req.Resolution)
	if err != nil {
		h.logger.Error("advance complaint failed", "error", err, "id", id)
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, updated)
}
