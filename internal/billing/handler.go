package billing

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/griha-erp/griha-erp/internal/observability"
	"github.com/griha-erp/griha-erp/internal/platform/httpx"
	"github.com/griha-erp/griha-erp/internal/shared"
	"github.com/griha-erp/griha-erp/report"
)

// ReceiptRenderer converts an assembled receipt into PDF bytes.
type ReceiptRenderer interface {
	RenderReceipt(ctx context.Context, rc report.Receipt) ([]byte, error)
}

// Handler wires billing HTTP endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	fineRules *FineRuleStore
	renderer  ReceiptRenderer
	metrics   *observability.Metrics
	validator *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, fineRules *FineRuleStore, renderer ReceiptRenderer, metrics *observability.Metrics) *Handler {
	return &Handler{
		logger:    logger,
		service:   service,
		fineRules: fineRules,
		renderer:  renderer,
		metrics:   metrics,
		validator: validator.New(),
	}
}

// MountRoutes registers billing routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/bills", h.setupBill)
	r.Get("/bills", h.listBills)
	r.Get("/bills/{id}", h.getBill)
	r.Get("/bills/{id}/payments", h.listPayments)
	r.Post("/bills/{id}/pay", h.payBill)
	r.Get("/payments", h.paymentHistory)
	r.Get("/payments/{id}/receipt", h.paymentReceipt)
	r.Get("/balance", h.currentBalance)
	r.Get("/fine-rule", h.getFineRule)
	r.Put("/fine-rule", h.updateFineRule)
}

type setupBillRequest struct {
	PropertyNumber string         `json:"property_number" validate:"required"`
	Month          int            `json:"month" validate:"required,min=1,max=12"`
	Year           int            `json:"year" validate:"required,min=2000"`
	IssueDate      time.Time      `json:"issue_date" validate:"required"`
	DueDate        time.Time      `json:"due_date" validate:"required"`
	Charges        map[string]any `json:"bills_fields"`
}

func (h *Handler) setupBill(w http.ResponseWriter, r *http.Request) {
	var req setupBillRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	bill, err := h.service.SetupBill(r.Context(), SetupBillInput{
		PropertyNumber: req.PropertyNumber,
		Month:          req.Month,
		Year:           req.Year,
		IssueDate:      req.IssueDate,
		DueDate:        req.DueDate,
		Charges:        NormalizeCharges(req.Charges),
	})
	if err != nil {
		h.logger.Error("setup bill failed", "error", err, "property", req.PropertyNumber)
		httpx.RespondError(w, err)
		return
	}
	h.metrics.RecordBillIssued()
	httpx.JSON(w, http.StatusCreated, bill)
}

func (h *Handler) listBills(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	perPage, _ := strconv.Atoi(q.Get("limit"))
	month, _ := strconv.Atoi(q.Get("month"))
	year, _ := strconv.Atoi(q.Get("year"))
	blockID, _ := strconv.ParseInt(q.Get("block_id"), 10, 64)

	bills, pagination, err := h.service.ListBills(r.Context(), ListBillsRequest{
		PropertyNumber: q.Get("property_number"),
		BlockID:        blockID,
		Month:          month,
		Year:           year,
		Status:         BillStatus(q.Get("status")),
		Page:           page,
		PerPage:        perPage,
	})
	if err != nil {
		h.logger.Error("list bills failed", "error", err)
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"bills":      bills,
		"pagination": pagination,
	})
}

func (h *Handler) getBill(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid bill id")
		return
	}
	bill, err := h.service.GetBill(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, bill)
}

func (h *Handler) listPayments(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid bill id")
		return
	}
	payments, err := h.service.ListPayments(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"payments": payments})
}

func (h *Handler) paymentHistory(w http.ResponseWriter, r *http.Request) {
	payments, err := h.service.PaymentHistory(r.Context(), r.URL.Query().Get("property_number"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"payments": payments})
}

func (h *Handler) paymentReceipt(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid payment id")
		return
	}
	if h.renderer == nil {
		httpx.Problem(w, http.StatusServiceUnavailable, "Service Unavailable", "receipt rendering is not configured")
		return
	}
	rc, err := h.service.Receipt(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	pdf, err := h.renderer.RenderReceipt(r.Context(), rc)
	if err != nil {
		h.logger.Error("render receipt failed", "error", err, "payment_id", id)
		httpx.Problem(w, http.StatusBadGateway, "Bad Gateway", "receipt rendering failed")
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `inline; filename="`+rc.Number+`.pdf"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(pdf)
}

type payBillRequest struct {
	ReceivedAmount float64 `json:"received_amount" validate:"required,gt=0"`
	Discount       float64 `json:"discount" validate:"gte=0"`
	PaymentBy      string  `json:"payment_by" validate:"required,oneof=Cash Bank"`
	ReferenceNo    string  `json:"reference_no"`
	Description    string  `json:"description"`
}

func (h *Handler) payBill(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid bill id")
		return
	}
	var req payBillRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	payment, err := h.service.PayBill(r.Context(), PayBillRequest{
		BillID:         id,
		ReceivedAmount: req.ReceivedAmount,
		Discount:       req.Discount,
		Method:         PaymentMethod(req.PaymentBy),
		ReferenceNo:    req.ReferenceNo,
		Description:    req.Description,
	})
	if err != nil {
		h.logger.Error("pay bill failed", "error", err, "bill_id", id)
		httpx.RespondError(w, err)
		return
	}
	h.metrics.RecordPayment(string(payment.Method), string(payment.Status))
	httpx.JSON(w, http.StatusCreated, payment)
}

func (h *Handler) currentBalance(w http.ResponseWriter, r *http.Request) {
	property := r.URL.Query().Get("property_number")
	if property == "" {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "property_number required")
		return
	}
	rental := r.URL.Query().Get("rental") == "true"

	result, err := h.service.CurrentBalance(r.Context(), property, rental)
	if err != nil {
		h.logger.Error("balance lookup failed", "error", err, "property", property)
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, result)
}

func (h *Handler) getFineRule(w http.ResponseWriter, r *http.Request) {
	rule, err := h.fineRules.Get(r.Context())
	if err != nil {
		h.logger.Warn("fine rule lookup failed", "error", err)
		// Fail open: consumers treat a missing rule as no fine.
		httpx.JSON(w, http.StatusOK, FineRule{Percentage: 0})
		return
	}
	httpx.JSON(w, http.StatusOK, rule)
}

type updateFineRuleRequest struct {
	Percentage float64 `json:"fine" validate:"gte=0,lte=100"`
}

func (h *Handler) updateFineRule(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	if !sess.IsAdmin() {
		httpx.RespondError(w, httpx.ErrForbidden)
		return
	}
	var req updateFineRuleRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	rule, err := h.fineRules.Update(r.Context(), req.Percentage)
	if err != nil {
		h.logger.Error("update fine rule failed", "error", err)
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, rule)
}
