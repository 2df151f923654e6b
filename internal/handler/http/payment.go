package http

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/edricyan2022-wq/Wrestling-SITE/internal/service"
	"github.com/edricyan2022-wq/Wrestling-SITE/pkg/httputil"
	"github.com/edricyan2022-wq/Wrestling-SITE/pkg/pagination"
	"github.com/edricyan2022-wq/Wrestling-SITE/pkg/validator"
)

// webhookSignatureHeader carries the HMAC signature on provider callbacks.
const webhookSignatureHeader = "X-Checkout-Signature"

// PaymentHandler handles HTTP requests for plans, checkout, and webhooks.
type PaymentHandler struct {
	service *service.BillingService
	logger  *slog.Logger
}

// NewPaymentHandler creates a new payment HTTP handler.
func NewPaymentHandler(svc *service.BillingService, logger *slog.Logger) *PaymentHandler {
	return &PaymentHandler{service: svc, logger: logger}
}

// CreateCheckoutRequest is the JSON request body for opening a checkout.
// Origin overrides the Origin header for non-browser clients.
type CreateCheckoutRequest struct {
	PlanID string `json:"plan_id" validate:"required"`
	Origin string `json:"origin" validate:"omitempty,url"`
}

// Plans handles GET /api/plans
func (h *PaymentHandler) Plans(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: h.service.Plans()})
}

// CreateCheckout handles POST /api/payments/create-checkout
func (h *PaymentHandler) CreateCheckout(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1MB limit

	var req CreateCheckoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}

	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	origin := req.Origin
	if origin == "" {
		origin = r.Header.Get("Origin")
	}
	if origin == "" {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "origin is required"},
		})
		return
	}

	result, err := h.service.CreateCheckout(r.Context(), UserFromContext(r.Context()), req.PlanID, origin)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: result})
}

// Status handles GET /api/payments/status/{sessionID}
func (h *PaymentHandler) Status(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	result, err := h.service.PaymentStatus(r.Context(), UserFromContext(r.Context()), sessionID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: result})
}

// History handles GET /api/payments/history
func (h *PaymentHandler) History(w http.ResponseWriter, r *http.Request) {
	params := pagination.FromRequest(r)

	result, err := h.service.ListTransactions(r.Context(), UserFromContext(r.Context()), params)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, result)
}

// Webhook handles POST /api/webhook/checkout. The raw body is needed for
// signature verification, so this route skips the JSON middleware.
func (h *PaymentHandler) Webhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, 1<<20))
	if err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "unable to read payload"},
		})
		return
	}

	if err := h.service.HandleWebhook(r.Context(), payload, r.Header.Get(webhookSignatureHeader)); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{
		Data: map[string]string{"status": "received"},
	})
}
