package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/mkadima/gestfact/internal/gateway"
	"github.com/mkadima/gestfact/internal/httpx"
	"github.com/mkadima/gestfact/internal/models"
	"github.com/mkadima/gestfact/internal/services"

	"gorm.io/gorm"
)

// PaymentHandler wires the external payment collaborator to invoice
// reconciliation. The confirm endpoint is the webhook-style path and may be
// delivered any number of times for the same transaction.
type PaymentHandler struct {
	DB       *gorm.DB
	Invoices *services.InvoiceService
	Gateway  gateway.Client
}

func NewPaymentHandler(db *gorm.DB, invoices *services.InvoiceService, gw gateway.Client) *PaymentHandler {
	return &PaymentHandler{DB: db, Invoices: invoices, Gateway: gw}
}

// Checkout: POST /payments/checkout?id=... – open a gateway session for the
// invoice's full TTC amount.
func (h *PaymentHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	invoice, err := h.Invoices.Get(id)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	amount := invoice.TotalTTCUSD
	if invoice.Currency == models.CurrencyFC {
		amount = invoice.TotalTTCFC
	}
	session, err := h.Gateway.CreateSession(r.Context(), invoice.ID, amount, invoice.Currency)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, session)
}

// Poll: POST /payments/poll?session=... – ask the gateway whether the
// session settled, and if so record the payment idempotently.
func (h *PaymentHandler) Poll(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("session")
	if sessionID == "" {
		httpx.JSONError(w, http.StatusBadRequest, "missing_session", nil)
		return
	}
	status, err := h.Gateway.CheckStatus(r.Context(), sessionID)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	if !status.Paid {
		httpx.JSON(w, http.StatusOK, map[string]any{"paid": false})
		return
	}
	payment, err := h.Invoices.RecordGatewayPayment(status.InvoiceID, status.TransactionRef, status.Currency)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"paid": true, "payment": payment})
}

// Confirm: POST /payments/confirm – webhook-style confirmation push.
func (h *PaymentHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	var req struct {
		InvoiceID      uint            `json:"invoice_id"`
		TransactionRef string          `json:"transaction_reference"`
		Currency       models.Currency `json:"currency"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	if req.Currency == "" {
		req.Currency = models.CurrencyUSD
	}
	payment, err := h.Invoices.RecordGatewayPayment(req.InvoiceID, req.TransactionRef, req.Currency)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, payment)
}
