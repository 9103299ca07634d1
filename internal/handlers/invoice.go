package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/mkadima/gestfact/internal/gate"
	"github.com/mkadima/gestfact/internal/httpx"
	"github.com/mkadima/gestfact/internal/models"
	"github.com/mkadima/gestfact/internal/services"

	"gorm.io/gorm"
)

type InvoiceHandler struct {
	DB   *gorm.DB
	Svc  *services.InvoiceService
	Gate *gate.Gate
}

func NewInvoiceHandler(db *gorm.DB, svc *services.InvoiceService, g *gate.Gate) *InvoiceHandler {
	return &InvoiceHandler{DB: db, Svc: svc, Gate: g}
}

// List: GET /invoices
func (h *InvoiceHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := pagination(r)
	invoices, total, err := h.Svc.List(limit, offset)
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_invoices", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": invoices, "total": total, "limit": limit, "offset": offset})
}

// Create: POST /invoices
func (h *InvoiceHandler) Create(w http.ResponseWriter, r *http.Request) {
	role := currentRole(h.DB, r)
	if !h.Gate.Can(r.Context(), role, gate.ActionCreate, "invoice", nil) {
		httpx.JSONError(w, http.StatusForbidden, "forbidden", nil)
		return
	}
	var req struct {
		ClientID uint            `json:"client_id"`
		Currency models.Currency `json:"currency"`
		Items    []lineReq       `json:"items"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	if req.ClientID == 0 || len(req.Items) == 0 {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", map[string]string{"client_id": "required", "items": "required"})
		return
	}
	invoice, err := h.Svc.Create(services.CreateInvoiceInput{
		ClientID: req.ClientID,
		Currency: req.Currency,
		Items:    toLineInputs(req.Items),
	})
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, invoice)
}

// UpdateStatus: POST /invoices/status?id=...
func (h *InvoiceHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	role := currentRole(h.DB, r)
	if !h.Gate.Can(r.Context(), role, gate.ActionUpdate, "invoice", nil) {
		httpx.JSONError(w, http.StatusForbidden, "forbidden", nil)
		return
	}
	id, ok := idParam(r)
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	var req struct {
		Status models.InvoiceStatus `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	invoice, err := h.Svc.UpdateStatus(id, req.Status)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, invoice)
}

// MarkPaid: POST /invoices/pay?id=... – manual/administrative payment.
func (h *InvoiceHandler) MarkPaid(w http.ResponseWriter, r *http.Request) {
	role := currentRole(h.DB, r)
	if !h.Gate.Can(r.Context(), role, gate.ActionUpdate, "invoice", nil) {
		httpx.JSONError(w, http.StatusForbidden, "forbidden", nil)
		return
	}
	id, ok := idParam(r)
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	var req struct {
		Method   string           `json:"method"`
		Currency *models.Currency `json:"currency"`
	}
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req) // body optional
	}
	payment, err := h.Svc.MarkPaid(id, services.MarkPaidInput{Method: req.Method, Currency: req.Currency})
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, payment)
}

// Payments: GET /invoices/payments?id=...
func (h *InvoiceHandler) Payments(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	payments, err := h.Svc.Payments(id)
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_payments", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": payments})
}

// Delete: POST /invoices/delete?id=...
func (h *InvoiceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	role := currentRole(h.DB, r)
	if !h.Gate.Can(r.Context(), role, gate.ActionDelete, "invoice", nil) {
		httpx.JSONError(w, http.StatusForbidden, "forbidden", nil)
		return
	}
	id, ok := idParam(r)
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	if err := h.Svc.Delete(id); err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
