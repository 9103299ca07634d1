package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/mkadima/gestfact/internal/gate"
	"github.com/mkadima/gestfact/internal/httpx"
	"github.com/mkadima/gestfact/internal/models"
	"github.com/mkadima/gestfact/internal/services"

	"gorm.io/gorm"
)

type QuoteHandler struct {
	DB   *gorm.DB
	Svc  *services.QuoteService
	Gate *gate.Gate
}

func NewQuoteHandler(db *gorm.DB, svc *services.QuoteService, g *gate.Gate) *QuoteHandler {
	return &QuoteHandler{DB: db, Svc: svc, Gate: g}
}

type lineReq struct {
	ProductID uint `json:"product_id"`
	Quantity  int  `json:"quantity"`
}

func toLineInputs(items []lineReq) []services.LineInput {
	out := make([]services.LineInput, 0, len(items))
	for _, it := range items {
		out = append(out, services.LineInput{ProductID: it.ProductID, Quantity: it.Quantity})
	}
	return out
}

// List: GET /quotes
func (h *QuoteHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := pagination(r)
	quotes, total, err := h.Svc.List(limit, offset)
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_quotes", nil)
		return
	}
	// Report the derived status so expired-but-still-"sent" quotes read right.
	now := time.Now()
	type quoteView struct {
		models.Quote
		EffectiveStatus models.QuoteStatus `json:"effective_status"`
	}
	views := make([]quoteView, 0, len(quotes))
	for i := range quotes {
		views = append(views, quoteView{Quote: quotes[i], EffectiveStatus: quotes[i].EffectiveStatus(now)})
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": views, "total": total, "limit": limit, "offset": offset})
}

// Create: POST /quotes
func (h *QuoteHandler) Create(w http.ResponseWriter, r *http.Request) {
	role := currentRole(h.DB, r)
	if !h.Gate.Can(r.Context(), role, gate.ActionCreate, "quote", nil) {
		httpx.JSONError(w, http.StatusForbidden, "forbidden", nil)
		return
	}
	var req struct {
		ClientID     uint            `json:"client_id"`
		Currency     models.Currency `json:"currency"`
		Items        []lineReq       `json:"items"`
		ValidityDays int             `json:"validity_days"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	if req.ClientID == 0 || len(req.Items) == 0 {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", map[string]string{"client_id": "required", "items": "required"})
		return
	}
	quote, err := h.Svc.Create(services.CreateQuoteInput{
		ClientID:     req.ClientID,
		Currency:     req.Currency,
		Items:        toLineInputs(req.Items),
		ValidityDays: req.ValidityDays,
	})
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, quote)
}

// UpdateStatus: POST /quotes/status?id=...
func (h *QuoteHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	role := currentRole(h.DB, r)
	if !h.Gate.Can(r.Context(), role, gate.ActionUpdate, "quote", nil) {
		httpx.JSONError(w, http.StatusForbidden, "forbidden", nil)
		return
	}
	id, ok := idParam(r)
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	var req struct {
		Status models.QuoteStatus `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	quote, err := h.Svc.UpdateStatus(id, req.Status)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, quote)
}

// Convert: POST /quotes/convert?id=... – one-way conversion into an invoice.
func (h *QuoteHandler) Convert(w http.ResponseWriter, r *http.Request) {
	role := currentRole(h.DB, r)
	if !h.Gate.Can(r.Context(), role, gate.ActionUpdate, "quote", nil) {
		httpx.JSONError(w, http.StatusForbidden, "forbidden", nil)
		return
	}
	id, ok := idParam(r)
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	invoice, err := h.Svc.ConvertToInvoice(id)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, invoice)
}

// Delete: POST /quotes/delete?id=...
func (h *QuoteHandler) Delete(w http.ResponseWriter, r *http.Request) {
	role := currentRole(h.DB, r)
	if !h.Gate.Can(r.Context(), role, gate.ActionDelete, "quote", nil) {
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
