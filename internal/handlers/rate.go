package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/mkadima/gestfact/internal/gate"
	"github.com/mkadima/gestfact/internal/httpx"
	"github.com/mkadima/gestfact/internal/models"
	"github.com/mkadima/gestfact/internal/services"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// RateHandler exposes the exchange-rate endpoints. Changing the rate is an
// administrative action guarded by the gate.
type RateHandler struct {
	DB   *gorm.DB
	Svc  *services.RateService
	Gate *gate.Gate
}

func NewRateHandler(db *gorm.DB, svc *services.RateService, g *gate.Gate) *RateHandler {
	return &RateHandler{DB: db, Svc: svc, Gate: g}
}

// Active: GET /rates – active rate plus history for USD→FC.
func (h *RateHandler) Active(w http.ResponseWriter, r *http.Request) {
	rate, err := h.Svc.Active(models.CurrencyUSD, models.CurrencyFC)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	history, err := h.Svc.History(models.CurrencyUSD, models.CurrencyFC)
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_rates", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"base":    models.CurrencyUSD,
		"target":  models.CurrencyFC,
		"rate":    rate,
		"history": history,
	})
}

// Set: POST /rates – install a new active rate (admin only).
func (h *RateHandler) Set(w http.ResponseWriter, r *http.Request) {
	role := currentRole(h.DB, r)
	if !h.Gate.Can(r.Context(), role, gate.ActionUpdate, "rate", nil) {
		httpx.JSONError(w, http.StatusForbidden, "forbidden", nil)
		return
	}
	var req struct {
		Base   models.Currency `json:"base"`
		Target models.Currency `json:"target"`
		Rate   decimal.Decimal `json:"rate"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	if req.Base == "" {
		req.Base = models.CurrencyUSD
	}
	if req.Target == "" {
		req.Target = models.CurrencyFC
	}
	row, err := h.Svc.SetActive(req.Base, req.Target, req.Rate)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, row)
}
