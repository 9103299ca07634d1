package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mkadima/gestfact/internal/httpx"
	"github.com/mkadima/gestfact/internal/models"
	"github.com/mkadima/gestfact/internal/validation"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ProductHandler struct{ DB *gorm.DB }

func NewProductHandler(db *gorm.DB) *ProductHandler { return &ProductHandler{DB: db} }

type productReq struct {
	Name          string              `json:"name"`
	UnitPriceUSD  decimal.Decimal     `json:"unit_price_usd"`
	UnitPriceFC   decimal.NullDecimal `json:"unit_price_fc"`
	UnitTypeID    uint                `json:"unit_type_id"`
	TaxRate       decimal.Decimal     `json:"tax_rate"`
	IsActive      *bool               `json:"is_active"`
	StockTracking bool                `json:"stock_tracking"`
	StockOnHand   int                 `json:"stock_on_hand"`
	StockMinimum  int                 `json:"stock_minimum"`
	StockMaximum  int                 `json:"stock_maximum"`
}

func (req *productReq) validate() validation.Violations {
	v := validation.Violations{}
	validation.Required("name", req.Name, v)
	validation.PositiveDecimal("unit_price_usd", req.UnitPriceUSD, v)
	validation.RangeDecimal("tax_rate", req.TaxRate, decimal.Zero, decimal.NewFromInt(100), v)
	if req.UnitPriceFC.Valid {
		validation.PositiveDecimal("unit_price_fc", req.UnitPriceFC.Decimal, v)
	}
	return v
}

// List: GET /products
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := pagination(r)
	var total int64
	h.DB.Model(&models.Product{}).Count(&total)
	var products []models.Product
	if err := h.DB.Preload("UnitType").Order("id desc").Limit(limit).Offset(offset).Find(&products).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_products", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": products, "total": total, "limit": limit, "offset": offset})
}

// Create: POST /products
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req productReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	if v := req.validate(); !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}
	product := models.Product{
		Name:          req.Name,
		UnitPriceUSD:  req.UnitPriceUSD,
		UnitPriceFC:   req.UnitPriceFC,
		UnitTypeID:    req.UnitTypeID,
		TaxRate:       req.TaxRate,
		IsActive:      active,
		StockTracking: req.StockTracking,
		StockOnHand:   req.StockOnHand,
		StockMinimum:  req.StockMinimum,
		StockMaximum:  req.StockMaximum,
	}
	if err := h.DB.Create(&product).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_create_product", nil)
		return
	}
	httpx.JSON(w, http.StatusCreated, product)
}

// Update: POST /products/update?id=...
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	var product models.Product
	if err := h.DB.First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_load_product", nil)
		return
	}
	var req productReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	if v := req.validate(); !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	product.Name = req.Name
	product.UnitPriceUSD = req.UnitPriceUSD
	product.UnitPriceFC = req.UnitPriceFC
	product.UnitTypeID = req.UnitTypeID
	product.TaxRate = req.TaxRate
	if req.IsActive != nil {
		product.IsActive = *req.IsActive
	}
	product.StockTracking = req.StockTracking
	product.StockOnHand = req.StockOnHand
	product.StockMinimum = req.StockMinimum
	product.StockMaximum = req.StockMaximum
	if err := h.DB.Save(&product).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_update_product", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, product)
}

// Delete: POST /products/delete?id=... (soft delete; snapshots on existing
// documents are unaffected)
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	res := h.DB.Delete(&models.Product{}, id)
	if res.Error != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_delete_product", nil)
		return
	}
	if res.RowsAffected == 0 {
		httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
