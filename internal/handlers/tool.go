package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mkadima/gestfact/internal/httpx"
	"github.com/mkadima/gestfact/internal/models"
	"github.com/mkadima/gestfact/internal/services"
	"github.com/mkadima/gestfact/internal/validation"

	"gorm.io/gorm"
)

// ToolHandler exposes the tool inventory: tools per warehouse and the
// stock/assignment movement ledger.
type ToolHandler struct {
	DB  *gorm.DB
	Svc *services.InventoryService
}

func NewToolHandler(db *gorm.DB, svc *services.InventoryService) *ToolHandler {
	return &ToolHandler{DB: db, Svc: svc}
}

// List: GET /tools
func (h *ToolHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := pagination(r)
	var total int64
	h.DB.Model(&models.Tool{}).Count(&total)
	var tools []models.Tool
	if err := h.DB.Preload("Warehouse").Order("id desc").Limit(limit).Offset(offset).Find(&tools).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_tools", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": tools, "total": total, "limit": limit, "offset": offset})
}

// Create: POST /tools
func (h *ToolHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name        string `json:"name"`
		Reference   string `json:"reference"`
		WarehouseID uint   `json:"warehouse_id"`
		Quantity    int    `json:"quantity"`
		MinQuantity int    `json:"min_quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	v := validation.Violations{}
	validation.Required("name", req.Name, v)
	validation.Required("reference", req.Reference, v)
	if req.Quantity < 0 {
		v["quantity"] = "must_not_be_negative"
	}
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	var warehouse models.Warehouse
	if err := h.DB.First(&warehouse, req.WarehouseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.JSONError(w, http.StatusNotFound, "warehouse_not_found", nil)
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_load_warehouse", nil)
		return
	}
	tool := models.Tool{
		Name:              req.Name,
		Reference:         req.Reference,
		WarehouseID:       warehouse.ID,
		QuantityTotal:     req.Quantity,
		QuantityAvailable: req.Quantity,
		MinQuantity:       req.MinQuantity,
	}
	if err := h.DB.Create(&tool).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_create_tool", nil)
		return
	}
	httpx.JSON(w, http.StatusCreated, tool)
}

// Move: POST /tools/move?id=... – one ledger operation on a tool.
func (h *ToolHandler) Move(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	var req struct {
		Type      string `json:"type"`
		Quantity  int    `json:"quantity"`
		Reference string `json:"reference"`
		Note      string `json:"note"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	in := services.MovementInput{ToolID: id, Quantity: req.Quantity, Reference: req.Reference, Note: req.Note}
	var tool *models.Tool
	var err error
	switch req.Type {
	case models.MovementIn:
		tool, err = h.Svc.ReceiveStock(in)
	case models.MovementOut:
		tool, err = h.Svc.IssueStock(in)
	case models.MovementAssign:
		tool, err = h.Svc.Assign(in)
	case models.MovementReturn:
		tool, err = h.Svc.Return(in)
	default:
		httpx.JSONError(w, http.StatusBadRequest, "unknown_movement_type", nil)
		return
	}
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, tool)
}

// Movements: GET /tools/movements?id=...
func (h *ToolHandler) Movements(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	rows, err := h.Svc.Movements(id)
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_movements", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": rows})
}
