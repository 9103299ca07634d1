package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mkadima/gestfact/internal/httpx"
	"github.com/mkadima/gestfact/internal/models"
	"github.com/mkadima/gestfact/internal/validation"

	"gorm.io/gorm"
)

type ClientHandler struct{ DB *gorm.DB }

func NewClientHandler(db *gorm.DB) *ClientHandler { return &ClientHandler{DB: db} }

type clientReq struct {
	Nom       string `json:"nom"`
	Contact   string `json:"contact"`
	Telephone string `json:"telephone"`
	Email     string `json:"email"`
	Adresse   string `json:"adresse"`
	Ville     string `json:"ville"`
	RCCM      string `json:"rccm"`
	IDNat     string `json:"id_nat"`
}

// List: GET /clients
func (h *ClientHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := pagination(r)
	var total int64
	h.DB.Model(&models.Client{}).Count(&total)
	var clients []models.Client
	if err := h.DB.Order("id desc").Limit(limit).Offset(offset).Find(&clients).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_clients", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": clients, "total": total, "limit": limit, "offset": offset})
}

// Create: POST /clients
func (h *ClientHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req clientReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	v := validation.Violations{}
	validation.Required("nom", req.Nom, v)
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	client := models.Client{
		Nom: req.Nom, Contact: req.Contact, Telephone: req.Telephone,
		Email: req.Email, Adresse: req.Adresse, Ville: req.Ville,
		RCCM: req.RCCM, IDNat: req.IDNat,
	}
	if err := h.DB.Create(&client).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_create_client", nil)
		return
	}
	httpx.JSON(w, http.StatusCreated, client)
}

// Update: POST /clients/update?id=... Existing documents keep their client
// snapshot; only future documents see the change.
func (h *ClientHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	var client models.Client
	if err := h.DB.First(&client, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_load_client", nil)
		return
	}
	var req clientReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	v := validation.Violations{}
	validation.Required("nom", req.Nom, v)
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	client.Nom = req.Nom
	client.Contact = req.Contact
	client.Telephone = req.Telephone
	client.Email = req.Email
	client.Adresse = req.Adresse
	client.Ville = req.Ville
	client.RCCM = req.RCCM
	client.IDNat = req.IDNat
	if err := h.DB.Save(&client).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_update_client", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, client)
}

// Delete: POST /clients/delete?id=... Blocked while documents reference the
// client.
func (h *ClientHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	var refs int64
	h.DB.Model(&models.Quote{}).Where("client_id = ?", id).Count(&refs)
	var invRefs int64
	h.DB.Model(&models.Invoice{}).Where("client_id = ?", id).Count(&invRefs)
	if refs+invRefs > 0 {
		httpx.JSONError(w, http.StatusConflict, "client_has_documents", nil)
		return
	}
	res := h.DB.Delete(&models.Client{}, id)
	if res.Error != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_delete_client", nil)
		return
	}
	if res.RowsAffected == 0 {
		httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
