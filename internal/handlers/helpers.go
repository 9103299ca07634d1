package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/mkadima/gestfact/internal/auth"
	"github.com/mkadima/gestfact/internal/models"

	"gorm.io/gorm"
)

// idParam reads the numeric id query parameter.
func idParam(r *http.Request) (uint, bool) {
	idStr := r.URL.Query().Get("id")
	id, err := strconv.Atoi(idStr)
	if err != nil || id <= 0 {
		return 0, false
	}
	return uint(id), true
}

// pagination reads limit/page query parameters with the usual bounds.
func pagination(r *http.Request) (limit, offset int) {
	limit = 50
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 200 {
			limit = n
		}
	}
	if v := r.URL.Query().Get("page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 1 {
			offset = (n - 1) * limit
		}
	}
	return limit, offset
}

// currentRole resolves the requesting user's role name, or "" when anonymous.
func currentRole(db *gorm.DB, r *http.Request) string {
	uid, ok := auth.UserIDFromContext(r.Context())
	if !ok || uid == 0 {
		return ""
	}
	var user models.User
	if err := db.Preload("Role").First(&user, uid).Error; err != nil {
		return ""
	}
	return strings.ToLower(user.Role.Name)
}
