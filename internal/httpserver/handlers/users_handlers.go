package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"cryptolab/internal/audit"
	"cryptolab/internal/auth"
	"cryptolab/internal/models"
)

func userID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := chi.URLParam(r, "id")
	if err := uuid.Validate(id); err != nil {
		http.Error(w, "id must be a valid UUID", http.StatusBadRequest)
		return "", false
	}
	return id, true
}

func ListUsers(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var users []models.User
		if err := db.Preload("Roles").Order("created_at desc").Find(&users).Error; err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		respondJSON(w, users)
	}
}

func CreateUser(db *gorm.DB, rec audit.Recorder, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Email    string   `json:"email"`
			Password string   `json:"password"`
			Roles    []string `json:"roles"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		req.Email = strings.ToLower(strings.TrimSpace(req.Email))
		if req.Email == "" || req.Password == "" {
			http.Error(w, "email/password required", http.StatusBadRequest)
			return
		}
		hash, err := auth.HashPassword(req.Password)
		if err != nil {
			http.Error(w, "hash error", http.StatusInternalServerError)
			return
		}
		if len(req.Roles) == 0 {
			req.Roles = []string{"User"}
		}
		u := models.User{Email: req.Email, PasswordHash: hash, IsActive: true}
		var roles []models.Role
		if err := db.Where("name IN ?", req.Roles).Find(&roles).Error; err == nil {
			u.Roles = roles
		}
		if err := db.Create(&u).Error; err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		_ = rec.Record(r.Context(), auth.Subject(r.Context()), "USER_CREATE", map[string]any{"user_id": u.ID, "email": u.Email})
		respondJSON(w, map[string]any{"id": u.ID})
	}
}

func UpdateUser(db *gorm.DB, rec audit.Recorder, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := userID(w, r)
		if !ok {
			return
		}
		var req struct {
			IsActive *bool    `json:"is_active"`
			Password *string  `json:"password,omitempty"`
			Roles    []string `json:"roles,omitempty"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		var u models.User
		if err := db.First(&u, "id = ?", id).Error; err != nil {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		err := db.Transaction(func(tx *gorm.DB) error {
			if req.IsActive != nil {
				u.IsActive = *req.IsActive
			}
			if req.Password != nil && *req.Password != "" {
				hash, err := auth.HashPassword(*req.Password)
				if err != nil {
					return err
				}
				u.PasswordHash = hash
			}
			if err := tx.Save(&u).Error; err != nil {
				return err
			}
			if req.Roles == nil {
				return nil
			}
			var roles []models.Role
			if err := tx.Where("name IN ?", req.Roles).Find(&roles).Error; err != nil {
				return err
			}
			return tx.Model(&u).Association("Roles").Replace(roles)
		})
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		_ = rec.Record(r.Context(), auth.Subject(r.Context()), "USER_UPDATE", map[string]any{"user_id": id})
		respondJSON(w, map[string]any{"updated": true})
	}
}

func DeleteUser(db *gorm.DB, rec audit.Recorder, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := userID(w, r)
		if !ok {
			return
		}
		if id == auth.Subject(r.Context()) {
			http.Error(w, "cannot delete yourself", http.StatusBadRequest)
			return
		}
		if err := db.Select("Roles").Delete(&models.User{ID: id}).Error; err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		_ = rec.Record(r.Context(), auth.Subject(r.Context()), "USER_DELETE", map[string]any{"user_id": id})
		respondJSON(w, map[string]any{"deleted": true})
	}
}

// ChangePassword lets the caller replace their own password and revokes
// every other session they hold.
func ChangePassword(db *gorm.DB, rec audit.Recorder, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Current string `json:"current_password"`
			New     string `json:"new_password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if len(req.New) < 8 {
			http.Error(w, "new password must be at least 8 characters", http.StatusBadRequest)
			return
		}
		c := auth.FromContext(r.Context())
		var u models.User
		if err := db.First(&u, "id = ?", c.Subject).Error; err != nil {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		if err := auth.CheckPassword(u.PasswordHash, req.Current); err != nil {
			http.Error(w, "invalid credentials", http.StatusUnauthorized)
			return
		}
		hash, err := auth.HashPassword(req.New)
		if err != nil {
			http.Error(w, "hash error", http.StatusInternalServerError)
			return
		}
		err = db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Model(&u).Update("password_hash", hash).Error; err != nil {
				return err
			}
			return tx.Model(&models.Session{}).
				Where("user_id = ? AND jti <> ? AND revoked_at IS NULL", u.ID, c.JWTID).
				Update("revoked_at", gorm.Expr("NOW()")).Error
		})
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		_ = rec.Record(r.Context(), u.ID, "PASSWORD_CHANGE", nil)
		w.WriteHeader(http.StatusNoContent)
	}
}
