package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"cryptolab/internal/audit"
	"cryptolab/internal/auth"
	"cryptolab/internal/models"
)

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func Login(db *gorm.DB, tokens *auth.Tokens, rec audit.Recorder, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		var u models.User
		if err := db.Preload("Roles").First(&u, "email = ?", strings.ToLower(strings.TrimSpace(req.Email))).Error; err != nil {
			http.Error(w, "invalid credentials", http.StatusUnauthorized)
			return
		}
		if !u.IsActive {
			http.Error(w, "account disabled", http.StatusForbidden)
			return
		}
		if err := auth.CheckPassword(u.PasswordHash, req.Password); err != nil {
			http.Error(w, "invalid credentials", http.StatusUnauthorized)
			return
		}
		var roleNames []string
		for _, r := range u.Roles {
			roleNames = append(roleNames, r.Name)
		}
		iss, err := tokens.Sign(u.ID, roleNames)
		if err != nil {
			lg.Errorw("sign token", "error", err)
			http.Error(w, "token error", http.StatusInternalServerError)
			return
		}
		sess := models.Session{JTI: iss.JTI, UserID: u.ID, ExpiresAt: iss.ExpiresAt, CreatedAt: time.Now()}
		if err := db.Create(&sess).Error; err != nil {
			http.Error(w, "session error", http.StatusInternalServerError)
			return
		}
		_ = rec.Record(r.Context(), u.ID, "LOGIN", map[string]any{"jti": iss.JTI})
		respondJSON(w, map[string]any{"token": iss.Token, "expires_at": iss.ExpiresAt})
	}
}

func Logout(db *gorm.DB, rec audit.Recorder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := auth.FromContext(r.Context())
		now := time.Now()
		if err := db.Model(&models.Session{}).Where("jti = ? AND revoked_at IS NULL", c.JWTID).Update("revoked_at", &now).Error; err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		_ = rec.Record(r.Context(), c.Subject, "LOGOUT", map[string]any{"jti": c.JWTID})
		w.WriteHeader(http.StatusNoContent)
	}
}

func Me(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sub := auth.Subject(r.Context())
		var u models.User
		if err := db.Preload("Roles").First(&u, "id = ?", sub).Error; err != nil {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		respondJSON(w, map[string]any{
			"id": u.ID, "email": u.Email, "roles": u.Roles, "is_active": u.IsActive,
		})
	}
}
