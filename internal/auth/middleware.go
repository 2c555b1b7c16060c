package auth

import (
	"context"
	"net/http"
	"strings"
	"time"

	"gorm.io/gorm"

	"cryptolab/internal/models"
)

// Sessions reports whether a token id is still usable.
type Sessions interface {
	Active(ctx context.Context, jti string) bool
}

type GormSessions struct {
	DB *gorm.DB
}

func (s GormSessions) Active(ctx context.Context, jti string) bool {
	var sess models.Session
	if err := s.DB.WithContext(ctx).First(&sess, "jti = ?", jti).Error; err != nil {
		return false
	}
	return sess.RevokedAt == nil && time.Now().Before(sess.ExpiresAt)
}

func JWTAuth(tokens *Tokens, sessions Sessions) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := r.Header.Get("Authorization")
			if !strings.HasPrefix(h, "Bearer ") {
				http.Error(w, "missing bearer token", http.StatusUnauthorized)
				return
			}
			raw := strings.TrimPrefix(h, "Bearer ")
			claims, err := tokens.Verify(raw)
			if err != nil {
				http.Error(w, "invalid token", http.StatusUnauthorized)
				return
			}
			if claims.JWTID == "" || !sessions.Active(r.Context(), claims.JWTID) {
				http.Error(w, "session expired/revoked", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
		})
	}
}

func RequireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !FromContext(r.Context()).HasRole(role) {
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
