package handlers

import (
	"net/http"
	"strconv"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"cryptolab/internal/auth"
	"cryptolab/internal/models"
)

const maxLogRows = 200

// MyLogs returns recent audit logs. Regular users see their own logs.
// Administrators can pass ?all=1 to see recent logs for everyone.
func MyLogs(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		all := r.URL.Query().Get("all") == "1"
		limit := maxLogRows
		if n, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && n > 0 && n < maxLogRows {
			limit = n
		}
		q := db.Order("created_at desc").Limit(limit)
		if action := r.URL.Query().Get("action"); action != "" {
			q = q.Where("action = ?", action)
		}
		if !all || !auth.FromContext(r.Context()).HasRole("Administrator") {
			q = q.Where("user_id = ?", auth.Subject(r.Context()))
		}
		var logs []models.AuditLog
		if err := q.Find(&logs).Error; err != nil {
			lg.Errorw("list logs", "error", err)
			http.Error(w, "query failed", http.StatusInternalServerError)
			return
		}
		respondJSON(w, logs)
	}
}
