// Package audit records who did what. Key material never goes into metadata.
package audit

import (
	"context"

	"gorm.io/gorm"

	"cryptolab/internal/models"
)

type Recorder interface {
	Record(ctx context.Context, userID, action string, md map[string]any) error
}

// RecorderFunc adapts a plain function to Recorder.
type RecorderFunc func(ctx context.Context, userID, action string, md map[string]any) error

func (f RecorderFunc) Record(ctx context.Context, userID, action string, md map[string]any) error {
	return f(ctx, userID, action, md)
}

type GormRecorder struct {
	DB *gorm.DB
}

func (g GormRecorder) Record(ctx context.Context, userID, action string, md map[string]any) error {
	row := Entry(userID, action, md)
	return g.DB.WithContext(ctx).Create(&row).Error
}

// Entry builds the row written for one action. An empty userID is stored as NULL.
func Entry(userID, action string, md map[string]any) models.AuditLog {
	row := models.AuditLog{Action: action, Metadata: models.MustJSONB(md)}
	if userID != "" {
		row.UserID = &userID
	}
	return row
}
