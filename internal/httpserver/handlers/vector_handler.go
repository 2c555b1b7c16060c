package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"cryptolab/internal/audit"
	"cryptolab/internal/auth"
	"cryptolab/internal/models"
	"cryptolab/internal/services/vector"
)

// VectorStore persists generated records.
type VectorStore interface {
	SaveVectors(ctx context.Context, rows []models.Vector) error
}

type GormVectors struct {
	DB *gorm.DB
}

func (g GormVectors) SaveVectors(ctx context.Context, rows []models.Vector) error {
	if len(rows) == 0 {
		return nil
	}
	return g.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.CreateInBatches(&rows, 100).Error
	})
}

type GenerateReq struct {
	Algorithm       string `json:"algorithm"`
	Mode            string `json:"mode"`
	TestMode        string `json:"test_mode"`
	KeyBits         int    `json:"key_bits"`
	Count           int    `json:"count"`
	IncludeExpected bool   `json:"include_expected"`
	Format          string `json:"format"` // json (default) or txt
}

const maxVectorCount = 100

func strPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// vectorRows flattens a generated set into one row per record and direction.
func vectorRows(uid string, tv vector.TestVector, now time.Time) []models.Vector {
	var rows []models.Vector
	status := "ready"
	if len(tv.Encrypt) > 0 && tv.Encrypt[0].Ciphertext != "" {
		status = "done"
	}
	base := models.Vector{UserID: uid, Algorithm: tv.Algorithm, Mode: tv.Mode, TestMode: tv.TestMode, KeyBits: tv.KeyBits, Status: status, CreatedAt: now}
	for _, e := range tv.Encrypt {
		v := base
		v.Direction, v.Count, v.KeyHex, v.IVHex = "ENCRYPT", e.Count, e.KeyHex, e.IVHex
		v.InputHex, v.OutputHex = strPtr(e.Plaintext), strPtr(e.Ciphertext)
		rows = append(rows, v)
	}
	for _, d := range tv.Decrypt {
		v := base
		v.Direction, v.Count, v.KeyHex, v.IVHex = "DECRYPT", d.Count, d.KeyHex, d.IVHex
		v.InputHex, v.OutputHex = strPtr(d.Ciphertext), strPtr(d.Plaintext)
		rows = append(rows, v)
	}
	return rows
}

// POST /v1/vectors/generate
func GenerateVectors(store VectorStore, rec audit.Recorder, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req GenerateReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if req.Count > maxVectorCount {
			http.Error(w, "count too large", http.StatusBadRequest)
			return
		}
		if q := r.URL.Query().Get("format"); q != "" {
			req.Format = q
		}
		tv, err := vector.GenerateTestVectors(req.Algorithm, req.Mode, req.TestMode, vector.GenParams{
			KeyBits: req.KeyBits, Count: req.Count, IncludeExpected: req.IncludeExpected,
		})
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		uid := auth.Subject(r.Context())
		if err := store.SaveVectors(r.Context(), vectorRows(uid, tv, time.Now())); err != nil {
			lg.Errorw("save vectors", "error", err)
			http.Error(w, "could not store vectors", http.StatusInternalServerError)
			return
		}
		if err := rec.Record(r.Context(), uid, "VECTOR_GENERATE", map[string]any{
			"algorithm": tv.Algorithm, "mode": tv.Mode, "test_mode": tv.TestMode,
			"key_bits": tv.KeyBits, "count": len(tv.Encrypt),
		}); err != nil {
			lg.Warnw("audit write failed", "action", "VECTOR_GENERATE", "error", err)
		}
		if strings.EqualFold(req.Format, "txt") {
			w.Header().Set("Content-Type", "text/plain; charset=utf-8")
			w.Header().Set("Content-Disposition", `attachment; filename="`+strings.ToLower(tv.Algorithm+"_"+tv.Mode+"_"+tv.TestMode)+`.rsp"`)
			_, _ = w.Write([]byte(tv.ToTXT()))
			return
		}
		respondJSON(w, tv)
	}
}
