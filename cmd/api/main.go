package main

import (
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"cryptolab/internal/auth"
	"cryptolab/internal/config"
	"cryptolab/internal/httpserver"
	"cryptolab/internal/logger"
	"cryptolab/internal/models"
	"cryptolab/internal/modes"
	"cryptolab/internal/services/vector"
)

func main() {
	cfg := config.Load()
	lg := logger.New(cfg.LogLevel)
	defer lg.Sync()
	if cfg.DatabaseURL == "" {
		lg.Fatalw("DATABASE_URL is empty")
	}
	if cfg.JWTSecret == "" {
		lg.Fatalw("JWT_SECRET is empty")
	}
	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{})
	if err != nil {
		lg.Fatalw("db connect failed", "error", err)
	}
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS pgcrypto`).Error; err != nil {
		lg.Warnw("pgcrypto extension", "error", err)
	}
	if err := db.AutoMigrate(&models.Role{}, &models.User{}, &models.Vector{}, &models.AuditLog{}, &models.Session{}, &models.Cryptography{}); err != nil {
		lg.Fatalw("automigrate failed", "error", err)
	}
	seedDefaultAdmin(db, cfg, lg)
	if err := seedCatalogue(db); err != nil {
		lg.Fatalw("catalogue seed failed", "error", err)
	}

	tokens := auth.NewTokens(cfg.JWTSecret, cfg.JWTTTL)
	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           httpserver.NewRouter(db, tokens, lg),
		ReadHeaderTimeout: 10 * time.Second,
	}
	lg.Infow("listening", "port", cfg.HTTPPort)
	if err := srv.ListenAndServe(); err != nil {
		lg.Fatalw("server stopped", "error", err)
	}
}

func seedDefaultAdmin(db *gorm.DB, cfg config.Config, lg *zap.SugaredLogger) {
	db.Exec("INSERT INTO roles(name) VALUES ('Administrator') ON CONFLICT DO NOTHING")
	db.Exec("INSERT INTO roles(name) VALUES ('User') ON CONFLICT DO NOTHING")
	email := strings.ToLower(cfg.AdminEmail)
	var count int64
	db.Model(&models.User{}).Where("LOWER(email)=?", email).Count(&count)
	if count > 0 {
		return
	}
	if cfg.AdminPassword == "" {
		lg.Warnw("no admin user and ADMIN_PASSWORD is empty; skipping seed", "email", email)
		return
	}
	hash, err := auth.HashPassword(cfg.AdminPassword)
	if err != nil {
		lg.Errorw("hash admin password", "error", err)
		return
	}
	u := models.User{Email: email, PasswordHash: hash, IsActive: true, CreatedAt: time.Now(), UpdatedAt: time.Now()}
	if err := db.Create(&u).Error; err == nil {
		var adminRole models.Role
		if err := db.First(&adminRole, "name = 'Administrator'").Error; err == nil {
			_ = db.Model(&u).Association("Roles").Append(&adminRole)
		}
	}
	lg.Infow("seeded default admin", "email", email)
}

var standardRefs = map[string]string{
	"AES":      "FIPS 197",
	"CAMELLIA": "RFC 3713",
	"SEED":     "RFC 4269",
	"HIGHT":    "TTAS.KO-12.0040",
	"CAST5":    "RFC 2144",
	"TDEA":     "NIST SP 800-67",
}

// catalogueRows describes every registered cipher. Block and IV sizes come
// from the registry; CBC and CTR both take a one-block IV.
func catalogueRows() []models.Cryptography {
	var rows []models.Cryptography
	for _, ci := range modes.Ciphers() {
		bits := make([]int, len(ci.KeyLengths))
		for i, n := range ci.KeyLengths {
			bits[i] = n * 8
		}
		block, iv := ci.BlockSize*8, ci.BlockSize*8
		row := models.Cryptography{
			Algorithm:     ci.Name,
			Category:      "block",
			Modes:         models.MustJSONB(modes.Modes),
			TestModes:     models.MustJSONB([]vector.TestMode{vector.KAT, vector.MMT, vector.MCT}),
			KeyLengths:    models.MustJSONB(bits),
			BlockSizeBits: &block,
			IVSizeBits:    &iv,
		}
		if ref, ok := standardRefs[ci.Name]; ok {
			row.StandardRef = &ref
		}
		rows = append(rows, row)
	}
	return rows
}

// seedCatalogue upserts one row per registered cipher.
func seedCatalogue(db *gorm.DB) error {
	rows := catalogueRows()
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "algorithm"}},
		DoUpdates: clause.AssignmentColumns([]string{"modes", "test_modes", "key_lengths", "block_size_bits", "iv_size_bits", "standard_ref", "updated_at"}),
	}).Create(&rows).Error
}
