package httpserver

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"cryptolab/internal/audit"
	"cryptolab/internal/auth"
	"cryptolab/internal/httpserver/handlers"
)

func NewRouter(db *gorm.DB, tokens *auth.Tokens, lg *zap.SugaredLogger) http.Handler {
	rec := audit.GormRecorder{DB: db}
	store := handlers.GormVectors{DB: db}

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Recoverer, middleware.Logger)
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	r.Post("/v1/auth/login", handlers.Login(db, tokens, rec, lg))
	r.Group(func(protected chi.Router) {
		protected.Use(auth.JWTAuth(tokens, auth.GormSessions{DB: db}))
		protected.Get("/v1/me", handlers.Me(db, lg))
		protected.Post("/v1/auth/logout", handlers.Logout(db, rec))
		protected.Post("/v1/auth/password", handlers.ChangePassword(db, rec, lg))

		protected.Get("/v1/cryptography", handlers.ListCryptography(db, lg))
		protected.Post("/v1/crypt/encrypt", handlers.Encrypt(rec, lg))
		protected.Post("/v1/crypt/decrypt", handlers.Decrypt(rec, lg))
		protected.Post("/v1/vectors/generate", handlers.GenerateVectors(store, rec, lg))
		protected.Post("/v1/vectors/ctr", handlers.GenerateCTRVector(rec, lg))
		protected.Post("/v1/vectors/validate", handlers.ValidateVectors(rec, lg))
		protected.Get("/v1/logs", handlers.MyLogs(db, lg))

		protected.Group(func(admin chi.Router) {
			admin.Use(auth.RequireRole("Administrator"))
			admin.Get("/v1/admin/users", handlers.ListUsers(db, lg))
			admin.Post("/v1/admin/users", handlers.CreateUser(db, rec, lg))
			admin.Patch("/v1/admin/users/{id}", handlers.UpdateUser(db, rec, lg))
			admin.Delete("/v1/admin/users/{id}", handlers.DeleteUser(db, rec, lg))
		})
	})
	return r
}
