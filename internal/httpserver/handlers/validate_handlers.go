package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"cryptolab/internal/audit"
	"cryptolab/internal/auth"
	"cryptolab/internal/services/vector"
)

// POST /v1/vectors/validate takes a multipart .rsp upload in "file" plus
// algorithm, mode and test_mode form fields.
func ValidateVectors(rec audit.Recorder, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid := auth.Subject(r.Context())
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			http.Error(w, "multipart parse error", http.StatusBadRequest)
			return
		}
		file, _, err := r.FormFile("file")
		if err != nil {
			http.Error(w, "file required", http.StatusBadRequest)
			return
		}
		defer file.Close()
		recs, err := vector.ParseVectorFile(file)
		if err != nil {
			http.Error(w, "parse error: "+err.Error(), http.StatusBadRequest)
			return
		}
		algorithm, mode, test := r.FormValue("algorithm"), r.FormValue("mode"), r.FormValue("test_mode")
		result, err := vector.Validate(algorithm, mode, test, recs)
		if err != nil {
			http.Error(w, "validate error: "+err.Error(), http.StatusBadRequest)
			return
		}
		if err := rec.Record(r.Context(), uid, "VECTOR_VALIDATE", map[string]any{
			"algorithm": algorithm, "mode": mode, "test_mode": test,
			"total": result.Total, "failed": result.Failed,
		}); err != nil {
			lg.Warnw("audit write failed", "action", "VECTOR_VALIDATE", "error", err)
		}
		respondJSON(w, result)
	}
}
