package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"cryptolab/internal/audit"
	"cryptolab/internal/auth"
	"cryptolab/internal/services/vector"
)

// POST /v1/vectors/ctr produces one CTR vector, filling in a random key, IV
// or input when they are omitted.
func GenerateCTRVector(rec audit.Recorder, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var p vector.CTRParams
		r.Body = http.MaxBytesReader(w, r.Body, 4*vector.MaxCTRSize)
		if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		in, out, used, err := vector.GenerateCTR(p)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		uid := auth.Subject(r.Context())
		if err := rec.Record(r.Context(), uid, "VECTOR_GENERATE_CTR", map[string]any{
			"algorithm": used.Algorithm, "input_len": len(in) / 2,
		}); err != nil {
			lg.Warnw("audit write failed", "action", "VECTOR_GENERATE_CTR", "error", err)
		}
		respondJSON(w, map[string]any{"params": used, "input_hex": in, "output_hex": out})
	}
}
