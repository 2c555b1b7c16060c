package handlers

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"cryptolab/internal/audit"
	"cryptolab/internal/auth"
	"cryptolab/internal/modes"
	"cryptolab/internal/util"
)

type cryptReq struct {
	Algorithm string `json:"algorithm"`
	Mode      string `json:"mode"`
	KeyHex    string `json:"key_hex"`
	IVHex     string `json:"iv_hex"`
	DataHex   string `json:"data_hex"`
	Text      string `json:"text"`
	PrependIV *bool  `json:"prepend_iv"`
}

type cryptRes struct {
	OutputHex string `json:"output_hex"`
	IVHex     string `json:"iv_hex,omitempty"`
	Text      string `json:"text,omitempty"`
}

// cryptErrStatus maps the modes error taxonomy onto HTTP status codes.
func cryptErrStatus(err error) int {
	switch {
	case errors.Is(err, modes.ErrInvalidKeyLength),
		errors.Is(err, modes.ErrInvalidIVLength),
		errors.Is(err, modes.ErrInvalidBlockLength),
		errors.Is(err, modes.ErrInvalidPadding),
		errors.Is(err, modes.ErrUnsupportedMode),
		errors.Is(err, modes.ErrUnsupportedCipher):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func (req cryptReq) resolve() (modes.Mode, modes.CipherInfo, []byte, error) {
	mode, err := modes.ParseMode(req.Mode)
	if err != nil {
		return "", modes.CipherInfo{}, nil, err
	}
	ci, err := modes.Lookup(req.Algorithm)
	if err != nil {
		return "", modes.CipherInfo{}, nil, err
	}
	key, err := util.DecodeHex(req.KeyHex)
	if err != nil {
		return "", modes.CipherInfo{}, nil, errors.New("key_hex is not valid hex")
	}
	return mode, ci, key, nil
}

// POST /v1/crypt/encrypt
func Encrypt(rec audit.Recorder, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req cryptReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		mode, ci, key, err := req.resolve()
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		var data []byte
		if req.DataHex != "" {
			if data, err = util.DecodeHex(req.DataHex); err != nil {
				http.Error(w, "data_hex is not valid hex", http.StatusBadRequest)
				return
			}
		} else {
			data = []byte(req.Text)
		}
		var iv []byte
		if req.IVHex != "" {
			if iv, err = util.DecodeHex(req.IVHex); err != nil {
				http.Error(w, "iv_hex is not valid hex", http.StatusBadRequest)
				return
			}
		} else {
			iv = make([]byte, ci.BlockSize)
			if _, err := rand.Read(iv); err != nil {
				http.Error(w, "rng failure", http.StatusInternalServerError)
				return
			}
		}
		opts := []modes.Option{modes.WithCipher(ci.New)}
		if req.PrependIV == nil || *req.PrependIV {
			opts = append(opts, modes.WithPrependIV())
		}
		out, err := modes.Encrypt(mode, key, iv, data, opts...)
		if err != nil {
			http.Error(w, err.Error(), cryptErrStatus(err))
			return
		}
		uid := auth.Subject(r.Context())
		if err := rec.Record(r.Context(), uid, "ENCRYPT", map[string]any{
			"algorithm": ci.Name, "mode": string(mode), "key_bits": len(key) * 8,
			"input_len": len(data), "output_len": len(out),
		}); err != nil {
			lg.Warnw("audit write failed", "action", "ENCRYPT", "error", err)
		}
		respondJSON(w, cryptRes{OutputHex: hex.EncodeToString(out), IVHex: hex.EncodeToString(iv)})
	}
}

// POST /v1/crypt/decrypt. Without iv_hex the data is taken to be IV || ciphertext.
func Decrypt(rec audit.Recorder, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req cryptReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		mode, ci, key, err := req.resolve()
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		data, err := util.DecodeHex(req.DataHex)
		if err != nil {
			http.Error(w, "data_hex is not valid hex", http.StatusBadRequest)
			return
		}
		var out []byte
		if req.IVHex == "" {
			out, err = modes.DecryptPrefixed(mode, key, data, modes.WithCipher(ci.New))
		} else {
			iv, derr := util.DecodeHex(req.IVHex)
			if derr != nil {
				http.Error(w, "iv_hex is not valid hex", http.StatusBadRequest)
				return
			}
			out, err = modes.Decrypt(mode, key, iv, data, modes.WithCipher(ci.New))
		}
		uid := auth.Subject(r.Context())
		md := map[string]any{"algorithm": ci.Name, "mode": string(mode), "key_bits": len(key) * 8, "input_len": len(data)}
		if err != nil {
			md["error"] = err.Error()
			if aerr := rec.Record(r.Context(), uid, "DECRYPT_FAILED", md); aerr != nil {
				lg.Warnw("audit write failed", "action", "DECRYPT_FAILED", "error", aerr)
			}
			http.Error(w, err.Error(), cryptErrStatus(err))
			return
		}
		md["output_len"] = len(out)
		if err := rec.Record(r.Context(), uid, "DECRYPT", md); err != nil {
			lg.Warnw("audit write failed", "action", "DECRYPT", "error", err)
		}
		res := cryptRes{OutputHex: hex.EncodeToString(out)}
		if s, ok := util.PrintableText(out); ok {
			res.Text = s
		}
		respondJSON(w, res)
	}
}
