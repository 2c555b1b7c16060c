package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"cryptolab/internal/audit"
	"cryptolab/internal/auth"
	"cryptolab/internal/httpserver/handlers"
	"cryptolab/internal/models"
	"cryptolab/internal/services/vector"
)

type auditEntry struct {
	uid, action string
	md          map[string]any
}

type fakeAudit struct{ entries []auditEntry }

func (f *fakeAudit) Record(_ context.Context, uid, action string, md map[string]any) error {
	f.entries = append(f.entries, auditEntry{uid, action, md})
	return nil
}

type fakeStore struct{ rows []models.Vector }

func (f *fakeStore) SaveVectors(_ context.Context, rows []models.Vector) error {
	f.rows = append(f.rows, rows...)
	return nil
}

var _ audit.Recorder = (*fakeAudit)(nil)

func post(t *testing.T, h http.HandlerFunc, body any) *httptest.ResponseRecorder {
	t.Helper()
	b, err := json.Marshal(body)
	if err != nil {
		t.Fatal(err)
	}
	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(b))
	req = req.WithContext(auth.WithClaims(req.Context(), auth.Claims{Subject: "user-1", Roles: []string{"User"}}))
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
}

const (
	hwKey = "140b41b22a29beb4061bda66b6747e14"
	hwCT  = "4ca00ff4c898d61e1edbf1800618fb2828a226d160dad07883d04e008a7897ee2e4b7465d5290d0c0e6c6822236e1daafb94ffe0c5da05d9476be028ad7c1d81"
)

func TestDecryptPrefixedHomework(t *testing.T) {
	fa := &fakeAudit{}
	rec := post(t, handlers.Decrypt(fa, zap.NewNop().Sugar()), map[string]any{
		"mode": "cbc", "key_hex": hwKey, "data_hex": hwCT,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body)
	}
	var res struct {
		OutputHex string `json:"output_hex"`
		Text      string `json:"text"`
	}
	decode(t, rec, &res)
	if res.Text != "Basic CBC mode encryption needs padding." {
		t.Errorf("text = %q", res.Text)
	}
	if len(fa.entries) != 1 || fa.entries[0].action != "DECRYPT" || fa.entries[0].uid != "user-1" {
		t.Fatalf("audit = %+v", fa.entries)
	}
	for k, v := range fa.entries[0].md {
		if s, ok := v.(string); ok && strings.Contains(s, hwKey) {
			t.Errorf("audit metadata %s leaks the key", k)
		}
	}
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	lg := zap.NewNop().Sugar()
	for _, alg := range []string{"AES", "camellia", "SEED", "hight", "CAST5", "TDEA"} {
		for _, mode := range []string{"CBC", "CTR"} {
			fa := &fakeAudit{}
			rec := post(t, handlers.Encrypt(fa, lg), map[string]any{
				"algorithm": alg, "mode": mode, "key_hex": hwKey, "text": "attack at dawn",
			})
			if rec.Code != http.StatusOK {
				t.Fatalf("%s/%s encrypt: %d %s", alg, mode, rec.Code, rec.Body)
			}
			var enc struct {
				OutputHex string `json:"output_hex"`
				IVHex     string `json:"iv_hex"`
			}
			decode(t, rec, &enc)
			if !strings.HasPrefix(enc.OutputHex, enc.IVHex) || len(enc.IVHex) == 0 {
				t.Fatalf("%s/%s: output %s does not start with iv %s", alg, mode, enc.OutputHex, enc.IVHex)
			}

			rec = post(t, handlers.Decrypt(fa, lg), map[string]any{
				"algorithm": alg, "mode": mode, "key_hex": hwKey, "data_hex": enc.OutputHex,
			})
			var dec struct {
				Text string `json:"text"`
			}
			decode(t, rec, &dec)
			if dec.Text != "attack at dawn" {
				t.Errorf("%s/%s: got %q", alg, mode, dec.Text)
			}
		}
	}
}

func TestEncryptWithoutPrefix(t *testing.T) {
	rec := post(t, handlers.Encrypt(&fakeAudit{}, zap.NewNop().Sugar()), map[string]any{
		"mode": "CTR", "key_hex": hwKey, "iv_hex": strings.Repeat("00", 16),
		"data_hex": "00010203", "prepend_iv": false,
	})
	var res struct {
		OutputHex string `json:"output_hex"`
	}
	decode(t, rec, &res)
	if len(res.OutputHex) != 8 {
		t.Errorf("output %q, want 4 bytes", res.OutputHex)
	}
}

func TestCryptErrors(t *testing.T) {
	lg := zap.NewNop().Sugar()
	tests := []struct {
		name string
		h    http.HandlerFunc
		body map[string]any
	}{
		{"short key", handlers.Encrypt(&fakeAudit{}, lg), map[string]any{"mode": "CBC", "key_hex": "0011", "text": "x"}},
		{"bad mode", handlers.Encrypt(&fakeAudit{}, lg), map[string]any{"mode": "ECB", "key_hex": hwKey, "text": "x"}},
		{"bad cipher", handlers.Encrypt(&fakeAudit{}, lg), map[string]any{"algorithm": "DES", "mode": "CBC", "key_hex": hwKey}},
		{"bad iv", handlers.Encrypt(&fakeAudit{}, lg), map[string]any{"mode": "CBC", "key_hex": hwKey, "iv_hex": "00"}},
		{"not hex", handlers.Decrypt(&fakeAudit{}, lg), map[string]any{"mode": "CBC", "key_hex": hwKey, "data_hex": "zz"}},
		{"bad padding", handlers.Decrypt(&fakeAudit{}, lg), map[string]any{"mode": "CBC", "key_hex": hwKey,
			"iv_hex": strings.Repeat("00", 16), "data_hex": strings.Repeat("00", 16)}},
		{"unaligned", handlers.Decrypt(&fakeAudit{}, lg), map[string]any{"mode": "CBC", "key_hex": hwKey, "data_hex": hwCT[:len(hwCT)-2]}},
	}
	for _, tc := range tests {
		rec := post(t, tc.h, tc.body)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: status %d, want 400 (%s)", tc.name, rec.Code, rec.Body)
		}
		if strings.Contains(rec.Body.String(), "output_hex") {
			t.Errorf("%s: partial output returned", tc.name)
		}
	}
}

func TestGenerateVectors(t *testing.T) {
	store, fa := &fakeStore{}, &fakeAudit{}
	rec := post(t, handlers.GenerateVectors(store, fa, zap.NewNop().Sugar()), map[string]any{
		"algorithm": "AES", "mode": "CBC", "test_mode": "KAT", "key_bits": 192, "count": 4, "include_expected": true,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body)
	}
	var tv vector.TestVector
	decode(t, rec, &tv)
	if tv.KeyBits != 192 || len(tv.Encrypt) != 4 {
		t.Errorf("vector = %+v", tv)
	}
	if len(store.rows) != 8 {
		t.Fatalf("stored %d rows, want 8", len(store.rows))
	}
	for _, r := range store.rows {
		if r.UserID != "user-1" || r.Status != "done" || r.OutputHex == nil {
			t.Errorf("row = %+v", r)
		}
	}
	if len(fa.entries) != 1 || fa.entries[0].action != "VECTOR_GENERATE" {
		t.Errorf("audit = %+v", fa.entries)
	}
}

func TestGenerateVectorsTXT(t *testing.T) {
	rec := post(t, handlers.GenerateVectors(&fakeStore{}, &fakeAudit{}, zap.NewNop().Sugar()), map[string]any{
		"algorithm": "SEED", "mode": "CTR", "test_mode": "MMT", "count": 2, "format": "txt",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "[ENCRYPT]") || !strings.Contains(body, "[DECRYPT]") || strings.Contains(body, "CIPHERTEXT = \n") {
		t.Errorf("unexpected body:\n%s", body)
	}
	if got := rec.Header().Get("Content-Type"); !strings.HasPrefix(got, "text/plain") {
		t.Errorf("content type %q", got)
	}
}

func TestGenerateVectorsRejects(t *testing.T) {
	h := handlers.GenerateVectors(&fakeStore{}, &fakeAudit{}, zap.NewNop().Sugar())
	for _, body := range []map[string]any{
		{"algorithm": "AES", "mode": "OFB"},
		{"algorithm": "SEED", "mode": "CBC", "key_bits": 256},
		{"algorithm": "AES", "mode": "CBC", "count": 1000},
	} {
		if rec := post(t, h, body); rec.Code != http.StatusBadRequest {
			t.Errorf("%v: status %d", body, rec.Code)
		}
	}
}

func TestGenerateCTRVector(t *testing.T) {
	rec := post(t, handlers.GenerateCTRVector(&fakeAudit{}, zap.NewNop().Sugar()), map[string]any{
		"key_hex":   "2b7e151628aed2a6abf7158809cf4f3c",
		"iv_hex":    "f0f1f2f3f4f5f6f7f8f9fafbfcfdfeff",
		"input_hex": "6bc1bee22e409f96e93d7e117393172a",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body)
	}
	var res struct {
		OutputHex string `json:"output_hex"`
	}
	decode(t, rec, &res)
	if res.OutputHex != "874d6191b620e3261bef6864990db6ce" {
		t.Errorf("output %s", res.OutputHex)
	}
}

func upload(t *testing.T, h http.HandlerFunc, fields map[string]string, file string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatal(err)
		}
	}
	fw, err := mw.CreateFormFile("file", "vectors.rsp")
	if err != nil {
		t.Fatal(err)
	}
	_, _ = fw.Write([]byte(file))
	_ = mw.Close()
	req := httptest.NewRequest(http.MethodPost, "/", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

func TestValidateVectors(t *testing.T) {
	tv, err := vector.GenerateTestVectors("CAMELLIA", "CBC", "MMT", vector.GenParams{KeyBits: 256, Count: 3, IncludeExpected: true})
	if err != nil {
		t.Fatal(err)
	}
	fa := &fakeAudit{}
	h := handlers.ValidateVectors(fa, zap.NewNop().Sugar())
	fields := map[string]string{"algorithm": "CAMELLIA", "mode": "CBC", "test_mode": "MMT"}

	rec := upload(t, h, fields, tv.ToTXT())
	var res vector.ValidationResult
	decode(t, rec, &res)
	if res.Total != 6 || res.Passed != 6 {
		t.Errorf("result = %+v", res)
	}

	// corrupt the first expected ciphertext
	bad := tv
	bad.Encrypt = append([]vector.EncRecord(nil), tv.Encrypt...)
	c := []byte(bad.Encrypt[0].Ciphertext)
	if c[0] == '0' {
		c[0] = '1'
	} else {
		c[0] = '0'
	}
	bad.Encrypt[0].Ciphertext = string(c)
	rec = upload(t, h, fields, bad.ToTXT())
	res = vector.ValidationResult{}
	decode(t, rec, &res)
	if res.Failed != 1 || len(res.Failures) != 1 || res.Failures[0].Count != 0 {
		t.Errorf("result = %+v", res)
	}
	if len(fa.entries) != 2 {
		t.Errorf("audit entries = %d", len(fa.entries))
	}
}

func TestValidateVectorsNoFile(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("{}"))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handlers.ValidateVectors(&fakeAudit{}, zap.NewNop().Sugar())(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status %d", rec.Code)
	}
}

func TestGenerateCTRVectorRejectsHugeSize(t *testing.T) {
	fa := &fakeAudit{}
	for _, size := range []int{vector.MaxCTRSize + 1, 1 << 62} {
		rec := post(t, handlers.GenerateCTRVector(fa, zap.NewNop().Sugar()), map[string]any{"size": size})
		if rec.Code != http.StatusBadRequest {
			t.Errorf("size %d: status %d, want 400", size, rec.Code)
		}
	}
	if len(fa.entries) != 0 {
		t.Errorf("rejected requests were audited: %+v", fa.entries)
	}
}

func TestDecryptFailureAuditErrorLogged(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	failing := audit.RecorderFunc(func(context.Context, string, string, map[string]any) error {
		return errors.New("db down")
	})
	rec := post(t, handlers.Decrypt(failing, zap.New(core).Sugar()), map[string]any{
		"mode": "CBC", "key_hex": hwKey, "iv_hex": strings.Repeat("00", 16), "data_hex": strings.Repeat("00", 16),
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status %d, want 400", rec.Code)
	}
	entries := logs.FilterMessage("audit write failed").All()
	if len(entries) != 1 {
		t.Fatalf("got %d audit warnings, want 1", len(entries))
	}
	if got := entries[0].ContextMap()["action"]; got != "DECRYPT_FAILED" {
		t.Errorf("action = %v", got)
	}
}
