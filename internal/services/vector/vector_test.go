package vector_test

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"strings"
	"testing"

	"cryptolab/internal/modes"
	"cryptolab/internal/services/vector"
)

func TestGenerateValidateRoundTrip(t *testing.T) {
	for _, alg := range []string{"AES", "CAMELLIA", "SEED", "HIGHT", "CAST5", "TDEA"} {
		for _, mode := range []string{"CBC", "ctr"} {
			for _, test := range []string{"KAT", "MMT", "MCT"} {
				keyBits := 128
				vec, err := vector.GenerateTestVectors(alg, mode, test, vector.GenParams{KeyBits: keyBits, Count: 3, IncludeExpected: true})
				if err != nil {
					t.Fatalf("%s/%s/%s: %v", alg, mode, test, err)
				}
				if len(vec.Encrypt) != 3 || len(vec.Decrypt) != 3 {
					t.Fatalf("%s/%s/%s: got %d/%d records", alg, mode, test, len(vec.Encrypt), len(vec.Decrypt))
				}
				recs, err := vector.ParseVectorFile(strings.NewReader(vec.ToTXT()))
				if err != nil {
					t.Fatal(err)
				}
				res, err := vector.Validate(alg, mode, test, recs)
				if err != nil {
					t.Fatalf("%s/%s/%s: %v", alg, mode, test, err)
				}
				if res.Total != 6 || res.Passed != 6 || res.Failed != 0 {
					t.Errorf("%s/%s/%s: %+v", alg, mode, test, res)
				}
			}
		}
	}
}

func TestGenerateMMTLengths(t *testing.T) {
	vec, err := vector.GenerateTestVectors("AES", "CBC", "MMT", vector.GenParams{KeyBits: 256, Count: 4})
	if err != nil {
		t.Fatal(err)
	}
	for i, r := range vec.Encrypt {
		if got, want := len(r.Plaintext)/2, 16*(i+1); got != want {
			t.Errorf("record %d: %d bytes, want %d", i, got, want)
		}
		if r.Ciphertext != "" {
			t.Errorf("record %d: expected answer leaked without IncludeExpected", i)
		}
		if r.KeyHex != strings.Repeat("0", 64) {
			t.Errorf("record %d: MMT key %s, want zero key", i, r.KeyHex)
		}
	}
}

func TestGenerateRejects(t *testing.T) {
	if _, err := vector.GenerateTestVectors("AES", "CBC", "KAT", vector.GenParams{KeyBits: 100}); !errors.Is(err, modes.ErrInvalidKeyLength) {
		t.Errorf("key_bits 100: %v", err)
	}
	if _, err := vector.GenerateTestVectors("SEED", "CBC", "KAT", vector.GenParams{KeyBits: 256}); !errors.Is(err, modes.ErrInvalidKeyLength) {
		t.Errorf("SEED 256: %v", err)
	}
	if _, err := vector.GenerateTestVectors("AES", "GCM", "KAT", vector.GenParams{KeyBits: 128}); !errors.Is(err, modes.ErrUnsupportedMode) {
		t.Errorf("GCM: %v", err)
	}
	if _, err := vector.GenerateTestVectors("DES", "CBC", "KAT", vector.GenParams{KeyBits: 128}); !errors.Is(err, modes.ErrUnsupportedCipher) {
		t.Errorf("DES: %v", err)
	}
	if _, err := vector.GenerateTestVectors("AES", "CBC", "XYZ", vector.GenParams{KeyBits: 128}); err == nil {
		t.Error("test mode XYZ accepted")
	}
}

const sp38aFile = `# CBC-AES128 from SP 800-38A F.2.1/F.2.2
[ENCRYPT]

COUNT = 0
KEY = 2b7e151628aed2a6abf7158809cf4f3c
IV = 000102030405060708090a0b0c0d0e0f
PLAINTEXT = 6bc1bee22e409f96e93d7e117393172aae2d8a571e03ac9c9eb76fac45af8e51
CIPHERTEXT = 7649abac8119b246cee98e9b12e9197d5086cb9b507219ee95db113a917678b2

[DECRYPT]

COUNT = 0
KEY = 2b7e151628aed2a6abf7158809cf4f3c
IV = 000102030405060708090a0b0c0d0e0f
CIPHERTEXT = 7649abac8119b246cee98e9b12e9197d
PLAINTEXT = 6bc1bee22e409f96e93d7e117393172a

COUNT = 1
KEY = 2b7e151628aed2a6abf7158809cf4f3c
IV = 000102030405060708090a0b0c0d0e0f
CIPHERTEXT = 7649abac8119b246cee98e9b12e9197d
PLAINTEXT = 00000000000000000000000000000000
`

func TestValidateKnownFile(t *testing.T) {
	recs, err := vector.ParseVectorFile(strings.NewReader(sp38aFile))
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 3 {
		t.Fatalf("parsed %d records, want 3", len(recs))
	}
	if recs[0].Direction != "ENCRYPT" || recs[2].Direction != "DECRYPT" || recs[2].Count != 1 {
		t.Errorf("unexpected records: %+v", recs)
	}
	res, err := vector.Validate("aes", "cbc", "", recs)
	if err != nil {
		t.Fatal(err)
	}
	if res.Passed != 2 || res.Failed != 1 {
		t.Fatalf("got %+v", res)
	}
	f := res.Failures[0]
	if f.Count != 1 || f.Mode != "DECRYPT" || f.Got != "6bc1bee22e409f96e93d7e117393172a" {
		t.Errorf("failure = %+v", f)
	}
}

func TestParseVectorFileBadHex(t *testing.T) {
	_, err := vector.ParseVectorFile(strings.NewReader("[ENCRYPT]\nCOUNT = 0\nKEY = zz\n"))
	if err == nil || !strings.Contains(err.Error(), "line 3") {
		t.Errorf("got %v", err)
	}
}

func TestValidateStructuralError(t *testing.T) {
	recs := []vector.Record{{Count: 7, Key: make([]byte, 16), IV: make([]byte, 8), PT: make([]byte, 16), Direction: "ENCRYPT"}}
	_, err := vector.Validate("AES", "CBC", "KAT", recs)
	if !errors.Is(err, modes.ErrInvalidIVLength) || !strings.Contains(err.Error(), "COUNT=7") {
		t.Errorf("got %v", err)
	}
}

func TestGenerateCTR(t *testing.T) {
	in, out, p, err := vector.GenerateCTR(vector.CTRParams{
		KeyHex:   "2b7e151628aed2a6abf7158809cf4f3c",
		IVHex:    "f0f1f2f3f4f5f6f7f8f9fafbfcfdfeff",
		InputHex: "6bc1bee22e409f96e93d7e117393172aae2d",
	})
	if err != nil {
		t.Fatal(err)
	}
	if in != "6bc1bee22e409f96e93d7e117393172aae2d" || p.Algorithm != "AES" {
		t.Errorf("in = %s, params = %+v", in, p)
	}
	if out != "874d6191b620e3261bef6864990db6ce9806" {
		t.Errorf("out = %s", out)
	}

	in, out, p, err = vector.GenerateCTR(vector.CTRParams{Algorithm: "camellia", Size: 40})
	if err != nil {
		t.Fatal(err)
	}
	if len(in) != 80 || len(out) != 80 {
		t.Errorf("random input: %d/%d hex chars", len(in), len(out))
	}
	key, _ := hex.DecodeString(p.KeyHex)
	if len(key) != 32 {
		t.Errorf("random key length %d", len(key))
	}

	if _, _, _, err := vector.GenerateCTR(vector.CTRParams{KeyHex: "00"}); !errors.Is(err, modes.ErrInvalidKeyLength) {
		t.Errorf("short key: %v", err)
	}
}

func TestGenerateCTRSizeLimit(t *testing.T) {
	for _, size := range []int{vector.MaxCTRSize + 1, 1 << 62} {
		_, _, _, err := vector.GenerateCTR(vector.CTRParams{Size: size})
		if !errors.Is(err, vector.ErrSizeTooLarge) {
			t.Errorf("size %d: got %v, want ErrSizeTooLarge", size, err)
		}
	}
	in, _, _, err := vector.GenerateCTR(vector.CTRParams{Size: vector.MaxCTRSize})
	if err != nil || len(in) != 2*vector.MaxCTRSize {
		t.Errorf("size at the limit: %d hex chars, %v", len(in), err)
	}
}

type brokenReader struct{}

func (brokenReader) Read([]byte) (int, error) { return 0, errors.New("entropy exhausted") }

func TestRandomFailurePropagates(t *testing.T) {
	saved := rand.Reader
	rand.Reader = brokenReader{}
	defer func() { rand.Reader = saved }()

	if _, err := vector.GenerateTestVectors("AES", "CBC", "MCT", vector.GenParams{Count: 1}); err == nil || !strings.Contains(err.Error(), "entropy exhausted") {
		t.Errorf("GenerateTestVectors: %v", err)
	}
	if _, _, _, err := vector.GenerateCTR(vector.CTRParams{}); err == nil || !strings.Contains(err.Error(), "entropy exhausted") {
		t.Errorf("GenerateCTR: %v", err)
	}
}
