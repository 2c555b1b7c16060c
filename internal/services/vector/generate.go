package vector

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"strconv"
	"strings"

	"cryptolab/internal/modes"
)

type TestMode string

const (
	KAT TestMode = "KAT"
	MMT TestMode = "MMT"
	MCT TestMode = "MCT"
)

// mctIterations is the chain length of a Monte Carlo record.
const mctIterations = 1000

func ParseTestMode(s string) (TestMode, error) {
	switch t := TestMode(strings.ToUpper(strings.TrimSpace(s))); t {
	case KAT, MMT, MCT:
		return t, nil
	case "":
		return KAT, nil
	}
	return "", fmt.Errorf("unsupported test_mode %q", s)
}

type GenParams struct {
	KeyBits         int
	Count           int
	IncludeExpected bool
}

type EncRecord struct {
	Count      int    `json:"count"`
	KeyHex     string `json:"key"`
	IVHex      string `json:"iv"`
	Plaintext  string `json:"plaintext"`
	Ciphertext string `json:"ciphertext,omitempty"`
}
type DecRecord struct {
	Count      int    `json:"count"`
	KeyHex     string `json:"key"`
	IVHex      string `json:"iv"`
	Ciphertext string `json:"ciphertext"`
	Plaintext  string `json:"plaintext,omitempty"`
}

type TestVector struct {
	Algorithm string      `json:"algorithm"`
	Mode      string      `json:"mode"`
	TestMode  string      `json:"test_mode"`
	KeyBits   int         `json:"key_bits"`
	Encrypt   []EncRecord `json:"encrypt"`
	Decrypt   []DecRecord `json:"decrypt"`
}

func randBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := io.ReadFull(rand.Reader, b); err != nil {
		return nil, fmt.Errorf("random: %w", err)
	}
	return b, nil
}

// randBlocks fills one random buffer per length.
func randBlocks(lens ...int) ([][]byte, error) {
	out := make([][]byte, len(lens))
	for i, n := range lens {
		b, err := randBytes(n)
		if err != nil {
			return nil, err
		}
		out[i] = b
	}
	return out, nil
}

// runner encrypts or decrypts one record's payload under a fresh chaining
// state, without padding.
func runner(ci modes.CipherInfo, mode modes.Mode, key, iv []byte) (enc, dec func([]byte) ([]byte, error), err error) {
	blk, err := ci.New(key)
	if err != nil {
		return nil, nil, err
	}
	switch mode {
	case modes.ModeCBC:
		c, err := modes.NewCBC(blk, iv)
		if err != nil {
			return nil, nil, err
		}
		return c.EncryptBlocks, c.DecryptBlocks, nil
	case modes.ModeCTR:
		if _, err := modes.NewCTR(blk, iv); err != nil {
			return nil, nil, err
		}
		// a new stream per call so every record starts at the IV
		ctr := func(in []byte) ([]byte, error) {
			c, _ := modes.NewCTR(blk, iv)
			return c.Apply(in), nil
		}
		return ctr, ctr, nil
	}
	return nil, nil, fmt.Errorf("%w: %q", modes.ErrUnsupportedMode, string(mode))
}

// monteCarlo chains mctIterations single-block operations. Each output block
// becomes the next input and the next IV; decryption feeds the previous
// input forward as the IV the way CBC does.
func monteCarlo(ci modes.CipherInfo, mode modes.Mode, key, iv, seed []byte, encrypt bool) ([]byte, error) {
	x := append([]byte(nil), seed...)
	ivWork := append([]byte(nil), iv...)
	for j := 0; j < mctIterations; j++ {
		enc, dec, err := runner(ci, mode, key, ivWork)
		if err != nil {
			return nil, err
		}
		var y []byte
		if encrypt {
			y, err = enc(x)
			ivWork = y
		} else {
			y, err = dec(x)
			ivWork = x
		}
		if err != nil {
			return nil, err
		}
		x = y
	}
	return x, nil
}

// GenerateTestVectors produces Count records (default 10) in NIST .rsp
// style for a registered block cipher in CBC or CTR mode.
//
// KAT uses a zero key and IV with random single blocks. MMT uses a zero key
// and IV with record i carrying i+1 blocks. MCT uses random keys and IVs and
// a 1000-step chain.
func GenerateTestVectors(algorithm, mode, test string, p GenParams) (TestVector, error) {
	if p.Count <= 0 {
		p.Count = 10
	}
	ci, err := modes.Lookup(algorithm)
	if err != nil {
		return TestVector{}, err
	}
	m, err := modes.ParseMode(mode)
	if err != nil {
		return TestVector{}, err
	}
	tmode, err := ParseTestMode(test)
	if err != nil {
		return TestVector{}, err
	}
	if p.KeyBits == 0 {
		p.KeyBits = 8 * ci.KeyLengths[0]
	}
	keyLen := p.KeyBits / 8
	if !containsInt(ci.KeyLengths, keyLen) || p.KeyBits%8 != 0 {
		return TestVector{}, fmt.Errorf("%w: key_bits %d not supported by %s", modes.ErrInvalidKeyLength, p.KeyBits, ci.Name)
	}

	out := TestVector{Algorithm: ci.Name, Mode: string(m), TestMode: string(tmode), KeyBits: p.KeyBits}
	bs := ci.BlockSize

	for i := 0; i < p.Count; i++ {
		var key, iv, pt, ctSeed []byte
		switch tmode {
		case KAT, MMT:
			n := bs
			if tmode == MMT {
				n = bs * (i + 1)
			}
			key, iv = make([]byte, keyLen), make([]byte, bs)
			r, err := randBlocks(n, n)
			if err != nil {
				return TestVector{}, err
			}
			pt, ctSeed = r[0], r[1]
		case MCT:
			r, err := randBlocks(keyLen, bs, bs, bs)
			if err != nil {
				return TestVector{}, err
			}
			key, iv, pt, ctSeed = r[0], r[1], r[2], r[3]
		}

		var ct, decPT []byte
		if tmode == MCT {
			if ct, err = monteCarlo(ci, m, key, iv, pt, true); err != nil {
				return TestVector{}, err
			}
			if decPT, err = monteCarlo(ci, m, key, iv, ctSeed, false); err != nil {
				return TestVector{}, err
			}
		} else {
			enc, dec, err := runner(ci, m, key, iv)
			if err != nil {
				return TestVector{}, err
			}
			if ct, err = enc(pt); err != nil {
				return TestVector{}, err
			}
			if decPT, err = dec(ctSeed); err != nil {
				return TestVector{}, err
			}
		}

		enc := EncRecord{Count: i, KeyHex: hex.EncodeToString(key), IVHex: hex.EncodeToString(iv), Plaintext: hex.EncodeToString(pt)}
		dec := DecRecord{Count: i, KeyHex: enc.KeyHex, IVHex: enc.IVHex, Ciphertext: hex.EncodeToString(ctSeed)}
		if p.IncludeExpected {
			enc.Ciphertext = hex.EncodeToString(ct)
			dec.Plaintext = hex.EncodeToString(decPT)
		}
		out.Encrypt = append(out.Encrypt, enc)
		out.Decrypt = append(out.Decrypt, dec)
	}
	return out, nil
}

func containsInt(list []int, x int) bool {
	for _, v := range list {
		if v == x {
			return true
		}
	}
	return false
}

// ToTXT renders the vector in the NIST .rsp layout. Expected values are
// written only when present.
func (v TestVector) ToTXT() string {
	var b strings.Builder
	b.WriteString("# " + v.Algorithm + " " + v.Mode + " " + v.TestMode + " " + fmtInt(v.KeyBits) + "\n\n")
	b.WriteString("[ENCRYPT]\n\n")
	for _, r := range v.Encrypt {
		b.WriteString("COUNT = " + fmtInt(r.Count) + "\n")
		b.WriteString("KEY = " + strings.ToLower(r.KeyHex) + "\n")
		b.WriteString("IV = " + strings.ToLower(r.IVHex) + "\n")
		b.WriteString("PLAINTEXT = " + strings.ToLower(r.Plaintext) + "\n")
		if r.Ciphertext != "" {
			b.WriteString("CIPHERTEXT = " + strings.ToLower(r.Ciphertext) + "\n")
		}
		b.WriteString("\n")
	}
	b.WriteString("[DECRYPT]\n\n")
	for _, r := range v.Decrypt {
		b.WriteString("COUNT = " + fmtInt(r.Count) + "\n")
		b.WriteString("KEY = " + strings.ToLower(r.KeyHex) + "\n")
		b.WriteString("IV = " + strings.ToLower(r.IVHex) + "\n")
		b.WriteString("CIPHERTEXT = " + strings.ToLower(r.Ciphertext) + "\n")
		if r.Plaintext != "" {
			b.WriteString("PLAINTEXT = " + strings.ToLower(r.Plaintext) + "\n")
		}
		b.WriteString("\n")
	}
	return b.String()
}

func fmtInt(i int) string { return strconv.Itoa(i) }
