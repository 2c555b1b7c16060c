package vector

import (
	"encoding/hex"
	"errors"
	"fmt"

	"cryptolab/internal/modes"
)

// MaxCTRSize bounds the random input GenerateCTR will produce.
const MaxCTRSize = 1 << 20

var ErrSizeTooLarge = errors.New("size too large")

type CTRParams struct {
	Algorithm string `json:"algorithm,omitempty"` // registry name, AES when empty
	KeyHex    string `json:"key_hex,omitempty"`   // any length the cipher accepts (hex)
	IVHex     string `json:"iv_hex,omitempty"`    // one block (hex), initial counter block
	InputHex  string `json:"input_hex,omitempty"` // plaintext hex; generated if empty
	Size      int    `json:"size,omitempty"`      // bytes for random plaintext
}

// GenerateCTR produces a single CTR vector, filling in a random key, IV and
// input for whatever the caller leaves empty. The returned params carry the
// values actually used.
func GenerateCTR(p CTRParams) (inputHex, outputHex string, paramsOut CTRParams, err error) {
	ci, err := modes.Lookup(p.Algorithm)
	if err != nil {
		return "", "", p, err
	}
	var key []byte
	if p.KeyHex != "" {
		if key, err = hex.DecodeString(p.KeyHex); err != nil {
			return "", "", p, fmt.Errorf("key_hex: %w", err)
		}
	} else {
		if key, err = randBytes(ci.KeyLengths[len(ci.KeyLengths)-1]); err != nil {
			return "", "", p, err
		}
	}
	var iv []byte
	if p.IVHex != "" {
		if iv, err = hex.DecodeString(p.IVHex); err != nil {
			return "", "", p, fmt.Errorf("iv_hex: %w", err)
		}
	} else {
		if iv, err = randBytes(ci.BlockSize); err != nil {
			return "", "", p, err
		}
	}
	var pt []byte
	if p.InputHex != "" {
		if pt, err = hex.DecodeString(p.InputHex); err != nil {
			return "", "", p, fmt.Errorf("input_hex: %w", err)
		}
	} else {
		if p.Size <= 0 {
			p.Size = 32
		}
		if p.Size > MaxCTRSize {
			return "", "", p, fmt.Errorf("%w: size %d exceeds %d", ErrSizeTooLarge, p.Size, MaxCTRSize)
		}
		if pt, err = randBytes(p.Size); err != nil {
			return "", "", p, err
		}
	}

	ct, err := modes.Encrypt(modes.ModeCTR, key, iv, pt, modes.WithCipher(ci.New))
	if err != nil {
		return "", "", p, err
	}
	outParams := CTRParams{
		Algorithm: ci.Name,
		KeyHex:    hex.EncodeToString(key),
		IVHex:     hex.EncodeToString(iv),
		InputHex:  hex.EncodeToString(pt),
	}
	return outParams.InputHex, hex.EncodeToString(ct), outParams, nil
}
