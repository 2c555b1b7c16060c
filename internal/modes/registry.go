package modes

import (
	"crypto/cipher"
	"crypto/des"
	"fmt"
	"sort"
	"strings"

	"github.com/RyuaNerin/go-krypto/hight"
	"github.com/RyuaNerin/go-krypto/seed"
	"github.com/aead/camellia"
	"golang.org/x/crypto/cast5"

	"cryptolab/internal/rijndael"
)

// Factory builds a block cipher from a raw key.
type Factory func(key []byte) (cipher.Block, error)

// CipherInfo describes a registered block cipher.
type CipherInfo struct {
	Name       string
	BlockSize  int   // bytes
	KeyLengths []int // bytes
	New        Factory
}

func newAES(key []byte) (cipher.Block, error) {
	c, err := rijndael.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func newCamellia(key []byte) (cipher.Block, error) {
	switch len(key) {
	case 16, 24, 32:
	default:
		return nil, fmt.Errorf("%w: camellia got %d bytes, want 16, 24 or 32", ErrInvalidKeyLength, len(key))
	}
	return camellia.NewCipher(key)
}

func newSEED(key []byte) (cipher.Block, error) {
	if len(key) != 16 {
		return nil, fmt.Errorf("%w: seed got %d bytes, want 16", ErrInvalidKeyLength, len(key))
	}
	return seed.NewCipher(key)
}

func newHIGHT(key []byte) (cipher.Block, error) {
	if len(key) != 16 {
		return nil, fmt.Errorf("%w: hight got %d bytes, want 16", ErrInvalidKeyLength, len(key))
	}
	return hight.NewCipher(key)
}

func newCAST5(key []byte) (cipher.Block, error) {
	if len(key) != cast5.KeySize {
		return nil, fmt.Errorf("%w: cast5 got %d bytes, want %d", ErrInvalidKeyLength, len(key), cast5.KeySize)
	}
	return cast5.NewCipher(key)
}

// newTDEA accepts a three-key bundle, or a two-key bundle expanded to K1 K2 K1.
func newTDEA(key []byte) (cipher.Block, error) {
	switch len(key) {
	case 16:
		key = append(append([]byte(nil), key...), key[:8]...)
	case 24:
	default:
		return nil, fmt.Errorf("%w: tdea got %d bytes, want 16 or 24", ErrInvalidKeyLength, len(key))
	}
	return des.NewTripleDESCipher(key)
}

var registry = map[string]CipherInfo{
	"AES":      {Name: "AES", BlockSize: 16, KeyLengths: []int{16, 24, 32}, New: newAES},
	"CAMELLIA": {Name: "CAMELLIA", BlockSize: 16, KeyLengths: []int{16, 24, 32}, New: newCamellia},
	"SEED":     {Name: "SEED", BlockSize: 16, KeyLengths: []int{16}, New: newSEED},
	"HIGHT":    {Name: "HIGHT", BlockSize: 8, KeyLengths: []int{16}, New: newHIGHT},
	"CAST5":    {Name: "CAST5", BlockSize: 8, KeyLengths: []int{16}, New: newCAST5},
	"TDEA":     {Name: "TDEA", BlockSize: 8, KeyLengths: []int{16, 24}, New: newTDEA},
}

// Lookup finds a cipher by case-insensitive name. An empty name means AES.
func Lookup(name string) (CipherInfo, error) {
	name = strings.ToUpper(strings.TrimSpace(name))
	if name == "" {
		name = "AES"
	}
	ci, ok := registry[name]
	if !ok {
		return CipherInfo{}, fmt.Errorf("%w: %q", ErrUnsupportedCipher, name)
	}
	return ci, nil
}

// Ciphers lists the registered ciphers sorted by name.
func Ciphers() []CipherInfo {
	out := make([]CipherInfo, 0, len(registry))
	for _, ci := range registry {
		out = append(out, ci)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
