// Package modes implements the CBC and CTR modes of operation over any
// crypto/cipher.Block, PKCS#7 padding, and a one-call Encrypt/Decrypt
// boundary used by the HTTP service and the homework program.
//
// An IV must never be reused with the same key under the same mode. Nothing
// here can enforce that; callers generate a fresh IV per message.
package modes

import (
	"crypto/cipher"
	"fmt"
	"strings"
)

type Mode string

const (
	ModeCBC Mode = "CBC"
	ModeCTR Mode = "CTR"
)

// Modes lists the supported modes.
var Modes = []Mode{ModeCBC, ModeCTR}

func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToUpper(strings.TrimSpace(s))); m {
	case ModeCBC, ModeCTR:
		return m, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedMode, s)
}

type options struct {
	prependIV bool
	cipher    Factory
}

type Option func(*options)

// WithPrependIV makes Encrypt return IV || ciphertext.
func WithPrependIV() Option {
	return func(o *options) { o.prependIV = true }
}

// WithCipher replaces the default AES block cipher.
func WithCipher(f Factory) Option {
	return func(o *options) { o.cipher = f }
}

func buildOptions(opts []Option) options {
	o := options{cipher: newAES}
	for _, fn := range opts {
		fn(&o)
	}
	return o
}

func checkMode(m Mode) error {
	if m != ModeCBC && m != ModeCTR {
		return fmt.Errorf("%w: %q", ErrUnsupportedMode, string(m))
	}
	return nil
}

// Encrypt encrypts data under key and iv. CBC output is PKCS#7 padded; CTR
// output has the same length as data.
func Encrypt(mode Mode, key, iv, data []byte, opts ...Option) ([]byte, error) {
	if err := checkMode(mode); err != nil {
		return nil, err
	}
	o := buildOptions(opts)
	b, err := o.cipher(key)
	if err != nil {
		return nil, err
	}
	var out []byte
	switch mode {
	case ModeCBC:
		c, err := NewCBC(b, iv)
		if err != nil {
			return nil, err
		}
		out = c.Encrypt(data)
	case ModeCTR:
		c, err := NewCTR(b, iv)
		if err != nil {
			return nil, err
		}
		out = c.Apply(data)
	}
	if o.prependIV {
		out = append(append(make([]byte, 0, len(iv)+len(out)), iv...), out...)
	}
	return out, nil
}

// Decrypt reverses Encrypt. data must not carry the IV prefix; see
// DecryptPrefixed for that layout.
func Decrypt(mode Mode, key, iv, data []byte, opts ...Option) ([]byte, error) {
	if err := checkMode(mode); err != nil {
		return nil, err
	}
	o := buildOptions(opts)
	b, err := o.cipher(key)
	if err != nil {
		return nil, err
	}
	return decrypt(mode, b, iv, data)
}

// DecryptPrefixed decrypts IV || ciphertext, the layout Encrypt produces with
// WithPrependIV. The IV length is the cipher's block size.
func DecryptPrefixed(mode Mode, key, data []byte, opts ...Option) ([]byte, error) {
	if err := checkMode(mode); err != nil {
		return nil, err
	}
	o := buildOptions(opts)
	b, err := o.cipher(key)
	if err != nil {
		return nil, err
	}
	bs := b.BlockSize()
	if len(data) < bs {
		return nil, fmt.Errorf("%w: input of %d bytes has no room for a %d byte IV", ErrInvalidIVLength, len(data), bs)
	}
	return decrypt(mode, b, data[:bs], data[bs:])
}

func decrypt(mode Mode, b cipher.Block, iv, data []byte) ([]byte, error) {
	if mode == ModeCBC {
		c, err := NewCBC(b, iv)
		if err != nil {
			return nil, err
		}
		return c.Decrypt(data)
	}
	c, err := NewCTR(b, iv)
	if err != nil {
		return nil, err
	}
	return c.Apply(data), nil
}
