package modes

import (
	"crypto/cipher"
	"crypto/subtle"
	"fmt"
)

// CBC chains a block cipher: C_i = E(P_i ^ C_{i-1}), C_0 = IV.
// A CBC value is bound to one (key, IV) pair; the chaining register lives
// only for the duration of each call, so calling Encrypt twice restarts from
// the IV. Never reuse an IV with the same key.
type CBC struct {
	b  cipher.Block
	iv []byte
}

func NewCBC(b cipher.Block, iv []byte) (*CBC, error) {
	if len(iv) != b.BlockSize() {
		return nil, fmt.Errorf("%w: got %d bytes, want %d", ErrInvalidIVLength, len(iv), b.BlockSize())
	}
	return &CBC{b: b, iv: append([]byte(nil), iv...)}, nil
}

func (c *CBC) BlockSize() int { return c.b.BlockSize() }

func (c *CBC) aligned(n int) error {
	bs := c.b.BlockSize()
	if n%bs != 0 {
		return fmt.Errorf("%w: %d bytes is not a multiple of %d", ErrInvalidBlockLength, n, bs)
	}
	return nil
}

// EncryptBlocks runs CBC over block-aligned input without padding.
func (c *CBC) EncryptBlocks(src []byte) ([]byte, error) {
	if err := c.aligned(len(src)); err != nil {
		return nil, err
	}
	bs := c.b.BlockSize()
	dst := make([]byte, len(src))
	prev := c.iv
	for i := 0; i < len(src); i += bs {
		out := dst[i : i+bs]
		subtle.XORBytes(out, src[i:i+bs], prev)
		c.b.Encrypt(out, out)
		prev = out
	}
	return dst, nil
}

// DecryptBlocks is the inverse of EncryptBlocks. Each P_i depends only on
// C_i and C_{i-1}, both known up front.
func (c *CBC) DecryptBlocks(src []byte) ([]byte, error) {
	if err := c.aligned(len(src)); err != nil {
		return nil, err
	}
	bs := c.b.BlockSize()
	dst := make([]byte, len(src))
	prev := c.iv
	for i := 0; i < len(src); i += bs {
		in := src[i : i+bs]
		out := dst[i : i+bs]
		c.b.Decrypt(out, in)
		subtle.XORBytes(out, out, prev)
		prev = in
	}
	return dst, nil
}

// Encrypt pads plaintext with PKCS#7 and encrypts it. The IV is not part of
// the output.
func (c *CBC) Encrypt(plaintext []byte) []byte {
	out, _ := c.EncryptBlocks(Pad(plaintext, c.b.BlockSize()))
	return out
}

// Decrypt decrypts and strips PKCS#7 padding.
func (c *CBC) Decrypt(ciphertext []byte) ([]byte, error) {
	if len(ciphertext) == 0 {
		return nil, fmt.Errorf("%w: empty ciphertext", ErrInvalidBlockLength)
	}
	pt, err := c.DecryptBlocks(ciphertext)
	if err != nil {
		return nil, err
	}
	return Unpad(pt, c.b.BlockSize())
}
