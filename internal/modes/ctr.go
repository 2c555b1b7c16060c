package modes

import (
	"crypto/cipher"
	"crypto/subtle"
	"fmt"
)

// CTR turns a block cipher into a stream cipher. The counter starts at the IV
// read as a big-endian integer and keystream block i is E(IV + i mod 2^(8*bs)).
// Encryption and decryption are the same operation.
type CTR struct {
	b   cipher.Block
	iv  []byte
	ctr []byte
	ks  []byte
	off int // bytes of ks already used
}

func NewCTR(b cipher.Block, iv []byte) (*CTR, error) {
	bs := b.BlockSize()
	if len(iv) != bs {
		return nil, fmt.Errorf("%w: got %d bytes, want %d", ErrInvalidIVLength, len(iv), bs)
	}
	c := &CTR{
		b:   b,
		iv:  append([]byte(nil), iv...),
		ctr: append([]byte(nil), iv...),
		ks:  make([]byte, bs),
		off: bs,
	}
	return c, nil
}

// addCounter adds n to the big-endian integer in ctr, wrapping on overflow.
func addCounter(ctr []byte, n uint64) {
	for i := len(ctr) - 1; i >= 0 && n != 0; i-- {
		sum := uint64(ctr[i]) + n&0xff
		ctr[i] = byte(sum)
		n = n>>8 + sum>>8
	}
}

func (c *CTR) refill() {
	c.b.Encrypt(c.ks, c.ctr)
	addCounter(c.ctr, 1)
	c.off = 0
}

// XORKeyStream implements cipher.Stream. Successive calls continue the same
// keystream. The final partial block consumes only as many keystream bytes as
// it needs.
func (c *CTR) XORKeyStream(dst, src []byte) {
	if len(dst) < len(src) {
		panic("modes: CTR output smaller than input")
	}
	for len(src) > 0 {
		if c.off == len(c.ks) {
			c.refill()
		}
		n := subtle.XORBytes(dst, src, c.ks[c.off:])
		c.off += n
		dst = dst[n:]
		src = src[n:]
	}
}

// Apply returns data XORed with the keystream, continuing from where the
// previous call stopped.
func (c *CTR) Apply(data []byte) []byte {
	out := make([]byte, len(data))
	c.XORKeyStream(out, data)
	return out
}

// KeystreamBlock returns E(IV + i) without touching the stream position.
// Blocks are independent of each other, which makes CTR seekable.
func (c *CTR) KeystreamBlock(i uint64) []byte {
	ctr := append([]byte(nil), c.iv...)
	addCounter(ctr, i)
	out := make([]byte, len(ctr))
	c.b.Encrypt(out, ctr)
	return out
}

// Seek positions the stream at byte offset off from the start of the message.
func (c *CTR) Seek(off uint64) {
	bs := uint64(len(c.ks))
	copy(c.ctr, c.iv)
	addCounter(c.ctr, off/bs)
	c.refill()
	c.off = int(off % bs)
}
