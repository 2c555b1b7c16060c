package modes

import (
	"crypto/subtle"
	"fmt"
)

// Pad appends PKCS#7 padding: n bytes of value n, 1 <= n <= blockSize. A
// block-aligned input gets a full extra block.
func Pad(data []byte, blockSize int) []byte {
	n := blockSize - len(data)%blockSize
	out := make([]byte, len(data)+n)
	copy(out, data)
	for i := len(data); i < len(out); i++ {
		out[i] = byte(n)
	}
	return out
}

// Unpad validates and strips PKCS#7 padding. The whole final block is
// inspected regardless of the pad value so that a wrong length and a wrong
// pad byte take the same time.
func Unpad(data []byte, blockSize int) ([]byte, error) {
	n := len(data)
	if n == 0 || n%blockSize != 0 {
		return nil, fmt.Errorf("%w: %d bytes is not a positive multiple of %d", ErrInvalidPadding, n, blockSize)
	}
	pad := int(data[n-1])
	good := subtle.ConstantTimeLessOrEq(1, pad) & subtle.ConstantTimeLessOrEq(pad, blockSize)
	tail := data[n-blockSize:]
	for i, b := range tail {
		// distance from the end, 1 for the last byte
		k := blockSize - i
		inPad := subtle.ConstantTimeLessOrEq(k, pad)
		good &= subtle.ConstantTimeSelect(inPad, subtle.ConstantTimeByteEq(b, byte(pad)), 1)
	}
	if good != 1 {
		return nil, ErrInvalidPadding
	}
	return data[:n-pad], nil
}
