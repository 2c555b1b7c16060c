package rijndael

import (
	"math/bits"

	"cryptolab/internal/gf"
)

var (
	sbox    [256]byte
	invSbox [256]byte
	rcon    [10]byte

	// products used by MixColumns and InvMixColumns
	mul2, mul3, mul9, mul11, mul13, mul14 [256]byte
)

func init() {
	for i := 0; i < 256; i++ {
		b := gf.Inverse(byte(i))
		s := b ^ bits.RotateLeft8(b, 1) ^ bits.RotateLeft8(b, 2) ^ bits.RotateLeft8(b, 3) ^ bits.RotateLeft8(b, 4) ^ 0x63
		sbox[i] = s
		invSbox[s] = byte(i)

		mul2[i] = gf.Mul(byte(i), 2)
		mul3[i] = gf.Mul(byte(i), 3)
		mul9[i] = gf.Mul(byte(i), 9)
		mul11[i] = gf.Mul(byte(i), 11)
		mul13[i] = gf.Mul(byte(i), 13)
		mul14[i] = gf.Mul(byte(i), 14)
	}
	rc := byte(1)
	for i := range rcon {
		rcon[i] = rc
		rc = gf.Xtime(rc)
	}
}
