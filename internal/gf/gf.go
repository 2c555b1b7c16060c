// Package gf implements byte arithmetic in GF(2^8) with the AES reduction
// polynomial x^8 + x^4 + x^3 + x + 1.
package gf

// Poly is the reduction polynomial without the implicit x^8 term.
const Poly byte = 0x1b

func Add(a, b byte) byte {
	return a ^ b
}

// Xtime multiplies a by x.
func Xtime(a byte) byte {
	hi := a & 0x80
	a <<= 1
	if hi != 0 {
		a ^= Poly
	}
	return a
}

// Mul multiplies a and b (Russian peasant method).
func Mul(a, b byte) byte {
	var p byte
	for b != 0 {
		if b&1 == 1 {
			p ^= a
		}
		a = Xtime(a)
		b >>= 1
	}
	return p
}

// Pow returns a^n. Pow(a, 0) == 1 for every a, including 0.
func Pow(a byte, n int) byte {
	r := byte(1)
	for n > 0 {
		if n&1 == 1 {
			r = Mul(r, a)
		}
		a = Mul(a, a)
		n >>= 1
	}
	return r
}

// Inverse returns the multiplicative inverse of a. The field has 255 non-zero
// elements so a^254 == a^-1. Inverse(0) is 0, as the S-box construction expects.
func Inverse(a byte) byte {
	if a == 0 {
		return 0
	}
	return Pow(a, 254)
}
