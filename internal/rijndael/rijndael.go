// Package rijndael implements the AES block cipher (FIPS-197) for 128, 192
// and 256 bit keys. The S-boxes, round constants and MixColumns product tables
// are derived from GF(2^8) arithmetic when the package is initialised.
package rijndael

import (
	"errors"
	"fmt"
)

const BlockSize = 16

var (
	ErrInvalidKeyLength   = errors.New("invalid key length")
	ErrInvalidBlockLength = errors.New("invalid block length")
)

// state is the 4x4 column-major AES state: row r, column c is state[r+4*c].
type state [BlockSize]byte

func (st *state) addRoundKey(k [BlockSize]byte) {
	for i := range st {
		st[i] ^= k[i]
	}
}

func (st *state) subBytes() {
	for i := range st {
		st[i] = sbox[st[i]]
	}
}

func (st *state) invSubBytes() {
	for i := range st {
		st[i] = invSbox[st[i]]
	}
}

// shiftRows rotates row r left by r positions.
func (st *state) shiftRows() {
	old := *st
	for r := 1; r < 4; r++ {
		for c := 0; c < 4; c++ {
			st[r+4*c] = old[r+4*((c+r)%4)]
		}
	}
}

func (st *state) invShiftRows() {
	old := *st
	for r := 1; r < 4; r++ {
		for c := 0; c < 4; c++ {
			st[r+4*((c+r)%4)] = old[r+4*c]
		}
	}
}

func (st *state) mixColumns() {
	for c := 0; c < 4; c++ {
		a0, a1, a2, a3 := st[4*c], st[4*c+1], st[4*c+2], st[4*c+3]
		st[4*c] = mul2[a0] ^ mul3[a1] ^ a2 ^ a3
		st[4*c+1] = a0 ^ mul2[a1] ^ mul3[a2] ^ a3
		st[4*c+2] = a0 ^ a1 ^ mul2[a2] ^ mul3[a3]
		st[4*c+3] = mul3[a0] ^ a1 ^ a2 ^ mul2[a3]
	}
}

func (st *state) invMixColumns() {
	for c := 0; c < 4; c++ {
		a0, a1, a2, a3 := st[4*c], st[4*c+1], st[4*c+2], st[4*c+3]
		st[4*c] = mul14[a0] ^ mul11[a1] ^ mul13[a2] ^ mul9[a3]
		st[4*c+1] = mul9[a0] ^ mul14[a1] ^ mul11[a2] ^ mul13[a3]
		st[4*c+2] = mul13[a0] ^ mul9[a1] ^ mul14[a2] ^ mul11[a3]
		st[4*c+3] = mul11[a0] ^ mul13[a1] ^ mul9[a2] ^ mul14[a3]
	}
}

func (s *Schedule) encrypt(dst, src []byte) {
	var st state
	copy(st[:], src)
	st.addRoundKey(s.RoundKey(0))
	for round := 1; round < s.rounds; round++ {
		st.subBytes()
		st.shiftRows()
		st.mixColumns()
		st.addRoundKey(s.RoundKey(round))
	}
	st.subBytes()
	st.shiftRows()
	st.addRoundKey(s.RoundKey(s.rounds))
	copy(dst, st[:])
}

func (s *Schedule) decrypt(dst, src []byte) {
	var st state
	copy(st[:], src)
	st.addRoundKey(s.RoundKey(s.rounds))
	for round := s.rounds - 1; round > 0; round-- {
		st.invShiftRows()
		st.invSubBytes()
		st.addRoundKey(s.RoundKey(round))
		st.invMixColumns()
	}
	st.invShiftRows()
	st.invSubBytes()
	st.addRoundKey(s.RoundKey(0))
	copy(dst, st[:])
}

func checkBlock(b []byte) error {
	if len(b) != BlockSize {
		return fmt.Errorf("%w: got %d bytes, want %d", ErrInvalidBlockLength, len(b), BlockSize)
	}
	return nil
}

// EncryptBlock encrypts exactly one 16-byte block and returns a new slice.
func EncryptBlock(block []byte, s *Schedule) ([]byte, error) {
	if err := checkBlock(block); err != nil {
		return nil, err
	}
	out := make([]byte, BlockSize)
	s.encrypt(out, block)
	return out, nil
}

// DecryptBlock is the inverse of EncryptBlock.
func DecryptBlock(block []byte, s *Schedule) ([]byte, error) {
	if err := checkBlock(block); err != nil {
		return nil, err
	}
	out := make([]byte, BlockSize)
	s.decrypt(out, block)
	return out, nil
}

// Cipher binds a key schedule to the crypto/cipher.Block interface.
type Cipher struct {
	s *Schedule
}

func NewCipher(key []byte) (*Cipher, error) {
	s, err := ExpandKey(key)
	if err != nil {
		return nil, err
	}
	return &Cipher{s: s}, nil
}

func (c *Cipher) BlockSize() int { return BlockSize }

// Encrypt follows the cipher.Block contract and panics on short buffers.
func (c *Cipher) Encrypt(dst, src []byte) {
	if len(src) < BlockSize {
		panic("rijndael: input not full block")
	}
	if len(dst) < BlockSize {
		panic("rijndael: output not full block")
	}
	c.s.encrypt(dst[:BlockSize], src[:BlockSize])
}

func (c *Cipher) Decrypt(dst, src []byte) {
	if len(src) < BlockSize {
		panic("rijndael: input not full block")
	}
	if len(dst) < BlockSize {
		panic("rijndael: output not full block")
	}
	c.s.decrypt(dst[:BlockSize], src[:BlockSize])
}
