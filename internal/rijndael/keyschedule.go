package rijndael

import (
	"encoding/binary"
	"fmt"
)

// Schedule holds the expanded round keys for one AES key. It is read-only
// after ExpandKey returns and may be shared between goroutines.
type Schedule struct {
	rounds int
	w      []uint32
}

func roundsFor(keyLen int) (int, error) {
	switch keyLen {
	case 16:
		return 10, nil
	case 24:
		return 12, nil
	case 32:
		return 14, nil
	}
	return 0, fmt.Errorf("%w: got %d bytes, want 16, 24 or 32", ErrInvalidKeyLength, keyLen)
}

func subWord(w uint32) uint32 {
	return uint32(sbox[w>>24])<<24 | uint32(sbox[w>>16&0xff])<<16 | uint32(sbox[w>>8&0xff])<<8 | uint32(sbox[w&0xff])
}

func rotWord(w uint32) uint32 {
	return w<<8 | w>>24
}

// ExpandKey derives rounds+1 round keys from a 16, 24 or 32 byte key.
func ExpandKey(key []byte) (*Schedule, error) {
	nr, err := roundsFor(len(key))
	if err != nil {
		return nil, err
	}
	nk := len(key) / 4
	total := 4 * (nr + 1)
	w := make([]uint32, total)
	for i := 0; i < nk; i++ {
		w[i] = binary.BigEndian.Uint32(key[4*i:])
	}
	for i := nk; i < total; i++ {
		t := w[i-1]
		if i%nk == 0 {
			t = subWord(rotWord(t)) ^ uint32(rcon[i/nk-1])<<24
		} else if nk > 6 && i%nk == 4 {
			t = subWord(t)
		}
		w[i] = w[i-nk] ^ t
	}
	return &Schedule{rounds: nr, w: w}, nil
}

// Rounds returns 10, 12 or 14.
func (s *Schedule) Rounds() int { return s.rounds }

// RoundKey returns round key i, 0 <= i <= Rounds().
func (s *Schedule) RoundKey(i int) [BlockSize]byte {
	var k [BlockSize]byte
	for c := 0; c < 4; c++ {
		binary.BigEndian.PutUint32(k[4*c:], s.w[4*i+c])
	}
	return k
}

// Bytes returns all round keys concatenated, 16*(Rounds()+1) bytes.
func (s *Schedule) Bytes() []byte {
	out := make([]byte, 0, 4*len(s.w))
	for i := 0; i <= s.rounds; i++ {
		k := s.RoundKey(i)
		out = append(out, k[:]...)
	}
	return out
}
