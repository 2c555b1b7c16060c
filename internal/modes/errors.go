package modes

import (
	"errors"

	"cryptolab/internal/rijndael"
)

// Every failure is reported through one of these values, wrapped with
// context. Match with errors.Is. No function in this package returns partial
// output together with an error.
var (
	ErrInvalidKeyLength   = rijndael.ErrInvalidKeyLength
	ErrInvalidBlockLength = rijndael.ErrInvalidBlockLength
	ErrInvalidIVLength    = errors.New("invalid IV length")
	ErrInvalidPadding     = errors.New("invalid padding")
	ErrUnsupportedMode    = errors.New("unsupported mode")
	ErrUnsupportedCipher  = errors.New("unsupported cipher")
)
