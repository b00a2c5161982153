package blurhash

import (
	"errors"

	"github.com/AnyUserName/bhash/internal/base83"
)

// Errors returned by the codec. Match with errors.Is; returned values carry
// detail wrapped around these sentinels.
var (
	// ErrInvalidComponentCount: a component count outside [1, 9] on encode.
	ErrInvalidComponentCount = errors.New("blurhash: component count out of range")
	// ErrMalformedHash: a hash shorter than six symbols.
	ErrMalformedHash = errors.New("blurhash: malformed hash")
	// ErrLengthMismatch: the hash length disagrees with its size symbol.
	ErrLengthMismatch = errors.New("blurhash: length mismatch")
	// ErrInvalidSymbol: a character outside the base-83 alphabet.
	ErrInvalidSymbol = base83.ErrInvalidSymbol
	// ErrEncodingRange: a quantized value did not fit its digit width. The
	// quantization bounds make this unreachable; seeing it means a bug.
	ErrEncodingRange = base83.ErrRange
	// ErrInvalidDimensions: zero, negative or oversized image dimensions, or
	// a pixel buffer that does not match them.
	ErrInvalidDimensions = errors.New("blurhash: invalid dimensions")
)
