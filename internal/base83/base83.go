// Package base83 implements the fixed-width base-83 integer encoding used by
// the BlurHash wire format.
package base83

import (
	"errors"
	"fmt"
)

// Alphabet is the 83-symbol digit set. Its order is part of the wire format.
const Alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz#$%*+,-.:;=?@[]^_{|}~"

var (
	// ErrInvalidSymbol is returned by Decode for a byte outside Alphabet.
	ErrInvalidSymbol = errors.New("base83: invalid symbol")
	// ErrRange is returned by Encode when a value does not fit in the
	// requested number of digits.
	ErrRange = errors.New("base83: value out of range")
)

// symbolValue maps a byte to its digit value, or -1.
var symbolValue [256]int8

func init() {
	for i := range symbolValue {
		symbolValue[i] = -1
	}
	for i := 0; i < len(Alphabet); i++ {
		symbolValue[Alphabet[i]] = int8(i)
	}
}

// Encode renders value as exactly length base-83 digits, most significant
// first.
func Encode(value, length int) (string, error) {
	dst, err := Append(make([]byte, 0, length), value, length)
	if err != nil {
		return "", err
	}
	return string(dst), nil
}

// Append is Encode writing into dst.
func Append(dst []byte, value, length int) ([]byte, error) {
	if length <= 0 || value < 0 {
		return dst, fmt.Errorf("%w: %d in %d digits", ErrRange, value, length)
	}
	n := len(dst)
	dst = append(dst, make([]byte, length)...)
	v := value
	for i := n + length - 1; i >= n; i-- {
		dst[i] = Alphabet[v%83]
		v /= 83
	}
	if v != 0 {
		return dst[:n], fmt.Errorf("%w: %d does not fit in %d digits", ErrRange, value, length)
	}
	return dst, nil
}

// Decode parses s as a big-endian base-83 numeral.
func Decode(s string) (int, error) {
	value := 0
	for i := 0; i < len(s); i++ {
		d := symbolValue[s[i]]
		if d < 0 {
			return 0, fmt.Errorf("%w %q at offset %d", ErrInvalidSymbol, s[i], i)
		}
		value = value*83 + int(d)
	}
	return value, nil
}

// Valid reports whether every byte of s is in Alphabet.
func Valid(s string) bool {
	for i := 0; i < len(s); i++ {
		if symbolValue[s[i]] < 0 {
			return false
		}
	}
	return true
}
