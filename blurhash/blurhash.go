// Package blurhash implements the BlurHash placeholder codec: an image is
// reduced to a handful of cosine components, quantized and written as a
// short base-83 string; decoding renders a blurred approximation at any size.
//
// Wire format (byte-exact with every other BlurHash implementation):
//
//	char 0      (cx-1) + (cy-1)*9
//	char 1      quantized AC magnitude, 0..82
//	chars 2-5   DC colour, 24-bit sRGB
//	then        2 chars per AC component, i fastest, j slowest
//
// Length is always 4 + 2*cx*cy.
//
// The codec is pure: no I/O, no global mutable state. Identical input gives
// identical output regardless of Codec.Workers.
package blurhash

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/AnyUserName/bhash/internal/base83"
	"github.com/AnyUserName/bhash/internal/dct"
	"github.com/AnyUserName/bhash/internal/srgb"
)

// MinHashLen is the length of a hash with a single (DC) component.
const MinHashLen = 6

// Codec carries tuning shared by encode and decode. The zero value is ready
// to use.
type Codec struct {
	// Workers caps goroutines used inside one call (0 = GOMAXPROCS,
	// 1 = single-threaded). Callers that already run many codec calls in
	// parallel should set 1.
	Workers int
}

var defaultCodec Codec

// EncodedLen returns the hash length for cx×cy components.
func EncodedLen(cx, cy int) int {
	return 4 + 2*cx*cy
}

// Encode hashes an sRGB image with cx×cy components.
func Encode(img *Image, cx, cy int) (string, error) {
	return defaultCodec.Encode(img, cx, cy)
}

// EncodeLinear hashes an image whose channels are already linear.
func EncodeLinear(img *LinearImage, cx, cy int) (string, error) {
	return defaultCodec.EncodeLinear(img, cx, cy)
}

// EncodeImage hashes any image.Image (alpha ignored).
func EncodeImage(img image.Image, cx, cy int) (string, error) {
	return defaultCodec.Encode(FromImage(img), cx, cy)
}

// Decode renders hash as a width×height sRGB image. punch scales the AC
// magnitude; 1 reproduces the encoded contrast, 0 yields the flat DC colour.
func Decode(hash string, width, height int, punch float64) (*Image, error) {
	return defaultCodec.Decode(hash, width, height, punch)
}

// DecodeLinear is Decode without the final linear→sRGB conversion.
func DecodeLinear(hash string, width, height int, punch float64) (*LinearImage, error) {
	return defaultCodec.DecodeLinear(hash, width, height, punch)
}

// Encode hashes an sRGB image with cx×cy components.
func (c Codec) Encode(img *Image, cx, cy int) (string, error) {
	if err := checkComponents(cx, cy); err != nil {
		return "", err
	}
	if err := img.validate(); err != nil {
		return "", err
	}
	return c.encode(img, cx, cy)
}

// EncodeLinear hashes an image whose channels are already linear.
func (c Codec) EncodeLinear(img *LinearImage, cx, cy int) (string, error) {
	if err := checkComponents(cx, cy); err != nil {
		return "", err
	}
	if err := img.validate(); err != nil {
		return "", err
	}
	return c.encode(img, cx, cy)
}

func checkComponents(cx, cy int) error {
	if cx < 1 || cx > dct.MaxComponents || cy < 1 || cy > dct.MaxComponents {
		return fmt.Errorf("%w: %dx%d (each must be 1..%d)",
			ErrInvalidComponentCount, cx, cy, dct.MaxComponents)
	}
	return nil
}

func (c Codec) encode(src dct.Source, cx, cy int) (string, error) {
	comps := dct.Forward(src, cx, cy, dct.Options{Workers: c.Workers})

	quantMax := int(math.Max(0, math.Min(82, math.Floor(comps.MaxAC()*166-0.5))))
	acNorm := float64(quantMax+1) / 166

	dst := make([]byte, 0, EncodedLen(cx, cy))
	var err error
	if dst, err = base83.Append(dst, (cx-1)+(cy-1)*9, 1); err != nil {
		return "", err
	}
	if dst, err = base83.Append(dst, quantMax, 1); err != nil {
		return "", err
	}
	if dst, err = base83.Append(dst, encodeDC(comps.At(0)), 4); err != nil {
		return "", err
	}
	for k := 1; k < comps.Len(); k++ {
		r, g, b := comps.At(k)
		if dst, err = base83.Append(dst, encodeAC(r, g, b, acNorm), 2); err != nil {
			return "", err
		}
	}
	return string(dst), nil
}

func encodeDC(r, g, b float64) int {
	return int(srgb.FromLinear(r))<<16 | int(srgb.FromLinear(g))<<8 | int(srgb.FromLinear(b))
}

func encodeAC(r, g, b, norm float64) int {
	return quantAC(r/norm)*19*19 + quantAC(g/norm)*19 + quantAC(b/norm)
}

// quantAC maps a normalised AC channel to a level in [0, 18].
func quantAC(v float64) int {
	return int(math.Max(0, math.Min(18, math.Floor(srgb.SignPow(v, 0.5)*9+9.5))))
}

// ─── decode ──────────────────────────────────────────────────

// Decode renders hash as a width×height sRGB image.
func (c Codec) Decode(hash string, width, height int, punch float64) (*Image, error) {
	comps, err := c.components(hash, width, height, punch)
	if err != nil {
		return nil, err
	}
	out := NewImage(width, height)
	dct.Inverse(comps, width, height, dct.Options{Workers: c.Workers}, func(y int, row []float64) {
		dst := out.Pix[3*y*width : 3*(y+1)*width]
		for i, v := range row {
			dst[i] = srgb.FromLinear(v)
		}
	})
	return out, nil
}

// DecodeLinear renders hash without the final linear→sRGB conversion.
func (c Codec) DecodeLinear(hash string, width, height int, punch float64) (*LinearImage, error) {
	comps, err := c.components(hash, width, height, punch)
	if err != nil {
		return nil, err
	}
	out := NewLinearImage(width, height)
	dct.Inverse(comps, width, height, dct.Options{Workers: c.Workers}, func(y int, row []float64) {
		copy(out.Pix[3*y*width:], row)
	})
	return out, nil
}

// components parses and de-quantizes hash into a component grid.
func (c Codec) components(hash string, width, height int, punch float64) (dct.Components, error) {
	if err := checkDims(width, height); err != nil {
		return dct.Components{}, err
	}
	cx, cy, err := Components(hash)
	if err != nil {
		return dct.Components{}, err
	}
	if want := EncodedLen(cx, cy); len(hash) != want {
		return dct.Components{}, fmt.Errorf("%w: %d components need %d characters, got %d",
			ErrLengthMismatch, cx*cy, want, len(hash))
	}

	quantMax, err := base83.Decode(hash[1:2])
	if err != nil {
		return dct.Components{}, err
	}
	realMax := float64(quantMax+1) / 166 * punch

	comps := dct.NewComponents(cx, cy)
	dc, err := base83.Decode(hash[2:6])
	if err != nil {
		return dct.Components{}, err
	}
	comps.Set(0, srgb.ToLinear(uint8(dc>>16)), srgb.ToLinear(uint8(dc>>8)), srgb.ToLinear(uint8(dc)))

	for k := 1; k < comps.Len(); k++ {
		ac, err := base83.Decode(hash[4+2*k : 6+2*k])
		if err != nil {
			return dct.Components{}, err
		}
		comps.Set(k,
			decodeAC(ac/(19*19), realMax),
			decodeAC((ac/19)%19, realMax),
			decodeAC(ac%19, realMax))
	}
	return comps, nil
}

func decodeAC(level int, realMax float64) float64 {
	return srgb.SignPow((float64(level)-9)/9, 2) * realMax
}

// Components returns the component counts encoded in hash. Only the first
// symbol is read; the full length is not checked.
func Components(hash string) (cx, cy int, err error) {
	if len(hash) < MinHashLen {
		return 0, 0, fmt.Errorf("%w: need at least %d characters, got %d",
			ErrMalformedHash, MinHashLen, len(hash))
	}
	size, err := base83.Decode(hash[:1])
	if err != nil {
		return 0, 0, err
	}
	return size%9 + 1, size/9 + 1, nil
}

// AverageColor returns the DC colour of hash, which is the mean colour of
// the encoded image.
func AverageColor(hash string) (color.RGBA, error) {
	if _, _, err := Components(hash); err != nil {
		return color.RGBA{}, err
	}
	dc, err := base83.Decode(hash[2:6])
	if err != nil {
		return color.RGBA{}, err
	}
	return color.RGBA{R: uint8(dc >> 16), G: uint8(dc >> 8), B: uint8(dc), A: 0xff}, nil
}
