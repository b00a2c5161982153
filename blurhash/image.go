package blurhash

import (
	"fmt"
	"image"
	"image/color"

	"github.com/AnyUserName/bhash/internal/srgb"
)

// MaxDimension caps width and height on both encode and decode.
const MaxDimension = 10000

// Image is an sRGB raster: Pix holds R, G, B bytes per pixel, row-major,
// 3*Width bytes per row.
type Image struct {
	Width, Height int
	Pix           []uint8
}

// NewImage allocates a black w×h image.
func NewImage(w, h int) *Image {
	return &Image{Width: w, Height: h, Pix: make([]uint8, 3*w*h)}
}

// At returns the pixel at (x, y).
func (m *Image) At(x, y int) (r, g, b uint8) {
	o := 3 * (y*m.Width + x)
	return m.Pix[o], m.Pix[o+1], m.Pix[o+2]
}

// Set stores the pixel at (x, y).
func (m *Image) Set(x, y int, r, g, b uint8) {
	o := 3 * (y*m.Width + x)
	m.Pix[o], m.Pix[o+1], m.Pix[o+2] = r, g, b
}

// Size implements dct.Source.
func (m *Image) Size() (int, int) { return m.Width, m.Height }

// LinearRow implements dct.Source.
func (m *Image) LinearRow(y int, dst []float64) {
	row := m.Pix[3*y*m.Width : 3*(y+1)*m.Width]
	for i, v := range row {
		dst[i] = srgb.ToLinear(v)
	}
}

func (m *Image) validate() error {
	if err := checkDims(m.Width, m.Height); err != nil {
		return err
	}
	if len(m.Pix) != 3*m.Width*m.Height {
		return fmt.Errorf("%w: pixel buffer length %d does not match %dx%dx3",
			ErrInvalidDimensions, len(m.Pix), m.Width, m.Height)
	}
	return nil
}

// NRGBA converts m to an opaque *image.NRGBA for rendering or saving.
func (m *Image) NRGBA() *image.NRGBA {
	out := image.NewNRGBA(image.Rect(0, 0, m.Width, m.Height))
	for y := 0; y < m.Height; y++ {
		src := m.Pix[3*y*m.Width:]
		dst := out.Pix[y*out.Stride:]
		for x := 0; x < m.Width; x++ {
			dst[4*x] = src[3*x]
			dst[4*x+1] = src[3*x+1]
			dst[4*x+2] = src[3*x+2]
			dst[4*x+3] = 0xff
		}
	}
	return out
}

// LinearImage holds already-linear R, G, B triples, row-major.
type LinearImage struct {
	Width, Height int
	Pix           []float64
}

// NewLinearImage allocates a zeroed w×h linear image.
func NewLinearImage(w, h int) *LinearImage {
	return &LinearImage{Width: w, Height: h, Pix: make([]float64, 3*w*h)}
}

// At returns the linear triple at (x, y).
func (m *LinearImage) At(x, y int) (r, g, b float64) {
	o := 3 * (y*m.Width + x)
	return m.Pix[o], m.Pix[o+1], m.Pix[o+2]
}

// Set stores the linear triple at (x, y).
func (m *LinearImage) Set(x, y int, r, g, b float64) {
	o := 3 * (y*m.Width + x)
	m.Pix[o], m.Pix[o+1], m.Pix[o+2] = r, g, b
}

// Size implements dct.Source.
func (m *LinearImage) Size() (int, int) { return m.Width, m.Height }

// LinearRow implements dct.Source.
func (m *LinearImage) LinearRow(y int, dst []float64) {
	copy(dst, m.Pix[3*y*m.Width:3*(y+1)*m.Width])
}

func (m *LinearImage) validate() error {
	if err := checkDims(m.Width, m.Height); err != nil {
		return err
	}
	if len(m.Pix) != 3*m.Width*m.Height {
		return fmt.Errorf("%w: pixel buffer length %d does not match %dx%dx3",
			ErrInvalidDimensions, len(m.Pix), m.Width, m.Height)
	}
	return nil
}

func checkDims(w, h int) error {
	if w < 1 || h < 1 {
		return fmt.Errorf("%w: %dx%d (width and height must be > 0)", ErrInvalidDimensions, w, h)
	}
	if w > MaxDimension || h > MaxDimension {
		return fmt.Errorf("%w: %dx%d (must be <= %d)", ErrInvalidDimensions, w, h, MaxDimension)
	}
	return nil
}

// ─── image.Image extraction ──────────────────────────────────

// FromImage copies any image.Image into an sRGB Image. Alpha is dropped;
// premultiplied sources are un-premultiplied first. NRGBA, RGBA, YCbCr and
// Gray are read directly from their pixel buffers.
func FromImage(img image.Image) *Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	out := NewImage(w, h)
	di := 0

	switch src := img.(type) {
	case *image.NRGBA:
		for y := b.Min.Y; y < b.Max.Y; y++ {
			off := src.PixOffset(b.Min.X, y)
			for x := 0; x < w; x++ {
				out.Pix[di] = src.Pix[off]
				out.Pix[di+1] = src.Pix[off+1]
				out.Pix[di+2] = src.Pix[off+2]
				off += 4
				di += 3
			}
		}
	case *image.RGBA:
		for y := b.Min.Y; y < b.Max.Y; y++ {
			off := src.PixOffset(b.Min.X, y)
			for x := 0; x < w; x++ {
				out.Pix[di], out.Pix[di+1], out.Pix[di+2] = unpremul(
					src.Pix[off], src.Pix[off+1], src.Pix[off+2], src.Pix[off+3])
				off += 4
				di += 3
			}
		}
	case *image.YCbCr:
		for y := b.Min.Y; y < b.Max.Y; y++ {
			for x := b.Min.X; x < b.Max.X; x++ {
				yi := src.YOffset(x, y)
				ci := src.COffset(x, y)
				out.Pix[di], out.Pix[di+1], out.Pix[di+2] = color.YCbCrToRGB(src.Y[yi], src.Cb[ci], src.Cr[ci])
				di += 3
			}
		}
	case *image.Gray:
		for y := b.Min.Y; y < b.Max.Y; y++ {
			off := src.PixOffset(b.Min.X, y)
			for x := 0; x < w; x++ {
				v := src.Pix[off+x]
				out.Pix[di], out.Pix[di+1], out.Pix[di+2] = v, v, v
				di += 3
			}
		}
	default:
		for y := b.Min.Y; y < b.Max.Y; y++ {
			for x := b.Min.X; x < b.Max.X; x++ {
				c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
				out.Pix[di], out.Pix[di+1], out.Pix[di+2] = c.R, c.G, c.B
				di += 3
			}
		}
	}
	return out
}

// unpremul reverses alpha premultiplication of one 8-bit pixel.
func unpremul(r, g, b, a uint8) (uint8, uint8, uint8) {
	switch a {
	case 0xff:
		return r, g, b
	case 0:
		return 0, 0, 0
	}
	af := uint32(a)
	div := func(v uint8) uint8 { return uint8(min(uint32(v)*0xff/af, 0xff)) }
	return div(r), div(g), div(b)
}
