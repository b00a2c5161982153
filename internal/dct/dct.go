// Package dct implements the restricted 2D cosine transform behind BlurHash.
//
// Forward evaluates the basis directly by double summation over every pixel.
// Inverse evaluates the same basis (without the AC doubling) at each output
// pixel.
//
// Design:
//   - Cosine tables per axis, built with exactly the expressions of the
//     published algorithm so results are bit-identical to a naive evaluation
//   - sync.Pool for the tables → steady-state allocations stay flat
//   - Optional parallelism across components (forward) or rows (inverse).
//     Each component/pixel is summed in a fixed order by one goroutine, so
//     the output never depends on the worker count.
package dct

import (
	"math"
	"runtime"
	"sync"
)

// MaxComponents is the largest component count on either axis.
const MaxComponents = 9

// inlineWork is the W·H·cx·cy product below which no goroutines are started.
const inlineWork = 1 << 16

// Source is a read-only image in linear light.
type Source interface {
	// Size returns the image width and height in pixels.
	Size() (width, height int)
	// LinearRow writes row y as interleaved linear R,G,B into dst, which has
	// length 3*width.
	LinearRow(y int, dst []float64)
}

// Components is an X×Y grid of linear RGB coefficients. Component (i, j)
// occupies RGB[3*(i+j*X) : 3*(i+j*X)+3]; component 0 is DC.
type Components struct {
	X, Y int
	RGB  []float64
}

// NewComponents allocates a zeroed x×y grid.
func NewComponents(x, y int) Components {
	return Components{X: x, Y: y, RGB: make([]float64, 3*x*y)}
}

// Len returns the number of components.
func (c Components) Len() int { return c.X * c.Y }

// At returns component k (k = i + j*X).
func (c Components) At(k int) (r, g, b float64) {
	return c.RGB[3*k], c.RGB[3*k+1], c.RGB[3*k+2]
}

// Set stores component k.
func (c Components) Set(k int, r, g, b float64) {
	c.RGB[3*k], c.RGB[3*k+1], c.RGB[3*k+2] = r, g, b
}

// MaxAC returns the largest absolute channel value over all AC components,
// or 0 when there are none.
func (c Components) MaxAC() float64 {
	var m float64
	for _, v := range c.RGB[3:] {
		m = math.Max(m, math.Abs(v))
	}
	return m
}

// Options tunes intra-call parallelism.
type Options struct {
	// Workers caps goroutines per call. 0 means GOMAXPROCS; 1 forces
	// single-threaded evaluation.
	Workers int
}

func (o Options) workers(work, units int) int {
	n := o.Workers
	if n <= 0 {
		n = runtime.GOMAXPROCS(0)
	}
	if work < inlineWork {
		n = 1
	}
	if n > units {
		n = units
	}
	if n < 1 {
		n = 1
	}
	return n
}

// ─── cosine tables + pool ────────────────────────────────────

type workBuf struct {
	cosX []float64
	cosY []float64
}

var wbPool = sync.Pool{New: func() any { return new(workBuf) }}

func grow(s []float64, n int) []float64 {
	if cap(s) < n {
		return make([]float64, n)
	}
	return s[:n]
}

// forwardTables fills cosX[i*w+x] = cos(π·i·x/w) and cosY[j*h+y] = cos(π·j·y/h).
func (wb *workBuf) forwardTables(w, h, nx, ny int) {
	wb.cosX = grow(wb.cosX, nx*w)
	wf := float64(w)
	for i := 0; i < nx; i++ {
		for x := 0; x < w; x++ {
			wb.cosX[i*w+x] = math.Cos(math.Pi * float64(i) * float64(x) / wf)
		}
	}
	wb.cosY = grow(wb.cosY, ny*h)
	hf := float64(h)
	for j := 0; j < ny; j++ {
		for y := 0; y < h; y++ {
			wb.cosY[j*h+y] = math.Cos(math.Pi * float64(j) * float64(y) / hf)
		}
	}
}

// inverseTables fills cosX[i*w+x] = cos(π·x·i/w) and cosY[j*h+y] = cos(π·y·j/h).
// The operand order differs from forwardTables and can change the last bit.
func (wb *workBuf) inverseTables(w, h, nx, ny int) {
	wb.cosX = grow(wb.cosX, nx*w)
	wf := float64(w)
	for i := 0; i < nx; i++ {
		for x := 0; x < w; x++ {
			wb.cosX[i*w+x] = math.Cos(math.Pi * float64(x) * float64(i) / wf)
		}
	}
	wb.cosY = grow(wb.cosY, ny*h)
	hf := float64(h)
	for j := 0; j < ny; j++ {
		for y := 0; y < h; y++ {
			wb.cosY[j*h+y] = math.Cos(math.Pi * float64(y) * float64(j) / hf)
		}
	}
}

// ─── forward ─────────────────────────────────────────────────

// Forward decomposes src into nx×ny components. The DC term is the mean
// colour; AC terms carry a normalisation factor of 2.
func Forward(src Source, nx, ny int, opts Options) Components {
	w, h := src.Size()
	out := NewComponents(nx, ny)
	n := nx * ny

	wb := wbPool.Get().(*workBuf)
	defer wbPool.Put(wb)
	wb.forwardTables(w, h, nx, ny)

	workers := opts.workers(w*h*n, n)
	if workers == 1 {
		forwardRange(src, w, h, nx, wb, out, 0, 1)
	} else {
		var wg sync.WaitGroup
		for k := 0; k < workers; k++ {
			wg.Add(1)
			go func(first int) {
				defer wg.Done()
				forwardRange(src, w, h, nx, wb, out, first, workers)
			}(k)
		}
		wg.Wait()
	}

	scale := float64(w * h)
	for i := range out.RGB {
		out.RGB[i] /= scale
	}
	return out
}

// forwardRange accumulates components first, first+step, ... in one pass
// over src. Each component sums its terms in row-major pixel order.
func forwardRange(src Source, w, h, nx int, wb *workBuf, out Components, first, step int) {
	var ks []int
	for k := first; k < out.Len(); k += step {
		ks = append(ks, k)
	}
	if len(ks) == 0 {
		return
	}
	sums := make([]float64, 3*len(ks))
	row := make([]float64, 3*w)

	for y := 0; y < h; y++ {
		src.LinearRow(y, row)
		for s, k := range ks {
			i, j := k%nx, k/nx
			norm := 2.0
			if k == 0 {
				norm = 1
			}
			cx := wb.cosX[i*w : i*w+w]
			cy := wb.cosY[j*h+y]
			r, g, b := sums[3*s], sums[3*s+1], sums[3*s+2]
			for x := 0; x < w; x++ {
				basis := norm * cx[x] * cy
				r += basis * row[3*x]
				g += basis * row[3*x+1]
				b += basis * row[3*x+2]
			}
			sums[3*s], sums[3*s+1], sums[3*s+2] = r, g, b
		}
	}

	for s, k := range ks {
		out.Set(k, sums[3*s], sums[3*s+1], sums[3*s+2])
	}
}

// ─── inverse ─────────────────────────────────────────────────

// RowFunc receives one reconstructed row as interleaved linear R,G,B. With
// more than one worker it is called concurrently for distinct rows; row is
// only valid for the duration of the call.
type RowFunc func(y int, row []float64)

// Inverse evaluates c at every pixel of a width×height grid and hands each
// row to emit.
func Inverse(c Components, width, height int, opts Options, emit RowFunc) {
	wb := wbPool.Get().(*workBuf)
	defer wbPool.Put(wb)
	wb.inverseTables(width, height, c.X, c.Y)

	workers := opts.workers(width*height*c.Len(), height)
	if workers == 1 {
		inverseRows(c, width, height, wb, 0, height, emit)
		return
	}

	chunk := (height + workers - 1) / workers
	var wg sync.WaitGroup
	for y0 := 0; y0 < height; y0 += chunk {
		y1 := min(y0+chunk, height)
		wg.Add(1)
		go func(y0, y1 int) {
			defer wg.Done()
			inverseRows(c, width, height, wb, y0, y1, emit)
		}(y0, y1)
	}
	wg.Wait()
}

func inverseRows(c Components, width, height int, wb *workBuf, y0, y1 int, emit RowFunc) {
	row := make([]float64, 3*width)
	for y := y0; y < y1; y++ {
		for x := 0; x < width; x++ {
			var r, g, b float64
			for j := 0; j < c.Y; j++ {
				cy := wb.cosY[j*height+y]
				for i := 0; i < c.X; i++ {
					basis := wb.cosX[i*width+x] * cy
					k := 3 * (i + j*c.X)
					r += c.RGB[k] * basis
					g += c.RGB[k+1] * basis
					b += c.RGB[k+2] * basis
				}
			}
			row[3*x], row[3*x+1], row[3*x+2] = r, g, b
		}
		emit(y, row)
	}
}
