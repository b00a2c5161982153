package dct

import (
	"math"
	"testing"
)

// grid is a Source backed by a flat interleaved buffer.
type grid struct {
	w, h int
	pix  []float64
}

func (g *grid) Size() (int, int) { return g.w, g.h }

func (g *grid) LinearRow(y int, dst []float64) {
	copy(dst, g.pix[3*y*g.w:3*(y+1)*g.w])
}

func makeGrid(w, h int) *grid {
	g := &grid{w: w, h: h, pix: make([]float64, 3*w*h)}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			o := 3 * (y*w + x)
			g.pix[o] = float64((x*251)%256) / 255
			g.pix[o+1] = float64((y*179)%256) / 255
			g.pix[o+2] = float64(((x+y)*113)%256) / 255
		}
	}
	return g
}

// naiveForward is the textbook double summation, one component at a time.
func naiveForward(g *grid, nx, ny int) []float64 {
	out := make([]float64, 0, 3*nx*ny)
	wf, hf := float64(g.w), float64(g.h)
	for j := 0; j < ny; j++ {
		for i := 0; i < nx; i++ {
			norm := 2.0
			if i == 0 && j == 0 {
				norm = 1
			}
			var r, gg, b float64
			for y := 0; y < g.h; y++ {
				for x := 0; x < g.w; x++ {
					basis := norm * math.Cos(math.Pi*float64(i)*float64(x)/wf) *
						math.Cos(math.Pi*float64(j)*float64(y)/hf)
					o := 3 * (y*g.w + x)
					r += basis * g.pix[o]
					gg += basis * g.pix[o+1]
					b += basis * g.pix[o+2]
				}
			}
			out = append(out, r/(wf*hf), gg/(wf*hf), b/(wf*hf))
		}
	}
	return out
}

func TestForward_MatchesNaive(t *testing.T) {
	g := makeGrid(37, 23)
	for _, nc := range [][2]int{{1, 1}, {4, 3}, {9, 9}, {2, 7}} {
		got := Forward(g, nc[0], nc[1], Options{Workers: 1})
		want := naiveForward(g, nc[0], nc[1])
		for k := range want {
			if got.RGB[k] != want[k] {
				t.Fatalf("%dx%d: coefficient %d = %v, want %v", nc[0], nc[1], k, got.RGB[k], want[k])
			}
		}
	}
}

func TestForward_WorkerIndependent(t *testing.T) {
	g := makeGrid(160, 120)
	ref := Forward(g, 9, 9, Options{Workers: 1})
	for _, workers := range []int{0, 2, 3, 8, 81, 200} {
		got := Forward(g, 9, 9, Options{Workers: workers})
		for k := range ref.RGB {
			if got.RGB[k] != ref.RGB[k] {
				t.Fatalf("workers=%d: coefficient %d = %v, want %v", workers, k, got.RGB[k], ref.RGB[k])
			}
		}
	}
}

func TestForward_DCIsMean(t *testing.T) {
	g := makeGrid(16, 16)
	c := Forward(g, 3, 3, Options{})
	var sum [3]float64
	for i, v := range g.pix {
		sum[i%3] += v
	}
	r, gg, b := c.At(0)
	for ch, got := range []float64{r, gg, b} {
		want := sum[ch] / 256
		if math.Abs(got-want) > 1e-12 {
			t.Errorf("DC channel %d = %v, want %v", ch, got, want)
		}
	}
}

func TestForward_UniformFollowsBasisSums(t *testing.T) {
	// The basis is sampled at integer x, so Σcos(πix/W) is W for i=0, 1 for
	// odd i and 0 for even i>0. A flat image therefore keeps small odd terms.
	const w, h, v = 8, 5, 0.25
	g := &grid{w: w, h: h, pix: make([]float64, 3*w*h)}
	for i := range g.pix {
		g.pix[i] = v
	}
	axisSum := func(i, n int) float64 {
		switch {
		case i == 0:
			return float64(n)
		case i%2 == 1:
			return 1
		}
		return 0
	}
	c := Forward(g, 4, 3, Options{})
	for k := 0; k < c.Len(); k++ {
		i, j := k%4, k/4
		norm := 2.0
		if k == 0 {
			norm = 1
		}
		want := norm * v * axisSum(i, w) * axisSum(j, h) / (w * h)
		r, gg, b := c.At(k)
		for _, got := range []float64{r, gg, b} {
			if math.Abs(got-want) > 1e-12 {
				t.Fatalf("component (%d,%d) = %v, want %v", i, j, got, want)
			}
		}
	}
}

func TestMaxAC_NoComponents(t *testing.T) {
	c := NewComponents(1, 1)
	c.Set(0, 5, -7, 1)
	if m := c.MaxAC(); m != 0 {
		t.Errorf("MaxAC = %v, want 0", m)
	}
}

func TestInverse_RecoversSingleBasis(t *testing.T) {
	// A pure (1,0) cosine synthesised by Inverse comes back through Forward
	// with the same amplitude: the AC doubling cancels the W/2 energy of
	// cos² over the row.
	const w, h = 32, 16
	c := NewComponents(2, 1)
	c.Set(1, 0.1, -0.2, 0)

	g := &grid{w: w, h: h, pix: make([]float64, 3*w*h)}
	Inverse(c, w, h, Options{Workers: 1}, func(y int, row []float64) {
		copy(g.pix[3*y*w:], row)
	})

	back := Forward(g, 2, 1, Options{Workers: 1})
	for k := 3; k < 6; k++ {
		if math.Abs(back.RGB[k]-c.RGB[k]) > 1e-9 {
			t.Errorf("AC channel %d = %v, want %v", k-3, back.RGB[k], c.RGB[k])
		}
	}
	// The sampled basis is not exactly zero-mean: Σcos(πx/W) = 1.
	for k := 0; k < 3; k++ {
		if math.Abs(back.RGB[k]) > 0.2/w+1e-12 {
			t.Errorf("DC channel %d = %v, want |v| <= %v", k, back.RGB[k], 0.2/w)
		}
	}
}

func TestInverse_WorkerIndependent(t *testing.T) {
	c := Forward(makeGrid(40, 30), 5, 4, Options{})
	render := func(workers int) []float64 {
		out := make([]float64, 3*300*200)
		Inverse(c, 300, 200, Options{Workers: workers}, func(y int, row []float64) {
			copy(out[3*y*300:], row)
		})
		return out
	}
	ref := render(1)
	for _, workers := range []int{0, 4, 7, 500} {
		got := render(workers)
		for i := range ref {
			if got[i] != ref[i] {
				t.Fatalf("workers=%d: sample %d = %v, want %v", workers, i, got[i], ref[i])
			}
		}
	}
}

func TestInverse_EmitsEveryRowOnce(t *testing.T) {
	c := NewComponents(3, 3)
	seen := make([]int, 257)
	Inverse(c, 300, 257, Options{Workers: 5}, func(y int, _ []float64) {
		seen[y]++
	})
	for y, n := range seen {
		if n != 1 {
			t.Fatalf("row %d emitted %d times", y, n)
		}
	}
}

func BenchmarkForward_256_4x3(b *testing.B) {
	g := makeGrid(256, 256)
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_ = Forward(g, 4, 3, Options{})
	}
}

func BenchmarkInverse_256_4x3(b *testing.B) {
	c := Forward(makeGrid(64, 64), 4, 3, Options{})
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		Inverse(c, 256, 256, Options{}, func(int, []float64) {})
	}
}
