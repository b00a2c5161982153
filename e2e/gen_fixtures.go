//go:build ignore

// gen_fixtures creates small test images for the build smoke test.
// Usage: go run gen_fixtures.go <output_dir>
package main

import (
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: gen_fixtures <output_dir>")
		os.Exit(1)
	}
	dir := os.Args[1]

	fixtures := map[string]*image.NRGBA{
		"banner.jpg":       gradient(400, 225),
		"cards/card-1.png": solidWithBorder(200, 150, 60),
		"cards/card-2.bmp": solidWithBorder(200, 150, 120),
		"cards/card-3.gif": solidWithBorder(200, 150, 170),
		"scan.tiff":        gradient(90, 160),
		"logo.png":         alphaGradient(100, 100),
	}
	for name, img := range fixtures {
		path := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			fail(err)
		}
		if err := imaging.Save(img, path, imaging.JPEGQuality(85)); err != nil {
			fail(err)
		}
	}

	fmt.Fprintf(os.Stderr, "[gen_fixtures] created %d fixtures in %s\n", len(fixtures), dir)
}

func fail(err error) {
	fmt.Fprintf(os.Stderr, "[gen_fixtures] %v\n", err)
	os.Exit(1)
}

func gradient(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{
				R: uint8(x * 255 / w),
				G: uint8(y * 255 / h),
				B: 128,
				A: 255,
			})
		}
	}
	return img
}

func solidWithBorder(w, h int, base uint8) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	inner := color.NRGBA{R: base, G: base / 2, B: 255 - base, A: 255}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := inner
			if x < 4 || x >= w-4 || y < 4 || y >= h-4 {
				c = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
			}
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func alphaGradient(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{
				R: 220, G: 60, B: 30,
				A: uint8(x * 255 / w),
			})
		}
	}
	return img
}
