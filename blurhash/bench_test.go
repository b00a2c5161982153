package blurhash

import (
	"runtime"
	"sync"
	"testing"
)

// ─── benchmarks: input-size scaling ──────────────────────────

func benchEncode(b *testing.B, w, h, cx, cy int, c Codec) {
	img := noise(w, h)
	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if _, err := c.Encode(img, cx, cy); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkEncode_32_4x3(b *testing.B)    { benchEncode(b, 32, 32, 4, 3, Codec{}) }
func BenchmarkEncode_128_4x3(b *testing.B)   { benchEncode(b, 128, 128, 4, 3, Codec{}) }
func BenchmarkEncode_512_4x3(b *testing.B)   { benchEncode(b, 512, 512, 4, 3, Codec{}) }
func BenchmarkEncode_512_9x9(b *testing.B)   { benchEncode(b, 512, 512, 9, 9, Codec{}) }
func BenchmarkEncode_1920x1080(b *testing.B) { benchEncode(b, 1920, 1080, 4, 3, Codec{}) }

func BenchmarkEncode_512_4x3_Serial(b *testing.B) {
	benchEncode(b, 512, 512, 4, 3, Codec{Workers: 1})
}

// ─── benchmarks: decode ──────────────────────────────────────

func BenchmarkDecode_32(b *testing.B) {
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_, _ = Decode(referenceHash, 32, 32, 1)
	}
}

func BenchmarkDecode_512(b *testing.B) {
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_, _ = Decode(referenceHash, 512, 512, 1)
	}
}

func BenchmarkDecode_512_Serial(b *testing.B) {
	c := Codec{Workers: 1}
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_, _ = c.Decode(referenceHash, 512, 512, 1)
	}
}

func BenchmarkFromImage_YCbCr_1920(b *testing.B) {
	img := makeYCbCr(1920, 1080)
	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_ = FromImage(img)
	}
}

// ─── determinism: concurrent ─────────────────────────────────

func TestDeterminism_Concurrent(t *testing.T) {
	img := noise(256, 192)
	reference, err := Encode(img, 5, 4)
	if err != nil {
		t.Fatal(err)
	}

	const workers = 32
	const iterations = 20
	var wg sync.WaitGroup
	errCh := make(chan string, workers*iterations)

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < iterations; i++ {
				if got, _ := Encode(img, 5, 4); got != reference {
					errCh <- got
				}
			}
		}()
	}
	wg.Wait()
	close(errCh)

	mismatches := 0
	for range errCh {
		mismatches++
	}
	if mismatches > 0 {
		t.Fatalf("determinism failed: %d/%d mismatches across %d workers",
			mismatches, workers*iterations, workers)
	}
	t.Logf("OK: %d workers * %d iterations = %d hashes, all identical (%s)",
		workers, iterations, workers*iterations, reference)
}

func TestDeterminism_OrderIndependent(t *testing.T) {
	images := make([]*Image, 12)
	for i := range images {
		images[i] = noise(40+i*17, 30+i*11)
	}

	pass1 := make([]string, len(images))
	for i, img := range images {
		pass1[i], _ = Encode(img, 4, 3)
	}

	pass2 := make([]string, len(images))
	for i := len(images) - 1; i >= 0; i-- {
		pass2[i], _ = Encode(images[i], 4, 3)
	}

	pass3 := make([]string, len(images))
	var wg sync.WaitGroup
	for i, img := range images {
		wg.Add(1)
		go func(idx int, im *Image) {
			defer wg.Done()
			pass3[idx], _ = Codec{Workers: 3}.Encode(im, 4, 3)
		}(i, img)
	}
	wg.Wait()

	for i := range images {
		if pass1[i] != pass2[i] {
			t.Errorf("image %d: pass1 != pass2 (order-dependent)", i)
		}
		if pass1[i] != pass3[i] {
			t.Errorf("image %d: pass1 != pass3 (concurrency-dependent)", i)
		}
	}
}

// ─── correctness: no panic on odd/edge sizes ─────────────────

func TestNoPanic_OddSizes(t *testing.T) {
	sizes := [][2]int{
		{1, 1}, {1, 2}, {2, 1}, {3, 3},
		{7, 13}, {13, 7}, {99, 1}, {1, 99},
		{101, 101}, {256, 1}, {1, 256}, {3, 4000}, {4000, 3},
	}
	for _, s := range sizes {
		w, h := s[0], s[1]
		func() {
			defer func() {
				if r := recover(); r != nil {
					t.Errorf("panic at %dx%d: %v", w, h, r)
				}
			}()
			hash, err := Encode(gradient(w, h), 9, 9)
			if err != nil {
				t.Fatalf("%dx%d: %v", w, h, err)
			}
			if _, err := Decode(hash, h, w, 1.5); err != nil {
				t.Fatalf("%dx%d decode: %v", w, h, err)
			}
		}()
	}
}

// ─── memory: no leak ─────────────────────────────────────────

func TestMemoryStability_Batch(t *testing.T) {
	img := noise(256, 256)

	for i := 0; i < 10; i++ {
		_, _ = Encode(img, 4, 3)
	}

	runtime.GC()
	var before runtime.MemStats
	runtime.ReadMemStats(&before)

	const n = 200
	for i := 0; i < n; i++ {
		_, _ = Encode(img, 4, 3)
	}

	runtime.GC()
	var after runtime.MemStats
	runtime.ReadMemStats(&after)

	heapGrowth := int64(after.HeapAlloc) - int64(before.HeapAlloc)
	totalAlloc := after.TotalAlloc - before.TotalAlloc
	t.Logf("batch %d images:", n)
	t.Logf("  heap growth after GC: %d KB", heapGrowth/1024)
	t.Logf("  total allocated:      %d KB  (%.1f KB/image)", totalAlloc/1024, float64(totalAlloc)/1024/n)

	if heapGrowth > 5*1024*1024 {
		t.Errorf("heap grew by %d MB, possible leak", heapGrowth/(1024*1024))
	}
}
