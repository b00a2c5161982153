package pipeline

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/AnyUserName/bhash/internal/manifest"
	"github.com/AnyUserName/bhash/internal/profile"
)

// PreviewDir is the output subdirectory for rendered placeholders.
const PreviewDir = "previews"

// Config holds all parameters for a build pipeline run.
type Config struct {
	InputDir  string
	OutputDir string
	Profile   profile.Profile
	Workers   int
	Verbose   bool
	Previews  bool // render a preview image per asset

	// Previous is the manifest of an earlier build. Assets whose content
	// hash and parameters are unchanged are copied instead of re-encoded.
	Previous *manifest.Manifest

	// Log receives progress and warnings. Defaults to os.Stderr.
	Log io.Writer
}

// Pipeline orchestrates placeholder generation.
type Pipeline struct {
	cfg Config
	mu  sync.Mutex // serializes writes to cfg.Log
}

// New creates a configured pipeline.
func New(cfg Config) *Pipeline {
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.NumCPU()
	}
	if cfg.Log == nil {
		cfg.Log = os.Stderr
	}
	return &Pipeline{cfg: cfg}
}

func (p *Pipeline) logf(format string, args ...any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.cfg.Log, "[bhash] "+format+"\n", args...)
}

func (p *Pipeline) verbosef(format string, args ...any) {
	if p.cfg.Verbose {
		p.logf(format, args...)
	}
}

// Run executes the full build pipeline and returns the manifest.
func (p *Pipeline) Run() (*manifest.Manifest, error) {
	if err := p.cfg.Profile.Validate(); err != nil {
		return nil, err
	}

	// Step 1: Scan for images.
	sources, err := ScanImages(p.cfg.InputDir, p.cfg.OutputDir, filepath.Join(p.cfg.OutputDir, PreviewDir))
	if err != nil {
		return nil, fmt.Errorf("scan: %w", err)
	}
	if len(sources) == 0 {
		return nil, fmt.Errorf("no images found in %s", p.cfg.InputDir)
	}
	p.verbosef("found %d images", len(sources))

	reuse := p.reusable()
	if reuse != nil {
		p.verbosef("incremental: %d assets in previous manifest", len(p.cfg.Previous.Assets))
	}

	// Step 2: Process images in parallel.
	results := make([]processResult, len(sources))
	var wg sync.WaitGroup
	sem := make(chan struct{}, p.cfg.Workers)

	for i, src := range sources {
		wg.Add(1)
		go func(idx int, s Source) {
			defer wg.Done()
			sem <- struct{}{}        // acquire
			defer func() { <-sem }() // release

			p.verbosef("processing: %s", s.Key)
			results[idx] = processImage(s, p.cfg, reuse)

			if r := results[idx]; r.err == nil {
				if r.reused {
					p.verbosef("reused: %s", s.Key)
				} else {
					p.verbosef("done: %s %s", s.Key, r.asset.BlurHash)
				}
			}
		}(i, src)
	}
	wg.Wait()

	// Step 3: Collect results into manifest.
	m := manifest.New(p.cfg.Profile.Name)

	var errs []error
	reused := 0
	for _, r := range results {
		if r.err != nil {
			errs = append(errs, r.err)
			continue
		}
		m.Assets[r.key] = r.asset
		if r.reused {
			reused++
		}
	}

	// Report errors but don't fail the entire build for partial failures.
	if len(errs) > 0 {
		for _, e := range errs {
			p.logf("error: %v", e)
		}
		if len(errs) == len(sources) {
			return nil, fmt.Errorf("all %d images failed to process", len(errs))
		}
		p.logf("warning: %d of %d images had errors", len(errs), len(sources))
	}

	m.BuildInfo = p.buildInfo()
	m.Stats.Reused = reused
	m.ComputeStats()
	return m, nil
}

func (p *Pipeline) buildInfo() *manifest.BuildInfo {
	pr := p.cfg.Profile
	return &manifest.BuildInfo{
		Workers:     p.cfg.Workers,
		ComponentsX: pr.ComponentsX,
		ComponentsY: pr.ComponentsY,
		MaxDim:      pr.MaxDim,
		Punch:       pr.Punch,
	}
}

// reusable returns the previous assets when they were built with the same
// encoding parameters, nil otherwise.
func (p *Pipeline) reusable() map[string]manifest.Asset {
	prev := p.cfg.Previous
	if prev == nil || prev.BuildInfo == nil {
		return nil
	}
	cur := p.buildInfo()
	b := prev.BuildInfo
	if b.ComponentsX != cur.ComponentsX || b.ComponentsY != cur.ComponentsY ||
		b.MaxDim != cur.MaxDim || b.Punch != cur.Punch {
		p.verbosef("incremental: parameters changed, rebuilding everything")
		return nil
	}
	return prev.Assets
}
