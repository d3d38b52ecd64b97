package batch

import (
	"fmt"
	"image"
	"image/color"
	"io"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"rig-reorient/internal/mathutil"
	"rig-reorient/internal/postprocess"
	"rig-reorient/internal/preview"
	"rig-reorient/internal/reorient"
	"rig-reorient/internal/skeleton"
	"rig-reorient/internal/texture"
)

// Config holds all shared resources for a preview run. Before and After are only read.
type Config struct {
	Before      *skeleton.Skeleton
	After       *skeleton.Skeleton
	OutputDir   string
	Backdrops   texture.Resolver
	View        mathutil.Mat3
	RenderSize  int
	Supersample int
	Workers     int
	FrameDelay  time.Duration
	Out         io.Writer // progress lines; nil discards
}

// Result holds the outcome of rendering one role.
type Result struct {
	Role    string
	Image   string
	Compare string
	Success bool
	Error   string
}

// Run renders a before/after preview for every oriented role using a worker pool.
// Skipped and failed roles are not rendered and get no result.
func Run(cfg Config, outcomes []reorient.Outcome) []Result {
	if cfg.Out == nil {
		cfg.Out = io.Discard
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.FrameDelay <= 0 {
		cfg.FrameDelay = 700 * time.Millisecond
	}

	var jobs []reorient.Outcome
	for _, o := range outcomes {
		if o.State == reorient.SmartOriented || o.State == reorient.DumbOriented {
			jobs = append(jobs, o)
		}
	}

	total := len(jobs)
	results := make([]Result, total)
	var processed atomic.Int64

	start := time.Now()

	// Progress reporter
	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(2 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				p := processed.Load()
				if p > 0 {
					elapsed := time.Since(start).Seconds()
					rate := float64(p) / elapsed
					fmt.Fprintf(cfg.Out, "  [%d/%d] %.1f previews/sec\n", p, total, rate)
				}
			}
		}
	}()

	// Worker pool
	jobChan := make(chan int, cfg.Workers*2)
	var wg sync.WaitGroup

	for w := 0; w < cfg.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobChan {
				results[idx] = processRole(cfg, jobs[idx])
				processed.Add(1)
			}
		}()
	}

	for i := range jobs {
		jobChan <- i
	}
	close(jobChan)

	wg.Wait()
	close(done)

	return results
}

// neighbourhood is the role's target joint with its parent and children in s.
func neighbourhood(s *skeleton.Skeleton, name string) []string {
	names := []string{name}
	if p, err := s.Parent(name); err == nil && p != "" {
		names = append(names, p)
	}
	if kids, err := s.Children(name); err == nil {
		names = append(names, kids...)
	}
	return names
}

// fileStem turns a role name into a flat file name inside the output directory.
func fileStem(role string) string {
	stem := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			return r
		}
		return '_'
	}, role)
	if stem = strings.TrimLeft(stem, "."); stem == "" {
		stem = "_"
	}
	return stem
}

func processRole(cfg Config, o reorient.Outcome) Result {
	res := Result{Role: o.Role}
	if !cfg.Before.Has(o.Target) || !cfg.After.Has(o.Target) {
		res.Error = fmt.Sprintf("joint %s not in skeleton", o.Target)
		return res
	}

	opts := preview.Options{
		Size:        cfg.RenderSize,
		Supersample: cfg.Supersample,
		Highlight:   []string{o.Target},
		Labels:      true,
	}
	if cfg.Backdrops != nil {
		opts.Background = cfg.Backdrops.Resolve(o.Role)
	}

	pts := append(preview.Points(cfg.Before, neighbourhood(cfg.Before, o.Target)...),
		preview.Points(cfg.After, neighbourhood(cfg.After, o.Target)...)...)
	cam := preview.Frame(pts, cfg.View, opts)

	before := preview.Render(cfg.Before, cam, opts)
	after := preview.Render(cfg.After, cam, opts)
	preview.Label(before, 4, 14, "before", color.White)
	preview.Label(after, 4, 14, "after "+o.State.String(), color.White)

	stem := fileStem(o.Role)
	res.Image = filepath.Join(cfg.OutputDir, stem+".webp")
	if err := preview.WriteAnimation(res.Image, []image.Image{before, after}, cfg.FrameDelay); err != nil {
		res.Error = err.Error()
		return res
	}
	res.Compare = filepath.Join(cfg.OutputDir, stem+"_compare.webp")
	if err := preview.WriteWebP(res.Compare, postprocess.SideBySide(preview.Backdrop, 4, before, after)); err != nil {
		res.Error = err.Error()
		return res
	}
	res.Success = true
	return res
}
