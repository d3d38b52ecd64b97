package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"rig-reorient/internal/batch"
	"rig-reorient/internal/config"
	"rig-reorient/internal/datablock"
	"rig-reorient/internal/journal"
	"rig-reorient/internal/naming"
	"rig-reorient/internal/orient"
	"rig-reorient/internal/reorient"
	"rig-reorient/internal/skeleton"
	"rig-reorient/internal/texture"
	"rig-reorient/internal/viewmatrix"
)

func main() {
	os.Exit(run())
}

// run returns the exit code so deferred closes happen before the process exits.
func run() int {
	// CLI flags
	configFile := flag.String("config", "", "Path to config file (.json, .yaml, .toml)")
	baseDir := flag.String("base", "", "Base directory for relative paths (default: config dir or cwd)")
	reference := flag.String("reference", "", "Reference datablock (.json or .json.zst)")
	target := flag.String("target", "", "Datablock to re-orient (.json or .json.zst)")
	mapping := flag.String("mapping", "", "Naming standard (.yaml)")
	output := flag.String("output", "", "Re-oriented datablock (default: out/reoriented.json)")
	roles := flag.String("roles", "", "Comma-separated roles to process (default: all)")
	retry := flag.Bool("retry", false, "Re-run only the roles that failed in the last journaled run")
	snap := flag.Bool("snap", false, "Move each joint onto its reference position first")
	moveChildren := flag.Bool("move-children", false, "Let children follow re-oriented joints")
	excludeMirror := flag.Bool("exclude-mirror", false, "Exclude both signs of the down axis when matching the pole")
	legacyZ := flag.Bool("legacy-z", false, "Feed old y into a row asked to take old z")
	previewOn := flag.Bool("preview", false, "Render before/after previews")
	previewDir := flag.String("preview-dir", "", "Preview output directory (default: out/preview)")
	view := flag.String("view", "", "Preview view: "+strings.Join(viewmatrix.ViewNames(), ", "))
	workers := flag.Int("workers", 0, "Number of preview workers (default: NumCPU)")

	flag.Parse()

	// Load config
	var cfg config.Config
	if *configFile != "" {
		var err error
		cfg, err = config.Load(*configFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			return 1
		}
	}

	// CLI flags override config file
	cfg.Resolve(config.Flags{
		BaseDir:       *baseDir,
		Reference:     *reference,
		Target:        *target,
		Mapping:       *mapping,
		Output:        *output,
		PreviewDir:    *previewDir,
		View:          *view,
		Workers:       *workers,
		SnapPositions: *snap,
		MoveChildren:  *moveChildren,
		ExcludeMirror: *excludeMirror,
		LegacyZSource: *legacyZ,
		Preview:       *previewOn,
	})
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	logger := log.New(os.Stdout, "[reorient] ", log.LstdFlags|log.Lmicroseconds)
	ctx := context.Background()

	// Journal
	jr, err := journal.Open(cfg.Journal)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening journal: %v\n", err)
		return 1
	}
	defer jr.Close()

	var only []string
	if *roles != "" {
		for _, r := range strings.Split(*roles, ",") {
			if r = strings.TrimSpace(r); r != "" {
				only = append(only, r)
			}
		}
	}
	targetPath := cfg.Target
	if *retry {
		last, err := jr.LatestRun(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: -retry: %v\n", err)
			return 1
		}
		failed, err := jr.FailedRoles(ctx, last.ID)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading run %d: %v\n", last.ID, err)
			return 1
		}
		if len(failed) == 0 {
			fmt.Printf("Run %d has no failed roles.\n", last.ID)
			return 0
		}
		only = failed
		// continue from the previous result so earlier successes are kept
		if _, err := os.Stat(last.Output); err == nil {
			targetPath = last.Output
		}
		fmt.Printf("Retrying %d roles from run %d\n", len(failed), last.ID)
	}

	// Load skeletons
	refDB, err := datablock.Load(cfg.Reference)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading reference: %v\n", err)
		return 1
	}
	tgtDB, err := datablock.Load(targetPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading target: %v\n", err)
		return 1
	}
	for _, d := range append(refDB.Duplicates, tgtDB.Duplicates...) {
		logger.Printf("warning: %s names more than one node, the first is used", d)
	}

	s, err := skeleton.FromDatablock(refDB)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error building reference skeleton: %v\n", err)
		return 1
	}
	var targetNames []string
	for _, r := range tgtDB.Joints {
		n := r.ShortName()
		if s.Has(n) {
			logger.Printf("warning: %s is in both datablocks, the reference node is used", n)
			continue
		}
		targetNames = append(targetNames, n)
	}
	if err := s.AddDatablock(tgtDB); err != nil {
		fmt.Fprintf(os.Stderr, "Error building target skeleton: %v\n", err)
		return 1
	}

	// Mapping
	m, err := naming.Load(cfg.Mapping)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading naming standard: %v\n", err)
		return 1
	}
	pairs := m.Pairs()
	if len(only) > 0 {
		pairs = reorient.FilterRoles(pairs, only)
	}
	if len(pairs) == 0 {
		fmt.Println("No roles to re-orient.")
		return 0
	}

	var before *skeleton.Skeleton
	if cfg.Preview {
		if before, err = s.Clone(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
	}

	fmt.Printf("Joint re-orientation (%s ← %s)\n", m.Reference.Other(), m.Reference)
	fmt.Printf("Nodes: %d, Roles: %d\n", s.Len(), len(pairs))
	fmt.Printf("Output: %s\n", cfg.Output)
	fmt.Println("------------------------------------------------------------")

	start := time.Now()
	rep := reorient.Run(s, pairs, reorient.Options{
		Logger:        logger,
		Progress:      reorient.NewConsoleProgress(os.Stdout),
		SnapPositions: cfg.SnapPositions,
		MoveChildren:  cfg.MoveChildren,
		Match:         orient.MatchOptions{ExcludeMirror: cfg.ExcludeMirror},
		LegacyZSource: cfg.LegacyZSource,
	})
	fmt.Println("------------------------------------------------------------")
	fmt.Printf("Done in %.1fs\n", time.Since(start).Seconds())
	fmt.Println(rep.Summary())

	// Outputs
	if err := datablock.Save(cfg.Output, s.ToDatablock(targetNames...)); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing datablock: %v\n", err)
		return 1
	}
	if err := rep.WriteFile(cfg.Report); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: report write failed: %v\n", err)
	} else {
		fmt.Printf("Report: %s\n", cfg.Report)
	}
	id, err := jr.Record(ctx, journal.Meta{Datablock: targetPath, Mapping: cfg.Mapping, Output: cfg.Output}, rep)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: journal write failed: %v\n", err)
	} else {
		fmt.Printf("Journal: run %d\n", id)
	}

	if cfg.Preview {
		renderPreviews(cfg, before, s, rep)
	}

	failed := rep.Failed()
	if len(failed) > 0 {
		fmt.Printf("\nFailed (%d):\n", len(failed))
		limit := 20
		if len(failed) < limit {
			limit = len(failed)
		}
		for _, o := range failed[:limit] {
			fmt.Printf("  %s (%s ← %s): %s\n", o.Role, o.Target, o.Source, o.Error)
		}
		return 1
	}
	return 0
}

func renderPreviews(cfg config.Config, before, after *skeleton.Skeleton, rep *reorient.Report) {
	R, err := viewmatrix.View(cfg.View)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v, using front\n", err)
		R, _ = viewmatrix.View("front")
	}

	bgIndex := texture.BuildIndex(cfg.Backdrop)
	var backdrops texture.Resolver
	if bgIndex.Len() > 0 {
		backdrops = texture.NewCache(bgIndex)
		fmt.Printf("Backdrops: %d indexed\n", bgIndex.Len())
	}

	fmt.Printf("Previews: %s (workers %d)\n", cfg.PreviewDir, cfg.Workers)
	start := time.Now()
	results := batch.Run(batch.Config{
		Before:      before,
		After:       after,
		OutputDir:   cfg.PreviewDir,
		Backdrops:   backdrops,
		View:        R,
		RenderSize:  cfg.RenderSize,
		Supersample: cfg.Supersample,
		Workers:     cfg.Workers,
		Out:         os.Stdout,
	}, rep.Outcomes)

	rendered := 0
	var errs []error
	for _, r := range results {
		if r.Success {
			rendered++
		} else {
			errs = append(errs, fmt.Errorf("%s: %s", r.Role, r.Error))
		}
	}
	fmt.Printf("Rendered: %d/%d in %.1fs\n", rendered, len(results), time.Since(start).Seconds())
	if err := errors.Join(errs...); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: preview failures:\n%v\n", err)
	}

	manifestPath := filepath.Join(cfg.PreviewDir, "manifest.json")
	if err := batch.WriteManifest(manifestPath, rep.Outcomes, results); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: manifest write failed: %v\n", err)
	} else {
		fmt.Printf("Manifest: %s\n", manifestPath)
	}
}
