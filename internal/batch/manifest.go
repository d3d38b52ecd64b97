package batch

import (
	"encoding/json"
	"os"
	"path/filepath"

	"rig-reorient/internal/reorient"
)

// ManifestEntry represents one role in the output manifest.
type ManifestEntry struct {
	Role    string         `json:"role"`
	Source  string         `json:"source"`
	Target  string         `json:"target"`
	State   reorient.State `json:"state"`
	Image   string         `json:"image,omitempty"`
	Compare string         `json:"compare,omitempty"`
	Error   string         `json:"error,omitempty"`
}

// WriteManifest writes every role with its preview paths relative to the manifest's directory.
func WriteManifest(path string, outcomes []reorient.Outcome, results []Result) error {
	byRole := make(map[string]Result, len(results))
	for _, r := range results {
		byRole[r.Role] = r
	}
	dir := filepath.Dir(path)
	rel := func(p string) string {
		if p == "" {
			return ""
		}
		if r, err := filepath.Rel(dir, p); err == nil {
			return filepath.ToSlash(r)
		}
		return p
	}

	entries := make([]ManifestEntry, len(outcomes))
	for i, o := range outcomes {
		e := ManifestEntry{Role: o.Role, Source: o.Source, Target: o.Target, State: o.State, Error: o.Error}
		if r, ok := byRole[o.Role]; ok {
			if r.Success {
				e.Image, e.Compare = rel(r.Image), rel(r.Compare)
			} else if e.Error == "" {
				e.Error = r.Error
			}
		}
		entries[i] = e
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
