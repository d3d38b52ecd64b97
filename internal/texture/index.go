package texture

import (
	"os"
	"path/filepath"
	"strings"
)

var imageExts = map[string]int{".png": 3, ".tga": 2, ".jpg": 1, ".jpeg": 1}

// Index maps lowercase image stems to filesystem paths.
// PNG wins over TGA, TGA over JPEG for the same stem.
type Index struct {
	entries map[string]string // stem.lower() → full path
}

// BuildIndex scans root for images. A file root is indexed as the "default" image.
func BuildIndex(root string) *Index {
	idx := &Index{entries: make(map[string]string)}
	if root == "" {
		return idx
	}
	info, err := os.Stat(root)
	if err != nil {
		return idx
	}
	if !info.IsDir() {
		if _, ok := imageExts[strings.ToLower(filepath.Ext(root))]; ok {
			idx.entries[DefaultName] = root
		}
		return idx
	}

	filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		rank, ok := imageExts[strings.ToLower(filepath.Ext(path))]
		if !ok {
			return nil
		}
		stem := strings.ToLower(strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)))
		existing, exists := idx.entries[stem]
		if !exists || rank > imageExts[strings.ToLower(filepath.Ext(existing))] {
			idx.entries[stem] = path
		}
		return nil
	})
	return idx
}

// DefaultName is the stem used when no image matches a name.
const DefaultName = "default"

// ResolvePath returns the image for name, falling back to the default image, or ("", false).
func (idx *Index) ResolvePath(name string) (string, bool) {
	name = strings.ReplaceAll(name, "\\", "/")
	base := filepath.Base(name)
	stem := strings.ToLower(strings.TrimSuffix(base, filepath.Ext(base)))

	if path, ok := idx.entries[stem]; ok {
		return path, true
	}
	path, ok := idx.entries[DefaultName]
	return path, ok
}

// Len returns the number of indexed images.
func (idx *Index) Len() int {
	return len(idx.entries)
}
