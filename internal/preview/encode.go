package preview

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"time"

	"github.com/HugoSmits86/nativewebp"
)

func create(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	return os.Create(path)
}

// WriteWebP saves img as a lossless WebP file.
func WriteWebP(path string, img image.Image) error {
	f, err := create(path)
	if err != nil {
		return fmt.Errorf("preview: %w", err)
	}
	defer f.Close()
	if err := nativewebp.Encode(f, img, nil); err != nil {
		return fmt.Errorf("preview: encode %s: %w", path, err)
	}
	return f.Close()
}

// WriteAnimation saves frames as a looping WebP animation, each shown for delay.
func WriteAnimation(path string, frames []image.Image, delay time.Duration) error {
	if len(frames) == 0 {
		return fmt.Errorf("preview: %s: no frames", path)
	}
	ani := &nativewebp.Animation{
		Images:    frames,
		Durations: make([]uint, len(frames)),
		Disposals: make([]uint, len(frames)),
	}
	for i := range ani.Durations {
		ani.Durations[i] = uint(delay.Milliseconds())
	}

	f, err := create(path)
	if err != nil {
		return fmt.Errorf("preview: %w", err)
	}
	defer f.Close()
	if err := nativewebp.EncodeAll(f, ani, nil); err != nil {
		return fmt.Errorf("preview: encode %s: %w", path, err)
	}
	return f.Close()
}
