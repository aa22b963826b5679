package render

import (
	"bytes"
	"fmt"
	"image"
	_ "image/png"
	"os"
	"path/filepath"

	"github.com/hajimehoshi/ebiten/v2"
)

var images = map[string]*ebiten.Image{}

// LoadImage loads a PNG from disk and caches it by path.
func LoadImage(path string) (*ebiten.Image, error) {
	if path == "" {
		return nil, fmt.Errorf("empty image path")
	}
	if img, ok := images[path]; ok {
		return img, nil
	}
	tried := []string{path, filepath.Join("sprites", path), filepath.Base(path)}
	for _, p := range tried {
		b, err := os.ReadFile(p)
		if err != nil {
			continue
		}
		im, _, err := image.Decode(bytes.NewReader(b))
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", p, err)
		}
		img := ebiten.NewImageFromImage(im)
		images[path] = img
		return img, nil
	}
	return nil, fmt.Errorf("failed to load image %s", path)
}
