// Package render draws simulation frames with ebiten.
package render

import (
	"fmt"
	"image/color"
	"log"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/milk9111/kakip/catalog"
)

// Registry maps the sprite IDs of one category to images. Images are cached
// by key across categories.
type Registry struct {
	cache   map[string]*ebiten.Image
	sprites []*ebiten.Image
}

func NewRegistry() *Registry {
	return &Registry{cache: make(map[string]*ebiten.Image)}
}

// Use replaces the active sprite set. Sprites whose image file cannot be
// loaded fall back to a filled box in the sprite color.
func (r *Registry) Use(sprites []catalog.Sprite) {
	r.sprites = r.sprites[:0]
	for _, s := range sprites {
		r.sprites = append(r.sprites, r.image(s))
	}
}

// Image returns the image for a sprite ID of the active set.
func (r *Registry) Image(id int) *ebiten.Image {
	if r == nil || id < 0 || id >= len(r.sprites) {
		return nil
	}
	return r.sprites[id]
}

func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.sprites)
}

func (r *Registry) image(s catalog.Sprite) *ebiten.Image {
	key := imageKey(s)
	if img, ok := r.cache[key]; ok {
		return img
	}

	var img *ebiten.Image
	if s.Image != "" {
		loaded, err := LoadImage(s.Image)
		if err != nil {
			log.Printf("Registry: sprite %q: %v", s.Name, err)
		} else {
			img = loaded
		}
	}
	if img == nil {
		img = boxImage(s.Width, s.Height, s.RGBA())
	}
	r.cache[key] = img
	return img
}

func imageKey(s catalog.Sprite) string {
	if s.Image != "" {
		return "file:" + s.Image
	}
	c := s.RGBA()
	return fmt.Sprintf("box:%dx%d:%02x%02x%02x", s.Width, s.Height, c.R, c.G, c.B)
}

func boxImage(w, h int, c color.RGBA) *ebiten.Image {
	img := ebiten.NewImage(w, h)
	img.Fill(c)
	border := color.RGBA{R: c.R / 2, G: c.G / 2, B: c.B / 2, A: 0xff}
	vector.StrokeRect(img, 1, 1, float32(w-2), float32(h-2), 2, border, false)
	return img
}
