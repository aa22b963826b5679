// Package catalog loads the sprite categories the arena is populated from.
package catalog

import (
	"errors"
	"fmt"
	"image/color"
	"strings"

	"github.com/milk9111/kakip/sim"
	"golang.org/x/image/colornames"
	"gopkg.in/yaml.v3"
)

var (
	ErrNoCategories    = errors.New("catalog: no categories")
	ErrUnknownCategory = errors.New("catalog: unknown category")
	ErrEmptyCategory   = errors.New("catalog: category has no sprites")
	ErrInvalidSprite   = errors.New("catalog: sprite size must be positive")
)

// fallbackColor tints sprites whose color name is unknown.
var fallbackColor = colornames.Gray

type Sprite struct {
	Name   string `yaml:"name"`
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
	Color  string `yaml:"color"`
	Image  string `yaml:"image"`
}

// RGBA resolves the sprite's color name.
func (s Sprite) RGBA() color.RGBA {
	if c, ok := colornames.Map[strings.ToLower(strings.TrimSpace(s.Color))]; ok {
		return c
	}
	return fallbackColor
}

type Category struct {
	Name    string   `yaml:"name"`
	Sprites []Sprite `yaml:"sprites"`
}

// Descriptors returns the category's sprites in catalog order; a sprite's
// index is its sprite id.
func (c Category) Descriptors() []sim.SpriteDesc {
	out := make([]sim.SpriteDesc, len(c.Sprites))
	for i, s := range c.Sprites {
		out[i] = sim.SpriteDesc{PixelWidth: s.Width, PixelHeight: s.Height}
	}
	return out
}

type Catalog struct {
	Categories []Category `yaml:"categories"`
}

func LoadSpec[T any](filename string) (T, error) {
	var zero T
	data, err := Load(filename)
	if err != nil {
		return zero, fmt.Errorf("catalog: load %s: %w", filename, err)
	}

	var spec T
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return zero, fmt.Errorf("catalog: unmarshal %s: %w", filename, err)
	}

	return spec, nil
}

// LoadCatalog loads and validates a catalog. An empty path selects the
// embedded default.
func LoadCatalog(path string) (*Catalog, error) {
	c, err := LoadSpec[Catalog](path)
	if err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Parse decodes and validates catalog YAML.
func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("catalog: unmarshal: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Catalog) Validate() error {
	if c == nil || len(c.Categories) == 0 {
		return ErrNoCategories
	}
	for i, cat := range c.Categories {
		if len(cat.Sprites) == 0 {
			return fmt.Errorf("category %d %q: %w", i, cat.Name, ErrEmptyCategory)
		}
		for j, s := range cat.Sprites {
			if s.Width <= 0 || s.Height <= 0 {
				return fmt.Errorf("category %q sprite %d %q (%dx%d): %w", cat.Name, j, s.Name, s.Width, s.Height, ErrInvalidSprite)
			}
		}
	}
	return nil
}

// Category returns the category at index i.
func (c *Catalog) Category(i int) (Category, error) {
	if c == nil || i < 0 || i >= len(c.Categories) {
		return Category{}, fmt.Errorf("%w: %d", ErrUnknownCategory, i)
	}
	return c.Categories[i], nil
}

// Index finds a category by name.
func (c *Catalog) Index(name string) (int, bool) {
	if c == nil {
		return 0, false
	}
	for i, cat := range c.Categories {
		if strings.EqualFold(cat.Name, name) {
			return i, true
		}
	}
	return 0, false
}

func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.Categories)
}
