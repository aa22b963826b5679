package sim

import "github.com/milk9111/kakip/physics"

// SpriteDesc describes one catalog sprite by its pixel size.
type SpriteDesc struct {
	PixelWidth  int
	PixelHeight int
}

// Entity is a read-only view of one simulated body. The pose is sampled from
// the backend when the view is produced.
type Entity struct {
	ID         int
	SpriteID   int
	X          float64
	Y          float64
	Angle      float64
	HalfWidth  float64
	HalfHeight float64
	Body       physics.Handle
}

type entityRecord struct {
	spriteID   int
	halfWidth  float64
	halfHeight float64
	body       physics.Handle
}
