package sim

import "fmt"

// Mapper converts between screen pixels (y down) and world units (y up).
type Mapper struct {
	screenWidth  float64
	screenHeight float64
	worldWidth   float64
	worldHeight  float64
}

// NewMapper returns a mapper for the given extents. All extents must be
// positive.
func NewMapper(screenWidth, screenHeight, worldWidth, worldHeight float64) (Mapper, error) {
	if !(screenWidth > 0 && screenHeight > 0 && worldWidth > 0 && worldHeight > 0) {
		return Mapper{}, fmt.Errorf("mapper %vx%v px, %vx%v world: %w",
			screenWidth, screenHeight, worldWidth, worldHeight, ErrInvalidExtent)
	}
	return Mapper{
		screenWidth:  screenWidth,
		screenHeight: screenHeight,
		worldWidth:   worldWidth,
		worldHeight:  worldHeight,
	}, nil
}

// WorldExtents normalizes the larger screen dimension to magnitude and scales
// the other one so the arena keeps the screen's aspect ratio.
func WorldExtents(screenWidth, screenHeight, magnitude float64) (width, height float64, err error) {
	if !(screenWidth > 0 && screenHeight > 0 && magnitude > 0) {
		return 0, 0, fmt.Errorf("world extents %vx%v px, magnitude %v: %w",
			screenWidth, screenHeight, magnitude, ErrInvalidExtent)
	}
	if screenWidth > screenHeight {
		return magnitude, (screenHeight / screenWidth) * magnitude, nil
	}
	return (screenWidth / screenHeight) * magnitude, magnitude, nil
}

func (m Mapper) ToScreen(worldX, worldY float64) (float64, float64) {
	sx := (m.screenWidth / m.worldWidth) * worldX
	sy := m.screenHeight - (m.screenHeight/m.worldHeight)*worldY
	return sx, sy
}

func (m Mapper) ToWorld(screenX, screenY float64) (float64, float64) {
	wx := (m.worldWidth / m.screenWidth) * screenX
	wy := m.worldHeight - (m.worldHeight/m.screenHeight)*screenY
	return wx, wy
}

// ScaleToScreen converts world lengths to pixel lengths along each axis.
func (m Mapper) ScaleToScreen(w, h float64) (float64, float64) {
	return (m.screenWidth / m.worldWidth) * w, (m.screenHeight / m.worldHeight) * h
}

func (m Mapper) ScreenSize() (float64, float64) {
	return m.screenWidth, m.screenHeight
}

func (m Mapper) WorldSize() (float64, float64) {
	return m.worldWidth, m.worldHeight
}
