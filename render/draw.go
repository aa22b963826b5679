package render

import (
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/milk9111/kakip/sim"
	"golang.org/x/image/colornames"
)

var (
	Background     = colornames.Darkslategray
	highlightColor = colornames.Gold
)

// DrawFrame draws every sprite of f centered on its screen position and
// rotated by its screen degrees. The dragged sprite gets an outline.
func DrawFrame(screen *ebiten.Image, f sim.Frame, reg *Registry) {
	if screen == nil {
		return
	}
	screen.Fill(Background)

	for _, s := range f.Sprites {
		img := reg.Image(s.SpriteID)
		if img == nil {
			continue
		}
		b := img.Bounds()
		op := &ebiten.DrawImageOptions{}
		op.GeoM = spriteGeoM(s, b.Dx(), b.Dy())
		op.Filter = ebiten.FilterLinear
		screen.DrawImage(img, op)

		if s.Dragged {
			strokeBox(screen, s, highlightColor)
		}
	}
}

// spriteGeoM maps image pixels onto the sprite's rotated screen box.
func spriteGeoM(s sim.SpriteFrame, imgW, imgH int) ebiten.GeoM {
	var g ebiten.GeoM
	if imgW <= 0 || imgH <= 0 {
		return g
	}
	g.Translate(-float64(imgW)/2, -float64(imgH)/2)
	g.Scale(2*s.PixelHalfWidth/float64(imgW), 2*s.PixelHalfHeight/float64(imgH))
	g.Rotate(s.Degrees * math.Pi / 180)
	g.Translate(s.ScreenX, s.ScreenY)
	return g
}

// corners returns the four screen corners of a sprite box in drawing order.
func corners(s sim.SpriteFrame) [4][2]float64 {
	rad := s.Degrees * math.Pi / 180
	sin, cos := math.Sincos(rad)
	local := [4][2]float64{
		{-s.PixelHalfWidth, -s.PixelHalfHeight},
		{s.PixelHalfWidth, -s.PixelHalfHeight},
		{s.PixelHalfWidth, s.PixelHalfHeight},
		{-s.PixelHalfWidth, s.PixelHalfHeight},
	}
	var out [4][2]float64
	for i, p := range local {
		out[i] = [2]float64{
			s.ScreenX + p[0]*cos - p[1]*sin,
			s.ScreenY + p[0]*sin + p[1]*cos,
		}
	}
	return out
}

func strokeBox(screen *ebiten.Image, s sim.SpriteFrame, c color.Color) {
	pts := corners(s)
	for i := range pts {
		a, b := pts[i], pts[(i+1)%len(pts)]
		vector.StrokeLine(screen, float32(a[0]), float32(a[1]), float32(b[0]), float32(b[1]), 2, c, true)
	}
}
