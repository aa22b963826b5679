package main

import (
	"math"

	"github.com/gdamore/tcell/v2"
	"github.com/milk9111/kakip/sim"
)

// canvas is a pixel grid drawn two pixels per terminal cell with upper half
// blocks.
type canvas struct {
	w, h int
	px   []tcell.Color
}

func newCanvas(cols, rows int) *canvas {
	c := &canvas{}
	c.resize(cols, rows)
	return c
}

func (c *canvas) resize(cols, rows int) {
	c.w, c.h = max(cols, 0), max(rows*2, 0)
	c.px = make([]tcell.Color, c.w*c.h)
}

func (c *canvas) clear() {
	for i := range c.px {
		c.px[i] = tcell.ColorDefault
	}
}

func (c *canvas) at(x, y int) tcell.Color {
	if x < 0 || y < 0 || x >= c.w || y >= c.h {
		return tcell.ColorDefault
	}
	return c.px[y*c.w+x]
}

func (c *canvas) set(x, y int, col tcell.Color) {
	if x < 0 || y < 0 || x >= c.w || y >= c.h {
		return
	}
	c.px[y*c.w+x] = col
}

// fill paints the pixels whose centers fall inside the sprite's rotated box.
// Sprites smaller than a pixel still paint the pixel under their center.
func (c *canvas) fill(s sim.SpriteFrame, col tcell.Color) {
	sin, cos := math.Sincos(s.Degrees * math.Pi / 180)
	r := math.Hypot(s.PixelHalfWidth, s.PixelHalfHeight)
	x0, x1 := int(math.Floor(s.ScreenX-r)), int(math.Ceil(s.ScreenX+r))
	y0, y1 := int(math.Floor(s.ScreenY-r)), int(math.Ceil(s.ScreenY+r))

	painted := false
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			dx := float64(x) + 0.5 - s.ScreenX
			dy := float64(y) + 0.5 - s.ScreenY
			lx := dx*cos + dy*sin
			ly := -dx*sin + dy*cos
			if math.Abs(lx) <= s.PixelHalfWidth && math.Abs(ly) <= s.PixelHalfHeight {
				c.set(x, y, col)
				painted = true
			}
		}
	}
	if !painted {
		c.set(int(math.Floor(s.ScreenX)), int(math.Floor(s.ScreenY)), col)
	}
}

func (c *canvas) draw(screen tcell.Screen, bg tcell.Color) {
	for row := 0; row*2 < c.h; row++ {
		for col := 0; col < c.w; col++ {
			top, bottom := c.at(col, row*2), c.at(col, row*2+1)
			if top == tcell.ColorDefault {
				top = bg
			}
			if bottom == tcell.ColorDefault {
				bottom = bg
			}
			screen.SetContent(col, row, '▀', nil, tcell.StyleDefault.Foreground(top).Background(bottom))
		}
	}
}

// cellToPixel maps a terminal cell to the center of its upper pixel.
func cellToPixel(col, row int) (float64, float64) {
	return float64(col) + 0.5, float64(row*2) + 0.5
}
