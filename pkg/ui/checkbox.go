package ui

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// Checkbox is a clickable boolean UI widget.
type Checkbox struct {
	Label string
	Value bool
	X, Y  float64
	Size  float64
}

// Update toggles the value on click.
func (c *Checkbox) Update() {
	if !inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		return
	}
	mx, my := ebiten.CursorPosition()
	if float64(mx) >= c.X && float64(mx) <= c.X+c.Size &&
		float64(my) >= c.Y && float64(my) <= c.Y+c.Size {
		c.Value = !c.Value
	}
}

// Draw renders the box, the check fill and the label.
func (c *Checkbox) Draw(screen *ebiten.Image) {
	vector.StrokeRect(screen, float32(c.X), float32(c.Y), float32(c.Size), float32(c.Size),
		1, color.RGBA{R: 200, G: 200, B: 200, A: 255}, true)

	if c.Value {
		inset := float32(3)
		vector.FillRect(screen,
			float32(c.X)+inset, float32(c.Y)+inset,
			float32(c.Size)-2*inset, float32(c.Size)-2*inset,
			color.RGBA{R: 200, G: 200, B: 200, A: 255}, true)
	}

	ebitenutil.DebugPrintAt(screen, c.Label, int(c.X+c.Size+6), int(c.Y))
}
