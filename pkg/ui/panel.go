package ui

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

const (
	widgetWidth    = 160
	sliderHeight   = 12
	checkboxSize   = 12
	rowSpacing     = 34
	checkboxRowGap = 20
	padding        = 12
)

// Panel stacks sliders and checkboxes vertically on a dimmed background.
type Panel struct {
	X, Y, W float64

	sliders    []*Slider
	checkboxes []*Checkbox
	nextY      float64
}

// NewPanel creates an empty panel anchored at (x, y).
func NewPanel(x, y, w float64) *Panel {
	return &Panel{X: x, Y: y, W: w, nextY: y + padding + 14}
}

// AddSlider appends a slider row and returns the widget for live reads.
func (p *Panel) AddSlider(label string, min, max, value float64) *Slider {
	s := &Slider{
		Label: label,
		Value: value,
		Min:   min, Max: max,
		X: p.X + padding, Y: p.nextY,
		W: widgetWidth, H: sliderHeight,
	}
	p.sliders = append(p.sliders, s)
	p.nextY += rowSpacing
	return s
}

// AddCheckbox appends a checkbox row and returns the widget.
func (p *Panel) AddCheckbox(label string, value bool) *Checkbox {
	c := &Checkbox{
		Label: label,
		Value: value,
		X:     p.X + padding, Y: p.nextY,
		Size: checkboxSize,
	}
	p.checkboxes = append(p.checkboxes, c)
	p.nextY += checkboxRowGap
	return c
}

// Update propagates input to every widget.
func (p *Panel) Update() {
	for _, s := range p.sliders {
		s.Update()
	}
	for _, c := range p.checkboxes {
		c.Update()
	}
}

// Contains reports whether a point lies inside the panel, so callers can
// keep drag gestures on the panel from leaking into the simulation.
func (p *Panel) Contains(x, y float64) bool {
	return x >= p.X && x <= p.X+p.W && y >= p.Y && y <= p.Y+p.height()
}

func (p *Panel) height() float64 {
	return p.nextY - p.Y + padding
}

// Draw renders the background and every widget.
func (p *Panel) Draw(screen *ebiten.Image) {
	vector.FillRect(screen, float32(p.X), float32(p.Y), float32(p.W), float32(p.height()),
		color.RGBA{R: 20, G: 20, B: 30, A: 200}, true)

	for _, s := range p.sliders {
		s.Draw(screen)
	}
	for _, c := range p.checkboxes {
		c.Draw(screen)
	}
}
