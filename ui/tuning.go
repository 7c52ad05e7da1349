package ui

import (
	"fmt"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/liquidevo/game"
	"github.com/pthm-cable/liquidevo/genome"
)

const tuningHeight = 150

// TuningPanel adjusts the mutation pipeline of a running game with sliders.
type TuningPanel struct {
	renderer *Renderer
	x, y     int32
	width    int32
	visible  bool
	initial  genome.Pipeline
}

// NewTuningPanel creates a hidden panel; Reset restores initial.
func NewTuningPanel(x, y, width int32, initial genome.Pipeline) *TuningPanel {
	return &TuningPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
		width:    width,
		initial:  initial,
	}
}

// Toggle switches panel visibility.
func (t *TuningPanel) Toggle() bool {
	t.visible = !t.visible
	return t.visible
}

// Contains reports whether a screen point falls on the visible panel.
func (t *TuningPanel) Contains(x, y float32) bool {
	return t.visible && rl.CheckCollisionPointRec(rl.Vector2{X: x, Y: y}, t.bounds())
}

func (t *TuningPanel) bounds() rl.Rectangle {
	return rl.Rectangle{X: float32(t.x), Y: float32(t.y), Width: float32(t.width), Height: tuningHeight}
}

// SetPosition updates the panel position.
func (t *TuningPanel) SetPosition(x, y int32) {
	t.x = x
	t.y = y
}

// Draw renders the sliders and applies any change to g.
func (t *TuningPanel) Draw(g *game.Game) {
	if !t.visible {
		return
	}

	r := t.renderer
	padding := r.Theme.Padding
	r.DrawPanel(t.x, t.y, t.width, tuningHeight)

	p := g.Pipeline()
	x := float32(t.x + padding)
	y := float32(t.y + padding)
	sliderW := float32(t.width - padding*2 - 50)

	rl.DrawText("Mutation", int32(x), int32(y), 16, rl.White)
	y += 24

	rl.DrawText("Structural rate", int32(x), int32(y), r.Theme.FontSize, r.Theme.LabelColor)
	y += 14
	structural := gui.SliderBar(rl.Rectangle{X: x, Y: y, Width: sliderW, Height: 16}, "", "", float32(p.StructuralRate), 0, 1)
	rl.DrawText(fmt.Sprintf("%.2f", p.StructuralRate), int32(x+sliderW+6), int32(y+2), r.Theme.FontSize, r.Theme.ValueColor)
	y += 24

	rl.DrawText("Value rate", int32(x), int32(y), r.Theme.FontSize, r.Theme.LabelColor)
	y += 14
	value := gui.SliderBar(rl.Rectangle{X: x, Y: y, Width: sliderW, Height: 16}, "", "", float32(p.ValueRate), 0, 1)
	rl.DrawText(fmt.Sprintf("%.2f", p.ValueRate), int32(x+sliderW+6), int32(y+2), r.Theme.FontSize, r.Theme.ValueColor)
	y += 26

	if structural != float32(p.StructuralRate) || value != float32(p.ValueRate) {
		p.StructuralRate = float64(structural)
		p.ValueRate = float64(value)
		g.SetPipeline(p)
	}

	if gui.Button(rl.Rectangle{X: x, Y: y, Width: 100, Height: 24}, "Reset") {
		g.SetPipeline(t.initial)
	}
}
