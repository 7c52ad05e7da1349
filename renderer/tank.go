package renderer

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/liquidevo/camera"
)

// TankRenderer draws the water column and the walls around the world.
type TankRenderer struct {
	surface, floor rl.Color
	wall           rl.Color
	size           float32
}

// NewTankRenderer creates a renderer for a square tank of the given side in metres.
func NewTankRenderer(size float32) *TankRenderer {
	return &TankRenderer{
		surface: rl.Color{R: 40, G: 90, B: 140, A: 255},
		floor:   rl.Color{R: 8, G: 20, B: 40, A: 255},
		wall:    rl.Color{R: 180, G: 180, B: 190, A: 255},
		size:    size,
	}
}

// Draw renders the tank interior and its boundary.
func (t *TankRenderer) Draw(cam *camera.Camera) {
	// top-left and bottom-right corners on screen
	x0, y0 := cam.WorldToScreen(0, t.size)
	x1, y1 := cam.WorldToScreen(t.size, 0)
	rl.DrawRectangleGradientV(int32(x0), int32(y0), int32(x1-x0), int32(y1-y0), t.surface, t.floor)

	rect := rl.Rectangle{X: x0, Y: y0, Width: x1 - x0, Height: y1 - y0}
	rl.DrawRectangleLinesEx(rect, 2, t.wall)
}
