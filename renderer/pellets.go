package renderer

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/liquidevo/camera"
	"github.com/pthm-cable/liquidevo/components"
)

// pelletRadius is the drawn pellet size in metres.
const pelletRadius = 0.12

// PelletRenderer renders food pellets.
type PelletRenderer struct {
	color rl.Color
}

// NewPelletRenderer creates a new pellet renderer.
func NewPelletRenderer() *PelletRenderer {
	return &PelletRenderer{color: rl.Color{R: 230, G: 190, B: 90, A: 220}}
}

// Draw renders all visible pellets.
func (r *PelletRenderer) Draw(cam *camera.Camera, pellets []components.Pellet) {
	size := max(cam.ToScreenLength(pelletRadius), 1)
	for _, p := range pellets {
		if !cam.IsVisible(p.X, p.Y, pelletRadius) {
			continue
		}
		sx, sy := cam.WorldToScreen(p.X, p.Y)
		rl.DrawCircleV(rl.Vector2{X: sx, Y: sy}, size, r.color)
	}
}
