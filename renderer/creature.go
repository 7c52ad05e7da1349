// Package renderer draws the tank and its creatures with raylib.
package renderer

import (
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/liquidevo/camera"
	"github.com/pthm-cable/liquidevo/genome"
	"github.com/pthm-cable/liquidevo/physics"
)

// fullHealth is the health drawn at full green.
const fullHealth = 1000

// Creature is what the drawer needs to know about one creature.
type Creature struct {
	Outlines []physics.Outline
	Health   float32
	Tint     rl.Color // replaces the health colour when A > 0
	Selected bool
}

// Drawer renders creatures as filled fixtures tinted by health.
type Drawer struct {
	scratch []rl.Vector2
}

// NewDrawer creates a creature drawer.
func NewDrawer() *Drawer {
	return &Drawer{scratch: make([]rl.Vector2, 0, 16)}
}

// HealthColor maps health to a green channel, health/1000 clamped to [0,1].
func HealthColor(health float32) rl.Color {
	g := min(max(health/fullHealth, 0), 1)
	return rl.Color{R: 0, G: uint8(g * 255), B: 0, A: 255}
}

// Draw renders every creature visible through cam.
func (d *Drawer) Draw(cam *camera.Camera, creatures []Creature) {
	for _, c := range creatures {
		fill := HealthColor(c.Health)
		if c.Tint.A > 0 {
			fill = c.Tint
		}
		edge := rl.Color{R: 20, G: 40, B: 20, A: 255}
		if c.Selected {
			edge = rl.Yellow
		}
		for _, o := range c.Outlines {
			switch o.Shape {
			case genome.ShapeCircle:
				d.drawCircle(cam, o, fill, edge)
			case genome.ShapePolygon:
				d.drawPolygon(cam, o, fill, edge)
			}
		}
	}
}

func (d *Drawer) drawCircle(cam *camera.Camera, o physics.Outline, fill, edge rl.Color) {
	cx, cy := float32(o.Center.X), float32(o.Center.Y)
	r := float32(o.Radius)
	if !cam.IsVisible(cx, cy, r) {
		return
	}
	sx, sy := cam.WorldToScreen(cx, cy)
	center := rl.Vector2{X: sx, Y: sy}
	sr := cam.ToScreenLength(r)
	rl.DrawCircleV(center, sr, fill)
	rl.DrawCircleLinesV(center, sr, edge)

	// spoke shows the body's rotation
	ex, ey := cam.WorldToScreen(cx+r*float32(math.Cos(o.Angle)), cy+r*float32(math.Sin(o.Angle)))
	rl.DrawLineV(center, rl.Vector2{X: ex, Y: ey}, edge)
}

func (d *Drawer) drawPolygon(cam *camera.Camera, o physics.Outline, fill, edge rl.Color) {
	if len(o.Points) < 3 {
		return
	}
	d.scratch = d.scratch[:0]
	var minX, minY, maxX, maxY float32 = math.MaxFloat32, math.MaxFloat32, -math.MaxFloat32, -math.MaxFloat32
	for _, p := range o.Points {
		x, y := float32(p.X), float32(p.Y)
		minX, maxX = min(minX, x), max(maxX, x)
		minY, maxY = min(minY, y), max(maxY, y)
		sx, sy := cam.WorldToScreen(x, y)
		d.scratch = append(d.scratch, rl.Vector2{X: sx, Y: sy})
	}
	halfW, halfH := (maxX-minX)/2, (maxY-minY)/2
	if !cam.IsVisible(minX+halfW, minY+halfH, max(halfW, halfH)) {
		return
	}

	// fan from the first vertex; raylib wants counter-clockwise on screen
	pts := d.scratch
	for i := 1; i+1 < len(pts); i++ {
		a, b, c := pts[0], pts[i], pts[i+1]
		if cross(a, b, c) > 0 {
			b, c = c, b
		}
		rl.DrawTriangle(a, b, c, fill)
	}
	for i := range pts {
		rl.DrawLineV(pts[i], pts[(i+1)%len(pts)], edge)
	}
}

// cross is the z component of (b-a)x(c-a) in screen space (y down).
// Negative means counter-clockwise as seen on screen.
func cross(a, b, c rl.Vector2) float32 {
	return (b.X-a.X)*(c.Y-a.Y) - (b.Y-a.Y)*(c.X-a.X)
}
