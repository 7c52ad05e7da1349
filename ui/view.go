package ui

import (
	"fmt"
	"hash/fnv"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/liquidevo/camera"
	"github.com/pthm-cable/liquidevo/game"
	"github.com/pthm-cable/liquidevo/physics"
	"github.com/pthm-cable/liquidevo/renderer"
)

const controlsLegend = "SPACE: Pause | < >: Speed | Arrows/Wheel: Camera | Home: Reset | Click: Select | Right click: Clear | O: Overlays | M: Mutation"

// View owns the window-side state for one game: camera, renderers,
// panels and the current selection.
type View struct {
	game   *game.Game
	camera *camera.Camera

	creatures *renderer.Drawer
	pellets   *renderer.PelletRenderer
	tank      *renderer.TankRenderer

	hud       *HUD
	perfPanel *PerfPanel
	inspector *Inspector
	overlays  *OverlayRegistry
	controls  *ControlsPanel
	tuning    *TuningPanel

	screenWidth, screenHeight float32

	selected    physics.CreatureID
	hasSelected bool

	// reused across frames
	drawBuf []renderer.Creature
}

// NewView creates a view sized to the current window.
func NewView(g *game.Game) *View {
	cfg := g.Config()
	w := float32(rl.GetScreenWidth())
	h := float32(rl.GetScreenHeight())
	size := float32(cfg.World.Size)

	return &View{
		game:         g,
		camera:       camera.New(w, h, size, size),
		creatures:    renderer.NewDrawer(),
		pellets:      renderer.NewPelletRenderer(),
		tank:         renderer.NewTankRenderer(size),
		hud:          NewHUD(),
		perfPanel:    NewPerfPanel(int32(w)-260, 10),
		inspector:    NewInspector(int32(w)-310, 10, 300, float32(cfg.Creature.ReproduceThreshold)),
		overlays:     NewOverlayRegistry(),
		controls:     NewControlsPanel(10, 100, 220),
		tuning:       NewTuningPanel(10, int32(h)-190, 260, g.Pipeline()),
		screenWidth:  w,
		screenHeight: h,
	}
}

// HandleInput processes keyboard and mouse input for this frame.
func (v *View) HandleInput() {
	v.handleResize()

	if rl.IsKeyPressed(rl.KeyF11) {
		rl.ToggleFullscreen()
	}

	if rl.IsKeyPressed(rl.KeySpace) {
		v.game.SetPaused(!v.game.Paused())
	}

	// Steps-per-update control with < > keys (comma and period)
	if rl.IsKeyPressed(rl.KeyComma) {
		v.game.SetStepsPerUpdate(v.game.StepsPerUpdate() - 1)
	}
	if rl.IsKeyPressed(rl.KeyPeriod) {
		v.game.SetStepsPerUpdate(v.game.StepsPerUpdate() + 1)
	}

	if rl.IsKeyPressed(rl.KeyO) {
		v.controls.Toggle()
	}
	if rl.IsKeyPressed(rl.KeyM) {
		v.tuning.Toggle()
	}
	v.overlays.HandleKeys()

	if rl.IsMouseButtonPressed(rl.MouseButtonRight) {
		v.hasSelected = false
	}

	v.handleCameraInput()
	v.handleSelection()
}

// handleResize checks for window resize and propagates new dimensions.
func (v *View) handleResize() {
	if !rl.IsWindowResized() {
		return
	}
	w := float32(rl.GetScreenWidth())
	h := float32(rl.GetScreenHeight())
	if w == v.screenWidth && h == v.screenHeight {
		return
	}
	v.screenWidth = w
	v.screenHeight = h

	v.camera.Resize(w, h)
	v.perfPanel.SetPosition(int32(w)-260, 10)
	v.inspector.SetPosition(int32(w)-310, 10)
	v.tuning.SetPosition(10, int32(h)-190)
}

// handleCameraInput processes camera pan/zoom controls.
func (v *View) handleCameraInput() {
	const panSpeed = 8 // pixels per frame

	if rl.IsKeyDown(rl.KeyRight) {
		v.camera.Pan(panSpeed, 0)
	}
	if rl.IsKeyDown(rl.KeyLeft) {
		v.camera.Pan(-panSpeed, 0)
	}
	if rl.IsKeyDown(rl.KeyDown) {
		v.camera.Pan(0, panSpeed)
	}
	if rl.IsKeyDown(rl.KeyUp) {
		v.camera.Pan(0, -panSpeed)
	}

	if wheel := rl.GetMouseWheelMove(); wheel != 0 {
		v.camera.ZoomBy(1 + wheel*0.1)
	}
	if rl.IsKeyPressed(rl.KeyEqual) || rl.IsKeyPressed(rl.KeyKpAdd) {
		v.camera.ZoomBy(1.25)
	}
	if rl.IsKeyPressed(rl.KeyMinus) || rl.IsKeyPressed(rl.KeyKpSubtract) {
		v.camera.ZoomBy(0.8)
	}

	if rl.IsKeyPressed(rl.KeyHome) {
		v.camera.Reset()
	}
}

// handleSelection selects the creature under a left click.
func (v *View) handleSelection() {
	if !rl.IsMouseButtonPressed(rl.MouseButtonLeft) {
		return
	}
	mouse := rl.GetMousePosition()
	if v.tuning.Contains(mouse.X, mouse.Y) {
		return
	}
	wx, wy := v.camera.ScreenToWorld(mouse.X, mouse.Y)
	v.selected, v.hasSelected = v.game.CreatureAt(float64(wx), float64(wy))
}

// Draw renders one frame.
func (v *View) Draw() {
	v.game.Perf().RecordFrame()

	rl.BeginDrawing()
	rl.ClearBackground(rl.Color{R: 5, G: 10, B: 20, A: 255})

	v.tank.Draw(v.camera)

	if v.overlays.IsEnabled(OverlayPellets) {
		v.pellets.Draw(v.camera, v.game.Pellets())
	}

	creatures := v.game.Creatures()
	v.drawCreatures(creatures)

	if v.overlays.IsEnabled(OverlayAnchors) {
		v.drawAnchors(creatures)
	}

	v.drawUI(creatures)

	rl.EndDrawing()
}

func (v *View) drawCreatures(creatures []game.CreatureInfo) {
	lineage := v.overlays.IsEnabled(OverlayLineageColors)

	v.drawBuf = v.drawBuf[:0]
	for i := range creatures {
		c := &creatures[i]
		rc := renderer.Creature{
			Outlines: c.Outlines,
			Health:   c.Health,
			Selected: v.hasSelected && c.ID == v.selected,
		}
		if lineage {
			rc.Tint = SeedColor(c.Seed)
		}
		v.drawBuf = append(v.drawBuf, rc)
	}
	v.creatures.Draw(v.camera, v.drawBuf)
}

// drawAnchors marks each creature's first body with its id.
func (v *View) drawAnchors(creatures []game.CreatureInfo) {
	for _, c := range creatures {
		if !v.camera.IsVisible(c.X, c.Y, 1) {
			continue
		}
		sx, sy := v.camera.WorldToScreen(c.X, c.Y)
		rl.DrawCircle(int32(sx), int32(sy), 3, rl.Red)
		rl.DrawText(fmt.Sprintf("%d", c.ID), int32(sx)+5, int32(sy)-5, 10, rl.White)
	}
}

func (v *View) drawUI(creatures []game.CreatureInfo) {
	maxGen := 0
	for _, c := range creatures {
		maxGen = max(maxGen, c.Generation)
	}

	v.hud.Draw(HUDData{
		Title:         "Liquid Evolution",
		Population:    v.game.Population(),
		Pellets:       v.game.PelletCount(),
		MaxGeneration: maxGen,
		Tick:          v.game.Tick(),
		Speed:         v.game.StepsPerUpdate(),
		FPS:           rl.GetFPS(),
		Paused:        v.game.Paused(),
	})

	v.controls.Draw(v.overlays)
	v.tuning.Draw(v.game)

	if v.hasSelected {
		if c, ok := v.game.Creature(v.selected); ok {
			v.inspector.Draw(c)
		} else {
			// died since it was clicked
			v.hasSelected = false
		}
	}

	if v.overlays.IsEnabled(OverlayPerf) && !v.hasSelected {
		v.perfPanel.Draw(v.game.Perf().Stats())
	}

	v.hud.DrawControls(int32(v.screenHeight), controlsLegend)
}

// SeedColor gives every founder seed a stable, saturated colour.
func SeedColor(seed string) rl.Color {
	h := fnv.New32a()
	h.Write([]byte(seed))
	hue := float32(h.Sum32()%360)
	return rl.ColorFromHSV(hue, 0.7, 0.9)
}
