package ui

import (
	rl "github.com/gen2brain/raylib-go/raylib"
)

// keyBinding is one row of the Keys section.
type keyBinding struct {
	key, action string
}

var simKeys = []keyBinding{
	{"Space", "Pause"},
	{", .", "Slower / faster"},
	{"Click", "Inspect creature"},
	{"RClick", "Clear selection"},
	{"M", "Mutation rates"},
	{"F11", "Fullscreen"},
}

var (
	toggleOn  = rl.Color{R: 100, G: 200, B: 100, A: 255}
	toggleOff = rl.Color{R: 80, G: 80, B: 80, A: 255}
	keyColor  = rl.Color{R: 150, G: 150, B: 150, A: 255}
)

// ControlsPanel lists the overlays with their state, then the simulation keys.
type ControlsPanel struct {
	renderer *Renderer
	x, y     int32
	width    int32
	visible  bool
}

// NewControlsPanel creates a hidden controls panel.
func NewControlsPanel(x, y, width int32) *ControlsPanel {
	return &ControlsPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
		width:    width,
	}
}

// Toggle switches panel visibility.
func (c *ControlsPanel) Toggle() bool {
	c.visible = !c.visible
	return c.visible
}

func (c *ControlsPanel) height(overlays *OverlayRegistry) int32 {
	th := c.renderer.Theme
	rows := len(simKeys) + 1
	for _, cat := range overlays.Categories() {
		rows += len(overlays.ByCategory(cat)) + 1
	}
	return int32(rows)*th.LineHeight + th.Padding*2 + th.LineHeight + 4*int32(len(overlays.Categories())+1)
}

// Draw renders the panel when visible.
func (c *ControlsPanel) Draw(overlays *OverlayRegistry) {
	if !c.visible {
		return
	}

	th := c.renderer.Theme
	inner := c.width - th.Padding*2
	x := c.x + th.Padding
	y := c.y + th.Padding

	c.renderer.DrawPanel(c.x, c.y, c.width, c.height(overlays))
	rl.DrawText("Controls", x, y, 16, rl.White)
	y += th.LineHeight + 4

	for _, cat := range overlays.Categories() {
		y = c.renderer.DrawSectionHeader(x, y, categoryLabel(cat))
		for _, desc := range overlays.ByCategory(cat) {
			on := overlays.IsEnabled(desc.ID)
			dot, name := toggleOff, th.LabelColor
			if on {
				dot, name = toggleOn, rl.White
			}
			rl.DrawRectangle(x, y+2, 8, 8, dot)
			rl.DrawText(desc.Name, x+14, y, th.FontSize, name)
			c.drawKey(x+inner, y, desc.KeyLabel)
			y += th.LineHeight
		}
		y += 4
	}

	y = c.renderer.DrawSectionHeader(x, y, "Keys")
	for _, kb := range simKeys {
		rl.DrawText(kb.action, x+14, y, th.FontSize, th.LabelColor)
		c.drawKey(x+inner, y, kb.key)
		y += th.LineHeight
	}
}

// drawKey right-aligns "[key]" so its last character ends at right.
func (c *ControlsPanel) drawKey(right, y int32, key string) {
	if key == "" {
		return
	}
	text := "[" + key + "]"
	size := c.renderer.Theme.FontSize
	rl.DrawText(text, right-rl.MeasureText(text, size), y, size, keyColor)
}

func categoryLabel(cat string) string {
	switch cat {
	case "visual":
		return "Visual"
	case "debug":
		return "Debug"
	}
	return cat
}
