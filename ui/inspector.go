package ui

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/liquidevo/game"
)

// Inspector renders the panel for the selected creature.
type Inspector struct {
	renderer *Renderer
	x, y     int32
	width    int32
	sections []SectionDescriptor
}

// NewInspector creates an inspector whose health bar is scaled to maxHealth.
func NewInspector(x, y, width int32, maxHealth float32) *Inspector {
	return &Inspector{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
		width:    width,
		sections: creatureSections(maxHealth),
	}
}

// SetPosition updates the inspector position.
func (ins *Inspector) SetPosition(x, y int32) {
	ins.x = x
	ins.y = y
}

func info(data any) *game.CreatureInfo {
	return data.(*game.CreatureInfo)
}

func creatureSections(maxHealth float32) []SectionDescriptor {
	return []SectionDescriptor{
		{
			Title: "Lineage",
			Fields: []FieldDescriptor{
				{Label: "ID", Widget: WidgetText, TextGetter: func(d any) string { return fmt.Sprintf("%d", info(d).ID) }},
				{Label: "Parent", Widget: WidgetText, TextGetter: func(d any) string {
					if info(d).ParentID == 0 {
						return "founder"
					}
					return fmt.Sprintf("%d", info(d).ParentID)
				}},
				{Label: "Generation", Widget: WidgetText, Format: "%.0f", Getter: func(d any) float32 { return float32(info(d).Generation) }},
				{Label: "Seed", Widget: WidgetText, TextGetter: func(d any) string { return info(d).Seed }},
				{Label: "Born", Widget: WidgetText, TextGetter: func(d any) string { return fmt.Sprintf("tick %d", info(d).BornTick) }},
			},
		},
		{
			Title: "Vitals",
			Fields: []FieldDescriptor{
				{Label: "Health", Widget: WidgetHealthBar, Range: FieldRange{Max: maxHealth}, Getter: func(d any) float32 { return info(d).Health }},
				{Label: "Eaten", Widget: WidgetText, Format: "%.0f", Getter: func(d any) float32 { return float32(info(d).Eaten) }},
				{Label: "Children", Widget: WidgetText, Format: "%.0f", Getter: func(d any) float32 { return float32(info(d).Children) }},
			},
		},
		{
			Title: "Body",
			Fields: []FieldDescriptor{
				{Label: "Chunks", Widget: WidgetText, Format: "%.0f", Getter: func(d any) float32 { return float32(info(d).Genome.ChunkCount()) }},
				{Label: "Fixtures", Widget: WidgetText, Format: "%.0f", Getter: func(d any) float32 { return float32(len(info(d).Outlines)) }},
				{Label: "Position", Widget: WidgetText, TextGetter: func(d any) string { return fmt.Sprintf("%.1f, %.1f", info(d).X, info(d).Y) }},
			},
		},
		{
			Title: "Genome",
			Fields: []FieldDescriptor{
				{Widget: WidgetWrapped, TextGetter: func(d any) string { return info(d).Genome.String() }},
			},
		},
	}
}

// Draw renders the inspector for one creature and returns the bottom edge.
func (ins *Inspector) Draw(c game.CreatureInfo) int32 {
	r := ins.renderer
	padding := r.Theme.Padding
	contentWidth := ins.width - padding*2

	// measure first so the panel fits the wrapped genome
	height := ins.height(&c, contentWidth)
	r.DrawPanel(ins.x, ins.y, ins.width, height)

	y := ins.y + padding
	rl.DrawText(fmt.Sprintf("Creature %d", c.ID), ins.x+padding, y, 16, rl.White)
	y += r.Theme.LineHeight + 6

	for _, sd := range ins.sections {
		y = r.DrawSection(ins.x+padding, y, sd, &c, contentWidth)
	}
	return y
}

func (ins *Inspector) height(c *game.CreatureInfo, contentWidth int32) int32 {
	t := ins.renderer.Theme
	lines := int32(1)
	for _, sd := range ins.sections {
		lines++
		for _, fd := range sd.Fields {
			if fd.Widget == WidgetWrapped && fd.TextGetter != nil {
				lines += int32(len(wrap(fd.TextGetter(c), contentWidth, t.FontSize)))
				continue
			}
			lines++
		}
	}
	return lines*t.LineHeight + int32(len(ins.sections))*6 + t.Padding*2 + 6
}
