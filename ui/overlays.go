package ui

import (
	rl "github.com/gen2brain/raylib-go/raylib"
)

// OverlayID uniquely identifies an overlay.
type OverlayID string

// Standard overlay IDs.
const (
	OverlayLineageColors OverlayID = "lineage_colors"
	OverlayPellets       OverlayID = "pellets"
	OverlayAnchors       OverlayID = "anchors"
	OverlayPerf          OverlayID = "perf"
)

// OverlayDescriptor defines an overlay that can be toggled.
type OverlayDescriptor struct {
	ID       OverlayID // Unique identifier
	Name     string    // Display name
	Key      int32     // Keyboard key to toggle (0 = no key)
	KeyLabel string    // Key label for display (e.g., "L")
	Category string    // Grouping ("visual" or "debug")
}

// OverlayRegistry manages overlay state and metadata.
type OverlayRegistry struct {
	descriptors []OverlayDescriptor
	enabled     map[OverlayID]bool
}

// NewOverlayRegistry creates a registry with default overlays.
// Pellets start visible.
func NewOverlayRegistry() *OverlayRegistry {
	reg := &OverlayRegistry{enabled: make(map[OverlayID]bool)}

	reg.Register(OverlayDescriptor{
		ID:       OverlayLineageColors,
		Name:     "Lineage Colors",
		Key:      rl.KeyL,
		KeyLabel: "L",
		Category: "visual",
	})
	reg.Register(OverlayDescriptor{
		ID:       OverlayPellets,
		Name:     "Food Pellets",
		Key:      rl.KeyF,
		KeyLabel: "F",
		Category: "visual",
	})
	reg.Register(OverlayDescriptor{
		ID:       OverlayAnchors,
		Name:     "Anchors",
		Key:      rl.KeyA,
		KeyLabel: "A",
		Category: "debug",
	})
	reg.Register(OverlayDescriptor{
		ID:       OverlayPerf,
		Name:     "Phase Timings",
		Key:      rl.KeyP,
		KeyLabel: "P",
		Category: "debug",
	})

	reg.enabled[OverlayPellets] = true
	return reg
}

// Register adds an overlay to the registry, disabled.
func (r *OverlayRegistry) Register(desc OverlayDescriptor) {
	r.descriptors = append(r.descriptors, desc)
	r.enabled[desc.ID] = false
}

// Toggle switches an overlay on/off and returns its new state.
func (r *OverlayRegistry) Toggle(id OverlayID) bool {
	r.enabled[id] = !r.enabled[id]
	return r.enabled[id]
}

// IsEnabled returns whether an overlay is active.
func (r *OverlayRegistry) IsEnabled(id OverlayID) bool {
	return r.enabled[id]
}

// ByCategory returns overlays filtered by category.
func (r *OverlayRegistry) ByCategory(category string) []OverlayDescriptor {
	var result []OverlayDescriptor
	for _, desc := range r.descriptors {
		if desc.Category == category {
			result = append(result, desc)
		}
	}
	return result
}

// Categories returns all unique categories in order.
func (r *OverlayRegistry) Categories() []string {
	seen := make(map[string]bool)
	var cats []string
	for _, desc := range r.descriptors {
		if !seen[desc.Category] {
			seen[desc.Category] = true
			cats = append(cats, desc.Category)
		}
	}
	return cats
}

// HandleKeys toggles every overlay whose key was pressed this frame.
func (r *OverlayRegistry) HandleKeys() {
	for _, desc := range r.descriptors {
		if desc.Key != 0 && rl.IsKeyPressed(desc.Key) {
			r.Toggle(desc.ID)
		}
	}
}
