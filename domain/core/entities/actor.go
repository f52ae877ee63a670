package entities

import "journeymap/domain/core/valueobjects"

// ActorPalette colors actors by extraction order
var ActorPalette = []string{
	"#3b82f6", "#10b981", "#f59e0b", "#ef4444", "#8b5cf6",
	"#06b6d4", "#ec4899", "#84cc16", "#f97316", "#14b8a6",
}

// ContextPalette tints context lanes by extraction order
var ContextPalette = ActorPalette[:8]

// Actor is a participant of the journey: a person, a robot or a system
type Actor struct {
	ID          string                 `json:"id"`
	Name        string                 `json:"name"`
	Kind        valueobjects.ActorKind `json:"kind"`
	Color       string                 `json:"color"`
	Description string                 `json:"description,omitempty"`
}

// PaletteColor picks the i-th color of palette, wrapping around
func PaletteColor(palette []string, i int) string {
	if len(palette) == 0 || i < 0 {
		return ""
	}
	return palette[i%len(palette)]
}
