package valueobjects

import (
	"errors"
	"math"
)

// Position is a point on the journey canvas in pixels.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// NewPosition creates a position, rejecting NaN and infinite coordinates
func NewPosition(x, y float64) (Position, error) {
	if !finite(x) || !finite(y) {
		return Position{}, errors.New("invalid coordinates: must be finite numbers")
	}
	return Position{X: x, Y: y}, nil
}

// Translate returns the position moved by dx, dy
func (p Position) Translate(dx, dy float64) Position {
	return Position{X: p.X + dx, Y: p.Y + dy}
}

// Round snaps the position to whole pixels
func (p Position) Round() Position {
	return Position{X: math.Round(p.X), Y: math.Round(p.Y)}
}

// DistanceTo returns the euclidean distance to another position
func (p Position) DistanceTo(other Position) float64 {
	return math.Hypot(p.X-other.X, p.Y-other.Y)
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
