package layout

import (
	"math"

	"journeymap/domain/core/valueobjects"
)

// PlaceInCell returns the position of the index-th of count entities sharing
// a cell. A lone entity sits on the center; otherwise entities are spread
// evenly on a circle starting at the top and moving clockwise on screen.
func PlaceInCell(center valueobjects.Position, index, count int, radius float64) valueobjects.Position {
	if count <= 1 || index < 0 || index >= count {
		return center
	}
	angle := -math.Pi/2 + 2*math.Pi/float64(count)*float64(index)
	return valueobjects.Position{
		X: center.X + radius*math.Cos(angle),
		Y: center.Y + radius*math.Sin(angle),
	}
}

// ClusterRadius returns the ring radius for count entities. With ScaleRadius
// off it is the fixed CircularRadius; with it on the ring grows so that
// neighbours keep at least MinArcSpacing of arc between them.
func (s Settings) ClusterRadius(count int) float64 {
	if !s.ScaleRadius || count <= 1 {
		return s.CircularRadius
	}
	return max(s.CircularRadius, s.MinArcSpacing*float64(count)/(2*math.Pi))
}

// NodePosition places a node within its cell and converts the center point
// into the node's top-left corner, rounded to whole pixels.
func (g Grid) NodePosition(p, c, index, count int) valueobjects.Position {
	s := g.settings
	center := PlaceInCell(g.CellCenter(p, c), index, count, s.ClusterRadius(count))
	dx, dy := s.HalfNode()
	return center.Translate(-dx, -dy).Round()
}
