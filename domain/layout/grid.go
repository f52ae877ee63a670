package layout

import (
	"sort"

	"journeymap/domain/core/valueobjects"
)

// Lane is the text a lane displays plus its extracted order value.
type Lane struct {
	Name        string
	Description string
	Order       int
}

// Grid holds lane offsets and sizes in canvas order.
type Grid struct {
	PhaseOffsetX   []float64 `json:"phaseOffsetX"`
	PhaseWidth     []float64 `json:"phaseWidth"`
	ContextOffsetY []float64 `json:"contextOffsetY"`
	ContextHeight  []float64 `json:"contextHeight"`

	settings Settings
}

// BuildGrid walks both axes once, accumulating lane offsets from the label
// margins. Lanes are placed in the order given.
func BuildGrid(phases, contexts []Lane, s Settings) Grid {
	g := Grid{
		PhaseOffsetX:   make([]float64, len(phases)),
		PhaseWidth:     make([]float64, len(phases)),
		ContextOffsetY: make([]float64, len(contexts)),
		ContextHeight:  make([]float64, len(contexts)),
		settings:       s,
	}

	x := s.LabelOffsetX
	for i, p := range phases {
		w := s.LaneWidth(p.Name)
		g.PhaseOffsetX[i] = x
		g.PhaseWidth[i] = w
		x += w + s.PhasePadding
	}

	y := s.LabelOffsetY
	for i, c := range contexts {
		h := s.LaneHeight(c.Name, c.Description)
		g.ContextOffsetY[i] = y
		g.ContextHeight[i] = h
		y += h + s.ContextPadding
	}

	return g
}

// Settings returns the geometry the grid was built with
func (g Grid) Settings() Settings {
	return g.settings
}

// CellCenter returns the center of cell (p, c) where p and c are canvas lane
// positions. Lanes beyond the grid get a synthetic minimum-size lane.
func (g Grid) CellCenter(p, c int) valueobjects.Position {
	s := g.settings

	var x, w float64
	if p >= 0 && p < len(g.PhaseOffsetX) {
		x, w = g.PhaseOffsetX[p], g.PhaseWidth[p]
	} else {
		x, w = float64(p)*s.FallbackPhaseStride+s.LabelOffsetX, s.MinPhaseWidth
	}

	var y, h float64
	if c >= 0 && c < len(g.ContextOffsetY) {
		y, h = g.ContextOffsetY[c], g.ContextHeight[c]
	} else {
		y, h = float64(c)*s.FallbackContextStride+s.LabelOffsetY, s.MinContextHeight
	}

	return valueobjects.Position{X: x + w/2, Y: y + h/2}
}

// CellAt returns the canvas lane positions containing pt. A lane owns the
// half-open span [offset, offset+size+gap). Points outside every lane clamp
// to the first or last lane; an empty axis yields -1.
func (g Grid) CellAt(pt valueobjects.Position) (p, c int) {
	return locate(pt.X, g.PhaseOffsetX, g.PhaseWidth, g.settings.PhasePadding),
		locate(pt.Y, g.ContextOffsetY, g.ContextHeight, g.settings.ContextPadding)
}

func locate(v float64, offsets, sizes []float64, gap float64) int {
	if len(offsets) == 0 {
		return -1
	}
	for i := range offsets {
		if v >= offsets[i] && v < offsets[i]+sizes[i]+gap {
			return i
		}
	}
	if v < offsets[0] {
		return 0
	}
	return len(offsets) - 1
}

// Arrange returns lane indices in canvas order: perm[pos] is the index into
// lanes of the lane drawn at canvas position pos.
func Arrange(lanes []Lane, ordering LaneOrdering) []int {
	perm := make([]int, len(lanes))
	for i := range perm {
		perm[i] = i
	}
	if ordering == OrderByField {
		sort.SliceStable(perm, func(a, b int) bool {
			return lanes[perm[a]].Order < lanes[perm[b]].Order
		})
	}
	return perm
}

// Permute reorders lanes into canvas order
func Permute(lanes []Lane, perm []int) []Lane {
	out := make([]Lane, len(perm))
	for pos, idx := range perm {
		out[pos] = lanes[idx]
	}
	return out
}

// Invert turns a canvas-order permutation into index -> canvas position.
func Invert(perm []int) []int {
	inv := make([]int, len(perm))
	for pos, idx := range perm {
		inv[idx] = pos
	}
	return inv
}
