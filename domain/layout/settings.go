// Package layout positions journey lanes and touchpoints on a 2-D canvas.
//
// Phases are vertical lanes laid out left to right, contexts are horizontal
// lanes laid out top to bottom. A (phase, context) pair is a cell; nodes that
// share a cell are spread on a ring around the cell center.
package layout

import (
	"errors"
	"fmt"
)

// LaneOrdering selects how lanes are sequenced on the canvas.
type LaneOrdering string

const (
	// OrderByField stable-sorts lanes by their extracted order value.
	OrderByField LaneOrdering = "order-field"
	// OrderByExtraction keeps the order in which lanes were extracted.
	OrderByExtraction LaneOrdering = "extraction"
)

// Settings holds every tunable of the layout engine.
type Settings struct {
	MinPhaseWidth    float64 `yaml:"min_phase_width" json:"minPhaseWidth"`
	CharWidth        float64 `yaml:"char_width" json:"charWidth"`
	PhaseTextPadding float64 `yaml:"phase_text_padding" json:"phaseTextPadding"`

	MinContextHeight   float64 `yaml:"min_context_height" json:"minContextHeight"`
	NameWrapColumns    int     `yaml:"name_wrap_columns" json:"nameWrapColumns"`
	DescWrapColumns    int     `yaml:"desc_wrap_columns" json:"descWrapColumns"`
	LineHeight         float64 `yaml:"line_height" json:"lineHeight"`
	ContextTextPadding float64 `yaml:"context_text_padding" json:"contextTextPadding"`

	LabelOffsetX   float64 `yaml:"label_offset_x" json:"labelOffsetX"`
	LabelOffsetY   float64 `yaml:"label_offset_y" json:"labelOffsetY"`
	PhasePadding   float64 `yaml:"phase_padding" json:"phasePadding"`
	ContextPadding float64 `yaml:"context_padding" json:"contextPadding"`

	// Strides used for lanes the grid does not know about yet.
	FallbackPhaseStride   float64 `yaml:"fallback_phase_stride" json:"fallbackPhaseStride"`
	FallbackContextStride float64 `yaml:"fallback_context_stride" json:"fallbackContextStride"`

	CircularRadius float64 `yaml:"circular_radius" json:"circularRadius"`
	ScaleRadius    bool    `yaml:"scale_radius" json:"scaleRadius"`
	MinArcSpacing  float64 `yaml:"min_arc_spacing" json:"minArcSpacing"`

	NodeWidth  float64 `yaml:"node_width" json:"nodeWidth"`
	NodeHeight float64 `yaml:"node_height" json:"nodeHeight"`

	LaneOrdering LaneOrdering `yaml:"lane_ordering" json:"laneOrdering"`
}

// DefaultSettings returns the stock layout geometry.
func DefaultSettings() Settings {
	return Settings{
		MinPhaseWidth:    250,
		CharWidth:        10,
		PhaseTextPadding: 60,

		MinContextHeight:   200,
		NameWrapColumns:    12,
		DescWrapColumns:    18,
		LineHeight:         30,
		ContextTextPadding: 80,

		LabelOffsetX:   180,
		LabelOffsetY:   100,
		PhasePadding:   100,
		ContextPadding: 80,

		FallbackPhaseStride:   200,
		FallbackContextStride: 150,

		CircularRadius: 70,
		ScaleRadius:    false,
		MinArcSpacing:  130,

		NodeWidth:  120,
		NodeHeight: 60,

		LaneOrdering: OrderByField,
	}
}

// Validate checks that the geometry is usable
func (s Settings) Validate() error {
	var errs []error
	if s.MinPhaseWidth <= 0 || s.MinContextHeight <= 0 {
		errs = append(errs, errors.New("minimum lane sizes must be positive"))
	}
	if s.NameWrapColumns <= 0 || s.DescWrapColumns <= 0 {
		errs = append(errs, errors.New("wrap columns must be positive"))
	}
	if s.CharWidth < 0 || s.LineHeight < 0 || s.PhasePadding < 0 || s.ContextPadding < 0 {
		errs = append(errs, errors.New("sizes and gaps cannot be negative"))
	}
	if s.CircularRadius < 0 || s.MinArcSpacing < 0 {
		errs = append(errs, errors.New("cluster radius cannot be negative"))
	}
	if s.NodeWidth <= 0 || s.NodeHeight <= 0 {
		errs = append(errs, errors.New("node footprint must be positive"))
	}
	switch s.LaneOrdering {
	case OrderByField, OrderByExtraction:
	default:
		errs = append(errs, fmt.Errorf("unknown lane ordering %q", s.LaneOrdering))
	}
	return errors.Join(errs...)
}

// HalfNode is the offset from a node's top-left corner to its center.
func (s Settings) HalfNode() (dx, dy float64) {
	return s.NodeWidth / 2, s.NodeHeight / 2
}
