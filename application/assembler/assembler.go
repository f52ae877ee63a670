// Package assembler turns extracted entity lists into a laid-out journey.
//
// Names the model used to refer to actors, phases and contexts are resolved
// against the lists extracted so far, nodes are placed on the lane grid and
// every reference in the result points at an entity of the same journey.
package assembler

import (
	"fmt"
	"time"

	"journeymap/application/extraction"
	"journeymap/application/ports"
	"journeymap/domain/config"
	"journeymap/domain/core/aggregates"
	"journeymap/domain/core/valueobjects"
	"journeymap/domain/layout"
	"go.uber.org/zap"
)

// IntersectionPolicy decides which intersections survive assembly.
type IntersectionPolicy string

const (
	// KeepSuggested keeps every model-suggested intersection, whatever its node count.
	KeepSuggested IntersectionPolicy = "keep-suggested"
	// RequireShared drops suggestions whose cell holds fewer than two nodes.
	RequireShared IntersectionPolicy = "require-shared"
	// Derive ignores suggestions except for their descriptions and derives
	// an intersection for every cell holding at least two nodes.
	Derive IntersectionPolicy = "derive"
)

// ParseIntersectionPolicy validates a configured policy name
func ParseIntersectionPolicy(s string) (IntersectionPolicy, error) {
	switch p := IntersectionPolicy(s); p {
	case KeepSuggested, RequireShared, Derive:
		return p, nil
	case "":
		return KeepSuggested, nil
	default:
		return "", fmt.Errorf("unknown intersection policy %q", s)
	}
}

// SettingsSource hands out the layout settings a new session should use
type SettingsSource interface {
	Current() layout.Settings
}

// StaticSettings is a SettingsSource that never changes
type StaticSettings layout.Settings

// Current implements SettingsSource
func (s StaticSettings) Current() layout.Settings { return layout.Settings(s) }

// Meta identifies the journey being assembled
type Meta struct {
	JourneyID valueobjects.JourneyID
	OwnerID   string
	Title     string
	Scenario  string
	Now       time.Time
}

// Assembler builds journeys from extraction output. It is safe for
// concurrent use; each streaming generation gets its own Session.
type Assembler struct {
	settings SettingsSource
	policy   IntersectionPolicy
	domain   *config.DomainConfig
	metrics  ports.Metrics
	logger   *zap.Logger
}

// NewAssembler creates a new assembler
func NewAssembler(
	settings SettingsSource,
	policy IntersectionPolicy,
	domain *config.DomainConfig,
	metrics ports.Metrics,
	logger *zap.Logger,
) *Assembler {
	if settings == nil {
		settings = StaticSettings(layout.DefaultSettings())
	}
	if policy == "" {
		policy = KeepSuggested
	}
	if domain == nil {
		domain = config.DefaultDomainConfig()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Assembler{
		settings: settings,
		policy:   policy,
		domain:   domain,
		metrics:  metrics,
		logger:   logger,
	}
}

// Assemble builds a journey from a complete extraction in one pass.
func (a *Assembler) Assemble(meta Meta, result extraction.Result) (*aggregates.Journey, Report, error) {
	s := a.NewSession(meta)

	evs := []extraction.Event{
		extraction.ActorsExtracted{Actors: result.Actors},
		extraction.PhasesExtracted{Phases: result.Phases},
		extraction.ContextsExtracted{Contexts: result.Contexts},
		extraction.NodesExtracted{Nodes: result.Nodes},
		extraction.EdgesExtracted{Edges: result.Edges},
		extraction.IntersectionsExtracted{Intersections: result.Intersections},
		extraction.Completed{},
	}
	for _, ev := range evs {
		if _, err := s.Apply(ev); err != nil {
			return nil, s.report, err
		}
	}
	return s.Finish()
}

// NewSession starts an incremental assembly. Layout settings are captured
// now so a reload mid-stream cannot move lanes under placed nodes.
func (a *Assembler) NewSession(meta Meta) *Session {
	if meta.Now.IsZero() {
		meta.Now = time.Now().UTC()
	}
	if meta.JourneyID.IsZero() {
		meta.JourneyID = valueobjects.NewJourneyID()
	}
	return &Session{
		asm:      a,
		meta:     meta,
		settings: a.settings.Current(),
		seen:     make(map[extraction.Category]bool, len(extraction.Categories)),
		logger:   a.logger.With(zap.String("journeyID", meta.JourneyID.String())),
	}
}

func (a *Assembler) recordResolution(c extraction.Category, quality string) {
	if a.metrics != nil {
		a.metrics.RecordResolution(c.String(), quality)
	}
}

func (a *Assembler) recordDropped(c extraction.Category, reason string) {
	if a.metrics != nil {
		a.metrics.RecordDropped(c.String(), reason)
	}
}

func (a *Assembler) recordCategory(c extraction.Category, items int) {
	if a.metrics != nil {
		a.metrics.RecordCategory(c.String(), items)
	}
}
