package resolve

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

var phaseHint = IDHint{Prefixes: []string{"phase"}, Letters: "P"}

func TestResolve(t *testing.T) {
	tests := []struct {
		name       string
		candidates []string
		query      string
		hint       IDHint
		wantIndex  int
		wantQual   MatchQuality
	}{
		{
			name:       "short form is one-based",
			candidates: []string{"Assembly", "QC"},
			query:      "P2",
			hint:       phaseHint,
			wantIndex:  1,
			wantQual:   MatchByID,
		},
		{
			name:       "prefixed id is zero-based",
			candidates: []string{"Assembly", "QC", "Shipping"},
			query:      "phase-2",
			hint:       phaseHint,
			wantIndex:  2,
			wantQual:   MatchByID,
		},
		{
			name:       "short form with foreign letter is not an id",
			candidates: []string{"Assembly", "C2"},
			query:      "C2",
			hint:       phaseHint,
			wantIndex:  1,
			wantQual:   MatchExact,
		},
		{
			name:       "out of range id falls through to name rules",
			candidates: []string{"Assembly", "QC"},
			query:      "P9",
			hint:       phaseHint,
			wantIndex:  0,
			wantQual:   MatchFallback,
		},
		{
			name:       "P0 is not a valid one-based label",
			candidates: []string{"Assembly", "QC"},
			query:      "P0",
			hint:       phaseHint,
			wantIndex:  0,
			wantQual:   MatchFallback,
		},
		{
			name:       "exact match beats earlier superstring",
			candidates: []string{"Loading Dock A", "Loading Dock"},
			query:      "Loading Dock",
			wantIndex:  1,
			wantQual:   MatchExact,
		},
		{
			name:       "candidate contains query",
			candidates: []string{"Assembly Line", "Quality Check"},
			query:      "Quality",
			wantIndex:  1,
			wantQual:   MatchContains,
		},
		{
			name:       "query contains candidate",
			candidates: []string{"Warehouse", "Robot AGV"},
			query:      "the Robot AGV unit",
			wantIndex:  1,
			wantQual:   MatchContains,
		},
		{
			name:       "no match falls back to first",
			candidates: []string{"Worker A", "Robot AGV"},
			query:      "Forklift",
			wantIndex:  0,
			wantQual:   MatchFallback,
		},
		{
			name:       "empty query never matches by containment",
			candidates: []string{"Worker A", "Robot AGV"},
			query:      "",
			wantIndex:  0,
			wantQual:   MatchFallback,
		},
		{
			name:       "empty candidate name is skipped by containment",
			candidates: []string{"", "Robot AGV"},
			query:      "Robot",
			wantIndex:  1,
			wantQual:   MatchContains,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Resolve(tt.candidates, tt.query, tt.hint)

			assert.Equal(t, tt.wantIndex, got.Index)
			assert.Equal(t, tt.wantQual, got.Quality)
		})
	}
}

func TestResolve_EmptyCandidates(t *testing.T) {
	got := Resolve(nil, "anything", phaseHint)

	assert.Equal(t, -1, got.Index)
	assert.Equal(t, MatchNone, got.Quality)
}

func TestResolve_AlwaysInRange(t *testing.T) {
	candidates := []string{"Worker A", "Robot AGV", "Supervisor"}
	queries := []string{"", " ", "P1", "P4", "phase-1", "phase-99", "A1", "Worker", "Robot AGV", "ü", "[", "Supervisor of Robot AGV"}

	for i, q := range queries {
		t.Run(fmt.Sprintf("query_%d", i), func(t *testing.T) {
			got := Resolve(candidates, q, IDHint{Prefixes: []string{"actor", "phase"}, Letters: "APU"})

			assert.GreaterOrEqual(t, got.Index, 0)
			assert.Less(t, got.Index, len(candidates))
			assert.NotEqual(t, MatchNone, got.Quality)
		})
	}
}

func TestMatchQuality_String(t *testing.T) {
	assert.Equal(t, "id", MatchByID.String())
	assert.Equal(t, "exact", MatchExact.String())
	assert.Equal(t, "contains", MatchContains.String())
	assert.Equal(t, "fallback", MatchFallback.String())
	assert.Equal(t, "none", MatchNone.String())
	assert.True(t, MatchExact.Confident())
	assert.False(t, MatchContains.Confident())
}
