package assembler

import "journeymap/application/extraction"

// Resolution records a named reference that did not resolve exactly
type Resolution struct {
	Category string `json:"category"`
	Item     int    `json:"item"`
	Field    string `json:"field"`
	Query    string `json:"query"`
	Index    int    `json:"index"`
	Quality  string `json:"quality"`
}

// Drop records an item the assembler refused to emit
type Drop struct {
	Category string `json:"category"`
	Item     int    `json:"item"`
	Reason   string `json:"reason"`
}

// Report lists everything about an assembly that was not a clean match
type Report struct {
	Resolutions []Resolution `json:"resolutions,omitempty"`
	Dropped     []Drop       `json:"dropped,omitempty"`
}

// Fallbacks counts resolutions that landed on the first candidate because nothing matched
func (r Report) Fallbacks() int {
	n := 0
	for _, res := range r.Resolutions {
		if res.Quality == "fallback" {
			n++
		}
	}
	return n
}

// Clean reports whether every reference resolved exactly and nothing was dropped
func (r Report) Clean() bool {
	return len(r.Resolutions) == 0 && len(r.Dropped) == 0
}

// Drop reasons
const (
	ReasonUnresolved      = "reference has nothing to resolve against"
	ReasonNodeLimit       = "node limit reached"
	ReasonEdgeLimit       = "edge limit reached"
	ReasonIndexOutOfRange = "node index out of range"
	ReasonNodeDropped     = "references a dropped node"
	ReasonTooFewNodes     = "fewer than two nodes in cell"
)

func (r *Report) drop(c extraction.Category, item int, reason string) {
	r.Dropped = append(r.Dropped, Drop{Category: c.String(), Item: item, Reason: reason})
}
