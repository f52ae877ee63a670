// Package resolve maps free-text entity references produced by the
// extraction model back to indices of already extracted entities.
package resolve

import (
	"regexp"
	"strconv"
	"strings"
)

// MatchQuality describes which rule produced a resolution.
type MatchQuality int

const (
	// MatchNone is only returned for an empty candidate list.
	MatchNone MatchQuality = iota
	MatchFallback
	MatchContains
	MatchExact
	MatchByID
)

// String returns the label used in logs and metrics
func (q MatchQuality) String() string {
	switch q {
	case MatchByID:
		return "id"
	case MatchExact:
		return "exact"
	case MatchContains:
		return "contains"
	case MatchFallback:
		return "fallback"
	default:
		return "none"
	}
}

// Confident reports whether the match is at least an exact name match.
func (q MatchQuality) Confident() bool {
	return q >= MatchExact
}

// IDHint enables the id-pattern shortcut for one entity category.
// Prefixes match "<prefix>-N" with N 0-based, Letters match the
// short form "XN" with N 1-based.
type IDHint struct {
	Prefixes []string
	Letters  string
}

// Match is the outcome of a resolution.
type Match struct {
	Index   int
	Quality MatchQuality
}

var shortForm = regexp.MustCompile(`^([A-Z])(\d+)$`)

// Resolve returns the index of the candidate the query most likely refers to.
// It never returns an out-of-range index for a non-empty candidate list and
// falls back to index 0 when nothing matches.
func Resolve(candidates []string, query string, hint IDHint) Match {
	if len(candidates) == 0 {
		return Match{Index: -1, Quality: MatchNone}
	}

	if idx, ok := matchID(len(candidates), query, hint); ok {
		return Match{Index: idx, Quality: MatchByID}
	}

	for i, name := range candidates {
		if name == query {
			return Match{Index: i, Quality: MatchExact}
		}
	}

	if query != "" {
		for i, name := range candidates {
			if name == "" {
				continue
			}
			if strings.Contains(name, query) || strings.Contains(query, name) {
				return Match{Index: i, Quality: MatchContains}
			}
		}
	}

	return Match{Index: 0, Quality: MatchFallback}
}

func matchID(n int, query string, hint IDHint) (int, bool) {
	for _, prefix := range hint.Prefixes {
		if prefix == "" {
			continue
		}
		rest, ok := strings.CutPrefix(query, prefix+"-")
		if !ok || !allDigits(rest) {
			continue
		}
		if idx, err := strconv.Atoi(rest); err == nil && idx >= 0 && idx < n {
			return idx, true
		}
	}

	if hint.Letters == "" {
		return 0, false
	}
	m := shortForm.FindStringSubmatch(query)
	if m == nil || !strings.Contains(hint.Letters, m[1]) {
		return 0, false
	}
	num, err := strconv.Atoi(m[2])
	if err != nil {
		return 0, false
	}
	if idx := num - 1; idx >= 0 && idx < n {
		return idx, true
	}
	return 0, false
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
