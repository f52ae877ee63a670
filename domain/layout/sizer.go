package layout

import "unicode/utf8"

// LaneWidth returns the pixel width of a phase lane labelled with label.
// Text is measured in runes; there are no real font metrics involved.
func (s Settings) LaneWidth(label string) float64 {
	w := float64(utf8.RuneCountInString(label))*s.CharWidth + s.PhaseTextPadding
	return max(s.MinPhaseWidth, w)
}

// LaneHeight returns the pixel height of a context lane showing name and an
// optional description, each wrapped at its own column count.
func (s Settings) LaneHeight(name, description string) float64 {
	lines := wrappedLines(name, s.NameWrapColumns) + wrappedLines(description, s.DescWrapColumns)
	h := float64(lines)*s.LineHeight + s.ContextTextPadding
	return max(s.MinContextHeight, h)
}

func wrappedLines(text string, cols int) int {
	n := utf8.RuneCountInString(text)
	if n == 0 || cols <= 0 {
		return 0
	}
	return (n + cols - 1) / cols
}
