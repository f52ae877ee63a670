package valueobjects

import (
	"math"
	"strings"
)

// Emotion is the sentiment of an actor at a touchpoint
type Emotion string

const (
	EmotionPositive Emotion = "positive"
	EmotionNeutral  Emotion = "neutral"
	EmotionNegative Emotion = "negative"
)

// ParseEmotion normalizes a model-supplied emotion. Unknown values map to EmotionNeutral.
func ParseEmotion(s string) Emotion {
	switch e := Emotion(strings.ToLower(strings.TrimSpace(s))); e {
	case EmotionPositive, EmotionNegative:
		return e
	default:
		return EmotionNeutral
	}
}

// IsValid reports whether e is one of the known emotions
func (e Emotion) IsValid() bool {
	return e == EmotionPositive || e == EmotionNeutral || e == EmotionNegative
}

// ClampScore forces an emotion score into [-1, 1]. NaN becomes 0.
func ClampScore(score float64) float64 {
	if math.IsNaN(score) {
		return 0
	}
	return math.Max(-1, math.Min(1, score))
}
