package extraction

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Number is a JSON number that also accepts numeric strings and null.
type Number float64

// UnmarshalJSON implements json.Unmarshaler
func (n *Number) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*n = 0
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			*n = 0
			return nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("not a number: %q", s)
		}
		*n = Number(f)
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*n = Number(f)
	return nil
}

// Int rounds the number to the nearest integer
func (n Number) Int() int {
	f := float64(n)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return int(math.Round(f))
}

// RawActor is an actor as the model describes it
type RawActor struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Description string `json:"description"`
}

// RawPhase is a time lane as the model describes it
type RawPhase struct {
	Name     string `json:"name"`
	Order    Number `json:"order"`
	Duration string `json:"duration"`
}

// RawContext is a space lane as the model describes it
type RawContext struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Order       Number `json:"order"`
}

// RawNode is a touchpoint referencing its actor, phase and context by name
type RawNode struct {
	UserName     string `json:"userName"`
	PhaseName    string `json:"phaseName"`
	ContextName  string `json:"contextName"`
	Action       string `json:"action"`
	Emotion      string `json:"emotion"`
	EmotionScore Number `json:"emotionScore"`
	PainPoint    string `json:"painPoint"`
	Opportunity  string `json:"opportunity"`
}

// RawEdge connects two nodes by their position in the nodes list
type RawEdge struct {
	FromNodeIndex Number `json:"fromNodeIndex"`
	ToNodeIndex   Number `json:"toNodeIndex"`
	Description   string `json:"description"`
}

// RawIntersection is a model-suggested meeting point of several actors
type RawIntersection struct {
	PhaseName   string   `json:"phaseName"`
	ContextName string   `json:"contextName"`
	UserNames   []string `json:"userNames"`
	Description string   `json:"description"`
}
