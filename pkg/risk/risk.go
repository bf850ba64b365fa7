// Package risk maps a classification result onto the escalation ladder and
// names the recommended actions for each rung.
package risk

import (
	"fmt"

	"github.com/haven-ai/haven/pkg/detect"
)

// Level is a rung on the escalation ladder. Levels are totally ordered so
// callers can compare with < and >=.
type Level int

const (
	LevelNone Level = iota
	LevelLow
	LevelMedium
	LevelHigh
	LevelImmediate
)

var levelNames = map[Level]string{
	LevelNone:      "none",
	LevelLow:       "low",
	LevelMedium:    "medium",
	LevelHigh:      "high",
	LevelImmediate: "immediate",
}

func (l Level) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return fmt.Sprintf("Level(%d)", int(l))
}

// MarshalJSON emits the level name, not the ordinal.
func (l Level) MarshalJSON() ([]byte, error) {
	return []byte(`"` + l.String() + `"`), nil
}

// ParseLevel converts a level name back to its ordinal. Unknown names map
// to LevelNone.
func ParseLevel(s string) Level {
	for l, name := range levelNames {
		if name == s {
			return l
		}
	}
	return LevelNone
}

// Confidence thresholds for each rung. First match wins, highest first.
const (
	ThresholdImmediate = detect.ImmediateConfidence
	ThresholdHigh      = 0.6
	ThresholdMedium    = 0.4
	ThresholdLow       = 0.2
)

// Assess places a classification on the ladder. The level is monotonic in
// combined confidence, and an immediate-risk flag always yields
// LevelImmediate regardless of confidence.
func Assess(r *detect.Result) Level {
	if r == nil || !r.CrisisDetected {
		return LevelNone
	}
	switch {
	case r.ImmediateRisk || r.CombinedConfidence >= ThresholdImmediate:
		return LevelImmediate
	case r.CombinedConfidence >= ThresholdHigh:
		return LevelHigh
	case r.CombinedConfidence >= ThresholdMedium:
		return LevelMedium
	case r.CombinedConfidence >= ThresholdLow:
		return LevelLow
	default:
		return LevelNone
	}
}

// RequiresUrgentResponse reports whether the level calls for the urgent
// response path rather than a supportive one.
func (l Level) RequiresUrgentResponse() bool {
	return l >= LevelHigh
}
