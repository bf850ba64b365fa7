package risk

import (
	"testing"

	"github.com/haven-ai/haven/pkg/detect"
)

func detected(conf float64, immediate bool) *detect.Result {
	return &detect.Result{
		CrisisDetected:     true,
		CombinedConfidence: conf,
		ImmediateRisk:      immediate,
	}
}

func TestAssessBuckets(t *testing.T) {
	tests := []struct {
		name   string
		result *detect.Result
		want   Level
	}{
		{"nil result", nil, LevelNone},
		{"no detection", &detect.Result{CombinedConfidence: 0.9}, LevelNone},
		{"below low threshold", detected(0.15, false), LevelNone},
		{"low", detected(0.25, false), LevelLow},
		{"medium boundary", detected(0.4, false), LevelMedium},
		{"high boundary", detected(0.6, false), LevelHigh},
		{"immediate boundary", detected(0.8, false), LevelImmediate},
		{"immediate flag overrides confidence", detected(0.3, true), LevelImmediate},
		{"maximum", detected(1.0, false), LevelImmediate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Assess(tt.result); got != tt.want {
				t.Errorf("Assess = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAssessMonotonic(t *testing.T) {
	prev := LevelNone
	for conf := 0.0; conf <= 1.0; conf += 0.05 {
		level := Assess(detected(conf, false))
		if level < prev {
			t.Fatalf("level decreased from %v to %v at confidence %f", prev, level, conf)
		}
		prev = level
	}
}

func TestLevelOrdering(t *testing.T) {
	ladder := []Level{LevelNone, LevelLow, LevelMedium, LevelHigh, LevelImmediate}
	for i := 1; i < len(ladder); i++ {
		if ladder[i] <= ladder[i-1] {
			t.Errorf("%v should order above %v", ladder[i], ladder[i-1])
		}
	}
}

func TestLevelRoundTrip(t *testing.T) {
	for _, l := range []Level{LevelNone, LevelLow, LevelMedium, LevelHigh, LevelImmediate} {
		if got := ParseLevel(l.String()); got != l {
			t.Errorf("ParseLevel(%q) = %v, want %v", l.String(), got, l)
		}
	}
	if got := ParseLevel("catastrophic"); got != LevelNone {
		t.Errorf("unknown name should parse to none, got %v", got)
	}
}

func TestRequiresUrgentResponse(t *testing.T) {
	if LevelMedium.RequiresUrgentResponse() {
		t.Error("medium should not require the urgent path")
	}
	if !LevelHigh.RequiresUrgentResponse() || !LevelImmediate.RequiresUrgentResponse() {
		t.Error("high and immediate should require the urgent path")
	}
}

func TestActionsFor(t *testing.T) {
	immediate := ActionsFor(LevelImmediate)
	if len(immediate) == 0 {
		t.Fatal("immediate level must carry actions")
	}
	if immediate[0].Name != "call_emergency" || immediate[0].Priority != PriorityCritical {
		t.Errorf("top immediate action = %+v, want critical call_emergency", immediate[0])
	}

	// Returned slice is a copy.
	immediate[0].Name = "mutated"
	if again := ActionsFor(LevelImmediate); again[0].Name != "call_emergency" {
		t.Error("ActionsFor must not expose the shared table")
	}

	if none := ActionsFor(LevelNone); len(none) != 1 || none[0].Name != "general_wellness" {
		t.Errorf("none level actions = %+v", none)
	}
}
