package detect

import (
	"context"
	"reflect"
	"testing"

	"github.com/haven-ai/haven/pkg/lexicon"
	"github.com/haven-ai/haven/pkg/oracle"
)

func TestClassifyKeywordOnly(t *testing.T) {
	cl := New()
	ctx := context.Background()

	result := cl.Classify(ctx, "I want to cut myself tonight")

	if !result.CrisisDetected {
		t.Fatal("expected crisis detection")
	}
	primary, ok := result.Primary()
	if !ok || primary != lexicon.CategorySelfHarm {
		t.Errorf("primary = %q, want %q", primary, lexicon.CategorySelfHarm)
	}
	if result.CombinedConfidence <= DetectionThreshold {
		t.Errorf("combined confidence = %f, want > %f", result.CombinedConfidence, DetectionThreshold)
	}
	if result.Categories[0].Severity != SeverityMedium {
		t.Errorf("severity = %q, want medium (one escalation phrase)", result.Categories[0].Severity)
	}
	if result.ImmediateRisk {
		t.Error("single escalation phrase should not read as immediate risk")
	}
	if result.Assessment != nil {
		t.Error("no oracle configured, assessment should be nil")
	}
}

func TestClassifyNeutralText(t *testing.T) {
	cl := New()
	ctx := context.Background()

	for _, text := range []string{
		"I'm feeling really sad today",
		"the weather has been awful all week",
		"my exam is tomorrow and I'm nervous",
	} {
		result := cl.Classify(ctx, text)
		if result.CrisisDetected {
			t.Errorf("Classify(%q): unexpected detection %+v", text, result.Categories)
		}
		if result.CombinedConfidence != 0 {
			t.Errorf("Classify(%q): confidence = %f, want 0", text, result.CombinedConfidence)
		}
		if result.ImmediateRisk {
			t.Errorf("Classify(%q): unexpected immediate risk", text)
		}
	}
}

func TestClassifyEmptyInput(t *testing.T) {
	cl := New()
	result := cl.Classify(context.Background(), "   \n\t  ")
	if result.CrisisDetected || len(result.Categories) != 0 {
		t.Errorf("whitespace input produced detection: %+v", result)
	}
}

func TestClassifyWithOracle(t *testing.T) {
	fake := &oracle.Fake{Default: `{"category":"none","severity":"none","immediate_risk":false,"reasoning":"neutral"}`}
	fake.Respond("cut myself", `{"category":"self_harm","severity":"high","immediate_risk":true,"reasoning":"explicit plan with timeframe"}`)

	cl := New(WithOracle(fake))
	result := cl.Classify(context.Background(), "I want to cut myself tonight")

	if result.Assessment == nil {
		t.Fatal("expected oracle assessment")
	}
	if !result.Assessment.ImmediateRisk {
		t.Error("assessment immediate_risk lost in parse")
	}
	if result.CombinedConfidence < 0.8 {
		t.Errorf("combined = %f, want >= 0.8 after immediate-risk assessment", result.CombinedConfidence)
	}
	if !result.ImmediateRisk {
		t.Error("expected immediate risk")
	}
	if result.Categories[0].Severity != SeverityHigh {
		t.Errorf("severity = %q, want high after assessment merge", result.Categories[0].Severity)
	}
}

func TestClassifyOracleMalformedFailsClosed(t *testing.T) {
	fake := &oracle.Fake{Default: "I'm sorry, I can't evaluate this message."}

	cl := New(WithOracle(fake))
	result := cl.Classify(context.Background(), "I want to cut myself tonight")

	if result.Assessment != nil {
		t.Error("malformed oracle output should leave assessment nil")
	}
	if !result.CrisisDetected {
		t.Error("keyword detection must survive oracle failure")
	}
	if len(fake.Calls()) != 1 {
		t.Errorf("oracle calls = %d, want 1", len(fake.Calls()))
	}
}

func TestClassifyOracleSkippedWithoutKeywordSignal(t *testing.T) {
	fake := &oracle.Fake{Default: `{"category":"suicide","severity":"high","immediate_risk":true,"reasoning":"x"}`}

	cl := New(WithOracle(fake))
	result := cl.Classify(context.Background(), "the weather has been awful all week")

	if result.CrisisDetected {
		t.Error("oracle must not create detections on keyword-silent text")
	}
	if len(fake.Calls()) != 0 {
		t.Errorf("oracle consulted %d times on keyword-silent text, want 0", len(fake.Calls()))
	}
}

func TestClassifyDeterministic(t *testing.T) {
	fake := &oracle.Fake{Default: `{"category":"suicide","severity":"medium","immediate_risk":false,"reasoning":"ideation"}`}
	cl := New(WithOracle(fake))
	ctx := context.Background()

	text := "I feel hopeless and want to end it all"
	first := cl.Classify(ctx, text)
	second := cl.Classify(ctx, text)

	if !reflect.DeepEqual(first, second) {
		t.Errorf("classification not deterministic:\nfirst:  %+v\nsecond: %+v", first, second)
	}
}

func TestParseAssessment(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr bool
		want    Assessment
	}{
		{
			name: "plain json",
			raw:  `{"category":"suicide","severity":"high","immediate_risk":true,"reasoning":"stated plan"}`,
			want: Assessment{Category: "suicide", Severity: "high", ImmediateRisk: true, Reasoning: "stated plan"},
		},
		{
			name: "fenced json",
			raw:  "```json\n{\"category\":\"none\",\"severity\":\"none\",\"immediate_risk\":false,\"reasoning\":\"neutral\"}\n```",
			want: Assessment{Category: "none", Severity: "none", Reasoning: "neutral"},
		},
		{
			name: "mixed case normalized",
			raw:  `{"category":"Self_Harm","severity":"MEDIUM","immediate_risk":false,"reasoning":"r"}`,
			want: Assessment{Category: "self_harm", Severity: "medium", Reasoning: "r"},
		},
		{
			name:    "category outside schema",
			raw:     `{"category":"gambling","severity":"low","immediate_risk":false,"reasoning":"r"}`,
			wantErr: true,
		},
		{
			name:    "severity outside schema",
			raw:     `{"category":"suicide","severity":"critical","immediate_risk":false,"reasoning":"r"}`,
			wantErr: true,
		},
		{
			name:    "prose refusal",
			raw:     "I'm sorry, I cannot help with that request.",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseAssessment(tt.raw)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("parseAssessment(%q) = %+v, want error", tt.raw, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseAssessment(%q): %v", tt.raw, err)
			}
			if *got != tt.want {
				t.Errorf("parseAssessment = %+v, want %+v", *got, tt.want)
			}
		})
	}
}

func TestAssessmentConfidenceScore(t *testing.T) {
	tests := []struct {
		a    Assessment
		want float64
	}{
		{Assessment{Severity: "high"}, 0.8},
		{Assessment{Severity: "medium"}, 0.5},
		{Assessment{Severity: "low"}, 0.3},
		{Assessment{Severity: "none"}, 0.0},
		{Assessment{Severity: "low", ImmediateRisk: true}, 0.8},
	}
	for _, tt := range tests {
		if got := tt.a.ConfidenceScore(); got != tt.want {
			t.Errorf("ConfidenceScore(%+v) = %f, want %f", tt.a, got, tt.want)
		}
	}
}

func TestSeverityFromHits(t *testing.T) {
	if severityFromHits(0) != SeverityLow {
		t.Error("zero escalation phrases should read low")
	}
	if severityFromHits(1) != SeverityMedium {
		t.Error("one escalation phrase should read medium")
	}
	if severityFromHits(3) != SeverityHigh {
		t.Error("multiple escalation phrases should read high")
	}
}
