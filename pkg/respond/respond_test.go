package respond

import (
	"context"
	"math/rand"
	"strings"
	"testing"

	"github.com/haven-ai/haven/pkg/lexicon"
	"github.com/haven-ai/haven/pkg/oracle"
)

func seeded(seed int64) *Composer {
	return New(WithRand(rand.New(rand.NewSource(seed))))
}

func TestComposeDeterministicWithSeed(t *testing.T) {
	ctx := context.Background()

	first := seeded(42).Compose(ctx, lexicon.CategorySuicide, "msg", 0.5, false)
	second := seeded(42).Compose(ctx, lexicon.CategorySuicide, "msg", 0.5, false)

	if first.Response != second.Response {
		t.Errorf("same seed produced different templates:\n%q\n%q", first.Response, second.Response)
	}
}

func TestComposeVoiceSelection(t *testing.T) {
	ctx := context.Background()
	urgent := responseTemplates[lexicon.CategorySuicide][kindImmediate]
	supportive := responseTemplates[lexicon.CategorySuicide][kindSupportive]

	contains := func(set []string, s string) bool {
		for _, x := range set {
			if x == s {
				return true
			}
		}
		return false
	}

	tests := []struct {
		name       string
		confidence float64
		immediate  bool
		wantSet    []string
	}{
		{"low confidence supportive", 0.5, false, supportive},
		{"high confidence urgent", 0.75, false, urgent},
		{"immediate flag urgent", 0.3, true, urgent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bundle := seeded(1).Compose(ctx, lexicon.CategorySuicide, "msg", tt.confidence, tt.immediate)
			if !contains(tt.wantSet, bundle.Response) {
				t.Errorf("response %q not drawn from expected template set", bundle.Response)
			}
		})
	}
}

func TestComposeSafetyPlanOnlyAtImmediate(t *testing.T) {
	ctx := context.Background()

	with := seeded(1).Compose(ctx, lexicon.CategorySelfHarm, "msg", 0.9, true)
	if with.SafetyPlan == nil {
		t.Error("immediate risk reply must carry a safety plan")
	}
	without := seeded(1).Compose(ctx, lexicon.CategorySelfHarm, "msg", 0.9, false)
	if without.SafetyPlan != nil {
		t.Error("non-immediate reply must not carry a safety plan")
	}
}

func TestComposeUnknownCategoryFallsBack(t *testing.T) {
	bundle := seeded(1).Compose(context.Background(), lexicon.CategoryGeneral, "msg", 0.3, false)
	if bundle.Response != genericTemplate {
		t.Errorf("response = %q, want generic template", bundle.Response)
	}
}

func TestPersonalization(t *testing.T) {
	ctx := context.Background()

	t.Run("usable output replaces template", func(t *testing.T) {
		fake := &oracle.Fake{Default: "I hear how heavy tonight feels for you, and I want you to know you're not carrying it alone."}
		bundle := New(WithRand(rand.New(rand.NewSource(1))), WithOracle(fake)).
			Compose(ctx, lexicon.CategorySuicide, "I feel hopeless", 0.9, true)
		if bundle.Response != fake.Default {
			t.Errorf("response = %q, want personalized output", bundle.Response)
		}
	})

	t.Run("short output keeps template", func(t *testing.T) {
		fake := &oracle.Fake{Default: "ok"}
		bundle := New(WithRand(rand.New(rand.NewSource(1))), WithOracle(fake)).
			Compose(ctx, lexicon.CategorySuicide, "I feel hopeless", 0.9, true)
		if bundle.Response == "ok" {
			t.Error("short oracle output must not replace the template")
		}
	})

	t.Run("refusal keeps template", func(t *testing.T) {
		fake := &oracle.Fake{Default: "I'm sorry, but I am unable to help with this request at all."}
		bundle := New(WithRand(rand.New(rand.NewSource(1))), WithOracle(fake)).
			Compose(ctx, lexicon.CategorySuicide, "I feel hopeless", 0.9, true)
		if strings.Contains(strings.ToLower(bundle.Response), "unable") {
			t.Error("refusal output must not replace the template")
		}
	})

	t.Run("oracle error keeps template", func(t *testing.T) {
		fake := &oracle.Fake{Err: context.DeadlineExceeded}
		bundle := New(WithRand(rand.New(rand.NewSource(1))), WithOracle(fake)).
			Compose(ctx, lexicon.CategorySuicide, "I feel hopeless", 0.9, true)
		if bundle.Response == "" {
			t.Error("oracle failure must still produce a reply")
		}
	})
}

func TestResourcesFor(t *testing.T) {
	suicide := ResourcesFor(lexicon.CategorySuicide, false)
	if len(suicide) == 0 || len(suicide) > maxResources {
		t.Fatalf("resource count = %d, want 1..%d", len(suicide), maxResources)
	}
	if suicide[0].Name != generalResources[0].Name {
		t.Error("general resources should lead the list")
	}

	immediate := ResourcesFor(lexicon.CategorySelfHarm, true)
	for _, r := range immediate {
		if r.Available != alwaysAvailable {
			t.Errorf("immediate-risk list includes non-24/7 resource %q", r.Name)
		}
	}
}

func TestFallbackBundle(t *testing.T) {
	b := FallbackBundle(lexicon.CategorySuicide, true)
	if b.Response == "" || len(b.Resources) == 0 {
		t.Error("fallback must always carry a reply and resources")
	}
	if b.SafetyPlan == nil {
		t.Error("immediate fallback must carry a safety plan")
	}
	if !strings.Contains(b.Response, "988") {
		t.Error("immediate fallback should name the crisis line")
	}
}

func TestSafetyNotice(t *testing.T) {
	notice := SafetyNotice("Avoid sharing specific methods.")
	if !strings.Contains(notice, "Avoid sharing specific methods.") {
		t.Error("notice should embed the validator recommendation")
	}
	if !strings.Contains(SafetyNotice(""), "Please rephrase your message.") {
		t.Error("empty recommendation should fall back to the default line")
	}
}
