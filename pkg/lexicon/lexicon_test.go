package lexicon

import (
	"testing"
)

func TestRegistrySingleton(t *testing.T) {
	r1 := Get()
	r2 := Get()
	if r1 != r2 {
		t.Error("Get() should return the same registry instance")
	}
}

func TestRegistryHasPhrases(t *testing.T) {
	r := Get()
	for _, cat := range Categories() {
		if n := r.KeywordCount(cat); n < 5 {
			t.Errorf("category %s: expected at least 5 trigger phrases, got %d", cat, n)
		}
	}
}

func TestScan(t *testing.T) {
	r := Get()

	testCases := []struct {
		name         string
		text         string
		category     Category
		wantKeywords int
		wantSeverity int
	}{
		{
			name:         "self harm disclosure",
			text:         "I want to cut myself tonight",
			category:     CategorySelfHarm,
			wantKeywords: 2, // "cut" and "cut myself"
			wantSeverity: 1, // "tonight"
		},
		{
			name:         "suicide with plan",
			text:         "I have a plan to kill myself",
			category:     CategorySuicide,
			wantKeywords: 1,
			wantSeverity: 1,
		},
		{
			name:         "severity alone does not count",
			text:         "I'm feeling really sad today",
			category:     CategorySuicide,
			wantKeywords: 0,
			wantSeverity: 0,
		},
		{
			name:         "neutral text",
			text:         "the weather is lovely this afternoon",
			category:     CategorySelfHarm,
			wantKeywords: 0,
			wantSeverity: 0,
		},
		{
			name:         "substring match inside longer word",
			text:         "she has been cutting again",
			category:     CategorySelfHarm,
			wantKeywords: 2, // "cut" and "cutting"
			wantSeverity: 0,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			h := r.Scan(Fold(tc.text), tc.category)
			if h.Keywords != tc.wantKeywords {
				t.Errorf("keywords: got %d, want %d (evidence: %v)", h.Keywords, tc.wantKeywords, h.Evidence)
			}
			if h.Severity != tc.wantSeverity {
				t.Errorf("severity: got %d, want %d (evidence: %v)", h.Severity, tc.wantSeverity, h.Evidence)
			}
		})
	}
}

func TestFold(t *testing.T) {
	// Fullwidth and uppercase variants must fold to the same scan form.
	got := Fold("ＣＵＴ Ｍｙｓｅｌｆ")
	if got != "cut myself" {
		t.Errorf("Fold fullwidth: got %q", got)
	}
	if Fold("KILL MYSELF") != "kill myself" {
		t.Error("Fold should case-fold")
	}
}

func TestCategoryOrderFixed(t *testing.T) {
	want := []Category{CategorySelfHarm, CategorySuicide, CategoryViolence, CategoryAbuse, CategoryOverdose}
	got := Categories()
	if len(got) != len(want) {
		t.Fatalf("expected %d categories, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("position %d: got %s, want %s", i, got[i], want[i])
		}
	}
}
