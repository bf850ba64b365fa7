// Package lexicon provides the crisis phrase registry used for keyword-based
// detection. All phrase lists are registered once at first use and shared
// across the validator, classifier, and response composer.
//
// Design principles:
// - COMPILE ONCE: the registry is built on first Get(), not per-request
// - DRY: single source of truth for category phrase lists
// - SUBSTRING SEMANTICS: matching is plain substring search over folded text
//   ("cut" matches inside "cutting"), which is intentional: crisis language
//   is messy and partial matches carry signal
package lexicon

import (
	"strings"
	"sync"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// Category is a crisis classification label. The set is fixed and closed.
type Category string

const (
	CategorySelfHarm Category = "self_harm"
	CategorySuicide  Category = "suicide"
	CategoryViolence Category = "violence"
	CategoryAbuse    Category = "abuse"
	CategoryOverdose Category = "overdose"

	// CategoryGeneral is the label for input with no crisis signal. It never
	// appears in the registry; it exists so callers have a name for "none".
	CategoryGeneral Category = "general"
)

// Categories returns the crisis categories in fixed iteration order.
// Confidence ties between categories are broken by this order.
func Categories() []Category {
	return []Category{
		CategorySelfHarm,
		CategorySuicide,
		CategoryViolence,
		CategoryAbuse,
		CategoryOverdose,
	}
}

// Valid reports whether c is one of the fixed crisis categories (general excluded).
func Valid(c Category) bool {
	switch c {
	case CategorySelfHarm, CategorySuicide, CategoryViolence, CategoryAbuse, CategoryOverdose:
		return true
	}
	return false
}

// Fold normalizes text for phrase scanning: NFKC normalization followed by
// case folding. This collapses width/compatibility variants (fullwidth
// letters, ligatures) that would otherwise slip past a plain ToLower scan.
func Fold(s string) string {
	return cases.Fold().String(norm.NFKC.String(s))
}

// entry holds the phrase lists for one category.
type entry struct {
	keywords []string // trigger phrases
	severity []string // escalation phrases, only counted when a trigger hit
}

// Registry holds the phrase lists for all crisis categories.
type Registry struct {
	mu         sync.RWMutex
	byCategory map[Category]*entry
}

var (
	globalRegistry *Registry
	initOnce       sync.Once
)

// Get returns the global lexicon registry (singleton).
func Get() *Registry {
	initOnce.Do(func() {
		globalRegistry = newRegistry()
	})
	return globalRegistry
}

func newRegistry() *Registry {
	r := &Registry{byCategory: make(map[Category]*entry, 5)}
	r.registerSelfHarm()
	r.registerSuicide()
	r.registerViolence()
	r.registerAbuse()
	r.registerOverdose()
	return r
}

func (r *Registry) register(cat Category, keywords, severity []string) {
	r.byCategory[cat] = &entry{keywords: keywords, severity: severity}
}

// Extend appends extra phrases to a category. Used by the config overrides
// file; phrases are folded on insertion so scans stay consistent.
func (r *Registry) Extend(cat Category, keywords, severity []string) {
	if !Valid(cat) {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	e := r.byCategory[cat]
	for _, k := range keywords {
		e.keywords = append(e.keywords, Fold(k))
	}
	for _, s := range severity {
		e.severity = append(e.severity, Fold(s))
	}
}

// KeywordCount returns the number of trigger phrases registered for cat.
func (r *Registry) KeywordCount(cat Category) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if e, ok := r.byCategory[cat]; ok {
		return len(e.keywords)
	}
	return 0
}

// Hits is the result of scanning one category against a folded input.
type Hits struct {
	Keywords int      // trigger phrase matches
	Severity int      // escalation phrase matches
	Evidence []string // the phrases that matched, triggers first
}

// Scan counts trigger and escalation phrase matches for cat in folded text.
// Callers must pass text already run through Fold. Escalation phrases are
// only counted when at least one trigger phrase matched: urgency words like
// "tonight" escalate an existing signal, they never create one.
func (r *Registry) Scan(folded string, cat Category) Hits {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.byCategory[cat]
	if !ok {
		return Hits{}
	}

	var h Hits
	for _, k := range e.keywords {
		if strings.Contains(folded, k) {
			h.Keywords++
			h.Evidence = append(h.Evidence, k)
		}
	}
	if h.Keywords == 0 {
		return h
	}
	for _, s := range e.severity {
		if strings.Contains(folded, s) {
			h.Severity++
			h.Evidence = append(h.Evidence, s)
		}
	}
	return h
}

// ContainsAny reports whether any phrase in the list occurs in folded text,
// returning the first match. Shared helper for the validator's filter lists.
func ContainsAny(folded string, phrases []string) (string, bool) {
	for _, p := range phrases {
		if strings.Contains(folded, p) {
			return p, true
		}
	}
	return "", false
}
