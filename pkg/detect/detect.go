// Package detect implements crisis classification: keyword scoring over the
// lexicon, optionally augmented by a text-completion oracle, an embedding
// similarity detector, and a local ONNX classifier.
//
// Layering (cheap first):
//   - Layer 1: lexicon phrase scoring (always on, pure, deterministic)
//   - Layer 2: local ONNX model (optional, on-device)
//   - Layer 3: semantic similarity via chromem-go (optional)
//   - Layer 4: oracle structured assessment (optional, only when layer 1
//     already detected something)
//
// Augmentation never downgrades: a keyword detection stands even when the
// oracle disagrees or is unavailable. For a crisis system the dangerous
// failure mode is suppressing a disclosure, not over-flagging one.
package detect

import (
	"context"
	"log"
	"math"
	"sort"
	"strings"

	"github.com/haven-ai/haven/pkg/lexicon"
	"github.com/haven-ai/haven/pkg/oracle"
)

// DetectionThreshold is the minimum per-category confidence for a category
// to count as detected.
const DetectionThreshold = 0.1

// ImmediateConfidence is the combined-confidence level at or above which a
// result carries immediate risk. The risk assessor's top bucket uses the
// same constant.
const ImmediateConfidence = 0.8

// Severity is the per-category escalation level.
type Severity string

const (
	SeverityNone   Severity = "none"
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

var severityRank = map[Severity]int{
	SeverityNone:   0,
	SeverityLow:    1,
	SeverityMedium: 2,
	SeverityHigh:   3,
}

func maxSeverity(a, b Severity) Severity {
	if severityRank[b] > severityRank[a] {
		return b
	}
	return a
}

// CategoryScore is one detected category with its supporting signal.
type CategoryScore struct {
	Category     lexicon.Category `json:"category"`
	Confidence   float64          `json:"confidence"`
	Severity     Severity         `json:"severity"`
	Evidence     []string         `json:"evidence,omitempty"`
	KeywordHits  int              `json:"keyword_matches"`
	SeverityHits int              `json:"severity_indicators"`
}

// Result is an immutable per-call classification outcome.
type Result struct {
	CrisisDetected     bool            `json:"crisis_detected"`
	Categories         []CategoryScore `json:"categories,omitempty"`
	CombinedConfidence float64         `json:"combined_confidence"`
	ImmediateRisk      bool            `json:"immediate_risk"`

	// Assessment is the oracle's structured judgment, nil when the oracle
	// was not consulted or was unavailable.
	Assessment *Assessment `json:"oracle_assessment,omitempty"`
}

// Primary returns the highest-confidence detected category. Ties were
// already broken by lexicon iteration order during scoring.
func (r *Result) Primary() (lexicon.Category, bool) {
	if len(r.Categories) == 0 {
		return lexicon.CategoryGeneral, false
	}
	return r.Categories[0].Category, true
}

// HighestSeverity returns the strongest per-category severity in the result.
func (r *Result) HighestSeverity() Severity {
	s := SeverityNone
	for _, c := range r.Categories {
		s = maxSeverity(s, c.Severity)
	}
	return s
}

// Classifier combines the detection layers. Construct with New; the zero
// value is not usable.
type Classifier struct {
	registry *lexicon.Registry
	oracle   oracle.Completer
	semantic *SemanticDetector
	local    *LocalClassifier

	maxTokens   int
	temperature float64
}

// Option configures a Classifier.
type Option func(*Classifier)

// WithOracle attaches the text-completion oracle. Without it the classifier
// runs keyword-only.
func WithOracle(c oracle.Completer) Option {
	return func(cl *Classifier) { cl.oracle = c }
}

// WithSemantic attaches the embedding similarity detector.
func WithSemantic(sd *SemanticDetector) Option {
	return func(cl *Classifier) { cl.semantic = sd }
}

// WithLocal attaches the local ONNX classifier.
func WithLocal(lc *LocalClassifier) Option {
	return func(cl *Classifier) { cl.local = lc }
}

// New creates a Classifier over the global lexicon registry.
func New(opts ...Option) *Classifier {
	cl := &Classifier{
		registry:    lexicon.Get(),
		maxTokens:   200,
		temperature: 0.3,
	}
	for _, opt := range opts {
		opt(cl)
	}
	return cl
}

// Classify analyzes text for crisis signal. It never returns an error: every
// failure in an optional layer degrades to the keyword-only result. Given a
// deterministic oracle, identical text yields identical results.
func (c *Classifier) Classify(ctx context.Context, text string) *Result {
	result := &Result{}
	if strings.TrimSpace(text) == "" {
		return result
	}

	folded := lexicon.Fold(text)

	// Layer 1: lexicon scoring.
	for _, cat := range lexicon.Categories() {
		hits := c.registry.Scan(folded, cat)
		if hits.Keywords == 0 {
			continue
		}
		total := c.registry.KeywordCount(cat)
		conf := 0.7*float64(hits.Keywords)/float64(total) + 0.3*float64(hits.Severity)
		conf = math.Min(conf, 1.0)
		if conf <= DetectionThreshold {
			continue
		}
		result.Categories = append(result.Categories, CategoryScore{
			Category:     cat,
			Confidence:   conf,
			Severity:     severityFromHits(hits.Severity),
			Evidence:     hits.Evidence,
			KeywordHits:  hits.Keywords,
			SeverityHits: hits.Severity,
		})
	}
	sortByConfidence(result.Categories)

	combined := 0.0
	if len(result.Categories) > 0 {
		combined = result.Categories[0].Confidence
	}

	if len(result.Categories) > 0 {
		// Layer 2: local model boost.
		if c.local != nil && c.local.IsReady() {
			if lr, err := c.local.Classify(ctx, text); err == nil && lr.IsCrisis {
				combined = math.Max(combined, math.Min(lr.Confidence, 0.7))
			}
		}

		// Layer 3: semantic similarity can surface a category the lexicon
		// phrased differently, capped so it never drives risk past medium
		// on its own.
		if c.semantic != nil && c.semantic.IsReady() {
			if m, err := c.semantic.Detect(ctx, text); err == nil && m != nil {
				conf := math.Min(float64(m.Similarity), 0.5)
				c.upsert(result, m.Category, conf, SeverityLow, "semantic: "+m.MatchedText)
				combined = math.Max(combined, conf)
			}
		}

		// Layer 4: oracle assessment. Parse failures fail closed: the
		// keyword result stands with oracle fields defaulted.
		if c.oracle != nil {
			assessment, err := c.assessWithOracle(ctx, text)
			if err != nil {
				log.Printf("[WARN] oracle assessment unavailable, keyword-only result: %v", err)
			} else {
				result.Assessment = assessment
				if conf := assessment.ConfidenceScore(); conf > DetectionThreshold && lexicon.Valid(lexicon.Category(assessment.Category)) {
					c.upsert(result, lexicon.Category(assessment.Category), conf, assessment.SeverityLevel(), "model assessment")
				}
				combined = math.Max(combined, assessment.ConfidenceScore())
			}
		}
	}

	result.CrisisDetected = len(result.Categories) > 0
	result.CombinedConfidence = combined
	result.ImmediateRisk = result.HighestSeverity() == SeverityHigh || combined >= ImmediateConfidence
	return result
}

// upsert merges an augmentation signal into the category list: confidence
// and severity only ever move up, then the list is re-sorted.
func (c *Classifier) upsert(r *Result, cat lexicon.Category, conf float64, sev Severity, evidence string) {
	for i := range r.Categories {
		if r.Categories[i].Category == cat {
			r.Categories[i].Confidence = math.Max(r.Categories[i].Confidence, conf)
			r.Categories[i].Severity = maxSeverity(r.Categories[i].Severity, sev)
			r.Categories[i].Evidence = append(r.Categories[i].Evidence, evidence)
			sortByConfidence(r.Categories)
			return
		}
	}
	r.Categories = append(r.Categories, CategoryScore{
		Category:   cat,
		Confidence: conf,
		Severity:   sev,
		Evidence:   []string{evidence},
	})
	sortByConfidence(r.Categories)
}

// sortByConfidence orders descending; stable sort preserves the fixed
// category iteration order on ties.
func sortByConfidence(scores []CategoryScore) {
	sort.SliceStable(scores, func(i, j int) bool {
		return scores[i].Confidence > scores[j].Confidence
	})
}

// severityFromHits maps escalation phrase counts to a severity level: one
// urgency phrase is concerning, two or more reads as an articulated plan.
func severityFromHits(n int) Severity {
	switch {
	case n >= 2:
		return SeverityHigh
	case n == 1:
		return SeverityMedium
	default:
		return SeverityLow
	}
}
