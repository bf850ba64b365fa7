package detect

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/haven-ai/haven/pkg/lexicon"
	"github.com/haven-ai/haven/pkg/oracle"
)

// Assessment is the oracle's structured judgment of a message.
type Assessment struct {
	Category      string `json:"category"`
	Severity      string `json:"severity"`
	ImmediateRisk bool   `json:"immediate_risk"`
	Reasoning     string `json:"reasoning"`
}

// ConfidenceScore maps the assessment onto the keyword confidence scale so
// the two signals combine with max().
func (a *Assessment) ConfidenceScore() float64 {
	if a.ImmediateRisk {
		return 0.8
	}
	switch a.Severity {
	case "high":
		return 0.8
	case "medium":
		return 0.5
	case "low":
		return 0.3
	default:
		return 0.0
	}
}

// SeverityLevel converts the assessment's severity string to the detect
// scale. Immediate risk always reads as high.
func (a *Assessment) SeverityLevel() Severity {
	if a.ImmediateRisk {
		return SeverityHigh
	}
	switch a.Severity {
	case "high":
		return SeverityHigh
	case "medium":
		return SeverityMedium
	case "low":
		return SeverityLow
	default:
		return SeverityNone
	}
}

const assessmentPrompt = `You are a crisis triage assistant. Analyze the message below and respond with ONLY a JSON object, no other text.

Required fields:
- "category": one of "self_harm", "suicide", "violence", "abuse", "overdose", or "none"
- "severity": one of "none", "low", "medium", "high"
- "immediate_risk": true if the person appears to be in danger right now, otherwise false
- "reasoning": one short sentence

Message:
%s`

var validSeverities = map[string]bool{
	"none":   true,
	"low":    true,
	"medium": true,
	"high":   true,
}

// assessWithOracle asks the oracle for a structured judgment and parses it
// strictly. Any malformed or out-of-schema reply is an error; the caller
// falls back to the keyword-only result.
func (c *Classifier) assessWithOracle(ctx context.Context, text string) (*Assessment, error) {
	prompt := fmt.Sprintf(assessmentPrompt, text)
	raw, err := c.oracle.Complete(ctx, prompt, c.maxTokens, c.temperature)
	if err != nil {
		return nil, fmt.Errorf("oracle completion: %w", err)
	}
	return parseAssessment(raw)
}

func parseAssessment(raw string) (*Assessment, error) {
	extracted := oracle.ExtractJSON(raw)
	var a Assessment
	if err := json.Unmarshal([]byte(extracted), &a); err != nil {
		return nil, fmt.Errorf("malformed assessment json: %w", err)
	}
	a.Category = strings.ToLower(strings.TrimSpace(a.Category))
	a.Severity = strings.ToLower(strings.TrimSpace(a.Severity))
	if a.Category != "none" && !lexicon.Valid(lexicon.Category(a.Category)) {
		return nil, fmt.Errorf("assessment category %q outside schema", a.Category)
	}
	if !validSeverities[a.Severity] {
		return nil, fmt.Errorf("assessment severity %q outside schema", a.Severity)
	}
	return &a, nil
}
