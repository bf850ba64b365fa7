// Package respond composes trauma-informed replies: a curated template as
// the base, optional oracle personalization on top, plus resources, safety
// actions, and a safety plan where the risk warrants one.
package respond

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"strings"
	"sync"

	"github.com/haven-ai/haven/pkg/lexicon"
	"github.com/haven-ai/haven/pkg/oracle"
)

// personalizeThreshold: above this confidence a supportive detection still
// gets the urgent voice.
const personalizeThreshold = 0.7

// SafetyPlan is the structured plan attached to immediate-risk replies.
type SafetyPlan struct {
	ImmediateActions  []string `json:"immediate_actions"`
	CopingStrategies  []string `json:"coping_strategies"`
	WarningSigns      []string `json:"warning_signs"`
	EmergencyContacts []string `json:"emergency_contacts"`
}

// NewSafetyPlan returns the standard plan.
func NewSafetyPlan() *SafetyPlan {
	return &SafetyPlan{
		ImmediateActions: []string{
			"Call 911 or go to the nearest emergency room if you're in immediate danger",
			"Remove any means of self-harm from your immediate environment",
			"Stay with a trusted person or in a public place",
			"Call a crisis hotline: 988 (Suicide & Crisis Lifeline)",
		},
		CopingStrategies: []string{
			"Practice deep breathing exercises",
			"Use grounding techniques (5-4-3-2-1 method)",
			"Reach out to a trusted friend or family member",
			"Engage in a calming activity you enjoy",
		},
		WarningSigns: []string{
			"Feeling hopeless or worthless",
			"Having thoughts of self-harm or suicide",
			"Feeling isolated or alone",
			"Changes in sleep or appetite",
		},
		EmergencyContacts: []string{
			"National Suicide Prevention Lifeline: 988",
			"Crisis Text Line: Text HOME to 741741",
			"Emergency Services: 911",
		},
	}
}

// Bundle is one composed reply with its supporting material.
type Bundle struct {
	Response      string           `json:"response"`
	Resources     []Resource       `json:"resources"`
	SafetyPlan    *SafetyPlan      `json:"safety_plan,omitempty"`
	ImmediateRisk bool             `json:"immediate_risk"`
	CrisisType    lexicon.Category `json:"crisis_type"`
	Confidence    float64          `json:"confidence"`
}

// Composer builds reply bundles. Template choice draws from an injected
// random source so callers can pin the sequence.
type Composer struct {
	mu     sync.Mutex
	rng    *rand.Rand
	oracle oracle.Completer

	maxTokens   int
	temperature float64
}

// Option configures a Composer.
type Option func(*Composer)

// WithRand sets the random source used for template selection.
func WithRand(rng *rand.Rand) Option {
	return func(c *Composer) { c.rng = rng }
}

// WithOracle enables oracle personalization of the base template.
func WithOracle(completer oracle.Completer) Option {
	return func(c *Composer) { c.oracle = completer }
}

// New creates a Composer. Without WithRand the source is seeded from the
// global source; without WithOracle replies stay on the templates.
func New(opts ...Option) *Composer {
	c := &Composer{
		rng:         rand.New(rand.NewSource(rand.Int63())),
		maxTokens:   200,
		temperature: 0.7,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Compose builds the reply for a detected crisis. It never fails: a broken
// oracle leaves the template reply standing.
func (c *Composer) Compose(ctx context.Context, category lexicon.Category, userMessage string, confidence float64, immediateRisk bool) *Bundle {
	kind := kindSupportive
	if immediateRisk || confidence > personalizeThreshold {
		kind = kindImmediate
	}

	base := c.pickTemplate(category, kind)
	response := base
	if c.oracle != nil {
		response = c.personalize(ctx, userMessage, base, category, immediateRisk)
	}

	bundle := &Bundle{
		Response:      response,
		Resources:     ResourcesFor(category, immediateRisk),
		ImmediateRisk: immediateRisk,
		CrisisType:    category,
		Confidence:    confidence,
	}
	if immediateRisk {
		bundle.SafetyPlan = NewSafetyPlan()
	}
	return bundle
}

func (c *Composer) pickTemplate(category lexicon.Category, kind templateKind) string {
	kinds, ok := responseTemplates[category]
	if !ok {
		return genericTemplate
	}
	templates := kinds[kind]
	if len(templates) == 0 {
		return genericTemplate
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	return templates[c.rng.Intn(len(templates))]
}

const personalizePrompt = `You are a compassionate crisis counselor. Generate a supportive, empathetic response for someone in a %s related to %s.

Guidelines:
- Be warm, non-judgmental, and validating
- Acknowledge their pain without minimizing it
- Offer hope and support
- Keep response under 150 words
- Use "I" statements to show care
- Avoid giving medical advice

User's message: %q
Base response: %q

Generate a personalized, empathetic response:`

// personalize asks the oracle to adapt the base template to the user's
// words. Short or refusal-shaped output is discarded in favor of the base.
func (c *Composer) personalize(ctx context.Context, userMessage, base string, category lexicon.Category, immediateRisk bool) string {
	situation := "crisis situation"
	if immediateRisk {
		situation = "immediate crisis"
	}

	prompt := fmt.Sprintf(personalizePrompt, situation, category, userMessage, base)
	out, err := c.oracle.Complete(ctx, prompt, c.maxTokens, c.temperature)
	if err != nil {
		log.Printf("[WARN] personalization unavailable, using template: %v", err)
		return base
	}

	out = strings.TrimSpace(out)
	if !usableReply(out) {
		return base
	}
	return out
}

// usableReply rejects output too short to be a real reply or containing
// refusal language.
func usableReply(s string) bool {
	if len(s) < 20 {
		return false
	}
	lower := strings.ToLower(s)
	for _, marker := range []string{"sorry", "can't help", "unable"} {
		if strings.Contains(lower, marker) {
			return false
		}
	}
	return true
}

// FallbackBundle is the reply of last resort when composition itself is
// broken. It is static and always safe to send.
func FallbackBundle(category lexicon.Category, immediateRisk bool) *Bundle {
	response := "I'm here to listen and support you. You don't have to face this alone. Please consider reaching out to a crisis hotline or mental health professional."
	if immediateRisk {
		response = "I'm very concerned about your safety right now. Please call 988 (Suicide & Crisis Lifeline) or 911 immediately. You don't have to face this alone."
	}

	bundle := &Bundle{
		Response:      response,
		Resources:     GeneralResources(3),
		ImmediateRisk: immediateRisk,
		CrisisType:    category,
		Confidence:    0.5,
	}
	if immediateRisk {
		bundle.SafetyPlan = NewSafetyPlan()
	}
	return bundle
}

// GeneralBundle is the supportive reply when no crisis was detected.
func GeneralBundle() *Bundle {
	return &Bundle{
		Response:   generalResponse,
		Resources:  GeneralResources(2),
		CrisisType: lexicon.CategoryGeneral,
	}
}

// SafetyNotice is the reply for input that failed validation. The leading
// recommendation comes from the validator.
func SafetyNotice(recommendation string) string {
	if recommendation == "" {
		recommendation = "Please rephrase your message."
	}
	return fmt.Sprintf(`Safety Notice

I cannot process this content safely. %s

If you're in immediate danger, please:
- Call 911 or emergency services
- Call 988 (Suicide & Crisis Lifeline)
- Go to your nearest emergency room

I'm here to help when you're ready to share in a safe way.`, recommendation)
}
