// Package engine wires the pipeline: validate, detect, assess, respond,
// record. One Engine serves all sessions; Process is safe for concurrent
// use.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"math/rand"
	"strings"
	"time"

	"github.com/haven-ai/haven/pkg/config"
	"github.com/haven-ai/haven/pkg/detect"
	"github.com/haven-ai/haven/pkg/lexicon"
	"github.com/haven-ai/haven/pkg/oracle"
	"github.com/haven-ai/haven/pkg/respond"
	"github.com/haven-ai/haven/pkg/risk"
	"github.com/haven-ai/haven/pkg/session"
	"github.com/haven-ai/haven/pkg/validate"
	"github.com/haven-ai/haven/pkg/vision"
)

// Sentinel errors. Callers branch on these with errors.Is.
var (
	// ErrEmptyRequest means neither text nor an image was supplied.
	ErrEmptyRequest = errors.New("empty request")

	// ErrMalformedImage means the image could not be opened or decoded and
	// there was no text to fall back to.
	ErrMalformedImage = errors.New("malformed image")
)

// Request is one analysis request. Text and ImagePath may each be empty,
// but not both.
type Request struct {
	SessionID string `json:"session_id"`
	Text      string `json:"text,omitempty"`
	ImagePath string `json:"image_path,omitempty"`
}

// Response is the full pipeline outcome for one request.
type Response struct {
	SessionID string    `json:"session_id"`
	Timestamp time.Time `json:"timestamp"`

	Validation validate.Result `json:"validation"`

	CrisisDetected     bool                   `json:"crisis_detected"`
	Categories         []detect.CategoryScore `json:"categories,omitempty"`
	CombinedConfidence float64                `json:"combined_confidence"`
	ImmediateRisk      bool                   `json:"immediate_risk"`
	ImageIndicators    []vision.Indicator     `json:"image_indicators,omitempty"`

	RiskLevel     risk.Level    `json:"risk_level"`
	SafetyActions []risk.Action `json:"safety_actions,omitempty"`

	Reply      string              `json:"response"`
	Resources  []respond.Resource  `json:"resources,omitempty"`
	SafetyPlan *respond.SafetyPlan `json:"safety_plan,omitempty"`

	Warnings []string `json:"warnings,omitempty"`
}

// Engine runs the pipeline. Construct with New or NewWithComponents.
type Engine struct {
	validator  *validate.Validator
	classifier *detect.Classifier
	composer   *respond.Composer
	ledger     session.Ledger
}

// NewWithComponents assembles an Engine from explicit parts. Tests inject
// deterministic oracles and ledgers here.
func NewWithComponents(validator *validate.Validator, classifier *detect.Classifier, composer *respond.Composer, ledger session.Ledger) *Engine {
	return &Engine{
		validator:  validator,
		classifier: classifier,
		composer:   composer,
		ledger:     ledger,
	}
}

// New assembles an Engine from configuration: oracle client, optional
// semantic and local layers, the session ledger backend, and lexicon
// overrides.
func New(ctx context.Context, cfg *config.Config) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	validator := validate.New()

	var completer oracle.Completer
	if cfg.EnableOracle && cfg.OracleProvider != oracle.ProviderNone {
		completer = oracle.NewClient(oracle.ClientConfig{
			Provider: cfg.OracleProvider,
			APIKey:   cfg.OracleAPIKey,
			Model:    cfg.OracleModel,
			BaseURL:  cfg.OracleBaseURL,
			Timeout:  cfg.OracleTimeout,
		})
	}

	detectOpts := []detect.Option{}
	if completer != nil {
		detectOpts = append(detectOpts, detect.WithOracle(completer))
	}
	if cfg.EnableSemantics {
		if err := detect.CheckOllama(ctx, cfg.OllamaURL); err != nil {
			log.Printf("[WARN] semantic detector unavailable: %v", err)
		} else if sd, err := detect.NewSemanticDetector(cfg.OllamaURL); err != nil {
			log.Printf("[WARN] semantic detector unavailable: %v", err)
		} else if err := sd.LoadSeeds(ctx); err != nil {
			log.Printf("[WARN] semantic seed load failed: %v", err)
		} else {
			sd.SetThreshold(float32(cfg.SemanticThreshold))
			detectOpts = append(detectOpts, detect.WithSemantic(sd))
		}
	}
	if cfg.EnableLocalModel {
		if lcfg := detect.AutoDetectLocalConfig(); lcfg != nil {
			lc, err := detect.NewLocalClassifier(*lcfg)
			if err != nil {
				log.Printf("[WARN] local classifier unavailable: %v", err)
			} else {
				detectOpts = append(detectOpts, detect.WithLocal(lc))
			}
		} else {
			log.Printf("[INFO] local model enabled but no model directory found")
		}
	}

	composerOpts := []respond.Option{}
	if cfg.RandomSeed != 0 {
		composerOpts = append(composerOpts, respond.WithRand(rand.New(rand.NewSource(cfg.RandomSeed))))
	}
	if cfg.EnablePersonalization && completer != nil {
		composerOpts = append(composerOpts, respond.WithOracle(completer))
	}

	var ledger session.Ledger
	if cfg.RedisAddr != "" {
		rl, err := session.NewRedisFromAddr(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.SessionMaxAge)
		if err != nil {
			return nil, fmt.Errorf("session ledger: %w", err)
		}
		ledger = rl
	} else {
		ledger = session.NewMemory(session.WithMaxAge(cfg.SessionMaxAge))
	}

	if len(cfg.ExtraBlockedPhrases) > 0 {
		validator.ExtendBlocked(cfg.ExtraBlockedPhrases)
	}
	if cfg.OverridesPath != "" {
		overrides, err := config.LoadOverrides(cfg.OverridesPath)
		if err != nil {
			return nil, err
		}
		applyOverrides(validator, overrides)
	}

	return NewWithComponents(validator, detect.New(detectOpts...), respond.New(composerOpts...), ledger), nil
}

// applyOverrides folds deployment tuning into the lexicon and validator.
func applyOverrides(validator *validate.Validator, overrides *config.Overrides) {
	registry := lexicon.Get()
	for name, o := range overrides.Keywords {
		cat := lexicon.Category(name)
		if !lexicon.Valid(cat) {
			log.Printf("[WARN] overrides name unknown category %q, skipping", name)
			continue
		}
		registry.Extend(cat, o.Keywords, o.Severity)
	}
	if len(overrides.BlockedPhrases) > 0 {
		validator.ExtendBlocked(overrides.BlockedPhrases)
	}
}

// Process runs one request through the pipeline. The reply is never empty:
// rejected input gets a safety notice, detection and composition failures
// degrade toward templates, and only empty requests or image-only requests
// with unreadable images error out.
func (e *Engine) Process(ctx context.Context, req Request) (resp *Response, err error) {
	if strings.TrimSpace(req.Text) == "" && req.ImagePath == "" {
		return nil, ErrEmptyRequest
	}

	resp = &Response{
		SessionID: req.SessionID,
		Timestamp: time.Now(),
	}

	resp.Validation = e.validator.Validate(req.Text, req.ImagePath)
	if !resp.Validation.IsSafe {
		recommendation := ""
		if len(resp.Validation.Recommendations) > 0 {
			recommendation = resp.Validation.Recommendations[0]
		}
		resp.Reply = respond.SafetyNotice(recommendation)
		resp.Resources = respond.GeneralResources(2)
		e.record(ctx, req, resp)
		return resp, nil
	}
	resp.Warnings = resp.Validation.Warnings

	// Past this point the caller always gets a reply. A panicking layer
	// degrades to the static fallback instead of dropping the request.
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[ERROR] pipeline failure, serving fallback reply: %v", r)
			e.fallback(ctx, req, resp)
			err = nil
		}
	}()

	detection := e.classifier.Classify(ctx, req.Text)

	if req.ImagePath != "" {
		imageResult, err := vision.AnalyzeFile(req.ImagePath)
		if err != nil {
			if strings.TrimSpace(req.Text) == "" {
				return nil, fmt.Errorf("%w: %v", ErrMalformedImage, err)
			}
			resp.Warnings = append(resp.Warnings, "image could not be analyzed, continuing with text only")
		} else {
			detection = mergeImage(detection, imageResult)
			resp.ImageIndicators = imageResult.Indicators
		}
	}

	resp.CrisisDetected = detection.CrisisDetected
	resp.Categories = detection.Categories
	resp.CombinedConfidence = detection.CombinedConfidence
	resp.ImmediateRisk = detection.ImmediateRisk

	resp.RiskLevel = risk.Assess(detection)
	if resp.RiskLevel.RequiresUrgentResponse() {
		resp.SafetyActions = risk.ActionsFor(resp.RiskLevel)
	}

	var bundle *respond.Bundle
	if detection.CrisisDetected {
		primary, _ := detection.Primary()
		bundle = e.composer.Compose(ctx, primary, req.Text, detection.CombinedConfidence, detection.ImmediateRisk)
	} else {
		bundle = respond.GeneralBundle()
	}
	resp.Reply = bundle.Response
	resp.Resources = bundle.Resources
	resp.SafetyPlan = bundle.SafetyPlan

	e.record(ctx, req, resp)
	return resp, nil
}

// fallback fills resp with the last-resort bundle and records the
// interaction. Risk fields keep whatever the pipeline computed before it
// failed.
func (e *Engine) fallback(ctx context.Context, req Request, resp *Response) {
	category := lexicon.CategoryGeneral
	if primary, ok := firstCategory(resp.Categories); ok {
		category = primary
	}
	bundle := respond.FallbackBundle(category, resp.ImmediateRisk)
	resp.Reply = bundle.Response
	resp.Resources = bundle.Resources
	resp.SafetyPlan = bundle.SafetyPlan
	e.record(ctx, req, resp)
}

// mergeImage folds image indicators into the text detection. Confidence
// combines by max; a blood indicator surfaces the self-harm category when
// text alone did not.
func mergeImage(detection *detect.Result, img *vision.Result) *detect.Result {
	if !img.CrisisDetected {
		return detection
	}

	detection.CombinedConfidence = math.Max(detection.CombinedConfidence, img.Confidence)
	for _, ind := range img.Indicators {
		if ind.Type != "potential_blood" {
			continue
		}
		found := false
		for i := range detection.Categories {
			if detection.Categories[i].Category == lexicon.CategorySelfHarm {
				detection.Categories[i].Confidence = math.Max(detection.Categories[i].Confidence, ind.Confidence)
				detection.Categories[i].Evidence = append(detection.Categories[i].Evidence, "image: "+ind.Type)
				found = true
			}
		}
		if !found {
			detection.Categories = append(detection.Categories, detect.CategoryScore{
				Category:   lexicon.CategorySelfHarm,
				Confidence: ind.Confidence,
				Severity:   detect.SeverityMedium,
				Evidence:   []string{"image: " + ind.Type},
			})
		}
	}

	detection.CrisisDetected = len(detection.Categories) > 0
	detection.ImmediateRisk = detection.ImmediateRisk ||
		detection.CombinedConfidence >= detect.ImmediateConfidence
	return detection
}

// record writes the interaction to the ledger. Ledger failures must not
// block the reply; they are logged and dropped.
func (e *Engine) record(ctx context.Context, req Request, resp *Response) {
	if e.ledger == nil || req.SessionID == "" {
		return
	}

	crisisType := lexicon.CategoryGeneral
	if resp.CrisisDetected {
		if primary, ok := firstCategory(resp.Categories); ok {
			crisisType = primary
		}
	}

	rec := session.Record{
		SessionID:      req.SessionID,
		Timestamp:      resp.Timestamp,
		RiskLevel:      resp.RiskLevel,
		CrisisType:     crisisType,
		CrisisDetected: resp.CrisisDetected,
		ImmediateRisk:  resp.ImmediateRisk,
		TextLength:     len(req.Text),
		HadImage:       req.ImagePath != "",
	}
	if err := e.ledger.Record(ctx, rec); err != nil {
		log.Printf("[WARN] session ledger write failed: %v", err)
	}
}

func firstCategory(scores []detect.CategoryScore) (lexicon.Category, bool) {
	if len(scores) == 0 {
		return lexicon.CategoryGeneral, false
	}
	return scores[0].Category, true
}

// Summary exposes the ledger's session aggregate.
func (e *Engine) Summary(ctx context.Context, sessionID string) (*session.Summary, error) {
	if e.ledger == nil {
		return &session.Summary{SessionID: sessionID}, nil
	}
	return e.ledger.Summary(ctx, sessionID)
}

// Close releases the ledger and any model resources.
func (e *Engine) Close() error {
	if e.ledger == nil {
		return nil
	}
	return e.ledger.Close()
}
