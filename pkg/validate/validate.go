// Package validate implements input safety screening. It decides whether raw
// text and image inputs may enter the detection pipeline at all.
//
// The load-bearing distinction: crisis disclosures ("I want to hurt myself")
// are never blocked; they MUST reach the classifier so the system can
// respond. Only content instructing harm or urging secrecy and isolation is
// refused.
package validate

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/haven-ai/haven/pkg/lexicon"
)

// MaxImageBytes is the size ceiling for image inputs.
const MaxImageBytes = 10 * 1024 * 1024 // 10 MiB

// Result is the outcome of screening one input.
type Result struct {
	IsSafe          bool     `json:"is_safe"`
	Warnings        []string `json:"warnings,omitempty"`
	BlockedReasons  []string `json:"blocked_reasons,omitempty"`
	Recommendations []string `json:"recommendations,omitempty"`
}

// Validator screens text and image inputs against the filter lists.
// The zero value is not usable; construct with New.
type Validator struct {
	harmful    []string // instructional / how-to phrasing, blocks
	dangerous  []string // isolation-promoting phrasing, blocks
	triggering []string // graphic-content phrasing, warns only
	urgency    []string // immediate-crisis indicators, warns only
}

// New returns a Validator with the default filter lists.
func New() *Validator {
	return &Validator{
		harmful:    defaultHarmfulContent,
		dangerous:  defaultDangerousAdvice,
		triggering: defaultTriggeringContent,
		urgency:    defaultUrgencyIndicators,
	}
}

// ExtendBlocked appends extra blocking phrases (from the overrides file).
func (v *Validator) ExtendBlocked(phrases []string) {
	for _, p := range phrases {
		v.harmful = append(v.harmful, lexicon.Fold(p))
	}
}

// Validate screens the given inputs. Either argument may be empty; a missing
// input is simply not validated, never an error.
func (v *Validator) Validate(text, imagePath string) Result {
	res := Result{IsSafe: true}

	if text != "" {
		v.screenText(text, &res)
	}
	if imagePath != "" {
		v.screenImage(imagePath, &res)
	}

	res.Recommendations = recommendations(&res)
	return res
}

func (v *Validator) screenText(text string, res *Result) {
	folded := lexicon.Fold(text)

	for _, p := range v.harmful {
		if strings.Contains(folded, p) {
			res.IsSafe = false
			res.BlockedReasons = append(res.BlockedReasons, fmt.Sprintf("potentially harmful content detected: %q", p))
		}
	}
	for _, p := range v.dangerous {
		if strings.Contains(folded, p) {
			res.IsSafe = false
			res.BlockedReasons = append(res.BlockedReasons, fmt.Sprintf("dangerous advice detected: %q", p))
		}
	}
	for _, p := range v.triggering {
		if strings.Contains(folded, p) {
			res.Warnings = append(res.Warnings, fmt.Sprintf("potentially triggering content: %q", p))
		}
	}
	for _, p := range v.urgency {
		if strings.Contains(folded, p) {
			res.Warnings = append(res.Warnings, fmt.Sprintf("immediate crisis indicator: %q", p))
		}
	}
}

// allowedImageExtensions mirrors the formats the vision package can decode.
var allowedImageExtensions = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true,
	".gif": true, ".bmp": true, ".webp": true,
}

func (v *Validator) screenImage(imagePath string, res *Result) {
	info, err := os.Stat(imagePath)
	if err != nil {
		res.IsSafe = false
		res.BlockedReasons = append(res.BlockedReasons, "image file not found")
		return
	}
	if info.Size() > MaxImageBytes {
		res.IsSafe = false
		res.BlockedReasons = append(res.BlockedReasons, fmt.Sprintf("image exceeds %d MiB size limit", MaxImageBytes/(1024*1024)))
	}
	ext := strings.ToLower(filepath.Ext(imagePath))
	if !allowedImageExtensions[ext] {
		res.IsSafe = false
		res.BlockedReasons = append(res.BlockedReasons, fmt.Sprintf("unsupported image format: %q", ext))
	}
}

func recommendations(res *Result) []string {
	var recs []string
	if len(res.BlockedReasons) > 0 {
		recs = append(recs,
			"Content has been blocked for safety reasons",
			"Please rephrase your message to avoid harmful content")
	}
	if len(res.Warnings) > 0 {
		recs = append(recs,
			"Please be mindful of potentially triggering content",
			"Consider reaching out to a mental health professional")
	}
	if !res.IsSafe {
		recs = append(recs,
			"This content cannot be processed safely",
			"Please contact a crisis hotline for immediate support")
	}
	return recs
}
