package detect

// Local ONNX text classification over a distress-detection model. Runs fully
// on-device; inference needs no network. The detector degrades gracefully:
// when no model directory is present it reports not ready and the classifier
// skips this layer.
//
// Build:
// - Standard: go build (pure Go backend)
// - With ORT: go build -tags ORT (ONNX Runtime, faster)

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"

	"github.com/knights-analytics/hugot"
	"github.com/knights-analytics/hugot/options"
	"github.com/knights-analytics/hugot/pipelines"
)

// LocalConfig configures the on-device classifier.
type LocalConfig struct {
	// ModelPath is the directory holding model.onnx plus tokenizer files.
	ModelPath string

	// OnnxLibraryPath is the directory containing libonnxruntime. Empty
	// selects the pure Go backend.
	OnnxLibraryPath string
}

// AutoDetectLocalConfig looks for a usable model directory: the
// HAVEN_LOCAL_MODEL_PATH env var first, then ./models/distress. Returns nil
// when no model is present.
func AutoDetectLocalConfig() *LocalConfig {
	candidates := []string{
		os.Getenv("HAVEN_LOCAL_MODEL_PATH"),
		"./models/distress",
	}
	for _, dir := range candidates {
		if dir == "" {
			continue
		}
		if _, err := os.Stat(filepath.Join(dir, "model.onnx")); err == nil {
			return &LocalConfig{
				ModelPath:       dir,
				OnnxLibraryPath: defaultOnnxPath(),
			}
		}
	}
	return nil
}

func defaultOnnxPath() string {
	paths := []string{
		"/usr/lib/libonnxruntime.so",
		"/usr/local/lib/libonnxruntime.so",
		"/opt/homebrew/lib/libonnxruntime.dylib",
		"/usr/local/lib/libonnxruntime.dylib",
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return filepath.Dir(p)
		}
	}
	return ""
}

// LocalClassifier wraps a hugot text classification pipeline.
type LocalClassifier struct {
	session  *hugot.Session
	pipeline *pipelines.TextClassificationPipeline
	mu       sync.RWMutex
	ready    bool
}

// LocalResult is a single on-device classification.
type LocalResult struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
	IsCrisis   bool    `json:"is_crisis"`
}

// NewLocalClassifier initializes the session and pipeline. It tries the
// ONNX Runtime backend when a library path is configured and falls back to
// the pure Go backend.
func NewLocalClassifier(cfg LocalConfig) (*LocalClassifier, error) {
	session, err := newSession(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	pipeline, err := hugot.NewPipeline(session, hugot.TextClassificationConfig{
		ModelPath: cfg.ModelPath,
		Name:      "distress-classifier",
	})
	if err != nil {
		if derr := session.Destroy(); derr != nil {
			log.Printf("[WARN] session cleanup failed: %v", derr)
		}
		return nil, fmt.Errorf("failed to create pipeline: %w", err)
	}

	log.Printf("[INFO] local classifier initialized (model: %s)", cfg.ModelPath)
	return &LocalClassifier{session: session, pipeline: pipeline, ready: true}, nil
}

func newSession(cfg LocalConfig) (*hugot.Session, error) {
	if cfg.OnnxLibraryPath != "" {
		session, err := hugot.NewORTSession(options.WithOnnxLibraryPath(cfg.OnnxLibraryPath))
		if err == nil {
			return session, nil
		}
		log.Printf("[WARN] ONNX Runtime unavailable, falling back to Go backend: %v", err)
	}
	return hugot.NewGoSession()
}

// IsReady reports whether the pipeline is initialized.
func (lc *LocalClassifier) IsReady() bool {
	lc.mu.RLock()
	defer lc.mu.RUnlock()
	return lc.ready
}

// isCrisisLabel maps label conventions across distress models.
func isCrisisLabel(label string) bool {
	switch label {
	case "crisis", "distress", "DISTRESS", "LABEL_1":
		return true
	default:
		return false
	}
}

// Classify runs inference over a single text.
func (lc *LocalClassifier) Classify(ctx context.Context, text string) (LocalResult, error) {
	lc.mu.RLock()
	defer lc.mu.RUnlock()

	if !lc.ready || lc.pipeline == nil {
		return LocalResult{}, fmt.Errorf("local classifier not ready")
	}

	result, err := lc.pipeline.RunPipeline([]string{text})
	if err != nil {
		return LocalResult{}, fmt.Errorf("classification failed: %w", err)
	}
	if len(result.ClassificationOutputs) == 0 || len(result.ClassificationOutputs[0]) == 0 {
		return LocalResult{}, fmt.Errorf("no classification output")
	}

	out := result.ClassificationOutputs[0][0]
	return LocalResult{
		Label:      out.Label,
		Confidence: float64(out.Score),
		IsCrisis:   isCrisisLabel(out.Label),
	}, nil
}

// Close releases model resources.
func (lc *LocalClassifier) Close() error {
	lc.mu.Lock()
	defer lc.mu.Unlock()

	lc.ready = false
	if lc.session != nil {
		if err := lc.session.Destroy(); err != nil {
			return fmt.Errorf("failed to destroy session: %w", err)
		}
	}
	return nil
}
