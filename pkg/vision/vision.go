// Package vision analyzes images for visual crisis indicators. Two pixel
// heuristics run over the decoded image: red-pixel concentration as a
// potential blood signal, and edge density as a potential sharp-object
// signal. Neither is a diagnosis; both only raise concern for the
// downstream risk assessment.
package vision

import (
	"fmt"
	"image"
	"math"
	"os"

	// Decoders registered for AnalyzeFile.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

const (
	// redRatioThreshold is the fraction of strongly red pixels above which
	// the blood indicator fires.
	redRatioThreshold = 0.05

	// edgeRatioThreshold is the fraction of edge pixels above which the
	// sharp-object indicator fires.
	edgeRatioThreshold = 0.1
)

// Indicator is one visual signal found in an image.
type Indicator struct {
	Type        string  `json:"type"`
	Confidence  float64 `json:"confidence"`
	Description string  `json:"description"`
}

// Result holds the outcome of one image analysis.
type Result struct {
	CrisisDetected bool        `json:"crisis_detected"`
	Indicators     []Indicator `json:"indicators,omitempty"`
	Confidence     float64     `json:"confidence"`
}

// AnalyzeFile opens, decodes, and analyzes an image on disk. Unreadable or
// undecodable files return an error; the caller decides whether that is
// fatal for the request.
func AnalyzeFile(path string) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open image: %w", err)
	}
	defer func() { _ = f.Close() }()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return Analyze(img), nil
}

// Analyze runs both heuristics over a decoded image.
func Analyze(img image.Image) *Result {
	result := &Result{}

	bounds := img.Bounds()
	total := bounds.Dx() * bounds.Dy()
	if total == 0 {
		return result
	}

	if ratio := redRatio(img); ratio > redRatioThreshold {
		result.Indicators = append(result.Indicators, Indicator{
			Type:        "potential_blood",
			Confidence:  math.Min(ratio*2, 1.0),
			Description: "High concentration of red pixels detected",
		})
	}

	if ratio := edgeRatio(img); ratio > edgeRatioThreshold {
		result.Indicators = append(result.Indicators, Indicator{
			Type:        "potential_sharp_objects",
			Confidence:  math.Min(ratio, 1.0),
			Description: "High edge density detected, possible sharp objects",
		})
	}

	result.CrisisDetected = len(result.Indicators) > 0
	for _, ind := range result.Indicators {
		result.Confidence = math.Max(result.Confidence, ind.Confidence)
	}
	return result
}

// redRatio counts pixels that are strongly red and weakly green and blue,
// as a fraction of the image.
func redRatio(img image.Image) float64 {
	bounds := img.Bounds()
	total := bounds.Dx() * bounds.Dy()

	red := 0
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			// RGBA returns 16-bit channels; compare in 8-bit space.
			r8, g8, b8 := r>>8, g>>8, b>>8
			if r8 > 150 && g8 < 100 && b8 < 100 {
				red++
			}
		}
	}
	return float64(red) / float64(total)
}

// edgeRatio approximates edge density with a Sobel operator over the
// grayscale image. A pixel counts as an edge when its gradient magnitude
// clears a fixed threshold.
func edgeRatio(img image.Image) float64 {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w < 3 || h < 3 {
		return 0
	}

	gray := make([][]float64, h)
	for y := 0; y < h; y++ {
		gray[y] = make([]float64, w)
		for x := 0; x < w; x++ {
			r, g, b, _ := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			gray[y][x] = 0.299*float64(r>>8) + 0.587*float64(g>>8) + 0.114*float64(b>>8)
		}
	}

	const gradientThreshold = 128.0

	edges := 0
	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			gx := -gray[y-1][x-1] - 2*gray[y][x-1] - gray[y+1][x-1] +
				gray[y-1][x+1] + 2*gray[y][x+1] + gray[y+1][x+1]
			gy := -gray[y-1][x-1] - 2*gray[y-1][x] - gray[y-1][x+1] +
				gray[y+1][x-1] + 2*gray[y+1][x] + gray[y+1][x+1]
			if math.Sqrt(gx*gx+gy*gy) >= gradientThreshold {
				edges++
			}
		}
	}
	return float64(edges) / float64(w*h)
}
