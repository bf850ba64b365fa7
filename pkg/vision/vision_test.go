package vision

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func solidImage(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func TestAnalyzeRedDominance(t *testing.T) {
	img := solidImage(32, 32, color.RGBA{R: 200, G: 20, B: 20, A: 255})

	result := Analyze(img)

	if !result.CrisisDetected {
		t.Fatal("expected detection on a strongly red image")
	}
	found := false
	for _, ind := range result.Indicators {
		if ind.Type == "potential_blood" {
			found = true
			if ind.Confidence != 1.0 {
				t.Errorf("fully red image confidence = %f, want 1.0", ind.Confidence)
			}
		}
	}
	if !found {
		t.Errorf("missing potential_blood indicator: %+v", result.Indicators)
	}
}

func TestAnalyzeNeutralImage(t *testing.T) {
	img := solidImage(32, 32, color.RGBA{R: 200, G: 200, B: 200, A: 255})

	result := Analyze(img)

	if result.CrisisDetected {
		t.Errorf("uniform gray image should carry no indicators: %+v", result.Indicators)
	}
	if result.Confidence != 0 {
		t.Errorf("confidence = %f, want 0", result.Confidence)
	}
}

func TestAnalyzeEdgeDensity(t *testing.T) {
	// Vertical black and white stripes, one pixel wide: almost every
	// interior pixel sits on a strong gradient.
	img := image.NewRGBA(image.Rect(0, 0, 32, 32))
	for y := 0; y < 32; y++ {
		for x := 0; x < 32; x++ {
			if x%2 == 0 {
				img.Set(x, y, color.RGBA{A: 255})
			} else {
				img.Set(x, y, color.RGBA{R: 255, G: 255, B: 255, A: 255})
			}
		}
	}

	result := Analyze(img)

	found := false
	for _, ind := range result.Indicators {
		if ind.Type == "potential_sharp_objects" {
			found = true
		}
	}
	if !found {
		t.Errorf("high-contrast stripes should fire the edge indicator: %+v", result.Indicators)
	}
}

func TestAnalyzeFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "red.png")

	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := png.Encode(f, solidImage(16, 16, color.RGBA{R: 220, G: 10, B: 10, A: 255})); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}

	result, err := AnalyzeFile(path)
	if err != nil {
		t.Fatalf("AnalyzeFile: %v", err)
	}
	if !result.CrisisDetected {
		t.Error("expected detection from the encoded red image")
	}
}

func TestAnalyzeFileErrors(t *testing.T) {
	if _, err := AnalyzeFile(filepath.Join(t.TempDir(), "missing.png")); err == nil {
		t.Error("missing file should error")
	}

	garbage := filepath.Join(t.TempDir(), "garbage.png")
	if err := os.WriteFile(garbage, []byte("not an image"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := AnalyzeFile(garbage); err == nil {
		t.Error("undecodable file should error")
	}
}
