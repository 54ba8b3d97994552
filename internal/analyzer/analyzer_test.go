package analyzer

import (
	"image"
	"image/color"
	"image/draw"
	"testing"
)

var paper = color.RGBA{0xfa, 0xfa, 0xfa, 0xff}

func frame(w, h int, bg color.Color, boxes ...image.Rectangle) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(bg), image.Point{}, draw.Src)
	for _, r := range boxes {
		draw.Draw(img, r, image.NewUniform(color.RGBA{0xda, 0x29, 0x1c, 0xff}), image.Point{}, draw.Src)
	}
	return img
}

func TestContrastDetector(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 200, 200))
	for y := 50; y < 150; y++ {
		for x := 50; x < 150; x++ {
			img.SetGray(x, y, color.Gray{Y: 255})
		}
	}

	regions, err := NewContrastDetector().Detect(img)
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	if len(regions) != 1 {
		t.Fatalf("Expected one region, got %d", len(regions))
	}

	r := regions[0]
	if r.Kind != "molecule" {
		t.Errorf("Expected molecule, got %s", r.Kind)
	}
	if r.Rect.Dx() < 100 || r.Rect.Dy() < 100 || !image.Rect(40, 40, 160, 160).Eq(r.Rect.Union(image.Rect(40, 40, 160, 160))) {
		t.Errorf("Region does not match the square: %v", r.Rect)
	}
	t.Logf("Region: %v (%s, %.2f)", r.Rect, r.Kind, r.Confidence)
}

func TestBackgroundDetector(t *testing.T) {
	img := frame(100, 80, paper, image.Rect(20, 10, 40, 30), image.Rect(60, 50, 63, 53), image.Rect(90, 5, 91, 6))

	regions, err := NewBackgroundDetector(paper).Detect(img)
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	// Одиночный пиксель отсекается MinArea
	if len(regions) != 2 {
		t.Fatalf("Expected 2 regions, got %v", regions)
	}
	if !regions[0].Rect.Eq(image.Rect(20, 10, 40, 30)) || regions[0].Kind != "molecule" {
		t.Errorf("Unexpected first region %+v", regions[0])
	}
	if !regions[1].Rect.Eq(image.Rect(60, 50, 63, 53)) || regions[1].Kind != "fragment" {
		t.Errorf("Unexpected second region %+v", regions[1])
	}
}

func TestInspect(t *testing.T) {
	bg := NewBackgroundDetector(paper)

	tests := []struct {
		name        string
		img         image.Image
		d           Detector
		wantBlank   bool
		wantClipped bool
	}{
		{"centred", frame(100, 100, paper, image.Rect(30, 30, 70, 70)), bg, false, false},
		{"blank", frame(100, 100, paper), bg, true, false},
		{"left edge", frame(100, 100, paper, image.Rect(0, 30, 40, 70)), bg, false, true},
		{"bottom edge", frame(100, 100, paper, image.Rect(30, 60, 70, 99)), bg, false, true},
		{"contrast centred", frame(100, 100, paper, image.Rect(30, 30, 70, 70)), NewContrastDetector(), false, false},
		{"contrast clipped", frame(100, 100, paper, image.Rect(0, 30, 40, 70)), NewContrastDetector(), false, true},
		{"contrast blank", frame(100, 100, paper), NewContrastDetector(), true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ins, err := Inspect(tt.d, tt.img)
			if err != nil {
				t.Fatalf("Inspect failed: %v", err)
			}
			if ins.Blank != tt.wantBlank || ins.Clipped != tt.wantClipped {
				t.Errorf("Got blank=%v clipped=%v (%+v)", ins.Blank, ins.Clipped, ins)
			}
			t.Logf("%s: %+v", tt.name, ins)
		})
	}

	ins, _ := Inspect(bg, frame(100, 100, paper, image.Rect(25, 25, 75, 75)))
	if ins.Coverage != 0.25 {
		t.Errorf("Expected coverage 0.25, got %f", ins.Coverage)
	}
}

func TestDetectorRegistry(t *testing.T) {
	tests := []struct {
		variant string
		wantErr bool
	}{
		{"contrast", false},
		{"", false}, // default
		{"background", false},
		{"ocr", true},
		{"invalid", true},
	}

	for _, tt := range tests {
		t.Run(tt.variant, func(t *testing.T) {
			detector, err := NewDetector(tt.variant, paper)
			if tt.wantErr {
				if err == nil {
					t.Error("Expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Errorf("Unexpected error: %v", err)
			}
			if detector == nil {
				t.Error("Expected detector, got nil")
			}
		})
	}
}
