package analyzer

import "image"

// Region is a connected area of drawn content in a frame
type Region struct {
	Rect       image.Rectangle
	Kind       string  // "molecule", "fragment"
	Confidence float64 // 0.0-1.0
}

// Detector finds content regions in a rendered frame
type Detector interface {
	Detect(img image.Image) ([]Region, error)
}

// BorderMargin is how close to the frame edge content may come before the
// frame counts as clipped. Edge filters lose a few pixels at the border.
const BorderMargin = 4

// Inspection summarizes one rendered frame.
type Inspection struct {
	Content  image.Rectangle // union of all regions
	Regions  int
	Coverage float64 // content box area / frame area
	Blank    bool
	Clipped  bool
}

// Inspect runs d over img and reports whether the frame is empty or its
// content reaches the border.
func Inspect(d Detector, img image.Image) (Inspection, error) {
	regions, err := d.Detect(img)
	if err != nil {
		return Inspection{}, err
	}

	var ins Inspection
	for _, r := range regions {
		ins.Content = ins.Content.Union(r.Rect)
	}
	ins.Regions = len(regions)
	ins.Blank = ins.Content.Empty()
	if ins.Blank {
		return ins, nil
	}

	b := img.Bounds()
	if area := b.Dx() * b.Dy(); area > 0 {
		ins.Coverage = float64(ins.Content.Dx()*ins.Content.Dy()) / float64(area)
	}
	ins.Clipped = ins.Content.Min.X <= b.Min.X+BorderMargin ||
		ins.Content.Min.Y <= b.Min.Y+BorderMargin ||
		ins.Content.Max.X >= b.Max.X-BorderMargin ||
		ins.Content.Max.Y >= b.Max.Y-BorderMargin
	return ins, nil
}

// classify labels the largest region as the molecule and the rest as fragments.
func classify(rects []image.Rectangle, minArea int, confidence float64) []Region {
	largest := -1
	for i, r := range rects {
		if r.Dx()*r.Dy() < minArea {
			continue
		}
		if largest < 0 || r.Dx()*r.Dy() > rects[largest].Dx()*rects[largest].Dy() {
			largest = i
		}
	}

	regions := []Region{}
	for i, r := range rects {
		if r.Dx()*r.Dy() < minArea {
			continue
		}
		kind := "fragment"
		if i == largest {
			kind = "molecule"
		}
		regions = append(regions, Region{Rect: r, Kind: kind, Confidence: confidence})
	}
	return regions
}
