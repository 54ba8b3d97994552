// Package source loads the pre-rendered frame sequence of a visualization.
package source

import (
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"strings"

	_ "golang.org/x/image/webp"
)

// Source yields the decoded image of one frame.
type Source interface {
	LoadFrame(ctx context.Context, index int) (image.Image, error)
}

// Frame is one entry of the ordered frame list. Frames are never mutated
// after creation.
type Frame struct {
	Index     int
	Image     image.Image
	Loaded    bool
	Synthetic bool
}

// FrameName returns the file name of frame i: frame_0042.webp.
func FrameName(i int, format string) string {
	return fmt.Sprintf("frame_%04d%s", i, format)
}

// FrameURL joins the base path and the frame name without adding a separator.
func FrameURL(base string, i int, format string) string {
	return base + FrameName(i, format)
}

// New picks an HTTP source for http(s) bases and a directory source otherwise.
func New(basePath, format string) Source {
	if strings.HasPrefix(basePath, "http://") || strings.HasPrefix(basePath, "https://") {
		return NewHTTPSource(basePath, format)
	}
	return &DirSource{Dir: basePath, Format: format}
}
