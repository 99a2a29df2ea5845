// Package postprocess - Postprocessing utilities for models.
package postprocess

import (
	"fmt"

	"github.com/nvr-ai/go-detect/images"
)

// BoundingBox is an axis-aligned box in original image pixel coordinates.
type BoundingBox struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Rect converts b to an images.Rect with exclusive X2/Y2.
func (b BoundingBox) Rect() images.Rect {
	return images.RectFromXYWH(b.X, b.Y, b.Width, b.Height)
}

// Area returns the area of b in pixels.
func (b BoundingBox) Area() int {
	return b.Rect().Area()
}

// Detection represents a single detection result.
type Detection struct {
	// The bounding box of the detection.
	Box BoundingBox `json:"box"`
	// The combined confidence score, in (0, 1].
	Confidence float32 `json:"confidence"`
	// The predicted class index into the class table.
	ClassID int `json:"classId"`
}

func (d Detection) String() string {
	return fmt.Sprintf("class=%d conf=%.2f box=(%d,%d %dx%d)",
		d.ClassID, d.Confidence, d.Box.X, d.Box.Y, d.Box.Width, d.Box.Height)
}
