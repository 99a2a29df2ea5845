// Package images - Geometry and image helpers shared by the detection pipeline.
package images

// Rect is a lightweight axis-aligned box in pixel space.
type Rect struct {
	// X2,Y2 are exclusive (like image.Rectangle).
	X1, Y1, X2, Y2 int
}

// RectFromXYWH builds a Rect from a top-left corner and a size.
func RectFromXYWH(x, y, w, h int) Rect {
	return Rect{X1: x, Y1: y, X2: x + w, Y2: y + h}
}

// Dx returns the width of r.
func (r Rect) Dx() int { return r.X2 - r.X1 }

// Dy returns the height of r.
func (r Rect) Dy() int { return r.Y2 - r.Y1 }

// Empty reports whether r covers no pixels.
func (r Rect) Empty() bool { return r.X1 >= r.X2 || r.Y1 >= r.Y2 }

// Area returns the area of r in pixels. Empty rectangles have zero area.
func (r Rect) Area() int {
	if r.Empty() {
		return 0
	}
	return r.Dx() * r.Dy()
}

// Intersect returns the largest rectangle contained by both r and o. If the two do not
// overlap the zero Rect is returned.
func (r Rect) Intersect(o Rect) Rect {
	out := Rect{
		X1: max(r.X1, o.X1),
		Y1: max(r.Y1, o.Y1),
		X2: min(r.X2, o.X2),
		Y2: min(r.Y2, o.Y2),
	}
	if out.Empty() {
		return Rect{}
	}
	return out
}

// Clip restricts r to the frame [0, width) x [0, height).
//
// Arguments:
//   - width: The frame width in pixels.
//   - height: The frame height in pixels.
//
// Returns:
//   - The clipped rectangle, which may be empty when r lies outside the frame.
func (r Rect) Clip(width, height int) Rect {
	return r.Intersect(Rect{X1: 0, Y1: 0, X2: width, Y2: height})
}

// CalculateIoU returns the Intersection over Union of two rectangles.
//
//	IoU = Area(A ∩ B) / (Area(A) + Area(B) - Area(A ∩ B))
//
// The union is the algebraic one from inclusion-exclusion, not the bounding rectangle of
// both boxes. The result is in [0, 1]: 1 for identical boxes, 0 for disjoint or touching
// boxes, and 0 when the union area is zero.
//
// Example:
//
// ```go
//
//	a := Rect{X1: 0, Y1: 0, X2: 10, Y2: 10}
//	b := Rect{X1: 5, Y1: 5, X2: 15, Y2: 15}
//	iou := CalculateIoU(a, b) // 25 / 175 ≈ 0.142857
//
// ```
func CalculateIoU(r, o Rect) float32 {
	inter := r.Intersect(o).Area()
	if inter == 0 {
		return 0
	}

	union := r.Area() + o.Area() - inter
	if union <= 0 {
		return 0
	}

	return float32(inter) / float32(union)
}
