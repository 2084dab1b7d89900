package masonry

import "math"

// Rect is an axis-aligned rectangle in content coordinates. The origin is
// the top-left corner of the content area and y grows downward.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// NewRect returns the rectangle with the given origin and size.
func NewRect(x, y, w, h float64) Rect { return Rect{X: x, Y: y, Width: w, Height: h} }

// MinX returns the smallest x coordinate covered by r.
func (r Rect) MinX() float64 { return math.Min(r.X, r.X+r.Width) }

// MaxX returns the largest x coordinate covered by r.
func (r Rect) MaxX() float64 { return math.Max(r.X, r.X+r.Width) }

// MinY returns the smallest y coordinate covered by r.
func (r Rect) MinY() float64 { return math.Min(r.Y, r.Y+r.Height) }

// MaxY returns the bottom edge of r.
func (r Rect) MaxY() float64 { return math.Max(r.Y, r.Y+r.Height) }

// IsEmpty reports whether r covers no area.
func (r Rect) IsEmpty() bool { return r.Width == 0 || r.Height == 0 }

// Inset shrinks r by d on all four sides. Negative d grows it.
func (r Rect) Inset(d float64) Rect {
	return Rect{X: r.X + d, Y: r.Y + d, Width: r.Width - 2*d, Height: r.Height - 2*d}
}

// Intersects reports whether r and o overlap with non-zero extent on both
// axes. Rectangles that only share an edge do not intersect.
func (r Rect) Intersects(o Rect) bool {
	w := math.Min(r.MaxX(), o.MaxX()) - math.Max(r.MinX(), o.MinX())
	h := math.Min(r.MaxY(), o.MaxY()) - math.Max(r.MinY(), o.MinY())
	return w > 0 && h > 0
}

// Offset returns r translated by (dx, dy).
func (r Rect) Offset(dx, dy float64) Rect {
	return Rect{X: r.X + dx, Y: r.Y + dy, Width: r.Width, Height: r.Height}
}

// Size is a width and height pair.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}
