// Package geom holds the small value types shared by region selection,
// screen capture and text reflow.
package geom

import (
	"fmt"
	"image"
	"math"
)

// Point is a pixel position in screen coordinates.
type Point struct {
	X int
	Y int
}

// Rect is an axis-aligned screen rectangle. Right and Bottom are exclusive
// edges, matching image.Rectangle, so Width is simply Right-Left.
type Rect struct {
	Left   int
	Top    int
	Right  int
	Bottom int
}

// Normalize builds the rectangle spanned by two corner points given in any order.
func Normalize(a, b Point) Rect {
	return Rect{
		Left:   min(a.X, b.X),
		Top:    min(a.Y, b.Y),
		Right:  max(a.X, b.X),
		Bottom: max(a.Y, b.Y),
	}
}

// FromImage converts an image.Rectangle (canonicalized first).
func FromImage(r image.Rectangle) Rect {
	r = r.Canon()
	return Rect{Left: r.Min.X, Top: r.Min.Y, Right: r.Max.X, Bottom: r.Max.Y}
}

func (r Rect) Width() int  { return r.Right - r.Left }
func (r Rect) Height() int { return r.Bottom - r.Top }

// Empty reports whether the rectangle has no area.
func (r Rect) Empty() bool { return r.Width() <= 0 || r.Height() <= 0 }

// Clamp pulls every edge inside bounds. The result of clamping a
// normalized rectangle is still normalized.
func (r Rect) Clamp(bounds Rect) Rect {
	return Rect{
		Left:   clampInt(r.Left, bounds.Left, bounds.Right),
		Top:    clampInt(r.Top, bounds.Top, bounds.Bottom),
		Right:  clampInt(r.Right, bounds.Left, bounds.Right),
		Bottom: clampInt(r.Bottom, bounds.Top, bounds.Bottom),
	}
}

// Contains reports whether o lies entirely within r.
func (r Rect) Contains(o Rect) bool {
	return o.Left >= r.Left && o.Right <= r.Right && o.Top >= r.Top && o.Bottom <= r.Bottom
}

// Offset translates the rectangle by (dx, dy).
func (r Rect) Offset(dx, dy int) Rect {
	return Rect{Left: r.Left + dx, Top: r.Top + dy, Right: r.Right + dx, Bottom: r.Bottom + dy}
}

// Image converts to image.Rectangle.
func (r Rect) Image() image.Rectangle {
	return image.Rect(r.Left, r.Top, r.Right, r.Bottom)
}

func (r Rect) String() string {
	return fmt.Sprintf("(%d,%d)-(%d,%d) %dx%d", r.Left, r.Top, r.Right, r.Bottom, r.Width(), r.Height())
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Vertex is a polygon corner in image pixel coordinates. OCR engines report
// sub-pixel positions, hence float64.
type Vertex struct {
	X float64
	Y float64
}

// Polygon is an ordered list of vertices, usually the four corners of a
// detected text box.
type Polygon []Vertex

// QuadFromRect returns the clockwise quadrilateral for r starting at the top-left.
func QuadFromRect(r image.Rectangle) Polygon {
	minX, minY := float64(r.Min.X), float64(r.Min.Y)
	maxX, maxY := float64(r.Max.X), float64(r.Max.Y)
	return Polygon{{minX, minY}, {maxX, minY}, {maxX, maxY}, {minX, maxY}}
}

// CenterY is the arithmetic mean of the vertex y coordinates.
func (p Polygon) CenterY() float64 {
	if len(p) == 0 {
		return 0
	}
	var sum float64
	for _, v := range p {
		sum += v.Y
	}
	return sum / float64(len(p))
}

// MinX is the smallest vertex x coordinate.
func (p Polygon) MinX() float64 {
	if len(p) == 0 {
		return 0
	}
	m := p[0].X
	for _, v := range p[1:] {
		m = math.Min(m, v.X)
	}
	return m
}

// Bounds returns the integer bounding box enclosing every vertex.
func (p Polygon) Bounds() image.Rectangle {
	if len(p) == 0 {
		return image.Rectangle{}
	}
	minX, minY := p[0].X, p[0].Y
	maxX, maxY := p[0].X, p[0].Y
	for _, v := range p[1:] {
		minX = math.Min(minX, v.X)
		minY = math.Min(minY, v.Y)
		maxX = math.Max(maxX, v.X)
		maxY = math.Max(maxY, v.Y)
	}
	return image.Rect(int(math.Floor(minX)), int(math.Floor(minY)), int(math.Ceil(maxX)), int(math.Ceil(maxY)))
}

// Scale multiplies every coordinate by f and returns a new polygon.
func (p Polygon) Scale(f float64) Polygon {
	out := make(Polygon, len(p))
	for i, v := range p {
		out[i] = Vertex{X: v.X * f, Y: v.Y * f}
	}
	return out
}
