package model

import "math"

// Point represents a 2D point in page coordinates (points).
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Rect is an axis-aligned rectangle given by two corners.
type Rect struct {
	X0 float64 `json:"x0"`
	Y0 float64 `json:"y0"`
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
}

// Width returns the horizontal extent of the rectangle.
func (r Rect) Width() float64 {
	return math.Abs(r.X1 - r.X0)
}

// Height returns the vertical extent of the rectangle.
func (r Rect) Height() float64 {
	return math.Abs(r.Y1 - r.Y0)
}

// Curve is a vector path given as an ordered point list.
type Curve struct {
	Points []Point `json:"points"`
}

// Bounds returns the bounding box of the curve. ok is false when the
// curve has fewer than two points.
func (c Curve) Bounds() (Rect, bool) {
	if len(c.Points) < 2 {
		return Rect{}, false
	}
	bounds := Rect{
		X0: c.Points[0].X, Y0: c.Points[0].Y,
		X1: c.Points[0].X, Y1: c.Points[0].Y,
	}
	for _, p := range c.Points[1:] {
		bounds.X0 = math.Min(bounds.X0, p.X)
		bounds.Y0 = math.Min(bounds.Y0, p.Y)
		bounds.X1 = math.Max(bounds.X1, p.X)
		bounds.Y1 = math.Max(bounds.Y1, p.Y)
	}
	return bounds, true
}

// GridTable is a raw table grid produced by one detection strategy.
// Different strategies may return identical grids for the same page.
type GridTable struct {
	Strategy string     `json:"strategy,omitempty"`
	Rows     [][]string `json:"rows"`
}

// Page carries the pre-extracted content of a single document page.
type Page struct {
	Number int     `json:"number"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`

	Tables []GridTable `json:"tables,omitempty"`
	Text   string      `json:"text,omitempty"`
	Rects  []Rect      `json:"rects,omitempty"`
	Curves []Curve     `json:"curves,omitempty"`
}

// Document is the per-document handle handed to the pipeline by an
// external document-geometry provider.
type Document struct {
	Source string `json:"source,omitempty"`
	Pages  []Page `json:"pages"`
}
