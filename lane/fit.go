package lane

import (
	"image"
	"math"

	clipper "github.com/ctessum/go.clipper"
	"gonum.org/v1/gonum/stat"
)

// Segment is a line segment found by the Hough transform
type Segment struct {
	X1, Y1, X2, Y2 int
}

// Slope returns the slope of the segment in image coordinates, vertical
// segments return ok false
func (s Segment) Slope() (float64, bool) {
	dx := s.X2 - s.X1

	if dx == 0 {
		return 0, false
	}

	return float64(s.Y2-s.Y1) / float64(dx), true
}

// Line is a lane boundary y = Slope*x + Intercept
type Line struct {
	Slope     float64
	Intercept float64
	// Found is false when no segments supported the line and it holds the
	// fallback coefficients
	Found bool
}

// fallbackLine is used for a side with no supporting segments
var fallbackLine = Line{Slope: 1, Intercept: 1}

// XAt returns the x coordinate of the line at row y
func (l Line) XAt(y float64) float64 {
	return (y - l.Intercept) / l.Slope
}

// SplitSegments keeps the segments steeper than minSlope and sorts them
// into the left and right sides of the image.  Left boundaries lean one way
// and sit fully left of center, right boundaries the other.
func SplitSegments(segs []Segment, center int, minSlope float64) (left, right []Segment) {

	for _, s := range segs {
		slope, ok := s.Slope()

		if !ok || math.Abs(slope) <= minSlope {
			continue
		}

		if slope > 0 && s.X1 > center && s.X2 > center {
			right = append(right, s)
		} else if slope < 0 && s.X1 < center && s.X2 < center {
			left = append(left, s)
		}
	}

	return left, right
}

// FitLine fits a least squares line through both end points of every
// segment
func FitLine(segs []Segment) Line {

	if len(segs) == 0 {
		return fallbackLine
	}

	xs := make([]float64, 0, len(segs)*2)
	ys := make([]float64, 0, len(segs)*2)

	for _, s := range segs {
		xs = append(xs, float64(s.X1), float64(s.X2))
		ys = append(ys, float64(s.Y1), float64(s.Y2))
	}

	alpha, beta := stat.LinearRegression(xs, ys, nil, false)

	if math.IsNaN(alpha) || math.IsNaN(beta) || math.IsInf(beta, 0) ||
		math.Abs(beta) < 1e-6 {
		return fallbackLine
	}

	return Line{Slope: beta, Intercept: alpha, Found: true}
}

// Corridor returns the quadrilateral between the left and right lines from
// row bottom up to row top.  Nil is returned unless both lines were found
// and the left line stays left of the right one.
func Corridor(left, right Line, bottom, top float64) []image.Point {

	if !left.Found || !right.Found {
		return nil
	}

	lb := left.XAt(bottom)
	lt := left.XAt(top)
	rt := right.XAt(top)
	rb := right.XAt(bottom)

	if lb >= rb || lt >= rt {
		return nil
	}

	return []image.Point{
		image.Pt(int(math.Round(lb)), int(bottom)),
		image.Pt(int(math.Round(lt)), int(top)),
		image.Pt(int(math.Round(rt)), int(top)),
		image.Pt(int(math.Round(rb)), int(bottom)),
	}
}

// Shrink insets the polygon by margin pixels.  Nil is returned when the
// polygon collapses.
func Shrink(poly []image.Point, margin float64) []image.Point {

	if len(poly) < 3 || margin <= 0 {
		return poly
	}

	var path clipper.Path

	for _, pt := range poly {
		path = append(path, &clipper.IntPoint{X: clipper.CInt(pt.X), Y: clipper.CInt(pt.Y)})
	}

	co := clipper.NewClipperOffset()
	co.AddPath(path, clipper.JtMiter, clipper.EtClosedPolygon)

	solution := co.Execute(-margin)

	if len(solution) == 0 {
		return nil
	}

	// the inset of a convex polygon is a single path
	var points []image.Point

	for _, pt := range solution[0] {
		points = append(points, image.Pt(int(pt.X), int(pt.Y)))
	}

	if len(points) < 3 {
		return nil
	}

	return points
}
