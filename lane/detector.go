package lane

import (
	"errors"
	"image"
	"image/color"
	"math"

	"gocv.io/x/gocv"
)

// ErrEmptyImage is returned when Detect is given an empty Mat
var ErrEmptyImage = errors.New("lane: empty image")

// Params are the tuning values for lane detection
type Params struct {
	// MinSlope discards Hough segments flatter than this
	MinSlope float64
	// CorridorBottom and CorridorTop are the rows, as a fraction of image
	// height, the corridor polygon spans
	CorridorBottom float64
	CorridorTop    float64
	// Margin insets the corridor by this many pixels
	Margin float64
	// Canny hysteresis thresholds
	CannyLow  float32
	CannyHigh float32
	// probabilistic Hough transform settings
	Rho           float32
	Theta         float32
	Threshold     int
	MinLineLength float32
	MaxLineGap    float32
}

// DefaultParams returns the lane detection defaults for a dashboard mounted
// camera
func DefaultParams() Params {
	return Params{
		MinSlope:       0.5,
		CorridorBottom: 0.5,
		CorridorTop:    0.4,
		Margin:         2,
		CannyLow:       50,
		CannyHigh:      150,
		Rho:            1,
		Theta:          math.Pi / 180,
		Threshold:      15,
		MinLineLength:  10,
		MaxLineGap:     20,
	}
}

// Result is the outcome of lane detection on one frame
type Result struct {
	Left  Line
	Right Line
	// Corridor is the drivable region polygon in image pixels, nil when it
	// could not be formed
	Corridor []image.Point
	// Night is set when the frame was dark enough to also accept gray
	// markings
	Night bool
}

// Detector finds lane boundaries with classic edge and line detection
type Detector struct {
	Params Params
}

// New returns a lane detector
func New(p Params) *Detector {
	return &Detector{Params: p}
}

var (
	whiteLower  = gocv.NewScalar(130, 130, 130, 0)
	whiteUpper  = gocv.NewScalar(255, 255, 255, 0)
	yellowLower = gocv.NewScalar(20, 100, 110, 0)
	yellowUpper = gocv.NewScalar(30, 180, 240, 0)
	grayLower   = gocv.NewScalar(80, 80, 80, 0)
	grayUpper   = gocv.NewScalar(130, 130, 130, 0)
)

// Detect finds the lane lines and corridor in a BGR frame
func (d *Detector) Detect(img gocv.Mat) (*Result, error) {

	if img.Empty() {
		return nil, ErrEmptyImage
	}

	res := &Result{Night: isNight(img)}

	filtered := colorFilter(img, res.Night)
	defer filtered.Close()

	masked := regionOfInterest(filtered)
	defer masked.Close()

	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(masked, &gray, gocv.ColorBGRToGray)

	edges := gocv.NewMat()
	defer edges.Close()
	gocv.Canny(gray, &edges, d.Params.CannyLow, d.Params.CannyHigh)

	lines := gocv.NewMat()
	defer lines.Close()
	gocv.HoughLinesPWithParams(edges, &lines, d.Params.Rho, d.Params.Theta,
		d.Params.Threshold, d.Params.MinLineLength, d.Params.MaxLineGap)

	segs := make([]Segment, 0, lines.Rows())

	for i := 0; i < lines.Rows(); i++ {
		v := lines.GetVeciAt(i, 0)
		segs = append(segs, Segment{
			X1: int(v[0]), Y1: int(v[1]), X2: int(v[2]), Y2: int(v[3]),
		})
	}

	left, right := SplitSegments(segs, img.Cols()/2, d.Params.MinSlope)
	res.Left = FitLine(left)
	res.Right = FitLine(right)

	rows := float64(img.Rows())
	res.Corridor = Shrink(Corridor(res.Left, res.Right,
		d.Params.CorridorBottom*rows, d.Params.CorridorTop*rows), d.Params.Margin)

	return res, nil
}

// isNight reports a frame too dark for daytime color thresholds
func isNight(img gocv.Mat) bool {
	s := img.Mean()
	return s.Val1 < 30 || (s.Val2 < 33 && s.Val3 < 30)
}

// colorFilter keeps white and yellow pixels, and gray ones at night
func colorFilter(src gocv.Mat, night bool) gocv.Mat {

	dst := zeros(src)

	keep := func(img gocv.Mat, lower, upper gocv.Scalar) {
		mask := gocv.NewMat()
		defer mask.Close()

		gocv.InRangeWithScalar(img, lower, upper, &mask)
		src.CopyToWithMask(&dst, mask)
	}

	keep(src, whiteLower, whiteUpper)

	hsv := gocv.NewMat()
	defer hsv.Close()
	gocv.CvtColor(src, &hsv, gocv.ColorBGRToHSV)
	keep(hsv, yellowLower, yellowUpper)

	if night {
		keep(src, grayLower, grayUpper)
	}

	return dst
}

// regionOfInterest blacks out everything outside the road trapezoid ahead
// of the vehicle
func regionOfInterest(src gocv.Mat) gocv.Mat {

	x := src.Cols()
	y := src.Rows()

	mask := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 0, 0, 0), y, x, gocv.MatTypeCV8UC1)
	defer mask.Close()

	pts := gocv.NewPointsVectorFromPoints([][]image.Point{{
		image.Pt(0, int(0.6*float64(y))),
		image.Pt(x, int(0.6*float64(y))),
		image.Pt(int(0.55*float64(x)), int(0.3*float64(y))),
		image.Pt(int(0.45*float64(x)), int(0.3*float64(y))),
	}})
	defer pts.Close()

	gocv.FillPoly(&mask, pts, color.RGBA{R: 255, G: 255, B: 255, A: 255})

	dst := zeros(src)
	src.CopyToWithMask(&dst, mask)

	return dst
}

// zeros returns a black Mat the size and type of m
func zeros(m gocv.Mat) gocv.Mat {
	return gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 0, 0, 0),
		m.Rows(), m.Cols(), m.Type())
}
