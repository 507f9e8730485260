package lane

import (
	"image"
	"image/color"
	"math"
	"testing"

	"gocv.io/x/gocv"
)

func TestSplitSegments(t *testing.T) {

	segs := []Segment{
		{X1: 100, Y1: 300, X2: 200, Y2: 200}, // left, slope -1
		{X1: 400, Y1: 200, X2: 500, Y2: 300}, // right, slope 1
		{X1: 100, Y1: 300, X2: 300, Y2: 250}, // too flat
		{X1: 250, Y1: 300, X2: 350, Y2: 200}, // crosses center
		{X1: 100, Y1: 100, X2: 100, Y2: 300}, // vertical
		{X1: 100, Y1: 200, X2: 200, Y2: 300}, // wrong lean for left side
	}

	left, right := SplitSegments(segs, 300, 0.5)

	if len(left) != 1 || left[0] != segs[0] {
		t.Errorf("unexpected left segments %v", left)
	}

	if len(right) != 1 || right[0] != segs[1] {
		t.Errorf("unexpected right segments %v", right)
	}
}

func TestFitLine(t *testing.T) {

	// points on y = -2x + 600
	line := FitLine([]Segment{
		{X1: 100, Y1: 400, X2: 150, Y2: 300},
		{X1: 200, Y1: 200, X2: 250, Y2: 100},
	})

	if !line.Found {
		t.Fatalf("expected line to be found")
	}

	if math.Abs(line.Slope+2) > 1e-9 || math.Abs(line.Intercept-600) > 1e-9 {
		t.Errorf("expected y = -2x + 600, got y = %fx + %f", line.Slope, line.Intercept)
	}

	if x := line.XAt(300); math.Abs(x-150) > 1e-9 {
		t.Errorf("expected x=150 at y=300, got %f", x)
	}
}

func TestFitLineFallback(t *testing.T) {

	if line := FitLine(nil); line.Found || line != fallbackLine {
		t.Errorf("expected fallback line, got %+v", line)
	}

	// a single point can't define a line
	if line := FitLine([]Segment{{X1: 5, Y1: 5, X2: 5, Y2: 5}}); line.Found {
		t.Errorf("expected fallback for degenerate input, got %+v", line)
	}
}

func TestCorridor(t *testing.T) {

	left := Line{Slope: -1, Intercept: 400, Found: true}
	right := Line{Slope: 1, Intercept: -200, Found: true}

	got := Corridor(left, right, 240, 192)

	want := []image.Point{
		image.Pt(160, 240), image.Pt(208, 192), image.Pt(392, 192), image.Pt(440, 240),
	}

	if len(got) != len(want) {
		t.Fatalf("expected %d points, got %v", len(want), got)
	}

	for i := range want {
		if got[i] != want[i] {
			t.Errorf("point %d: expected %v, got %v", i, want[i], got[i])
		}
	}

	if Corridor(left, fallbackLine, 240, 192) != nil {
		t.Errorf("expected no corridor with a missing side")
	}

	// lines swapped so they cross
	if Corridor(right, left, 240, 192) != nil {
		t.Errorf("expected no corridor when lines cross")
	}
}

func TestShrink(t *testing.T) {

	square := []image.Point{
		image.Pt(0, 0), image.Pt(100, 0), image.Pt(100, 100), image.Pt(0, 100),
	}

	got := Shrink(square, 10)

	if len(got) != 4 {
		t.Fatalf("expected 4 points, got %v", got)
	}

	for _, pt := range got {
		if pt.X < 10 || pt.X > 90 || pt.Y < 10 || pt.Y > 90 {
			t.Errorf("point %v not inset by margin", pt)
		}
	}

	if Shrink(square, 60) != nil {
		t.Errorf("expected polygon to collapse")
	}

	if got := Shrink(square, 0); len(got) != 4 || got[0] != square[0] {
		t.Errorf("zero margin should return the polygon unchanged")
	}
}

func TestDetect(t *testing.T) {

	img := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(60, 60, 60, 0), 480, 640, gocv.MatTypeCV8UC3)
	defer img.Close()

	white := color.RGBA{R: 255, G: 255, B: 255, A: 255}

	// lane markings converging toward the horizon inside the road trapezoid
	gocv.Line(&img, image.Pt(128, 288), image.Pt(300, 154), white, 6)
	gocv.Line(&img, image.Pt(512, 288), image.Pt(340, 154), white, 6)

	res, err := New(DefaultParams()).Detect(img)

	if err != nil {
		t.Fatalf("Detect: %v", err)
	}

	if !res.Left.Found || res.Left.Slope >= 0 {
		t.Errorf("expected left line leaning left, got %+v", res.Left)
	}

	if !res.Right.Found || res.Right.Slope <= 0 {
		t.Errorf("expected right line leaning right, got %+v", res.Right)
	}

	if len(res.Corridor) < 4 {
		t.Fatalf("expected corridor polygon, got %v", res.Corridor)
	}

	for _, pt := range res.Corridor {
		if pt.X < 150 || pt.X > 490 || pt.Y < 190 || pt.Y > 242 {
			t.Errorf("corridor point %v outside expected region", pt)
		}
	}
}

func TestDetectEmpty(t *testing.T) {

	img := gocv.NewMat()
	defer img.Close()

	if _, err := New(DefaultParams()).Detect(img); err != ErrEmptyImage {
		t.Errorf("expected ErrEmptyImage, got %v", err)
	}
}
