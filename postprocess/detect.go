package postprocess

import (
	"image"
	"math"
)

// BoxRect are the integer pixel dimensions of the bounding box produced by
// a model decoder
type BoxRect struct {
	Left   int
	Right  int
	Top    int
	Bottom int
}

// DetectResult defines the attributes of a single object decoded from the
// model output before its class is mapped to a Label
type DetectResult struct {
	// Class is the line number in the labels file the Model was trained on
	// defining the Class of the detected object
	Class int
	// Box are the bounding box dimensions of the object location
	Box BoxRect
	// Probability is the confidence score of the object detected
	Probability float32
}

// Box is an axis aligned rectangle in image pixel coordinates with the
// origin at the top left of the frame
type Box struct {
	X      float32
	Y      float32
	Width  float32
	Height float32
}

// NewBox returns a Box from its top left corner and size
func NewBox(x, y, width, height float32) Box {
	return Box{X: x, Y: y, Width: width, Height: height}
}

// BoxFromNormalized projects a rectangle given in [0,1] coordinates into
// pixel coordinates for an image of imgW x imgH.  Set flipY when the
// detector reports boxes with a bottom left origin.
func BoxFromNormalized(x, y, w, h float32, imgW, imgH int, flipY bool) Box {

	px := x * float32(imgW)
	py := y * float32(imgH)
	pw := w * float32(imgW)
	ph := h * float32(imgH)

	if flipY {
		py = float32(imgH) - (py + ph)
	}

	return Box{X: px, Y: py, Width: pw, Height: ph}
}

// MinX returns the left edge of the box
func (b Box) MinX() float32 {
	return b.X
}

// MinY returns the top edge of the box
func (b Box) MinY() float32 {
	return b.Y
}

// MaxX returns the right edge of the box
func (b Box) MaxX() float32 {
	return b.X + b.Width
}

// MaxY returns the bottom edge of the box
func (b Box) MaxY() float32 {
	return b.Y + b.Height
}

// Valid reports if all box values are finite and the size is not negative
func (b Box) Valid() bool {

	for _, v := range []float32{b.X, b.Y, b.Width, b.Height} {
		f := float64(v)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return false
		}
	}

	return b.Width >= 0 && b.Height >= 0
}

// Rect returns the box as an integer image rectangle
func (b Box) Rect() image.Rectangle {
	return image.Rect(int(b.MinX()), int(b.MinY()), int(b.MaxX()), int(b.MaxY()))
}

// Detection is a single object observed in one frame.  It is created fresh
// by the inference stage for every frame and carries no identity across
// frames.
type Detection struct {
	Label      Label
	Confidence float32
	Box        Box
}

// ToDetections maps decoder results onto Detections using the labels the
// model was trained on.  Results with a class outside the labels list decode
// as LabelUnknown.
func ToDetections(results []DetectResult, labels []Label) []Detection {

	dets := make([]Detection, 0, len(results))

	for _, res := range results {

		label := LabelUnknown

		if res.Class >= 0 && res.Class < len(labels) {
			label = labels[res.Class]
		}

		dets = append(dets, Detection{
			Label:      label,
			Confidence: res.Probability,
			Box: NewBox(float32(res.Box.Left), float32(res.Box.Top),
				float32(res.Box.Right-res.Box.Left),
				float32(res.Box.Bottom-res.Box.Top)),
		})
	}

	return dets
}
