package preprocess

import (
	"image"
	"image/color"

	"github.com/bvision/go-bvision/postprocess"
	"gocv.io/x/gocv"
)

// Resizer letterboxes camera frames to the model input size and maps
// detections back to frame coordinates
type Resizer struct {
	// srcWidth is the width of the source image
	srcWidth int
	// srcHeight is the height of the source image
	srcHeight int
	// destWidth is the width to scale to
	destWidth int
	// destHeight is the height to scale to
	destHeight int
	// tempMat is a Mat used during the resize process
	tempMat gocv.Mat
	// letterbox parameters used in scaling
	xPad  int
	yPad  int
	scale float32
	// resize dimensions
	resizeW int
	resizeH int
}

// NewResizer returns a resizer used for scaling an image to the needed
// dimensions for the model input
func NewResizer(srcWidth, srcHeight, destWidth, destHeight int) *Resizer {
	r := &Resizer{
		destWidth:  destWidth,
		destHeight: destHeight,
		tempMat:    gocv.NewMat(),
	}

	r.SetSource(srcWidth, srcHeight)

	return r
}

// Close frees memory allocated during resize process
func (r *Resizer) Close() error {
	return r.tempMat.Close()
}

// SetSource recalculates the scaling when the source dimensions change, such
// as after a device rotation
func (r *Resizer) SetSource(srcWidth, srcHeight int) {

	if srcWidth == r.srcWidth && srcHeight == r.srcHeight {
		return
	}

	r.srcWidth = srcWidth
	r.srcHeight = srcHeight
	r.preCalc()
}

// preCalc the scaling factors for source and destination Mats
func (r *Resizer) preCalc() {

	r.resizeW = r.destWidth
	r.resizeH = r.destHeight

	if r.srcWidth <= 0 || r.srcHeight <= 0 {
		r.scale, r.xPad, r.yPad = 1, 0, 0
		return
	}

	scaleW := float32(r.destWidth) / float32(r.srcWidth)
	scaleH := float32(r.destHeight) / float32(r.srcHeight)
	r.scale = scaleH

	if scaleW < scaleH {
		r.scale = scaleW
		r.resizeH = int(float32(r.srcHeight) * r.scale)
	} else {
		r.resizeW = int(float32(r.srcWidth) * r.scale)
	}

	r.yPad = (r.destHeight - r.resizeH) / 2 // padding height / 2
	r.xPad = (r.destWidth - r.resizeW) / 2  // padding width / 2
}

// LetterBoxResize resizes the input image to the model input size whilst
// maintaining image aspect.  Color is that used for letter box padding.
func (r *Resizer) LetterBoxResize(src gocv.Mat, dest *gocv.Mat, color color.RGBA) {

	gocv.Resize(src, &r.tempMat, image.Pt(r.resizeW, r.resizeH),
		0, 0, gocv.InterpolationArea)

	gocv.CopyMakeBorder(r.tempMat, dest, r.yPad, r.destHeight-r.resizeH-r.yPad,
		r.xPad, r.destWidth-r.resizeW-r.xPad, gocv.BorderConstant, color)
}

// ToSource converts a box in letterboxed model space into a box in source
// image pixels, clipped to the source bounds
func (r *Resizer) ToSource(b postprocess.BoxRect) postprocess.Box {

	conv := func(v, pad, max int) float32 {
		s := float32(v-pad) / r.scale

		if s < 0 {
			return 0
		} else if s > float32(max) {
			return float32(max)
		}

		return s
	}

	x1 := conv(b.Left, r.xPad, r.srcWidth)
	y1 := conv(b.Top, r.yPad, r.srcHeight)
	x2 := conv(b.Right, r.xPad, r.srcWidth)
	y2 := conv(b.Bottom, r.yPad, r.srcHeight)

	return postprocess.NewBox(x1, y1, x2-x1, y2-y1)
}

// ScaleFactor returns the scale factor used in letterbox resize
func (r *Resizer) ScaleFactor() float32 {
	return r.scale
}

// XPad returns the x padding used in letterbox resize
func (r *Resizer) XPad() int {
	return r.xPad
}

// YPad returns the y padding used in letterbox resize
func (r *Resizer) YPad() int {
	return r.yPad
}

// SrcWidth returns the width of the source image
func (r *Resizer) SrcWidth() int {
	return r.srcWidth
}

// SrcHeight returns the height of the source image
func (r *Resizer) SrcHeight() int {
	return r.srcHeight
}
