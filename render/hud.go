package render

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"gocv.io/x/gocv"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

const (
	hudHeight = 22
	hudPad    = 6
)

// hudLine is a single piece of HUD text and its color
type hudLine struct {
	text string
	clr  color.RGBA
}

// hudLines returns the text shown on the HUD for the batch
func hudLines(b *Batch) []hudLine {

	speed := "Speed: --"

	if b.SpeedMPS >= 0 {
		speed = fmt.Sprintf("Speed: %.1f m/s", b.SpeedMPS)
	}

	lines := []hudLine{{text: speed, clr: White}}

	if b.StopSignPresent {
		lines = append(lines, hudLine{text: "STOP SIGN", clr: Amber})
	}

	return lines
}

// hudBanner rasterizes the HUD lines side by side onto a transparent banner
// of the given width
func hudBanner(width int, lines []hudLine) *image.RGBA {

	rgba := image.NewRGBA(image.Rect(0, 0, width, hudHeight))
	draw.Draw(rgba, rgba.Bounds(), image.NewUniform(color.RGBA{0, 0, 0, 0}), image.Point{}, draw.Src)

	face := basicfont.Face7x13
	x := hudPad
	// baseline of 13px glyphs centered in the banner
	y := (hudHeight + face.Ascent - face.Descent) / 2

	for _, line := range lines {
		dr := &font.Drawer{
			Dst:  rgba,
			Src:  image.NewUniform(line.clr),
			Face: face,
			Dot:  fixed.P(x, y),
		}
		dr.DrawString(line.text)

		x = dr.Dot.X.Round() + 3*hudPad
	}

	return rgba
}

// HUD draws the speed and stop sign banner across the top of the image
func HUD(img *gocv.Mat, b *Batch) error {

	if img.Rows() < hudHeight || img.Cols() == 0 {
		return nil
	}

	banner := hudBanner(img.Cols(), hudLines(b))

	bannerMat, err := gocv.NewMatFromBytes(hudHeight, img.Cols(), gocv.MatTypeCV8UC4, banner.Pix)

	if err != nil || bannerMat.Empty() {
		return fmt.Errorf("error creating Mat from HUD banner: %v", err)
	}

	defer bannerMat.Close()

	bannerBGR := gocv.NewMat()
	defer bannerBGR.Close()

	gocv.CvtColor(bannerMat, &bannerBGR, gocv.ColorRGBAToBGR)

	// darken the strip behind the text so it stays readable
	roi := img.Region(image.Rect(0, 0, img.Cols(), hudHeight))
	defer roi.Close()

	gocv.AddWeighted(roi, 0.4, bannerBGR, 1.0, 0, &roi)

	return nil
}
