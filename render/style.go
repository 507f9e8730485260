package render

import (
	"image/color"

	"gocv.io/x/gocv"
)

// Font defines the parameters for rendering box label text using GoCV
type Font struct {
	Face      gocv.HersheyFont
	Scale     float64
	Color     color.RGBA
	Thickness int
	LineType  gocv.LineType
	// Padding to place around text
	Pad int
}

// DefaultFont returns default font settings
func DefaultFont() Font {
	return Font{
		Face:      gocv.FontHersheySimplex,
		Scale:     0.5,
		Color:     Black,
		Thickness: 1,
		LineType:  gocv.LineAA,
		Pad:       4,
	}
}

// Options control how a Batch is annotated onto a frame
type Options struct {
	Font Font
	// BoxThickness is the border line thickness per style
	BoxThickness map[Style]int
	// FillOpacity is the opacity of the translucent box fill, 0 disables
	FillOpacity float64
	// LaneOpacity is the opacity of the lane corridor fill, 0 disables
	LaneOpacity float64
	// ShowLabels draws the label name above each box
	ShowLabels bool
	// HUD draws the speed and stop sign banner
	HUD bool
}

// DefaultOptions mirror the look of the phone overlay, a translucent box at
// 0.7 opacity with a thicker border on vehicles than on lights
func DefaultOptions() Options {
	return Options{
		Font: DefaultFont(),
		BoxThickness: map[Style]int{
			StyleVehicle:    3,
			StyleRedLight:   2,
			StyleGreenLight: 2,
		},
		FillOpacity: 0.7,
		LaneOpacity: 0.4,
		ShowLabels:  false,
		HUD:         true,
	}
}
