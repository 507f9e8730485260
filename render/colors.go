package render

import "image/color"

var (
	Black = color.RGBA{R: 0, G: 0, B: 0, A: 255}
	White = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	Red   = color.RGBA{R: 255, G: 0, B: 0, A: 255}
	Green = color.RGBA{R: 0, G: 255, B: 0, A: 255}
	// Amber is used for the stop sign banner
	Amber = color.RGBA{R: 255, G: 191, B: 0, A: 255}
	// LaneGreen is the fill of the lane corridor
	LaneGreen = color.RGBA{R: 0, G: 200, B: 80, A: 255}
)

// styleColors are the border and fill colors for each Style
var styleColors = map[Style]color.RGBA{
	StyleVehicle:    White,
	StyleRedLight:   Red,
	StyleGreenLight: Green,
}
