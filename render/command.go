package render

import (
	"image"
	"time"

	"github.com/bvision/go-bvision/postprocess"
	"gocv.io/x/gocv"
)

// Style is the drawing class of a render command
type Style int

const (
	StyleNone Style = iota
	StyleVehicle
	StyleRedLight
	StyleGreenLight
)

func (s Style) String() string {
	switch s {
	case StyleVehicle:
		return "vehicle"
	case StyleRedLight:
		return "red_light"
	case StyleGreenLight:
		return "green_light"
	default:
		return "none"
	}
}

// Command describes one box to draw over the frame
type Command struct {
	Box   postprocess.Box
	Label postprocess.Label
	Style Style
}

// Batch is everything to draw for a single frame.  Each batch fully replaces
// the previous one.
type Batch struct {
	// Seq is the frame sequence number within the session
	Seq int64
	// Time the frame was submitted
	Time time.Time
	// Commands are the boxes to draw in detection order
	Commands []Command
	// StopSignPresent is set when a stop sign passed filtering in this frame
	StopSignPresent bool
	// SpeedMPS is the latest speed sample in meters per second, or -1 if no
	// sample has been received
	SpeedMPS float64
	// Lane is the drivable corridor polygon, nil when lane detection is off
	// or found nothing
	Lane []image.Point
	// Frame is the source image.  It is owned by the session and is only
	// valid for the duration of the Draw call.
	Frame gocv.Mat
}
