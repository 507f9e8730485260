package hub

import (
	"time"

	"github.com/bvision/go-bvision/alert"
	"github.com/bvision/go-bvision/render"
)

// message types
const (
	TypeFrame = "frame"
	TypeAlert = "alert"
)

// Message is sent to viewers
type Message struct {
	Type  string        `json:"type"`
	Frame *FrameMessage `json:"frame,omitempty"`
	Alert *AlertMessage `json:"alert,omitempty"`
}

// BoxMessage is one box to draw
type BoxMessage struct {
	Label  string  `json:"label"`
	Style  string  `json:"style"`
	X      float32 `json:"x"`
	Y      float32 `json:"y"`
	Width  float32 `json:"width"`
	Height float32 `json:"height"`
}

// FrameMessage summarizes a render batch
type FrameMessage struct {
	Seq      int64        `json:"seq"`
	Time     time.Time    `json:"time"`
	Boxes    []BoxMessage `json:"boxes"`
	StopSign bool         `json:"stop_sign"`
	// Speed is omitted until a speed sample has been received
	Speed *float64 `json:"speed,omitempty"`
	Lane  [][2]int `json:"lane,omitempty"`
}

// AlertMessage announces a red to green alert
type AlertMessage struct {
	ID      string    `json:"id"`
	Session string    `json:"session"`
	Seq     int64     `json:"seq"`
	Time    time.Time `json:"time"`
}

// Inbound is a message sent by a viewer, currently only speed samples in
// meters per second
type Inbound struct {
	Speed *float64 `json:"speed"`
}

// NewFrameMessage builds the summary of a render batch
func NewFrameMessage(b *render.Batch) *FrameMessage {

	fm := &FrameMessage{
		Seq:      b.Seq,
		Time:     b.Time,
		Boxes:    make([]BoxMessage, 0, len(b.Commands)),
		StopSign: b.StopSignPresent,
	}

	for _, cmd := range b.Commands {
		fm.Boxes = append(fm.Boxes, BoxMessage{
			Label:  cmd.Label.String(),
			Style:  cmd.Style.String(),
			X:      cmd.Box.X,
			Y:      cmd.Box.Y,
			Width:  cmd.Box.Width,
			Height: cmd.Box.Height,
		})
	}

	if b.SpeedMPS >= 0 {
		speed := b.SpeedMPS
		fm.Speed = &speed
	}

	for _, pt := range b.Lane {
		fm.Lane = append(fm.Lane, [2]int{pt.X, pt.Y})
	}

	return fm
}

// NewAlertMessage builds the announcement of an alert
func NewAlertMessage(ev alert.Event) *AlertMessage {
	return &AlertMessage{
		ID:      ev.ID.String(),
		Session: ev.Session,
		Seq:     ev.Seq,
		Time:    ev.Time,
	}
}
