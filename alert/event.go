package alert

import (
	"time"

	"github.com/bvision/go-bvision/postprocess"
	"github.com/google/uuid"
)

// Event is a single red to green alert
type Event struct {
	// ID uniquely identifies the alert
	ID uuid.UUID
	// Session is the ID of the capture session the alert fired in
	Session string
	// Seq is the sequence number of the frame the alert fired on
	Seq int64
	// Time the frame was submitted
	Time time.Time
	// Light is the box of the green light that completed the transition
	Light postprocess.Box
}

// NewEvent returns an Event with a fresh ID
func NewEvent(session string, seq int64, light postprocess.Box, t time.Time) Event {
	return Event{
		ID:      uuid.New(),
		Session: session,
		Seq:     seq,
		Time:    t,
		Light:   light,
	}
}
