package tracker

import "github.com/bvision/go-bvision/postprocess"

const (
	// vehicle boxes outside this width range are too small to be the car
	// ahead or so wide they are the bonnet of the ego vehicle
	vehicleMinWidth = 15
	vehicleMaxWidth = 260
	// traffic light boxes must be wider than this and taller than wide
	lightMinWidth = 5
)

// Decision is the outcome of observing a single accepted detection
type Decision int

const (
	// DecisionNone means the detection failed its geometric gate
	DecisionNone Decision = iota
	DecisionVehicle
	DecisionRed
	DecisionGreen
	DecisionStopSign
)

func (d Decision) String() string {
	switch d {
	case DecisionVehicle:
		return "vehicle"
	case DecisionRed:
		return "red"
	case DecisionGreen:
		return "green"
	case DecisionStopSign:
		return "stop_sign"
	default:
		return "none"
	}
}

// Observation is the result returned by SignalTracker.Observe
type Observation struct {
	Decision Decision
	// Fired is set on the one green observation that completes a red to
	// green transition
	Fired bool
}

// State is the cross frame state held by the SignalTracker
type State struct {
	// LastVehicleBottomY is the bottom edge of the most recent vehicle box
	// that passed its gate.  Zero until a vehicle has been seen.
	LastVehicleBottomY float32
	// RedLatched is set by a gated red light and cleared when an alert fires
	RedLatched bool
	// AlertArmed is set together with RedLatched and cleared when an alert
	// fires, so a second green cannot alert without a new red
	AlertArmed bool
	// StopSignPresent is true only while a stop sign was seen in the current
	// frame
	StopSignPresent bool
}

// SignalTracker is the red to green state machine.  It is not safe for
// concurrent use, a single owner must call BeginFrame then Observe for each
// accepted detection of the frame in order.
type SignalTracker struct {
	state State
	// firedThisFrame limits alerts to one per frame
	firedThisFrame bool
}

// NewSignalTracker returns a tracker in the neutral state
func NewSignalTracker() *SignalTracker {
	return &SignalTracker{}
}

// BeginFrame resets the per frame flags.  Stop signs are transient and are
// recomputed every frame.
func (s *SignalTracker) BeginFrame() {
	s.state.StopSignPresent = false
	s.firedThisFrame = false
}

// Observe updates the state with an accepted detection and returns how it
// should be rendered and whether the alert fires
func (s *SignalTracker) Observe(det postprocess.Detection) Observation {

	box := det.Box

	switch det.Label {
	case postprocess.LabelVehicle, postprocess.LabelPerson, postprocess.LabelBus:
		if box.Width > vehicleMinWidth && box.Width < vehicleMaxWidth {
			s.state.LastVehicleBottomY = box.MaxY()
			return Observation{Decision: DecisionVehicle}
		}

	case postprocess.LabelTrafficLightRed:
		if s.behindVehicle(box) && isLightShape(box) {
			s.state.RedLatched = true
			s.state.AlertArmed = true
			return Observation{Decision: DecisionRed}
		}

	case postprocess.LabelTrafficLightGreen:
		if s.state.RedLatched && s.behindVehicle(box) && isLightShape(box) {
			obs := Observation{Decision: DecisionGreen}

			if s.state.AlertArmed && !s.firedThisFrame {
				obs.Fired = true
				s.firedThisFrame = true
				s.state.RedLatched = false
				s.state.AlertArmed = false
			}

			return obs
		}

	case postprocess.LabelStopSign:
		s.state.StopSignPresent = true
		return Observation{Decision: DecisionStopSign}
	}

	return Observation{Decision: DecisionNone}
}

// State returns a copy of the current state
func (s *SignalTracker) State() State {
	return s.state
}

// Reset clears all state, used when a new capture session starts
func (s *SignalTracker) Reset() {
	s.state = State{}
	s.firedThisFrame = false
}

// behindVehicle reports if the last vehicle seen sits lower in the frame
// than the top of the light, a proxy for the ego vehicle being stopped at
// that intersection.  With no vehicle seen this never passes.
func (s *SignalTracker) behindVehicle(light postprocess.Box) bool {
	return s.state.LastVehicleBottomY > light.MinY()
}

// isLightShape reports if the box is tall and narrow like a signal head
func isLightShape(b postprocess.Box) bool {
	return b.Width > lightMinWidth && b.Width < b.Height
}
