package postprocess

import "math"

const (
	// ObjectConfidence is the minimum score for vehicles, people and buses
	ObjectConfidence = 0.8
	// LightConfidence is the minimum score for red and green traffic lights
	LightConfidence = 0.8
	// StopSignConfidence is the minimum score for stop signs.  A false stop
	// sign is costlier than a missed one so the bar is higher.
	StopSignConfidence = 0.9
)

// Reason describes why the Classifier rejected a detection
type Reason int

const (
	ReasonNone Reason = iota
	// ReasonLabel is a label the pipeline does not act on
	ReasonLabel
	// ReasonConfidence is a score below the label's threshold
	ReasonConfidence
	// ReasonMalformed is an out of range score or a degenerate box
	ReasonMalformed
)

func (r Reason) String() string {
	switch r {
	case ReasonLabel:
		return "label"
	case ReasonConfidence:
		return "confidence"
	case ReasonMalformed:
		return "malformed"
	default:
		return "none"
	}
}

// Verdict is the outcome of classifying a single detection
type Verdict struct {
	Accepted bool
	Reason   Reason
}

// Classifier filters raw detections into actionable ones using fixed per
// label confidence thresholds.  It holds no state.
type Classifier struct{}

// NewClassifier returns a Classifier
func NewClassifier() Classifier {
	return Classifier{}
}

// Classify decides whether a detection is actionable
func (Classifier) Classify(det Detection) Verdict {

	conf := float64(det.Confidence)

	if math.IsNaN(conf) || conf < 0 || conf > 1 || !det.Box.Valid() {
		return Verdict{Reason: ReasonMalformed}
	}

	var min float32

	switch det.Label {
	case LabelVehicle, LabelPerson, LabelBus:
		min = ObjectConfidence
	case LabelTrafficLightRed, LabelTrafficLightGreen:
		min = LightConfidence
	case LabelStopSign:
		min = StopSignConfidence
	default:
		return Verdict{Reason: ReasonLabel}
	}

	if det.Confidence < min {
		return Verdict{Reason: ReasonConfidence}
	}

	return Verdict{Accepted: true}
}
