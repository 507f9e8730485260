package bvision

import (
	"time"

	"github.com/bvision/go-bvision/alert"
	"github.com/bvision/go-bvision/postprocess"
	"github.com/bvision/go-bvision/render"
	"github.com/bvision/go-bvision/tracker"
)

// FrameResult is the outcome of running one frame of detections through the
// pipeline
type FrameResult struct {
	// Accepted are the detections that passed classification, in input order
	Accepted []postprocess.Detection
	// Commands are the boxes to draw, replacing the previous frame's
	Commands []render.Command
	// StopSignPresent is set when a stop sign passed filtering in this frame
	StopSignPresent bool
	// Alert is set on the frame that completes a red to green transition
	Alert *alert.Event
	// Rejected holds the reason for each detection that failed
	// classification
	Rejected []postprocess.Reason
}

// decisionStyles maps tracker decisions onto render styles, decisions not
// listed produce no draw command
var decisionStyles = map[tracker.Decision]render.Style{
	tracker.DecisionVehicle: render.StyleVehicle,
	tracker.DecisionRed:     render.StyleRedLight,
	tracker.DecisionGreen:   render.StyleGreenLight,
}

// Pipeline classifies detections and drives the signal tracker.  It is not
// safe for concurrent use, a Session confines it to a single goroutine.
type Pipeline struct {
	classifier postprocess.Classifier
	tracker    *tracker.SignalTracker
}

// NewPipeline returns a pipeline with the tracker in the neutral state
func NewPipeline() *Pipeline {
	return &Pipeline{
		classifier: postprocess.NewClassifier(),
		tracker:    tracker.NewSignalTracker(),
	}
}

// ProcessFrame runs every detection of a frame through classification and
// the tracker in input order.  Processing continues after an alert fires so
// the rest of the frame is still drawn.  Tracker state is never rolled back.
func (p *Pipeline) ProcessFrame(dets []postprocess.Detection) FrameResult {

	p.tracker.BeginFrame()

	var res FrameResult

	for _, det := range dets {

		verdict := p.classifier.Classify(det)

		if !verdict.Accepted {
			res.Rejected = append(res.Rejected, verdict.Reason)
			continue
		}

		res.Accepted = append(res.Accepted, det)

		obs := p.tracker.Observe(det)

		if style, ok := decisionStyles[obs.Decision]; ok {
			res.Commands = append(res.Commands, render.Command{
				Box:   det.Box,
				Label: det.Label,
				Style: style,
			})
		}

		if obs.Fired && res.Alert == nil {
			ev := alert.NewEvent("", 0, det.Box, time.Time{})
			res.Alert = &ev
		}
	}

	res.StopSignPresent = p.tracker.State().StopSignPresent

	return res
}

// State returns a copy of the tracker state
func (p *Pipeline) State() tracker.State {
	return p.tracker.State()
}

// Reset returns the tracker to the neutral state
func (p *Pipeline) Reset() {
	p.tracker.Reset()
}
