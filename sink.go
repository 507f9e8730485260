package bvision

import (
	"fmt"
	"time"

	"github.com/bvision/go-bvision/alert"
	"github.com/bvision/go-bvision/lane"
	"github.com/bvision/go-bvision/postprocess"
	"github.com/bvision/go-bvision/render"
	"gocv.io/x/gocv"
)

// Detector runs object detection on a frame
type Detector interface {
	Detect(img gocv.Mat) ([]postprocess.Detection, error)
}

// LaneDetector finds the lane corridor in a frame
type LaneDetector interface {
	Detect(img gocv.Mat) (*lane.Result, error)
}

// RenderSink receives the full draw batch of every processed frame.  The
// batch Frame is only valid for the duration of the call.
type RenderSink interface {
	Draw(batch *render.Batch) error
}

// AlertSink receives each alert once
type AlertSink interface {
	Fire(ev alert.Event) error
}

// Recorder receives pipeline measurements
type Recorder interface {
	FrameSubmitted()
	FrameDropped()
	FrameProcessed(d time.Duration)
	FrameFailed()
	DetectionAccepted(label string)
	DetectionRejected(reason string)
	AlertFired()
	SinkError(sink string)
}

// nopRecorder discards measurements
type nopRecorder struct{}

func (nopRecorder) FrameSubmitted()                {}
func (nopRecorder) FrameDropped()                  {}
func (nopRecorder) FrameProcessed(d time.Duration) {}
func (nopRecorder) FrameFailed()                   {}
func (nopRecorder) DetectionAccepted(string)       {}
func (nopRecorder) DetectionRejected(string)       {}
func (nopRecorder) AlertFired()                    {}
func (nopRecorder) SinkError(string)               {}

// sinkName labels a sink in logs and metrics
func sinkName(sink any) string {
	if n, ok := sink.(interface{ Name() string }); ok {
		return n.Name()
	}
	return fmt.Sprintf("%T", sink)
}
