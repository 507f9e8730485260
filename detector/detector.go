/*
Package detector runs a YOLOv5 object detection model exported to ONNX on
camera frames using the OpenCV DNN module.
*/
package detector

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"os"
	"sync"

	"github.com/bvision/go-bvision/postprocess"
	"github.com/bvision/go-bvision/preprocess"
	"gocv.io/x/gocv"
)

// ErrModelNotFound is returned when the model file does not exist
var ErrModelNotFound = errors.New("model file not found")

// letterbox padding color used by YOLOv5 training
var padColor = color.RGBA{R: 114, G: 114, B: 114, A: 255}

// Params configures the detector
type Params struct {
	// Model is the path to the ONNX model file
	Model string
	// InputWidth and InputHeight are the model input tensor dimensions
	InputWidth  int
	InputHeight int
	// YOLO are the output decoding parameters.  ObjectClassNum is taken from
	// the labels list when it is set.
	YOLO    postprocess.YOLOv5Params
	Backend gocv.NetBackendType
	Target  gocv.NetTargetType
}

// DefaultParams returns the parameters for a 640x640 YOLOv5 model on CPU
func DefaultParams(model string) Params {
	return Params{
		Model:       model,
		InputWidth:  640,
		InputHeight: 640,
		YOLO:        postprocess.YOLOv5COCOParams(),
		Backend:     gocv.NetBackendDefault,
		Target:      gocv.NetTargetCPU,
	}
}

// Detector finds objects in frames.  Detect is safe for concurrent use but
// calls are serialized.
type Detector struct {
	sync.Mutex
	net     gocv.Net
	params  Params
	labels  []postprocess.Label
	yolo    *postprocess.YOLOv5
	resizer *preprocess.Resizer
	input   gocv.Mat
}

// New loads the model.  Labels are the model classes in training order.
func New(p Params, labels []postprocess.Label) (*Detector, error) {

	if _, err := os.Stat(p.Model); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrModelNotFound, p.Model, err)
	}

	net := gocv.ReadNet(p.Model, "")

	if net.Empty() {
		return nil, fmt.Errorf("failed to load network from %s", p.Model)
	}

	if err := net.SetPreferableBackend(p.Backend); err != nil {
		net.Close()
		return nil, fmt.Errorf("failed to set backend: %w", err)
	}

	if err := net.SetPreferableTarget(p.Target); err != nil {
		net.Close()
		return nil, fmt.Errorf("failed to set target: %w", err)
	}

	if len(labels) > 0 {
		p.YOLO.ObjectClassNum = len(labels)
	}

	return &Detector{
		net:     net,
		params:  p,
		labels:  labels,
		yolo:    postprocess.NewYOLOv5(p.YOLO),
		resizer: preprocess.NewResizer(p.InputWidth, p.InputHeight, p.InputWidth, p.InputHeight),
		input:   gocv.NewMat(),
	}, nil
}

// Detect runs the model on a BGR frame and returns the detections with
// boxes in frame pixels
func (d *Detector) Detect(img gocv.Mat) ([]postprocess.Detection, error) {

	if img.Empty() {
		return nil, errors.New("empty frame")
	}

	d.Lock()
	defer d.Unlock()

	d.resizer.SetSource(img.Cols(), img.Rows())
	d.resizer.LetterBoxResize(img, &d.input, padColor)

	blob := gocv.BlobFromImage(d.input, 1.0/255.0,
		image.Pt(d.params.InputWidth, d.params.InputHeight),
		gocv.NewScalar(0, 0, 0, 0), true, false)
	defer blob.Close()

	d.net.SetInput(blob, "")

	out := d.net.Forward("")
	defer out.Close()

	data, err := out.DataPtrFloat32()

	if err != nil {
		return nil, fmt.Errorf("error reading model output: %w", err)
	}

	results := d.yolo.DetectObjects(data, d.params.InputWidth, d.params.InputHeight)
	dets := postprocess.ToDetections(results, d.labels)

	// map from letterboxed model space to frame pixels
	for i, res := range results {
		dets[i].Box = d.resizer.ToSource(res.Box)
	}

	return dets, nil
}

// Close releases the network and buffers
func (d *Detector) Close() error {
	d.Lock()
	defer d.Unlock()

	d.input.Close()
	d.resizer.Close()
	return d.net.Close()
}
