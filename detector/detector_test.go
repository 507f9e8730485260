package detector

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/bvision/go-bvision/postprocess"
)

func TestNewMissingModel(t *testing.T) {

	p := DefaultParams(filepath.Join(t.TempDir(), "missing.onnx"))

	_, err := New(p, []postprocess.Label{postprocess.LabelVehicle})

	if !errors.Is(err, ErrModelNotFound) {
		t.Errorf("expected ErrModelNotFound, got %v", err)
	}
}

func TestDefaultParams(t *testing.T) {

	p := DefaultParams("model.onnx")

	if p.InputWidth != 640 || p.InputHeight != 640 {
		t.Errorf("unexpected input size %dx%d", p.InputWidth, p.InputHeight)
	}

	if p.YOLO.BoxThreshold != 0.25 || p.YOLO.NMSThreshold != 0.45 {
		t.Errorf("unexpected decoding thresholds %+v", p.YOLO)
	}
}
