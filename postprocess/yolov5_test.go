package postprocess

import (
	"math"
	"testing"
)

// almostEqual checks if two float32 values are approximately equal
func almostEqual(a, b, tolerance float32) bool {
	return float32(math.Abs(float64(a)-float64(b))) <= tolerance
}

func TestYOLOv5DetectObjects(t *testing.T) {

	y := NewYOLOv5(YOLOv5Params{
		BoxThreshold:    0.25,
		NMSThreshold:    0.45,
		ObjectClassNum:  2,
		MaxObjectNumber: 10,
	})

	output := []float32{
		// cx, cy, w, h, obj, class0, class1
		50, 50, 20, 20, 0.9, 0.9, 0.1,
		52, 51, 20, 20, 0.8, 0.9, 0.1, // overlaps the first box
		150, 50, 10, 30, 0.9, 0.05, 0.95,
		300, 300, 40, 40, 0.1, 0.9, 0.1, // low objectness
	}

	res := y.DetectObjects(output, 640, 640)

	if len(res) != 2 {
		t.Fatalf("expected 2 results after NMS, got %d: %+v", len(res), res)
	}

	if res[0].Class != 1 || !almostEqual(res[0].Probability, 0.855, 1e-3) {
		t.Errorf("unexpected first result %+v", res[0])
	}

	if res[0].Box != (BoxRect{Left: 145, Top: 35, Right: 155, Bottom: 65}) {
		t.Errorf("unexpected first box %+v", res[0].Box)
	}

	if res[1].Class != 0 || !almostEqual(res[1].Probability, 0.81, 1e-3) {
		t.Errorf("unexpected second result %+v", res[1])
	}

	if res[1].Box != (BoxRect{Left: 40, Top: 40, Right: 60, Bottom: 60}) {
		t.Errorf("unexpected second box %+v", res[1].Box)
	}
}

func TestYOLOv5ClampsToInput(t *testing.T) {

	y := NewYOLOv5(YOLOv5Params{BoxThreshold: 0.25, NMSThreshold: 0.45,
		ObjectClassNum: 1, MaxObjectNumber: 10})

	res := y.DetectObjects([]float32{5, 630, 20, 40, 0.9, 0.9}, 640, 640)

	if len(res) != 1 {
		t.Fatalf("expected 1 result, got %d", len(res))
	}

	if res[0].Box.Left != 0 || res[0].Box.Bottom != 640 {
		t.Errorf("box not clamped to input: %+v", res[0].Box)
	}
}

func TestYOLOv5MaxObjects(t *testing.T) {

	y := NewYOLOv5(YOLOv5Params{BoxThreshold: 0.25, NMSThreshold: 0.45,
		ObjectClassNum: 1, MaxObjectNumber: 2})

	var output []float32

	for i := 0; i < 5; i++ {
		output = append(output, float32(20+i*100), 50, 20, 20, 0.9, 0.9)
	}

	if res := y.DetectObjects(output, 640, 640); len(res) != 2 {
		t.Errorf("expected results capped at 2, got %d", len(res))
	}

	if res := y.DetectObjects(nil, 640, 640); res != nil {
		t.Errorf("expected nil for empty output, got %+v", res)
	}
}
