package bvision

import (
	"reflect"
	"testing"

	"github.com/bvision/go-bvision/postprocess"
	"github.com/bvision/go-bvision/render"
)

func det(label postprocess.Label, conf, x, y, w, h float32) postprocess.Detection {
	return postprocess.Detection{
		Label:      label,
		Confidence: conf,
		Box:        postprocess.NewBox(x, y, w, h),
	}
}

var (
	car   = det(postprocess.LabelVehicle, 0.9, 100, 250, 50, 50)
	red   = det(postprocess.LabelTrafficLightRed, 0.9, 200, 100, 10, 40)
	green = det(postprocess.LabelTrafficLightGreen, 0.9, 200, 100, 10, 40)
)

func styles(cmds []render.Command) []render.Style {
	var out []render.Style
	for _, c := range cmds {
		out = append(out, c.Style)
	}
	return out
}

func TestProcessFrameBusAndStopSign(t *testing.T) {

	p := NewPipeline()

	res := p.ProcessFrame([]postprocess.Detection{
		det(postprocess.LabelBus, 0.85, 10, 50, 60, 80),
		det(postprocess.LabelStopSign, 0.95, 200, 20, 30, 60),
	})

	if len(res.Commands) != 1 || res.Commands[0].Style != render.StyleVehicle ||
		res.Commands[0].Label != postprocess.LabelBus {
		t.Errorf("expected a single vehicle box, got %+v", res.Commands)
	}

	if !res.StopSignPresent {
		t.Errorf("expected stop sign present")
	}

	if res.Alert != nil {
		t.Errorf("expected no alert, got %+v", res.Alert)
	}

	// the next frame without a stop sign clears the flag
	if res = p.ProcessFrame(nil); res.StopSignPresent {
		t.Errorf("stop sign carried over to the next frame")
	}
}

func TestProcessFrameOneShot(t *testing.T) {

	p := NewPipeline()

	res := p.ProcessFrame([]postprocess.Detection{car, red, green})

	if res.Alert == nil {
		t.Fatalf("expected alert")
	}

	if res.Alert.Light != green.Box {
		t.Errorf("expected alert for the green light box, got %+v", res.Alert.Light)
	}

	want := []render.Style{render.StyleVehicle, render.StyleRedLight, render.StyleGreenLight}

	if got := styles(res.Commands); !reflect.DeepEqual(got, want) {
		t.Errorf("expected styles %v, got %v", want, got)
	}

	// same green in a later frame without a new red
	if res = p.ProcessFrame([]postprocess.Detection{car, green}); res.Alert != nil {
		t.Errorf("expected no second alert")
	}
}

func TestProcessFrameContinuesAfterAlert(t *testing.T) {

	p := NewPipeline()
	p.ProcessFrame([]postprocess.Detection{car, red})

	res := p.ProcessFrame([]postprocess.Detection{
		green,
		det(postprocess.LabelPerson, 0.95, 300, 200, 40, 90),
		det(postprocess.LabelTrafficLightNA, 0.99, 0, 0, 10, 40),
	})

	if res.Alert == nil {
		t.Fatalf("expected alert")
	}

	if len(res.Commands) != 2 || res.Commands[1].Label != postprocess.LabelPerson {
		t.Errorf("expected detections after the alert to still render, got %+v", res.Commands)
	}

	if len(res.Rejected) != 1 || res.Rejected[0] != postprocess.ReasonLabel {
		t.Errorf("expected traffic_light_na rejected by label, got %v", res.Rejected)
	}
}

func TestProcessFrameNoVehicle(t *testing.T) {

	p := NewPipeline()

	r1 := p.ProcessFrame([]postprocess.Detection{red})
	r2 := p.ProcessFrame([]postprocess.Detection{green})

	if r1.Alert != nil || r2.Alert != nil {
		t.Errorf("expected no alert without a vehicle")
	}

	if len(r1.Commands)+len(r2.Commands) != 0 {
		t.Errorf("ungated lights should not render")
	}
}

func TestProcessFrameRejections(t *testing.T) {

	p := NewPipeline()

	res := p.ProcessFrame([]postprocess.Detection{
		det(postprocess.LabelVehicle, 0.79, 100, 250, 50, 50),
		det(postprocess.LabelStopSign, 0.89, 200, 20, 30, 60),
		det(postprocess.LabelUnknown, 0.99, 0, 0, 10, 10),
		det(postprocess.LabelVehicle, 1.5, 100, 250, 50, 50),
	})

	want := []postprocess.Reason{
		postprocess.ReasonConfidence,
		postprocess.ReasonConfidence,
		postprocess.ReasonLabel,
		postprocess.ReasonMalformed,
	}

	if !reflect.DeepEqual(res.Rejected, want) {
		t.Errorf("expected rejections %v, got %v", want, res.Rejected)
	}

	if len(res.Commands) != 0 || res.StopSignPresent {
		t.Errorf("rejected detections must not affect the frame: %+v", res)
	}

	if p.State().LastVehicleBottomY != 0 {
		t.Errorf("rejected vehicle must not update tracker state")
	}
}

func TestProcessFrameIdempotent(t *testing.T) {

	frame := []postprocess.Detection{car, red, green,
		det(postprocess.LabelStopSign, 0.95, 200, 20, 30, 60)}

	a := NewPipeline().ProcessFrame(frame)
	b := NewPipeline().ProcessFrame(frame)

	if !reflect.DeepEqual(a.Commands, b.Commands) {
		t.Errorf("commands differ: %+v vs %+v", a.Commands, b.Commands)
	}

	if (a.Alert == nil) != (b.Alert == nil) || a.StopSignPresent != b.StopSignPresent {
		t.Errorf("alert decision differs between runs")
	}
}
