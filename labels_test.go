package bvision

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/bvision/go-bvision/postprocess"
)

func TestLoadLabels(t *testing.T) {

	file := filepath.Join(t.TempDir(), "labels.txt")
	data := "person\nbicycle\ncar\n  stop sign  \ntraffic_light_red\n\n"

	if err := os.WriteFile(file, []byte(data), 0o644); err != nil {
		t.Fatalf("write labels: %v", err)
	}

	labels, err := LoadLabels(file)
	if err != nil {
		t.Fatalf("LoadLabels: %v", err)
	}

	want := []postprocess.Label{
		postprocess.LabelPerson,
		postprocess.LabelUnknown,
		postprocess.LabelVehicle,
		postprocess.LabelStopSign,
		postprocess.LabelTrafficLightRed,
	}

	if len(labels) != len(want) {
		t.Fatalf("expected %d labels, got %v", len(want), labels)
	}

	for i := range want {
		if labels[i] != want[i] {
			t.Errorf("label %d: expected %s, got %s", i, want[i], labels[i])
		}
	}
}

func TestLoadLabelsErrors(t *testing.T) {

	if _, err := LoadLabels(filepath.Join(t.TempDir(), "missing.txt")); err == nil {
		t.Errorf("expected error for missing file")
	}

	empty := filepath.Join(t.TempDir(), "empty.txt")
	os.WriteFile(empty, []byte("\n\n"), 0o644)

	if _, err := LoadLabels(empty); err == nil {
		t.Errorf("expected error for empty file")
	}
}
