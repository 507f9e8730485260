package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestNewLevel(t *testing.T) {

	log, err := New(Options{Level: "debug", NoColors: true})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if log.GetLevel() != logrus.DebugLevel {
		t.Errorf("expected debug level, got %s", log.GetLevel())
	}

	if _, err := New(Options{Level: "chatty"}); err == nil {
		t.Errorf("expected error for unknown level")
	}
}

func TestNewFile(t *testing.T) {

	file := filepath.Join(t.TempDir(), "bvision.log")

	log, err := New(Options{Level: "info", File: file, NoColors: true})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	log.WithField("seq", 42).Info("frame processed")

	data, err := os.ReadFile(file)
	if err != nil {
		t.Fatalf("reading log file: %v", err)
	}

	if !strings.Contains(string(data), "frame processed") || !strings.Contains(string(data), "42") {
		t.Errorf("unexpected log contents %q", data)
	}
}
