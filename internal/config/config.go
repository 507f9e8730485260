package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Config holds the runtime settings of the driver assist pipeline
type Config struct {
	ModelPath    string
	LabelsPath   string
	VideoSource  string
	HTTPAddr     string
	LogLevel     string
	LogFile      string
	JournalPath  string
	ToneFile     string
	TonePlayer   string
	ToneInterval time.Duration
	InputSize    int
	Lanes        bool
}

// Load reads an optional .env file, or the given files, then builds the
// Config from the environment
func Load(files ...string) (*Config, error) {

	if err := godotenv.Load(files...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("error loading env file: %w", err)
	}

	return &Config{
		ModelPath:    getEnv("MODEL_PATH", "yolov5s.onnx"),
		LabelsPath:   getEnv("LABELS_PATH", "coco_80_labels_list.txt"),
		VideoSource:  getEnv("VIDEO_SOURCE", "0"),
		HTTPAddr:     getEnv("HTTP_ADDR", ":8080"),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		LogFile:      getEnv("LOG_FILE", ""),
		JournalPath:  getEnv("JOURNAL_PATH", "alerts.db"),
		ToneFile:     getEnv("TONE_FILE", "alert.wav"),
		TonePlayer:   getEnv("TONE_PLAYER", "aplay"),
		ToneInterval: getEnvAsDuration("TONE_INTERVAL", 3*time.Second),
		InputSize:    getEnvAsInt("INPUT_SIZE", 640),
		Lanes:        getEnvAsBool("LANES", true),
	}, nil
}

// Validate reports every setting that would stop the pipeline starting
func (c *Config) Validate() error {

	var errs []error

	if c.ModelPath == "" {
		errs = append(errs, errors.New("MODEL_PATH is required"))
	}

	if c.LabelsPath == "" {
		errs = append(errs, errors.New("LABELS_PATH is required"))
	}

	if c.VideoSource == "" {
		errs = append(errs, errors.New("VIDEO_SOURCE is required"))
	}

	if c.InputSize <= 0 || c.InputSize%32 != 0 {
		errs = append(errs, fmt.Errorf("INPUT_SIZE must be a positive multiple of 32, got %d", c.InputSize))
	}

	if c.ToneInterval < 0 {
		errs = append(errs, fmt.Errorf("TONE_INTERVAL must not be negative, got %s", c.ToneInterval))
	}

	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("LOG_LEVEL: %w", err))
	}

	return errors.Join(errs...)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
