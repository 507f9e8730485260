package logger

import (
	"fmt"
	"io"
	"os"
	"path"
	"runtime"
	"strings"

	formatter "github.com/antonfisher/nested-logrus-formatter"
	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options configures the logger
type Options struct {
	// Level is a logrus level name such as debug or info
	Level string
	// File enables a rotated log file in addition to stderr
	File string
	// NoColors disables terminal colors
	NoColors bool
	// Caller adds the calling file and function to each entry
	Caller bool
}

// New returns a logrus logger writing to stderr and optionally a rotated
// log file
func New(opts Options) (*logrus.Logger, error) {

	level := logrus.InfoLevel

	if opts.Level != "" {
		var err error

		if level, err = logrus.ParseLevel(opts.Level); err != nil {
			return nil, fmt.Errorf("invalid log level: %w", err)
		}
	}

	log := logrus.New()
	log.SetLevel(level)

	f := &formatter.Formatter{
		NoColors:        opts.NoColors,
		TimestampFormat: "02 Jan 06 15:04:05.000",
		HideKeys:        false,
		CallerFirst:     true,
		FieldsOrder:     []string{"session", "seq", "label"},
	}

	if opts.Caller {
		f.CustomCallerFormatter = func(fr *runtime.Frame) string {
			s := strings.Split(fr.Function, ".")
			funcName := s[len(s)-1]
			return fmt.Sprintf(" [%s:%d][%s()]", path.Base(fr.File), fr.Line, funcName)
		}
		log.SetReportCaller(true)
	}

	log.SetFormatter(f)

	writers := []io.Writer{os.Stderr}

	if opts.File != "" {
		writers = append(writers, &lumberjack.Logger{
			Filename:   opts.File,
			LocalTime:  true,
			Compress:   true,
			MaxSize:    100,
			MaxAge:     7,
			MaxBackups: 3,
		})
	}

	log.SetOutput(io.MultiWriter(writers...))

	return log, nil
}

// Discard returns a logger that drops everything, for tests and library
// callers that don't supply one
func Discard() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}
