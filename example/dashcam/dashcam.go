package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bvision/go-bvision"
	"github.com/bvision/go-bvision/alert"
	"github.com/bvision/go-bvision/detector"
	"github.com/bvision/go-bvision/internal/config"
	"github.com/bvision/go-bvision/internal/hub"
	"github.com/bvision/go-bvision/internal/logger"
	"github.com/bvision/go-bvision/internal/metrics"
	"github.com/bvision/go-bvision/lane"
	"github.com/bvision/go-bvision/render"
	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"
	"gocv.io/x/gocv"
)

func main() {

	cfg, err := config.Load()

	if err != nil {
		logrus.Fatalf("Error loading config: %v", err)
	}

	// command line flags override the environment
	flag.StringVar(&cfg.ModelPath, "m", cfg.ModelPath, "YOLOv5 ONNX model file")
	flag.StringVar(&cfg.LabelsPath, "l", cfg.LabelsPath, "Text file containing model labels")
	flag.StringVar(&cfg.VideoSource, "v", cfg.VideoSource, "Video file or camera device number")
	flag.StringVar(&cfg.HTTPAddr, "a", cfg.HTTPAddr, "HTTP Address to run server on, format address:port")
	flag.StringVar(&cfg.LogLevel, "log", cfg.LogLevel, "Log level [debug|info|warn|error]")
	flag.StringVar(&cfg.JournalPath, "j", cfg.JournalPath, "SQLite alert journal file, empty to disable")
	flag.StringVar(&cfg.TonePlayer, "p", cfg.TonePlayer, "Command used to play the alert tone, empty to disable")
	flag.IntVar(&cfg.InputSize, "s", cfg.InputSize, "Model input size")
	flag.BoolVar(&cfg.Lanes, "lanes", cfg.Lanes, "Enable lane detection")
	flag.Parse()

	if err := cfg.Validate(); err != nil {
		logrus.Fatalf("Invalid config: %v", err)
	}

	log, err := logger.New(logger.Options{Level: cfg.LogLevel, File: cfg.LogFile})

	if err != nil {
		logrus.Fatalf("Error creating logger: %v", err)
	}

	labels, err := bvision.LoadLabels(cfg.LabelsPath)

	if err != nil {
		log.Fatalf("Error loading model labels: %v", err)
	}

	params := detector.DefaultParams(cfg.ModelPath)
	params.InputWidth = cfg.InputSize
	params.InputHeight = cfg.InputSize

	det, err := detector.New(params, labels)

	if err != nil {
		log.Fatalf("Error loading model: %v", err)
	}

	defer det.Close()

	met := metrics.New()
	jpeg := render.NewJPEGSink(render.DefaultOptions())

	// the hub forwards viewer speed samples to the session created below
	var session *bvision.Session

	viewers := hub.New(func(mps float64) {
		session.UpdateSpeed(mps)
	}, log)

	opts := []bvision.Option{
		bvision.WithLogger(log),
		bvision.WithRecorder(met),
		bvision.WithRenderSinks(jpeg, viewers),
		bvision.WithAlertSinks(viewers),
	}

	if cfg.Lanes {
		opts = append(opts, bvision.WithLaneDetector(lane.New(lane.DefaultParams())))
	}

	var journal *alert.Journal

	if cfg.JournalPath != "" {
		journal, err = alert.OpenJournal(cfg.JournalPath)

		if err != nil {
			log.Fatalf("Error opening alert journal: %v", err)
		}

		defer journal.Close()
		opts = append(opts, bvision.WithAlertSinks(journal))
	}

	if cfg.TonePlayer != "" {
		tone, err := alert.NewToneSink(cfg.ToneFile, alert.DefaultTone(),
			alert.CommandPlayer{Command: cfg.TonePlayer}, cfg.ToneInterval)

		if err != nil {
			log.Fatalf("Error creating alert tone: %v", err)
		}

		opts = append(opts, bvision.WithAlertSinks(tone))
	}

	session, err = bvision.NewSession(det, opts...)

	if err != nil {
		log.Fatalf("Error creating session: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go viewers.Run(ctx)

	go func() {
		if err := session.Run(ctx); err != nil {
			log.Errorf("Session stopped: %v", err)
		}
	}()

	defer session.Close()

	mux := http.NewServeMux()
	mux.Handle("/stream", jpeg)
	mux.Handle("/ws", viewers)
	mux.Handle("/metrics", met.Handler())
	mux.HandleFunc("/alerts", alertsHandler(journal, log))

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: mux}

	go func() {
		log.WithField("addr", cfg.HTTPAddr).Info("Open browser and view video stream at /stream")

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("HTTP server error: %v", err)
		}
	}()

	if err := capture(ctx, cfg.VideoSource, session, log); err != nil {
		log.Errorf("Capture stopped: %v", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	srv.Shutdown(shutdownCtx)
}

// capture reads frames from the video source and submits them to the
// session.  Video files are paced at their frame rate and loop at the end.
func capture(ctx context.Context, source string, session *bvision.Session, log logrus.FieldLogger) error {

	vc, err := gocv.OpenVideoCapture(source)

	if err != nil {
		return err
	}

	defer vc.Close()

	fps := vc.Get(gocv.VideoCaptureFPS)

	if fps <= 0 {
		fps = 30
	}

	log.WithField("fps", fps).Info("Capture started")

	ticker := time.NewTicker(time.Duration(float64(time.Second) / fps))
	defer ticker.Stop()

	img := gocv.NewMat()
	defer img.Close()

	for {
		select {
		case <-ctx.Done():
			return nil

		case <-ticker.C:
			if ok := vc.Read(&img); !ok || img.Empty() {
				// rewind video files, cameras that stop delivering end capture
				if vc.Get(gocv.VideoCaptureFrameCount) > 0 {
					vc.Set(gocv.VideoCapturePosFrames, 0)
					continue
				}

				return errors.New("video source stopped delivering frames")
			}

			session.Submit(img)
		}
	}
}

// alertsHandler serves the most recent alerts from the journal as JSON
func alertsHandler(journal *alert.Journal, log logrus.FieldLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		if journal == nil {
			http.Error(w, "alert journal disabled", http.StatusNotFound)
			return
		}

		events, err := journal.Recent(20)

		if err != nil {
			log.WithError(err).Warn("Error reading alert journal")
			http.Error(w, "error reading alerts", http.StatusInternalServerError)
			return
		}

		msgs := make([]*hub.AlertMessage, 0, len(events))

		for _, ev := range events {
			msgs = append(msgs, hub.NewAlertMessage(ev))
		}

		w.Header().Set("Content-Type", "application/json")
		jsoniter.NewEncoder(w).Encode(msgs)
	}
}
