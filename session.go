package bvision

import (
	"context"
	"errors"
	"math"
	"sync"
	"time"

	"github.com/bvision/go-bvision/alert"
	"github.com/bvision/go-bvision/internal/logger"
	"github.com/bvision/go-bvision/internal/seq"
	"github.com/bvision/go-bvision/render"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gocv.io/x/gocv"
)

var (
	// ErrNoModel is returned when a session is created without a loaded
	// detection model
	ErrNoModel = errors.New("no detection model loaded")
	// ErrSessionClosed is returned when running a closed or already running
	// session
	ErrSessionClosed = errors.New("session closed")
)

// Option configures a Session
type Option func(*Session)

// WithLaneDetector enables lane detection on every frame
func WithLaneDetector(l LaneDetector) Option {
	return func(s *Session) {
		s.lanes = l
	}
}

// WithRenderSinks adds sinks receiving the draw batch of each frame
func WithRenderSinks(sinks ...RenderSink) Option {
	return func(s *Session) {
		s.renderSinks = append(s.renderSinks, sinks...)
	}
}

// WithAlertSinks adds sinks receiving each alert
func WithAlertSinks(sinks ...AlertSink) Option {
	return func(s *Session) {
		s.alertSinks = append(s.alertSinks, sinks...)
	}
}

// WithLogger sets the logger, the default discards output
func WithLogger(log logrus.FieldLogger) Option {
	return func(s *Session) {
		s.log = log
	}
}

// WithRecorder sets where measurements are reported
func WithRecorder(r Recorder) Option {
	return func(s *Session) {
		s.rec = r
	}
}

// WithSessionID overrides the random session ID
func WithSessionID(id string) Option {
	return func(s *Session) {
		s.id = id
	}
}

// frame is a submitted frame waiting in the mailbox
type frame struct {
	seq  int64
	time time.Time
	img  gocv.Mat
}

// output is handed from the worker to the dispatcher
type output struct {
	batch *render.Batch
	alert *alert.Event
}

// Session runs frames through the pipeline on a single worker goroutine and
// delivers the results to sinks on a dispatcher goroutine.  Submit,
// UpdateSpeed and Close are safe to call from any goroutine.
type Session struct {
	id          string
	det         Detector
	lanes       LaneDetector
	renderSinks []RenderSink
	alertSinks  []AlertSink
	log         logrus.FieldLogger
	rec         Recorder

	pipeline *Pipeline
	pool     *framePool
	seq      *seq.Sequence

	mu       sync.Mutex
	pending  *frame
	speed    float64
	hasSpeed bool
	running  bool
	closed   bool
	cancel   context.CancelFunc

	wake    chan struct{}
	results chan output
	done    chan struct{}
}

// NewSession returns a session for the given detector.  The session refuses
// to start without one.
func NewSession(det Detector, opts ...Option) (*Session, error) {

	if det == nil {
		return nil, ErrNoModel
	}

	s := &Session{
		id:       uuid.NewString(),
		det:      det,
		log:      logger.Discard(),
		rec:      nopRecorder{},
		pipeline: NewPipeline(),
		pool:     newFramePool(3),
		seq:      seq.New(),
		wake:     make(chan struct{}, 1),
		results:  make(chan output, 1),
		done:     make(chan struct{}),
	}

	for _, opt := range opts {
		opt(s)
	}

	s.log = s.log.WithField("session", s.id)

	return s, nil
}

// ID returns the session ID
func (s *Session) ID() string {
	return s.id
}

// Submit copies the frame into the mailbox without blocking.  A frame still
// waiting from an earlier Submit is replaced and counted as dropped.  False
// is returned if the frame is empty or the session is closed.
func (s *Session) Submit(img gocv.Mat) bool {

	if img.Empty() {
		return false
	}

	s.mu.Lock()

	if s.closed {
		s.mu.Unlock()
		return false
	}

	f := &frame{
		seq:  s.seq.Next(),
		time: time.Now(),
		img:  s.pool.Get(),
	}

	img.CopyTo(&f.img)

	prev := s.pending
	s.pending = f
	s.mu.Unlock()

	s.rec.FrameSubmitted()

	if prev != nil {
		s.rec.FrameDropped()
		s.log.WithField("seq", prev.seq).Debug("Coalesced waiting frame")
		s.pool.Return(prev.img)
	}

	select {
	case s.wake <- struct{}{}:
	default:
	}

	return true
}

// UpdateSpeed records the latest speed sample in meters per second, shown
// with the next frame.  Negative and invalid samples are clamped to zero.
func (s *Session) UpdateSpeed(mps float64) {

	if mps < 0 || math.IsNaN(mps) || math.IsInf(mps, 0) {
		mps = 0
	}

	s.mu.Lock()
	s.speed = mps
	s.hasSpeed = true
	s.mu.Unlock()
}

// Run processes frames until the context is cancelled or Close is called
func (s *Session) Run(ctx context.Context) error {

	s.mu.Lock()

	if s.closed || s.running {
		s.mu.Unlock()
		return ErrSessionClosed
	}

	ctx, s.cancel = context.WithCancel(ctx)
	s.running = true
	s.mu.Unlock()

	defer close(s.done)

	s.log.Info("Session started")

	var wg sync.WaitGroup
	wg.Add(1)

	go func() {
		defer wg.Done()
		s.dispatch()
	}()

	// a frame may have been submitted before Run
	s.mu.Lock()
	if s.pending != nil {
		select {
		case s.wake <- struct{}{}:
		default:
		}
	}
	s.mu.Unlock()

	s.work(ctx)

	close(s.results)
	wg.Wait()

	s.shutdown()
	s.log.Info("Session stopped")

	return nil
}

// Close stops the session and waits for in flight frames to be delivered
func (s *Session) Close() error {

	s.mu.Lock()

	if s.closed {
		s.mu.Unlock()
		return nil
	}

	s.closed = true
	running := s.running
	cancel := s.cancel
	s.mu.Unlock()

	if !running {
		s.shutdown()
		return nil
	}

	cancel()
	<-s.done

	return nil
}

// shutdown releases any waiting frame and the pool
func (s *Session) shutdown() {

	s.mu.Lock()
	s.closed = true
	pending := s.pending
	s.pending = nil
	s.mu.Unlock()

	if pending != nil {
		pending.img.Close()
	}

	s.pool.Close()
}

// take removes the frame from the mailbox
func (s *Session) take() *frame {
	s.mu.Lock()
	defer s.mu.Unlock()

	f := s.pending
	s.pending = nil

	return f
}

// work is the single owner of the pipeline
func (s *Session) work(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return

		case <-s.wake:
			f := s.take()

			if f == nil {
				continue
			}

			out, ok := s.process(f)

			if !ok {
				s.pool.Return(f.img)
				continue
			}

			select {
			case s.results <- out:
			case <-ctx.Done():
				s.pool.Return(f.img)
				return
			}
		}
	}
}

// process runs inference and the pipeline on one frame.  Frames that fail
// inference are skipped without touching tracker state.
func (s *Session) process(f *frame) (output, bool) {

	log := s.log.WithField("seq", f.seq)
	start := time.Now()

	dets, err := s.det.Detect(f.img)

	if err != nil {
		s.rec.FrameFailed()
		log.WithError(err).Warn("Object detection failed, skipping frame")
		return output{}, false
	}

	batch := &render.Batch{
		Seq:      f.seq,
		Time:     f.time,
		SpeedMPS: -1,
		Frame:    f.img,
	}

	if s.lanes != nil {
		lr, err := s.lanes.Detect(f.img)

		if err != nil {
			s.rec.FrameFailed()
			log.WithError(err).Warn("Lane detection failed, skipping frame")
			return output{}, false
		}

		if lr != nil {
			batch.Lane = lr.Corridor
		}
	}

	res := s.pipeline.ProcessFrame(dets)

	batch.Commands = res.Commands
	batch.StopSignPresent = res.StopSignPresent

	s.mu.Lock()
	if s.hasSpeed {
		batch.SpeedMPS = s.speed
	}
	s.mu.Unlock()

	for _, det := range res.Accepted {
		s.rec.DetectionAccepted(det.Label.String())
	}

	for _, reason := range res.Rejected {
		s.rec.DetectionRejected(reason.String())
	}

	if res.Alert != nil {
		res.Alert.Session = s.id
		res.Alert.Seq = f.seq
		res.Alert.Time = f.time

		s.rec.AlertFired()
		log.WithField("alert", res.Alert.ID).Info("Signal turned green")
	}

	s.rec.FrameProcessed(time.Since(start))

	log.WithFields(logrus.Fields{
		"detections": len(dets),
		"accepted":   len(res.Accepted),
		"commands":   len(res.Commands),
	}).Debug("Frame processed")

	return output{batch: batch, alert: res.Alert}, true
}

// dispatch delivers results to the sinks.  Sink failures are logged and
// counted but never affect the pipeline.
func (s *Session) dispatch() {

	for out := range s.results {

		for _, sink := range s.renderSinks {
			if err := sink.Draw(out.batch); err != nil {
				s.sinkError(sink, out.batch.Seq, err)
			}
		}

		if out.alert != nil {
			for _, sink := range s.alertSinks {
				if err := sink.Fire(*out.alert); err != nil {
					s.sinkError(sink, out.batch.Seq, err)
				}
			}
		}

		s.pool.Return(out.batch.Frame)
	}
}

func (s *Session) sinkError(sink any, seq int64, err error) {

	name := sinkName(sink)

	s.rec.SinkError(name)
	s.log.WithFields(logrus.Fields{
		"seq":  seq,
		"sink": name,
	}).WithError(err).Warn("Sink failed")
}
