package render

import (
	"errors"
	"fmt"
	"sync"

	"gocv.io/x/gocv"
)

// ErrNoFrame is returned when a batch arrives without an image to draw on
var ErrNoFrame = errors.New("batch has no frame image")

// Annotate draws the lane corridor, boxes and HUD of the batch onto img
func Annotate(img *gocv.Mat, b *Batch, opts Options) error {

	Lane(img, b.Lane, opts.LaneOpacity)
	Boxes(img, b.Commands, opts)

	if opts.HUD {
		return HUD(img, b)
	}

	return nil
}

// JPEGSink annotates each batch onto a copy of its frame, encodes it as a
// JPEG and publishes it to all subscribers.  Slow subscribers miss frames
// rather than holding up the session.
type JPEGSink struct {
	opts Options
	mu   sync.Mutex
	subs map[chan []byte]struct{}
}

// NewJPEGSink returns a JPEGSink drawing with the given options
func NewJPEGSink(opts Options) *JPEGSink {
	return &JPEGSink{
		opts: opts,
		subs: make(map[chan []byte]struct{}),
	}
}

// Draw renders and publishes the batch
func (j *JPEGSink) Draw(b *Batch) error {

	if b.Frame.Empty() {
		return ErrNoFrame
	}

	img := b.Frame.Clone()
	defer img.Close()

	if err := Annotate(&img, b, j.opts); err != nil {
		return fmt.Errorf("error annotating frame %d: %w", b.Seq, err)
	}

	buf, err := gocv.IMEncode(gocv.JPEGFileExt, img)

	if err != nil {
		return fmt.Errorf("error encoding frame %d: %w", b.Seq, err)
	}

	defer buf.Close()

	// copy out of C memory before handing to subscribers
	jpg := make([]byte, len(buf.GetBytes()))
	copy(jpg, buf.GetBytes())

	j.mu.Lock()
	defer j.mu.Unlock()

	for sub := range j.subs {
		select {
		case sub <- jpg:
		default:
			// subscriber still busy with the previous frame
		}
	}

	return nil
}

// Subscribe returns a channel receiving encoded frames and a function to
// cancel the subscription
func (j *JPEGSink) Subscribe() (<-chan []byte, func()) {

	ch := make(chan []byte, 1)

	j.mu.Lock()
	j.subs[ch] = struct{}{}
	j.mu.Unlock()

	var once sync.Once

	cancel := func() {
		once.Do(func() {
			j.mu.Lock()
			delete(j.subs, ch)
			j.mu.Unlock()
		})
	}

	return ch, cancel
}

// Subscribers returns the number of active subscribers
func (j *JPEGSink) Subscribers() int {
	j.mu.Lock()
	defer j.mu.Unlock()
	return len(j.subs)
}

// Name identifies the sink in logs and metrics
func (j *JPEGSink) Name() string {
	return "jpeg"
}
