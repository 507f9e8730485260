package alert

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"os/exec"
	"time"

	"github.com/go-audio/audio"
	"github.com/go-audio/transforms"
	"github.com/go-audio/wav"
	"golang.org/x/time/rate"
)

// ErrRateLimited is returned by ToneSink.Fire when alerts arrive faster than
// the tone can sensibly be played
var ErrRateLimited = errors.New("alert tone rate limited")

// Note is a single pitch of the alert tone
type Note struct {
	Freq     float64
	Duration time.Duration
}

// ToneParams describes the alert tone
type ToneParams struct {
	SampleRate int
	// Gain is the peak amplitude in the range (0,1]
	Gain float64
	// Fade is the length of the linear fade at each note edge to avoid clicks
	Fade  time.Duration
	Notes []Note
}

// DefaultTone is a short rising two note chirp
func DefaultTone() ToneParams {
	return ToneParams{
		SampleRate: 44100,
		Gain:       0.8,
		Fade:       5 * time.Millisecond,
		Notes: []Note{
			{Freq: 1318.5, Duration: 80 * time.Millisecond},
			{Freq: 1760.0, Duration: 120 * time.Millisecond},
		},
	}
}

// Synthesize renders the tone as mono float samples normalized to a peak of
// Gain
func Synthesize(p ToneParams) *audio.FloatBuffer {

	buf := &audio.FloatBuffer{
		Format: &audio.Format{NumChannels: 1, SampleRate: p.SampleRate},
	}

	fade := int(p.Fade.Seconds() * float64(p.SampleRate))

	for _, note := range p.Notes {

		n := int(note.Duration.Seconds() * float64(p.SampleRate))

		for i := 0; i < n; i++ {
			env := 1.0

			if fade > 0 {
				if i < fade {
					env = float64(i) / float64(fade)
				} else if n-i <= fade {
					env = float64(n-i-1) / float64(fade)
				}
			}

			t := float64(i) / float64(p.SampleRate)
			buf.Data = append(buf.Data, env*math.Sin(2*math.Pi*note.Freq*t))
		}
	}

	transforms.NormalizeMax(buf)

	for i := range buf.Data {
		buf.Data[i] *= p.Gain
	}

	return buf
}

// WriteTone encodes the tone as a 16 bit mono PCM WAV
func WriteTone(w io.WriteSeeker, p ToneParams) error {

	fb := Synthesize(p)

	ib := &audio.IntBuffer{
		Format:         fb.Format,
		Data:           make([]int, len(fb.Data)),
		SourceBitDepth: 16,
	}

	for i, v := range fb.Data {
		ib.Data[i] = int(v * math.MaxInt16)
	}

	enc := wav.NewEncoder(w, p.SampleRate, 16, 1, 1)

	if err := enc.Write(ib); err != nil {
		return fmt.Errorf("error encoding tone: %w", err)
	}

	return enc.Close()
}

// Player plays an audio file
type Player interface {
	Play(ctx context.Context, file string) error
}

// CommandPlayer plays audio files with an external program such as aplay
// or afplay
type CommandPlayer struct {
	Command string
	Args    []string
}

// Play runs the player command on the file and waits for it to finish
func (c CommandPlayer) Play(ctx context.Context, file string) error {
	args := append(append([]string{}, c.Args...), file)
	return exec.CommandContext(ctx, c.Command, args...).Run()
}

// ToneSink plays the alert tone for each alert event
type ToneSink struct {
	file    string
	player  Player
	limiter *rate.Limiter
	timeout time.Duration
}

// NewToneSink writes the tone to file and returns a sink playing it.  At most
// one tone is played per minInterval.
func NewToneSink(file string, p ToneParams, player Player, minInterval time.Duration) (*ToneSink, error) {

	f, err := os.Create(file)

	if err != nil {
		return nil, fmt.Errorf("error creating tone file: %w", err)
	}

	if err := WriteTone(f, p); err != nil {
		f.Close()
		return nil, err
	}

	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("error closing tone file: %w", err)
	}

	limit := rate.Inf

	if minInterval > 0 {
		limit = rate.Every(minInterval)
	}

	return &ToneSink{
		file:    file,
		player:  player,
		limiter: rate.NewLimiter(limit, 1),
		timeout: 5 * time.Second,
	}, nil
}

// File returns the path of the WAV file played
func (t *ToneSink) File() string {
	return t.file
}

// Fire plays the tone
func (t *ToneSink) Fire(ev Event) error {

	if !t.limiter.Allow() {
		return ErrRateLimited
	}

	ctx, cancel := context.WithTimeout(context.Background(), t.timeout)
	defer cancel()

	if err := t.player.Play(ctx, t.file); err != nil {
		return fmt.Errorf("error playing alert %s: %w", ev.ID, err)
	}

	return nil
}

// Name identifies the sink in logs and metrics
func (t *ToneSink) Name() string {
	return "tone"
}
