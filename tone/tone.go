// Package tone synthesizes the audible feedback played for every beat.
package tone

import (
	"fmt"
	"io"
	"sync"
	"time"
)

const (
	SampleRate      = 44100
	DefaultDuration = 800 * time.Millisecond
)

// Output opens an audio device and starts pulling signed 16-bit little-endian
// mono PCM from r.
type Output interface {
	Open(sampleRate int, r io.Reader) error
}

// Generator plays compound tones. The output is opened once, on first Play,
// and reused for the life of the process.
type Generator struct {
	out  Output
	once sync.Once
	err  error
	mix  *mixer
}

// New creates a generator that will open out lazily
func New(out Output) *Generator {
	return &Generator{out: out, mix: &mixer{}}
}

var shared = sync.OnceValue(func() *Generator {
	return New(&otoOutput{})
})

// Shared returns the process-wide generator backed by the system audio device.
func Shared() *Generator {
	return shared()
}

// Play sounds freq for d (DefaultDuration when d <= 0). It does not block.
// An error means the audio device could not be opened; callers treat sound
// as optional.
func (g *Generator) Play(freq float64, d time.Duration) error {
	if freq <= 0 {
		return fmt.Errorf("tone: invalid frequency %v", freq)
	}
	if d <= 0 {
		d = DefaultDuration
	}
	g.once.Do(func() {
		g.err = g.out.Open(SampleRate, g.mix)
	})
	if g.err != nil {
		return g.err
	}
	g.mix.Add(NewCompound(freq, d, SampleRate))
	return nil
}

// Active returns the number of tones still sounding
func (g *Generator) Active() int {
	return g.mix.Active()
}
