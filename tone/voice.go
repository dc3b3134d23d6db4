package tone

import (
	"math"
	"time"
)

// Envelope levels, exponential decay from startGain towards endGain.
const (
	startGain = 0.4
	endGain   = 0.01
)

// Voice generates PCM samples in the range [-1,1].
type Voice interface {
	// Sample returns the next sample and whether the voice has finished.
	Sample() (float64, bool)
}

// Compound is a sine fundamental plus a triangle one octave up, shaped by a
// decaying envelope. It never reaches silence before it ends.
type Compound struct {
	freq       float64
	sampleRate int
	n          int // total samples
	pos        int
}

// NewCompound builds a voice for freq lasting d
func NewCompound(freq float64, d time.Duration, sampleRate int) *Compound {
	n := int(d.Seconds() * float64(sampleRate))
	if n < 1 {
		n = 1
	}
	return &Compound{freq: freq, sampleRate: sampleRate, n: n}
}

func (c *Compound) Sample() (float64, bool) {
	if c.pos >= c.n {
		return 0, true
	}
	t := float64(c.pos) / float64(c.sampleRate)
	phase := 2 * math.Pi * c.freq * t
	v := (math.Sin(phase) + triangle(2*phase)) * Envelope(c.pos, c.n)
	c.pos++
	return v, c.pos >= c.n
}

// Envelope returns the gain at sample i of n
func Envelope(i, n int) float64 {
	if n <= 0 {
		return endGain
	}
	return startGain * math.Pow(endGain/startGain, float64(i)/float64(n))
}

// triangle starts at 0 and rises, like an oscillator's triangle wave
func triangle(phase float64) float64 {
	return 2 / math.Pi * math.Asin(math.Sin(phase))
}
