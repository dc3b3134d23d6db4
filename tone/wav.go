package tone

import (
	"fmt"
	"io"
	"time"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// Strike is one tone started at an offset into a rendering
type Strike struct {
	Frequency float64
	At        time.Duration
}

// Render mixes strikes into mono samples. Each strike rings for d; the buffer
// is long enough for the last one to finish.
func Render(strikes []Strike, d time.Duration, sampleRate int) []float64 {
	if d <= 0 {
		d = DefaultDuration
	}
	var end time.Duration
	for _, s := range strikes {
		if s.At+d > end {
			end = s.At + d
		}
	}
	out := make([]float64, int(end.Seconds()*float64(sampleRate)))
	for _, s := range strikes {
		if s.Frequency <= 0 {
			continue
		}
		v := NewCompound(s.Frequency, d, sampleRate)
		for i := int(s.At.Seconds() * float64(sampleRate)); i < len(out); i++ {
			val, done := v.Sample()
			out[i] += val
			if done {
				break
			}
		}
	}
	return out
}

// WriteWAV renders strikes as a 16-bit mono WAV file
func WriteWAV(w io.WriteSeeker, strikes []Strike, d time.Duration) error {
	samples := Render(strikes, d, SampleRate)

	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: SampleRate},
		Data:           make([]int, len(samples)),
		SourceBitDepth: 16,
	}
	for i, s := range samples {
		buf.Data[i] = int(toInt16(s))
	}

	enc := wav.NewEncoder(w, SampleRate, 16, 1, 1)
	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("write samples: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("finish wav: %w", err)
	}
	return nil
}
