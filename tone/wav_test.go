package tone

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-audio/wav"
)

func TestRenderLength(t *testing.T) {
	strikes := []Strike{
		{Frequency: 261.63, At: 0},
		{Frequency: 293.66, At: 400 * time.Millisecond},
	}
	samples := Render(strikes, 100*time.Millisecond, 1000)
	if len(samples) != 500 {
		t.Fatalf("expected 500 samples, got %d", len(samples))
	}
	// gap between the two strikes is silent
	for i := 100; i < 400; i++ {
		if samples[i] != 0 {
			t.Fatalf("sample %d = %v, want silence", i, samples[i])
		}
	}
}

func TestWriteWAV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pattern.wav")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	strikes := []Strike{{Frequency: 261.63}, {Frequency: 329.63, At: 250 * time.Millisecond}}
	if err := WriteWAV(f, strikes, 200*time.Millisecond); err != nil {
		t.Fatalf("WriteWAV: %v", err)
	}
	f.Close()

	r, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()
	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		t.Fatal("not a valid wav file")
	}
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := int(0.45 * SampleRate)
	if got := len(buf.Data); got < want-1 || got > want+1 {
		t.Fatalf("expected ~%d samples, got %d", want, got)
	}
	if buf.Format.SampleRate != SampleRate || buf.Format.NumChannels != 1 {
		t.Fatalf("unexpected format %+v", buf.Format)
	}
}
