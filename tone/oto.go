package tone

import (
	"fmt"
	"io"
	"time"

	"github.com/ebitengine/oto/v3"
)

// otoOutput plays through the system audio device
type otoOutput struct {
	ctx    *oto.Context
	player *oto.Player // kept referenced so it keeps playing
}

func (o *otoOutput) Open(sampleRate int, r io.Reader) error {
	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: 1,
		Format:       oto.FormatSignedInt16LE,
		BufferSize:   20 * time.Millisecond,
	})
	if err != nil {
		return fmt.Errorf("open audio context: %w", err)
	}
	<-ready

	p := ctx.NewPlayer(r)
	p.SetBufferSize(sampleRate / 100 * 2) // 10ms
	p.Play()

	o.ctx = ctx
	o.player = p
	return nil
}
