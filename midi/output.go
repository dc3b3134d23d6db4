package midi

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"go-rhythm/debug"
	"go-rhythm/keymap"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
)

// Output doubles the tone generator on an external synth. Play sends a
// NoteOn and schedules the NoteOff after the tone duration.
type Output struct {
	port     drivers.Out
	channel  uint8
	velocity uint8

	once sync.Once
	send func(gomidi.Message) error
	err  error

	after func(d time.Duration, f func())
}

// NewOutput plays on port. channel is 1-16; 0 means channel 1.
// The port is opened on the first Play.
func NewOutput(port drivers.Out, channel int) *Output {
	ch := uint8(0)
	if channel > 0 && channel <= 16 {
		ch = uint8(channel - 1)
	}
	return &Output{
		port:     port,
		channel:  ch,
		velocity: 100,
		after:    func(d time.Duration, f func()) { time.AfterFunc(d, f) },
	}
}

// FindOutPort returns the first output port whose name contains name
func FindOutPort(name string) (drivers.Out, error) {
	want := strings.ToLower(name)
	for _, op := range gomidi.GetOutPorts() {
		if strings.Contains(strings.ToLower(op.String()), want) {
			return op, nil
		}
	}
	return nil, fmt.Errorf("no MIDI output matching %q", name)
}

func (o *Output) open() error {
	o.once.Do(func() {
		if o.send != nil {
			return
		}
		if o.port == nil {
			o.err = fmt.Errorf("open output: no port")
			return
		}
		send, err := gomidi.SendTo(o.port)
		if err != nil {
			o.err = fmt.Errorf("open output: %w", err)
			return
		}
		o.send = send
	})
	return o.err
}

// Play sounds the nearest MIDI note to freq for d
func (o *Output) Play(freq float64, d time.Duration) error {
	if freq <= 0 {
		return fmt.Errorf("invalid frequency %v", freq)
	}
	if err := o.open(); err != nil {
		return err
	}
	note := keymap.FrequencyToMIDI(freq)
	if err := o.send(gomidi.NoteOn(o.channel, note, o.velocity)); err != nil {
		return fmt.Errorf("note on %d: %w", note, err)
	}
	o.after(d, func() {
		if err := o.send(gomidi.NoteOff(o.channel, note)); err != nil {
			debug.Warn("synth", "note off %d: %v", note, err)
		}
	})
	return nil
}
