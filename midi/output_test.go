package midi

import (
	"errors"
	"testing"
	"time"

	gomidi "gitlab.com/gomidi/midi/v2"

	"go-rhythm/debug"
)

func TestOutputPlaySendsNoteOnThenOff(t *testing.T) {
	var sent []gomidi.Message
	var release func()
	var held time.Duration

	o := NewOutput(nil, 2)
	o.send = func(m gomidi.Message) error {
		sent = append(sent, m)
		return nil
	}
	o.after = func(d time.Duration, f func()) {
		held = d
		release = f
	}

	if err := o.Play(293.66, 800*time.Millisecond); err != nil {
		t.Fatal(err)
	}
	var ch, key, vel uint8
	if len(sent) != 1 || !sent[0].GetNoteOn(&ch, &key, &vel) {
		t.Fatalf("sent = %v", sent)
	}
	if ch != 1 || key != 62 || vel != 100 {
		t.Fatalf("note on ch=%d key=%d vel=%d", ch, key, vel)
	}
	if held != 800*time.Millisecond {
		t.Fatalf("held for %s", held)
	}

	release()
	if len(sent) != 2 || !sent[1].GetNoteOff(&ch, &key, &vel) || key != 62 {
		t.Fatalf("expected note off, sent = %v", sent)
	}
}

func TestOutputWithoutPortFails(t *testing.T) {
	o := NewOutput(nil, 0)
	if err := o.Play(261.63, time.Second); err == nil {
		t.Fatal("expected error without a port")
	}
}

func TestOutputSendError(t *testing.T) {
	o := NewOutput(nil, 0)
	o.send = func(gomidi.Message) error { return errors.New("port gone") }
	if err := o.Play(261.63, time.Second); err == nil {
		t.Fatal("expected send error")
	}
	if err := o.Play(0, time.Second); err == nil {
		t.Fatal("expected error for zero frequency")
	}
}

func TestOutputNoteOffErrorIsLogged(t *testing.T) {
	var release func()
	o := NewOutput(nil, 0)
	o.send = func(m gomidi.Message) error {
		var ch, key, vel uint8
		if m.GetNoteOff(&ch, &key, &vel) {
			return errors.New("port gone")
		}
		return nil
	}
	o.after = func(_ time.Duration, f func()) { release = f }

	if err := o.Play(261.63, time.Second); err != nil {
		t.Fatal(err)
	}
	release()

	warnings := debug.Recent()
	if len(warnings) == 0 {
		t.Fatal("expected a warning")
	}
	last := warnings[len(warnings)-1]
	if last.Category != "synth" || last.Message != "note off 60: port gone" {
		t.Fatalf("warning = %+v", last)
	}
}
