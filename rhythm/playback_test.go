package rhythm

import (
	"testing"
	"time"
)

func TestPlaybackFiresAtCumulativeOffsets(t *testing.T) {
	clock := newManualClock()
	sched := NewScheduler(clock)
	start := clock.Now()

	p := Pattern{
		{Key: "Q", Note: "C4", Delay: 0},
		{Key: "W", Note: "C#4", Delay: 500},
		{Key: "E", Note: "D4", Delay: 300},
	}
	var fired []string
	var at []time.Duration
	pb := sched.Schedule(p, func(b Beat) {
		fired = append(fired, string(b.Key))
		at = append(at, clock.Now().Sub(start))
	}, nil)

	clock.Advance(2 * time.Second)

	want := []time.Duration{0, 500 * time.Millisecond, 800 * time.Millisecond}
	if len(at) != len(want) {
		t.Fatalf("fired %d beats, want %d", len(at), len(want))
	}
	for i := range want {
		if at[i] != want[i] {
			t.Errorf("beat %d at %s, want %s", i, at[i], want[i])
		}
	}
	if fired[0] != "Q" || fired[1] != "W" || fired[2] != "E" {
		t.Fatalf("order = %v", fired)
	}
	select {
	case <-pb.Done():
	default:
		t.Fatal("playback should be done")
	}
	if pb.Fired() != 3 {
		t.Fatalf("Fired = %d", pb.Fired())
	}
}

func TestPlaybackEqualOffsetsKeepOrder(t *testing.T) {
	clock := newManualClock()
	sched := NewScheduler(clock)
	p := Pattern{
		{Key: "Q", Delay: 0},
		{Key: "W", Delay: 0},
		{Key: "E", Delay: 0},
	}
	var fired []string
	sched.Schedule(p, func(b Beat) { fired = append(fired, string(b.Key)) }, nil)
	clock.Advance(0)
	if len(fired) != 3 || fired[0] != "Q" || fired[1] != "W" || fired[2] != "E" {
		t.Fatalf("order = %v", fired)
	}
}

func TestPlaybackCancel(t *testing.T) {
	clock := newManualClock()
	sched := NewScheduler(clock)
	p := Pattern{{Key: "Q"}, {Key: "W", Delay: 500}, {Key: "E", Delay: 500}}

	count := 0
	doneCalls := 0
	pb := sched.Schedule(p, func(Beat) { count++ }, func(*Playback) { doneCalls++ })

	clock.Advance(600 * time.Millisecond)
	pb.Cancel()
	pb.Cancel()
	clock.Advance(2 * time.Second)

	if count != 2 {
		t.Fatalf("fired %d beats, want 2", count)
	}
	if doneCalls != 1 {
		t.Fatalf("onDone called %d times", doneCalls)
	}
	if clock.Pending() != 0 {
		t.Fatalf("%d timers left", clock.Pending())
	}
}

func TestScheduleEmptyPattern(t *testing.T) {
	sched := NewScheduler(newManualClock())
	pb := sched.Schedule(nil, func(Beat) { t.Fatal("nothing to fire") }, nil)
	select {
	case <-pb.Done():
	default:
		t.Fatal("empty playback should be done immediately")
	}
}

func TestSlotPlayGoesThroughLiveInput(t *testing.T) {
	h := newHarness(t)
	s := h.slot(t, "main")
	s.Start()
	h.press("QET", 400*time.Millisecond, 250*time.Millisecond)
	s.Stop()
	h.sound.plays = nil
	h.pulse.keys = nil

	base := h.clock.Now()
	pb := s.Play()
	if pb == nil {
		t.Fatal("expected a playback")
	}
	h.clock.Advance(time.Second)

	if len(h.sound.plays) != 3 {
		t.Fatalf("expected 3 tones, got %d", len(h.sound.plays))
	}
	wantAt := []time.Duration{0, 400 * time.Millisecond, 650 * time.Millisecond}
	for i, p := range h.sound.plays {
		if got := p.at.Sub(base); got != wantAt[i] {
			t.Errorf("tone %d at %s, want %s", i, got, wantAt[i])
		}
	}
	if len(h.pulse.keys) != 3 || h.pulse.keys[2] != "main:T" {
		t.Fatalf("pulses = %v", h.pulse.keys)
	}
	if s.Len() != 3 {
		t.Fatal("playback outside a session must not record")
	}
}

func TestPlaybackOfAnotherSlotIsNotCaptured(t *testing.T) {
	h := dualHarness(t)
	oldSlot := h.slot(t, "old")
	newSlot := h.slot(t, "new")

	oldSlot.Start()
	h.press("QWE", 100*time.Millisecond, 100*time.Millisecond)
	oldSlot.Stop()

	newSlot.Start()
	oldSlot.Play()
	h.clock.Advance(time.Second)
	newSlot.Stop()

	if newSlot.Len() != 0 {
		t.Fatalf("replay of another slot must not land in the recording slot, got %d beats", newSlot.Len())
	}
}

func TestReplayIntoRecordingSlotIsCaptured(t *testing.T) {
	h := newHarness(t)
	s := h.slot(t, "main")
	s.Start()
	h.press("QWE", 100*time.Millisecond, 250*time.Millisecond)
	s.Stop()

	s.Play()
	s.Start()
	h.clock.Advance(time.Second)
	s.Stop()

	if got := s.Pattern().String(); got != "Q:0 W:100 E:250" {
		t.Fatalf("pattern = %q, want the replay captured like live input", got)
	}
}

func TestCloseCancelsPlayback(t *testing.T) {
	h := newHarness(t)
	s := h.slot(t, "main")
	s.Start()
	h.press("QWE", 300*time.Millisecond, 300*time.Millisecond)
	s.Stop()
	h.sound.plays = nil

	pb := s.Play()
	h.clock.Advance(100 * time.Millisecond)
	h.e.Close()
	h.clock.Advance(time.Second)

	if len(h.sound.plays) != 1 {
		t.Fatalf("expected only the first beat, got %d", len(h.sound.plays))
	}
	select {
	case <-pb.Done():
	default:
		t.Fatal("playback should be cancelled")
	}
	if s.Play() != nil {
		t.Fatal("closed engine should not start playbacks")
	}
}
