package rhythm

import (
	"errors"
	"testing"

	"github.com/Southclaws/fault/fmsg"
	"github.com/Southclaws/fault/ftag"
)

func TestSubmissionRefusesShortPatterns(t *testing.T) {
	h := dualHarness(t)
	old := h.slot(t, "old")
	old.Start()
	h.press("QWE")
	old.Stop()

	_, err := h.e.Submission()
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, ErrPatternTooShort) {
		t.Fatalf("err = %v", err)
	}
	if ftag.Get(err) != ftag.InvalidArgument {
		t.Fatalf("tag = %s", ftag.Get(err))
	}
	want := "Please record your old rhythm and new rhythm (at least 3 beats each)."
	if got := fmsg.GetIssue(err); got != want {
		t.Fatalf("issue = %q", got)
	}
}

func TestSubmissionSnapshotsPatterns(t *testing.T) {
	h := newHarness(t)
	s := h.slot(t, "main")
	s.Start()
	h.press("QWER")

	patterns, err := h.e.Submission()
	if err != nil {
		t.Fatal(err)
	}
	if len(patterns) != 1 || len(patterns[0]) != 4 {
		t.Fatalf("patterns = %v", patterns)
	}
	patterns[0][0].Key = "I"
	if s.Pattern()[0].Key != "Q" {
		t.Fatal("submission shares storage with the slot")
	}
}

func TestSubmissionMessageSingleSlot(t *testing.T) {
	h := newHarness(t)
	_, err := h.e.Submission()
	want := "Please record your rhythm (at least 3 beats) before submitting."
	if got := fmsg.GetIssue(err); got != want {
		t.Fatalf("issue = %q", got)
	}
}

func TestSubmissionStopsOpenSession(t *testing.T) {
	h := dualHarness(t)
	old, next := h.slot(t, "old"), h.slot(t, "new")
	old.Start()
	h.press("QWE")
	next.Start()
	h.press("RT")

	_, err := h.e.Submission()
	if !errors.Is(err, ErrPatternTooShort) {
		t.Fatalf("err = %v", err)
	}
	if next.Recording() || next.Status() != StatusTooShort || next.Len() != 2 {
		t.Fatalf("new: recording=%v status=%s len=%d", next.Recording(), next.Status(), next.Len())
	}

	var stopped *Event
	for i := range h.events {
		if ev := h.events[i]; ev.Kind == EventStopped && ev.Slot == "new" {
			stopped = &h.events[i]
		}
	}
	if stopped == nil || !stopped.Forced || stopped.Status != StatusTooShort {
		t.Fatalf("stop event = %+v", stopped)
	}

	next.Start()
	h.press("RTY")
	patterns, err := h.e.Submission()
	if err != nil {
		t.Fatal(err)
	}
	if next.Recording() || next.Status() != StatusComplete {
		t.Fatalf("new: recording=%v status=%s", next.Recording(), next.Status())
	}
	if len(patterns) != 2 || len(patterns[1]) != 3 {
		t.Fatalf("patterns = %v", patterns)
	}
}
