package debug

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestLogWritesToWriter(t *testing.T) {
	var buf bytes.Buffer
	EnableWriter(&buf)
	defer Disable()

	Log("engine", "closed, cancelled %d playbacks", 2)
	out := buf.String()
	if !strings.Contains(out, "closed, cancelled 2 playbacks") || !strings.Contains(out, "cat=engine") {
		t.Fatalf("log output = %q", out)
	}
}

func TestSetLevelFiltersDebug(t *testing.T) {
	var buf bytes.Buffer
	EnableWriter(&buf)
	defer Disable()
	if err := SetLevel("warn"); err != nil {
		t.Fatal(err)
	}
	defer SetLevel("debug")

	Log("engine", "quiet")
	Warn("sound", "loud")
	out := buf.String()
	if strings.Contains(out, "quiet") || !strings.Contains(out, "loud") {
		t.Fatalf("log output = %q", out)
	}
	if err := SetLevel("nonsense"); err == nil {
		t.Fatal("expected error for unknown level")
	}
}

func TestRecentKeepsWarningsWhenDisabled(t *testing.T) {
	Disable()
	Log("engine", "not kept")
	Warn("sound", "play %s: %s", "C4", "device busy")

	entries := Recent()
	if len(entries) == 0 {
		t.Fatal("expected a warning")
	}
	last := entries[len(entries)-1]
	if last.Category != "sound" || last.Message != "play C4: device busy" {
		t.Fatalf("entry = %+v", last)
	}
	for _, e := range entries {
		if e.Message == "not kept" {
			t.Fatal("debug messages should not be kept")
		}
	}
}

func TestRingWraps(t *testing.T) {
	r := newRing(3)
	l := slog.New(r)
	for _, msg := range []string{"a", "b", "c", "d"} {
		l.Warn(msg)
	}
	got := r.entries()
	if len(got) != 3 || got[0].Message != "b" || got[2].Message != "d" {
		t.Fatalf("entries = %+v", got)
	}
}

func TestLogEveryNthCall(t *testing.T) {
	var buf bytes.Buffer
	EnableWriter(&buf)
	defer Disable()

	for i := 1; i <= 7; i++ {
		LogEvery(3, "midi", "dropped note %d", i)
	}
	out := buf.String()
	if n := strings.Count(out, "dropped note"); n != 2 {
		t.Fatalf("logged %d times, want 2: %q", n, out)
	}
	if !strings.Contains(out, "dropped note 3 (every 3, count=3)") || !strings.Contains(out, "dropped note 6 (every 3, count=6)") {
		t.Fatalf("log output = %q", out)
	}
}
