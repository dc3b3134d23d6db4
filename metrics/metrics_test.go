package metrics

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"go-rhythm/keymap"
	"go-rhythm/rhythm"
)

func TestObserveCountsEvents(t *testing.T) {
	m := New()

	m.Observe(rhythm.Event{Kind: rhythm.EventStarted, Slot: "main"})
	for _, k := range []string{"Q", "E", "T"} {
		m.Observe(rhythm.Event{Kind: rhythm.EventFeedback, Beat: rhythm.Beat{Key: keymap.Key(k)}})
		m.Observe(rhythm.Event{Kind: rhythm.EventBeat, Source: rhythm.SourceKeyboard})
	}
	m.Observe(rhythm.Event{Kind: rhythm.EventSoundError, Err: errors.New("no device")})
	if got := testutil.ToFloat64(m.recording); got != 1 {
		t.Fatalf("recording gauge = %v", got)
	}
	m.Observe(rhythm.Event{Kind: rhythm.EventStopped, Status: rhythm.StatusComplete})
	m.Observe(rhythm.Event{Kind: rhythm.EventPlayback})

	if got := testutil.ToFloat64(m.beatsTotal.WithLabelValues("keyboard")); got != 3 {
		t.Errorf("beats = %v", got)
	}
	if got := testutil.ToFloat64(m.feedbackTotal.WithLabelValues("E")); got != 1 {
		t.Errorf("feedback E = %v", got)
	}
	if got := testutil.ToFloat64(m.recordingsDone.WithLabelValues("complete")); got != 1 {
		t.Errorf("complete recordings = %v", got)
	}
	if got := testutil.ToFloat64(m.recording); got != 0 {
		t.Errorf("recording gauge = %v", got)
	}
	if got := testutil.ToFloat64(m.playbacksTotal); got != 1 {
		t.Errorf("playbacks = %v", got)
	}
	if got := testutil.ToFloat64(m.soundErrors); got != 1 {
		t.Errorf("sound errors = %v", got)
	}
}

func TestObserveRealEngine(t *testing.T) {
	m := New()
	e, err := rhythm.New(rhythm.Config{
		Slots:   []rhythm.SlotConfig{{ID: "main"}},
		OnEvent: m.Observe,
	})
	if err != nil {
		t.Fatal(err)
	}
	defer e.Close()
	s, _ := e.Slot("main")
	s.Start()
	e.KeyDown("q", false)
	e.KeyDown("w", false)
	s.Stop()

	if got := testutil.ToFloat64(m.recordingsDone.WithLabelValues("error")); got != 1 {
		t.Fatalf("too-short recordings = %v", got)
	}
	if got := testutil.ToFloat64(m.beatsTotal.WithLabelValues("keyboard")); got != 2 {
		t.Fatalf("beats = %v", got)
	}
}

func TestRouter(t *testing.T) {
	m := New()
	m.IncSubmission("login", "ok")
	srv := httptest.NewServer(NewRouter(m))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/metrics")
	if err != nil {
		t.Fatal(err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if !strings.Contains(string(body), `rhythm_submissions_total{outcome="ok",page="login"} 1`) {
		t.Fatalf("metrics body missing submission counter:\n%s", body)
	}

	resp, err = http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("healthz status = %d", resp.StatusCode)
	}

	resp, err = http.Get(srv.URL + "/nope")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("unknown path status = %d", resp.StatusCode)
	}
}
