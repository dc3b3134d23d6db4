// Package metrics counts rhythm engine activity for Prometheus.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"go-rhythm/rhythm"
)

// Metrics holds Prometheus counters and gauges for the rhythm engine.
type Metrics struct {
	registry       *prometheus.Registry
	beatsTotal     *prometheus.CounterVec
	feedbackTotal  *prometheus.CounterVec
	recordingsDone *prometheus.CounterVec
	playbacksTotal prometheus.Counter
	soundErrors    prometheus.Counter
	submissions    *prometheus.CounterVec
	recording      prometheus.Gauge
}

// New creates and registers the metrics on a private registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		beatsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rhythm_beats_recorded_total",
			Help: "Beats appended to a pattern, by input source",
		}, []string{"source"}),
		feedbackTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rhythm_key_feedback_total",
			Help: "Keys sounded and pulsed, recording or not",
		}, []string{"key"}),
		recordingsDone: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rhythm_recordings_total",
			Help: "Recording sessions stopped, by resulting status",
		}, []string{"status"}),
		playbacksTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rhythm_playbacks_total",
			Help: "Pattern replays started",
		}),
		soundErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rhythm_sound_errors_total",
			Help: "Tone playback failures (recording continues)",
		}),
		submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rhythm_submissions_total",
			Help: "Submission attempts, by page and outcome",
		}, []string{"page", "outcome"}),
		recording: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "rhythm_recording_slots",
			Help: "Slots with an open recording session",
		}),
	}

	registry.MustRegister(
		m.beatsTotal,
		m.feedbackTotal,
		m.recordingsDone,
		m.playbacksTotal,
		m.soundErrors,
		m.submissions,
		m.recording,
	)
	return m
}

// Observe records an engine event. Pass it as rhythm.Config.OnEvent.
func (m *Metrics) Observe(ev rhythm.Event) {
	switch ev.Kind {
	case rhythm.EventStarted:
		m.recording.Inc()
	case rhythm.EventStopped:
		m.recording.Dec()
		m.recordingsDone.WithLabelValues(ev.Status.String()).Inc()
	case rhythm.EventBeat:
		m.beatsTotal.WithLabelValues(ev.Source.String()).Inc()
	case rhythm.EventFeedback:
		m.feedbackTotal.WithLabelValues(string(ev.Beat.Key)).Inc()
	case rhythm.EventPlayback:
		m.playbacksTotal.Inc()
	case rhythm.EventSoundError:
		m.soundErrors.Inc()
	}
}

// ResetRecording zeroes the open-session gauge when an engine is discarded
// mid-recording (page switch)
func (m *Metrics) ResetRecording() {
	m.recording.Set(0)
}

// IncSubmission counts a submission attempt; outcome is "ok", "rejected" or "error"
func (m *Metrics) IncSubmission(page, outcome string) {
	m.submissions.WithLabelValues(page, outcome).Inc()
}

// Handler returns an http.Handler that serves Prometheus metrics.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
