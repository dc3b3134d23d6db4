package rhythm

import (
	"time"

	"go-rhythm/keymap"
)

// Status is what a slot shows to the user
type Status int

const (
	StatusReady     Status = iota // nothing recorded, or cleared
	StatusRecording               // session in progress
	StatusComplete                // stopped with enough beats
	StatusTooShort                // stopped with too few beats; pattern kept
)

func (s Status) String() string {
	switch s {
	case StatusRecording:
		return "recording"
	case StatusComplete:
		return "complete"
	case StatusTooShort:
		return "error"
	default:
		return "ready"
	}
}

// recorder is the per-slot state machine: Idle <-> Recording.
type recorder struct {
	pattern   Pattern
	recording bool
	anchor    time.Time // time of the previous beat (or of start)
	status    Status
}

// start clears the pattern and opens a session anchored at now
func (r *recorder) start(now time.Time) {
	r.pattern = nil
	r.recording = true
	r.anchor = now
	r.status = StatusRecording
}

// beat appends a beat if a session is open
func (r *recorder) beat(key keymap.Key, note keymap.Note, now time.Time) (Beat, bool) {
	if !r.recording {
		return Beat{}, false
	}
	var delay int64
	if len(r.pattern) > 0 {
		delay = now.Sub(r.anchor).Milliseconds()
		if delay < 0 {
			delay = 0
		}
	}
	b := Beat{Key: key, Note: note, Delay: delay}
	r.pattern = append(r.pattern, b)
	r.anchor = now
	return b, true
}

// stop closes the session and grades the pattern. The pattern is kept either way.
func (r *recorder) stop(minBeats int) Status {
	if !r.recording {
		return r.status
	}
	r.recording = false
	if len(r.pattern) >= minBeats {
		r.status = StatusComplete
	} else {
		r.status = StatusTooShort
	}
	return r.status
}

// clear empties the pattern without touching the recording flag
func (r *recorder) clear() {
	r.pattern = nil
	if !r.recording {
		r.status = StatusReady
	}
}
