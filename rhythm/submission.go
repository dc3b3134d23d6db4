package rhythm

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fmsg"
	"github.com/Southclaws/fault/ftag"
)

// ErrPatternTooShort is returned by Submission when a slot is below MinBeats
var ErrPatternTooShort = errors.New("pattern too short")

// Submission returns the finalized patterns in slot order. A session still
// open is stopped and graded first. It refuses, with a message meant for the
// user, when any pattern has fewer than MinBeats beats.
func (e *Engine) Submission() ([]Pattern, error) {
	e.mu.Lock()
	var evs []Event
	if s := e.recordingLocked(); s != nil {
		st := s.rec.stop(e.cfg.MinBeats)
		evs = append(evs, Event{Kind: EventStopped, Slot: s.cfg.ID, Status: st, Beats: len(s.rec.pattern), Forced: true})
	}
	patterns := make([]Pattern, len(e.slots))
	var short []string
	for i, s := range e.slots {
		patterns[i] = s.rec.pattern.Clone()
		if len(s.rec.pattern) < e.cfg.MinBeats {
			short = append(short, s.cfg.ID)
		}
	}
	e.mu.Unlock()
	e.emit(evs)

	if len(short) > 0 {
		return nil, fault.Wrap(ErrPatternTooShort,
			fmsg.WithDesc(
				fmt.Sprintf("slots %s below %d beats", strings.Join(short, ","), e.cfg.MinBeats),
				e.tooShortMessage(),
			),
			ftag.With(ftag.InvalidArgument),
		)
	}
	return patterns, nil
}

func (e *Engine) tooShortMessage() string {
	if len(e.slots) == 1 {
		return fmt.Sprintf("Please record your %s (at least %s) before submitting.",
			e.slots[0].cfg.Label, beats(e.cfg.MinBeats))
	}
	labels := make([]string, len(e.slots))
	for i, s := range e.slots {
		labels[i] = s.cfg.Label
	}
	return fmt.Sprintf("Please record your %s (at least %s each).",
		strings.Join(labels, " and "), beats(e.cfg.MinBeats))
}
