package rhythm

import (
	"go-rhythm/debug"
	"go-rhythm/keymap"
)

// Slot is a handle to one pattern and its recording session
type Slot struct {
	e     *Engine
	index int
	cfg   SlotConfig
	rec   recorder
}

func (s *Slot) ID() string    { return s.cfg.ID }
func (s *Slot) Label() string { return s.cfg.Label }
func (s *Slot) Index() int    { return s.index }

// Start opens a recording session, discarding the previous pattern. Any other
// slot that is recording is stopped first; its beats are kept.
func (s *Slot) Start() {
	e := s.e
	e.mu.Lock()
	if e.closed || s.rec.recording {
		e.mu.Unlock()
		return
	}
	var evs []Event
	for _, o := range e.slots {
		if o != s && o.rec.recording {
			st := o.rec.stop(e.cfg.MinBeats)
			evs = append(evs, Event{Kind: EventStopped, Slot: o.cfg.ID, Status: st, Beats: len(o.rec.pattern), Forced: true})
		}
	}
	s.rec.start(e.clock.Now())
	e.focus = s.index
	evs = append(evs, Event{Kind: EventStarted, Slot: s.cfg.ID, Status: StatusRecording})
	e.mu.Unlock()

	debug.Log("record", "%s: start", s.cfg.ID)
	e.emit(evs)
}

// Stop closes the session and grades the pattern
func (s *Slot) Stop() Status {
	e := s.e
	e.mu.Lock()
	if !s.rec.recording {
		st := s.rec.status
		e.mu.Unlock()
		return st
	}
	st := s.rec.stop(e.cfg.MinBeats)
	n := len(s.rec.pattern)
	e.mu.Unlock()

	debug.Log("record", "%s: stop, %d beats, %s", s.cfg.ID, n, st)
	e.emit([]Event{{Kind: EventStopped, Slot: s.cfg.ID, Status: st, Beats: n}})
	return st
}

// Toggle is the record button: start when idle, stop when recording
func (s *Slot) Toggle() {
	if s.Recording() {
		s.Stop()
	} else {
		s.Start()
	}
}

// Clear empties the pattern in any state
func (s *Slot) Clear() {
	e := s.e
	e.mu.Lock()
	s.rec.clear()
	st := s.rec.status
	e.mu.Unlock()

	e.emit([]Event{{Kind: EventCleared, Slot: s.cfg.ID, Status: st}})
}

// Recording reports whether a session is open
func (s *Slot) Recording() bool {
	s.e.mu.Lock()
	defer s.e.mu.Unlock()
	return s.rec.recording
}

// Status returns the slot's current status
func (s *Slot) Status() Status {
	s.e.mu.Lock()
	defer s.e.mu.Unlock()
	return s.rec.status
}

// Pattern returns a copy of the captured beats
func (s *Slot) Pattern() Pattern {
	s.e.mu.Lock()
	defer s.e.mu.Unlock()
	return s.rec.pattern.Clone()
}

// Len returns the number of captured beats
func (s *Slot) Len() int {
	s.e.mu.Lock()
	defer s.e.mu.Unlock()
	return len(s.rec.pattern)
}

// Play replays the pattern through the live input path. Returns nil when the
// pattern is empty.
func (s *Slot) Play() *Playback {
	e := s.e
	e.mu.Lock()
	if e.closed || len(s.rec.pattern) == 0 {
		e.mu.Unlock()
		return nil
	}
	p := s.rec.pattern.Clone()
	e.mu.Unlock()

	pb := e.sched.Schedule(p, func(b Beat) {
		s.trigger(b.Key, b.Note, SourcePlayback)
	}, func(done *Playback) {
		e.mu.Lock()
		delete(e.playbacks, done)
		e.mu.Unlock()
	})

	e.mu.Lock()
	closed := e.closed
	select {
	case <-pb.Done():
	default:
		if !closed {
			e.playbacks[pb] = struct{}{}
		}
	}
	e.mu.Unlock()
	if closed {
		pb.Cancel()
		return pb
	}

	debug.Log("playback", "%s: %d beats over %s", s.cfg.ID, len(p), p.Duration())
	e.emit([]Event{{Kind: EventPlayback, Slot: s.cfg.ID, Beats: len(p)}})
	return pb
}

// trigger is the single beat path shared by keyboard, pointer and playback.
// Feedback always fires; the beat is only recorded during a session.
func (s *Slot) trigger(key keymap.Key, note keymap.Note, src Source) {
	e := s.e
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	evs := []Event{{Kind: EventFeedback, Slot: s.cfg.ID, Source: src, Beat: Beat{Key: key, Note: note}}}
	if b, ok := s.rec.beat(key, note, e.clock.Now()); ok {
		evs = append(evs, Event{Kind: EventBeat, Slot: s.cfg.ID, Source: src, Beat: b, Beats: len(s.rec.pattern)})
	}
	e.mu.Unlock()

	evs = append(evs, e.feedback(s, key, note)...)
	e.emit(evs)
}
