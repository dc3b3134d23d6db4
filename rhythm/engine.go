// Package rhythm captures, replays and gates rhythm patterns entered on the
// eight-key keyboard.
package rhythm

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"go-rhythm/debug"
	"go-rhythm/keymap"
)

const (
	DefaultMinBeats     = 3
	DefaultToneDuration = 800 * time.Millisecond
)

// Sounder makes audible feedback for a beat
type Sounder interface {
	Play(freq float64, d time.Duration) error
}

// Pulser flashes the control that was activated
type Pulser interface {
	Pulse(slot string, key keymap.Key)
}

// SlotConfig describes one pattern slot on a page
type SlotConfig struct {
	ID          string // stable handle, e.g. "old"
	Label       string // used in status text, e.g. "old rhythm"
	Prompt      string // display prefix, e.g. "Pattern:"
	Placeholder string // display text while empty

	// StatusText replaces the generic status wording for the given states
	StatusText map[Status]string
}

// Config parameterizes an engine. A login or signup page has one slot; a
// credential change page has two.
type Config struct {
	Slots        []SlotConfig
	MinBeats     int
	ToneDuration time.Duration
	Sounders     []Sounder
	Pulser       Pulser
	OnEvent      func(Event)
	Clock        Clock
}

// Engine owns the slots of one page. It is safe for concurrent use.
type Engine struct {
	cfg   Config
	clock Clock
	sched *Scheduler

	mu        sync.Mutex
	slots     []*Slot
	byID      map[string]*Slot
	focus     int
	playbacks map[*Playback]struct{}
	closed    bool

	updates chan struct{}
}

// New builds an engine for cfg
func New(cfg Config) (*Engine, error) {
	if len(cfg.Slots) == 0 {
		return nil, errors.New("rhythm: at least one slot required")
	}
	if cfg.MinBeats <= 0 {
		cfg.MinBeats = DefaultMinBeats
	}
	if cfg.ToneDuration <= 0 {
		cfg.ToneDuration = DefaultToneDuration
	}
	if cfg.Clock == nil {
		cfg.Clock = wallClock{}
	}

	e := &Engine{
		cfg:       cfg,
		clock:     cfg.Clock,
		sched:     NewScheduler(cfg.Clock),
		byID:      make(map[string]*Slot, len(cfg.Slots)),
		playbacks: make(map[*Playback]struct{}),
		updates:   make(chan struct{}, 1),
	}
	for i, sc := range cfg.Slots {
		if sc.ID == "" {
			return nil, fmt.Errorf("rhythm: slot %d has no id", i)
		}
		if _, dup := e.byID[sc.ID]; dup {
			return nil, fmt.Errorf("rhythm: duplicate slot id %q", sc.ID)
		}
		if sc.Label == "" {
			sc.Label = "rhythm"
		}
		if sc.Prompt == "" {
			sc.Prompt = "Pattern:"
		}
		if sc.Placeholder == "" {
			sc.Placeholder = fmt.Sprintf("Your %s pattern will appear here...", sc.Label)
		}
		s := &Slot{e: e, index: i, cfg: sc}
		e.slots = append(e.slots, s)
		e.byID[sc.ID] = s
	}
	return e, nil
}

// MinBeats is the shortest acceptable pattern
func (e *Engine) MinBeats() int { return e.cfg.MinBeats }

// Slots returns the slots in page order
func (e *Engine) Slots() []*Slot {
	out := make([]*Slot, len(e.slots))
	copy(out, e.slots)
	return out
}

// Slot looks up a slot by id
func (e *Engine) Slot(id string) (*Slot, bool) {
	s, ok := e.byID[id]
	return s, ok
}

// Focus makes s the target of physical input while nothing is recording
func (e *Engine) Focus(s *Slot) {
	e.mu.Lock()
	e.focus = s.index
	e.mu.Unlock()
	e.notify()
}

// Focused returns the slot physical input goes to when nothing is recording
func (e *Engine) Focused() *Slot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.slots[e.focus]
}

// Recording returns the slot with an open session, or nil
func (e *Engine) Recording() *Slot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.recordingLocked()
}

func (e *Engine) recordingLocked() *Slot {
	for _, s := range e.slots {
		if s.rec.recording {
			return s
		}
	}
	return nil
}

// Updates delivers a coalesced signal after every state change
func (e *Engine) Updates() <-chan struct{} {
	return e.updates
}

// Close cancels pending playbacks and ignores further input
func (e *Engine) Close() {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.closed = true
	pending := make([]*Playback, 0, len(e.playbacks))
	for pb := range e.playbacks {
		pending = append(pending, pb)
	}
	e.mu.Unlock()

	for _, pb := range pending {
		pb.Cancel()
	}
	debug.Log("engine", "closed, cancelled %d playbacks", len(pending))
	e.notify() // wake anyone waiting on Updates
}

// Closed reports whether Close has been called
func (e *Engine) Closed() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.closed
}

// feedback sounds and pulses a beat. Sound failures never interrupt recording.
func (e *Engine) feedback(s *Slot, key keymap.Key, note keymap.Note) []Event {
	var evs []Event
	if freq, ok := keymap.Frequency(note); ok {
		for _, snd := range e.cfg.Sounders {
			if err := snd.Play(freq, e.cfg.ToneDuration); err != nil {
				debug.Warn("sound", "play %s: %v", note, err)
				evs = append(evs, Event{Kind: EventSoundError, Slot: s.cfg.ID, Err: err})
			}
		}
	}
	if e.cfg.Pulser != nil {
		e.cfg.Pulser.Pulse(s.cfg.ID, key)
	}
	return evs
}

func (e *Engine) emit(evs []Event) {
	if len(evs) == 0 {
		return
	}
	if e.cfg.OnEvent != nil {
		for _, ev := range evs {
			e.cfg.OnEvent(ev)
		}
	}
	e.notify()
}

func (e *Engine) notify() {
	select {
	case e.updates <- struct{}{}:
	default:
	}
}
