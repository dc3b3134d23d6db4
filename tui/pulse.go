package tui

import (
	"sync"
	"time"

	"go-rhythm/keymap"
	"go-rhythm/rhythm"
)

// PulseDuration is how long a key cell stays highlighted
const PulseDuration = 200 * time.Millisecond

// pulses is the engine's Pulser for on-screen keys. Keys stay lit until
// their deadline; the model re-renders on a frame tick while any are lit.
type pulses struct {
	now func() time.Time

	mu  sync.Mutex
	lit map[string]map[keymap.Key]time.Time
}

func newPulses(now func() time.Time) *pulses {
	if now == nil {
		now = time.Now
	}
	return &pulses{now: now, lit: make(map[string]map[keymap.Key]time.Time)}
}

func (p *pulses) Pulse(slot string, k keymap.Key) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.lit[slot] == nil {
		p.lit[slot] = make(map[keymap.Key]time.Time)
	}
	p.lit[slot][k] = p.now().Add(PulseDuration)
}

// Lit returns the keys of slot that are still highlighted
func (p *pulses) Lit(slot string) map[keymap.Key]bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	now := p.now()
	out := make(map[keymap.Key]bool)
	for k, until := range p.lit[slot] {
		if now.Before(until) {
			out[k] = true
		} else {
			delete(p.lit[slot], k)
		}
	}
	return out
}

// Active reports whether any key is still lit
func (p *pulses) Active() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	now := p.now()
	for _, keys := range p.lit {
		for _, until := range keys {
			if now.Before(until) {
				return true
			}
		}
	}
	return false
}

// fanPulser forwards pulses to every target (screen and pads)
type fanPulser []rhythm.Pulser

func (f fanPulser) Pulse(slot string, k keymap.Key) {
	for _, p := range f {
		p.Pulse(slot, k)
	}
}
