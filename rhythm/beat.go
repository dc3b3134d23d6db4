package rhythm

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"go-rhythm/keymap"
)

// Beat is one captured key press. Delay is the gap in milliseconds since the
// previous beat of the same recording; the first beat always has Delay 0.
type Beat struct {
	Key   keymap.Key  `json:"key"`
	Note  keymap.Note `json:"note"`
	Delay int64       `json:"delay"`
}

// Pattern is a rhythm: beats in the order they were played
type Pattern []Beat

// Len returns the number of beats
func (p Pattern) Len() int { return len(p) }

// Keys returns the keys in play order
func (p Pattern) Keys() []keymap.Key {
	keys := make([]keymap.Key, len(p))
	for i, b := range p {
		keys[i] = b.Key
	}
	return keys
}

// Offsets returns when each beat falls relative to the first one
func (p Pattern) Offsets() []time.Duration {
	offsets := make([]time.Duration, len(p))
	var at time.Duration
	for i, b := range p {
		at += time.Duration(b.Delay) * time.Millisecond
		offsets[i] = at
	}
	return offsets
}

// Duration is the time from the first beat to the last
func (p Pattern) Duration() time.Duration {
	var d time.Duration
	for _, b := range p {
		d += time.Duration(b.Delay) * time.Millisecond
	}
	return d
}

// Clone returns a copy that does not share storage with p
func (p Pattern) Clone() Pattern {
	if p == nil {
		return nil
	}
	out := make(Pattern, len(p))
	copy(out, p)
	return out
}

// String formats the pattern in the form accepted by ParsePattern
func (p Pattern) String() string {
	parts := make([]string, len(p))
	for i, b := range p {
		parts[i] = fmt.Sprintf("%s:%d", b.Key, b.Delay)
	}
	return strings.Join(parts, " ")
}

// ParsePattern reads "Q:0 E:400 T:250" (key:delay-ms, whitespace separated).
// Keys are case-insensitive; notes come from the key map.
func ParsePattern(s string) (Pattern, error) {
	var p Pattern
	for i, field := range strings.Fields(s) {
		sym, ms, ok := strings.Cut(field, ":")
		if !ok {
			return nil, fmt.Errorf("beat %d %q: want KEY:DELAY", i+1, field)
		}
		key, ok := keymap.Canonical(sym)
		if !ok {
			return nil, fmt.Errorf("beat %d: unknown key %q", i+1, sym)
		}
		delay, err := strconv.ParseInt(ms, 10, 64)
		if err != nil || delay < 0 {
			return nil, fmt.Errorf("beat %d: invalid delay %q", i+1, ms)
		}
		if i == 0 && delay != 0 {
			return nil, fmt.Errorf("beat 1: first delay must be 0, got %d", delay)
		}
		note, _ := keymap.NoteFor(key)
		p = append(p, Beat{Key: key, Note: note, Delay: delay})
	}
	return p, nil
}
