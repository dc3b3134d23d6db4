package rhythm

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/hako/durafmt"
)

// Display is the one-line rendering of the captured pattern
func (s *Slot) Display() string {
	return formatPattern(s.cfg, s.Pattern())
}

// StatusText describes the slot's state for the user
func (s *Slot) StatusText() string {
	st := s.Status()
	if text, ok := s.cfg.StatusText[st]; ok && text != "" {
		return text
	}
	return statusText(st, s.cfg.Label, s.e.cfg.MinBeats)
}

func formatPattern(cfg SlotConfig, p Pattern) string {
	if len(p) == 0 {
		return cfg.Placeholder
	}
	keys := make([]string, len(p))
	for i, k := range p.Keys() {
		keys[i] = string(k)
	}
	out := fmt.Sprintf("%s %s (%s", cfg.Prompt, strings.Join(keys, " - "), beats(len(p)))
	if d := p.Duration(); d > 0 {
		out += ", " + durafmt.Parse(d).LimitFirstN(2).String()
	}
	return out + ")"
}

func statusText(st Status, label string, minBeats int) string {
	switch st {
	case StatusRecording:
		return fmt.Sprintf("Recording %s... play your rhythm!", label)
	case StatusComplete:
		return fmt.Sprintf("%s has been recorded.", capitalize(label))
	case StatusTooShort:
		return fmt.Sprintf("%s too short. Please record at least %s.", capitalize(label), beats(minBeats))
	}
	return fmt.Sprintf("Start recording to enter your %s.", label)
}

// Beats formats a beat count, "1 beat" or "3 beats"
func Beats(n int) string { return beats(n) }

func beats(n int) string {
	if n == 1 {
		return "1 beat"
	}
	return fmt.Sprintf("%d beats", n)
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
