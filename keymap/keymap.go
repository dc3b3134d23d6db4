package keymap

import (
	"math"
	"strings"
)

// Key is a symbol on the rhythm keyboard ("Q" .. "I")
type Key string

// Note is a musical note name ("C4", "C#4", ...)
type Note string

// Binding ties a key to its note, pitch and MIDI note number
type Binding struct {
	Key       Key
	Note      Note
	Frequency float64 // Hz
	MIDI      uint8
}

// Keyboard layout, left to right. Black keys are the sharps.
var bindings = []Binding{
	{Key: "Q", Note: "C4", Frequency: 261.63, MIDI: 60},
	{Key: "W", Note: "C#4", Frequency: 277.18, MIDI: 61},
	{Key: "E", Note: "D4", Frequency: 293.66, MIDI: 62},
	{Key: "R", Note: "D#4", Frequency: 311.13, MIDI: 63},
	{Key: "T", Note: "E4", Frequency: 329.63, MIDI: 64},
	{Key: "Y", Note: "F4", Frequency: 349.23, MIDI: 65},
	{Key: "U", Note: "F#4", Frequency: 369.99, MIDI: 66},
	{Key: "I", Note: "G4", Frequency: 392.00, MIDI: 67},
}

var (
	byKey  = make(map[Key]Binding, len(bindings))
	byNote = make(map[Note]Binding, len(bindings))
	byMIDI = make(map[uint8]Binding, len(bindings))
)

func init() {
	for _, b := range bindings {
		byKey[b.Key] = b
		byNote[b.Note] = b
		byMIDI[b.MIDI] = b
	}
}

// Bindings returns the keyboard layout in left-to-right order
func Bindings() []Binding {
	out := make([]Binding, len(bindings))
	copy(out, bindings)
	return out
}

// Keys returns the key alphabet in layout order
func Keys() []Key {
	keys := make([]Key, len(bindings))
	for i, b := range bindings {
		keys[i] = b.Key
	}
	return keys
}

// Canonical upper-cases a typed symbol and reports whether it is on the keyboard.
func Canonical(symbol string) (Key, bool) {
	k := Key(strings.ToUpper(symbol))
	_, ok := byKey[k]
	return k, ok
}

// NoteFor returns the note played by key
func NoteFor(k Key) (Note, bool) {
	b, ok := byKey[k]
	return b.Note, ok
}

// Frequency returns the pitch of note in Hz
func Frequency(n Note) (float64, bool) {
	b, ok := byNote[n]
	return b.Frequency, ok
}

// MIDINote returns the MIDI note number for note
func MIDINote(n Note) (uint8, bool) {
	b, ok := byNote[n]
	return b.MIDI, ok
}

// KeyForMIDI maps an incoming MIDI note number back onto the keyboard
func KeyForMIDI(note uint8) (Key, bool) {
	b, ok := byMIDI[note]
	return b.Key, ok
}

// IsSharp reports whether the key sits on a black key
func (k Key) IsSharp() bool {
	b, ok := byKey[k]
	return ok && strings.Contains(string(b.Note), "#")
}

// FrequencyToMIDI returns the nearest MIDI note number for a frequency (A4 = 440 Hz = 69).
func FrequencyToMIDI(freq float64) uint8 {
	if freq <= 0 {
		return 0
	}
	n := math.Round(69 + 12*math.Log2(freq/440))
	if n < 0 {
		return 0
	}
	if n > 127 {
		return 127
	}
	return uint8(n)
}

// Index returns the key's position in the layout, 0 for Q
func Index(k Key) (int, bool) {
	for i, b := range bindings {
		if b.Key == k {
			return i, true
		}
	}
	return -1, false
}
