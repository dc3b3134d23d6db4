package rhythm

import "go-rhythm/keymap"

// KeyDown handles a physical key press. It returns true when the symbol is on
// the keyboard, in which case the caller should swallow the key. Presses made
// while a text field has focus are left alone.
func (e *Engine) KeyDown(symbol string, inTextField bool) bool {
	if inTextField {
		return false
	}
	key, ok := keymap.Canonical(symbol)
	if !ok {
		return false
	}
	return e.Press(key)
}

// Press routes a key to the recording slot, or to the focused slot when no
// session is open.
func (e *Engine) Press(key keymap.Key) bool {
	note, ok := keymap.NoteFor(key)
	if !ok {
		return false
	}
	e.mu.Lock()
	target := e.recordingLocked()
	if target == nil {
		target = e.slots[e.focus]
	}
	e.mu.Unlock()

	target.trigger(key, note, SourceKeyboard)
	return true
}

// Activate handles a virtual control bound to this slot. The control carries
// its own note, so no lookup is done.
func (s *Slot) Activate(key keymap.Key, note keymap.Note) {
	if key == "" {
		return
	}
	s.trigger(key, note, SourcePointer)
}
