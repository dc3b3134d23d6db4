package midi

import (
	"sync"
	"time"

	"go-rhythm/debug"
	"go-rhythm/keymap"
	"go-rhythm/rhythm"
)

// PulseDuration is how long an activated pad stays lit
const PulseDuration = 200 * time.Millisecond

// Pad layout, one row per slot (row 0 is the bottom row):
//
//	cols 0-7   keys Q..I, virtual controls for that slot
//	col 8      side button: record toggle for that slot
//	row 8      top buttons: play slot i at col 2i, clear slot i at col 2i+1
//
// MIDI keyboard notes 60-67 are physical input and go through Engine.Press.

type actionKind int

const (
	actNone actionKind = iota
	actKey
	actRecord
	actPlay
	actClear
)

type padAction struct {
	kind actionKind
	slot int
	key  keymap.Key
}

// padActionFor maps a pad to what it does on a page with n slots
func padActionFor(row, col, n int) padAction {
	switch {
	case row == 8:
		slot := col / 2
		if slot >= n {
			return padAction{}
		}
		if col%2 == 0 {
			return padAction{kind: actPlay, slot: slot}
		}
		return padAction{kind: actClear, slot: slot}
	case row < 0 || row >= n || row > 7:
		return padAction{}
	case col == 8:
		return padAction{kind: actRecord, slot: row}
	case col >= 0 && col < len(keymap.Keys()):
		return padAction{kind: actKey, slot: row, key: keymap.Keys()[col]}
	}
	return padAction{}
}

var (
	colorOff       = [3]uint8{0, 0, 0}
	colorWhiteKey  = [3]uint8{60, 60, 60}
	colorSharpKey  = [3]uint8{40, 60, 120}
	colorRecording = [3]uint8{255, 0, 0}
	colorRecRow    = [3]uint8{180, 60, 60}
	colorComplete  = [3]uint8{0, 255, 0}
	colorTooShort  = [3]uint8{255, 100, 0}
	colorPlay      = [3]uint8{0, 255, 0}
	colorClear     = [3]uint8{255, 200, 0}
	colorPulse     = [3]uint8{255, 255, 255}
)

type cell struct{ row, col int }

type pulse struct {
	gen   uint64
	timer rhythm.Timer
}

// Surface binds grid controllers and keyboards to an engine. It is the
// engine's Pulser for pads and repaints them as slots change state.
type Surface struct {
	clock rhythm.Clock

	mu     sync.Mutex
	engine *rhythm.Engine
	ctrls  map[string]Controller
	lit    map[cell]pulse
	gen    uint64

	paintMu sync.Mutex
}

// NewSurface creates a surface; bind an engine before attaching controllers
func NewSurface(clock rhythm.Clock) *Surface {
	if clock == nil {
		clock = rhythm.WallClock()
	}
	return &Surface{
		clock: clock,
		ctrls: make(map[string]Controller),
		lit:   make(map[cell]pulse),
	}
}

// Bind sets the engine pads act on
func (s *Surface) Bind(e *rhythm.Engine) {
	s.mu.Lock()
	s.engine = e
	s.mu.Unlock()
	s.Refresh()
}

// Attach starts reading c and paints the layout on it
func (s *Surface) Attach(c Controller) {
	s.mu.Lock()
	s.ctrls[c.ID()] = c
	s.mu.Unlock()

	s.paint([]Controller{c}, s.layout())
	go s.listen(c)
}

// Detach forgets a controller (its channels are closed by the manager)
func (s *Surface) Detach(id string) {
	s.mu.Lock()
	delete(s.ctrls, id)
	s.mu.Unlock()
}

func (s *Surface) listen(c Controller) {
	pads, notes := c.PadEvents(), c.NoteEvents()
	for pads != nil || notes != nil {
		select {
		case ev, ok := <-pads:
			if !ok {
				pads = nil
				continue
			}
			s.HandlePad(ev)
		case ev, ok := <-notes:
			if !ok {
				notes = nil
				continue
			}
			s.HandleNote(ev)
		}
	}
	debug.Log("surface", "%s: input closed", c.ID())
}

// HandlePad performs the pad's action
func (s *Surface) HandlePad(ev PadEvent) {
	e := s.bound()
	if e == nil {
		return
	}
	slots := e.Slots()
	a := padActionFor(ev.Row, ev.Col, len(slots))
	if a.kind == actNone {
		return
	}
	slot := slots[a.slot]

	switch a.kind {
	case actKey:
		note, _ := keymap.NoteFor(a.key)
		slot.Activate(a.key, note)
	case actRecord:
		slot.Toggle()
	case actPlay:
		if slot.CanPlay() {
			slot.Play()
		}
	case actClear:
		slot.Clear()
	}
}

// HandleNote feeds a keyboard note-on into the engine as physical input
func (s *Surface) HandleNote(ev NoteEvent) {
	e := s.bound()
	if e == nil {
		return
	}
	key, ok := keymap.KeyForMIDI(ev.Note)
	if !ok {
		debug.LogEvery(20, "surface", "note %d outside the keyboard", ev.Note)
		return
	}
	e.Press(key)
}

// Observe repaints on state changes; wire it into the engine's OnEvent
func (s *Surface) Observe(ev rhythm.Event) {
	switch ev.Kind {
	case rhythm.EventFeedback, rhythm.EventSoundError, rhythm.EventPlayback:
		return
	}
	s.Refresh()
}

// Pulse lights the pad for key in the slot's row for PulseDuration
func (s *Surface) Pulse(slotID string, key keymap.Key) {
	e := s.bound()
	if e == nil {
		return
	}
	slot, ok := e.Slot(slotID)
	col, ok2 := keymap.Index(key)
	if !ok || !ok2 || slot.Index() > 7 {
		return
	}
	c := cell{row: slot.Index(), col: col}

	s.mu.Lock()
	if p, ok := s.lit[c]; ok {
		p.timer.Stop()
	}
	s.gen++
	gen := s.gen
	s.lit[c] = pulse{gen: gen, timer: s.clock.AfterFunc(PulseDuration, func() { s.unlight(c, gen) })}
	ctrls := s.controllers()
	s.mu.Unlock()

	s.paint(ctrls, []LEDUpdate{{Row: c.row, Col: c.col, Color: colorPulse}})
}

func (s *Surface) unlight(c cell, gen uint64) {
	s.mu.Lock()
	if p, ok := s.lit[c]; !ok || p.gen != gen {
		s.mu.Unlock()
		return
	}
	delete(s.lit, c)
	ctrls := s.controllers()
	s.mu.Unlock()

	for _, u := range s.layout() {
		if u.Row == c.row && u.Col == c.col {
			s.paint(ctrls, []LEDUpdate{u})
			return
		}
	}
}

// Refresh repaints every pad that is not mid-pulse
func (s *Surface) Refresh() {
	updates := s.layout()

	s.mu.Lock()
	ctrls := s.controllers()
	kept := updates[:0]
	for _, u := range updates {
		if _, pulsing := s.lit[cell{u.Row, u.Col}]; !pulsing {
			kept = append(kept, u)
		}
	}
	s.mu.Unlock()

	s.paint(ctrls, kept)
}

// layout is the resting colour of every pad we use
func (s *Surface) layout() []LEDUpdate {
	e := s.bound()
	if e == nil {
		return nil
	}
	gate := e.Gate()
	var updates []LEDUpdate
	for i, slot := range e.Slots() {
		if i > 7 {
			break
		}
		recording := slot.Recording()
		for col, k := range keymap.Keys() {
			color := colorWhiteKey
			switch {
			case recording:
				color = colorRecRow
			case k.IsSharp():
				color = colorSharpKey
			}
			updates = append(updates, LEDUpdate{Row: i, Col: col, Color: color})
		}

		side := LEDUpdate{Row: i, Col: 8, Color: colorWhiteKey}
		switch slot.Status() {
		case rhythm.StatusRecording:
			side.Color, side.Channel = colorRecording, ChannelPulse
		case rhythm.StatusComplete:
			side.Color = colorComplete
		case rhythm.StatusTooShort:
			side.Color = colorTooShort
		}
		updates = append(updates, side)

		if i < 4 {
			play := LEDUpdate{Row: 8, Col: 2 * i, Color: colorOff}
			if gate.Play[i] {
				play.Color = colorPlay
			}
			clr := LEDUpdate{Row: 8, Col: 2*i + 1, Color: colorOff}
			if slot.Len() > 0 {
				clr.Color = colorClear
			}
			updates = append(updates, play, clr)
		}
	}
	return updates
}

func (s *Surface) paint(ctrls []Controller, updates []LEDUpdate) {
	if len(updates) == 0 {
		return
	}
	s.paintMu.Lock()
	defer s.paintMu.Unlock()
	for _, c := range ctrls {
		if err := c.SetLEDBatch(updates); err != nil {
			debug.Warn("surface", "%s: %v", c.ID(), err)
		}
	}
}

func (s *Surface) bound() *rhythm.Engine {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine
}

// controllers snapshots the attached controllers. Caller holds mu.
func (s *Surface) controllers() []Controller {
	out := make([]Controller, 0, len(s.ctrls))
	for _, c := range s.ctrls {
		out = append(out, c)
	}
	return out
}

// LegendItem names one pad colour for on-screen help
type LegendItem struct {
	Color [3]uint8
	Name  string
	Desc  string
}

// Legend describes the pad colours of the current layout
func (s *Surface) Legend() []LegendItem {
	return []LegendItem{
		{colorWhiteKey, "Keys", "one row per rhythm, Q to I left to right"},
		{colorRecording, "Record", "right column starts and stops recording"},
		{colorPlay, "Play", "top row, even pads replay a rhythm"},
		{colorClear, "Clear", "top row, odd pads clear a rhythm"},
	}
}

// Mirror returns the resting colours of row, columns 0-8. Row 8 is the top row.
func (s *Surface) Mirror(row int) [][3]uint8 {
	out := make([][3]uint8, 9)
	for _, u := range s.layout() {
		if u.Row == row && u.Col >= 0 && u.Col < len(out) {
			out[u.Col] = u.Color
		}
	}
	return out
}
