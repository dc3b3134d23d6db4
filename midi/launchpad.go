package midi

import (
	"fmt"

	"go-rhythm/debug"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
)

// LaunchpadController handles a Novation Launchpad X in Programmer mode
type LaunchpadController struct {
	id       string
	outPort  drivers.Out
	inPort   drivers.In
	send     func(msg gomidi.Message) error
	stopFunc func()

	padChan  chan PadEvent
	noteChan chan NoteEvent
}

// Programmer-mode SysEx bodies (F0 and F7 are added by gomidi)
var (
	sysexProgrammerMode = []byte{0x00, 0x20, 0x29, 0x02, 0x0C, 0x00, 0x7F}
	sysexBrightness     = []byte{0x00, 0x20, 0x29, 0x02, 0x0C, 0x08, 0x7F}
	sysexLEDFeedback    = []byte{0x00, 0x20, 0x29, 0x02, 0x0C, 0x0A, 0x01, 0x01}
)

// NewLaunchpadController creates and configures a Launchpad
func NewLaunchpadController(id string, inPort drivers.In, outPort drivers.Out) (*LaunchpadController, error) {
	lp := &LaunchpadController{
		id:       id,
		inPort:   inPort,
		outPort:  outPort,
		padChan:  make(chan PadEvent, 32),
		noteChan: make(chan NoteEvent),
	}

	if outPort != nil {
		send, err := gomidi.SendTo(outPort)
		if err != nil {
			return nil, fmt.Errorf("open output: %w", err)
		}
		lp.send = send
		for _, body := range [][]byte{sysexProgrammerMode, sysexBrightness, sysexLEDFeedback} {
			if err := lp.send(gomidi.SysEx(body)); err != nil {
				debug.Warn("launchpad", "%s: sysex: %v", id, err)
			}
		}
	}

	if inPort != nil {
		stop, err := gomidi.ListenTo(inPort, func(msg gomidi.Message, timestampms int32) {
			var channel, note, velocity uint8
			var cc, value uint8

			row, col := -1, -1
			switch {
			case msg.GetNoteOn(&channel, &note, &velocity) && velocity > 0:
				row, col = noteToRowCol(note)
			case msg.GetControlChange(&channel, &cc, &value) && value > 0:
				row, col = ccToRowCol(cc)
				velocity = value
			}
			if row < 0 {
				return
			}
			select {
			case lp.padChan <- PadEvent{Row: row, Col: col, Velocity: velocity}:
			default:
				debug.LogEvery(10, "launchpad", "%s: dropped pad %d,%d", id, row, col)
			}
		})
		if err != nil {
			return nil, fmt.Errorf("open input: %w", err)
		}
		lp.stopFunc = stop
	}

	return lp, nil
}

func (lp *LaunchpadController) ID() string {
	return lp.id
}

func (lp *LaunchpadController) Type() ControllerType {
	return ControllerLaunchpad
}

func (lp *LaunchpadController) PadEvents() <-chan PadEvent {
	return lp.padChan
}

func (lp *LaunchpadController) NoteEvents() <-chan NoteEvent {
	return lp.noteChan // pads only
}

func (lp *LaunchpadController) SetLEDRGB(row, col int, rgb [3]uint8, channel uint8) error {
	if lp.send == nil {
		return nil
	}
	return lp.send(gomidi.NoteOn(channel, rowColToNote(row, col), nearestPaletteColor(rgb)))
}

// SetLEDBatch sends one NoteOn per update and returns the first error
func (lp *LaunchpadController) SetLEDBatch(updates []LEDUpdate) error {
	if lp.send == nil || len(updates) == 0 {
		return nil
	}

	var first error
	for _, u := range updates {
		err := lp.send(gomidi.NoteOn(u.Channel, rowColToNote(u.Row, u.Col), nearestPaletteColor(u.Color)))
		if err != nil && first == nil {
			first = err
		}
	}
	debug.LogEvery(50, "lp-send", "%s: batch of %d", lp.id, len(updates))
	return first
}

func (lp *LaunchpadController) Close() error {
	if lp.send != nil {
		var updates []LEDUpdate
		for row := 0; row < 9; row++ {
			for col := 0; col < 9; col++ {
				if row == 8 && col == 8 {
					continue // no LED at 8,8
				}
				updates = append(updates, LEDUpdate{Row: row, Col: col})
			}
		}
		lp.SetLEDBatch(updates)
	}
	if lp.stopFunc != nil {
		lp.stopFunc()
	}
	close(lp.padChan)
	close(lp.noteChan)
	return nil
}

// Launchpad X palette entries we paint with: {velocity, R, G, B}
var palette = [][4]uint8{
	{0, 0, 0, 0},         // off
	{5, 255, 0, 0},       // red
	{7, 180, 60, 60},     // dim red
	{9, 255, 100, 0},     // orange
	{13, 255, 200, 0},    // yellow
	{19, 0, 100, 0},      // dim green
	{21, 0, 255, 0},      // green
	{37, 0, 200, 200},    // cyan
	{43, 40, 60, 120},    // dim blue
	{45, 0, 100, 255},    // blue
	{49, 150, 0, 200},    // purple
	{71, 60, 60, 60},     // dim white
	{119, 255, 255, 255}, // white
}

// nearestPaletteColor finds the closest palette velocity for an RGB value
func nearestPaletteColor(rgb [3]uint8) uint8 {
	best := uint8(0)
	bestDist := -1
	r, g, b := int(rgb[0]), int(rgb[1]), int(rgb[2])
	for _, p := range palette {
		dr, dg, db := r-int(p[1]), g-int(p[2]), b-int(p[3])
		dist := dr*dr + dg*dg + db*db
		if bestDist < 0 || dist < bestDist {
			bestDist = dist
			best = p[0]
		}
	}
	return best
}

// Launchpad X note mapping
// 8x8 Grid:  Row 0 (bottom) = notes 11-18, Row 7 = notes 81-88
// Side col:  Col 8 (right side scene buttons) = notes 19, 29, ... 89
// Top row:   Row 8 (top control row) = CC 91-98

func rowColToNote(row, col int) uint8 {
	if row == 8 {
		return uint8(91 + col)
	}
	return uint8((row+1)*10 + col + 1)
}

func noteToRowCol(note uint8) (row, col int) {
	if note >= 91 && note <= 98 {
		return 8, int(note - 91)
	}
	row = int(note/10) - 1
	col = int(note%10) - 1
	if row < 0 || row > 7 || col < 0 || col > 8 {
		return -1, -1
	}
	return row, col
}

func ccToRowCol(cc uint8) (row, col int) {
	if cc >= 91 && cc <= 98 {
		return 8, int(cc - 91)
	}
	return -1, -1
}
