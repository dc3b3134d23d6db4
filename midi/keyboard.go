package midi

import (
	"fmt"

	"go-rhythm/debug"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
)

// KeyboardController handles a standard MIDI keyboard. Its note-ons are
// physical input; it has no LEDs.
type KeyboardController struct {
	id       string
	inPort   drivers.In
	stopFunc func()

	padChan  chan PadEvent
	noteChan chan NoteEvent
}

// NewKeyboardController creates a keyboard controller (input only).
// channel is 1-16, or 0 to accept every channel.
func NewKeyboardController(id string, inPort drivers.In, channel int) (*KeyboardController, error) {
	kb := &KeyboardController{
		id:       id,
		inPort:   inPort,
		padChan:  make(chan PadEvent),
		noteChan: make(chan NoteEvent, 32),
	}

	if inPort != nil {
		stop, err := gomidi.ListenTo(inPort, func(msg gomidi.Message, timestampms int32) {
			var ch, note, velocity uint8
			if !msg.GetNoteOn(&ch, &note, &velocity) || velocity == 0 {
				return
			}
			if !acceptsChannel(channel, ch) {
				return
			}
			select {
			case kb.noteChan <- NoteEvent{Note: note, Velocity: velocity, Channel: ch}:
			default:
				debug.LogEvery(10, "keyboard", "%s: dropped note %d, reader behind", id, note)
			}
		})
		if err != nil {
			return nil, fmt.Errorf("open input: %w", err)
		}
		kb.stopFunc = stop
	}

	return kb, nil
}

func acceptsChannel(want int, got uint8) bool {
	return want <= 0 || int(got) == want-1
}

func (kb *KeyboardController) ID() string {
	return kb.id
}

func (kb *KeyboardController) Type() ControllerType {
	return ControllerKeyboard
}

func (kb *KeyboardController) PadEvents() <-chan PadEvent {
	return kb.padChan // Keyboards don't have pads
}

func (kb *KeyboardController) NoteEvents() <-chan NoteEvent {
	return kb.noteChan
}

// SetLEDRGB is a no-op for keyboards (no visual feedback)
func (kb *KeyboardController) SetLEDRGB(row, col int, rgb [3]uint8, channel uint8) error {
	return nil
}

// SetLEDBatch is a no-op for keyboards
func (kb *KeyboardController) SetLEDBatch(updates []LEDUpdate) error {
	return nil
}

func (kb *KeyboardController) Close() error {
	if kb.stopFunc != nil {
		kb.stopFunc()
	}
	close(kb.padChan)
	close(kb.noteChan)
	return nil
}
