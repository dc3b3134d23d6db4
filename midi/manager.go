package midi

import (
	"context"
	"strings"
	"sync"
	"time"

	"go-rhythm/debug"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv" // Register MIDI driver
)

// DeviceEvent is emitted when controllers connect/disconnect
type DeviceEvent struct {
	Type       DeviceEventType
	Controller Controller
	ID         string
}

type DeviceEventType int

const (
	DeviceConnected DeviceEventType = iota
	DeviceDisconnected
)

// DeviceManager handles hot-plug detection of MIDI controllers
type DeviceManager struct {
	controllers map[string]Controller
	mu          sync.RWMutex
	events      chan DeviceEvent
	pollRate    time.Duration

	ignore          []string // lower-case port name fragments never opened
	keyboardChannel int
	keyboards       bool
}

// NewDeviceManager creates a new device manager
func NewDeviceManager() *DeviceManager {
	return &DeviceManager{
		controllers: make(map[string]Controller),
		events:      make(chan DeviceEvent, 16),
		pollRate:    time.Second,
		ignore:      []string{"through"},
		keyboards:   true,
	}
}

// Ignore skips ports whose name contains any of the fragments (e.g. the
// synth output port, so our own tones are not read back as input)
func (dm *DeviceManager) Ignore(fragments ...string) {
	for _, f := range fragments {
		if f != "" {
			dm.ignore = append(dm.ignore, strings.ToLower(f))
		}
	}
}

// SetKeyboards turns keyboard detection on or off; channel is 1-16 or 0 for omni
func (dm *DeviceManager) SetKeyboards(enabled bool, channel int) {
	dm.keyboards = enabled
	dm.keyboardChannel = channel
}

// Events returns a channel of device connect/disconnect events
func (dm *DeviceManager) Events() <-chan DeviceEvent {
	return dm.events
}

// Controllers returns a snapshot of connected controllers
func (dm *DeviceManager) Controllers() map[string]Controller {
	dm.mu.RLock()
	defer dm.mu.RUnlock()
	out := make(map[string]Controller, len(dm.controllers))
	for k, v := range dm.controllers {
		out[k] = v
	}
	return out
}

// GetLaunchpad returns the first connected Launchpad (or nil)
func (dm *DeviceManager) GetLaunchpad() Controller {
	dm.mu.RLock()
	defer dm.mu.RUnlock()
	for _, c := range dm.controllers {
		if c.Type() == ControllerLaunchpad {
			return c
		}
	}
	return nil
}

// Run starts the polling loop (blocking - run in goroutine)
func (dm *DeviceManager) Run(ctx context.Context) {
	ticker := time.NewTicker(dm.pollRate)
	defer ticker.Stop()

	dm.scan(ctx)

	for {
		select {
		case <-ctx.Done():
			dm.closeAll()
			close(dm.events)
			return
		case <-ticker.C:
			dm.scan(ctx)
		}
	}
}

func (dm *DeviceManager) scan(ctx context.Context) {
	// Port enumeration can hang on CoreMIDI
	type portsResult struct {
		inPorts  []drivers.In
		outPorts []drivers.Out
	}

	ch := make(chan portsResult, 1)
	go func() {
		ch <- portsResult{inPorts: gomidi.GetInPorts(), outPorts: gomidi.GetOutPorts()}
	}()

	var inPorts []drivers.In
	var outPorts []drivers.Out

	select {
	case result := <-ch:
		inPorts = result.inPorts
		outPorts = result.outPorts
	case <-time.After(3 * time.Second):
		debug.Warn("devices", "MIDI port scan timed out")
		return
	case <-ctx.Done():
		return
	}

	seenIDs := make(map[string]bool)

	for i, inPort := range inPorts {
		id := inPort.String()
		kind := classifyPort(id, dm.ignore)
		if kind == ControllerUnknown || (kind == ControllerKeyboard && !dm.keyboards) {
			continue
		}
		seenIDs[id] = true

		dm.mu.RLock()
		_, exists := dm.controllers[id]
		dm.mu.RUnlock()
		if exists {
			continue
		}

		var c Controller
		var err error
		if kind == ControllerLaunchpad {
			c, err = NewLaunchpadController(id, inPorts[i], matchOutPort(id, outPorts))
		} else {
			c, err = NewKeyboardController(id, inPorts[i], dm.keyboardChannel)
		}
		if err != nil {
			debug.Warn("devices", "%s: %v", id, err)
			continue
		}

		dm.mu.Lock()
		dm.controllers[id] = c
		dm.mu.Unlock()

		debug.Log("devices", "connected %s (%s)", id, kind)
		dm.events <- DeviceEvent{Type: DeviceConnected, Controller: c, ID: id}
	}

	dm.mu.Lock()
	var toRemove []string
	for id := range dm.controllers {
		if !seenIDs[id] {
			toRemove = append(toRemove, id)
		}
	}
	for _, id := range toRemove {
		dm.controllers[id].Close()
		delete(dm.controllers, id)
		debug.Log("devices", "disconnected %s", id)
		dm.events <- DeviceEvent{Type: DeviceDisconnected, ID: id}
	}
	dm.mu.Unlock()
}

func (dm *DeviceManager) closeAll() {
	dm.mu.Lock()
	defer dm.mu.Unlock()
	for _, c := range dm.controllers {
		c.Close()
	}
	dm.controllers = make(map[string]Controller)
}

func matchOutPort(name string, outPorts []drivers.Out) drivers.Out {
	name = strings.ToLower(name)
	for _, op := range outPorts {
		if strings.ToLower(op.String()) == name {
			return op
		}
	}
	return nil
}

// classifyPort decides what an input port is from its name
func classifyPort(name string, ignore []string) ControllerType {
	lower := strings.ToLower(name)
	for _, frag := range ignore {
		if strings.Contains(lower, frag) {
			return ControllerUnknown
		}
	}
	if isLaunchpad(lower) {
		return ControllerLaunchpad
	}
	if strings.Contains(lower, "launchpad") {
		return ControllerUnknown // DAW port of a Launchpad
	}
	return ControllerKeyboard
}

func isLaunchpad(name string) bool {
	name = strings.ToLower(name)
	return strings.Contains(name, "launchpad") && strings.Contains(name, "midi")
}
