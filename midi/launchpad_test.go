package midi

import "testing"

func TestNoteRowColRoundTrip(t *testing.T) {
	for row := 0; row < 8; row++ {
		for col := 0; col < 9; col++ {
			r, c := noteToRowCol(rowColToNote(row, col))
			if r != row || c != col {
				t.Fatalf("(%d,%d) -> (%d,%d)", row, col, r, c)
			}
		}
	}
	if r, c := noteToRowCol(93); r != 8 || c != 2 {
		t.Fatalf("note 93 = (%d,%d)", r, c)
	}
	if r, _ := noteToRowCol(5); r != -1 {
		t.Fatal("note 5 is not a pad")
	}
	if r, c := ccToRowCol(91); r != 8 || c != 0 {
		t.Fatalf("cc 91 = (%d,%d)", r, c)
	}
}

func TestNearestPaletteColor(t *testing.T) {
	tests := []struct {
		rgb  [3]uint8
		want uint8
	}{
		{colorOff, 0},
		{colorRecording, 5},
		{colorComplete, 21},
		{colorPulse, 119},
		{colorSharpKey, 43},
	}
	for _, tt := range tests {
		if got := nearestPaletteColor(tt.rgb); got != tt.want {
			t.Errorf("nearestPaletteColor(%v) = %d, want %d", tt.rgb, got, tt.want)
		}
	}
}

func TestClassifyPort(t *testing.T) {
	ignore := []string{"through", "fluidsynth"}
	tests := []struct {
		name string
		want ControllerType
	}{
		{"Launchpad X LPX MIDI", ControllerLaunchpad},
		{"Launchpad X LPX DAW", ControllerUnknown},
		{"Midi Through Port-0", ControllerUnknown},
		{"FLUIDSynth virtual port", ControllerUnknown},
		{"Keystation 49 MK3", ControllerKeyboard},
	}
	for _, tt := range tests {
		if got := classifyPort(tt.name, ignore); got != tt.want {
			t.Errorf("classifyPort(%q) = %s, want %s", tt.name, got, tt.want)
		}
	}
}

func TestAcceptsChannel(t *testing.T) {
	if !acceptsChannel(0, 9) {
		t.Error("omni should accept every channel")
	}
	if !acceptsChannel(10, 9) || acceptsChannel(1, 9) {
		t.Error("channel 10 is wire channel 9")
	}
}
