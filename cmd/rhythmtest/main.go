package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv"

	"go-rhythm/keymap"
	"go-rhythm/midi"
	"go-rhythm/rhythm"
	"go-rhythm/tone"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		return
	}

	var err error
	switch os.Args[1] {
	case "list":
		listPorts()
	case "keys":
		listKeys()
	case "tone":
		err = playTone(os.Args[2:])
	case "play":
		err = playPattern(os.Args[2:])
	case "render":
		err = renderPattern(os.Args[2:])
	case "synth":
		err = synthTest(os.Args[2:])
	default:
		usage()
	}
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Println("Rhythm diagnostics")
	fmt.Println("")
	fmt.Println("Commands:")
	fmt.Println("  list                      - List all MIDI ports")
	fmt.Println("  keys                      - Show the key map")
	fmt.Println("  tone <key|note>           - Play one tone on the audio device")
	fmt.Println("  play \"Q:0 E:400 T:250\"    - Replay a pattern on the audio device")
	fmt.Println("  render \"<pattern>\" out.wav - Render a pattern to a WAV file")
	fmt.Println("  synth <port> <key|note>   - Send one note to a MIDI output")
}

func listPorts() {
	fmt.Println("=== MIDI Input Ports ===")
	fmt.Println("(waiting up to 3 seconds...)")

	type result struct {
		ins  []drivers.In
		outs []drivers.Out
	}
	ch := make(chan result, 1)
	go func() {
		ch <- result{ins: gomidi.GetInPorts(), outs: gomidi.GetOutPorts()}
	}()

	select {
	case r := <-ch:
		for i, p := range r.ins {
			fmt.Printf("  %d: %s\n", i, p.String())
		}
		fmt.Println("\n=== MIDI Output Ports ===")
		for i, p := range r.outs {
			fmt.Printf("  %d: %s\n", i, p.String())
		}
	case <-time.After(3 * time.Second):
		fmt.Println("\nTIMEOUT! CoreMIDI is hung.")
		fmt.Println("Fix: sudo killall coreaudiod midiserver")
	}
}

func listKeys() {
	fmt.Println("key  note  freq(Hz)  midi")
	for _, b := range keymap.Bindings() {
		fmt.Printf("%-4s %-5s %8.2f  %d\n", b.Key, b.Note, b.Frequency, b.MIDI)
	}
}

// resolve accepts a key ("e") or a note ("D4")
func resolve(arg string) (keymap.Note, float64, error) {
	if k, ok := keymap.Canonical(arg); ok {
		n, _ := keymap.NoteFor(k)
		f, _ := keymap.Frequency(n)
		return n, f, nil
	}
	n := keymap.Note(strings.ToUpper(arg))
	if f, ok := keymap.Frequency(n); ok {
		return n, f, nil
	}
	return "", 0, fmt.Errorf("unknown key or note %q", arg)
}

func playTone(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: tone <key|note>")
	}
	note, freq, err := resolve(args[0])
	if err != nil {
		return err
	}
	fmt.Printf("Playing %s (%.2f Hz)\n", note, freq)
	if err := tone.Shared().Play(freq, tone.DefaultDuration); err != nil {
		return err
	}
	time.Sleep(tone.DefaultDuration + 100*time.Millisecond)
	return nil
}

func playPattern(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: play \"Q:0 E:400 T:250\"")
	}
	p, err := rhythm.ParsePattern(args[0])
	if err != nil {
		return err
	}
	gen := tone.Shared()
	var playErr error
	pb := rhythm.NewScheduler(nil).Schedule(p, func(b rhythm.Beat) {
		freq, _ := keymap.Frequency(b.Note)
		fmt.Printf("  %s %s\n", b.Key, b.Note)
		if err := gen.Play(freq, tone.DefaultDuration); err != nil && playErr == nil {
			playErr = err
		}
	}, nil)
	<-pb.Done()
	time.Sleep(tone.DefaultDuration)
	return playErr
}

func renderPattern(args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: render \"<pattern>\" out.wav")
	}
	p, err := rhythm.ParsePattern(args[0])
	if err != nil {
		return err
	}
	offsets := p.Offsets()
	strikes := make([]tone.Strike, len(p))
	for i, b := range p {
		freq, _ := keymap.Frequency(b.Note)
		strikes[i] = tone.Strike{Frequency: freq, At: offsets[i]}
	}

	f, err := os.Create(args[1])
	if err != nil {
		return err
	}
	defer f.Close()
	if err := tone.WriteWAV(f, strikes, tone.DefaultDuration); err != nil {
		return err
	}
	fmt.Printf("Wrote %d beats (%s) to %s\n", len(p), p.Duration(), args[1])
	return nil
}

func synthTest(args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: synth <port> <key|note>")
	}
	port, err := midi.FindOutPort(args[0])
	if err != nil {
		return err
	}
	note, freq, err := resolve(args[1])
	if err != nil {
		return err
	}
	fmt.Printf("Sending %s to %s\n", note, port.String())
	if err := midi.NewOutput(port, 1).Play(freq, tone.DefaultDuration); err != nil {
		return err
	}
	time.Sleep(tone.DefaultDuration + 100*time.Millisecond)
	return nil
}
