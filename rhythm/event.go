package rhythm

// Source tells where a beat came from
type Source int

const (
	SourceKeyboard Source = iota // physical key or MIDI keyboard
	SourcePointer                // virtual control: click or pad
	SourcePlayback               // replay of a recorded pattern
)

func (s Source) String() string {
	switch s {
	case SourcePointer:
		return "pointer"
	case SourcePlayback:
		return "playback"
	default:
		return "keyboard"
	}
}

type EventKind int

const (
	EventStarted    EventKind = iota // session opened
	EventStopped                     // session closed; Status holds the grade
	EventBeat                        // beat appended to the pattern
	EventCleared                     // pattern emptied
	EventFeedback                    // key sounded and pulsed, recording or not
	EventPlayback                    // replay scheduled
	EventSoundError                  // a sounder failed; recording carries on
)

func (k EventKind) String() string {
	switch k {
	case EventStarted:
		return "started"
	case EventStopped:
		return "stopped"
	case EventBeat:
		return "beat"
	case EventCleared:
		return "cleared"
	case EventFeedback:
		return "feedback"
	case EventPlayback:
		return "playback"
	case EventSoundError:
		return "sound-error"
	}
	return "unknown"
}

// Event reports a change in one slot
type Event struct {
	Kind   EventKind
	Slot   string
	Source Source
	Beat   Beat
	Status Status
	Beats  int   // pattern length after the change
	Forced bool  // stop caused by another slot starting
	Err    error // EventSoundError
}
