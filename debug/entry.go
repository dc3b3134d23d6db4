package debug

import (
	"log/slog"
	"time"
)

// Entry is a warning kept in memory
type Entry struct {
	Time     time.Time
	Level    slog.Level
	Category string
	Message  string
}

func (e Entry) String() string {
	return e.Time.Format("15:04:05") + " " + e.Category + ": " + e.Message
}
