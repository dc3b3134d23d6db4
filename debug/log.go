package debug

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	slogmulti "github.com/samber/slog-multi"
)

var (
	mu     sync.Mutex
	file   *os.File
	logger *slog.Logger
	level  = new(slog.LevelVar)
	recent = newRing(32)
)

func init() {
	level.Set(slog.LevelDebug)
	logger = build(nil)
}

// build fans records out to the warning ring and, when enabled, the log file
func build(w io.Writer) *slog.Logger {
	handlers := []slog.Handler{recent}
	if w != nil {
		handlers = append(handlers, slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
	}
	return slog.New(slogmulti.Fanout(handlers...))
}

// Enable starts debug logging to ~/.config/go-rhythm/debug.log
func Enable() error {
	homeDir, _ := os.UserHomeDir()
	return EnableFile(filepath.Join(homeDir, ".config", "go-rhythm", "debug.log"))
}

// EnableFile starts debug logging to path, truncating it
func EnableFile(path string) error {
	mu.Lock()
	defer mu.Unlock()

	if file != nil {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}
	file = f
	logger = build(f)
	logger.Info("=== Debug logging started ===", "cat", "debug")
	return nil
}

// EnableWriter sends debug logging to w
func EnableWriter(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	logger = build(w)
}

// Disable stops debug logging. Warnings are still kept for Recent.
func Disable() {
	mu.Lock()
	defer mu.Unlock()

	if file != nil {
		file.Close()
		file = nil
	}
	logger = build(nil)
}

// SetLevel sets the file log level from a name like "info" or "warn"
func SetLevel(name string) error {
	return level.UnmarshalText([]byte(name))
}

// Logger exposes the current logger for code that wants structured attrs
func Logger() *slog.Logger {
	mu.Lock()
	defer mu.Unlock()
	return logger
}

// Log writes a message to the debug log
func Log(category, format string, args ...any) {
	Logger().Debug(fmt.Sprintf(format, args...), "cat", category)
}

// Warn logs something the user may want to know about. The last few
// warnings are kept in memory even when file logging is off.
func Warn(category, format string, args ...any) {
	Logger().Warn(fmt.Sprintf(format, args...), "cat", category)
}

// LogEvery logs only every N calls (use for high-frequency events)
var counters = make(map[string]int)

func LogEvery(n int, category, format string, args ...any) {
	mu.Lock()
	key := category + format
	counters[key]++
	count := counters[key]
	mu.Unlock()

	if count%n == 0 {
		Log(category, format+" (every %d, count=%d)", append(args, n, count)...)
	}
}

// Recent returns the latest warnings, oldest first
func Recent() []Entry {
	return recent.entries()
}

var _ slog.Handler = (*ring)(nil)

// ring is a slog handler that keeps the last n warnings
type ring struct {
	mu   sync.Mutex
	buf  []Entry
	next int
	full bool
}

func newRing(n int) *ring {
	return &ring{buf: make([]Entry, n)}
}

func (r *ring) Enabled(_ context.Context, l slog.Level) bool {
	return l >= slog.LevelWarn
}

func (r *ring) Handle(_ context.Context, rec slog.Record) error {
	e := Entry{Time: rec.Time, Level: rec.Level, Message: rec.Message}
	rec.Attrs(func(a slog.Attr) bool {
		if a.Key == "cat" {
			e.Category = a.Value.String()
			return false
		}
		return true
	})

	r.mu.Lock()
	r.buf[r.next] = e
	r.next = (r.next + 1) % len(r.buf)
	if r.next == 0 {
		r.full = true
	}
	r.mu.Unlock()
	return nil
}

func (r *ring) WithAttrs([]slog.Attr) slog.Handler { return r }
func (r *ring) WithGroup(string) slog.Handler      { return r }

func (r *ring) entries() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.full {
		return append([]Entry(nil), r.buf[:r.next]...)
	}
	out := make([]Entry, 0, len(r.buf))
	out = append(out, r.buf[r.next:]...)
	return append(out, r.buf[:r.next]...)
}
