package rhythm

import (
	"sync"
	"time"
)

// Scheduler replays patterns on a clock
type Scheduler struct {
	clock Clock
}

// NewScheduler creates a scheduler driven by c
func NewScheduler(c Clock) *Scheduler {
	if c == nil {
		c = wallClock{}
	}
	return &Scheduler{clock: c}
}

// Playback is one replay in progress. Beat i fires at the sum of the delays
// of beats 0..i after scheduling; beats fire one at a time, in order.
type Playback struct {
	clock   Clock
	pattern Pattern
	offsets []time.Duration
	start   time.Time
	fire    func(Beat)
	onDone  func(*Playback)

	mu      sync.Mutex
	next    int
	timer   Timer
	stopped bool
	done    chan struct{}
}

// Schedule starts replaying p, calling fire for each beat. onDone (optional)
// runs once when the last beat has fired or the playback is cancelled. An
// empty pattern yields a playback that is already done.
func (s *Scheduler) Schedule(p Pattern, fire func(Beat), onDone func(*Playback)) *Playback {
	pb := &Playback{
		clock:   s.clock,
		pattern: p,
		offsets: p.Offsets(),
		start:   s.clock.Now(),
		fire:    fire,
		onDone:  onDone,
		done:    make(chan struct{}),
	}
	if len(p) == 0 {
		pb.stopped = true
		pb.finish()
		return pb
	}
	pb.mu.Lock()
	pb.arm()
	pb.mu.Unlock()
	return pb
}

// arm waits for the next beat. Caller holds mu.
func (pb *Playback) arm() {
	wait := pb.start.Add(pb.offsets[pb.next]).Sub(pb.clock.Now())
	if wait < 0 {
		wait = 0
	}
	pb.timer = pb.clock.AfterFunc(wait, pb.tick)
}

func (pb *Playback) tick() {
	pb.mu.Lock()
	if pb.stopped {
		pb.mu.Unlock()
		return
	}
	b := pb.pattern[pb.next]
	pb.mu.Unlock()

	pb.fire(b)

	pb.mu.Lock()
	if pb.stopped {
		pb.mu.Unlock()
		return
	}
	pb.next++
	if pb.next < len(pb.pattern) {
		pb.arm()
		pb.mu.Unlock()
		return
	}
	pb.stopped = true
	pb.mu.Unlock()
	pb.finish()
}

// Cancel drops the beats that have not fired yet
func (pb *Playback) Cancel() {
	pb.mu.Lock()
	if pb.stopped {
		pb.mu.Unlock()
		return
	}
	pb.stopped = true
	if pb.timer != nil {
		pb.timer.Stop()
	}
	pb.mu.Unlock()
	pb.finish()
}

// Done is closed when the playback finishes or is cancelled
func (pb *Playback) Done() <-chan struct{} {
	return pb.done
}

// Fired returns how many beats have been replayed
func (pb *Playback) Fired() int {
	pb.mu.Lock()
	defer pb.mu.Unlock()
	return pb.next
}

func (pb *Playback) finish() {
	close(pb.done)
	if pb.onDone != nil {
		pb.onDone(pb)
	}
}
