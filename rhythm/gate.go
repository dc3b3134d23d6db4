package rhythm

// Gate is the derived enable state of the play and submit controls
type Gate struct {
	Play   []bool // per slot, page order
	Submit bool
}

// Gate recomputes readiness from the current patterns
func (e *Engine) Gate() Gate {
	e.mu.Lock()
	defer e.mu.Unlock()

	g := Gate{Play: make([]bool, len(e.slots)), Submit: true}
	for i, s := range e.slots {
		long := len(s.rec.pattern) >= e.cfg.MinBeats
		g.Play[i] = long && !s.rec.recording
		if !long {
			g.Submit = false
		}
	}
	return g
}

// CanPlay reports whether the slot's play control is enabled
func (s *Slot) CanPlay() bool {
	return s.e.Gate().Play[s.index]
}
