package tone

import "sync"

// mixer mixes multiple voices into a single 16-bit mono PCM stream.
type mixer struct {
	mu     sync.Mutex
	voices []Voice
}

// Add starts a voice on the next read
func (m *mixer) Add(v Voice) {
	m.mu.Lock()
	m.voices = append(m.voices, v)
	m.mu.Unlock()
}

// Active returns the number of voices still sounding
func (m *mixer) Active() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.voices)
}

// Read implements io.Reader for the audio player. Silence is produced when no
// voice is active so the player never drains.
func (m *mixer) Read(p []byte) (int, error) {
	samples := len(p) / 2
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := 0; i < samples; i++ {
		var sum float64
		for idx := 0; idx < len(m.voices); idx++ {
			val, done := m.voices[idx].Sample()
			sum += val
			if done {
				m.voices = append(m.voices[:idx], m.voices[idx+1:]...)
				idx--
			}
		}
		v := toInt16(sum)
		p[2*i] = byte(v)
		p[2*i+1] = byte(v >> 8)
	}
	return samples * 2, nil
}

func toInt16(f float64) int16 {
	if f > 1 {
		f = 1
	} else if f < -1 {
		f = -1
	}
	return int16(f * 32767)
}
