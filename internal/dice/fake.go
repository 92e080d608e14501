package dice

// Scripted is a Source that replays fixed values. Once a script is exhausted
// the last value repeats; an empty Ints script yields 0 and an empty Floats
// script yields 0.99 (never under a probability check).
type Scripted struct {
	Ints   []int
	Floats []float64

	intPos   int
	floatPos int
}

// Intn returns the next scripted int, clamped into [0, n).
func (s *Scripted) Intn(n int) int {
	v := 0
	if len(s.Ints) > 0 {
		idx := s.intPos
		if idx >= len(s.Ints) {
			idx = len(s.Ints) - 1
		}
		v = s.Ints[idx]
		s.intPos++
	}
	if v >= n {
		v = n - 1
	}
	if v < 0 {
		v = 0
	}
	return v
}

// Float64 returns the next scripted float.
func (s *Scripted) Float64() float64 {
	if len(s.Floats) == 0 {
		return 0.99
	}
	idx := s.floatPos
	if idx >= len(s.Floats) {
		idx = len(s.Floats) - 1
	}
	s.floatPos++
	return s.Floats[idx]
}
