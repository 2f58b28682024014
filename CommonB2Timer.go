package box2d

import "time"

/// Timer for profiling. Measures wall time since construction or the last Reset.
type B2Timer struct {
	start time.Time
}

func MakeB2Timer() B2Timer {
	return B2Timer{start: time.Now()}
}

/// Reset the timer.
func (t *B2Timer) Reset() {
	t.start = time.Now()
}

/// Get the time since construction or the last reset, in milliseconds.
func (t B2Timer) GetMilliseconds() float64 {
	return float64(time.Since(t.start)) / float64(time.Millisecond)
}
