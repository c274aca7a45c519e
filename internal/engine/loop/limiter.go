package loop

import "time"

// Limiter caps the tick rate using a hybrid sleep/spin wait.
type Limiter struct {
	fps  int
	next time.Time
}

// NewLimiter creates a limiter. fps <= 0 disables limiting.
func NewLimiter(fps int) *Limiter {
	return &Limiter{fps: fps}
}

// Wait blocks until the next tick is due.
func (l *Limiter) Wait() {
	if l == nil || l.fps <= 0 {
		return
	}

	target := time.Second / time.Duration(l.fps)
	if l.next.IsZero() {
		l.next = time.Now().Add(target)
	} else {
		l.next = l.next.Add(target)
	}

	for {
		remaining := time.Until(l.next)
		if remaining <= 0 {
			break
		}
		if remaining > 200*time.Microsecond {
			time.Sleep(remaining - 200*time.Microsecond)
		}
		// spin the last few microseconds
		if time.Until(l.next) <= 0 {
			break
		}
	}

	// resync after a hitch instead of racing to catch up
	if late := -time.Until(l.next); late > target {
		l.next = time.Now().Add(target)
	}
}
