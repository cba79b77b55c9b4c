package engine

import "time"

// Clock supplies the current time for deadline comparison. The engine
// never reads the wall clock directly so tests can drive expiry.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock returns the wall-clock implementation.
func SystemClock() Clock { return systemClock{} }
