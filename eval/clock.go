package eval

import "time"

// Clock supplies the current instant to TODAY()/NOW(). NewEnv falls back
// to RealClock{} when it is given a nil Clock; passing a fixed Clock keeps
// evaluation fully deterministic and makes TODAY()/NOW() trivial to test.
type Clock interface {
	Now() time.Time
}

// RealClock reports the actual system time.
type RealClock struct{}

// Now implements Clock.
func (RealClock) Now() time.Time { return time.Now() }

// FixedClock always reports the same instant; useful in tests.
type FixedClock struct {
	At time.Time
}

// Now implements Clock.
func (c FixedClock) Now() time.Time { return c.At }
