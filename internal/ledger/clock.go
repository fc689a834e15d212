package ledger

import "time"

// Clock supplies the current time. The ledger samples it once per operation.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

// Now returns time.Now().
func (SystemClock) Now() time.Time { return time.Now() }

// unixSeconds converts t to the ledger's timestamp unit. Instants before
// the epoch clamp to 0.
func unixSeconds(t time.Time) uint64 {
	s := t.Unix()
	if s < 0 {
		return 0
	}
	return uint64(s)
}

// ceilSeconds is unixSeconds rounded up to the next whole second. Deadlines
// start from it so a window is never shorter than the refund period; it may
// run up to a second longer.
func ceilSeconds(t time.Time) uint64 {
	s := unixSeconds(t)
	if t.Unix() >= 0 && t.Nanosecond() > 0 {
		s++
	}
	return s
}
