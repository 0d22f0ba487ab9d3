package assembly

import "time"

// SetClock overrides the clock used for manifest timestamps.
func (s *Store) SetClock(now func() time.Time) {
	s.now = now
}
