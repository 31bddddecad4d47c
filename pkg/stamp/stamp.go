// Package stamp produces the millisecond UTC stamps embedded in output
// and archive file names.
package stamp

import (
	"fmt"
	"sync"
	"time"
)

const layout = "20060102150405"

type Clock func() time.Time

// Millis formats t in UTC as yyyyMMddHHmmssfff.
func Millis(t time.Time) string {
	t = t.UTC()
	return fmt.Sprintf("%s%03d", t.Format(layout), t.Nanosecond()/int(time.Millisecond))
}

// Sequence hands out strictly increasing millisecond-aligned UTC times.
// When the clock has not advanced by a full millisecond since the last
// call, the previous value plus one millisecond is returned instead.
type Sequence struct {
	mu   sync.Mutex
	now  Clock
	last time.Time
}

func NewSequence(now Clock) *Sequence {
	if now == nil {
		now = time.Now
	}
	return &Sequence{now: now}
}

func (s *Sequence) Next() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	t := s.now().UTC().Truncate(time.Millisecond)
	if !t.After(s.last) {
		t = s.last.Add(time.Millisecond)
	}
	s.last = t
	return t
}
