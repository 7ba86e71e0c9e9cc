package playback

import (
	"time"
)

// DefaultRefresh is the frame interval of TickerScheduler at 60 Hz
const DefaultRefresh = time.Second / 60

// Scheduler delivers frame callbacks. Each ScheduleNextFrame call results
// in at most one invocation of fn, unless cancelled first. fn must not be
// called from within ScheduleNextFrame itself.
type Scheduler interface {
	Now() time.Time
	ScheduleNextFrame(fn func(now time.Time)) (cancel func())
}

// TickerScheduler runs frame callbacks on the wall clock at a fixed refresh
// interval. Callbacks fire on timer goroutines.
type TickerScheduler struct {
	Interval time.Duration
}

// NewTickerScheduler returns a scheduler at the given rate; hz <= 0 means 60
func NewTickerScheduler(hz int) *TickerScheduler {
	if hz <= 0 {
		return &TickerScheduler{Interval: DefaultRefresh}
	}
	return &TickerScheduler{Interval: time.Second / time.Duration(hz)}
}

func (s *TickerScheduler) Now() time.Time { return time.Now() }

func (s *TickerScheduler) ScheduleNextFrame(fn func(now time.Time)) func() {
	interval := s.Interval
	if interval <= 0 {
		interval = DefaultRefresh
	}
	t := time.AfterFunc(interval, func() { fn(time.Now()) })
	return func() { t.Stop() }
}
