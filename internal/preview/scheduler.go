package preview

import (
	"sync"
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ivlev/sketchstory/internal/playback"
)

// Scheduler is a playback.Scheduler that delivers frame callbacks as
// bubbletea messages. Frames are therefore drawn on the program's update
// goroutine, never concurrently with View.
type Scheduler struct {
	Interval time.Duration

	now  func() time.Time
	mu   sync.Mutex
	send func(tea.Msg)
}

var _ playback.Scheduler = (*Scheduler)(nil)

// NewScheduler returns a scheduler ticking at hz; hz <= 0 means 60
func NewScheduler(hz int) *Scheduler {
	s := &Scheduler{Interval: playback.DefaultRefresh, now: time.Now}
	if hz > 0 {
		s.Interval = time.Second / time.Duration(hz)
	}
	return s
}

// Attach sets where frame messages go, usually (*tea.Program).Send.
// Frames that fire before Attach are dropped.
func (s *Scheduler) Attach(send func(tea.Msg)) {
	s.mu.Lock()
	s.send = send
	s.mu.Unlock()
}

func (s *Scheduler) Now() time.Time { return s.now() }

func (s *Scheduler) ScheduleNextFrame(fn func(now time.Time)) func() {
	msg := frameMsg{fn: fn, cancelled: new(atomic.Bool)}
	t := time.AfterFunc(s.Interval, func() {
		s.mu.Lock()
		send := s.send
		s.mu.Unlock()
		if send != nil {
			send(msg)
		}
	})
	return func() {
		msg.cancelled.Store(true)
		t.Stop()
	}
}

// frameMsg carries one scheduled callback to Update
type frameMsg struct {
	fn        func(now time.Time)
	cancelled *atomic.Bool
}

func (m frameMsg) fire(now time.Time) {
	if !m.cancelled.Load() {
		m.fn(now)
	}
}
