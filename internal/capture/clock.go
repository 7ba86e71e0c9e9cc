package capture

import (
	"context"
	"time"
)

// Clock is the time source of realtime pacing
type Clock interface {
	Now() time.Time
	Sleep(ctx context.Context, d time.Duration) error
}

// WallClock is the real clock
type WallClock struct{}

func (WallClock) Now() time.Time { return time.Now() }

func (WallClock) Sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// pacer yields the elapsed time of frame n
type pacer interface {
	frameTime(ctx context.Context, n int) (float64, error)
}

type syntheticPacer struct {
	frameMs float64
}

func (p syntheticPacer) frameTime(_ context.Context, n int) (float64, error) {
	return float64(n) * p.frameMs, nil
}

type realtimePacer struct {
	clock    Clock
	start    time.Time
	interval time.Duration
	last     float64
}

func newRealtimePacer(c Clock, fps int) *realtimePacer {
	return &realtimePacer{
		clock:    c,
		start:    c.Now(),
		interval: time.Second / time.Duration(fps),
	}
}

func (p *realtimePacer) frameTime(ctx context.Context, n int) (float64, error) {
	slot := p.start.Add(time.Duration(n) * p.interval)
	if wait := slot.Sub(p.clock.Now()); wait > 0 {
		if err := p.clock.Sleep(ctx, wait); err != nil {
			return 0, err
		}
	}
	elapsed := float64(p.clock.Now().Sub(p.start)) / float64(time.Millisecond)
	// elapsed times handed to the renderer never go backwards
	if elapsed < p.last {
		elapsed = p.last
	}
	p.last = elapsed
	return elapsed, nil
}
