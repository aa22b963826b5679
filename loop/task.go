// Package loop runs a function periodically on a single goroutine.
package loop

import (
	"context"
	"sync"
	"time"
)

// Rate60 is the interval of a 60 Hz loop, truncated to whole milliseconds.
const Rate60 = time.Duration(1000/60) * time.Millisecond

// Interval returns the loop interval for a tick rate in Hz.
func Interval(rate int) time.Duration {
	if rate <= 0 {
		return Rate60
	}
	return time.Duration(1000/rate) * time.Millisecond
}

// Task is a running periodic loop. Each tick waits for the interval after
// the previous tick returned, so ticks never overlap.
type Task struct {
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once

	mu    sync.Mutex
	ticks uint64
}

// Start launches tick every interval until ctx is done or Cancel is called.
func Start(ctx context.Context, interval time.Duration, tick func()) *Task {
	if interval <= 0 {
		interval = Rate60
	}
	ctx, cancel := context.WithCancel(ctx)
	t := &Task{
		cancel: cancel,
		done:   make(chan struct{}),
	}
	go t.run(ctx, interval, tick)
	return t
}

func (t *Task) run(ctx context.Context, interval time.Duration, tick func()) {
	defer close(t.done)
	timer := time.NewTimer(interval)
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}
		// a cancel that raced with the timer wins
		if ctx.Err() != nil {
			return
		}
		tick()
		t.mu.Lock()
		t.ticks++
		t.mu.Unlock()
		timer.Reset(interval)
	}
}

// Cancel stops scheduling further ticks and waits for an in-flight tick to
// finish. It is safe to call more than once and on a nil Task.
func (t *Task) Cancel() {
	if t == nil {
		return
	}
	t.once.Do(t.cancel)
	<-t.done
}

// Done is closed once the loop goroutine has exited.
func (t *Task) Done() <-chan struct{} {
	return t.done
}

// Ticks reports how many ticks have completed.
func (t *Task) Ticks() uint64 {
	if t == nil {
		return 0
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.ticks
}
