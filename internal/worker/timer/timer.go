// Package timer implements the worker's two timer primitives: a one-shot
// delayed message and a stepped animation ticker. Both run on their own OS
// thread and communicate only by posting to the worker's message channel,
// per the single-threaded-worker-plus-auxiliary-threads model.
package timer

import "time"

// Cancel is a broadcast cancellation channel. The worker holds the sender
// side (via Broadcast) and every spawned timer receives its own receiver
// clone so one close() notifies every outstanding timer at once.
type Cancel struct {
	ch chan struct{}
}

// NewCancel constructs a fresh, unsignaled broadcast channel.
func NewCancel() *Cancel {
	return &Cancel{ch: make(chan struct{})}
}

// Signaled reports whether this Cancel has been broadcast, without
// blocking.
func (c *Cancel) Signaled() bool {
	select {
	case <-c.ch:
		return true
	default:
		return false
	}
}

// C exposes the underlying receive channel for select statements.
func (c *Cancel) C() <-chan struct{} {
	return c.ch
}

// Broadcast signals every timer holding this Cancel. It is safe to call at
// most once per Cancel; the worker replaces its Cancel with a fresh one
// after broadcasting so that freshly spawned timers are not immediately
// killed by a stale signal.
func (c *Cancel) Broadcast() {
	close(c.ch)
}

// SpawnSimpleTimer sleeps for duration on its own goroutine, then sends
// message to out unless cancel fires first.
func SpawnSimpleTimer(duration time.Duration, message any, out chan<- any, cancel *Cancel) {
	go func() {
		timer := time.NewTimer(duration)
		defer timer.Stop()
		select {
		case <-timer.C:
			select {
			case out <- message:
			case <-cancel.C():
			}
		case <-cancel.C():
		}
	}()
}

// StepMessageFactory builds the message posted for step i of count, e.g.
// AnimationStep(i/count).
type StepMessageFactory func(step, count int) any

// SpawnAnimationTicker posts messageFactory(offset, count) immediately,
// then on each subsequent interval of step posts
// messageFactory(i, count) for i = offset+1, ..., count, stopping at count
// or upon cancellation.
func SpawnAnimationTicker(step time.Duration, count, offset int, messageFactory StepMessageFactory, out chan<- any, cancel *Cancel) {
	go func() {
		send := func(i int) bool {
			select {
			case out <- messageFactory(i, count):
				return true
			case <-cancel.C():
				return false
			}
		}

		if !send(offset) {
			return
		}
		if offset >= count {
			return
		}

		ticker := time.NewTicker(step)
		defer ticker.Stop()
		for i := offset + 1; i <= count; i++ {
			select {
			case <-ticker.C:
				if !send(i) {
					return
				}
			case <-cancel.C():
				return
			}
		}
	}()
}
