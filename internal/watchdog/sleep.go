package watchdog

import "time"

// Refresh is the worker message the sleep watchdog posts when it detects a
// suspend/resume cycle.
type Refresh struct{}

const sleepInterval = 60 * time.Second

// RunSleepWatchdog loops sleeping sleepInterval; if the wall-clock time that
// actually elapsed exceeds sleepInterval+slack, it posts Refresh so the
// worker re-samples the timeline and re-aligns. A suspended-and-resumed
// process observes a much larger elapsed time than it slept for, which is
// how this distinguishes a real suspend from ordinary scheduling jitter.
func RunSleepWatchdog(slack time.Duration, out chan<- any, stop <-chan struct{}) {
	for {
		before := time.Now()
		timer := time.NewTimer(sleepInterval)
		select {
		case <-timer.C:
		case <-stop:
			timer.Stop()
			return
		}

		if elapsed := time.Since(before); elapsed > sleepInterval+slack {
			select {
			case out <- Refresh{}:
			case <-stop:
				return
			}
		}
	}
}
