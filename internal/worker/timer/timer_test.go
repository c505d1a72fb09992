package timer

import (
	"testing"
	"time"
)

func TestSpawnSimpleTimerFires(t *testing.T) {
	out := make(chan any, 1)
	cancel := NewCancel()
	SpawnSimpleTimer(10*time.Millisecond, "fired", out, cancel)

	select {
	case msg := <-out:
		if msg != "fired" {
			t.Errorf("expected 'fired', got %v", msg)
		}
	case <-time.After(time.Second):
		t.Fatal("timer did not fire in time")
	}
}

func TestSpawnSimpleTimerCancelled(t *testing.T) {
	out := make(chan any, 1)
	cancel := NewCancel()
	SpawnSimpleTimer(200*time.Millisecond, "fired", out, cancel)
	cancel.Broadcast()

	select {
	case msg := <-out:
		t.Fatalf("expected no message after cancel, got %v", msg)
	case <-time.After(300 * time.Millisecond):
	}
}

func TestSpawnAnimationTickerSequence(t *testing.T) {
	out := make(chan any, 16)
	cancel := NewCancel()
	SpawnAnimationTicker(5*time.Millisecond, 4, 0, func(step, count int) any {
		return [2]int{step, count}
	}, out, cancel)

	var got []int
	deadline := time.After(time.Second)
	for len(got) < 5 {
		select {
		case msg := <-out:
			got = append(got, msg.([2]int)[0])
		case <-deadline:
			t.Fatalf("did not receive all steps in time, got %v", got)
		}
	}

	want := []int{0, 1, 2, 3, 4}
	for i, w := range want {
		if got[i] != w {
			t.Errorf("step %d: got %d, want %d", i, got[i], w)
		}
	}
}

func TestSpawnAnimationTickerOffsetStopsAtCount(t *testing.T) {
	out := make(chan any, 16)
	cancel := NewCancel()
	SpawnAnimationTicker(5*time.Millisecond, 3, 3, func(step, count int) any {
		return step
	}, out, cancel)

	select {
	case msg := <-out:
		if msg != 3 {
			t.Fatalf("expected immediate offset message 3, got %v", msg)
		}
	case <-time.After(time.Second):
		t.Fatal("did not receive offset message")
	}

	select {
	case msg := <-out:
		t.Fatalf("expected ticker to stop at count, got extra message %v", msg)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestCancelSignaledNonBlocking(t *testing.T) {
	c := NewCancel()
	if c.Signaled() {
		t.Fatal("expected fresh Cancel to be unsignaled")
	}
	c.Broadcast()
	if !c.Signaled() {
		t.Fatal("expected Cancel to report signaled after Broadcast")
	}
}
