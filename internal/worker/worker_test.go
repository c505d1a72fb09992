package worker

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/intuitionamiga/driftwall/internal/imaging"
	"github.com/intuitionamiga/driftwall/internal/render/headless"
	"github.com/intuitionamiga/driftwall/internal/timeline"
	"github.com/intuitionamiga/driftwall/internal/wl"
)

type fakeDisplayServer struct {
	registry *wl.Registry
}

func (f *fakeDisplayServer) Dispatch() error       { return nil }
func (f *fakeDisplayServer) Outputs() *wl.Registry { return f.registry }
func (f *fakeDisplayServer) Close() error          { return nil }

func writeRealPNG(t *testing.T, path string) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			img.Set(x, y, color.RGBA{R: 200, G: 100, B: 50, A: 255})
		}
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("Encode: %v", err)
	}
}

func newTestWorker(t *testing.T) (*Worker, *headless.Factory) {
	t.Helper()
	dir := t.TempDir()
	imgPath := filepath.Join(dir, "a.png")
	writeRealPNG(t, imgPath)

	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	sched := timeline.NewStatic(start, imgPath)

	factory := headless.New(64, 64)
	registry := wl.NewRegistry()
	ds := &fakeDisplayServer{registry: registry}

	w := New(ds, factory, imaging.NewLoader(), sched, imaging.ScaleFill, imaging.FilterGood, zap.NewNop())
	w.Now = func() time.Time { return start }
	return w, factory
}

func TestHandleAddOutputConstructsRendererAndDraws(t *testing.T) {
	w, factory := newTestWorker(t)

	output := wl.NewOutput(1)
	output.SetMode(wl.Mode{Width: 64, Height: 64, RefreshMHz: 60000})
	output.MarkDone()

	w.handleAddOutput(output)

	if _, ok := w.renders[1]; !ok {
		t.Fatal("expected renderer to be registered for output 1")
	}
	if factory.Last == nil || factory.Last.SwapCount() == 0 {
		t.Fatal("expected at least one swap after AddOutput")
	}
	if factory.Last.Textures[0] == nil {
		t.Fatal("expected texture unit 0 to be uploaded")
	}
}

func TestHandleRemoveOutputDestroysRenderer(t *testing.T) {
	w, _ := newTestWorker(t)
	output := wl.NewOutput(1)
	output.SetMode(wl.Mode{Width: 64, Height: 64, RefreshMHz: 60000})
	output.MarkDone()
	w.handleAddOutput(output)

	w.handleRemoveOutput(1)
	if _, ok := w.renders[1]; ok {
		t.Fatal("expected renderer to be removed")
	}
}

func TestHandleRemoveOutputUnknownIDIsNoop(t *testing.T) {
	w, _ := newTestWorker(t)
	w.handleRemoveOutput(999) // must not panic
}

func TestQuadInOutBoundaries(t *testing.T) {
	if got := quadInOut(0); got != 0 {
		t.Errorf("quadInOut(0) = %v, want 0", got)
	}
	if got := quadInOut(1); math.Abs(got-1) > 1e-9 {
		t.Errorf("quadInOut(1) = %v, want 1", got)
	}
	if got := quadInOut(0.5); math.Abs(got-0.5) > 1e-9 {
		t.Errorf("quadInOut(0.5) = %v, want 0.5", got)
	}
}

func TestClampCount(t *testing.T) {
	cases := []struct {
		in   float64
		want int
	}{
		{0, 1},
		{-5, 1},
		{150, 150},
		{10000, maxAnimationSteps},
	}
	for _, c := range cases {
		if got := clampCount(c.in); got != c.want {
			t.Errorf("clampCount(%v) = %d, want %d", c.in, got, c.want)
		}
	}
}

func TestHandleAnimationStepEnqueuesRefreshAtCompletion(t *testing.T) {
	w, _ := newTestWorker(t)
	output := wl.NewOutput(1)
	output.SetMode(wl.Mode{Width: 64, Height: 64, RefreshMHz: 60000})
	output.MarkDone()
	w.handleAddOutput(output)

	w.handleAnimationStep(1.0)

	select {
	case msg := <-w.events:
		if _, ok := msg.(RefreshMsg); !ok {
			t.Fatalf("expected RefreshMsg, got %T", msg)
		}
	default:
		t.Fatal("expected RefreshMsg to be enqueued when ratio reaches 1.0")
	}
}

func TestHandleAnimationStepBelowOneDoesNotEnqueueRefresh(t *testing.T) {
	w, _ := newTestWorker(t)
	output := wl.NewOutput(1)
	output.SetMode(wl.Mode{Width: 64, Height: 64, RefreshMHz: 60000})
	output.MarkDone()
	w.handleAddOutput(output)

	w.handleAnimationStep(0.5)

	select {
	case msg := <-w.events:
		t.Fatalf("did not expect a message, got %v", msg)
	default:
	}
}

// TestDoubleRefreshProducesSameDisplayedStateAsSingle exercises the
// idempotence property: replaying the same slide via Refresh twice must
// leave the renderer showing exactly what one Refresh would have, since a
// Refresh only ever re-derives state from the schedule and the clock, never
// from what the previous Refresh happened to leave behind.
func TestDoubleRefreshProducesSameDisplayedStateAsSingle(t *testing.T) {
	w1, f1 := newTestWorker(t)
	output1 := wl.NewOutput(1)
	output1.SetMode(wl.Mode{Width: 64, Height: 64, RefreshMHz: 60000})
	output1.MarkDone()
	w1.handleAddOutput(output1)
	w1.handleRefresh()

	w2, f2 := newTestWorker(t)
	output2 := wl.NewOutput(1)
	output2.SetMode(wl.Mode{Width: 64, Height: 64, RefreshMHz: 60000})
	output2.MarkDone()
	w2.handleAddOutput(output2)
	w2.handleRefresh()
	w2.handleRefresh()

	if f1.Last == nil || f2.Last == nil {
		t.Fatal("expected both workers to have constructed a render context")
	}
	if !bytes.Equal(f1.Last.Textures[0], f2.Last.Textures[0]) {
		t.Fatal("texture 0 contents diverged between a single and a double Refresh")
	}
	if f1.Last.Program.Ratio() != f2.Last.Program.Ratio() {
		t.Errorf("draw ratio diverged: single=%v double=%v", f1.Last.Program.Ratio(), f2.Last.Program.Ratio())
	}
}

// TestRepeatedRefreshDoesNotLeakTimerGoroutines exercises the worker-level
// timer cancellation property: Refresh cancels every outstanding timer via
// the shared Cancel's Broadcast, so the goroutine backing a cancelled timer
// must actually exit rather than leak, keeping the outstanding count bounded
// by the single replacement timer each Refresh re-arms, not growing with
// every Refresh call.
func TestRepeatedRefreshDoesNotLeakTimerGoroutines(t *testing.T) {
	w, _ := newTestWorker(t)
	output := wl.NewOutput(1)
	output.SetMode(wl.Mode{Width: 64, Height: 64, RefreshMHz: 60000})
	output.MarkDone()
	w.handleAddOutput(output)

	runtime.Gosched()
	baseline := runtime.NumGoroutine()

	for i := 0; i < 20; i++ {
		w.handleRefresh()
	}

	deadline := time.Now().Add(2 * time.Second)
	for {
		runtime.Gosched()
		// Each Refresh leaves exactly one freshly spawned timer outstanding
		// (the static slide's never-fires sleep); the count must settle
		// back to that single replacement, not accumulate one per call.
		if runtime.NumGoroutine() <= baseline+1 {
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("goroutine count did not settle after repeated Refresh: baseline=%d now=%d",
				baseline, runtime.NumGoroutine())
		}
		time.Sleep(10 * time.Millisecond)
	}
}
