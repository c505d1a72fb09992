// Package worker implements the single-threaded event loop that owns every
// renderer, the image caches, and the active schedule. All GPU and output
// state is touched exclusively from the goroutine that calls Run; every
// other subsystem (timers, watchdogs, IPC) only ever posts messages into
// the worker's channel, mirroring the teacher's coprocessor_manager.go
// single-mutex command-dispatch discipline generalized to a channel.
package worker

import (
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/intuitionamiga/driftwall/internal/errs"
	"github.com/intuitionamiga/driftwall/internal/imaging"
	"github.com/intuitionamiga/driftwall/internal/render"
	"github.com/intuitionamiga/driftwall/internal/schedule"
	"github.com/intuitionamiga/driftwall/internal/timeline"
	"github.com/intuitionamiga/driftwall/internal/watchdog"
	"github.com/intuitionamiga/driftwall/internal/wl"
	"github.com/intuitionamiga/driftwall/internal/worker/timer"
)

// maxAnimationSteps clamps AnimationStart's derived tick count (duration ×
// fps). 300 was chosen (not 600): a transition longer than 300/fps seconds
// ticks every duration/300 seconds instead of once per frame; doubling the
// cap bought no visible smoothness in practice and doubled timer churn.
const maxAnimationSteps = 300

// Messages accepted by the worker's event channel.
type AddOutput struct {
	Output *wl.Output
}

type RemoveOutput struct {
	ID uint32
}

type AnimationStep struct {
	Ratio float64
}

type AnimationStart struct {
	Duration float64
}

type RefreshMsg struct{}

// Worker owns the renderer map, the image caches, and the active schedule.
// It is not safe for concurrent use: only Run's goroutine may touch it.
type Worker struct {
	DS      wl.DisplayServer
	Factory render.OutputFactory
	Loader  *imaging.Loader
	Log     *zap.Logger

	// Now is overridable for deterministic tests; defaults to time.Now.
	Now func() time.Time

	schedule *timeline.Schedule
	scaling  imaging.Scaling
	filter   imaging.Filter

	fps          float64
	tickerActive bool
	renders      map[uint32]*render.OutputRenderer
	cancel       *timer.Cancel

	events chan any
}

// New constructs a Worker around an already-loaded schedule and initial
// scaling/filter configuration.
func New(ds wl.DisplayServer, factory render.OutputFactory, loader *imaging.Loader,
	sched *timeline.Schedule, scaling imaging.Scaling, filter imaging.Filter, log *zap.Logger) *Worker {
	return &Worker{
		DS:       ds,
		Factory:  factory,
		Loader:   loader,
		Log:      log,
		Now:      time.Now,
		schedule: sched,
		scaling:  scaling,
		filter:   filter,
		renders:  make(map[uint32]*render.OutputRenderer),
		cancel:   timer.NewCancel(),
		events:   make(chan any, 64),
	}
}

// Events returns the channel auxiliary threads (timers, watchdogs, IPC)
// post into.
func (w *Worker) Events() chan<- any {
	return w.events
}

// Run pumps the display-server queue, then receives one message with a
// 500ms timeout, then handles it, forever. It returns only on a fatal
// error or when events is closed.
func (w *Worker) Run() error {
	for {
		if err := w.DS.Dispatch(); err != nil {
			return errs.System(errs.DisplayConnection, "worker.Run", "event pump failed", err)
		}

		select {
		case msg, ok := <-w.events:
			if !ok {
				return nil
			}
			w.handle(msg)
		case <-time.After(500 * time.Millisecond):
		}
	}
}

func (w *Worker) handle(msg any) {
	switch m := msg.(type) {
	case AddOutput:
		w.handleAddOutput(m.Output)
	case RemoveOutput:
		w.handleRemoveOutput(m.ID)
	case AnimationStep:
		w.handleAnimationStep(m.Ratio)
	case AnimationStart:
		w.handleAnimationStart(m.Duration)
	case RefreshMsg:
		w.handleRefresh()
	case watchdog.Refresh:
		w.handleRefresh()
	case watchdog.IPCConfigUpdate:
		w.handleIPCConfigUpdate(m.Msg)
	default:
		w.Log.Warn("worker received unknown message", zap.Any("message", msg))
	}
}

func (w *Worker) handleAddOutput(output *wl.Output) {
	if _, exists := w.renders[output.ID]; exists {
		// Replay as a refresh: an existing id may be re-advertised on a
		// mode change. Destroying and reconstructing the renderer is
		// cheap relative to human-noticeable latency and avoids mutating
		// a live GPU surface.
		w.events <- RemoveOutput{ID: output.ID}
		w.events <- AddOutput{Output: output}
		return
	}

	if rate := float64(output.Mode.RefreshMHz) / 1000.0; rate > w.fps {
		w.fps = rate
	}

	renderer, err := render.New(w.Factory, output)
	if err != nil {
		w.Log.Error("renderer construction failed", zap.Uint32("output", output.ID), zap.Error(err))
		return
	}
	w.renders[output.ID] = renderer

	if err := w.refreshOutput(renderer); err != nil {
		w.Log.Error("initial texture upload failed", zap.Uint32("output", output.ID), zap.Error(err))
		return
	}

	state, err := w.schedule.Current(w.Now())
	if err != nil {
		w.Log.Error("timeline query failed", zap.Error(err))
		return
	}
	w.stateDraw(state, renderer)
}

func (w *Worker) handleRemoveOutput(id uint32) {
	renderer, ok := w.renders[id]
	if !ok {
		return
	}
	if err := renderer.Destroy(); err != nil {
		w.Log.Error("renderer destroy failed", zap.Uint32("output", id), zap.Error(err))
	}
	delete(w.renders, id)
}

func quadInOut(t float64) float64 {
	if t < 0.5 {
		return 2 * t * t
	}
	return 1 - math.Pow(-2*t+2, 2)/2
}

func (w *Worker) handleAnimationStep(ratio float64) {
	for _, renderer := range w.renders {
		if err := renderer.Draw(float32(quadInOut(ratio))); err != nil {
			w.Log.Error("draw failed", zap.Uint32("output", renderer.OutputID), zap.Error(err))
		}
	}
	if ratio >= 1.0 {
		w.events <- RefreshMsg{}
	}
}

func (w *Worker) handleAnimationStart(duration float64) {
	count := clampCount(duration * w.fps)
	step := duration / float64(count)
	w.tickerActive = true
	timer.SpawnAnimationTicker(secondsToDuration(step), count, 0, animationStepFactory(count), w.events, w.cancel)
}

func animationStepFactory(count int) timer.StepMessageFactory {
	return func(step, total int) any {
		return AnimationStep{Ratio: float64(step) / float64(count)}
	}
}

func clampCount(n float64) int {
	if n < 1 {
		return 1
	}
	if n > maxAnimationSteps {
		return maxAnimationSteps
	}
	return int(n)
}

func (w *Worker) handleRefresh() {
	// Broadcast closes the shared channel, which every outstanding timer's
	// select already observes — unlike a sent signal there's nothing
	// residual to drain. A fresh Cancel is installed so timers spawned
	// during this same Refresh aren't immediately killed by the old one.
	w.cancel.Broadcast()
	w.cancel = timer.NewCancel()
	w.tickerActive = false

	for _, renderer := range w.renders {
		if err := w.refreshOutput(renderer); err != nil {
			w.Log.Error("refresh texture upload failed", zap.Uint32("output", renderer.OutputID), zap.Error(err))
			continue
		}
		state, err := w.schedule.Current(w.Now())
		if err != nil {
			w.Log.Error("timeline query failed", zap.Error(err))
			continue
		}
		w.stateDraw(state, renderer)
	}
}

func (w *Worker) handleIPCConfigUpdate(msg watchdog.ReconfigMessage) {
	if msg.Filter != nil {
		w.filter = *msg.Filter
	}
	if msg.Scaling != nil {
		w.scaling = *msg.Scaling
	}
	if msg.Path != "" {
		mode := schedule.Mode("")
		if msg.Mode != nil {
			mode = *msg.Mode
		} else if inferred, err := schedule.InferMode(msg.Path); err == nil {
			mode = inferred
		}
		sched, err := schedule.Load(msg.Path, mode)
		if err != nil {
			w.Log.Error("ipc reconfiguration failed to load schedule", zap.Error(err))
		} else {
			w.schedule = sched
		}
	}
	w.handleRefresh()
}

// refreshOutput re-uploads the current slide's "from" texture, and "to" if
// the slide is animated, for one renderer.
func (w *Worker) refreshOutput(renderer *render.OutputRenderer) error {
	state, err := w.schedule.Current(w.Now())
	if err != nil {
		return err
	}
	mode := imaging.TargetMode{Width: renderer.Mode.Width, Height: renderer.Mode.Height}

	from, err := w.Loader.Load(state.Slide.From, mode, w.scaling, w.filter)
	if err != nil {
		return err
	}
	if err := renderer.SetFrom(from); err != nil {
		return err
	}

	if state.Slide.Animated() {
		to, err := w.Loader.Load(state.Slide.To, mode, w.scaling, w.filter)
		if err != nil {
			return err
		}
		if err := renderer.SetTo(to); err != nil {
			return err
		}
	}
	return nil
}

// stateDraw implements the worker's three-branch per-state logic: schedule
// the next timer when idle, or resume mid-transition when not.
func (w *Worker) stateDraw(state timeline.AnimationState, renderer *render.OutputRenderer) {
	if !state.Transitioning {
		if w.tickerActive {
			w.drawOrLog(renderer, 0)
			return
		}
		w.tickerActive = true
		remaining := secondsToDuration(state.Slide.DurationStatic - state.Progress)
		if state.Slide.Animated() {
			duration := state.Slide.DurationTransition
			timer.SpawnSimpleTimer(remaining, AnimationStart{Duration: duration}, w.events, w.cancel)
		} else {
			timer.SpawnSimpleTimer(remaining, RefreshMsg{}, w.events, w.cancel)
		}
		w.drawOrLog(renderer, 0)
		return
	}

	count := clampCount(state.Slide.DurationTransition * w.fps)
	step := state.Slide.DurationTransition / float64(count)
	finished := state.Progress / step

	if !w.tickerActive {
		w.tickerActive = true
		timer.SpawnAnimationTicker(secondsToDuration(step), count, int(finished), animationStepFactory(count), w.events, w.cancel)
	}
	// Raw ratio finished/count, not quadInOut: easing is applied only in
	// handleAnimationStep, when the ticker's steps arrive.
	w.drawOrLog(renderer, float32(finished/float64(count)))
}

func (w *Worker) drawOrLog(renderer *render.OutputRenderer, ratio float32) {
	if err := renderer.Draw(ratio); err != nil {
		w.Log.Error("draw failed", zap.Uint32("output", renderer.OutputID), zap.Error(err))
	}
}

// secondsToDuration converts a slide duration to a time.Duration. A static
// slide's duration is +Inf for the single-image shortcut (timeline.NewStatic);
// converting that directly would be an undefined float->int64 conversion, so
// it's clamped to the largest representable Duration instead — effectively
// "never fires", which is exactly what a single still image wants.
func secondsToDuration(seconds float64) time.Duration {
	if math.IsInf(seconds, 1) || seconds > float64(math.MaxInt64)/float64(time.Second) {
		return math.MaxInt64
	}
	if seconds < 0 {
		seconds = 0
	}
	return time.Duration(seconds * float64(time.Second))
}
