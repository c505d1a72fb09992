// Package wl defines the display-server surface driftwall depends on: a
// compositor that advertises outputs and lets background-layer surfaces be
// created on them. This package carries the shapes the worker loop and the
// display registry reason about; it contains no Wayland wire-protocol
// client, and Loopback is its only DisplayServer implementation.
package wl

import "sync"

// Geometry is the physical placement and identity a compositor reports for
// an output via wl_output.geometry.
type Geometry struct {
	X, Y  int32
	Make  string
	Model string
}

// Mode is one reported display mode: pixel dimensions and refresh rate in
// milli-Hz, as wl_output.mode delivers them.
type Mode struct {
	Width       int32
	Height      int32
	RefreshMHz  int32
}

// ScaledMode is a Mode after applying an output's integer scale factor.
// Width is always rounded up to the next even number: some compositors
// configure odd widths that break buffer row alignment.
type ScaledMode struct {
	Width  int
	Height int
}

func NewScaledMode(width, height, scale int) ScaledMode {
	w := width * scale
	if w%2 != 0 {
		w++
	}
	return ScaledMode{Width: w, Height: height * scale}
}

// Output is an opaque display handle accumulated from a sequence of
// property events terminated by a "done" event. It is not ready for
// rendering until at least one Done has been observed and Mode is
// populated.
type Output struct {
	mu sync.RWMutex

	ID       uint32
	Geometry Geometry
	Mode     Mode
	Scale    int32
	done     bool
}

// NewOutput constructs an Output with the default scale of 1, matching the
// invariant that an unconfigured output behaves as unscaled until told
// otherwise.
func NewOutput(id uint32) *Output {
	return &Output{ID: id, Scale: 1}
}

func (o *Output) SetGeometry(g Geometry) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.Geometry = g
}

func (o *Output) SetMode(m Mode) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.Mode = m
}

func (o *Output) SetScale(scale int32) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if scale < 1 {
		scale = 1
	}
	o.Scale = scale
}

// MarkDone records that a "done" event was observed. Subsequent calls are
// legal: an output may receive multiple done events over its lifetime, e.g.
// on a mode change.
func (o *Output) MarkDone() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.done = true
}

// Ready reports whether the output has been fully configured at least once.
func (o *Output) Ready() bool {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.done && (o.Mode.Width != 0 && o.Mode.Height != 0)
}

// ScaledMode computes the current physical pixel mode for this output.
func (o *Output) ScaledMode() ScaledMode {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return NewScaledMode(int(o.Mode.Width), int(o.Mode.Height), int(o.Scale))
}

// Snapshot is a point-in-time, lock-free copy of an Output's state, used for
// the structured error report and for any caller that needs to read several
// fields without holding the Output's lock across further work.
type Snapshot struct {
	ID       uint32
	Geometry Geometry
	Mode     Mode
	Scale    int32
}

func (o *Output) Snapshot() Snapshot {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return Snapshot{ID: o.ID, Geometry: o.Geometry, Mode: o.Mode, Scale: o.Scale}
}

// Registry is a read-write-lock-guarded shared list of known outputs,
// written by the display-server event handler and read briefly by handlers
// that live during protocol dispatch.
type Registry struct {
	mu      sync.RWMutex
	outputs map[uint32]*Output
}

func NewRegistry() *Registry {
	return &Registry{outputs: make(map[uint32]*Output)}
}

func (r *Registry) Add(o *Output) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outputs[o.ID] = o
}

func (r *Registry) Remove(id uint32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.outputs, id)
}

func (r *Registry) Get(id uint32) (*Output, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	o, ok := r.outputs[id]
	return o, ok
}

// Snapshot returns a point-in-time copy of every known output, used to
// build the structured error report.
func (r *Registry) Snapshot() []Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Snapshot, 0, len(r.outputs))
	for _, o := range r.outputs {
		out = append(out, o.Snapshot())
	}
	return out
}

// Loopback is a DisplayServer with no real compositor connection: a single
// output is registered at construction and Dispatch never blocks. It backs
// headless builds and any environment without a real Wayland connection,
// the same role the teacher's build-tagged headless backend plays for a
// single emulated display.
type Loopback struct {
	registry *Registry
}

// NewLoopback registers one output of the given pixel size at id 1.
func NewLoopback(width, height int32) *Loopback {
	registry := NewRegistry()
	out := NewOutput(1)
	out.SetMode(Mode{Width: width, Height: height, RefreshMHz: 60000})
	out.MarkDone()
	registry.Add(out)
	return &Loopback{registry: registry}
}

func (l *Loopback) Dispatch() error    { return nil }
func (l *Loopback) Outputs() *Registry { return l.registry }
func (l *Loopback) Close() error       { return nil }

// DisplayServer is the subset of a Wayland-like connection the worker loop
// depends on: pumping protocol events and the registry of known outputs.
// Surfaces and GPU contexts are created through render.OutputFactory, not
// through this interface.
type DisplayServer interface {
	// Dispatch pumps pending protocol events, blocking briefly if none are
	// queued. It is called once per worker loop iteration.
	Dispatch() error

	// Outputs returns the shared registry of known outputs.
	Outputs() *Registry

	// Close releases the display-server connection.
	Close() error
}
