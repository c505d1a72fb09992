// Package render implements the per-output GPU-backed cross-fade renderer.
// The construction protocol, texture upload discipline, and context-current
// rules below mirror the teacher's video_backend_opengl.go, generalized from
// a single emulated display to one renderer per Wayland output.
package render

import (
	"github.com/intuitionamiga/driftwall/internal/errs"
	"github.com/intuitionamiga/driftwall/internal/imaging"
	"github.com/intuitionamiga/driftwall/internal/render/shader"
	"github.com/intuitionamiga/driftwall/internal/wl"
)

// Surface is a display-server-bound drawing target: a background-layer
// surface anchored to all four edges with exclusive-zone -1, sized to fill
// the output.
type Surface interface {
	// AwaitConfigure blocks, cooperatively pumping the display-server event
	// queue, until the compositor publishes the first (width, height) and
	// the configure serial has been acknowledged. Width is rounded up to
	// even by the caller, not here.
	AwaitConfigure() (width, height int, err error)

	// SetInputRegionEmpty commits an empty input region so the wallpaper
	// never steals input.
	SetInputRegionEmpty() error

	// Commit damages the full surface and commits it.
	Commit() error

	Destroy() error
}

// GPUContext is a window-backed GPU context bound to a Surface at a fixed
// pixel size. MakeCurrent must be called before every GPU operation: many
// contexts may be live in the process, and the bound context is
// process-wide state.
type GPUContext struct {
	MakeCurrent   func() error
	SwapBuffers   func() error
	SetSwapInterval func(n int) error

	// UploadTexture uploads pix (tightly packed RGB, row-major) to texture
	// unit 0 ("from") or 1 ("to").
	UploadTexture func(unit int, pix []byte, width, height int) error

	// CompileProgram builds the shader program once per context.
	CompileProgram func(vertexSrc, fragmentSrc string, vertices []float32, indices []uint32) (Program, error)

	// Clear and Destroy round out the minimal GPU surface this package
	// drives (drawing goes through Program.DrawQuad); Destroy releases the
	// GPU context itself.
	Clear   func() error
	Destroy func() error
}

// Program is a compiled shader program with the ratio uniform and the two
// sampler bindings already wired to texture units 0 and 1.
type Program interface {
	SetRatio(ratio float32) error
	DrawQuad() error
	Destroy() error
}

// OutputFactory builds the display-server and GPU resources for one output.
// Concrete implementations live under internal/render/headless (for tests
// and CI) and internal/render/glx (the real EGL/Wayland backend).
type OutputFactory interface {
	NewSurface(outputID uint32) (Surface, error)
	NewContext(width, height int) (*GPUContext, error)
}

// OutputRenderer owns one output's drawing surface, GPU context, two
// texture slots, shader program, and current ScaledMode. Exactly one exists
// per active output, looked up by output id.
type OutputRenderer struct {
	OutputID uint32
	Mode     wl.ScaledMode

	surface Surface
	ctx     *GPUContext
	program Program
}

// New runs the seven-step construction protocol: create the surface, apply
// the output's scale, request a background-layer surface, await the first
// configure, derive the ScaledMode, create the GPU context and program, then
// swap once and commit with an empty input region.
func New(factory OutputFactory, output *wl.Output) (*OutputRenderer, error) {
	surface, err := factory.NewSurface(output.ID)
	if err != nil {
		return nil, errs.System(errs.DisplayConnection, "render.New", "surface creation failed", err)
	}

	width, height, err := surface.AwaitConfigure()
	if err != nil {
		_ = surface.Destroy()
		return nil, errs.System(errs.ProtocolObject, "render.New", "configure wait failed", err)
	}
	if width%2 != 0 {
		width++
	}
	mode := wl.NewScaledMode(width, height, int(output.Scale))

	ctx, err := factory.NewContext(mode.Width, mode.Height)
	if err != nil {
		_ = surface.Destroy()
		return nil, errs.SystemAt(errs.GpuSetup, "render.New", "NewContext", "", err)
	}
	if err := ctx.MakeCurrent(); err != nil {
		return nil, errs.SystemAt(errs.GpuSetup, "render.New", "MakeCurrent", "", err)
	}
	if err := ctx.SetSwapInterval(0); err != nil {
		return nil, errs.SystemAt(errs.GpuSetup, "render.New", "SetSwapInterval", "", err)
	}

	program, err := ctx.CompileProgram(shader.VertexSource, shader.FragmentSource,
		shader.QuadVertices[:], shader.QuadIndices[:])
	if err != nil {
		// Shader source is a compile-time constant: a failure here means
		// the binary was built against a broken GPU driver, not a bad
		// input. The error is returned like any other construction
		// failure; the worker logs it and skips the output, and the
		// process does not exit.
		return nil, errs.SystemAt(errs.GpuSetup, "render.New", "CompileProgram", "", err)
	}

	if err := ctx.SwapBuffers(); err != nil {
		return nil, errs.SystemAt(errs.GpuOperation, "render.New", "SwapBuffers", "", err)
	}
	if err := surface.SetInputRegionEmpty(); err != nil {
		return nil, errs.System(errs.ProtocolObject, "render.New", "empty input region failed", err)
	}
	if err := surface.Commit(); err != nil {
		return nil, errs.System(errs.ProtocolObject, "render.New", "initial commit failed", err)
	}

	return &OutputRenderer{
		OutputID: output.ID,
		Mode:     mode,
		surface:  surface,
		ctx:      ctx,
		program:  program,
	}, nil
}

// SetFrom uploads pix to texture unit 0.
func (r *OutputRenderer) SetFrom(pix *imaging.PixelBuffer) error {
	return r.upload(0, pix)
}

// SetTo uploads pix to texture unit 1.
func (r *OutputRenderer) SetTo(pix *imaging.PixelBuffer) error {
	return r.upload(1, pix)
}

func (r *OutputRenderer) upload(unit int, pix *imaging.PixelBuffer) error {
	if err := r.ctx.MakeCurrent(); err != nil {
		return errs.SystemAt(errs.GpuOperation, "render.OutputRenderer.upload", "MakeCurrent", "", err)
	}
	if err := r.ctx.UploadTexture(unit, pix.Pix, pix.Width, pix.Height); err != nil {
		return errs.SystemAt(errs.GpuOperation, "render.OutputRenderer.upload", "TexImage2D", "", err)
	}
	return nil
}

// Draw makes the context current, clears to opaque black, sets the ratio
// uniform, draws the quad, swaps, and commits the damaged surface.
func (r *OutputRenderer) Draw(ratio float32) error {
	if err := r.ctx.MakeCurrent(); err != nil {
		return errs.SystemAt(errs.GpuOperation, "render.OutputRenderer.Draw", "MakeCurrent", "", err)
	}
	if err := r.ctx.Clear(); err != nil {
		return errs.SystemAt(errs.GpuOperation, "render.OutputRenderer.Draw", "Clear", "", err)
	}
	if err := r.program.SetRatio(ratio); err != nil {
		return errs.SystemAt(errs.GpuOperation, "render.OutputRenderer.Draw", "SetRatio", "", err)
	}
	if err := r.program.DrawQuad(); err != nil {
		return errs.SystemAt(errs.GpuOperation, "render.OutputRenderer.Draw", "DrawQuad", "", err)
	}
	if err := r.ctx.SwapBuffers(); err != nil {
		return errs.SystemAt(errs.GpuOperation, "render.OutputRenderer.Draw", "SwapBuffers", "", err)
	}
	if err := r.surface.Commit(); err != nil {
		return errs.System(errs.ProtocolObject, "render.OutputRenderer.Draw", "commit failed", err)
	}
	return nil
}

// Destroy releases the display-server surface, then the GPU surface, then
// the GPU context, in that order.
func (r *OutputRenderer) Destroy() error {
	if err := r.surface.Destroy(); err != nil {
		return errs.System(errs.ProtocolObject, "render.OutputRenderer.Destroy", "surface destroy failed", err)
	}
	if err := r.program.Destroy(); err != nil {
		return errs.SystemAt(errs.GpuOperation, "render.OutputRenderer.Destroy", "program destroy", "", err)
	}
	if err := r.ctx.Destroy(); err != nil {
		return errs.SystemAt(errs.GpuSetup, "render.OutputRenderer.Destroy", "context destroy", "", err)
	}
	return nil
}
