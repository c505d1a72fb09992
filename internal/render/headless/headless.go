// Package headless implements render.OutputFactory with no real GPU or
// display-server connection. It backs tests and CI the way the teacher's
// own headless video backend stands in for a real display chip.
package headless

import (
	"sync/atomic"

	"github.com/intuitionamiga/driftwall/internal/render"
)

// Factory builds headless surfaces and contexts of a fixed configured size,
// skipping the compositor round-trip a real backend needs. It records the
// most recently constructed Context so tests can assert on what the worker
// actually did.
type Factory struct {
	Width, Height int
	Last          *Context
}

func New(width, height int) *Factory {
	return &Factory{Width: width, Height: height}
}

func (f *Factory) NewSurface(outputID uint32) (render.Surface, error) {
	return &surface{outputID: outputID, width: f.Width, height: f.Height}, nil
}

func (f *Factory) NewContext(width, height int) (*render.GPUContext, error) {
	c := &Context{width: width, height: height}
	f.Last = c
	return &render.GPUContext{
		MakeCurrent:     c.makeCurrent,
		SwapBuffers:     c.swapBuffers,
		SetSwapInterval: c.setSwapInterval,
		UploadTexture:   c.uploadTexture,
		CompileProgram:  c.compileProgram,
		Clear:           c.clear,
		Destroy:         c.destroy,
	}, nil
}

type surface struct {
	outputID uint32
	width    int
	height   int
	destroyed bool
}

func (s *surface) AwaitConfigure() (int, int, error) { return s.width, s.height, nil }
func (s *surface) SetInputRegionEmpty() error         { return nil }
func (s *surface) Commit() error                      { return nil }
func (s *surface) Destroy() error {
	s.destroyed = true
	return nil
}

// Context tracks enough state for tests to assert on: texture contents,
// swap and draw counts, and the current ratio.
type Context struct {
	width, height int
	current       bool
	swapCount     uint64
	Textures      [2][]byte
	Program       *Program
}

func (c *Context) makeCurrent() error { c.current = true; return nil }
func (c *Context) swapBuffers() error {
	atomic.AddUint64(&c.swapCount, 1)
	return nil
}
func (c *Context) setSwapInterval(int) error { return nil }

func (c *Context) uploadTexture(unit int, pix []byte, width, height int) error {
	buf := make([]byte, len(pix))
	copy(buf, pix)
	c.Textures[unit] = buf
	return nil
}

func (c *Context) compileProgram(vertexSrc, fragmentSrc string, vertices []float32, indices []uint32) (render.Program, error) {
	c.Program = &Program{}
	return c.Program, nil
}

func (c *Context) clear() error { return nil }
func (c *Context) destroy() error {
	c.current = false
	return nil
}

// SwapCount reports how many times SwapBuffers has been called, for tests
// that assert a frame was actually produced.
func (c *Context) SwapCount() uint64 { return atomic.LoadUint64(&c.swapCount) }

type Program struct {
	ratio     float32
	drawCount uint64
}

func (p *Program) SetRatio(ratio float32) error {
	p.ratio = ratio
	return nil
}

func (p *Program) Ratio() float32 { return p.ratio }

func (p *Program) DrawQuad() error {
	atomic.AddUint64(&p.drawCount, 1)
	return nil
}

func (p *Program) DrawCount() uint64 { return atomic.LoadUint64(&p.drawCount) }

func (p *Program) Destroy() error { return nil }
