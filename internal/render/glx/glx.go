// Package glx is the real EGL/Wayland GPU backend. The name survives from
// the teacher's GLX-era naming even though the surface it binds to is an
// EGL window created over a Wayland wl_surface, not an X11 Window — cgo
// direct bindings to the system's display and GL libraries are the
// teacher's house style for this concern, carried forward rather than
// swapped for a pure-Go binding package.
//
//go:build linux && cgo && !headless

package glx

/*
#cgo pkg-config: egl gl wayland-egl wayland-client
#cgo CFLAGS: -DWL_EGL_PLATFORM -DGL_GLEXT_PROTOTYPES

#include <stdlib.h>
#include <string.h>
#include <EGL/egl.h>
#include <GL/gl.h>
#include <GL/glext.h>
#include <wayland-client.h>
#include <wayland-egl.h>

static int dw_init_egl(struct wl_display *display, struct wl_egl_window *eglWindow,
                        EGLDisplay *outDpy, EGLContext *outCtx, EGLSurface *outSurf) {
    EGLDisplay dpy = eglGetDisplay((EGLNativeDisplayType)display);
    if (dpy == EGL_NO_DISPLAY) return -1;

    EGLint major, minor;
    if (!eglInitialize(dpy, &major, &minor)) return -2;

    eglBindAPI(EGL_OPENGL_API);

    static const EGLint configAttribs[] = {
        EGL_SURFACE_TYPE, EGL_WINDOW_BIT,
        EGL_RED_SIZE, 8,
        EGL_GREEN_SIZE, 8,
        EGL_BLUE_SIZE, 8,
        EGL_RENDERABLE_TYPE, EGL_OPENGL_BIT,
        EGL_NONE,
    };
    EGLConfig config;
    EGLint numConfigs;
    if (!eglChooseConfig(dpy, configAttribs, &config, 1, &numConfigs) || numConfigs < 1) {
        return -3;
    }

    static const EGLint contextAttribs[] = {
        EGL_CONTEXT_MAJOR_VERSION, 4,
        EGL_CONTEXT_MINOR_VERSION, 0,
        EGL_CONTEXT_OPENGL_PROFILE_MASK, EGL_CONTEXT_OPENGL_CORE_PROFILE_BIT,
        EGL_NONE,
    };
    EGLContext ctx = eglCreateContext(dpy, config, EGL_NO_CONTEXT, contextAttribs);
    if (ctx == EGL_NO_CONTEXT) return -4;

    EGLSurface surf = eglCreateWindowSurface(dpy, config, (EGLNativeWindowType)eglWindow, NULL);
    if (surf == EGL_NO_SURFACE) return -5;

    *outDpy = dpy;
    *outCtx = ctx;
    *outSurf = surf;
    return 0;
}

static int dw_make_current(EGLDisplay dpy, EGLSurface surf, EGLContext ctx) {
    return eglMakeCurrent(dpy, surf, surf, ctx) ? 0 : -1;
}

static int dw_swap_buffers(EGLDisplay dpy, EGLSurface surf) {
    return eglSwapBuffers(dpy, surf) ? 0 : -1;
}

static int dw_set_swap_interval(EGLDisplay dpy, int interval) {
    return eglSwapInterval(dpy, interval) ? 0 : -1;
}

static void dw_upload_texture(GLuint tex, int unit, unsigned char *pixels, int width, int height) {
    glActiveTexture(GL_TEXTURE0 + unit);
    glBindTexture(GL_TEXTURE_2D, tex);
    glTexImage2D(GL_TEXTURE_2D, 0, GL_RGB, width, height, 0, GL_RGB, GL_UNSIGNED_BYTE, pixels);
    glTexParameteri(GL_TEXTURE_2D, GL_TEXTURE_MIN_FILTER, GL_LINEAR);
    glTexParameteri(GL_TEXTURE_2D, GL_TEXTURE_MAG_FILTER, GL_LINEAR);
    glTexParameteri(GL_TEXTURE_2D, GL_TEXTURE_WRAP_S, GL_CLAMP_TO_BORDER);
    glTexParameteri(GL_TEXTURE_2D, GL_TEXTURE_WRAP_T, GL_CLAMP_TO_BORDER);
}

static GLuint dw_compile_shader(GLenum kind, const char *src) {
    GLuint sh = glCreateShader(kind);
    glShaderSource(sh, 1, &src, NULL);
    glCompileShader(sh);
    GLint ok;
    glGetShaderiv(sh, GL_COMPILE_STATUS, &ok);
    if (!ok) {
        glDeleteShader(sh);
        return 0;
    }
    return sh;
}

static GLuint dw_link_program(GLuint vs, GLuint fs) {
    GLuint prog = glCreateProgram();
    glAttachShader(prog, vs);
    glAttachShader(prog, fs);
    glLinkProgram(prog);
    GLint ok;
    glGetProgramiv(prog, GL_LINK_STATUS, &ok);
    if (!ok) {
        glDeleteProgram(prog);
        return 0;
    }
    return prog;
}

static void dw_clear(void) {
    glClearColor(0.0f, 0.0f, 0.0f, 1.0f);
    glClear(GL_COLOR_BUFFER_BIT);
}
*/
import "C"

import (
	"unsafe"

	"github.com/intuitionamiga/driftwall/internal/errs"
	"github.com/intuitionamiga/driftwall/internal/render"
)

// Context is a live EGL context bound to one output's wl_egl_window. It
// implements the function fields of render.GPUContext rather than
// render.GPUContext itself: the struct is built once per output by New and
// handed back as a set of closures, matching the teacher's pattern of a
// single opaque backend object exposing narrow operations.
type Context struct {
	dpy  C.EGLDisplay
	ctx  C.EGLContext
	surf C.EGLSurface

	textures [2]C.GLuint
	program  C.GLuint
	ratioLoc C.GLint
	vbo, ibo C.GLuint
}

// New performs EGL context creation against a wl_egl_window already created
// over a layer-shell surface's wl_surface, per the construction protocol's
// step 6: native window, GPU window surface, GPU context, RGB 8-8-8.
func New(display *C.struct_wl_display, eglWindow *C.struct_wl_egl_window) (*render.GPUContext, error) {
	c := &Context{}
	rc := C.dw_init_egl(display, eglWindow, &c.dpy, &c.ctx, &c.surf)
	if rc != 0 {
		return nil, errs.SystemAt(errs.GpuSetup, "glx.New", "dw_init_egl", "", nil)
	}

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

func (c *Context) makeCurrent() error {
	if C.dw_make_current(c.dpy, c.surf, c.ctx) != 0 {
		return errs.SystemAt(errs.GpuOperation, "glx.Context.makeCurrent", "eglMakeCurrent", "", nil)
	}
	return nil
}

func (c *Context) swapBuffers() error {
	if C.dw_swap_buffers(c.dpy, c.surf) != 0 {
		return errs.SystemAt(errs.GpuOperation, "glx.Context.swapBuffers", "eglSwapBuffers", "", nil)
	}
	return nil
}

func (c *Context) setSwapInterval(n int) error {
	if C.dw_set_swap_interval(c.dpy, C.int(n)) != 0 {
		return errs.SystemAt(errs.GpuOperation, "glx.Context.setSwapInterval", "eglSwapInterval", "", nil)
	}
	return nil
}

func (c *Context) uploadTexture(unit int, pix []byte, width, height int) error {
	if c.textures[unit] == 0 {
		C.glGenTextures(1, &c.textures[unit])
	}
	C.dw_upload_texture(c.textures[unit], C.int(unit), (*C.uchar)(unsafe.Pointer(&pix[0])), C.int(width), C.int(height))
	return nil
}

func (c *Context) compileProgram(vertexSrc, fragmentSrc string, vertices []float32, indices []uint32) (render.Program, error) {
	vs := compileOrErr(C.GL_VERTEX_SHADER, vertexSrc)
	if vs == 0 {
		return nil, errs.SystemAt(errs.GpuSetup, "glx.Context.compileProgram", "vertex shader", "", nil)
	}
	fs := compileOrErr(C.GL_FRAGMENT_SHADER, fragmentSrc)
	if fs == 0 {
		return nil, errs.SystemAt(errs.GpuSetup, "glx.Context.compileProgram", "fragment shader", "", nil)
	}
	prog := C.dw_link_program(vs, fs)
	if prog == 0 {
		return nil, errs.SystemAt(errs.GpuSetup, "glx.Context.compileProgram", "program link", "", nil)
	}
	c.program = prog
	c.ratioLoc = C.glGetUniformLocation(prog, C.CString("ratio"))

	C.glGenBuffers(1, &c.vbo)
	C.glBindBuffer(C.GL_ARRAY_BUFFER, c.vbo)
	C.glBufferData(C.GL_ARRAY_BUFFER, C.long(len(vertices)*4), unsafe.Pointer(&vertices[0]), C.GL_STATIC_DRAW)

	C.glGenBuffers(1, &c.ibo)
	C.glBindBuffer(C.GL_ELEMENT_ARRAY_BUFFER, c.ibo)
	C.glBufferData(C.GL_ELEMENT_ARRAY_BUFFER, C.long(len(indices)*4), unsafe.Pointer(&indices[0]), C.GL_STATIC_DRAW)

	C.glUseProgram(prog)
	C.glUniform1i(C.glGetUniformLocation(prog, C.CString("from")), 0)
	C.glUniform1i(C.glGetUniformLocation(prog, C.CString("to")), 1)

	return &program{ctx: c}, nil
}

func compileOrErr(kind C.GLenum, src string) C.GLuint {
	csrc := C.CString(src)
	defer C.free(unsafe.Pointer(csrc))
	return C.dw_compile_shader(kind, csrc)
}

func (c *Context) clear() error {
	C.dw_clear()
	return nil
}

func (c *Context) destroy() error {
	if c.program != 0 {
		C.glDeleteProgram(c.program)
	}
	C.eglDestroySurface(c.dpy, c.surf)
	C.eglDestroyContext(c.dpy, c.ctx)
	C.eglTerminate(c.dpy)
	return nil
}

type program struct {
	ctx *Context
}

func (p *program) SetRatio(ratio float32) error {
	C.glUseProgram(p.ctx.program)
	C.glUniform1f(p.ctx.ratioLoc, C.GLfloat(ratio))
	return nil
}

func (p *program) DrawQuad() error {
	C.glBindBuffer(C.GL_ARRAY_BUFFER, p.ctx.vbo)
	C.glBindBuffer(C.GL_ELEMENT_ARRAY_BUFFER, p.ctx.ibo)

	const stride = 4 * 4 // 4 float32 per vertex
	C.glVertexAttribPointer(0, 2, C.GL_FLOAT, C.GL_FALSE, stride, unsafe.Pointer(uintptr(0)))
	C.glEnableVertexAttribArray(0)
	C.glVertexAttribPointer(1, 2, C.GL_FLOAT, C.GL_FALSE, stride, unsafe.Pointer(uintptr(2*4)))
	C.glEnableVertexAttribArray(1)

	C.glDrawElements(C.GL_TRIANGLES, 6, C.GL_UNSIGNED_INT, unsafe.Pointer(nil))
	return nil
}

func (p *program) Destroy() error {
	return nil
}
