//go:build !nogl

package opengl

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/go-gl/gl/v3.3-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"

	"github.com/PrincetonUniversity/boids"
)

func init() {
	// GLFW event handling must run on the main thread
	runtime.LockOSThread()
}

// Run shows outs in an OpenGL window and calls conf.Step to advance
// until the window is closed.
func Run(outs []boids.StepOutput, conf *Config) error {
	if len(outs) > conf.MaxFlockSize {
		return fmt.Errorf("opengl: %d boids, at most %d", len(outs), conf.MaxFlockSize)
	}

	// init GLFW and OpenGL
	if err := glfw.Init(); err != nil {
		return err
	}
	defer glfw.Terminate()

	glfw.WindowHint(glfw.Samples, 4)
	glfw.WindowHint(glfw.Resizable, glfw.False)
	glfw.WindowHint(glfw.ContextVersionMajor, 3)
	glfw.WindowHint(glfw.ContextVersionMinor, 3)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)

	// create OpenGL window
	const (
		title  = "Boids"
		width  = 800
		height = 800
	)
	w, err := glfw.CreateWindow(width, height, title, nil, nil)
	if err != nil {
		return err
	}
	w.MakeContextCurrent()
	glfw.SwapInterval(1)

	if err := gl.Init(); err != nil {
		return err
	}

	// set background color and enable alpha blending
	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
	gl.ClearColor(0, 0, 0, 1)
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
	w.SwapBuffers()

	// initialize OpenGL objects
	d, err := newDisplay(conf.MaxFlockSize)
	if err != nil {
		return err
	}
	defer d.delete()

	// handle scrolling zoom
	vp := newViewport(conf)
	focal := -1 // index of the highlighted boid
	w.SetScrollCallback(func(w *glfw.Window, xo, yo float64) {
		xc, yc := w.GetCursorPos()
		xs, ys := w.GetSize()
		vp.zoom(float32(xc)/float32(xs), (float32(ys)-float32(yc))/float32(ys), 0.05*float32(yo))
		d.draw(outs, focal, vp)
		w.SwapBuffers()
	})

	var quit, step bool
	pause := conf.ForcePause
	w.SetKeyCallback(func(w *glfw.Window, key glfw.Key, _ int, action glfw.Action, mod glfw.ModifierKey) {
		if key == glfw.KeyEscape && action == glfw.Press {
			quit = true
		}
		if key == glfw.KeySpace && action == glfw.Press && !conf.ForcePause {
			pause = !pause
		}
		if key == glfw.KeyRight && (action == glfw.Press || action == glfw.Repeat) {
			if pause {
				pause = false
				step = true
			}
		}
		if key == glfw.KeyTab && action == glfw.Press {
			if mod&glfw.ModShift != 0 {
				focal = cycle(focal, -1, len(outs))
			} else {
				focal = cycle(focal, 1, len(outs))
			}
		}
		if key == glfw.KeyR && action == glfw.Press {
			vp = newViewport(conf)
			d.draw(outs, focal, vp)
			w.SwapBuffers()
		}
	})

	for !(quit || w.ShouldClose()) {
		if step {
			pause = true
			step = false
			if outs, err = conf.Step(); err != nil {
				return err
			}
		}
		if !pause {
			if outs, err = conf.Step(); err != nil {
				return err
			}
		}
		if len(outs) > conf.MaxFlockSize {
			return fmt.Errorf("opengl: %d boids, at most %d", len(outs), conf.MaxFlockSize)
		}
		d.draw(outs, focal, vp)
		w.SwapBuffers()
		glfw.PollEvents()
	}
	return nil
}

// display contains all the OpenGL objects required to display the flock.
type display struct {
	vao  uint32 // vertex array object
	prog uint32
	attr struct {
		pos uint32
		vel uint32
	}
	buf uint32 // position and velocity of every boid
	uni struct {
		vp    int32 // viewport
		focal int32 // index of highlighted boid
	}
	data []float32
}

// draw updates the OpenGL buffers and draws the boids on screen.
func (d *display) draw(outs []boids.StepOutput, focal int, vp viewport) {
	gl.UseProgram(d.prog)
	gl.Uniform2fv(d.uni.vp, 2, &vp[0].X)
	gl.Uniform1i(d.uni.focal, int32(focal))
	d.update(outs)

	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
	gl.DrawArrays(gl.POINTS, 0, int32(len(outs)))
}

// update sends the first two components of boid positions and velocities to OpenGL.
func (d *display) update(outs []boids.StepOutput) {
	if len(outs) == 0 {
		return
	}
	d.data = d.data[:0]
	for _, o := range outs {
		d.data = append(d.data,
			float32(component(o.Position, 0)), float32(component(o.Position, 1)),
			float32(component(o.Velocity, 0)), float32(component(o.Velocity, 1)))
	}
	gl.BindBuffer(gl.ARRAY_BUFFER, d.buf)
	gl.BufferSubData(gl.ARRAY_BUFFER, 0, 4*len(d.data), gl.Ptr(d.data))
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
}

// component returns v[i], or 0 for 1-dimensional vectors.
func component(v boids.Vector, i int) float64 {
	if i < len(v) {
		return v[i]
	}
	return 0
}

// newDisplay compiles shaders and initializes a display.
func newDisplay(maxFlockSize int) (*display, error) {
	d := &display{data: make([]float32, 0, 4*maxFlockSize)}

	// compile and link shaders
	var err error
	d.prog, err = makeProg([]shader{
		{"Vertex", vertexShader, gl.CreateShader(gl.VERTEX_SHADER)},
		{"Geometry", geometryShader, gl.CreateShader(gl.GEOMETRY_SHADER)},
		{"Fragment", fragmentShader, gl.CreateShader(gl.FRAGMENT_SHADER)},
	})
	if err != nil {
		return nil, err
	}

	// uniform location cannot be specified in the shaders in OpenGL 3.3 core
	d.uni.vp = gl.GetUniformLocation(d.prog, gl.Str("vp\x00"))
	d.uni.focal = gl.GetUniformLocation(d.prog, gl.Str("focal\x00"))

	// attribute locations are specified in the shaders with layout(location=n)
	d.attr.pos, d.attr.vel = 0, 1

	gl.GenVertexArrays(1, &d.vao)
	gl.BindVertexArray(d.vao)

	gl.GenBuffers(1, &d.buf)
	gl.BindBuffer(gl.ARRAY_BUFFER, d.buf)
	gl.BufferData(gl.ARRAY_BUFFER, 4*4*maxFlockSize, nil, gl.STREAM_DRAW)

	const stride = 4 * 4
	gl.EnableVertexAttribArray(d.attr.pos)
	gl.VertexAttribPointerWithOffset(d.attr.pos, 2, gl.FLOAT, false, stride, 0)
	gl.EnableVertexAttribArray(d.attr.vel)
	gl.VertexAttribPointerWithOffset(d.attr.vel, 2, gl.FLOAT, false, stride, 2*4)

	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	return d, nil
}

// delete releases the OpenGL objects of the display.
func (d *display) delete() {
	gl.DeleteBuffers(1, &d.buf)
	gl.DeleteVertexArrays(1, &d.vao)
	gl.DeleteProgram(d.prog)
}

// A shader wraps an OpenGL shader.
type shader struct {
	name   string
	src    string
	shader uint32
}

// makeProg builds OpenGL programs.
func makeProg(shaders []shader) (uint32, error) {
	var errs []string
	for _, s := range shaders {
		str, free := gl.Strs(s.src + "\x00")
		gl.ShaderSource(s.shader, 1, str, nil)
		free()
		gl.CompileShader(s.shader)
		var status int32
		gl.GetShaderiv(s.shader, gl.COMPILE_STATUS, &status)
		if status != gl.TRUE {
			var n int32
			gl.GetShaderiv(s.shader, gl.INFO_LOG_LENGTH, &n)
			log := make([]uint8, n+1)
			gl.GetShaderInfoLog(s.shader, n, &n, &log[0])
			errs = append(errs, fmt.Sprintf("%s shader: %s", s.name, gl.GoStr(&log[0])))
			gl.DeleteShader(s.shader)
		}
	}
	if len(errs) > 0 {
		return 0, fmt.Errorf("opengl: GLSL errors:\n%s", strings.Join(errs, "\n"))
	}
	prog := gl.CreateProgram()
	for _, s := range shaders {
		gl.AttachShader(prog, s.shader)
	}
	gl.LinkProgram(prog)
	for _, s := range shaders {
		gl.DeleteShader(s.shader)
	}

	var status int32
	gl.GetProgramiv(prog, gl.LINK_STATUS, &status)
	if status != gl.TRUE {
		var n int32
		gl.GetProgramiv(prog, gl.INFO_LOG_LENGTH, &n)
		log := make([]uint8, n+1)
		gl.GetProgramInfoLog(prog, n, &n, &log[0])
		return 0, fmt.Errorf("opengl: link error: %s", gl.GoStr(&log[0]))
	}
	return prog, nil
}

const vertexShader = `
#version 330 core

layout(location = 0) in vec2 pos;
layout(location = 1) in vec2 vel;

out vec2 vpos;
out vec2 vvel;
flat out int vid;

void main() {
	vpos = pos;
	vvel = vel;
	vid = gl_VertexID;
}
`

// The geometry shader turns each boid into a triangle pointing along its velocity.
const geometryShader = `
#version 330 core

layout(points) in;
layout(triangle_strip, max_vertices = 3) out;

uniform vec2 vp[2];
uniform int focal;

in vec2 vpos[];
in vec2 vvel[];
flat in int vid[];

out vec4 color;

vec4 project(vec2 p) {
	return vec4(2 * (p - vp[0]) / (vp[1] - vp[0]) - 1, 0, 1);
}

void main() {
	float s = 0.01 * (vp[1].x - vp[0].x);
	vec2 h = length(vvel[0]) > 0 ? normalize(vvel[0]) : vec2(1, 0);
	vec2 n = vec2(-h.y, h.x);
	vec4 c = vid[0] == focal ? vec4(1, 0.3, 0.2, 1) : vec4(0.9, 0.9, 0.9, 0.8);

	color = c;
	gl_Position = project(vpos[0] + 1.5 * s * h);
	EmitVertex();
	color = c;
	gl_Position = project(vpos[0] - s * h + 0.6 * s * n);
	EmitVertex();
	color = c;
	gl_Position = project(vpos[0] - s * h - 0.6 * s * n);
	EmitVertex();
	EndPrimitive();
}
`

const fragmentShader = `
#version 330 core

in vec4 color;
out vec4 frag;

void main() {
	frag = color;
}
`
