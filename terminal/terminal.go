// Package terminal shows a running flock in a terminal.
//
// Each boid is drawn as an arrow pointing along its velocity, projected on
// the first two axes. Keys: space pauses, the right arrow advances a single
// tick, + and - zoom, f toggles following the flock, r resets the viewport
// and q, Escape or Ctrl+C quit.
package terminal

import (
	"fmt"
	"math"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/paulmach/orb"

	"github.com/PrincetonUniversity/boids"
)

// Config holds the parameters of the terminal driver.
type Config struct {
	ForcePause bool          // step manually only?
	Frame      time.Duration // delay between two ticks

	// Step goes to the next tick and returns the outputs to draw.
	Step func() ([]boids.StepOutput, error)

	// Bound is the default viewport. An empty bound fits the flock.
	Bound orb.Bound
}

// Run shows outs in the terminal and calls conf.Step to advance until the user quits.
func Run(outs []boids.StepOutput, conf *Config) error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err := screen.Init(); err != nil {
		return err
	}
	defer screen.Fini()
	return run(screen, outs, conf)
}

// viewer is the state of a terminal session.
type viewer struct {
	screen tcell.Screen
	conf   *Config
	outs   []boids.StepOutput
	ticks  int // ticks shown since start

	bound  orb.Bound
	follow bool
	pause  bool
}

func run(screen tcell.Screen, outs []boids.StepOutput, conf *Config) error {
	v := &viewer{
		screen: screen,
		conf:   conf,
		outs:   outs,
		pause:  conf.ForcePause,
	}
	v.reset()

	frame := conf.Frame
	if frame <= 0 {
		frame = 50 * time.Millisecond
	}
	ticker := time.NewTicker(frame)
	defer ticker.Stop()

	events := make(chan tcell.Event, 100)
	go func() {
		for {
			ev := screen.PollEvent()
			if ev == nil {
				// screen finalized
				close(events)
				return
			}
			events <- ev
		}
	}()

	v.draw()
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			quit, err := v.handle(ev)
			if err != nil || quit {
				return err
			}
			v.draw()

		case <-ticker.C:
			if v.pause {
				continue
			}
			if err := v.step(); err != nil {
				return err
			}
			v.draw()
		}
	}
}

// handle processes a single event and reports whether to quit.
func (v *viewer) handle(ev tcell.Event) (bool, error) {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		switch ev.Key() {
		case tcell.KeyEscape, tcell.KeyCtrlC:
			return true, nil
		case tcell.KeyRight:
			if v.pause {
				return false, v.step()
			}
		case tcell.KeyRune:
			switch ev.Rune() {
			case 'q':
				return true, nil
			case ' ':
				if !v.conf.ForcePause {
					v.pause = !v.pause
				}
			case '+':
				v.bound = zoom(v.bound, 0.8)
			case '-':
				v.bound = zoom(v.bound, 1.25)
			case 'f':
				v.follow = !v.follow
			case 'r':
				v.reset()
			}
		}

	case *tcell.EventResize:
		v.screen.Sync()
	}
	return false, nil
}

func (v *viewer) step() error {
	outs, err := v.conf.Step()
	if err != nil {
		return err
	}
	v.outs = outs
	v.ticks++
	return nil
}

// reset restores the default viewport.
func (v *viewer) reset() {
	v.bound = v.conf.Bound
	v.follow = false
	if v.bound.IsEmpty() {
		v.bound = fit(v.outs)
		v.follow = true
	}
}

func (v *viewer) draw() {
	if v.follow {
		v.bound = fit(v.outs)
	}

	v.screen.Clear()
	w, h := v.screen.Size()
	if h < 2 {
		v.screen.Show()
		return
	}

	style := tcell.StyleDefault.Foreground(tcell.ColorWhite)
	for _, o := range v.outs {
		x, y, ok := project(v.bound, w, h-1, point(o.Position))
		if !ok {
			continue
		}
		v.screen.SetContent(x, y, glyph(point(o.Velocity)), nil, style)
	}

	m := boids.Measure(v.outs)
	status := fmt.Sprintf(" tick %d  boids %d  polarization %.3f  view [%.1f,%.1f]x[%.1f,%.1f]",
		v.ticks, len(v.outs), m.Polarization,
		v.bound.Min[0], v.bound.Max[0], v.bound.Min[1], v.bound.Max[1])
	if v.pause {
		status += "  (paused)"
	}
	bar := tcell.StyleDefault.Reverse(true)
	for x, r := range []rune(status) {
		if x >= w {
			break
		}
		v.screen.SetContent(x, h-1, r, nil, bar)
	}
	v.screen.Show()
}

// point returns the projection of v on the first two axes.
func point(v boids.Vector) orb.Point {
	var p orb.Point
	copy(p[:], v)
	return p
}

// fit returns a bound containing every boid, with a margin.
func fit(outs []boids.StepOutput) orb.Bound {
	if len(outs) == 0 {
		return orb.Bound{Min: orb.Point{-1, -1}, Max: orb.Point{1, 1}}
	}
	mp := make(orb.MultiPoint, len(outs))
	for i, o := range outs {
		mp[i] = point(o.Position)
	}
	b := mp.Bound()
	pad := 0.05 * math.Max(b.Max[0]-b.Min[0], b.Max[1]-b.Min[1])
	if pad == 0 {
		pad = 1
	}
	return b.Pad(pad)
}

// zoom scales b by factor around its center.
func zoom(b orb.Bound, factor float64) orb.Bound {
	c := b.Center()
	hx := factor * (b.Max[0] - b.Min[0]) / 2
	hy := factor * (b.Max[1] - b.Min[1]) / 2
	return orb.Bound{Min: orb.Point{c[0] - hx, c[1] - hy}, Max: orb.Point{c[0] + hx, c[1] + hy}}
}

// project returns the cell of a w×h grid where p falls when the grid covers b.
// Row 0 is at the top. ok is false if p is outside b.
func project(b orb.Bound, w, h int, p orb.Point) (x, y int, ok bool) {
	dx, dy := b.Max[0]-b.Min[0], b.Max[1]-b.Min[1]
	if w <= 0 || h <= 0 || dx <= 0 || dy <= 0 {
		return 0, 0, false
	}
	fx := (p[0] - b.Min[0]) / dx
	fy := (p[1] - b.Min[1]) / dy
	if fx < 0 || fx > 1 || fy < 0 || fy > 1 {
		return 0, 0, false
	}
	x = min(int(fx*float64(w)), w-1)
	y = h - 1 - min(int(fy*float64(h)), h-1)
	return x, y, true
}

var arrows = [8]rune{'→', '↗', '↑', '↖', '←', '↙', '↓', '↘'}

// glyph returns an arrow pointing along v, or a dot if v is zero.
func glyph(v orb.Point) rune {
	if v[0] == 0 && v[1] == 0 {
		return '•'
	}
	a := math.Atan2(v[1], v[0])
	k := int(math.Round(a/(math.Pi/4))+8) % 8
	return arrows[k]
}
