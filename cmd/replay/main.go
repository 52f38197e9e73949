// Command replay plays back a recorded flock.
//
// Usage:
//
//	replay [-viewer terminal|opengl] [-frame ms] [-run id] [-loop] recording
//
// The recording is any file written by the boids command. For SQLite
// recordings, -run selects the run to replay (default: the latest).
// With -loop the playback starts over at the end of the recording,
// otherwise the last tick stays on screen.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/paulmach/orb"

	"github.com/PrincetonUniversity/boids"
	"github.com/PrincetonUniversity/boids/hdf5"
	"github.com/PrincetonUniversity/boids/opengl"
	"github.com/PrincetonUniversity/boids/record"
	"github.com/PrincetonUniversity/boids/terminal"
)

func main() {
	viewer := flag.String("viewer", "terminal", "viewer: terminal or opengl")
	frame := flag.Int("frame", 50, "duration of a frame in the terminal, in milliseconds")
	runID := flag.String("run", "", "run id to replay from a SQLite recording (default latest)")
	loop := flag.Bool("loop", false, "start over at the end of the recording")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: replay [flags] recording\n\n")
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	if err := replay(flag.Arg(0), *runID, *viewer, *loop, time.Duration(*frame)*time.Millisecond); err != nil {
		Fatal(err)
	}
}

// Fatal prints an error on the standard error and exits with a non-zero status.
func Fatal(err error) {
	fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	os.Exit(1)
}

func replay(path, runID, viewer string, loop bool, frame time.Duration) (err error) {
	p, err := newPlayer(path, runID, loop)
	if err != nil {
		return err
	}
	defer checkClose(&err, p)

	outs, err := p.Step()
	if err != nil {
		return err
	}
	bound := bounds(outs)

	switch viewer {
	case "opengl":
		return opengl.Run(outs, &opengl.Config{
			MaxFlockSize: len(outs),
			Step:         p.Step,
			Xmin:         bound.Min[0],
			Ymin:         bound.Min[1],
			Xmax:         bound.Max[0],
			Ymax:         bound.Max[1],
		})
	case "terminal":
		return terminal.Run(outs, &terminal.Config{Frame: frame, Step: p.Step})
	}
	return fmt.Errorf("bad viewer %q", viewer)
}

// A player feeds the ticks of a recording to a viewer.
type player struct {
	path  string
	runID string
	loop  bool

	r    record.Reader
	last []boids.StepOutput
}

func newPlayer(path, runID string, loop bool) (*player, error) {
	p := &player{path: path, runID: runID, loop: loop}
	return p, p.open()
}

func (p *player) open() error {
	r, err := openReader(p.path, p.runID)
	if err != nil {
		return err
	}
	p.r = r
	return nil
}

// openReader opens the recording at path whatever its format.
func openReader(path, runID string) (record.Reader, error) {
	switch {
	case isHDF5(path):
		l, err := hdf5.Open(path, false)
		if err != nil {
			return nil, err
		}
		return l, nil
	case runID != "":
		r, err := record.OpenSQLite(path, runID)
		if err != nil {
			return nil, err
		}
		return r, nil
	}
	return record.Open(path)
}

// Step returns the next tick of the recording. At the end of the recording
// it starts over if looping, and returns the last tick again otherwise.
func (p *player) Step() ([]boids.StepOutput, error) {
	_, outs, err := p.r.Next()
	if errors.Is(err, io.EOF) {
		if p.last == nil {
			return nil, fmt.Errorf("%s: empty recording", p.path)
		}
		if !p.loop {
			return p.last, nil
		}
		if err := p.rewind(); err != nil {
			return nil, err
		}
		_, outs, err = p.r.Next()
	}
	if err != nil {
		return nil, err
	}
	p.last = outs
	return outs, nil
}

// rewind reopens the recording from its first tick.
func (p *player) rewind() error {
	r, err := openReader(p.path, p.runID)
	if err != nil {
		return err
	}
	old := p.r
	p.r = r
	return old.Close()
}

func (p *player) Close() error {
	return p.r.Close()
}

func isHDF5(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".h5" || ext == ".hdf5"
}

// bounds returns a square viewport containing outs, with a margin.
func bounds(outs []boids.StepOutput) orb.Bound {
	m := boids.Measure(outs)
	b := orb.Bound{Min: orb.Point{-1, -1}, Max: orb.Point{1, 1}}
	if len(m.Centroid) < 2 {
		return b
	}
	r := 1.0
	for i := 0; i < 2; i++ {
		r = max(r, m.Max[i]-m.Centroid[i], m.Centroid[i]-m.Min[i])
	}
	r *= 1.5
	c := orb.Point{m.Centroid[0], m.Centroid[1]}
	return orb.Bound{Min: orb.Point{c[0] - r, c[1] - r}, Max: orb.Point{c[0] + r, c[1] + r}}
}

// checkClose checks for errors in deferred calls.
func checkClose(err *error, c io.Closer) {
	if cerr := c.Close(); *err == nil {
		*err = cerr
	}
}
