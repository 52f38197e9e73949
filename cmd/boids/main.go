// Command boids runs flocking simulations.
//
// Usage
//
// The boids command takes one optional argument:
//
//	boids [config_file]
//
// It is the path to a TOML (.toml) or YAML (.yaml, .yml) config file.
// If no config file is specified, an interactive simulation
// with default parameters will run in the terminal.
//
// Config file
//
// Every parameter of config.Config can be set, using its snake_case name.
// Parameters absent from the file keep their default value, unknown
// parameters are an error. For instance:
//
//	output = "runs/flock.csv.zst"
//	flock_size = 200
//	steps = 5000
//	seed = 42
//
//	[weights]
//	separation = 1.5
//	alignment = 1
//	cohesion = 1
//
// Output
//
// If output is empty the simulation runs interactively, in the terminal
// or in an OpenGL window depending on viewer. Otherwise the initial state
// and the state after each of the steps ticks are recorded in the output
// file, whose format depends on its extension: .csv, .csv.zst, .sqlite,
// .db, .h5 or .hdf5. Interrupting a recording keeps the ticks already written.
//
// Interactive mode
//
// In interactive mode, the simulation can be paused/resumed with space.
// While in pause, pressing right arrow will perform a single step.
// Pressing Esc or q (or closing the window) will quit.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/paulmach/orb"

	"github.com/PrincetonUniversity/boids"
	"github.com/PrincetonUniversity/boids/config"
	"github.com/PrincetonUniversity/boids/hdf5"
	"github.com/PrincetonUniversity/boids/logging"
	"github.com/PrincetonUniversity/boids/opengl"
	"github.com/PrincetonUniversity/boids/record"
	"github.com/PrincetonUniversity/boids/scenario"
	"github.com/PrincetonUniversity/boids/terminal"
)

const usage = `Usage: boids [config_file]

The first argument is optional and is the path to a TOML or YAML config file.
If no config file is specified, an interactive simulation
with default parameters will run in the terminal.
`

func main() {
	var conf *config.Config
	var err error
	switch len(os.Args) {
	case 1:
		conf = config.Default()
	case 2:
		conf, err = config.Load(os.Args[1])
	default:
		err = fmt.Errorf("%d arguments provided (0 required, 1 optional)\n\n%s", len(os.Args)-1, usage)
	}
	if err != nil {
		Fatal(err)
	}

	// a terminal viewer owns the screen: nothing else may write to it
	var logw io.Writer = os.Stderr
	if conf.Output == "" && conf.Viewer == "terminal" {
		logw = io.Discard
	}
	log, err := logging.New(conf.LogLevel, conf.LogFormat, logw)
	if err != nil {
		Fatal(err)
	}

	rng, seed := scenario.NewRand(conf.Seed)
	flock, err := scenario.Flock(rng, conf, boids.WithLogger(log))
	if err != nil {
		Fatal(err)
	}
	flock.ProgressEvery = conf.ProgressEvery
	log.Info("flock ready", "boids", flock.Len(), "dim", conf.Dim, "seed", seed)

	// run interactively or not depending on config
	if conf.Output == "" {
		err = view(conf, flock)
	} else {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		err = recordRun(ctx, conf, flock, seed, log)
		stop()
	}
	if err != nil {
		Fatal(err)
	}
}

// Fatal prints an error on the standard error and exits with a non-zero status.
func Fatal(err error) {
	fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	os.Exit(1)
}

// recordRun records the initial state of f then runs conf.Steps ticks.
func recordRun(ctx context.Context, conf *config.Config, f *boids.Flock, seed uint64, log *slog.Logger) (err error) {
	meta := record.NewMeta(conf.Dim, f.Len(), conf.Steps, seed)
	rec, err := createRecorder(conf.Output, meta)
	if err != nil {
		return err
	}
	defer checkClose(&err, rec)

	log.Info("recording", "output", conf.Output, "run_id", meta.RunID, "steps", conf.Steps)
	start := time.Now()
	if err := rec.Record(f.Now(), f.Outputs()); err != nil {
		return err
	}
	if err := f.Run(ctx, conf.Steps, rec); err != nil {
		log.Error("run stopped", "tick", f.Now(), "err", err)
		return err
	}

	m := boids.Measure(f.Outputs())
	log.Info("done", "ticks", f.Now(), "elapsed", time.Since(start).Round(time.Millisecond),
		"polarization", m.Polarization, "centroid", m.Centroid.String())
	return nil
}

// createRecorder opens a recorder for meta whose format follows the extension of path.
func createRecorder(path string, meta record.Meta) (boids.Recorder, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".h5", ".hdf5":
		return hdf5.Create(path, meta)
	}
	return record.Create(path, meta)
}

// view runs f interactively with the viewer selected in conf.
func view(conf *config.Config, f *boids.Flock) error {
	step := func() ([]boids.StepOutput, error) {
		return f.Tick()
	}
	switch conf.Viewer {
	case "opengl":
		return opengl.Run(f.Outputs(), &opengl.Config{
			MaxFlockSize: f.Len(),
			Step:         step,
			Xmin:         conf.Xmin,
			Ymin:         conf.Ymin,
			Xmax:         conf.Xmax,
			Ymax:         conf.Ymax,
		})
	case "terminal":
		return terminal.Run(f.Outputs(), &terminal.Config{
			Frame: time.Duration(conf.FrameMillis) * time.Millisecond,
			Step:  step,
			Bound: orb.Bound{Min: orb.Point{conf.Xmin, conf.Ymin}, Max: orb.Point{conf.Xmax, conf.Ymax}},
		})
	}
	return fmt.Errorf("bad viewer %q", conf.Viewer)
}

// checkClose checks for errors in deferred calls.
func checkClose(err *error, c io.Closer) {
	if cerr := c.Close(); *err == nil {
		*err = cerr
	}
}
