// Package boids runs discrete-time flocking simulations (Reynolds' boids).
//
// A fixed population of boids moves in an N-dimensional world.
// Each boid sees the others within a distance and a field of view
// specific to each of its three drives (separation, alignment, cohesion),
// blends the three steering vectors into a force and integrates it.
//
// All boids of a tick perceive the same frozen snapshot of the flock,
// so the outcome of a tick does not depend on the order in which boids
// are updated.
package boids

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"sort"
	"sync"

	"github.com/PrincetonUniversity/boids/logging"
)

// A Recorder stores the outputs of every tick, for instance in a file.
type Recorder interface {
	// Record is called once per tick with the outputs of all boids
	// sorted by id. The recorder must not modify outs.
	Record(tick int, outs []StepOutput) error
	io.Closer
}

// A Flock contains all the boids of a simulation and the tick counter.
type Flock struct {
	boids   []*Boid // sorted by id
	tick    int
	workers int
	log     *slog.Logger

	// ProgressEvery is the number of ticks between two progress log lines
	// in Run. Zero disables them.
	ProgressEvery int
}

// An Option configures a Flock.
type Option func(*Flock)

// WithWorkers sets the number of goroutines stepping boids in parallel.
func WithWorkers(n int) Option {
	return func(f *Flock) {
		if n > 0 {
			f.workers = n
		}
	}
}

// WithLogger sets the logger of the flock.
func WithLogger(l *slog.Logger) Option {
	return func(f *Flock) {
		if l != nil {
			f.log = l
		}
	}
}

// NewFlock returns a flock made of boids. Ids must be unique.
func NewFlock(boids []*Boid, opts ...Option) (*Flock, error) {
	f := &Flock{
		boids:         make([]*Boid, len(boids)),
		workers:       runtime.GOMAXPROCS(0),
		log:           logging.Discard(),
		ProgressEvery: 100,
	}
	copy(f.boids, boids)
	sort.Slice(f.boids, func(i, j int) bool { return f.boids[i].ID() < f.boids[j].ID() })
	for i := 1; i < len(f.boids); i++ {
		if f.boids[i].ID() == f.boids[i-1].ID() {
			return nil, fmt.Errorf("flock: %w: %d", ErrDuplicateAgent, f.boids[i].ID())
		}
	}
	for _, opt := range opts {
		opt(f)
	}
	return f, nil
}

// Len returns the number of boids.
func (f *Flock) Len() int {
	return len(f.boids)
}

// Now returns the number of ticks completed so far.
func (f *Flock) Now() int {
	return f.tick
}

// Outputs returns the current position and velocity of every boid, by id.
func (f *Flock) Outputs() []StepOutput {
	outs := make([]StepOutput, len(f.boids))
	for i, b := range f.boids {
		outs[i] = b.state.Output()
	}
	return outs
}

// States returns the current state of every boid, by id.
func (f *Flock) States() []State {
	states := make([]State, len(f.boids))
	for i, b := range f.boids {
		states[i] = b.state
	}
	return states
}

// Snapshot captures the current position and velocity of every boid.
func (f *Flock) Snapshot() (*Snapshot, error) {
	return NewSnapshot(f.Outputs())
}

// Tick runs a single simulation tick.
//
// Every boid computes its next state from the same snapshot, in parallel.
// States are committed only if all boids succeeded: on failure the flock
// is left exactly as it was and a *TickError lists the failing boids.
func (f *Flock) Tick() ([]StepOutput, error) {
	snap, err := f.Snapshot()
	if err != nil {
		return nil, err
	}

	next := make([]State, len(f.boids))
	errs := make([]error, len(f.boids))
	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < min(f.workers, len(f.boids)); w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				next[i], errs[i] = f.boids[i].next(snap)
			}
		}()
	}
	for i := range f.boids {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	var failures []error
	for _, err := range errs {
		if err != nil {
			failures = append(failures, err)
		}
	}
	if len(failures) > 0 {
		terr := &TickError{Tick: f.tick, Failures: failures}
		f.log.Error("tick aborted", "tick", f.tick, "failed", len(failures), "err", terr)
		return nil, terr
	}

	outs := make([]StepOutput, len(f.boids))
	for i, b := range f.boids {
		b.state = next[i]
		outs[i] = next[i].Output()
	}
	f.tick++
	f.log.Debug("tick", "tick", f.tick, "boids", len(outs))
	return outs, nil
}

// Run runs steps ticks and hands the outputs of each tick to rec, if not nil.
// ctx is only checked between ticks so a tick is never left half done.
func (f *Flock) Run(ctx context.Context, steps int, rec Recorder) error {
	for k := 0; k < steps; k++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		outs, err := f.Tick()
		if err != nil {
			return err
		}
		if rec != nil {
			if err := rec.Record(f.tick, outs); err != nil {
				return fmt.Errorf("record tick %d: %w", f.tick, err)
			}
		}
		if f.ProgressEvery > 0 && f.tick%f.ProgressEvery == 0 {
			m := Measure(outs)
			f.log.Info("progress", "tick", f.tick, "of", steps,
				"polarization", m.Polarization, "centroid", m.Centroid.String())
		}
	}
	return nil
}
