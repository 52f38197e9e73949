package boids

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// randomStates returns n boids scattered in a square of side 20.
func randomStates(rng *rand.Rand, n, dim int) []State {
	states := make([]State, n)
	for i := range states {
		pos, vel := Zero(dim), Zero(dim)
		for j := 0; j < dim; j++ {
			pos[j] = 20*rng.Float64() - 10
			vel[j] = 2*rng.Float64() - 1
		}
		s := newState(AgentID(i), pos, vel)
		s.PerceptionDistance = PerDrive{Separation: 5, Alignment: 10, Cohesion: 15}
		s.FieldOfView = PerDrive{Separation: math.Pi / 2, Alignment: 2 * math.Pi / 3, Cohesion: math.Pi}
		s.Weights = Uniform(1.0 / 3)
		states[i] = s
	}
	return states
}

func newFlock(t *testing.T, states []State, opts ...Option) *Flock {
	t.Helper()
	bs := make([]*Boid, len(states))
	for i, s := range states {
		b, err := NewBoid(s)
		require.NoError(t, err)
		bs[i] = b
	}
	f, err := NewFlock(bs, opts...)
	require.NoError(t, err)
	return f
}

func TestNewBoidValidates(t *testing.T) {
	s := newState(1, Vec(0, 0), Vec(1, 0, 0))
	_, err := NewBoid(s)
	assert.ErrorIs(t, err, ErrShapeMismatch)

	s = newState(1, Vec(0, 0), Vec(1, 0))
	s.Mass = 0
	_, err = NewBoid(s)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	s.Mass = 1
	s.MaxVelocity = -2
	_, err = NewBoid(s)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestBoidStep(t *testing.T) {
	self := newState(1, Vec(0, 0), Vec(1, 0))
	other := newState(2, Vec(3, 4), Vec(0, 1))
	b, err := NewBoid(self)
	require.NoError(t, err)

	snap := snapshotOf(self, other)
	out, err := b.Step(snap)
	require.NoError(t, err)

	hoods, err := PerceiveAll(snap, self)
	require.NoError(t, err)
	drives, err := DriveAll(hoods, self)
	require.NoError(t, err)
	want, err := SelectAction(drives, self)
	require.NoError(t, err)

	assert.Equal(t, want.Output(), out)
	assert.Equal(t, want, b.State())
}

func TestNewFlockDuplicate(t *testing.T) {
	a, _ := NewBoid(newState(1, Vec(0, 0), Vec(1, 0)))
	b, _ := NewBoid(newState(1, Vec(1, 0), Vec(1, 0)))
	_, err := NewFlock([]*Boid{a, b})
	assert.ErrorIs(t, err, ErrDuplicateAgent)
}

func TestFlockTickIsSimultaneous(t *testing.T) {
	states := randomStates(rand.New(rand.NewPCG(1, 2)), 40, 2)

	// expected: every boid steps against the same initial snapshot
	snap := snapshotOf(states...)
	want := make([]StepOutput, len(states))
	for i, s := range states {
		b, err := NewBoid(s)
		require.NoError(t, err)
		want[i], err = b.Step(snap)
		require.NoError(t, err)
	}

	// insertion order must not matter
	reversed := make([]State, len(states))
	for i, s := range states {
		reversed[len(states)-1-i] = s
	}

	for _, tc := range []struct {
		name   string
		states []State
		opts   []Option
	}{
		{"sequential", states, []Option{WithWorkers(1)}},
		{"parallel", states, []Option{WithWorkers(8)}},
		{"reversed", reversed, []Option{WithWorkers(3)}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			f := newFlock(t, tc.states, tc.opts...)
			outs, err := f.Tick()
			require.NoError(t, err)
			assert.Equal(t, want, outs)
			assert.Equal(t, want, f.Outputs())
			assert.Equal(t, 1, f.Now())
		})
	}
}

func TestFlockParallelMatchesSequential(t *testing.T) {
	states := randomStates(rand.New(rand.NewPCG(3, 4)), 60, 3)
	seq := newFlock(t, states, WithWorkers(1))
	par := newFlock(t, states, WithWorkers(16))

	for k := 0; k < 20; k++ {
		a, err := seq.Tick()
		require.NoError(t, err)
		b, err := par.Tick()
		require.NoError(t, err)
		require.Equal(t, a, b, "tick %d", k)
	}
}

func TestFlockTickAllOrNothing(t *testing.T) {
	states := []State{
		newState(1, Vec(0, 0), Vec(1, 0)),
		newState(2, Vec(1, 1), Vec(0, 0)), // stationary: cannot perceive
		newState(3, Vec(-1, 2), Vec(0, 1)),
	}
	f := newFlock(t, states)
	before := f.States()

	outs, err := f.Tick()
	require.Error(t, err)
	assert.Nil(t, outs)
	assert.ErrorIs(t, err, ErrUndefinedAngle)

	var terr *TickError
	require.True(t, errors.As(err, &terr))
	assert.Equal(t, 0, terr.Tick)
	require.Len(t, terr.Failures, 1)

	var serr *StepError
	require.True(t, errors.As(terr.Failures[0], &serr))
	assert.Equal(t, AgentID(2), serr.ID)
	assert.Equal(t, "perceive", serr.Op)

	assert.Equal(t, before, f.States())
	assert.Equal(t, 0, f.Now())
}

type memRecorder struct {
	ticks  []int
	outs   [][]StepOutput
	closed bool
}

func (r *memRecorder) Record(tick int, outs []StepOutput) error {
	r.ticks = append(r.ticks, tick)
	r.outs = append(r.outs, outs)
	return nil
}

func (r *memRecorder) Close() error {
	r.closed = true
	return nil
}

func TestFlockRun(t *testing.T) {
	states := randomStates(rand.New(rand.NewPCG(5, 6)), 10, 2)
	f := newFlock(t, states)
	f.ProgressEvery = 2

	rec := &memRecorder{}
	require.NoError(t, f.Run(context.Background(), 5, rec))
	assert.Equal(t, []int{1, 2, 3, 4, 5}, rec.ticks)
	assert.Equal(t, 5, f.Now())
	assert.Equal(t, f.Outputs(), rec.outs[4])

	// positions advance by exactly the recorded velocity
	for i := range rec.outs[4] {
		next, err := Add(rec.outs[3][i].Position, rec.outs[4][i].Velocity)
		require.NoError(t, err)
		assert.True(t, ApproxEqual(next, rec.outs[4][i].Position, 1e-12))
		assert.LessOrEqual(t, rec.outs[4][i].Velocity.Norm(), states[i].MaxVelocity+1e-12)
	}
}

func TestFlockRunCanceled(t *testing.T) {
	f := newFlock(t, randomStates(rand.New(rand.NewPCG(7, 8)), 5, 2))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := f.Run(ctx, 10, nil)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, f.Now())
}
