package main

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PrincetonUniversity/boids"
	"github.com/PrincetonUniversity/boids/record"
)

func outputs(x float64) []boids.StepOutput {
	return []boids.StepOutput{{ID: 1, Position: boids.Vec(x, 0), Velocity: boids.Vec(1, 0)}}
}

func writeRun(t *testing.T, path string, ticks int) record.Meta {
	t.Helper()
	meta := record.NewMeta(2, 1, ticks-1, 1)
	w, err := record.Create(path, meta)
	require.NoError(t, err)
	for k := 0; k < ticks; k++ {
		require.NoError(t, w.Record(k, outputs(float64(k))))
	}
	require.NoError(t, w.Close())
	return meta
}

func positions(t *testing.T, p *player, n int) []float64 {
	t.Helper()
	var xs []float64
	for i := 0; i < n; i++ {
		outs, err := p.Step()
		require.NoError(t, err)
		xs = append(xs, outs[0].Position[0])
	}
	return xs
}

func TestPlayerStopsAtEnd(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.csv")
	writeRun(t, path, 3)

	p, err := newPlayer(path, "", false)
	require.NoError(t, err)
	defer p.Close()
	assert.Equal(t, []float64{0, 1, 2, 2, 2}, positions(t, p, 5))
}

func TestPlayerLoops(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.csv.zst")
	writeRun(t, path, 3)

	p, err := newPlayer(path, "", true)
	require.NoError(t, err)
	defer p.Close()
	assert.Equal(t, []float64{0, 1, 2, 0, 1, 2, 0}, positions(t, p, 7))
}

func TestPlayerSQLiteRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.db")
	first := writeRun(t, path, 2)
	writeRun(t, path, 4)

	p, err := newPlayer(path, first.RunID, false)
	require.NoError(t, err)
	defer p.Close()
	assert.Equal(t, []float64{0, 1, 1}, positions(t, p, 3))
}

func TestPlayerErrors(t *testing.T) {
	_, err := newPlayer(filepath.Join(t.TempDir(), "missing.csv"), "", false)
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "empty.csv")
	w, err := record.CreateCSV(path, 2)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	p, err := newPlayer(path, "", false)
	require.NoError(t, err)
	defer p.Close()
	_, err = p.Step()
	assert.ErrorContains(t, err, "empty recording")
}

func TestBounds(t *testing.T) {
	b := bounds([]boids.StepOutput{
		{ID: 1, Position: boids.Vec(0, 0), Velocity: boids.Vec(1, 0)},
		{ID: 2, Position: boids.Vec(4, 2), Velocity: boids.Vec(1, 0)},
	})
	assert.Equal(t, 6.0, b.Max[0]-b.Min[0])
	assert.Equal(t, b.Max[0]-b.Min[0], b.Max[1]-b.Min[1])
	assert.Equal(t, [2]float64{2, 1}, [2]float64(b.Center()))
}
