package boids

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMeasure(t *testing.T) {
	assert.Equal(t, Metrics{}, Measure(nil))

	aligned := []StepOutput{
		{ID: 1, Position: Vec(0, 0), Velocity: Vec(1, 0)},
		{ID: 2, Position: Vec(2, 4), Velocity: Vec(3, 0)},
		{ID: 3, Position: Vec(4, -1), Velocity: Vec(0, 0)},
	}
	m := Measure(aligned)
	assert.InDelta(t, 1, m.Polarization, 1e-12)
	assert.True(t, ApproxEqual(Vec(2, 1), m.Centroid, 1e-12), "%v", m.Centroid)
	assert.Equal(t, Vec(0, -1), m.Min)
	assert.Equal(t, Vec(4, 4), m.Max)

	opposed := []StepOutput{
		{ID: 1, Position: Vec(0, 0, 0), Velocity: Vec(0, 0, 2)},
		{ID: 2, Position: Vec(1, 1, 1), Velocity: Vec(0, 0, -5)},
	}
	m = Measure(opposed)
	assert.InDelta(t, 0, m.Polarization, 1e-12)
	assert.Equal(t, Vec(0.5, 0.5, 0.5), m.Centroid)
}
