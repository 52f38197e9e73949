package boids

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDrivesEmptyNeighborhood(t *testing.T) {
	for _, dim := range []int{2, 3} {
		vel := Zero(dim)
		vel[0] = 1
		self := newState(0, Zero(dim), vel)
		for _, d := range Drives {
			v, err := DriveFuncs[d](Neighborhood{}, self)
			require.NoError(t, err, d.String())
			assert.Equal(t, Zero(dim), v, "%s in %dD", d, dim)
		}
	}
}

func TestSeparationDrive(t *testing.T) {
	ks := map[AgentID]Kinematics{
		1: {Position: Vec(1, 0), Velocity: Vec(1, 0)},
		2: {Position: Vec(-1, 0), Velocity: Vec(1, 0)},
		3: {Position: Vec(2, 0), Velocity: Vec(1, 0)},
		4: {Position: Vec(0, -2), Velocity: Vec(1, 0)},
	}
	self := newState(0, Vec(0, 0), Vec(1, 0))

	t.Run("symmetric", func(t *testing.T) {
		v, err := SeparationDrive(hood(ks, 1, 2), self)
		require.NoError(t, err)
		assert.Equal(t, Zero(2), v)
	})

	t.Run("single", func(t *testing.T) {
		v, err := SeparationDrive(hood(ks, 3), self)
		require.NoError(t, err)
		assert.True(t, ApproxEqual(Vec(-1, 0), v, tol), "%v", v)
	})

	t.Run("inverse square", func(t *testing.T) {
		// (-1, 0)/1 + (0, 2)/4
		v, err := SeparationDrive(hood(ks, 1, 4), self)
		require.NoError(t, err)
		want, _ := Normalize(Vec(-1, 0.5))
		assert.True(t, ApproxEqual(want, v, tol), "%v", v)
		assert.InDelta(t, 1, v.Norm(), tol)
	})

	t.Run("coincident", func(t *testing.T) {
		ks := map[AgentID]Kinematics{5: {Position: Vec(0, 0), Velocity: Vec(1, 0)}}
		_, err := SeparationDrive(hood(ks, 5), self)
		assert.ErrorIs(t, err, ErrDivideByZero)
	})
}

func TestAlignmentDrive(t *testing.T) {
	ks := map[AgentID]Kinematics{
		1: {Position: Vec(1, 0), Velocity: Vec(0, 1)},
		2: {Position: Vec(2, 0), Velocity: Vec(0, 3)},
		3: {Position: Vec(3, 0), Velocity: Vec(2, -1)},
	}
	self := newState(0, Vec(0, 0), Vec(1, 0))

	// mean velocity (0, 2), minus own (1, 0)
	v, err := AlignmentDrive(hood(ks, 1, 2), self)
	require.NoError(t, err)
	want, _ := Normalize(Vec(-1, 2))
	assert.True(t, ApproxEqual(want, v, tol), "%v", v)

	// already aligned with the mean (1, 0)
	v, err = AlignmentDrive(hood(ks, 1, 3), self)
	require.NoError(t, err)
	assert.Equal(t, Zero(2), v)
}

func TestCohesionDrive(t *testing.T) {
	ks := map[AgentID]Kinematics{
		1: {Position: Vec(2, 0, 0), Velocity: Vec(1, 0, 0)},
		2: {Position: Vec(0, 2, 0), Velocity: Vec(1, 0, 0)},
		3: {Position: Vec(-2, -2, 0), Velocity: Vec(1, 0, 0)},
	}
	self := newState(0, Vec(0, 0, 0), Vec(1, 0, 0))

	v, err := CohesionDrive(hood(ks, 1, 2), self)
	require.NoError(t, err)
	assert.True(t, ApproxEqual(Vec(1/math.Sqrt2, 1/math.Sqrt2, 0), v, tol), "%v", v)

	// centered on the mean position
	v, err = CohesionDrive(hood(ks, 1, 2, 3), self)
	require.NoError(t, err)
	assert.Equal(t, Zero(3), v)
}

func TestDriveAllUsesOwnNeighborhood(t *testing.T) {
	ks := map[AgentID]Kinematics{
		1: {Position: Vec(0, 4), Velocity: Vec(0, 1)},
		2: {Position: Vec(4, 0), Velocity: Vec(0, -1)},
	}
	self := newState(0, Vec(0, 0), Vec(1, 0))

	var hoods [NumDrives]Neighborhood
	hoods[Separation] = hood(ks)
	hoods[Alignment] = hood(ks, 1)
	hoods[Cohesion] = hood(ks, 2)

	drives, err := DriveAll(hoods, self)
	require.NoError(t, err)
	assert.Equal(t, Zero(2), drives[Separation])
	want, _ := Normalize(Vec(-1, 1))
	assert.True(t, ApproxEqual(want, drives[Alignment], tol), "%v", drives[Alignment])
	assert.True(t, ApproxEqual(Vec(1, 0), drives[Cohesion], tol), "%v", drives[Cohesion])
}
