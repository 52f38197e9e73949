package boids

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tol = 1e-12

func TestVectorArithmetic(t *testing.T) {
	a, b := Vec(1, 2, 3), Vec(4, -5, 6)

	sum, err := Add(a, b)
	require.NoError(t, err)
	assert.Equal(t, Vec(5, -3, 9), sum)

	diff, err := Sub(a, b)
	require.NoError(t, err)
	assert.Equal(t, Vec(-3, 7, -3), diff)

	assert.Equal(t, Vec(2, 4, 6), Scale(a, 2))

	q, err := Divide(b, 2)
	require.NoError(t, err)
	assert.Equal(t, Vec(2, -2.5, 3), q)

	dot, err := Dot(a, b)
	require.NoError(t, err)
	assert.Equal(t, 12.0, dot)

	assert.Equal(t, 5.0, Vec(3, 4).Norm())
	assert.Equal(t, 0.0, Zero(3).Norm())

	// operands are left untouched
	assert.Equal(t, Vec(1, 2, 3), a)
	assert.Equal(t, Vec(4, -5, 6), b)
}

func TestVectorShapeMismatch(t *testing.T) {
	a, b := Vec(1, 2), Vec(1, 2, 3)

	_, err := Add(a, b)
	assert.ErrorIs(t, err, ErrShapeMismatch)
	_, err = Sub(a, b)
	assert.ErrorIs(t, err, ErrShapeMismatch)
	_, err = Dot(a, b)
	assert.ErrorIs(t, err, ErrShapeMismatch)
	_, err = Distance(a, b)
	assert.ErrorIs(t, err, ErrShapeMismatch)
	_, err = AngularOffset(a, Vec(0, 0), b)
	assert.ErrorIs(t, err, ErrShapeMismatch)
}

func TestDivideByZero(t *testing.T) {
	_, err := Divide(Vec(1, 1), 0)
	assert.ErrorIs(t, err, ErrDivideByZero)
}

func TestDistance(t *testing.T) {
	d, err := Distance(Vec(1, 1), Vec(4, 5))
	require.NoError(t, err)
	assert.Equal(t, 5.0, d)
}

func TestNormalize(t *testing.T) {
	for _, v := range []Vector{
		Vec(1, 0), Vec(3, 4), Vec(-2, 7, 0.5), Vec(1e-8, -1e-8), Vec(1e9, 2e9, -3e9),
	} {
		u, err := Normalize(v)
		require.NoError(t, err, "%v", v)
		assert.InDelta(t, 1, u.Norm(), 1e-12, "%v", v)

		// u is a positive multiple of v
		dot, err := Dot(u, v)
		require.NoError(t, err)
		assert.InDelta(t, v.Norm(), dot, 1e-9*v.Norm(), "%v", v)
	}

	_, err := Normalize(Zero(2))
	assert.ErrorIs(t, err, ErrUndefinedNormalization)
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		name string
		v    Vector
		max  float64
		want Vector
	}{
		{"below", Vec(3, 4), 10, Vec(3, 4)},
		{"equal", Vec(3, 4), 5, Vec(3, 4)},
		{"above", Vec(3, 4), 2.5, Vec(1.5, 2)},
		{"zero vector", Zero(2), 0, Zero(2)},
		{"zero limit", Vec(0, -2), 0, Vec(0, 0)},
		{"3d", Vec(0, 0, -9), 3, Vec(0, 0, -3)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Truncate(tt.v, tt.max)
			require.NoError(t, err)
			assert.True(t, ApproxEqual(tt.want, got, tol), "got %v, want %v", got, tt.want)

			// idempotent
			again, err := Truncate(got, tt.max)
			require.NoError(t, err)
			assert.True(t, ApproxEqual(got, again, tol), "got %v, then %v", got, again)

			if tt.v.Norm() > tt.max {
				assert.InDelta(t, tt.max, got.Norm(), 1e-12)
			} else {
				assert.Equal(t, tt.v, got)
			}
		})
	}

	_, err := Truncate(Vec(1, 1), -1)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestAngularOffset(t *testing.T) {
	origin := Vec(0, 0)
	heading := Vec(1, 0)
	tests := []struct {
		name string
		p    Vector
		want float64
	}{
		{"same direction", Vec(2, 0), 0},
		{"perpendicular", Vec(0, 3), math.Pi / 2},
		{"perpendicular other side", Vec(0, -3), math.Pi / 2},
		{"opposite", Vec(-1, 0), math.Pi},
		{"diagonal", Vec(1, 1), math.Pi / 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := AngularOffset(tt.p, origin, heading)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, a, 1e-12)
		})
	}

	t.Run("zero heading", func(t *testing.T) {
		_, err := AngularOffset(Vec(1, 0), origin, Zero(2))
		assert.ErrorIs(t, err, ErrUndefinedAngle)
	})

	t.Run("same position", func(t *testing.T) {
		a, err := AngularOffset(Vec(1, 1), Vec(1, 1), Zero(2))
		require.NoError(t, err)
		assert.Equal(t, 0.0, a)
	})

	t.Run("round-off", func(t *testing.T) {
		// the cosine of nearly parallel vectors can exceed 1 by an ulp
		for _, k := range []float64{0.1, 0.3, 1.7, 3, 1e7} {
			a, err := AngularOffset(Vec(1+k, 1+k, 1+k), Vec(1, 1, 1), Vec(0.1, 0.1, 0.1))
			require.NoError(t, err)
			assert.False(t, math.IsNaN(a))
			assert.InDelta(t, 0, a, 1e-6)
		}
	})
}

func TestEqual(t *testing.T) {
	assert.True(t, Equal(Vec(1, 2), Vec(1, 2)))
	assert.False(t, Equal(Vec(1, 2), Vec(1, 2, 0)))
	assert.False(t, Equal(Vec(1, 2), Vec(1, 3)))
	assert.True(t, ApproxEqual(Vec(1, 2), Vec(1+1e-13, 2), 1e-12))
	assert.Equal(t, "(1, -2.5)", Vec(1, -2.5).String())
}
