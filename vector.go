package boids

import (
	"fmt"
	"math"
)

// A Vector is a point or a direction in an N-dimensional space.
// N is fixed for a given simulation (usually 2 or 3).
// Vectors are values: no operation modifies its operands.
type Vector []float64

// Vec returns a vector with the given components.
func Vec(c ...float64) Vector {
	v := make(Vector, len(c))
	copy(v, c)
	return v
}

// Zero returns the zero vector of dimension dim.
func Zero(dim int) Vector {
	return make(Vector, dim)
}

// Dim returns the number of components of v.
func (v Vector) Dim() int {
	return len(v)
}

// Clone returns a copy of v that does not share storage with v.
func (v Vector) Clone() Vector {
	return Vec(v...)
}

// IsZero reports whether all components of v are zero.
func (v Vector) IsZero() bool {
	for _, x := range v {
		if x != 0 {
			return false
		}
	}
	return true
}

// Norm returns the Euclidean length of v.
func (v Vector) Norm() float64 {
	var s float64
	for _, x := range v {
		s += x * x
	}
	return math.Sqrt(s)
}

// String formats v as (x, y, ...).
func (v Vector) String() string {
	s := "("
	for i, x := range v {
		if i > 0 {
			s += ", "
		}
		s += fmt.Sprintf("%g", x)
	}
	return s + ")"
}

func sameDim(op string, a, b Vector) error {
	if len(a) != len(b) {
		return fmt.Errorf("%s: %w: %d != %d", op, ErrShapeMismatch, len(a), len(b))
	}
	return nil
}

// Add returns a+b.
func Add(a, b Vector) (Vector, error) {
	if err := sameDim("add", a, b); err != nil {
		return nil, err
	}
	out := make(Vector, len(a))
	for i := range a {
		out[i] = a[i] + b[i]
	}
	return out, nil
}

// Sub returns a-b.
func Sub(a, b Vector) (Vector, error) {
	if err := sameDim("sub", a, b); err != nil {
		return nil, err
	}
	out := make(Vector, len(a))
	for i := range a {
		out[i] = a[i] - b[i]
	}
	return out, nil
}

// Scale returns k*v.
func Scale(v Vector, k float64) Vector {
	out := make(Vector, len(v))
	for i, x := range v {
		out[i] = k * x
	}
	return out
}

// Divide returns v/k.
func Divide(v Vector, k float64) (Vector, error) {
	if k == 0 {
		return nil, fmt.Errorf("divide: %w", ErrDivideByZero)
	}
	out := make(Vector, len(v))
	for i, x := range v {
		out[i] = x / k
	}
	return out, nil
}

// Dot returns the scalar product of a and b.
func Dot(a, b Vector) (float64, error) {
	if err := sameDim("dot", a, b); err != nil {
		return 0, err
	}
	var s float64
	for i := range a {
		s += a[i] * b[i]
	}
	return s, nil
}

// Distance returns the Euclidean distance between p and q.
func Distance(p, q Vector) (float64, error) {
	d, err := Sub(p, q)
	if err != nil {
		return 0, err
	}
	return d.Norm(), nil
}

// AngularOffset returns the angle in [0, π] between the heading vj of an
// observer at pj and the direction from pj toward pi.
// It is 0 when pi and pj coincide.
func AngularOffset(pi, pj, vj Vector) (float64, error) {
	diff, err := Sub(pi, pj)
	if err != nil {
		return 0, err
	}
	dn := diff.Norm()
	if dn == 0 {
		return 0, nil
	}
	if len(vj) != len(diff) {
		return 0, fmt.Errorf("angular offset: %w: %d != %d", ErrShapeMismatch, len(vj), len(diff))
	}
	vn := vj.Norm()
	if vn == 0 {
		return 0, fmt.Errorf("cannot compute angular offset with zero velocity: %w", ErrUndefinedAngle)
	}
	den := vn * dn
	if den == 0 {
		return 0, fmt.Errorf("angular offset: %w", ErrDivideByZero)
	}
	num, _ := Dot(vj, diff)

	// round-off can push the cosine slightly outside [-1, 1]
	c := math.Max(-1, math.Min(1, num/den))
	return math.Acos(c), nil
}

// Normalize returns the unit vector with the direction of v.
func Normalize(v Vector) (Vector, error) {
	n := v.Norm()
	if n == 0 {
		return nil, fmt.Errorf("normalize: %w", ErrUndefinedNormalization)
	}
	return Scale(v, 1/n), nil
}

// Truncate clamps the length of v to max while preserving its direction.
// v is returned as is when its length does not exceed max.
func Truncate(v Vector, max float64) (Vector, error) {
	if max < 0 {
		return nil, fmt.Errorf("truncate: %w: negative limit %g", ErrInvalidArgument, max)
	}
	if v.Norm() <= max {
		return v, nil
	}
	u, err := Normalize(v)
	if err != nil {
		return nil, err
	}
	return Scale(u, max), nil
}

// Equal reports whether a and b have the same dimension and components.
func Equal(a, b Vector) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// ApproxEqual reports whether a and b have the same dimension and
// differ by at most tol on every component.
func ApproxEqual(a, b Vector, tol float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if math.Abs(a[i]-b[i]) > tol {
			return false
		}
	}
	return true
}
