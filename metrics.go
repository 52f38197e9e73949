package boids

import "math"

// Metrics summarizes the collective state of a flock at one tick.
type Metrics struct {
	// Polarization is the length of the mean unit heading:
	// 1 when all boids move in the same direction, close to 0 when disordered.
	// Boids with zero velocity have no heading and are ignored.
	Polarization float64

	Centroid Vector // mean position
	Min      Vector // lower corner of the bounding box
	Max      Vector // upper corner of the bounding box
}

// Measure computes the metrics of a set of outputs of the same dimension.
// It returns zero metrics for an empty set.
func Measure(outs []StepOutput) Metrics {
	var m Metrics
	if len(outs) == 0 {
		return m
	}
	dim := len(outs[0].Position)
	m.Centroid = Zero(dim)
	m.Min = Vec(outs[0].Position...)
	m.Max = Vec(outs[0].Position...)
	heading := Zero(dim)
	var moving int
	for _, o := range outs {
		for i, x := range o.Position {
			m.Centroid[i] += x
			m.Min[i] = math.Min(m.Min[i], x)
			m.Max[i] = math.Max(m.Max[i], x)
		}
		n := o.Velocity.Norm()
		if n == 0 {
			continue
		}
		moving++
		for i, v := range o.Velocity {
			heading[i] += v / n
		}
	}
	m.Centroid = Scale(m.Centroid, 1/float64(len(outs)))
	if moving > 0 {
		m.Polarization = Scale(heading, 1/float64(moving)).Norm()
	}
	return m
}
