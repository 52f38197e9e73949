package boids

// A DriveFunc maps the neighborhood of a boid to a steering vector.
// It returns the zero vector when the neighborhood is empty.
type DriveFunc func(n Neighborhood, self State) (Vector, error)

// DriveFuncs maps each drive to its steering function.
var DriveFuncs = [NumDrives]DriveFunc{
	Separation: SeparationDrive,
	Alignment:  AlignmentDrive,
	Cohesion:   CohesionDrive,
}

// SeparationDrive steers away from neighbors, each weighted by the inverse
// square of its distance so that the closest ones dominate.
// The result is a unit vector, or zero if the repulsions cancel out.
func SeparationDrive(n Neighborhood, self State) (Vector, error) {
	sum := Zero(self.Dim())
	for _, id := range n.IDs {
		dir, err := Sub(self.Position, n.Info[id].Position)
		if err != nil {
			return nil, err
		}
		d := dir.Norm()
		c, err := Divide(dir, d*d)
		if err != nil {
			return nil, err
		}
		if sum, err = Add(sum, c); err != nil {
			return nil, err
		}
	}
	if sum.Norm() == 0 {
		return Zero(self.Dim()), nil
	}
	return Normalize(sum)
}

// AlignmentDrive steers toward the mean velocity of neighbors.
func AlignmentDrive(n Neighborhood, self State) (Vector, error) {
	return towardMean(n, self.Velocity, func(k Kinematics) Vector { return k.Velocity })
}

// CohesionDrive steers toward the mean position of neighbors.
func CohesionDrive(n Neighborhood, self State) (Vector, error) {
	return towardMean(n, self.Position, func(k Kinematics) Vector { return k.Position })
}

// towardMean returns the unit vector from own to the mean of field over
// the neighborhood. It is zero when the neighborhood is empty or when own
// already equals the mean.
func towardMean(n Neighborhood, own Vector, field func(Kinematics) Vector) (Vector, error) {
	if n.Empty() {
		return Zero(len(own)), nil
	}
	sum := Zero(len(own))
	for _, id := range n.IDs {
		var err error
		if sum, err = Add(sum, field(n.Info[id])); err != nil {
			return nil, err
		}
	}
	mean, err := Divide(sum, float64(n.Len()))
	if err != nil {
		return nil, err
	}
	diff, err := Sub(mean, own)
	if err != nil {
		return nil, err
	}
	if diff.IsZero() {
		return Zero(len(own)), nil
	}
	return Normalize(diff)
}

// DriveAll computes the steering vector of every drive, each from the
// neighborhood perceived for that drive.
func DriveAll(hoods [NumDrives]Neighborhood, self State) ([NumDrives]Vector, error) {
	var out [NumDrives]Vector
	for _, d := range Drives {
		v, err := DriveFuncs[d](hoods[d], self)
		if err != nil {
			return out, &StepError{ID: self.ID, Drive: d, Op: "drive", Err: err}
		}
		out[d] = v
	}
	return out, nil
}
