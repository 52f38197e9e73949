package boids

// SelectAction integrates the weighted sum of the drives into the next
// state of a boid. The net force is clamped to MaxForce, the resulting
// velocity to MaxVelocity, and the boid moves by one tick at that velocity.
// self is not modified.
func SelectAction(drives [NumDrives]Vector, self State) (State, error) {
	next, err := selectAction(drives, self)
	if err != nil {
		return State{}, &StepError{ID: self.ID, Op: "act", Err: err}
	}
	return next, nil
}

func selectAction(drives [NumDrives]Vector, self State) (State, error) {
	force := Zero(self.Dim())
	for _, d := range Drives {
		var err error
		if force, err = Add(force, Scale(drives[d], self.Weights[d])); err != nil {
			return State{}, err
		}
	}
	force, err := Truncate(force, self.MaxForce)
	if err != nil {
		return State{}, err
	}

	acc, err := Divide(force, self.Mass)
	if err != nil {
		return State{}, err
	}
	vel, err := Add(self.Velocity, acc)
	if err != nil {
		return State{}, err
	}
	if vel, err = Truncate(vel, self.MaxVelocity); err != nil {
		return State{}, err
	}

	// one tick lasts one time unit of the velocity
	pos, err := Add(self.Position, vel)
	if err != nil {
		return State{}, err
	}
	return self.with(pos, vel), nil
}
