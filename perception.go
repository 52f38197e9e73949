package boids

// Perceive returns the boids of snap that self can see for drive d:
// every other boid strictly closer than the perception distance of d and
// strictly inside the field of view of d around self's heading.
// A boid with zero velocity has no heading and cannot perceive anything.
func Perceive(snap *Snapshot, self State, d Drive) (Neighborhood, error) {
	maxDist, fov := self.PerceptionDistance[d], self.FieldOfView[d]
	n := Neighborhood{Info: make(map[AgentID]Kinematics)}
	err := snap.each(func(id AgentID, k Kinematics) error {
		// skip self
		if id == self.ID {
			return nil
		}
		dist, err := Distance(k.Position, self.Position)
		if err != nil {
			return err
		}
		a, err := AngularOffset(k.Position, self.Position, self.Velocity)
		if err != nil {
			return err
		}
		if dist < maxDist && a < fov {
			n.IDs = append(n.IDs, id)
			n.Info[id] = k
		}
		return nil
	})
	if err != nil {
		return Neighborhood{}, &StepError{ID: self.ID, Drive: d, Op: "perceive", Err: err}
	}
	return n, nil
}

// PerceiveAll computes the neighborhood of self for every drive.
func PerceiveAll(snap *Snapshot, self State) ([NumDrives]Neighborhood, error) {
	var hoods [NumDrives]Neighborhood
	for _, d := range Drives {
		n, err := Perceive(snap, self, d)
		if err != nil {
			return hoods, err
		}
		hoods[d] = n
	}
	return hoods, nil
}
