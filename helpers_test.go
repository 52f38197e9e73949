package boids

import "math"

// newState returns a boid state with generous perception and limits.
func newState(id AgentID, pos, vel Vector) State {
	return State{
		ID:                 id,
		Position:           pos,
		Velocity:           vel,
		PerceptionDistance: Uniform(10),
		FieldOfView:        Uniform(math.Pi + 0.1),
		Weights:            Uniform(1),
		Mass:               1,
		MaxVelocity:        5,
		MaxForce:           10,
	}
}

func snapshotOf(states ...State) *Snapshot {
	outs := make([]StepOutput, len(states))
	for i, s := range states {
		outs[i] = s.Output()
	}
	snap, err := NewSnapshot(outs)
	if err != nil {
		panic(err)
	}
	return snap
}

func hood(ks map[AgentID]Kinematics, ids ...AgentID) Neighborhood {
	n := Neighborhood{Info: map[AgentID]Kinematics{}}
	for _, id := range ids {
		n.IDs = append(n.IDs, id)
		n.Info[id] = ks[id]
	}
	return n
}
