package boids

import "fmt"

// A Snapshot is the frozen view of every boid's position and velocity
// shared by all boids during one tick. It must not be modified once built.
type Snapshot struct {
	ids []AgentID
	kin map[AgentID]Kinematics
	dim int
}

// NewSnapshot builds a snapshot from the outputs of the previous tick
// (or from the initial states). Iteration order follows outs.
func NewSnapshot(outs []StepOutput) (*Snapshot, error) {
	s := &Snapshot{
		ids: make([]AgentID, 0, len(outs)),
		kin: make(map[AgentID]Kinematics, len(outs)),
	}
	for i, o := range outs {
		if _, ok := s.kin[o.ID]; ok {
			return nil, fmt.Errorf("snapshot: %w: %d", ErrDuplicateAgent, o.ID)
		}
		if i == 0 {
			s.dim = len(o.Position)
		}
		if len(o.Position) != s.dim || len(o.Velocity) != s.dim {
			return nil, fmt.Errorf("snapshot: boid %d: %w", o.ID, ErrShapeMismatch)
		}
		s.ids = append(s.ids, o.ID)
		s.kin[o.ID] = Kinematics{Position: o.Position, Velocity: o.Velocity}
	}
	return s, nil
}

// Len returns the number of boids in the snapshot.
func (s *Snapshot) Len() int {
	return len(s.ids)
}

// Dim returns the dimension of the vectors in the snapshot, 0 if empty.
func (s *Snapshot) Dim() int {
	return s.dim
}

// IDs returns the ids of all boids in iteration order.
func (s *Snapshot) IDs() []AgentID {
	out := make([]AgentID, len(s.ids))
	copy(out, s.ids)
	return out
}

// Kinematics returns the position and velocity of boid id.
func (s *Snapshot) Kinematics(id AgentID) (Kinematics, error) {
	k, ok := s.kin[id]
	if !ok {
		return Kinematics{}, fmt.Errorf("snapshot: %w: %d", ErrUnknownAgent, id)
	}
	return k, nil
}

// Position returns the position of boid id.
func (s *Snapshot) Position(id AgentID) (Vector, error) {
	k, err := s.Kinematics(id)
	return k.Position, err
}

// Velocity returns the velocity of boid id.
func (s *Snapshot) Velocity(id AgentID) (Vector, error) {
	k, err := s.Kinematics(id)
	return k.Velocity, err
}

// each calls f for every boid in iteration order.
func (s *Snapshot) each(f func(id AgentID, k Kinematics) error) error {
	for _, id := range s.ids {
		if err := f(id, s.kin[id]); err != nil {
			return err
		}
	}
	return nil
}
