package boids

// A Boid is an autonomous agent that perceives its neighbors, computes one
// steering vector per drive and integrates them into its next state.
type Boid struct {
	state State
}

// NewBoid returns a boid with the given initial state.
func NewBoid(s State) (*Boid, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &Boid{state: s}, nil
}

// ID returns the id of the boid.
func (b *Boid) ID() AgentID {
	return b.state.ID
}

// State returns the current state of the boid.
func (b *Boid) State() State {
	return b.state
}

// Step runs one tick for the boid against snap and replaces its state.
// All neighbor data comes from snap; on error the state is left unchanged.
func (b *Boid) Step(snap *Snapshot) (StepOutput, error) {
	next, err := b.next(snap)
	if err != nil {
		return StepOutput{}, err
	}
	b.state = next
	return next.Output(), nil
}

// next computes the state of the boid after one tick without committing it.
func (b *Boid) next(snap *Snapshot) (State, error) {
	hoods, err := PerceiveAll(snap, b.state)
	if err != nil {
		return State{}, err
	}
	drives, err := DriveAll(hoods, b.state)
	if err != nil {
		return State{}, err
	}
	return SelectAction(drives, b.state)
}
