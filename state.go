package boids

import "fmt"

// An AgentID identifies a boid within a flock.
type AgentID int64

// A Drive is one of the three steering tendencies of a boid.
type Drive int

// The drives. The set is closed.
const (
	Separation Drive = iota
	Alignment
	Cohesion

	NumDrives = 3
)

// Drives lists all drives in order.
var Drives = [NumDrives]Drive{Separation, Alignment, Cohesion}

func (d Drive) String() string {
	switch d {
	case Separation:
		return "separation"
	case Alignment:
		return "alignment"
	case Cohesion:
		return "cohesion"
	default:
		return fmt.Sprintf("drive(%d)", int(d))
	}
}

// PerDrive holds one parameter per drive, indexed by Drive.
type PerDrive [NumDrives]float64

// Uniform returns a PerDrive with the same value for every drive.
func Uniform(x float64) PerDrive {
	return PerDrive{x, x, x}
}

// Kinematics is the position and velocity of a boid at some tick.
type Kinematics struct {
	Position Vector
	Velocity Vector
}

// A StepOutput is the externally visible result of a boid's tick.
type StepOutput struct {
	ID       AgentID
	Position Vector
	Velocity Vector
}

// State contains the full internal state of a boid.
// A State is replaced, never modified, once per tick.
type State struct {
	ID       AgentID
	Position Vector
	Velocity Vector

	PerceptionDistance PerDrive // unit: length
	FieldOfView        PerDrive // unit: rad
	Weights            PerDrive // unit: 1

	Mass        float64 // unit: mass, must not be 0
	MaxVelocity float64 // unit: length/tick
	MaxForce    float64 // unit: mass*length/tick²
}

// Dim returns the dimension of the space the boid lives in.
func (s State) Dim() int {
	return len(s.Position)
}

// Validate checks the parts of a state that would otherwise only fail
// in the middle of a tick.
func (s State) Validate() error {
	if len(s.Position) == 0 {
		return fmt.Errorf("boid %d: %w: empty position", s.ID, ErrInvalidArgument)
	}
	if len(s.Velocity) != len(s.Position) {
		return fmt.Errorf("boid %d: %w: position has %d components, velocity %d",
			s.ID, ErrShapeMismatch, len(s.Position), len(s.Velocity))
	}
	if s.Mass == 0 {
		return fmt.Errorf("boid %d: %w: zero mass", s.ID, ErrInvalidArgument)
	}
	if s.MaxVelocity < 0 || s.MaxForce < 0 {
		return fmt.Errorf("boid %d: %w: negative velocity or force limit", s.ID, ErrInvalidArgument)
	}
	return nil
}

// Output returns the id, position and velocity of s.
func (s State) Output() StepOutput {
	return StepOutput{ID: s.ID, Position: s.Position, Velocity: s.Velocity}
}

// with returns a copy of s moved to a new position and velocity.
func (s State) with(pos, vel Vector) State {
	s.Position = pos
	s.Velocity = vel
	return s
}

// A Neighborhood is the set of boids perceived by one boid for one drive,
// with their position and velocity at the current tick.
// Every id in IDs has an entry in Info and vice versa.
type Neighborhood struct {
	IDs  []AgentID
	Info map[AgentID]Kinematics
}

// Len returns the number of neighbors.
func (n Neighborhood) Len() int {
	return len(n.IDs)
}

// Empty reports whether n contains no neighbor.
func (n Neighborhood) Empty() bool {
	return len(n.IDs) == 0
}
