package boids

import (
	"errors"
	"fmt"
	"strings"
)

// Errors reported by the vector kernel and the simulation core.
var (
	ErrShapeMismatch          = errors.New("vector dimension mismatch")
	ErrDivideByZero           = errors.New("division by zero")
	ErrUndefinedNormalization = errors.New("cannot normalize the zero vector")
	ErrUndefinedAngle         = errors.New("undefined angle")
	ErrInvalidArgument        = errors.New("invalid argument")
	ErrUnknownAgent           = errors.New("unknown agent")
	ErrDuplicateAgent         = errors.New("duplicate agent")
)

// A StepError records which agent, drive and operation failed during a step.
type StepError struct {
	ID    AgentID
	Drive Drive  // only meaningful for perception and drive failures
	Op    string // perceive, drive or act
	Err   error
}

func (e *StepError) Error() string {
	if e.Op == "act" {
		return fmt.Sprintf("boid %d: %s: %v", e.ID, e.Op, e.Err)
	}
	return fmt.Sprintf("boid %d: %s %s: %v", e.ID, e.Op, e.Drive, e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }

// A TickError is returned when at least one agent failed during a tick.
// No agent state was committed for that tick.
type TickError struct {
	Tick     int
	Failures []error
}

func (e *TickError) Error() string {
	msgs := make([]string, len(e.Failures))
	for i, err := range e.Failures {
		msgs[i] = err.Error()
	}
	return fmt.Sprintf("tick %d aborted (%d failed): %s", e.Tick, len(e.Failures), strings.Join(msgs, "; "))
}

func (e *TickError) Unwrap() []error { return e.Failures }
