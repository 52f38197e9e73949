// Package opengl shows a running flock in an OpenGL window.
//
// Boids are drawn as triangles pointing along their velocity, projected
// on the first two axes. Space pauses, the right arrow advances a single
// tick, Tab and Shift+Tab cycle the highlighted boid, the scroll wheel
// zooms, R resets the viewport and Escape quits.
package opengl

import "github.com/PrincetonUniversity/boids"

// Config holds the parameters of the OpenGL driver.
type Config struct {
	MaxFlockSize int  // maximum flock size
	ForcePause   bool // step manually only?

	// Step goes to the next tick and returns the outputs to draw.
	Step func() ([]boids.StepOutput, error)

	// bounds of default viewport
	Xmin float64
	Ymin float64
	Xmax float64
	Ymax float64
}
