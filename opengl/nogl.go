//go:build nogl

package opengl

import (
	"fmt"
	"os"

	"github.com/PrincetonUniversity/boids"
)

// Run returns an error explaining that OpenGL support is disabled.
func Run(outs []boids.StepOutput, conf *Config) error {
	return fmt.Errorf("%s was built without OpenGL support", os.Args[0])
}
