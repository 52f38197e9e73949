//go:build nohdf5

package hdf5

import (
	"fmt"
	"os"

	"github.com/PrincetonUniversity/boids"
	"github.com/PrincetonUniversity/boids/record"
)

// Create returns an error explaining that HDF5 support is disabled.
func Create(path string, meta record.Meta) (boids.Recorder, error) {
	return nil, fmt.Errorf("%s was built without HDF5 support", os.Args[0])
}

// A Loader is never returned when HDF5 support is disabled.
type Loader struct{}

// Open returns an error explaining that HDF5 support is disabled.
func Open(path string, loop bool) (*Loader, error) {
	return nil, fmt.Errorf("%s was built without HDF5 support", os.Args[0])
}

func (l *Loader) Len() int { return 0 }

func (l *Loader) Next() (int, []boids.StepOutput, error) {
	return 0, nil, fmt.Errorf("%s was built without HDF5 support", os.Args[0])
}

func (l *Loader) Close() error { return nil }
