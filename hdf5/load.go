//go:build !nohdf5

package hdf5

import (
	"fmt"
	"io"

	"gonum.org/v1/hdf5"

	"github.com/PrincetonUniversity/boids"
)

// A slicer reads one row at a time from a dataset.
type slicer struct {
	dset   *hdf5.Dataset
	fspace *hdf5.Dataspace
	mspace *hdf5.Dataspace
	dims   []uint
}

func openSlicer(file *hdf5.File, name string) (_ *slicer, err error) {
	s := new(slicer)
	s.dset, err = file.OpenDataset(name)
	if err != nil {
		return nil, err
	}
	s.fspace = s.dset.Space()
	s.dims, _, err = s.fspace.SimpleExtentDims()
	if err != nil {
		checkClose(&err, s.fspace)
		checkClose(&err, s.dset)
		return nil, err
	}
	if len(s.dims) < 2 {
		checkClose(&err, s.fspace)
		checkClose(&err, s.dset)
		return nil, fmt.Errorf("loader: %s: expected at least 2 dimensions, got %d", name, len(s.dims))
	}

	s.mspace, err = hdf5.CreateSimpleDataspace(s.dims[1:], nil)
	if err != nil {
		checkClose(&err, s.fspace)
		checkClose(&err, s.dset)
		return nil, err
	}

	start := make([]uint, len(s.dims))
	count := make([]uint, len(s.dims))
	copy(count, s.dims)
	count[0] = 1
	if err := s.fspace.SelectHyperslab(start, nil, count, nil); err != nil {
		checkClose(&err, s)
		return nil, err
	}
	return s, nil
}

// read reads row i into the slice pointed to by ptr.
func (s *slicer) read(i uint, ptr interface{}) error {
	start := make([]uint, len(s.dims))
	start[0] = i
	if err := s.fspace.SetOffset(start); err != nil {
		return err
	}
	return s.dset.ReadSubset(ptr, s.mspace, s.fspace)
}

func (s *slicer) Close() error {
	if err := s.mspace.Close(); err != nil {
		return err
	}
	if err := s.fspace.Close(); err != nil {
		return err
	}
	return s.dset.Close()
}

// A Loader sequentially loads the ticks of a run from an HDF5 file.
type Loader struct {
	i    uint // index of current row
	n    uint // number of recorded rows
	loop bool // cycle when everything has already been loaded

	dim int

	// data buffers
	ids []int64
	pos []float64
	vel []float64

	file   *hdf5.File
	idSet  *slicer
	posSet *slicer
	velSet *slicer
}

// Open opens the HDF5 recording at path. With loop set, the loader starts
// again from the initial state once every row has been read; otherwise
// Next returns io.EOF.
func Open(path string, loop bool) (_ *Loader, err error) {
	l := &Loader{loop: loop}
	l.file, err = hdf5.OpenFile(path, hdf5.F_ACC_RDONLY)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			checkClose(&err, l)
		}
	}()

	if l.idSet, err = openSlicer(l.file, "ids"); err != nil {
		return nil, err
	}
	if l.posSet, err = openSlicer(l.file, "positions"); err != nil {
		return nil, err
	}
	if l.velSet, err = openSlicer(l.file, "velocities"); err != nil {
		return nil, err
	}
	if len(l.posSet.dims) != 3 || fmt.Sprint(l.posSet.dims) != fmt.Sprint(l.velSet.dims) ||
		l.posSet.dims[0] != l.idSet.dims[0] || l.posSet.dims[1] != l.idSet.dims[1] {
		return nil, fmt.Errorf("loader: %s: inconsistent datasets", path)
	}

	rows, size := l.idSet.dims[0], l.idSet.dims[1]
	l.dim = int(l.posSet.dims[2])
	l.n = rows
	if n, err := recorded(l.file); err == nil && uint(n) < rows {
		l.n = uint(n)
	}

	l.ids = make([]int64, size)
	l.pos = make([]float64, size*uint(l.dim))
	l.vel = make([]float64, size*uint(l.dim))
	return l, nil
}

// recorded returns the number of rows actually written, as stored on the
// "config" dataset when the recorder was closed.
func recorded(file *hdf5.File) (n int64, err error) {
	dset, err := file.OpenDataset("config")
	if err != nil {
		return 0, err
	}
	defer checkClose(&err, dset)

	attr, err := dset.OpenAttribute("Recorded")
	if err != nil {
		return 0, err
	}
	defer checkClose(&err, attr)

	dtype, err := hdf5.NewDatatypeFromValue(n)
	if err != nil {
		return 0, err
	}
	defer checkClose(&err, dtype)

	err = attr.Read(&n, dtype)
	return n, err
}

// Len returns the number of recorded ticks, including the initial state.
func (l *Loader) Len() int {
	return int(l.n)
}

// Next loads the next recorded tick.
func (l *Loader) Next() (int, []boids.StepOutput, error) {
	if l.i >= l.n {
		if !l.loop || l.n == 0 {
			return 0, nil, io.EOF
		}
		l.i = 0
	}
	tick := l.i
	l.i++

	if err := l.idSet.read(tick, &l.ids); err != nil {
		return 0, nil, err
	}
	if err := l.posSet.read(tick, &l.pos); err != nil {
		return 0, nil, err
	}
	if err := l.velSet.read(tick, &l.vel); err != nil {
		return 0, nil, err
	}

	outs := make([]boids.StepOutput, len(l.ids))
	for i, id := range l.ids {
		outs[i] = boids.StepOutput{
			ID:       boids.AgentID(id),
			Position: boids.Vec(l.pos[i*l.dim : (i+1)*l.dim]...),
			Velocity: boids.Vec(l.vel[i*l.dim : (i+1)*l.dim]...),
		}
	}
	return int(tick), outs, nil
}

// Close closes the file.
func (l *Loader) Close() (err error) {
	defer checkClose(&err, l.file)
	for _, s := range []*slicer{l.idSet, l.posSet, l.velSet} {
		if s != nil {
			defer checkClose(&err, s)
		}
	}
	return nil
}
