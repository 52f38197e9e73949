//go:build !nohdf5

// Package hdf5 records flock trajectories in HDF5 files and reads them back.
//
// A file holds one run: datasets "ids" [T, N], "positions" and "velocities"
// [T, N, D] and "polarization" [T], where row t is the state after tick t
// (row 0 is the initial state). A "config" dataset with a null dataspace
// carries the run metadata as attributes.
package hdf5

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"time"

	"gonum.org/v1/hdf5"

	"github.com/PrincetonUniversity/boids"
	"github.com/PrincetonUniversity/boids/record"
)

// A dataset stipulates how to extract data from the outputs of a tick
// and where to store them in the HDF5 file.
type dataset struct {
	// name of the dataset in the HDF5 file
	name string

	// val is a value of the same concrete type as the underlying type of the data.
	val interface{}

	// dims are the dimensions of the data for a single tick.
	dims []int

	// data returns a pointer to the row-major data of a tick.
	data func(outs []boids.StepOutput) interface{}

	dset   *hdf5.Dataset
	fspace *hdf5.Dataspace
	mspace *hdf5.Dataspace
}

// datasets returns the datasets recorded for a flock of n boids in dim dimensions.
func datasets(n, dim int) []*dataset {
	vectors := func(get func(boids.StepOutput) boids.Vector) func([]boids.StepOutput) interface{} {
		buf := make([]float64, n*dim)
		return func(outs []boids.StepOutput) interface{} {
			for i, o := range outs {
				copy(buf[i*dim:(i+1)*dim], get(o))
			}
			return &buf
		}
	}
	ids := make([]int64, n)
	var pol float64
	return []*dataset{
		{
			name: "ids",
			val:  int64(0),
			dims: []int{n},
			data: func(outs []boids.StepOutput) interface{} {
				for i, o := range outs {
					ids[i] = int64(o.ID)
				}
				return &ids
			},
		},
		{
			name: "positions",
			val:  float64(0),
			dims: []int{n, dim},
			data: vectors(func(o boids.StepOutput) boids.Vector { return o.Position }),
		},
		{
			name: "velocities",
			val:  float64(0),
			dims: []int{n, dim},
			data: vectors(func(o boids.StepOutput) boids.Vector { return o.Velocity }),
		},
		{
			name: "polarization",
			val:  float64(0),
			data: func(outs []boids.StepOutput) interface{} {
				pol = boids.Measure(outs).Polarization
				return &pol
			},
		},
	}
}

// A Recorder writes the outputs of every tick of a run to an HDF5 file.
type Recorder struct {
	meta     record.Meta
	rows     uint
	recorded int64 // number of rows written, counting from row 0

	file     *hdf5.File
	config   *hdf5.Dataset
	datasets []*dataset
}

// Create creates the HDF5 file at path for the run described by meta.
// The file has room for the initial state plus meta.Steps ticks.
func Create(path string, meta record.Meta) (boids.Recorder, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}

	file, err := hdf5.CreateFile(path, hdf5.F_ACC_TRUNC)
	if err != nil {
		return nil, err
	}
	r := &Recorder{meta: meta, rows: uint(meta.Steps + 1), file: file}

	if r.config, err = saveConfig(file, meta); err != nil {
		checkClose(&err, file)
		return nil, err
	}

	for _, d := range datasets(meta.FlockSize, meta.Dim) {
		if err := d.init(file, r.rows); err != nil {
			checkClose(&err, r)
			return nil, err
		}
		r.datasets = append(r.datasets, d)
	}
	return r, nil
}

// Record writes the outputs of tick in row tick of every dataset.
func (r *Recorder) Record(tick int, outs []boids.StepOutput) error {
	if tick < 0 || uint(tick) >= r.rows {
		return fmt.Errorf("hdf5: tick %d outside of [0, %d]", tick, r.rows-1)
	}
	if len(outs) != r.meta.FlockSize {
		return fmt.Errorf("hdf5: tick %d: %d boids, file holds %d", tick, len(outs), r.meta.FlockSize)
	}
	for _, o := range outs {
		if len(o.Position) != r.meta.Dim || len(o.Velocity) != r.meta.Dim {
			return fmt.Errorf("hdf5: boid %d: %w", o.ID, boids.ErrShapeMismatch)
		}
	}

	for _, d := range r.datasets {
		start := make([]uint, len(d.dims)+1)
		start[0] = uint(tick)
		if err := d.fspace.SetOffset(start); err != nil {
			return err
		}
		if err := d.dset.WriteSubset(d.data(outs), d.mspace, d.fspace); err != nil {
			return fmt.Errorf("hdf5: writing %s: %w", d.name, err)
		}
	}
	r.recorded = max(r.recorded, int64(tick)+1)
	return nil
}

// Close stores the number of recorded rows and closes the file.
func (r *Recorder) Close() (err error) {
	defer checkClose(&err, r.file)
	for _, d := range r.datasets {
		defer checkClose(&err, d)
	}
	defer checkClose(&err, r.config)
	return writeAttr(r.config, "Recorded", &r.recorded)
}

// attributes are the run metadata stored on the "config" dataset.
type attributes struct {
	Time      string
	RunID     string
	Seed      uint64
	Dim       int64
	FlockSize int64
	Steps     int64
}

// saveConfig creates a "config" dataset with a null dataspace whose attributes
// describe the run. The dataset is left open for Close to complete.
func saveConfig(file *hdf5.File, meta record.Meta) (_ *hdf5.Dataset, err error) {
	null, err := hdf5.CreateDataspace(hdf5.S_NULL)
	if err != nil {
		return nil, err
	}
	defer checkClose(&err, null)

	anytype, err := hdf5.NewDatatypeFromValue(int32(0))
	if err != nil {
		return nil, err
	}
	defer checkClose(&err, anytype)

	dset, err := file.CreateDataset("config", anytype, null)
	if err != nil {
		return nil, err
	}

	attrs := attributes{
		Time:      meta.Created.Format(time.RFC3339),
		RunID:     meta.RunID,
		Seed:      meta.Seed,
		Dim:       int64(meta.Dim),
		FlockSize: int64(meta.FlockSize),
		Steps:     int64(meta.Steps),
	}
	v := reflect.ValueOf(&attrs).Elem()
	for i := 0; i < v.NumField(); i++ {
		if err := writeAttr(dset, v.Type().Field(i).Name, v.Field(i).Addr().Interface()); err != nil {
			checkClose(&err, dset)
			return nil, err
		}
	}
	return dset, nil
}

// writeAttr attaches the scalar attribute name to dset. ptr points to its value.
func writeAttr(dset *hdf5.Dataset, name string, ptr interface{}) (err error) {
	dtype, err := hdf5.NewDatatypeFromValue(reflect.ValueOf(ptr).Elem().Interface())
	if err != nil {
		return err
	}
	defer checkClose(&err, dtype)

	scalar, err := hdf5.CreateDataspace(hdf5.S_SCALAR)
	if err != nil {
		return err
	}
	defer checkClose(&err, scalar)

	attr, err := dset.CreateAttribute(name, dtype, scalar)
	if err != nil {
		return err
	}
	defer checkClose(&err, attr)

	return attr.Write(ptr, dtype)
}

// init creates the dataset in file with room for rows ticks.
func (d *dataset) init(file *hdf5.File, rows uint) (err error) {
	dtype, err := hdf5.NewDatatypeFromValue(d.val)
	if err != nil {
		return err
	}
	defer checkClose(&err, dtype)

	udims := make([]uint, len(d.dims)+1)
	udims[0] = rows
	for i, n := range d.dims {
		udims[i+1] = uint(n)
	}

	d.fspace, err = hdf5.CreateSimpleDataspace(udims, nil)
	if err != nil {
		return err
	}

	start := make([]uint, len(udims))
	count := make([]uint, len(udims))
	copy(count, udims)
	count[0] = 1

	if err := d.fspace.SelectHyperslab(start, nil, count, nil); err != nil {
		checkClose(&err, d.fspace)
		return err
	}

	if len(d.dims) == 0 {
		d.mspace, err = hdf5.CreateDataspace(hdf5.S_SCALAR)
	} else {
		d.mspace, err = hdf5.CreateSimpleDataspace(udims[1:], nil)
	}
	if err != nil {
		checkClose(&err, d.fspace)
		return err
	}

	d.dset, err = file.CreateDataset(d.name, dtype, d.fspace)
	if err != nil {
		checkClose(&err, d.fspace)
		checkClose(&err, d.mspace)
	}
	return err
}

// Close closes the HDF5 dataset and dataspaces.
func (d *dataset) Close() error {
	if err := d.dset.Close(); err != nil {
		return err
	}
	if err := d.mspace.Close(); err != nil {
		return err
	}
	return d.fspace.Close()
}

// checkClose checks for errors in deferred calls.
func checkClose(err *error, c io.Closer) {
	if cerr := c.Close(); *err == nil {
		*err = cerr
	}
}
