// Package record stores the trajectories of a flock, one sample per boid
// per tick, and reads them back.
//
// The storage format is chosen from the file name:
//
//	.csv      plain CSV, one row per boid per tick
//	.csv.zst  the same, zstd compressed
//	.sqlite   SQLite database (also .db), several runs per file
package record

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/PrincetonUniversity/boids"
)

// ErrUnsupported is returned for file names with an unknown extension.
var ErrUnsupported = errors.New("record: unsupported file format")

// Meta describes a recorded run.
type Meta struct {
	RunID     string
	Seed      uint64
	Dim       int
	FlockSize int
	Steps     int
	Created   time.Time
}

// NewMeta returns the description of a new run with a fresh id.
func NewMeta(dim, flockSize, steps int, seed uint64) Meta {
	return Meta{
		RunID:     uuid.NewString(),
		Seed:      seed,
		Dim:       dim,
		FlockSize: flockSize,
		Steps:     steps,
		Created:   time.Now().UTC(),
	}
}

// A Reader reads a recording back one tick at a time.
type Reader interface {
	// Next returns the tick number and the samples of the next tick,
	// or io.EOF when the recording is exhausted.
	Next() (int, []boids.StepOutput, error)
	io.Closer
}

// Format returns the storage format for path: csv, csv.zst or sqlite.
func Format(path string) (string, error) {
	p := strings.ToLower(path)
	switch {
	case strings.HasSuffix(p, ".csv.zst"):
		return "csv.zst", nil
	case strings.HasSuffix(p, ".csv"):
		return "csv", nil
	case strings.HasSuffix(p, ".sqlite"), strings.HasSuffix(p, ".db"):
		return "sqlite", nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnsupported, path)
}

// Create opens a recorder for a new run at path.
func Create(path string, meta Meta) (boids.Recorder, error) {
	format, err := Format(path)
	if err != nil {
		return nil, err
	}
	switch format {
	case "sqlite":
		return CreateSQLite(path, meta)
	default:
		return CreateCSV(path, meta.Dim)
	}
}

// Open opens the recording at path for reading.
// For SQLite files the latest run is read.
func Open(path string) (Reader, error) {
	format, err := Format(path)
	if err != nil {
		return nil, err
	}
	switch format {
	case "sqlite":
		return OpenSQLite(path, "")
	default:
		return OpenCSV(path)
	}
}

// checkClose checks for errors in deferred calls.
func checkClose(err *error, c io.Closer) {
	if cerr := c.Close(); *err == nil {
		*err = cerr
	}
}
