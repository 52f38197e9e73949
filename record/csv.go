package record

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/klauspost/compress/zstd"

	"github.com/PrincetonUniversity/boids"
)

// axis returns the name of component i: x, y, z, then 3, 4...
func axis(i int) string {
	if i < 3 {
		return string("xyz"[i])
	}
	return strconv.Itoa(i)
}

// Header returns the CSV header for vectors of dimension dim.
func Header(dim int) []string {
	h := []string{"time", "boid_id"}
	for _, prefix := range []string{"pos_", "vel_"} {
		for i := 0; i < dim; i++ {
			h = append(h, prefix+axis(i))
		}
	}
	return h
}

// A CSVWriter records one row per boid per tick.
type CSVWriter struct {
	dim int
	row []string

	f   *os.File
	enc *zstd.Encoder
	buf *bufio.Writer
	w   *csv.Writer
}

// CreateCSV creates the CSV file at path, zstd compressed if path ends
// with .zst, and writes the header.
func CreateCSV(path string, dim int) (*CSVWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	cw := &CSVWriter{dim: dim, f: f}
	var w io.Writer = f
	if strings.HasSuffix(strings.ToLower(path), ".zst") {
		cw.enc, err = zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedDefault))
		if err != nil {
			_ = f.Close()
			return nil, err
		}
		w = cw.enc
	}
	cw.buf = bufio.NewWriterSize(w, 128*1024)
	cw.w = csv.NewWriter(cw.buf)
	cw.row = make([]string, 2+2*dim)
	if err := cw.w.Write(Header(dim)); err != nil {
		_ = cw.Close()
		return nil, err
	}
	return cw, nil
}

// Record writes the samples of one tick.
func (cw *CSVWriter) Record(tick int, outs []boids.StepOutput) error {
	for _, o := range outs {
		if len(o.Position) != cw.dim || len(o.Velocity) != cw.dim {
			return fmt.Errorf("record: boid %d: %w", o.ID, boids.ErrShapeMismatch)
		}
		cw.row[0] = strconv.Itoa(tick)
		cw.row[1] = strconv.FormatInt(int64(o.ID), 10)
		for i := 0; i < cw.dim; i++ {
			cw.row[2+i] = strconv.FormatFloat(o.Position[i], 'g', -1, 64)
			cw.row[2+cw.dim+i] = strconv.FormatFloat(o.Velocity[i], 'g', -1, 64)
		}
		if err := cw.w.Write(cw.row); err != nil {
			return err
		}
	}
	cw.w.Flush()
	return cw.w.Error()
}

// Close flushes and closes the file.
func (cw *CSVWriter) Close() (err error) {
	defer checkClose(&err, cw.f)
	cw.w.Flush()
	if err := cw.w.Error(); err != nil {
		return err
	}
	if err := cw.buf.Flush(); err != nil {
		return err
	}
	if cw.enc != nil {
		return cw.enc.Close()
	}
	return nil
}

// A CSVReader reads back a file written by a CSVWriter.
type CSVReader struct {
	dim  int
	f    *os.File
	dec  *zstd.Decoder
	r    *csv.Reader
	next []string // first row of the next tick
}

// OpenCSV opens a CSV recording, zstd compressed if path ends with .zst.
func OpenCSV(path string) (*CSVReader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	cr := &CSVReader{f: f}
	var r io.Reader = bufio.NewReader(f)
	if strings.HasSuffix(strings.ToLower(path), ".zst") {
		if cr.dec, err = zstd.NewReader(r); err != nil {
			_ = f.Close()
			return nil, err
		}
		r = cr.dec
	}
	cr.r = csv.NewReader(r)
	cr.r.ReuseRecord = false

	header, err := cr.r.Read()
	if err != nil {
		_ = cr.Close()
		return nil, fmt.Errorf("%s: reading header: %w", path, err)
	}
	if len(header) < 4 || len(header)%2 != 0 || header[0] != "time" || header[1] != "boid_id" {
		_ = cr.Close()
		return nil, fmt.Errorf("%s: not a boids recording", path)
	}
	cr.dim = (len(header) - 2) / 2
	return cr, nil
}

// Dim returns the dimension of the recorded vectors.
func (cr *CSVReader) Dim() int {
	return cr.dim
}

// Next returns the samples of the next tick.
func (cr *CSVReader) Next() (int, []boids.StepOutput, error) {
	row := cr.next
	cr.next = nil
	if row == nil {
		var err error
		if row, err = cr.r.Read(); err != nil {
			return 0, nil, err
		}
	}
	tick, o, err := cr.parse(row)
	if err != nil {
		return 0, nil, err
	}
	outs := []boids.StepOutput{o}
	for {
		row, err := cr.r.Read()
		if err == io.EOF {
			return tick, outs, nil
		}
		if err != nil {
			return 0, nil, err
		}
		t, o, err := cr.parse(row)
		if err != nil {
			return 0, nil, err
		}
		if t != tick {
			cr.next = row
			return tick, outs, nil
		}
		outs = append(outs, o)
	}
}

func (cr *CSVReader) parse(row []string) (int, boids.StepOutput, error) {
	var o boids.StepOutput
	tick, err := strconv.Atoi(row[0])
	if err != nil {
		return 0, o, fmt.Errorf("record: bad time %q: %w", row[0], err)
	}
	id, err := strconv.ParseInt(row[1], 10, 64)
	if err != nil {
		return 0, o, fmt.Errorf("record: bad boid id %q: %w", row[1], err)
	}
	o.ID = boids.AgentID(id)
	o.Position, o.Velocity = boids.Zero(cr.dim), boids.Zero(cr.dim)
	for i := 0; i < cr.dim; i++ {
		if o.Position[i], err = strconv.ParseFloat(row[2+i], 64); err != nil {
			return 0, o, fmt.Errorf("record: boid %d: %w", id, err)
		}
		if o.Velocity[i], err = strconv.ParseFloat(row[2+cr.dim+i], 64); err != nil {
			return 0, o, fmt.Errorf("record: boid %d: %w", id, err)
		}
	}
	return tick, o, nil
}

// Close closes the file.
func (cr *CSVReader) Close() error {
	if cr.dec != nil {
		cr.dec.Close()
	}
	return cr.f.Close()
}
