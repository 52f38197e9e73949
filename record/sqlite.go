package record

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/PrincetonUniversity/boids"
)

// timeLayout has a fixed width so that creation times sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// A SQLiteWriter records the samples of a run into a SQLite database.
// Several runs may share a database; they are told apart by RunID.
type SQLiteWriter struct {
	db     *sql.DB
	meta   Meta
	insert *sql.Stmt
}

func openDB(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)
	return db, nil
}

func initPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA foreign_keys=ON;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			run_id TEXT PRIMARY KEY,
			seed TEXT NOT NULL,
			dim INTEGER NOT NULL,
			flock_size INTEGER NOT NULL,
			steps INTEGER NOT NULL,
			created TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS samples (
			run_id TEXT NOT NULL REFERENCES runs(run_id),
			tick INTEGER NOT NULL,
			boid_id INTEGER NOT NULL,
			position TEXT NOT NULL,
			velocity TEXT NOT NULL,
			PRIMARY KEY (run_id, tick, boid_id)
		);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

// CreateSQLite opens (creating if needed) the database at path and
// registers a new run described by meta.
func CreateSQLite(path string, meta Meta) (*SQLiteWriter, error) {
	if meta.RunID == "" {
		return nil, errors.New("record: empty run id")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := openDB(path)
	if err != nil {
		return nil, err
	}
	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	// the seed is a uint64 and may not fit a signed INTEGER
	_, err = db.Exec(`INSERT INTO runs(run_id, seed, dim, flock_size, steps, created) VALUES(?,?,?,?,?,?)`,
		meta.RunID, fmt.Sprint(meta.Seed), meta.Dim, meta.FlockSize, meta.Steps,
		meta.Created.UTC().Format(timeLayout))
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("record: registering run %s: %w", meta.RunID, err)
	}

	insert, err := db.Prepare(`INSERT INTO samples(run_id, tick, boid_id, position, velocity) VALUES(?,?,?,?,?)`)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return &SQLiteWriter{db: db, meta: meta, insert: insert}, nil
}

// Record writes the samples of one tick in a single transaction.
func (w *SQLiteWriter) Record(tick int, outs []boids.StepOutput) error {
	tx, err := w.db.Begin()
	if err != nil {
		return err
	}
	stmt := tx.Stmt(w.insert)
	for _, o := range outs {
		if len(o.Position) != w.meta.Dim || len(o.Velocity) != w.meta.Dim {
			_ = tx.Rollback()
			return fmt.Errorf("record: boid %d: %w", o.ID, boids.ErrShapeMismatch)
		}
		pos, err := json.Marshal(o.Position)
		if err != nil {
			_ = tx.Rollback()
			return err
		}
		vel, err := json.Marshal(o.Velocity)
		if err != nil {
			_ = tx.Rollback()
			return err
		}
		if _, err := stmt.Exec(w.meta.RunID, tick, int64(o.ID), string(pos), string(vel)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("record: tick %d boid %d: %w", tick, o.ID, err)
		}
	}
	return tx.Commit()
}

// Close closes the database.
func (w *SQLiteWriter) Close() (err error) {
	defer checkClose(&err, w.db)
	return w.insert.Close()
}

// A SQLiteReader reads one run back from a database.
type SQLiteReader struct {
	db   *sql.DB
	meta Meta
	tick int // last tick returned
}

// OpenSQLite opens run runID of the database at path.
// An empty runID selects the latest run.
func OpenSQLite(path, runID string) (*SQLiteReader, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}
	db, err := openDB(path)
	if err != nil {
		return nil, err
	}
	var (
		m       Meta
		seed    string
		created string
	)
	row := db.QueryRow(`SELECT run_id, seed, dim, flock_size, steps, created FROM runs
		WHERE run_id = ? OR ? = '' ORDER BY created DESC, rowid DESC LIMIT 1`, runID, runID)
	if err := row.Scan(&m.RunID, &seed, &m.Dim, &m.FlockSize, &m.Steps, &created); err != nil {
		_ = db.Close()
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: no run %q", path, runID)
		}
		return nil, err
	}
	if _, err := fmt.Sscan(seed, &m.Seed); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: bad seed %q: %w", path, seed, err)
	}
	if m.Created, err = time.Parse(timeLayout, created); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &SQLiteReader{db: db, meta: m, tick: -1}, nil
}

// Meta returns the description of the run being read.
func (r *SQLiteReader) Meta() Meta {
	return r.meta
}

// Next returns the samples of the next recorded tick.
func (r *SQLiteReader) Next() (_ int, _ []boids.StepOutput, err error) {
	var tick int
	row := r.db.QueryRow(`SELECT tick FROM samples WHERE run_id = ? AND tick > ? ORDER BY tick LIMIT 1`,
		r.meta.RunID, r.tick)
	if err := row.Scan(&tick); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil, io.EOF
		}
		return 0, nil, err
	}

	rows, err := r.db.Query(`SELECT boid_id, position, velocity FROM samples
		WHERE run_id = ? AND tick = ? ORDER BY boid_id`, r.meta.RunID, tick)
	if err != nil {
		return 0, nil, err
	}
	defer checkClose(&err, rows)

	var outs []boids.StepOutput
	for rows.Next() {
		var (
			id       int64
			pos, vel string
			o        boids.StepOutput
		)
		if err := rows.Scan(&id, &pos, &vel); err != nil {
			return 0, nil, err
		}
		o.ID = boids.AgentID(id)
		if err := json.Unmarshal([]byte(pos), &o.Position); err != nil {
			return 0, nil, fmt.Errorf("record: boid %d position: %w", id, err)
		}
		if err := json.Unmarshal([]byte(vel), &o.Velocity); err != nil {
			return 0, nil, fmt.Errorf("record: boid %d velocity: %w", id, err)
		}
		outs = append(outs, o)
	}
	if err := rows.Err(); err != nil {
		return 0, nil, err
	}
	r.tick = tick
	return tick, outs, nil
}

// Close closes the database.
func (r *SQLiteReader) Close() error {
	return r.db.Close()
}
