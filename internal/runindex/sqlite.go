// Package runindex keeps a SQLite table of exported generation runs so
// earlier outputs can be found again by seed or parameter hash.
package runindex

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	_ "modernc.org/sqlite"

	"polyterrain/internal/export"
)

// ErrNotFound is returned by Get for an unknown run ID.
var ErrNotFound = errors.New("runindex: run not found")

// Run is one indexed export.
type Run struct {
	ID          int64
	Seed        int
	ParamsHash  string
	Digest      string
	Dir         string
	Vertices    int
	Triangles   int
	RoadPoints  int
	RiverPoints int
	House       bool
	Chunks      int
	RiverError  string
	RecordedAt  time.Time
	Instances   map[string]int
	Outputs     map[string]string
}

// Index is a SQLite-backed run index.
type Index struct {
	db *sql.DB
}

// Open opens or creates the index at path.
func Open(path string) (*Index, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Index{db: db}, nil
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
		`CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			seed INTEGER NOT NULL,
			params_hash TEXT NOT NULL,
			params_json TEXT NOT NULL,
			digest TEXT NOT NULL,
			dir TEXT NOT NULL,
			vertices INTEGER NOT NULL,
			triangles INTEGER NOT NULL,
			road_points INTEGER NOT NULL,
			river_points INTEGER NOT NULL,
			house INTEGER NOT NULL,
			chunks INTEGER NOT NULL,
			river_error TEXT,
			recorded_at TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_runs_params ON runs(params_hash, seed);`,
		`CREATE TABLE IF NOT EXISTS instance_counts (
			run_id INTEGER NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			kind TEXT NOT NULL,
			count INTEGER NOT NULL,
			PRIMARY KEY (run_id, kind)
		);`,
		`CREATE TABLE IF NOT EXISTS outputs (
			run_id INTEGER NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			name TEXT NOT NULL,
			path TEXT NOT NULL,
			PRIMARY KEY (run_id, name)
		);`,
		`INSERT OR REPLACE INTO meta(key,value) VALUES('schema_version','1');`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

// Close closes the database.
func (ix *Index) Close() error {
	if ix == nil {
		return nil
	}
	return ix.db.Close()
}

// Record stores an exported run whose files live in dir and returns the
// new run ID.
func (ix *Index) Record(ctx context.Context, m *export.Manifest, dir string) (int64, error) {
	now := time.Now().UTC().Format(time.RFC3339Nano)

	tx, err := ix.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	s := m.Summary
	res, err := tx.ExecContext(ctx,
		`INSERT INTO runs(seed,params_hash,params_json,digest,dir,vertices,triangles,road_points,river_points,house,chunks,river_error,recorded_at)
		VALUES(?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		m.Seed, m.ParamsHash, string(m.Params), m.Digest, dir,
		s.Vertices, s.Triangles, s.RoadPoints, s.RiverPoints, s.House, s.Chunks,
		nullString(m.RiverError), now)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	kinds := make([]string, 0, len(s.Instances))
	for k := range s.Instances {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	for _, k := range kinds {
		if _, err := tx.ExecContext(ctx, `INSERT INTO instance_counts(run_id,kind,count) VALUES(?,?,?)`, id, k, s.Instances[k]); err != nil {
			return 0, err
		}
	}

	files := map[string]string{
		"manifest":  m.Files.Manifest,
		"instances": m.Files.Instances,
		"meshes":    m.Files.Meshes,
		"heightmap": m.Files.Heightmap,
		"map":       m.Files.Map,
	}
	for name, rel := range files {
		if rel == "" {
			continue
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO outputs(run_id,name,path) VALUES(?,?,?)`, id, name, filepath.Join(dir, rel)); err != nil {
			return 0, err
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return id, nil
}

const selectRun = `SELECT id,seed,params_hash,digest,dir,vertices,triangles,road_points,river_points,house,chunks,river_error,recorded_at FROM runs`

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (Run, error) {
	var (
		r        Run
		riverErr sql.NullString
		recorded string
	)
	err := row.Scan(&r.ID, &r.Seed, &r.ParamsHash, &r.Digest, &r.Dir,
		&r.Vertices, &r.Triangles, &r.RoadPoints, &r.RiverPoints, &r.House, &r.Chunks,
		&riverErr, &recorded)
	if err != nil {
		return Run{}, err
	}
	r.RiverError = riverErr.String
	if t, err := time.Parse(time.RFC3339Nano, recorded); err == nil {
		r.RecordedAt = t
	}
	return r, nil
}

// Get returns run id with its instance counts and outputs.
func (ix *Index) Get(ctx context.Context, id int64) (Run, error) {
	r, err := scanRun(ix.db.QueryRowContext(ctx, selectRun+` WHERE id=?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	if err != nil {
		return Run{}, err
	}
	if err := ix.loadDetails(ctx, &r); err != nil {
		return Run{}, err
	}
	return r, nil
}

func (ix *Index) loadDetails(ctx context.Context, r *Run) error {
	r.Instances = make(map[string]int)
	r.Outputs = make(map[string]string)

	rows, err := ix.db.QueryContext(ctx, `SELECT kind,count FROM instance_counts WHERE run_id=?`, r.ID)
	if err != nil {
		return err
	}
	for rows.Next() {
		var k string
		var n int
		if err := rows.Scan(&k, &n); err != nil {
			rows.Close()
			return err
		}
		r.Instances[k] = n
	}
	if err := rows.Close(); err != nil {
		return err
	}

	rows, err = ix.db.QueryContext(ctx, `SELECT name,path FROM outputs WHERE run_id=?`, r.ID)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var name, p string
		if err := rows.Scan(&name, &p); err != nil {
			return err
		}
		r.Outputs[name] = p
	}
	return rows.Err()
}

func (ix *Index) list(ctx context.Context, query string, args ...any) ([]Run, error) {
	rows, err := ix.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	var out []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		out = append(out, r)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	// one connection: details are loaded after the list cursor is closed
	for i := range out {
		if err := ix.loadDetails(ctx, &out[i]); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// FindByParams returns every run recorded with the given parameter hash,
// oldest first.
func (ix *Index) FindByParams(ctx context.Context, paramsHash string) ([]Run, error) {
	return ix.list(ctx, selectRun+` WHERE params_hash=? ORDER BY id`, paramsHash)
}

// FindBySeed returns every run recorded for seed, oldest first.
func (ix *Index) FindBySeed(ctx context.Context, seed int) ([]Run, error) {
	return ix.list(ctx, selectRun+` WHERE seed=? ORDER BY id`, seed)
}

// Recent returns up to limit runs, newest first.
func (ix *Index) Recent(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	return ix.list(ctx, selectRun+` ORDER BY id DESC LIMIT ?`, limit)
}

// Delete removes run id and its details.
func (ix *Index) Delete(ctx context.Context, id int64) error {
	res, err := ix.db.ExecContext(ctx, `DELETE FROM runs WHERE id=?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	return nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
