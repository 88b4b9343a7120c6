// Package store keeps a SQLite registry of generated projects.
package store

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"stratforge/internal/logging"
	"stratforge/internal/params"
	"stratforge/internal/project"
)

// ErrNotFound is returned when no project matches a name or ID.
var ErrNotFound = errors.New("project not found")

// ProjectStore persists one row per generated project.
//
// Storage location: .stratforge/projects.db by default.
type ProjectStore struct {
	db     *sql.DB
	mu     sync.RWMutex
	dbPath string
}

// Record describes a generated project.
type Record struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	BaseName     string     `json:"base_name"`
	StrategyName string     `json:"strategy_name"`
	ClassName    string     `json:"class_name"`
	ImageName    string     `json:"image_name"`
	Description  string     `json:"description"`
	Path         string     `json:"path"`
	Params       params.Set `json:"params"`
	Digest       string     `json:"digest"`
	Warnings     []string   `json:"warnings"`
	CreatedAt    time.Time  `json:"created_at"`
}

// FromProject builds the record for p written to path. Path may be empty
// when the project was only bundled.
func FromProject(p *project.Project, path string) Record {
	return Record{
		ID:           p.RequestID,
		Name:         p.Name,
		BaseName:     p.Identity.BaseName,
		StrategyName: fmt.Sprint(p.Params["strategy_name"]),
		ClassName:    fmt.Sprint(p.Params["strategy_class_name"]),
		ImageName:    fmt.Sprint(p.Params["image_name"]),
		Description:  p.Description,
		Path:         path,
		Params:       p.Params.Clone(),
		Digest:       p.Digest.String(),
		Warnings:     p.WarningStrings(),
		CreatedAt:    p.CreatedAt,
	}
}

// NewProjectStore opens or creates the registry at dbPath.
func NewProjectStore(dbPath string) (*ProjectStore, error) {
	log := logging.Get(logging.CategoryStore)
	log.Debug("opening project store at %s", dbPath)

	if dbPath != ":memory:" {
		dir := filepath.Dir(dbPath)
		if err := os.MkdirAll(dir, 0755); err != nil {
			log.Error("failed to create store directory %s: %v", dir, err)
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		log.Error("failed to open project database at %s: %v", dbPath, err)
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// A single connection keeps ":memory:" databases coherent.
	db.SetMaxOpenConns(1)

	s := &ProjectStore{db: db, dbPath: dbPath}
	if err := s.initialize(); err != nil {
		log.Error("failed to initialize project schema: %v", err)
		db.Close()
		return nil, err
	}
	if _, err := RunMigrations(db); err != nil {
		log.Error("failed to migrate project schema: %v", err)
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *ProjectStore) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS projects (
		id TEXT PRIMARY KEY,
		name TEXT UNIQUE NOT NULL,
		base_name TEXT NOT NULL,
		strategy_name TEXT NOT NULL,
		class_name TEXT NOT NULL,
		image_name TEXT NOT NULL,
		description TEXT NOT NULL,
		path TEXT,
		params TEXT NOT NULL,
		digest TEXT NOT NULL,
		warnings TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_projects_created ON projects(created_at);
	CREATE INDEX IF NOT EXISTS idx_projects_base ON projects(base_name);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Record stores r, assigning an ID and timestamp when they are unset.
func (s *ProjectStore) Record(r Record) (Record, error) {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now()
	}
	if r.Warnings == nil {
		r.Warnings = []string{}
	}

	paramsJSON, err := json.Marshal(r.Params)
	if err != nil {
		return Record{}, fmt.Errorf("failed to encode params: %w", err)
	}
	warningsJSON, err := json.Marshal(r.Warnings)
	if err != nil {
		return Record{}, fmt.Errorf("failed to encode warnings: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err = s.db.Exec(`
		INSERT INTO projects
		(id, name, base_name, strategy_name, class_name, image_name, description,
		 path, params, digest, warnings, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.Name, r.BaseName, r.StrategyName, r.ClassName, r.ImageName, r.Description,
		r.Path, string(paramsJSON), r.Digest, string(warningsJSON),
		r.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		logging.Get(logging.CategoryStore).Error("failed to record project %s: %v", r.Name, err)
		return Record{}, fmt.Errorf("failed to record project %s: %w", r.Name, err)
	}

	logging.Get(logging.CategoryStore).Debug("recorded project %s (id=%s)", r.Name, r.ID)
	return r, nil
}

const selectColumns = `SELECT id, name, base_name, strategy_name, class_name, image_name,
	description, path, params, digest, warnings, created_at FROM projects`

// List returns up to limit projects, newest first. A limit of zero or less
// returns every project.
func (s *ProjectStore) List(limit int) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.Query(selectColumns+` ORDER BY created_at DESC, name LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Get returns the project whose name or ID is key.
func (s *ProjectStore) Get(key string) (Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRow(selectColumns+` WHERE name = ? OR id = ?`, key, key)
	r, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	return r, err
}

// Delete removes the project whose name or ID is key.
func (s *ProjectStore) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.Exec(`DELETE FROM projects WHERE name = ? OR id = ?`, key, key)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	logging.Get(logging.CategoryStore).Debug("deleted project %s", key)
	return nil
}

// Close closes the database connection.
func (s *ProjectStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db != nil {
		logging.Get(logging.CategoryStore).Debug("closing project store at %s", s.dbPath)
		return s.db.Close()
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (Record, error) {
	var (
		r                       Record
		path                    sql.NullString
		paramsJSON, warningJSON string
		createdAt               string
	)
	err := row.Scan(&r.ID, &r.Name, &r.BaseName, &r.StrategyName, &r.ClassName, &r.ImageName,
		&r.Description, &path, &paramsJSON, &r.Digest, &warningJSON, &createdAt)
	if err != nil {
		return Record{}, err
	}
	r.Path = path.String

	r.Params, err = decodeParams(paramsJSON)
	if err != nil {
		return Record{}, fmt.Errorf("project %s: %w", r.Name, err)
	}
	if err := json.Unmarshal([]byte(warningJSON), &r.Warnings); err != nil {
		return Record{}, fmt.Errorf("project %s: bad warnings: %w", r.Name, err)
	}
	r.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return Record{}, fmt.Errorf("project %s: bad timestamp: %w", r.Name, err)
	}
	return r, nil
}

// decodeParams restores integer values that plain JSON decoding would turn
// into floats.
func decodeParams(doc string) (params.Set, error) {
	dec := json.NewDecoder(bytes.NewReader([]byte(doc)))
	dec.UseNumber()
	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("bad params: %w", err)
	}
	out := make(params.Set, len(raw))
	for k, v := range raw {
		n, err := params.Normalize(v)
		if err != nil {
			return nil, fmt.Errorf("bad param %s: %w", k, err)
		}
		out[k] = n
	}
	return out, nil
}
