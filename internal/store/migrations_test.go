package store

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// v1 registries predate the class_name and warnings columns.
const schemaV1 = `
CREATE TABLE projects (
	id TEXT PRIMARY KEY,
	name TEXT UNIQUE NOT NULL,
	base_name TEXT NOT NULL,
	strategy_name TEXT NOT NULL,
	image_name TEXT NOT NULL,
	description TEXT NOT NULL,
	path TEXT,
	params TEXT NOT NULL,
	digest TEXT NOT NULL,
	created_at TEXT NOT NULL
);
INSERT INTO projects VALUES ('id-1', 'legacy_20240101_000000', 'legacy', 'Legacy Strategy',
	'legacy-algo', 'legacy order flow strategy', NULL, '{"lookback_periods":5}', 'ff',
	'2024-01-01T00:00:00Z');
`

func TestRunMigrations_UpgradesV1(t *testing.T) {
	path := filepath.Join(t.TempDir(), "projects.db")
	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	_, err = db.Exec(schemaV1)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	s, err := NewProjectStore(path)
	require.NoError(t, err)
	defer s.Close()

	v, err := GetSchemaVersion(s.db)
	require.NoError(t, err)
	assert.Equal(t, CurrentSchemaVersion, v)

	r, err := s.Get("legacy_20240101_000000")
	require.NoError(t, err)
	assert.Equal(t, "", r.ClassName)
	assert.Equal(t, []string{}, r.Warnings)
	assert.Equal(t, 5, r.Params["lookback_periods"])

	_, err = s.Record(sample("fresh", time.Now()))
	assert.NoError(t, err)
}

func TestRunMigrations_Idempotent(t *testing.T) {
	s := newTestStore(t)

	n, err := RunMigrations(s.db)
	require.NoError(t, err)
	assert.Zero(t, n, "current schema needs no columns")

	ok, err := columnExists(s.db, "projects", "warnings")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.False(t, tableExists(s.db, "missing"))
}
