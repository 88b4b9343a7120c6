package store

import (
	"database/sql"
	"fmt"

	"stratforge/internal/logging"
)

// Schema versions:
// v1: projects table without class_name or warnings
// v2: class_name and warnings columns
const CurrentSchemaVersion = 2

// Migration adds a column that older registries lack.
type Migration struct {
	Table  string
	Column string
	Def    string
}

// pendingMigrations handle tables created by an older release.
var pendingMigrations = []Migration{
	{"projects", "class_name", "TEXT NOT NULL DEFAULT ''"},
	{"projects", "warnings", "TEXT NOT NULL DEFAULT '[]'"},
}

// RunMigrations brings db to CurrentSchemaVersion and returns how many
// columns were added.
func RunMigrations(db *sql.DB) (int, error) {
	log := logging.Get(logging.CategoryStore)
	timer := logging.StartTimer(logging.CategoryStore, "RunMigrations")
	defer timer.Stop()

	applied := 0
	for _, m := range pendingMigrations {
		if !tableExists(db, m.Table) {
			log.Debug("table %s missing, skipping migration of %s", m.Table, m.Column)
			continue
		}
		ok, err := columnExists(db, m.Table, m.Column)
		if err != nil {
			return applied, err
		}
		if ok {
			continue
		}
		query := fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", m.Table, m.Column, m.Def)
		if _, err := db.Exec(query); err != nil {
			return applied, fmt.Errorf("migration %s.%s failed: %w", m.Table, m.Column, err)
		}
		log.Info("migration applied: added %s.%s", m.Table, m.Column)
		applied++
	}

	if err := SetSchemaVersion(db, CurrentSchemaVersion); err != nil {
		return applied, err
	}
	return applied, nil
}

func columnExists(db *sql.DB, table, column string) (bool, error) {
	rows, err := db.Query(fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return false, fmt.Errorf("table_info(%s): %w", table, err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			cid, notnull, pk int
			name, ctype      string
			dflt             any
		)
		if err := rows.Scan(&cid, &name, &ctype, &notnull, &dflt, &pk); err != nil {
			return false, err
		}
		if name == column {
			return true, nil
		}
	}
	return false, rows.Err()
}

func tableExists(db *sql.DB, table string) bool {
	var count int
	err := db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&count)
	return err == nil && count > 0
}

// GetSchemaVersion reads the version stored in the database header.
func GetSchemaVersion(db *sql.DB) (int, error) {
	var v int
	if err := db.QueryRow("PRAGMA user_version").Scan(&v); err != nil {
		return 0, err
	}
	return v, nil
}

// SetSchemaVersion records version in the database header.
func SetSchemaVersion(db *sql.DB, version int) error {
	if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", version)); err != nil {
		return fmt.Errorf("failed to record schema version: %w", err)
	}
	return nil
}
