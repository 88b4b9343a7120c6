package store

import (
	"fmt"
	"time"

	"stratforge/internal/logging"
)

// CleanupStats reports what a prune removed.
type CleanupStats struct {
	Deleted int
	// Paths lists the project directories of deleted rows, for callers that
	// also remove files.
	Paths []string
}

// PruneKeepNewest deletes every project except the newest keep.
func (s *ProjectStore) PruneKeepNewest(keep int) (*CleanupStats, error) {
	if keep < 0 {
		return nil, fmt.Errorf("keep must be non-negative, got %d", keep)
	}
	return s.prune(`SELECT id, path FROM projects ORDER BY created_at DESC, name LIMIT -1 OFFSET ?`, keep)
}

// PruneOlderThan deletes projects created before cutoff.
func (s *ProjectStore) PruneOlderThan(cutoff time.Time) (*CleanupStats, error) {
	return s.prune(`SELECT id, path FROM projects WHERE created_at < ?`, cutoff.UTC().Format(time.RFC3339Nano))
}

func (s *ProjectStore) prune(query string, arg any) (*CleanupStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	rows, err := tx.Query(query, arg)
	if err != nil {
		return nil, err
	}
	var ids []string
	stats := &CleanupStats{}
	for rows.Next() {
		var id string
		var path *string
		if err := rows.Scan(&id, &path); err != nil {
			rows.Close()
			return nil, err
		}
		ids = append(ids, id)
		if path != nil && *path != "" {
			stats.Paths = append(stats.Paths, *path)
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, id := range ids {
		if _, err := tx.Exec(`DELETE FROM projects WHERE id = ?`, id); err != nil {
			return nil, err
		}
		stats.Deleted++
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}

	logging.Get(logging.CategoryStore).Info("pruned %d projects", stats.Deleted)
	return stats, nil
}
