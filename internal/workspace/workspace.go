// Package workspace persists generated projects to disk and exports them
// as compressed archives.
package workspace

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"stratforge/internal/artifact"
	"stratforge/internal/logging"
)

// ErrExists is returned when the target project directory already exists.
var ErrExists = errors.New("project directory already exists")

// Tree is a named set of artifacts laid out under one directory.
type Tree struct {
	Name      string
	ModTime   time.Time
	Artifacts []artifact.Artifact
}

// Dir returns the directory the tree occupies under root.
func (t Tree) Dir(root string) string {
	return filepath.Join(root, t.Name)
}

// Write creates root/<name> containing every artifact. Files are staged in
// a temporary sibling directory that is renamed into place, so the target
// either holds the whole tree or does not exist.
func (t Tree) Write(root string) (string, error) {
	log := logging.Get(logging.CategoryWorkspace)
	if t.Name == "" || t.Name != filepath.Base(t.Name) || t.Name == "." || t.Name == ".." {
		return "", fmt.Errorf("invalid project directory name %q", t.Name)
	}

	target := t.Dir(root)
	if _, err := os.Stat(target); err == nil {
		return "", fmt.Errorf("%w: %s", ErrExists, target)
	} else if !errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("failed to stat %s: %w", target, err)
	}

	if err := os.MkdirAll(root, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}
	staging := filepath.Join(root, fmt.Sprintf(".%s.tmp-%s", t.Name, uuid.NewString()))
	if err := os.Mkdir(staging, 0755); err != nil {
		return "", fmt.Errorf("failed to create staging directory: %w", err)
	}

	if err := t.writeFiles(staging); err != nil {
		os.RemoveAll(staging)
		return "", err
	}
	if err := os.Rename(staging, target); err != nil {
		os.RemoveAll(staging)
		return "", fmt.Errorf("failed to move project into place: %w", err)
	}

	log.Info("wrote %d files to %s", len(t.Artifacts), target)
	return target, nil
}

func (t Tree) writeFiles(dir string) error {
	for _, a := range t.Artifacts {
		path := filepath.Join(dir, filepath.FromSlash(a.Path))
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return fmt.Errorf("failed to create directory for %s: %w", a.Path, err)
		}
		if err := os.WriteFile(path, []byte(a.Content), 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", a.Path, err)
		}
		if !t.ModTime.IsZero() {
			if err := os.Chtimes(path, t.ModTime, t.ModTime); err != nil {
				return fmt.Errorf("failed to set times on %s: %w", a.Path, err)
			}
		}
	}
	return nil
}

// Read loads the artifacts of a project directory written by Write.
func Read(dir string) (Tree, error) {
	t := Tree{Name: filepath.Base(dir)}
	for _, kind := range artifact.Kinds {
		path := filepath.Join(dir, filepath.FromSlash(kind.Path()))
		data, err := os.ReadFile(path)
		if err != nil {
			return Tree{}, fmt.Errorf("failed to read %s: %w", kind.Path(), err)
		}
		if info, err := os.Stat(path); err == nil && info.ModTime().After(t.ModTime) {
			t.ModTime = info.ModTime()
		}
		t.Artifacts = append(t.Artifacts, artifact.New(kind, string(data)))
	}
	return t, nil
}
