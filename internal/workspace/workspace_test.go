package workspace

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stratforge/internal/artifact"
)

func sampleTree() Tree {
	t := Tree{Name: "rsi-momentum_20240309_140507", ModTime: time.Date(2024, 3, 9, 14, 5, 7, 0, time.UTC)}
	for _, kind := range artifact.Kinds {
		t.Artifacts = append(t.Artifacts, artifact.New(kind, "content of "+kind.String()+"\n"))
	}
	return t
}

func TestWrite_CreatesEveryFile(t *testing.T) {
	root := filepath.Join(t.TempDir(), "out")
	tree := sampleTree()

	dir, err := tree.Write(root)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, tree.Name), dir)

	for _, a := range tree.Artifacts {
		data, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(a.Path)))
		require.NoError(t, err)
		assert.Equal(t, a.Content, string(data))
	}

	entries, err := os.ReadDir(root)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "staging directory must not remain")
}

func TestWrite_ExistingTarget(t *testing.T) {
	root := t.TempDir()
	tree := sampleTree()
	require.NoError(t, os.MkdirAll(filepath.Join(root, tree.Name), 0755))

	_, err := tree.Write(root)
	assert.ErrorIs(t, err, ErrExists)
}

func TestWrite_FailureLeavesNothing(t *testing.T) {
	root := t.TempDir()
	tree := sampleTree()
	// A file and a directory cannot share the "src" path.
	tree.Artifacts = append(tree.Artifacts, artifact.Artifact{Path: "src", Content: "clash"})

	_, err := tree.Write(root)
	require.Error(t, err)

	entries, err := os.ReadDir(root)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestWrite_RejectsPathNames(t *testing.T) {
	for _, name := range []string{"", "..", "a/b"} {
		tree := sampleTree()
		tree.Name = name
		_, err := tree.Write(t.TempDir())
		assert.Error(t, err, "name %q", name)
	}
}

func TestRead_RoundTrip(t *testing.T) {
	tree := sampleTree()
	dir, err := tree.Write(t.TempDir())
	require.NoError(t, err)

	got, err := Read(dir)
	require.NoError(t, err)
	assert.Equal(t, tree.Name, got.Name)
	assert.Equal(t, artifact.HashProject(tree.Artifacts), artifact.HashProject(got.Artifacts))
	assert.True(t, got.ModTime.Equal(tree.ModTime))
}

func TestRead_MissingFile(t *testing.T) {
	tree := sampleTree()
	dir, err := tree.Write(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, os.Remove(filepath.Join(dir, "README.md")))

	_, err = Read(dir)
	assert.ErrorContains(t, err, "README.md")
}

func TestBundle_RoundTrip(t *testing.T) {
	tree := sampleTree()
	var buf bytes.Buffer
	require.NoError(t, tree.Bundle(&buf))

	got, err := Unbundle(&buf)
	require.NoError(t, err)
	assert.Equal(t, tree.Name, got.Name)
	require.Len(t, got.Artifacts, len(tree.Artifacts))
	for i := range tree.Artifacts {
		assert.Equal(t, tree.Artifacts[i].Path, got.Artifacts[i].Path)
		assert.Equal(t, tree.Artifacts[i].Digest, got.Artifacts[i].Digest)
	}
	assert.True(t, got.ModTime.Equal(tree.ModTime))
}

func TestBundle_IsDeterministic(t *testing.T) {
	var a, b bytes.Buffer
	require.NoError(t, sampleTree().Bundle(&a))
	require.NoError(t, sampleTree().Bundle(&b))
	assert.Equal(t, a.Bytes(), b.Bytes())
}

func TestUnbundle_Garbage(t *testing.T) {
	_, err := Unbundle(bytes.NewReader([]byte("not an archive")))
	assert.Error(t, err)
}
