package workspace

import (
	"archive/tar"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/klauspost/compress/zstd"

	"stratforge/internal/artifact"
	"stratforge/internal/logging"
)

// Bundle streams the tree as a zstd-compressed tar. Entries are rooted at
// the tree's name and written in artifact order.
func (t Tree) Bundle(w io.Writer) error {
	zw, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return fmt.Errorf("zstd writer: %w", err)
	}
	tw := tar.NewWriter(zw)

	for _, a := range t.Artifacts {
		hdr := &tar.Header{
			Name:     path.Join(t.Name, a.Path),
			Mode:     0644,
			Size:     int64(len(a.Content)),
			ModTime:  t.ModTime,
			Typeflag: tar.TypeReg,
			Format:   tar.FormatPAX,
		}
		if err := tw.WriteHeader(hdr); err != nil {
			zw.Close()
			return fmt.Errorf("tar header for %s: %w", a.Path, err)
		}
		if _, err := io.WriteString(tw, a.Content); err != nil {
			zw.Close()
			return fmt.Errorf("tar body for %s: %w", a.Path, err)
		}
	}

	if err := tw.Close(); err != nil {
		zw.Close()
		return fmt.Errorf("tar close: %w", err)
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("zstd close: %w", err)
	}
	logging.Get(logging.CategoryWorkspace).Debug("bundled %d files for %s", len(t.Artifacts), t.Name)
	return nil
}

// Unbundle reads an archive produced by Bundle. Entries that are not one
// of the six artifact paths are rejected.
func Unbundle(r io.Reader) (Tree, error) {
	zr, err := zstd.NewReader(r)
	if err != nil {
		return Tree{}, fmt.Errorf("zstd reader: %w", err)
	}
	defer zr.Close()

	var t Tree
	tr := tar.NewReader(zr)
	for {
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return Tree{}, fmt.Errorf("tar: %w", err)
		}

		name, rel, ok := strings.Cut(hdr.Name, "/")
		if !ok {
			return Tree{}, fmt.Errorf("unexpected archive entry %q", hdr.Name)
		}
		kind, err := artifact.ParseKind(rel)
		if err != nil {
			return Tree{}, fmt.Errorf("archive entry %q: %w", hdr.Name, err)
		}
		if t.Name == "" {
			t.Name = name
		}
		data, err := io.ReadAll(tr)
		if err != nil {
			return Tree{}, fmt.Errorf("reading %s: %w", hdr.Name, err)
		}
		if hdr.ModTime.After(t.ModTime) {
			t.ModTime = hdr.ModTime
		}
		t.Artifacts = append(t.Artifacts, artifact.New(kind, string(data)))
	}
	return t, nil
}
