// Package artifact defines the six files that make up a generated strategy
// project and the content digests used to identify them.
package artifact

import (
	"fmt"
	"strings"
)

// Kind identifies one of the fixed categories of generated file.
type Kind int

const (
	KindSource Kind = iota
	KindManifest
	KindContainerBuild
	KindIgnoreFile
	KindDocumentation
	KindEnvExample
)

// Kinds lists every artifact kind in render order. A project is always
// assembled in this order.
var Kinds = []Kind{
	KindSource,
	KindManifest,
	KindContainerBuild,
	KindIgnoreFile,
	KindDocumentation,
	KindEnvExample,
}

var kindNames = map[Kind]string{
	KindSource:         "source",
	KindManifest:       "manifest",
	KindContainerBuild: "container-build",
	KindIgnoreFile:     "ignore-file",
	KindDocumentation:  "documentation",
	KindEnvExample:     "environment-example",
}

// Relative paths are contract surface for consumers of generated projects.
var kindPaths = map[Kind]string{
	KindSource:         "src/main.rs",
	KindManifest:       "Cargo.toml",
	KindContainerBuild: "Dockerfile",
	KindIgnoreFile:     ".dockerignore",
	KindDocumentation:  "README.md",
	KindEnvExample:     ".env.example",
}

// String returns the kind's stable name.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Path returns the path of the artifact relative to the project root.
func (k Kind) Path() string {
	return kindPaths[k]
}

// Valid reports whether k is one of the six known kinds.
func (k Kind) Valid() bool {
	_, ok := kindNames[k]
	return ok
}

// ParseKind resolves a kind from its name or its relative path.
func ParseKind(s string) (Kind, error) {
	needle := strings.ToLower(strings.TrimSpace(s))
	for _, k := range Kinds {
		if kindNames[k] == needle || strings.ToLower(kindPaths[k]) == needle {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown artifact kind %q", s)
}

// MarshalText implements encoding.TextMarshaler so kinds serialize by name
// in YAML and JSON.
func (k Kind) MarshalText() ([]byte, error) {
	if !k.Valid() {
		return nil, fmt.Errorf("unknown artifact kind %d", int(k))
	}
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(text []byte) error {
	parsed, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}
