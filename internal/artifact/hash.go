package artifact

import (
	"encoding/hex"
	"fmt"

	"github.com/zeebo/blake3"
)

// Hash is a 32-byte BLAKE3 digest.
type Hash [32]byte

type domainKey [32]byte

// Domain separation keys: the ASCII domain name zero-padded to 32 bytes.
// Changing them invalidates every digest recorded in the project registry.
var (
	fileDomainKey = domainKey{
		's', 't', 'r', 'a', 't', 'f', 'o', 'r', 'g', 'e', '.', 'f', 'i', 'l', 'e', 0,
		0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
	}

	projectDomainKey = domainKey{
		's', 't', 'r', 'a', 't', 'f', 'o', 'r', 'g', 'e', '.', 'p', 'r', 'o', 'j', 'e',
		'c', 't', 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
	}
)

// HashFile computes the file-domain keyed hash of an artifact's content.
func HashFile(data []byte) Hash {
	return keyedHash(fileDomainKey, data)
}

// HashProject computes the project-domain hash over the artifacts in the
// order given. Each entry contributes its path, a NUL separator, and its
// file digest, so renaming a file changes the project digest even when the
// content does not.
func HashProject(artifacts []Artifact) Hash {
	hasher, err := blake3.NewKeyed(projectDomainKey[:])
	if err != nil {
		panic("artifact: blake3 keyed hasher: " + err.Error())
	}
	for _, a := range artifacts {
		hasher.Write([]byte(a.Path))
		hasher.Write([]byte{0})
		hasher.Write(a.Digest[:])
	}
	var out Hash
	copy(out[:], hasher.Sum(nil))
	return out
}

func keyedHash(key domainKey, data []byte) Hash {
	hasher, err := blake3.NewKeyed(key[:])
	if err != nil {
		// NewKeyed only fails for keys that are not 32 bytes.
		panic("artifact: blake3 keyed hasher: " + err.Error())
	}
	hasher.Write(data)
	var out Hash
	copy(out[:], hasher.Sum(nil))
	return out
}

// String returns the lowercase hex encoding of the hash.
func (h Hash) String() string {
	return hex.EncodeToString(h[:])
}

// Short returns the first 12 hex characters, for display.
func (h Hash) Short() string {
	return h.String()[:12]
}

// IsZero reports whether h is the zero hash.
func (h Hash) IsZero() bool {
	return h == Hash{}
}

// ParseHash decodes a 64-character hex string.
func ParseHash(s string) (Hash, error) {
	var h Hash
	raw, err := hex.DecodeString(s)
	if err != nil {
		return h, fmt.Errorf("parse hash: %w", err)
	}
	if len(raw) != len(h) {
		return h, fmt.Errorf("parse hash: got %d bytes, want %d", len(raw), len(h))
	}
	copy(h[:], raw)
	return h, nil
}
