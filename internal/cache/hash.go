// Package cache stores native model snapshots between generation runs. A
// snapshot is keyed by the hash of the inputs it was built from and is
// discarded when it no longer decodes.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"
)

// FileHasher computes content hashes for cache keys
type FileHasher struct{}

// NewFileHasher creates a new file hasher
func NewFileHasher() *FileHasher {
	return &FileHasher{}
}

// HashFile computes a SHA-256 hash of the file contents
func (fh *FileHasher) HashFile(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer file.Close()

	hasher := sha256.New()
	if _, err := io.Copy(hasher, file); err != nil {
		return "", err
	}

	return hex.EncodeToString(hasher.Sum(nil)), nil
}

// HashContent computes a SHA-256 hash of the given content
func (fh *FileHasher) HashContent(content []byte) string {
	hasher := sha256.New()
	hasher.Write(content)
	return hex.EncodeToString(hasher.Sum(nil))
}

// HashString computes a SHA-256 hash of the given string
func (fh *FileHasher) HashString(content string) string {
	return fh.HashContent([]byte(content))
}

// HashInputs combines the contents of several files and extra key material
// into one hash. Order matters.
func (fh *FileHasher) HashInputs(paths []string, extra ...string) (string, error) {
	hasher := sha256.New()
	for _, p := range paths {
		h, err := fh.HashFile(p)
		if err != nil {
			return "", err
		}
		io.WriteString(hasher, p)
		io.WriteString(hasher, "\x00")
		io.WriteString(hasher, h)
		io.WriteString(hasher, "\x00")
	}
	for _, e := range extra {
		io.WriteString(hasher, e)
		io.WriteString(hasher, "\x00")
	}
	return hex.EncodeToString(hasher.Sum(nil)), nil
}
