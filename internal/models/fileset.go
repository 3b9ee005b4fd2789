package models

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/zeebo/xxh3"
)

// FileSet is an ordered path -> content mapping: the in-memory working copy
// of a project and the unit of bundler input. Paths are normalized to a
// leading "/". Iteration order is insertion order.
type FileSet struct {
	paths []string
	files map[string]string
}

type fileSetEntry struct {
	Path    string `json:"path"`
	Content string `json:"content"`
}

func NewFileSet() *FileSet {
	return &FileSet{files: make(map[string]string)}
}

// NormalizePath cleans a project path and enforces the leading slash.
func NormalizePath(p string) (string, error) {
	p = strings.TrimSpace(p)
	if p == "" {
		return "", fmt.Errorf("path is required")
	}
	if strings.Contains(p, "\\") {
		return "", fmt.Errorf("path %q must use forward slashes", p)
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return p, nil
}

// Put inserts or overwrites a file. New paths append to the iteration order;
// overwrites keep their original position.
func (fs *FileSet) Put(path, content string) error {
	normalized, err := NormalizePath(path)
	if err != nil {
		return err
	}
	if _, exists := fs.files[normalized]; !exists {
		fs.paths = append(fs.paths, normalized)
	}
	fs.files[normalized] = content
	return nil
}

func (fs *FileSet) Get(path string) (string, bool) {
	content, ok := fs.files[path]
	return content, ok
}

func (fs *FileSet) Len() int {
	return len(fs.paths)
}

// Paths returns the iteration order as a copy.
func (fs *FileSet) Paths() []string {
	out := make([]string, len(fs.paths))
	copy(out, fs.paths)
	return out
}

func (fs *FileSet) Clone() *FileSet {
	clone := NewFileSet()
	for _, p := range fs.paths {
		clone.paths = append(clone.paths, p)
		clone.files[p] = fs.files[p]
	}
	return clone
}

// Equal reports whether both sets hold the same paths with the same contents,
// regardless of iteration order.
func (fs *FileSet) Equal(other *FileSet) bool {
	if fs == nil || other == nil {
		return fs == other
	}
	if len(fs.paths) != len(other.paths) {
		return false
	}
	for p, c := range fs.files {
		oc, ok := other.files[p]
		if !ok || oc != c {
			return false
		}
	}
	return true
}

// MarshalJSON encodes as an ordered array of {path, content} pairs so that
// snapshots round-trip with their iteration order intact.
func (fs *FileSet) MarshalJSON() ([]byte, error) {
	entries := make([]fileSetEntry, 0, len(fs.paths))
	for _, p := range fs.paths {
		entries = append(entries, fileSetEntry{Path: p, Content: fs.files[p]})
	}
	return json.Marshal(entries)
}

func (fs *FileSet) UnmarshalJSON(data []byte) error {
	var entries []fileSetEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return err
	}
	fs.paths = nil
	fs.files = make(map[string]string, len(entries))
	for _, e := range entries {
		if err := fs.Put(e.Path, e.Content); err != nil {
			return err
		}
	}
	return nil
}

// Fingerprint hashes every (path, content) pair, length-prefixed, in
// iteration order. Used as the bundle cache key.
func (fs *FileSet) Fingerprint() uint64 {
	h := xxh3.New()
	var lenBuf [8]byte
	for _, p := range fs.paths {
		binary.LittleEndian.PutUint64(lenBuf[:], uint64(len(p)))
		h.Write(lenBuf[:])
		h.WriteString(p)
		content := fs.files[p]
		binary.LittleEndian.PutUint64(lenBuf[:], uint64(len(content)))
		h.Write(lenBuf[:])
		h.WriteString(content)
	}
	return h.Sum64()
}
