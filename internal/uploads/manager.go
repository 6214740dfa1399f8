package uploads

import (
	"crypto/rand"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
)

// ErrTooLarge is returned when an upload exceeds the per-file size cap.
var ErrTooLarge = errors.New("uploads: file exceeds size limit")

// ErrBadName is returned for names that could escape the uploads dir.
var ErrBadName = errors.New("uploads: invalid file name")

// Stored describes one file in the uploads directory.
type Stored struct {
	Name    string    `json:"name"`
	Size    int64     `json:"size"`
	ModTime time.Time `json:"modTime"`
}

// Manager owns the uploads directory: logos and media files referenced by
// program and media item records. Stored files get ULID basenames so
// operator-supplied names never reach the filesystem.
type Manager struct {
	baseDir  string
	maxBytes int64
}

// NewManager creates a manager rooted at baseDir with a per-file cap.
func NewManager(baseDir string, maxBytes int64) *Manager {
	return &Manager{baseDir: baseDir, maxBytes: maxBytes}
}

// BaseDir returns the uploads directory.
func (m *Manager) BaseDir() string {
	return m.baseDir
}

// MaxBytes returns the per-file size cap.
func (m *Manager) MaxBytes() int64 {
	return m.maxBytes
}

// newName generates a ULID-based basename.
func newName() string {
	return ulid.MustNew(ulid.Timestamp(time.Now()), rand.Reader).String()
}

// safeExt keeps the original extension when it looks harmless.
func safeExt(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if len(ext) > 10 || strings.ContainsAny(ext, "/\\") {
		return ""
	}
	return ext
}

// Save stores the content of r as a new file, keeping the original
// name's extension. Content past the size cap aborts the save and
// removes the partial file.
func (m *Manager) Save(r io.Reader, originalName string) (Stored, error) {
	if err := os.MkdirAll(m.baseDir, 0755); err != nil {
		return Stored{}, err
	}

	name := newName() + safeExt(originalName)
	path := filepath.Join(m.baseDir, name)

	out, err := os.Create(path)
	if err != nil {
		return Stored{}, err
	}

	written, err := io.Copy(out, io.LimitReader(r, m.maxBytes+1))
	closeErr := out.Close()
	switch {
	case err != nil:
		_ = os.Remove(path)
		return Stored{}, err
	case closeErr != nil:
		_ = os.Remove(path)
		return Stored{}, closeErr
	case written > m.maxBytes:
		_ = os.Remove(path)
		return Stored{}, ErrTooLarge
	}

	info, err := os.Stat(path)
	if err != nil {
		return Stored{}, err
	}
	return Stored{Name: name, Size: info.Size(), ModTime: info.ModTime()}, nil
}

// List returns every stored file, newest first.
func (m *Manager) List() ([]Stored, error) {
	entries, err := os.ReadDir(m.baseDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []Stored{}, nil
		}
		return nil, err
	}

	out := make([]Stored, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		out = append(out, Stored{Name: e.Name(), Size: info.Size(), ModTime: info.ModTime()})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ModTime.After(out[j].ModTime) })
	return out, nil
}

// Remove deletes one stored file by basename.
func (m *Manager) Remove(name string) error {
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return ErrBadName
	}
	return os.Remove(filepath.Join(m.baseDir, name))
}
