package fs

import (
	iofs "io/fs"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"testing/fstest"
	"time"
)

// MemFileSystem is an in-memory FileSystem keyed by absolute path. It counts
// reads per path so callers can assert how often a file was loaded.
type MemFileSystem struct {
	mu    sync.Mutex
	files map[string]*fstest.MapFile
	reads map[string]int
}

func NewMemFileSystem(files map[string]string) *MemFileSystem {
	m := &MemFileSystem{
		files: make(map[string]*fstest.MapFile),
		reads: make(map[string]int),
	}
	for path, data := range files {
		m.files[filepath.Clean(path)] = &fstest.MapFile{Data: []byte(data), Mode: 0644, ModTime: time.Unix(0, 0)}
	}
	return m
}

// key maps an absolute path onto an io/fs name.
func key(path string) string {
	return strings.TrimPrefix(filepath.ToSlash(filepath.Clean(path)), "/")
}

func (m *MemFileSystem) mapFS() fstest.MapFS {
	out := make(fstest.MapFS, len(m.files))
	for path, f := range m.files {
		out[key(path)] = f
	}
	return out
}

func (m *MemFileSystem) ReadFile(path string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reads[filepath.Clean(path)]++
	return m.mapFS().ReadFile(key(path))
}

func (m *MemFileSystem) Stat(path string) (iofs.FileInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	name := key(path)
	if name == "" {
		name = "."
	}
	return m.mapFS().Stat(name)
}

func (m *MemFileSystem) FileExists(path string) bool {
	_, err := m.Stat(path)
	return err == nil
}

func (m *MemFileSystem) WriteFile(path string, data []byte, perm iofs.FileMode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	buf := make([]byte, len(data))
	copy(buf, data)
	m.files[filepath.Clean(path)] = &fstest.MapFile{Data: buf, Mode: perm, ModTime: time.Now()}
	return nil
}

func (m *MemFileSystem) MkdirAll(path string, perm iofs.FileMode) error {
	return nil
}

func (m *MemFileSystem) WalkDir(root string, fn iofs.WalkDirFunc) error {
	m.mu.Lock()
	fsys := m.mapFS()
	m.mu.Unlock()
	name := key(root)
	if name == "" {
		name = "."
	}
	return iofs.WalkDir(fsys, name, func(p string, d iofs.DirEntry, err error) error {
		if p == "." {
			return fn("/", d, err)
		}
		return fn("/"+p, d, err)
	})
}

// SetModTime overrides the modification time recorded for path.
func (m *MemFileSystem) SetModTime(path string, t time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if f, ok := m.files[filepath.Clean(path)]; ok {
		f.ModTime = t
	}
}

func (m *MemFileSystem) Remove(path string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.files, filepath.Clean(path))
}

func (m *MemFileSystem) Reads(path string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.reads[filepath.Clean(path)]
}

// Paths lists every stored file, sorted.
func (m *MemFileSystem) Paths() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.files))
	for path := range m.files {
		out = append(out, path)
	}
	sort.Strings(out)
	return out
}
