package testutil

import (
	"bytes"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"fsa-go/internal/audit"
)

// MockFile represents a file in the mock filesystem.
type MockFile struct {
	Content     []byte
	Permissions fs.FileMode
	UID         int64
	GID         int64
	ModTime     time.Time
	IsDirectory bool
	// Stat data - set once when file is created
	Atime time.Time
	Ctime time.Time
}

// MockFilesystemManager is an in-memory filesystem for testing.
// Paths are matched verbatim, exactly as given.
type MockFilesystemManager struct {
	files   map[string]*MockFile
	ignored map[string]bool
}

// NewMockFilesystemManager creates a new mock filesystem.
func NewMockFilesystemManager() *MockFilesystemManager {
	return &MockFilesystemManager{
		files:   make(map[string]*MockFile),
		ignored: make(map[string]bool),
	}
}

// AddFile adds a file to the mock filesystem.
func (m *MockFilesystemManager) AddFile(path string, content []byte) *MockFile {
	now := time.Now()
	f := &MockFile{
		Content:     content,
		Permissions: 0644,
		UID:         1000,
		GID:         1000,
		ModTime:     now,
		IsDirectory: false,
		Atime:       now,
		Ctime:       now,
	}
	m.files[path] = f
	return f
}

// AddDirectory adds a directory to the mock filesystem.
func (m *MockFilesystemManager) AddDirectory(path string) {
	now := time.Now()
	m.files[path] = &MockFile{
		Content:     nil,
		Permissions: 0755,
		UID:         1000,
		GID:         1000,
		ModTime:     now,
		IsDirectory: true,
		Atime:       now,
		Ctime:       now,
	}
}

// Ignore marks a path as ignored.
func (m *MockFilesystemManager) Ignore(path string) {
	m.ignored[path] = true
}

func (m *MockFilesystemManager) Resolve(rawPath string) (*audit.Path, error) {
	file, ok := m.files[rawPath]
	if !ok {
		return nil, fmt.Errorf("file not found: %s", rawPath)
	}

	info := &mockFileInfo{
		name:     filepath.Base(rawPath),
		size:     int64(len(file.Content)),
		mode:     file.Permissions,
		modTime:  file.ModTime,
		isDir:    file.IsDirectory,
		mockFile: file,
	}

	return audit.NewPath(rawPath, file.IsDirectory, info), nil
}

func (m *MockFilesystemManager) Open(path *audit.Path) (io.ReadCloser, error) {
	file, ok := m.files[path.String()]
	if !ok {
		return nil, fmt.Errorf("file not found: %s", path.String())
	}
	if file.IsDirectory {
		return nil, fmt.Errorf("cannot open directory: %s", path.String())
	}
	return io.NopCloser(bytes.NewReader(file.Content)), nil
}

func (m *MockFilesystemManager) Stat(path *audit.Path) (*audit.FileStat, error) {
	file, ok := m.files[path.String()]
	if !ok {
		return nil, fmt.Errorf("file not found: %s", path.String())
	}

	return &audit.FileStat{
		Perm:       file.Permissions.Perm(),
		UID:        file.UID,
		GID:        file.GID,
		Size:       int64(len(file.Content)),
		AccessTime: file.Atime,
		ModifyTime: file.ModTime,
		ChangeTime: file.Ctime,
	}, nil
}

func (m *MockFilesystemManager) Ignored(path *audit.Path) bool {
	return m.ignored[path.String()]
}

// FindFiles returns the regular files under path, sorted. When recursive is
// false only direct children are returned.
func (m *MockFilesystemManager) FindFiles(path *audit.Path, recursive bool) ([]*audit.Path, error) {
	dir, ok := m.files[path.String()]
	if !ok {
		return nil, fmt.Errorf("directory not found: %s", path.String())
	}
	if !dir.IsDirectory {
		return nil, fmt.Errorf("not a directory: %s", path.String())
	}

	prefix := path.String()
	if !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}

	var names []string
	for p, f := range m.files {
		if f.IsDirectory || !strings.HasPrefix(p, prefix) {
			continue
		}
		if !recursive && strings.Contains(p[len(prefix):], "/") {
			continue
		}
		if m.ignored[p] {
			continue
		}
		names = append(names, p)
	}
	sort.Strings(names)

	paths := make([]*audit.Path, 0, len(names))
	for _, p := range names {
		resolved, err := m.Resolve(p)
		if err != nil {
			return nil, err
		}
		paths = append(paths, resolved)
	}
	return paths, nil
}

// mockFileInfo implements fs.FileInfo
type mockFileInfo struct {
	name     string
	size     int64
	mode     fs.FileMode
	modTime  time.Time
	isDir    bool
	mockFile *MockFile // reference to get stat data
}

func (m *mockFileInfo) Name() string       { return m.name }
func (m *mockFileInfo) Size() int64        { return m.size }
func (m *mockFileInfo) Mode() fs.FileMode  { return m.mode }
func (m *mockFileInfo) ModTime() time.Time { return m.modTime }
func (m *mockFileInfo) IsDir() bool        { return m.isDir }
func (m *mockFileInfo) Sys() any           { return m.mockFile }

// Compile-time check
var _ audit.FilesystemManager = (*MockFilesystemManager)(nil)
