package fs

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"fsa-go/internal/audit"
)

// OSFilesystemManager is the real filesystem implementation of
// audit.FilesystemManager. It performs actual filesystem operations using the
// os package and applies the configured ignore patterns during discovery.
type OSFilesystemManager struct {
	ignore *IgnoreMatcher
}

// NewOSFilesystemManager creates a filesystem manager that operates on the
// real filesystem, ignoring paths matched by the given glob patterns.
func NewOSFilesystemManager(ignorePatterns []string) *OSFilesystemManager {
	return &OSFilesystemManager{ignore: NewIgnoreMatcher(ignorePatterns)}
}

// Resolve validates a raw path and returns a Path object. The path text is
// kept as given — it becomes the record's path and the ignore-match input —
// never absolutized, so components of the working directory the user did not
// name can never leak into output or pattern matching.
func (m *OSFilesystemManager) Resolve(rawPath string) (*audit.Path, error) {
	// Lstat so a symlink is seen as itself, not its target.
	info, err := os.Lstat(rawPath)
	if err != nil {
		return nil, fmt.Errorf("stat path: %w", err)
	}

	// Check for special file types we don't support
	mode := info.Mode()
	if mode&os.ModeSymlink != 0 {
		return nil, fmt.Errorf("symlinks not supported: %s", rawPath)
	}
	if mode&os.ModeDevice != 0 {
		return nil, fmt.Errorf("device files not supported: %s", rawPath)
	}
	if mode&os.ModeNamedPipe != 0 {
		return nil, fmt.Errorf("named pipes not supported: %s", rawPath)
	}
	if mode&os.ModeSocket != 0 {
		return nil, fmt.Errorf("sockets not supported: %s", rawPath)
	}

	return audit.NewPath(rawPath, info.IsDir(), info), nil
}

// Open opens a file for reading.
func (m *OSFilesystemManager) Open(path *audit.Path) (io.ReadCloser, error) {
	if path.IsDir() {
		return nil, fmt.Errorf("cannot open directory as file: %s", path.String())
	}
	return os.Open(path.String())
}

// Ignored reports whether any component of the path matches an ignore pattern.
func (m *OSFilesystemManager) Ignored(path *audit.Path) bool {
	return m.ignore.Match(path.String())
}

// FindFiles discovers regular files under the given directory path, skipping
// ignored files and pruning ignored directories. The result order is the walk
// order (lexical within each directory).
func (m *OSFilesystemManager) FindFiles(path *audit.Path, recursive bool) ([]*audit.Path, error) {
	if !path.IsDir() {
		return nil, fmt.Errorf("path is not a directory: %s", path.String())
	}

	var paths []*audit.Path

	if recursive {
		err := filepath.WalkDir(path.String(), func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				// Pruning an ignored directory is equivalent to testing each
				// file's full path: every file below it would match on this
				// component anyway.
				if p != path.String() && m.ignore.Match(p) {
					return filepath.SkipDir
				}
				return nil
			}
			if !d.Type().IsRegular() {
				return nil
			}
			if m.ignore.Match(p) {
				return nil
			}
			info, err := d.Info()
			if err != nil {
				return fmt.Errorf("stat %s: %w", p, err)
			}
			paths = append(paths, audit.NewPath(p, false, info))
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walking directory: %w", err)
		}
	} else {
		entries, err := os.ReadDir(path.String())
		if err != nil {
			return nil, fmt.Errorf("reading directory: %w", err)
		}
		for _, entry := range entries {
			if !entry.Type().IsRegular() {
				continue
			}
			fullPath := filepath.Join(path.String(), entry.Name())
			if m.ignore.Match(fullPath) {
				continue
			}
			info, err := entry.Info()
			if err != nil {
				return nil, fmt.Errorf("stat %s: %w", entry.Name(), err)
			}
			paths = append(paths, audit.NewPath(fullPath, false, info))
		}
	}

	return paths, nil
}

// Compile-time check that OSFilesystemManager implements audit.FilesystemManager
var _ audit.FilesystemManager = (*OSFilesystemManager)(nil)
