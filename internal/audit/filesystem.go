package audit

import (
	"io"
	"io/fs"
	"time"
)

// Path represents a validated filesystem path with cached metadata.
// Path objects are created by FilesystemManager.Resolve() which validates
// the path exists and caches stat info. The path text is kept exactly as
// given: it is the cross-snapshot join key and the printed output, so a
// relative argument stays relative.
type Path struct {
	path  string
	isDir bool
	info  fs.FileInfo
}

// NewPath creates a Path from its components.
// This is primarily for use by FilesystemManager implementations.
func NewPath(path string, isDir bool, info fs.FileInfo) *Path {
	return &Path{
		path:  path,
		isDir: isDir,
		info:  info,
	}
}

// String returns the path as it was given.
func (p *Path) String() string { return p.path }

// IsDir returns true if this path points to a directory.
func (p *Path) IsDir() bool { return p.isDir }

// Info returns the cached file info from when the path was resolved.
func (p *Path) Info() fs.FileInfo { return p.info }

// FileStat is the POSIX metadata captured for one file. ChangeTime carries
// the platform ambiguity of st_ctime: metadata change time on unix systems,
// creation time elsewhere. That ambiguity is recorded, not resolved.
type FileStat struct {
	Perm       fs.FileMode // low 9 permission bits
	UID        int64
	GID        int64
	Size       int64
	AccessTime time.Time
	ModifyTime time.Time
	ChangeTime time.Time
}

// unixSeconds converts a time to float64 unix seconds, the timestamp
// representation carried by Records and the persisted snapshot format.
func unixSeconds(t time.Time) float64 {
	return float64(t.Unix()) + float64(t.Nanosecond())/1e9
}

// FilesystemManager provides an interface for filesystem operations.
// It abstracts file access to enable testing without touching the real
// filesystem.
type FilesystemManager interface {
	// Resolve validates a raw path and returns a Path object.
	// It stats the path and validates it's a regular file or directory
	// (not a symlink, device, etc.). The path text is kept as given.
	Resolve(rawPath string) (*Path, error)

	// Open opens a file for reading.
	Open(path *Path) (io.ReadCloser, error)

	// Stat returns the full POSIX metadata for a resolved path.
	Stat(path *Path) (*FileStat, error)

	// FindFiles discovers regular files under a directory path, top-level
	// only unless recursive is set, excluding ignored paths. Insertion order
	// of the result is the walk order.
	FindFiles(path *Path, recursive bool) ([]*Path, error)

	// Ignored reports whether the path matches the configured ignore
	// patterns. Patterns are shell globs tested against every path component
	// (basename and each ancestor directory name).
	Ignored(path *Path) bool
}
