//go:build unix

package fs

import (
	"fmt"
	"syscall"
	"time"

	"fsa-go/internal/audit"
)

// Stat extracts the full POSIX metadata for a resolved path from its cached
// FileInfo: permission bits, owner/group ids, size, and the three unix
// timestamps (atime, mtime, ctime).
func (m *OSFilesystemManager) Stat(path *audit.Path) (*audit.FileStat, error) {
	info := path.Info()
	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return nil, fmt.Errorf("cannot extract stat data: expected *syscall.Stat_t, got %T", info.Sys())
	}

	return &audit.FileStat{
		Perm:       info.Mode().Perm(),
		UID:        int64(stat.Uid),
		GID:        int64(stat.Gid),
		Size:       info.Size(),
		AccessTime: time.Unix(stat.Atim.Sec, stat.Atim.Nsec),
		ModifyTime: info.ModTime(),
		// st_ctime: metadata change time on unix, creation time elsewhere.
		ChangeTime: time.Unix(stat.Ctim.Sec, stat.Ctim.Nsec),
	}, nil
}
