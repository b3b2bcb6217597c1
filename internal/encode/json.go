package encode

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"fsa-go/internal/audit"
)

// recordOut fixes the persisted key order: name, path, mode, uid, gid, size,
// atime, mtime, ctime, hash.
type recordOut struct {
	Name  string  `json:"name"`
	Path  string  `json:"path"`
	Mode  string  `json:"mode"`
	UID   int64   `json:"uid"`
	GID   int64   `json:"gid"`
	Size  int64   `json:"size"`
	ATime float64 `json:"atime"`
	MTime float64 `json:"mtime"`
	CTime float64 `json:"ctime"`
	Hash  string  `json:"hash"`
}

// recordIn uses pointer fields so a missing required key is detectable —
// a snapshot file with any key absent must fail as a whole, before any diff
// output is produced.
type recordIn struct {
	Name  *string  `json:"name"`
	Path  *string  `json:"path"`
	Mode  *string  `json:"mode"`
	UID   *int64   `json:"uid"`
	GID   *int64   `json:"gid"`
	Size  *int64   `json:"size"`
	ATime *float64 `json:"atime"`
	MTime *float64 `json:"mtime"`
	CTime *float64 `json:"ctime"`
	Hash  *string  `json:"hash"`
}

func (in *recordIn) toRecord(index int) (*audit.Record, error) {
	missing := ""
	switch {
	case in.Name == nil:
		missing = "name"
	case in.Path == nil:
		missing = "path"
	case in.Mode == nil:
		missing = "mode"
	case in.UID == nil:
		missing = "uid"
	case in.GID == nil:
		missing = "gid"
	case in.Size == nil:
		missing = "size"
	case in.ATime == nil:
		missing = "atime"
	case in.MTime == nil:
		missing = "mtime"
	case in.CTime == nil:
		missing = "ctime"
	case in.Hash == nil:
		missing = "hash"
	}
	if missing != "" {
		return nil, fmt.Errorf("record %d: missing required key %q", index, missing)
	}

	return &audit.Record{
		Name:  *in.Name,
		Path:  *in.Path,
		Mode:  *in.Mode,
		UID:   *in.UID,
		GID:   *in.GID,
		Size:  *in.Size,
		ATime: *in.ATime,
		MTime: *in.MTime,
		CTime: *in.CTime,
		Hash:  *in.Hash,
	}, nil
}

// WriteSnapshotJSON serializes a snapshot as a JSON array of record objects.
func WriteSnapshotJSON(w io.Writer, snap *audit.Snapshot) error {
	out := make([]recordOut, 0, snap.Len())
	for _, r := range snap.Records() {
		out = append(out, recordOut{
			Name:  r.Name,
			Path:  r.Path,
			Mode:  r.Mode,
			UID:   r.UID,
			GID:   r.GID,
			Size:  r.Size,
			ATime: r.ATime,
			MTime: r.MTime,
			CTime: r.CTime,
			Hash:  r.Hash,
		})
	}
	if err := json.NewEncoder(w).Encode(out); err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}
	return nil
}

// ReadSnapshotJSON hydrates a snapshot (indexed by path) from a persisted
// JSON array. Any record missing a required key fails the whole load.
// No hashing occurs: the stored hash is trusted verbatim.
func ReadSnapshotJSON(r io.Reader, name string) (*audit.Snapshot, error) {
	var raw []recordIn
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decoding snapshot: %w", err)
	}

	snap := audit.NewSnapshot(name, audit.FieldPath)
	for i := range raw {
		rec, err := raw[i].toRecord(i)
		if err != nil {
			return nil, err
		}
		snap.Add(rec)
	}
	return snap, nil
}

// WriteSnapshotFile writes a snapshot to path atomically (temp file in the
// same directory, then rename) using the given serializer.
func WriteSnapshotFile(path string, snap *audit.Snapshot, write func(io.Writer, *audit.Snapshot) error) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	if err := write(tmp, snap); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("renaming temp file: %w", err)
	}

	success = true
	return nil
}
