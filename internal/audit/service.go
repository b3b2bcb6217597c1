package audit

import (
	"fmt"
	"path/filepath"
)

// DiffFields are the attributes compared across snapshots in diff mode.
var DiffFields = []Field{FieldHash, FieldSize}

// AuditService is the orchestration layer that coordinates the filesystem
// walk, hashing, and diff grouping needed by the CLI.
type AuditService struct {
	fsmgr  FilesystemManager
	logger Logger
	clock  Clock
}

// NewAuditService creates a new AuditService with the provided dependencies.
func NewAuditService(fsmgr FilesystemManager, logger Logger, clock Clock) *AuditService {
	return &AuditService{
		fsmgr:  fsmgr,
		logger: logger,
		clock:  clock,
	}
}

// AuditOptions control a single audit run.
type AuditOptions struct {
	// Recursive walks directory roots fully instead of top-level only.
	Recursive bool

	// Hasher computes each file's content digest.
	Hasher Hasher

	// OnRecord, if set, is called with each Record as it is produced, in walk
	// order. A non-nil return aborts the run.
	OnRecord func(*Record) error
}

// Audit walks the given roots and produces one Snapshot indexed by path.
//
// File roots yield a single Record unless ignored. Directory roots are
// enumerated (top-level only unless Recursive), regardless of how many roots
// were given — a valid directory argument never silently produces nothing.
// Empty directories yield no Records. Any stat, open, or read failure aborts
// the run: a file that disappears or turns unreadable mid-audit is surfaced,
// not skipped.
func (s *AuditService) Audit(roots []string, opts AuditOptions) (*Snapshot, error) {
	if opts.Hasher == nil {
		return nil, fmt.Errorf("no hasher configured")
	}

	snap := NewSnapshot("", FieldPath)
	s.logger.Info("audit started", "roots", len(roots), "algorithm", opts.Hasher.Name())

	for _, raw := range roots {
		root, err := s.fsmgr.Resolve(raw)
		if err != nil {
			return nil, fmt.Errorf("resolving %s: %w", raw, err)
		}

		if !root.IsDir() {
			if s.fsmgr.Ignored(root) {
				s.logger.Debug("root ignored", "path", root.String())
				continue
			}
			if err := s.auditOne(root, opts, snap); err != nil {
				return nil, err
			}
			continue
		}

		files, err := s.fsmgr.FindFiles(root, opts.Recursive)
		if err != nil {
			return nil, fmt.Errorf("walking %s: %w", root.String(), err)
		}
		for _, f := range files {
			if err := s.auditOne(f, opts, snap); err != nil {
				return nil, err
			}
		}
	}

	s.logger.Info("audit complete", "files", snap.Len())
	return snap, nil
}

// auditOne builds the Record for a single file and adds it to the snapshot.
func (s *AuditService) auditOne(path *Path, opts AuditOptions, snap *Snapshot) error {
	rec, err := s.buildRecord(path, opts.Hasher)
	if err != nil {
		return err
	}

	snap.Add(rec)
	s.logger.Debug("file audited", "path", rec.Path, "hash", rec.Hash)

	if opts.OnRecord != nil {
		if err := opts.OnRecord(rec); err != nil {
			return err
		}
	}
	return nil
}

// buildRecord reads stat metadata and streams the file content through a
// fresh digest to produce one immutable Record.
func (s *AuditService) buildRecord(path *Path, hasher Hasher) (*Record, error) {
	stat, err := s.fsmgr.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path.String(), err)
	}

	f, err := s.fsmgr.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path.String(), err)
	}
	digest, err := hasher.Sum(f)
	f.Close()
	if err != nil {
		return nil, fmt.Errorf("hashing %s: %w", path.String(), err)
	}

	return &Record{
		Name:  filepath.Base(path.String()),
		Path:  path.String(),
		Mode:  fmt.Sprintf("%o", uint32(stat.Perm)),
		UID:   stat.UID,
		GID:   stat.GID,
		Size:  stat.Size,
		ATime: unixSeconds(stat.AccessTime),
		MTime: unixSeconds(stat.ModifyTime),
		CTime: unixSeconds(stat.ChangeTime),
		Hash:  digest,
	}, nil
}

// DiffEntry is one snapshot's grouped result for a single path.
type DiffEntry struct {
	Archive   string // the snapshot's name
	Present   bool
	KeyGroups []int // one id per DiffFields entry, same order
	Combined  int
}

// PathDiff collects every snapshot's entry for one path.
type PathDiff struct {
	Key     any // the path value from the superset
	Entries []DiffEntry
}

// DiffReport is the full result of diffing N snapshots.
type DiffReport struct {
	Fields []Field
	Paths  []PathDiff
}

// Diff compares the given snapshots over their path index. For every path in
// the superset it gathers one Cell per snapshot (explicit absence for
// snapshots lacking the path) and assigns diff group ids over DiffFields.
// Snapshot order fixes the superset order and the group-id labels.
func (s *AuditService) Diff(snapshots []*Snapshot) (*DiffReport, error) {
	if len(snapshots) < 2 {
		return nil, fmt.Errorf("diff requires at least 2 snapshots, got %d", len(snapshots))
	}

	superset := KeyValueSuperset(snapshots, FieldPath)
	report := &DiffReport{Fields: DiffFields, Paths: make([]PathDiff, 0, len(superset))}

	for _, key := range superset {
		cells := make([]Cell, len(snapshots))
		for i, snap := range snapshots {
			if rec, ok := snap.Get(FieldPath, key); ok {
				cells[i] = Present(rec)
			} else {
				cells[i] = Absent()
			}
		}

		grouped := GroupDiff(DiffFields, cells)

		pd := PathDiff{Key: key, Entries: make([]DiffEntry, len(grouped))}
		for i, g := range grouped {
			_, present := g.Cell.Record()
			pd.Entries[i] = DiffEntry{
				Archive:   snapshots[i].Name,
				Present:   present,
				KeyGroups: g.KeyGroups,
				Combined:  g.Combined,
			}
		}
		report.Paths = append(report.Paths, pd)
	}

	s.logger.Info("diff complete", "snapshots", len(snapshots), "paths", len(report.Paths))
	return report, nil
}
