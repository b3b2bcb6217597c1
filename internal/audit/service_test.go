package audit_test

import (
	"errors"
	"testing"

	"fsa-go/internal/audit"
	"fsa-go/internal/hash"
	"fsa-go/internal/testutil"
)

func newService(t *testing.T, fsm *testutil.MockFilesystemManager) *audit.AuditService {
	t.Helper()
	return audit.NewAuditService(fsm, audit.NewNopLogger(), testutil.FixedClock())
}

func newHasher(t *testing.T) audit.Hasher {
	t.Helper()
	h, err := hash.New("sha256", 1024)
	if err != nil {
		t.Fatalf("hash.New() error = %v", err)
	}
	return h
}

func TestAuditService_Audit_DirectoryRoot(t *testing.T) {
	t.Parallel()

	fsm := testutil.NewMockFilesystemManager()
	fsm.AddDirectory("/data")
	fsm.AddFile("/data/a.txt", []byte("alpha"))
	fsm.AddFile("/data/b.txt", []byte("beta"))
	fsm.AddDirectory("/data/sub")
	fsm.AddFile("/data/sub/c.txt", []byte("gamma"))

	svc := newService(t, fsm)

	t.Run("non-recursive", func(t *testing.T) {
		snap, err := svc.Audit([]string{"/data"}, audit.AuditOptions{Hasher: newHasher(t)})
		if err != nil {
			t.Fatalf("Audit() error = %v", err)
		}
		if snap.Len() != 2 {
			t.Fatalf("Len() = %d, want 2", snap.Len())
		}
		if _, ok := snap.Get(audit.FieldPath, "/data/sub/c.txt"); ok {
			t.Error("non-recursive audit included a nested file")
		}
	})

	t.Run("recursive", func(t *testing.T) {
		snap, err := svc.Audit([]string{"/data"}, audit.AuditOptions{
			Recursive: true,
			Hasher:    newHasher(t),
		})
		if err != nil {
			t.Fatalf("Audit() error = %v", err)
		}
		if snap.Len() != 3 {
			t.Fatalf("Len() = %d, want 3", snap.Len())
		}

		rec, ok := snap.Get(audit.FieldPath, "/data/a.txt")
		if !ok {
			t.Fatal("Get(/data/a.txt) ok = false")
		}
		if want := testutil.SHA256Hex([]byte("alpha")); rec.Hash != want {
			t.Errorf("Hash = %q, want %q", rec.Hash, want)
		}
		if rec.Name != "a.txt" {
			t.Errorf("Name = %q, want %q", rec.Name, "a.txt")
		}
		if rec.Mode != "644" {
			t.Errorf("Mode = %q, want %q", rec.Mode, "644")
		}
		if rec.Size != 5 {
			t.Errorf("Size = %d, want 5", rec.Size)
		}
	})
}

func TestAuditService_Audit_MultipleDirectoryRoots(t *testing.T) {
	t.Parallel()

	fsm := testutil.NewMockFilesystemManager()
	fsm.AddDirectory("/one")
	fsm.AddFile("/one/a.txt", []byte("a"))
	fsm.AddDirectory("/two")
	fsm.AddFile("/two/b.txt", []byte("b"))

	svc := newService(t, fsm)

	// Every directory root is enumerated, even without -r.
	snap, err := svc.Audit([]string{"/one", "/two"}, audit.AuditOptions{Hasher: newHasher(t)})
	if err != nil {
		t.Fatalf("Audit() error = %v", err)
	}
	if snap.Len() != 2 {
		t.Errorf("Len() = %d, want 2", snap.Len())
	}
	if _, ok := snap.Get(audit.FieldPath, "/two/b.txt"); !ok {
		t.Error("second directory root was not enumerated")
	}
}

func TestAuditService_Audit_FileRoot(t *testing.T) {
	t.Parallel()

	fsm := testutil.NewMockFilesystemManager()
	fsm.AddFile("/single.txt", []byte("solo"))

	svc := newService(t, fsm)
	snap, err := svc.Audit([]string{"/single.txt"}, audit.AuditOptions{Hasher: newHasher(t)})
	if err != nil {
		t.Fatalf("Audit() error = %v", err)
	}
	if snap.Len() != 1 {
		t.Errorf("Len() = %d, want 1", snap.Len())
	}
}

func TestAuditService_Audit_IgnoredFileRoot(t *testing.T) {
	t.Parallel()

	fsm := testutil.NewMockFilesystemManager()
	fsm.AddFile("/skip.log", []byte("noise"))
	fsm.Ignore("/skip.log")

	svc := newService(t, fsm)
	snap, err := svc.Audit([]string{"/skip.log"}, audit.AuditOptions{Hasher: newHasher(t)})
	if err != nil {
		t.Fatalf("Audit() error = %v", err)
	}
	if snap.Len() != 0 {
		t.Errorf("Len() = %d, want 0", snap.Len())
	}
}

func TestAuditService_Audit_MissingRootFails(t *testing.T) {
	t.Parallel()

	fsm := testutil.NewMockFilesystemManager()
	svc := newService(t, fsm)

	if _, err := svc.Audit([]string{"/nope"}, audit.AuditOptions{Hasher: newHasher(t)}); err == nil {
		t.Error("Audit() error = nil for missing root, want error")
	}
}

func TestAuditService_Audit_OnRecordOrderAndAbort(t *testing.T) {
	t.Parallel()

	fsm := testutil.NewMockFilesystemManager()
	fsm.AddDirectory("/data")
	fsm.AddFile("/data/a.txt", []byte("a"))
	fsm.AddFile("/data/b.txt", []byte("b"))
	fsm.AddFile("/data/c.txt", []byte("c"))

	svc := newService(t, fsm)

	var seen []string
	_, err := svc.Audit([]string{"/data"}, audit.AuditOptions{
		Hasher: newHasher(t),
		OnRecord: func(r *audit.Record) error {
			seen = append(seen, r.Path)
			if len(seen) == 2 {
				return errors.New("stop")
			}
			return nil
		},
	})
	if err == nil {
		t.Fatal("Audit() error = nil, want abort error")
	}
	if len(seen) != 2 {
		t.Errorf("OnRecord called %d times, want 2", len(seen))
	}
	if seen[0] != "/data/a.txt" || seen[1] != "/data/b.txt" {
		t.Errorf("OnRecord order = %v, want walk order", seen)
	}
}

func TestAuditService_Diff(t *testing.T) {
	t.Parallel()

	fsm := testutil.NewMockFilesystemManager()
	svc := newService(t, fsm)

	base := audit.NewSnapshot("base.json", audit.FieldPath)
	base.Add(&audit.Record{Path: "/a", Hash: "h1", Size: 1})
	base.Add(&audit.Record{Path: "/b", Hash: "h2", Size: 2})

	other := audit.NewSnapshot("other.json", audit.FieldPath)
	other.Add(&audit.Record{Path: "/a", Hash: "h1", Size: 1})
	other.Add(&audit.Record{Path: "/c", Hash: "h3", Size: 3})

	report, err := svc.Diff([]*audit.Snapshot{base, other})
	if err != nil {
		t.Fatalf("Diff() error = %v", err)
	}

	if len(report.Paths) != 3 {
		t.Fatalf("len(Paths) = %d, want 3", len(report.Paths))
	}

	wantOrder := []any{"/a", "/b", "/c"}
	for i, pd := range report.Paths {
		if pd.Key != wantOrder[i] {
			t.Errorf("Paths[%d].Key = %v, want %v", i, pd.Key, wantOrder[i])
		}
		if len(pd.Entries) != 2 {
			t.Fatalf("Paths[%d] has %d entries, want 2", i, len(pd.Entries))
		}
	}

	// /a matches in both snapshots.
	a := report.Paths[0]
	if a.Entries[0].Combined != a.Entries[1].Combined {
		t.Errorf("/a combined ids differ: %d vs %d", a.Entries[0].Combined, a.Entries[1].Combined)
	}

	// /b exists only in base.
	b := report.Paths[1]
	if !b.Entries[0].Present || b.Entries[1].Present {
		t.Errorf("/b presence = %v/%v, want true/false", b.Entries[0].Present, b.Entries[1].Present)
	}
	if b.Entries[0].Combined == b.Entries[1].Combined {
		t.Error("/b present and absent entries share a combined id")
	}

	if b.Entries[0].Archive != "base.json" || b.Entries[1].Archive != "other.json" {
		t.Errorf("archives = %q, %q, want snapshot names", b.Entries[0].Archive, b.Entries[1].Archive)
	}
}

func TestAuditService_Diff_RequiresTwoSnapshots(t *testing.T) {
	t.Parallel()

	fsm := testutil.NewMockFilesystemManager()
	svc := newService(t, fsm)

	one := audit.NewSnapshot("one", audit.FieldPath)
	if _, err := svc.Diff([]*audit.Snapshot{one}); err == nil {
		t.Error("Diff() with one snapshot error = nil, want error")
	}
}
