package app

import (
	"os"
	"path/filepath"
	"testing"

	"fsa-go/internal/audit"
	"fsa-go/internal/config"
)

// newTestApp wires an App against a temp directory, with memory database and
// vault and the deterministic test encryptor.
func newTestApp(t *testing.T, operation string) *App {
	t.Helper()

	cfg := config.NewConfig("test-host", t.TempDir())
	cfg.Audit.ChunkSizeBytes = 64 * 1024
	cfg.Database.Type = "memory"
	cfg.Vault = config.VaultConfig{Type: "memory", Name: "test"}
	cfg.Encryption.Type = "test"

	a, err := NewApp(cfg, operation, "", nil)
	if err != nil {
		t.Fatalf("NewApp() error = %v", err)
	}
	t.Cleanup(func() { a.Close() })
	return a
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
}

func TestApp_AuditAndHistory(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.txt"), "alpha")
	writeFile(t, filepath.Join(dir, "b.txt"), "beta")

	a := newTestApp(t, "Audit")

	var seen int
	snap, err := a.Audit([]string{dir}, AuditOptions{
		OnRecord: func(r *audit.Record) error {
			seen++
			return nil
		},
	})
	if err != nil {
		t.Fatalf("Audit() error = %v", err)
	}
	if snap.Len() != 2 {
		t.Errorf("Len() = %d, want 2", snap.Len())
	}
	if seen != 2 {
		t.Errorf("OnRecord called %d times, want 2", seen)
	}

	ops, err := a.History(10)
	if err != nil {
		t.Fatalf("History() error = %v", err)
	}
	if len(ops) != 1 {
		t.Fatalf("len(ops) = %d, want 1", len(ops))
	}
	if ops[0].Operation != "Audit" {
		t.Errorf("Operation = %q, want Audit", ops[0].Operation)
	}
}

func TestApp_SaveLoadSnapshot(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.txt"), "alpha")

	a := newTestApp(t, "Audit")
	snap, err := a.Audit([]string{dir}, AuditOptions{})
	if err != nil {
		t.Fatalf("Audit() error = %v", err)
	}

	tests := []struct {
		name    string
		file    string
		format  SnapshotFormat
		encrypt bool
	}{
		{name: "json", file: "snap.json", format: FormatJSON},
		{name: "csv", file: "snap.csv", format: FormatCSV},
		{name: "encrypted json", file: "enc.json", format: FormatJSON, encrypt: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := filepath.Join(dir, tt.file)
			written, err := a.SaveSnapshot(snap, out, tt.format, tt.encrypt)
			if err != nil {
				t.Fatalf("SaveSnapshot() error = %v", err)
			}
			if tt.encrypt && filepath.Ext(written) != ".age" {
				t.Errorf("written = %q, want .age suffix", written)
			}

			loaded, err := a.LoadSnapshot(written, func() (string, error) { return "any", nil })
			if err != nil {
				t.Fatalf("LoadSnapshot() error = %v", err)
			}
			if loaded.Len() != snap.Len() {
				t.Errorf("Len() = %d, want %d", loaded.Len(), snap.Len())
			}
			if loaded.Name != filepath.Base(written) {
				t.Errorf("Name = %q, want %q", loaded.Name, filepath.Base(written))
			}
		})
	}
}

func TestApp_LoadSnapshot_UnknownExtension(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "snap.xml")
	writeFile(t, path, "<xml/>")

	a := newTestApp(t, "Diff")
	if _, err := a.LoadSnapshot(path, nil); err == nil {
		t.Error("LoadSnapshot() error = nil for unknown extension, want error")
	}
}

func TestApp_Diff(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.txt"), "alpha")
	writeFile(t, filepath.Join(dir, "b.txt"), "beta")

	a := newTestApp(t, "Audit")
	snap, err := a.Audit([]string{dir}, AuditOptions{})
	if err != nil {
		t.Fatalf("Audit() error = %v", err)
	}

	first, err := a.SaveSnapshot(snap, filepath.Join(dir, "first.json"), FormatJSON, false)
	if err != nil {
		t.Fatalf("SaveSnapshot() error = %v", err)
	}

	// Modify one file and audit again.
	writeFile(t, filepath.Join(dir, "b.txt"), "changed content")
	snap2, err := a.Audit([]string{dir}, AuditOptions{})
	if err != nil {
		t.Fatalf("Audit() error = %v", err)
	}
	second, err := a.SaveSnapshot(snap2, filepath.Join(dir, "second.json"), FormatJSON, false)
	if err != nil {
		t.Fatalf("SaveSnapshot() error = %v", err)
	}

	report, err := a.Diff([]string{first, second}, nil)
	if err != nil {
		t.Fatalf("Diff() error = %v", err)
	}

	byPath := map[any]audit.PathDiff{}
	for _, pd := range report.Paths {
		byPath[pd.Key] = pd
	}

	// The snapshot files themselves were audited in the second run only, so
	// the report covers a.txt, b.txt, and first.json. a.txt is unchanged.
	aDiff := byPath[filepath.Join(dir, "a.txt")]
	if aDiff.Entries[0].Combined != aDiff.Entries[1].Combined {
		t.Error("unchanged file got differing combined ids")
	}

	bDiff := byPath[filepath.Join(dir, "b.txt")]
	if bDiff.Entries[0].Combined == bDiff.Entries[1].Combined {
		t.Error("changed file got matching combined ids")
	}
}

func TestApp_VaultPublishFetchList(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "snap.json")
	writeFile(t, path, `[]`)

	a := newTestApp(t, "PublishSnapshot")

	if err := a.PublishSnapshot(path); err != nil {
		t.Fatalf("PublishSnapshot() error = %v", err)
	}

	names, err := a.ListSnapshots()
	if err != nil {
		t.Fatalf("ListSnapshots() error = %v", err)
	}
	if len(names) != 1 || names[0] != "snap.json" {
		t.Fatalf("ListSnapshots() = %v, want [snap.json]", names)
	}

	dest := filepath.Join(dir, "fetched.json")
	if err := a.FetchSnapshot("snap.json", dest); err != nil {
		t.Fatalf("FetchSnapshot() error = %v", err)
	}
	data, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if string(data) != `[]` {
		t.Errorf("fetched = %q, want %q", data, `[]`)
	}
}
