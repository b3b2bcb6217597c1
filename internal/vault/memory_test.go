package vault

import (
	"bytes"
	"reflect"
	"strings"
	"testing"
)

func TestMemoryVault_PutAndGetSnapshot(t *testing.T) {
	t.Parallel()

	vault := NewMemoryVault("test-vault")

	tests := []struct {
		name     string
		snapshot string
		content  string
	}{
		{name: "store and retrieve", snapshot: "base.json", content: `[{"path":"/a"}]`},
		{name: "store empty", snapshot: "empty.json", content: ""},
		{name: "store large", snapshot: "large.json", content: strings.Repeat("x", 10000)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := strings.NewReader(tt.content)
			if err := vault.PutSnapshot(tt.snapshot, r, int64(len(tt.content))); err != nil {
				t.Fatalf("PutSnapshot() error = %v", err)
			}

			var buf bytes.Buffer
			if err := vault.GetSnapshot(tt.snapshot, &buf); err != nil {
				t.Fatalf("GetSnapshot() error = %v", err)
			}
			if got := buf.String(); got != tt.content {
				t.Errorf("GetSnapshot() = %q, want %q", got, tt.content)
			}
		})
	}
}

func TestMemoryVault_SizeMismatch(t *testing.T) {
	t.Parallel()

	vault := NewMemoryVault("test-vault")
	err := vault.PutSnapshot("s.json", strings.NewReader("abc"), 99)
	if err == nil {
		t.Error("PutSnapshot() error = nil on size mismatch, want error")
	}
}

func TestMemoryVault_GetMissing(t *testing.T) {
	t.Parallel()

	vault := NewMemoryVault("test-vault")
	var buf bytes.Buffer
	if err := vault.GetSnapshot("nope.json", &buf); err == nil {
		t.Error("GetSnapshot() error = nil for missing snapshot, want error")
	}
}

func TestMemoryVault_ListSnapshotsSorted(t *testing.T) {
	t.Parallel()

	vault := NewMemoryVault("test-vault")
	for _, name := range []string{"c.json", "a.json", "b.json"} {
		if err := vault.PutSnapshot(name, strings.NewReader("x"), 1); err != nil {
			t.Fatalf("PutSnapshot(%q) error = %v", name, err)
		}
	}

	got, err := vault.ListSnapshots()
	if err != nil {
		t.Fatalf("ListSnapshots() error = %v", err)
	}
	want := []string{"a.json", "b.json", "c.json"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ListSnapshots() = %v, want %v", got, want)
	}
}

func TestMemoryVault_Overwrite(t *testing.T) {
	t.Parallel()

	vault := NewMemoryVault("test-vault")
	if err := vault.PutSnapshot("s.json", strings.NewReader("old"), 3); err != nil {
		t.Fatalf("PutSnapshot() error = %v", err)
	}
	if err := vault.PutSnapshot("s.json", strings.NewReader("newer"), 5); err != nil {
		t.Fatalf("PutSnapshot() error = %v", err)
	}

	var buf bytes.Buffer
	if err := vault.GetSnapshot("s.json", &buf); err != nil {
		t.Fatalf("GetSnapshot() error = %v", err)
	}
	if buf.String() != "newer" {
		t.Errorf("GetSnapshot() = %q, want %q", buf.String(), "newer")
	}
}
