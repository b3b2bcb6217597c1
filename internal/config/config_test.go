package config

import (
	"bytes"
	"path/filepath"
	"reflect"
	"testing"
)

func TestNewConfig_Defaults(t *testing.T) {
	t.Parallel()

	cfg := NewConfig("host-1", "/base")

	if cfg.HostID != "host-1" {
		t.Errorf("HostID = %q, want %q", cfg.HostID, "host-1")
	}
	if cfg.LogDir != filepath.Join("/base", "log") {
		t.Errorf("LogDir = %q", cfg.LogDir)
	}
	if cfg.Audit.Algorithm != "sha256" {
		t.Errorf("Audit.Algorithm = %q, want sha256", cfg.Audit.Algorithm)
	}
	if cfg.Audit.ChunkSizeBytes != 128*1024*1024 {
		t.Errorf("Audit.ChunkSizeBytes = %d, want 128MiB", cfg.Audit.ChunkSizeBytes)
	}
	if cfg.Database.Type != "sqlite" {
		t.Errorf("Database.Type = %q, want sqlite", cfg.Database.Type)
	}
	if cfg.Vault.Type != "filesystem" {
		t.Errorf("Vault.Type = %q, want filesystem", cfg.Vault.Type)
	}
	if cfg.Encryption.PublicKeyPath != filepath.Join("/base", "keys", "fsa.pub") {
		t.Errorf("Encryption.PublicKeyPath = %q", cfg.Encryption.PublicKeyPath)
	}
}

func TestManager_WriteReadRoundTrip(t *testing.T) {
	t.Parallel()

	orig := NewConfig("host-2", "/base")
	orig.Audit.Ignore = []string{"*.log", ".*"}
	orig.Audit.Algorithm = "sha512"

	m := &Manager{}
	var buf bytes.Buffer
	if err := m.Write(&buf, orig); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	got, err := m.Read(&buf)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}

	if !reflect.DeepEqual(got, orig) {
		t.Errorf("round trip = %+v, want %+v", got, orig)
	}
}

func TestInit(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "fsa.toml")
	cfg := NewConfig("host-3", dir)

	if err := Init(path, cfg); err != nil {
		t.Fatalf("Init() error = %v", err)
	}

	got, err := ReadFromFile(path)
	if err != nil {
		t.Fatalf("ReadFromFile() error = %v", err)
	}
	if got.HostID != "host-3" {
		t.Errorf("HostID = %q, want host-3", got.HostID)
	}

	// Second init must refuse to overwrite.
	if err := Init(path, cfg); err == nil {
		t.Error("Init() error = nil for existing config, want error")
	}
}
