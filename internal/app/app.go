package app

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"fsa-go/internal/audit"
	"fsa-go/internal/config"
	"fsa-go/internal/database"
	"fsa-go/internal/encode"
	"fsa-go/internal/encryption"
	"fsa-go/internal/fs"
	"fsa-go/internal/hash"
	"fsa-go/internal/vault"
)

// SnapshotFormat selects how a snapshot is serialized on disk.
type SnapshotFormat string

const (
	FormatJSON SnapshotFormat = "json"
	FormatCSV  SnapshotFormat = "csv"
)

// PassphraseFunc supplies a passphrase on demand, e.g. by prompting the user.
type PassphraseFunc func() (string, error)

// App is the application layer between the CLI and AuditService.
// It constructs all dependencies from config, exposes high-level operations
// that accept raw string paths, and manages the DB lifecycle on Close.
type App struct {
	cfg       *config.Config
	db        audit.Database
	vault     audit.Vault
	fsmgr     audit.FilesystemManager
	encryptor audit.Encryptor
	service   *audit.AuditService
	run       *AuditRun
	logFile   *os.File

	// decryption context cached for the session after the first Unlock
	decCtx audit.DecryptionContext
}

// NewApp creates a fully wired App from the given config.
// operation identifies the CLI command being run (e.g. "Audit", "Diff").
// extraIgnore holds ignore patterns from the command line, merged with the
// configured ones. The caller must call Close when done.
func NewApp(cfg *config.Config, operation string, parameters string, extraIgnore []string) (*App, error) {
	ignore := append(append([]string{}, cfg.Audit.Ignore...), extraIgnore...)
	fsmgr := fs.NewOSFilesystemManager(ignore)

	v, err := vault.NewVaultFromConfig(cfg.Vault)
	if err != nil {
		return nil, fmt.Errorf("creating vault: %w", err)
	}

	db, err := database.NewDatabaseFromConfig(cfg.Database, cfg.HostID)
	if err != nil {
		return nil, fmt.Errorf("creating database: %w", err)
	}

	enc, err := encryption.NewEncryptorFromConfig(cfg.Encryption)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating encryptor: %w", err)
	}

	opID := time.Now().UTC().Format("20060102T150405Z")
	logger, logFile, err := newLogger(cfg.LogDir, opID)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating logger: %w", err)
	}

	svc := audit.NewAuditService(fsmgr, &slogAdapter{l: logger}, audit.RealClock{})
	run := NewAuditRun(operation, parameters)

	return &App{
		cfg:       cfg,
		db:        db,
		vault:     v,
		fsmgr:     fsmgr,
		encryptor: enc,
		service:   svc,
		run:       run,
		logFile:   logFile,
	}, nil
}

// persistRun saves the audit run to the database, giving it an auto-increment ID.
// This should only be called for recorded commands.
func (a *App) persistRun() error {
	if a.run.Persisted() {
		return nil // already persisted
	}
	op, err := a.db.CreateAuditOperation(a.run.Operation, a.run.Parameters)
	if err != nil {
		return fmt.Errorf("persisting audit run: %w", err)
	}
	a.run.ID = op.ID
	return nil
}

// MarkFailed records that the current run ended in error.
func (a *App) MarkFailed() {
	a.run.Status = "error"
}

// AuditOptions control one audit run at the application level.
type AuditOptions struct {
	Recursive bool
	Algorithm string // overrides the configured default when non-empty
	OnRecord  func(*audit.Record) error
}

// Audit walks the given roots and produces a Snapshot of their files.
// The run is recorded in the history database.
func (a *App) Audit(roots []string, opts AuditOptions) (*audit.Snapshot, error) {
	if err := a.persistRun(); err != nil {
		return nil, err
	}

	algorithm := opts.Algorithm
	if algorithm == "" {
		algorithm = a.cfg.Audit.Algorithm
	}
	hasher, err := hash.New(algorithm, int(a.cfg.Audit.ChunkSizeBytes))
	if err != nil {
		return nil, err
	}

	snap, err := a.service.Audit(roots, audit.AuditOptions{
		Recursive: opts.Recursive,
		Hasher:    hasher,
		OnRecord:  opts.OnRecord,
	})
	if err != nil {
		return nil, err
	}

	a.run.FileCount = int64(snap.Len())
	return snap, nil
}

// SaveSnapshot writes a snapshot to outPath in the given format.
// When encrypt is true the encoded snapshot is age-encrypted with the
// configured public key and ".age" is appended to the path.
// Returns the path actually written.
func (a *App) SaveSnapshot(snap *audit.Snapshot, outPath string, format SnapshotFormat, encrypt bool) (string, error) {
	var encodeFn func(io.Writer, *audit.Snapshot) error
	switch format {
	case FormatJSON:
		encodeFn = encode.WriteSnapshotJSON
	case FormatCSV:
		encodeFn = encode.WriteSnapshotCSV
	default:
		return "", fmt.Errorf("unknown snapshot format: %q", format)
	}

	write := encodeFn
	if encrypt {
		if !a.encryptor.IsConfigured() {
			return "", fmt.Errorf("encryption requested but keys are not configured (run `fsa keys init`)")
		}
		outPath += ".age"
		write = func(w io.Writer, s *audit.Snapshot) error {
			var buf bytes.Buffer
			if err := encodeFn(&buf, s); err != nil {
				return err
			}
			return a.encryptor.Encrypt(&buf, w)
		}
	}

	if err := encode.WriteSnapshotFile(outPath, snap, write); err != nil {
		return "", err
	}
	return outPath, nil
}

// LoadSnapshot reads a persisted snapshot from path. The serialization is
// chosen by extension: .json, .csv, or either with a trailing .age for
// encrypted archives. passphrase is only invoked for encrypted input, once
// per session. The snapshot is named after the file's base name.
func (a *App) LoadSnapshot(path string, passphrase PassphraseFunc) (*audit.Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening snapshot file: %w", err)
	}
	defer f.Close()

	name := filepath.Base(path)
	var r io.Reader = f

	inner := path
	if strings.HasSuffix(path, ".age") {
		dec, err := a.unlock(passphrase)
		if err != nil {
			return nil, err
		}
		var buf bytes.Buffer
		if err := dec.Decrypt(f, &buf); err != nil {
			return nil, fmt.Errorf("decrypting %s: %w", path, err)
		}
		r = &buf
		inner = strings.TrimSuffix(path, ".age")
	}

	switch filepath.Ext(inner) {
	case ".json":
		return encode.ReadSnapshotJSON(r, name)
	case ".csv":
		return encode.ReadSnapshotCSV(r, name)
	default:
		return nil, fmt.Errorf("unknown snapshot extension on %s (want .json, .csv, or .age)", path)
	}
}

// unlock returns the session's decryption context, prompting for the
// passphrase on first use.
func (a *App) unlock(passphrase PassphraseFunc) (audit.DecryptionContext, error) {
	if a.decCtx != nil {
		return a.decCtx, nil
	}
	if passphrase == nil {
		return nil, fmt.Errorf("encrypted snapshot requires a passphrase")
	}
	pass, err := passphrase()
	if err != nil {
		return nil, err
	}
	dec, err := a.encryptor.Unlock(pass)
	if err != nil {
		return nil, fmt.Errorf("unlocking private key: %w", err)
	}
	a.decCtx = dec
	return dec, nil
}

// Diff loads the given snapshot files and compares them. Order matters: the
// first file fixes the path order and group-id labels of the report.
func (a *App) Diff(paths []string, passphrase PassphraseFunc) (*audit.DiffReport, error) {
	if err := a.persistRun(); err != nil {
		return nil, err
	}

	snapshots := make([]*audit.Snapshot, 0, len(paths))
	for _, p := range paths {
		snap, err := a.LoadSnapshot(p, passphrase)
		if err != nil {
			return nil, fmt.Errorf("loading %s: %w", p, err)
		}
		snapshots = append(snapshots, snap)
	}

	report, err := a.service.Diff(snapshots)
	if err != nil {
		return nil, err
	}

	a.run.FileCount = int64(len(report.Paths))
	return report, nil
}

// PublishSnapshot uploads a snapshot file to the vault under its base name.
func (a *App) PublishSnapshot(rawPath string) error {
	if err := a.vault.ValidateSetup(); err != nil {
		return fmt.Errorf("validating vault: %w", err)
	}

	f, err := os.Open(rawPath)
	if err != nil {
		return fmt.Errorf("opening snapshot file: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat snapshot file: %w", err)
	}

	name := filepath.Base(rawPath)
	if err := a.vault.PutSnapshot(name, f, info.Size()); err != nil {
		return fmt.Errorf("publishing snapshot %s: %w", name, err)
	}
	return nil
}

// FetchSnapshot downloads a named snapshot from the vault to destPath.
func (a *App) FetchSnapshot(name, destPath string) error {
	f, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("creating destination file: %w", err)
	}
	defer f.Close()

	if err := a.vault.GetSnapshot(name, f); err != nil {
		return fmt.Errorf("fetching snapshot %s: %w", name, err)
	}
	return nil
}

// ListSnapshots returns the names of snapshots stored in the vault.
func (a *App) ListSnapshots() ([]string, error) {
	return a.vault.ListSnapshots()
}

// History returns the most recent recorded runs.
func (a *App) History(limit int) ([]*audit.Operation, error) {
	return a.db.ListAuditOperations(limit)
}

// InitKeys generates the encryption key pair, protecting the private key
// with the given passphrase.
func (a *App) InitKeys(passphrase string) error {
	return a.encryptor.Setup(passphrase)
}

// Close finalizes the run record and closes all resources.
func (a *App) Close() error {
	var firstErr error

	if a.run.Persisted() {
		if err := a.db.FinishAuditOperation(a.run.ID, a.run.Status, a.run.FileCount); err != nil {
			firstErr = fmt.Errorf("finishing audit run: %w", err)
		}
	}

	if err := a.db.Close(); err != nil {
		if firstErr == nil {
			firstErr = fmt.Errorf("closing database: %w", err)
		}
	}

	if a.logFile != nil {
		a.logFile.Close()
	}

	return firstErr
}
