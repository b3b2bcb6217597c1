package audit

import "io"

// Vault provides an interface for snapshot archive storage backends.
// All operations use io.Reader/io.Writer for streaming so large snapshot
// files never have to be held in memory whole.
type Vault interface {
	// PutSnapshot stores a persisted snapshot file under the given name.
	// size is the number of bytes that will be read from r. Storing an
	// existing name overwrites the previous archive.
	PutSnapshot(name string, r io.Reader, size int64) error

	// GetSnapshot retrieves the archive stored under name and writes it to w.
	GetSnapshot(name string, w io.Writer) error

	// ListSnapshots returns the stored archive names in lexical order.
	ListSnapshots() ([]string, error)

	// ValidateSetup verifies that the vault is accessible and properly configured.
	ValidateSetup() error
}
