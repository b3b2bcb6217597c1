package audit

import "io"

// Hasher computes content digests. Implementations must construct a fresh
// digest instance per Sum call — digest state is never shared between files.
type Hasher interface {
	// Sum streams r to completion and returns the lowercase hex digest.
	Sum(r io.Reader) (string, error)

	// Name returns the algorithm name, e.g. "sha256".
	Name() string
}
