// Package hash selects and runs the content digest algorithms supported by
// the audit tool.
package hash

import (
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"sort"
)

// DefaultAlgorithm is used when the config and CLI name no algorithm.
const DefaultAlgorithm = "sha256"

// DefaultChunkSize bounds the per-read buffer when streaming file content
// through a digest, so peak memory stays fixed regardless of file size.
const DefaultChunkSize = 128 * 1024 * 1024 // 128 MiB

// constructors maps each supported algorithm name to a factory returning a
// fresh digest instance. Digest state is never reused across files.
var constructors = map[string]func() hash.Hash{
	"md5":    md5.New,
	"sha1":   sha1.New,
	"sha224": sha256.New224,
	"sha256": sha256.New,
	"sha384": sha512.New384,
	"sha512": sha512.New,
}

// Algorithms returns the supported algorithm names in lexical order.
func Algorithms() []string {
	names := make([]string, 0, len(constructors))
	for name := range constructors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Hasher streams content through a named digest algorithm in fixed-size
// chunks. It implements audit.Hasher.
type Hasher struct {
	name      string
	construct func() hash.Hash
	chunkSize int
}

// New returns a Hasher for the named algorithm. Unknown names are rejected —
// a typoed algorithm must never silently degrade to the default.
// chunkSize <= 0 selects DefaultChunkSize.
func New(name string, chunkSize int) (*Hasher, error) {
	construct, ok := constructors[name]
	if !ok {
		return nil, fmt.Errorf("unknown hash algorithm %q (supported: %v)", name, Algorithms())
	}
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	return &Hasher{name: name, construct: construct, chunkSize: chunkSize}, nil
}

// Name returns the algorithm name.
func (h *Hasher) Name() string { return h.name }

// Sum reads r to completion through a freshly constructed digest and returns
// the lowercase hex digest. The chunk size caps the read buffer; the digest
// value is independent of it.
func (h *Hasher) Sum(r io.Reader) (string, error) {
	digest := h.construct()
	buf := make([]byte, h.chunkSize)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			digest.Write(buf[:n]) // hash.Hash.Write never returns an error
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("reading content: %w", err)
		}
	}
	return hex.EncodeToString(digest.Sum(nil)), nil
}
