// Package catalog implements the lazy duplicate-detection sieve: files are
// grouped first by size, then by a prefix fingerprint, then by a full
// cryptographic digest, with expensive I/O deferred until a cheaper
// discriminant fails to separate two candidates.
//
// Each proxy level is a tagged struct (a state field plus the union of
// its Delay/Thunk payload fields) rather than an interface per state,
// since Go has no sum types. Promotion from Delay to Thunk rebuilds a
// proxy's fields in one assignment.
package catalog

import (
	"fmt"

	"github.com/dupecat/dupecat/internal/hashfn"
	"github.com/dupecat/dupecat/internal/vfs"
)

// DefaultFingerprintSize is the number of leading bytes read for the
// prefix-fingerprint stage (K in the catalog's three-stage sieve).
const DefaultFingerprintSize = 4096

// fingerprint is a fixed-size, zero-padded byte prefix, stored as a string
// so it is directly usable as a map key (Go byte slices aren't comparable).
type fingerprint string

// Catalog is the duplicate-detection sieve. Insert is its only mutator;
// DuplicateSets reads out the accumulated result. Not safe for concurrent
// use — dupecat's traversal and catalog insertion are single-threaded by
// design.
type Catalog struct {
	fs              vfs.FS
	hashFn          hashfn.Func
	fingerprintSize int
	bySize          map[int64]*prefixProxy
}

// New creates a Catalog that reads file content through fs and computes
// full digests with hashFn (hashfn.Fast or hashfn.Paranoid).
func New(fs vfs.FS, hashFn hashfn.Func) *Catalog {
	return &Catalog{
		fs:              fs,
		hashFn:          hashFn,
		fingerprintSize: DefaultFingerprintSize,
		bySize:          map[int64]*prefixProxy{},
	}
}

// WithFingerprintSize overrides the prefix length read at the fingerprint
// stage, primarily so tests can exercise the sieve without 4096-byte
// fixtures.
func (c *Catalog) WithFingerprintSize(k int) *Catalog {
	c.fingerprintSize = k
	return c
}

// Insert registers path for analysis. Across all Inserts, each file's
// fingerprint and digest are each read at most once; an Insert that
// promotes a Delay proxy also reads the file that proxy was holding.
func (c *Catalog) Insert(path string) error {
	info, err := c.fs.Stat(path)
	if err != nil {
		return fmt.Errorf("catalog: stat %s: %w", path, err)
	}
	id := info.Identity()

	p, ok := c.bySize[info.Size]
	if !ok {
		c.bySize[info.Size] = newPrefixDelay(id, path)
		return nil
	}
	return p.insert(c, id, path)
}

// DuplicateSets returns every accumulated duplicate set containing two or
// more paths. Set order, and path order within a set, are unspecified.
func (c *Catalog) DuplicateSets() [][]string {
	var all [][]string
	for _, p := range c.bySize {
		all = append(all, p.repeats()...)
	}
	return all
}

func (c *Catalog) fingerprint(path string) (fingerprint, error) {
	h, err := c.fs.Open(path)
	if err != nil {
		return "", err
	}
	defer h.Close()
	buf, err := h.Fingerprint(c.fingerprintSize)
	if err != nil {
		return "", err
	}
	return fingerprint(buf), nil
}

func (c *Catalog) digest(path string) (hashfn.Digest, error) {
	h, err := c.fs.Open(path)
	if err != nil {
		return nil, err
	}
	defer h.Close()
	return h.Digest(c.hashFn)
}
