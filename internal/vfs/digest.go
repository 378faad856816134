package vfs

import (
	"io"

	"github.com/dupecat/dupecat/internal/hashfn"
)

// digestBlockSize is the read buffer size used while streaming a file
// through a hash.Hash.
const digestBlockSize = 64 * 1024

// streamDigest feeds r through h's hasher in fixed-size blocks rather than
// buffering the whole file into memory.
func streamDigest(r io.Reader, h hashfn.Func) (hashfn.Digest, error) {
	hasher := h.New()
	buf := make([]byte, digestBlockSize)
	if _, err := io.CopyBuffer(hasher, r, buf); err != nil {
		return nil, err
	}
	return h.Wrap(hasher.Sum(nil)), nil
}
