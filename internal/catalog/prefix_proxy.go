package catalog

import (
	"fmt"

	"github.com/dupecat/dupecat/internal/vfs"
)

type proxyState int

const (
	stateDelay proxyState = iota
	stateThunk
)

// prefixProxy is level 2 of the sieve: it groups files that already share a
// size, keyed by fingerprint. In Delay state it holds exactly one file
// identity with no content read; in Thunk state it holds one hashProxy per
// fingerprint bucket plus a shortcut from identity to fingerprint so a
// hard link to an already-seen identity never triggers a re-read.
type prefixProxy struct {
	state proxyState

	// Delay payload.
	delayID    vfs.Identity
	delayPaths []string

	// Thunk payload.
	buckets  map[fingerprint]*hashProxy
	shortcut map[vfs.Identity]fingerprint
}

func newPrefixDelay(id vfs.Identity, path string) *prefixProxy {
	return &prefixProxy{state: stateDelay, delayID: id, delayPaths: []string{path}}
}

// insert adds path (with identity id) to this prefix bucket, promoting
// from Delay to Thunk on a second distinct identity and never
// re-fingerprinting an identity already in the shortcut map.
func (p *prefixProxy) insert(c *Catalog, id vfs.Identity, path string) error {
	switch p.state {
	case stateDelay:
		if id == p.delayID {
			p.delayPaths = append(p.delayPaths, path)
			return nil
		}
		return p.promote(c, id, path)
	case stateThunk:
		if fp, ok := p.shortcut[id]; ok {
			return p.buckets[fp].insert(c, id, []string{path})
		}
		fp, err := c.fingerprint(path)
		if err != nil {
			return fmt.Errorf("catalog: fingerprint %s: %w", path, err)
		}
		p.shortcut[id] = fp
		if hp, ok := p.buckets[fp]; ok {
			return hp.insert(c, id, []string{path})
		}
		p.buckets[fp] = newHashDelay(id, path)
		return nil
	default:
		return fmt.Errorf("catalog: invalid prefix proxy state %d", p.state)
	}
}

// promote transitions a Delay prefix proxy to Thunk on the arrival of a
// second, distinct identity. Both the held file and the
// incoming one are fingerprinted; a match merges them into a single hash
// proxy (itself promoted immediately, since the two identities still
// differ and the hash stage must resolve them), a mismatch buckets them
// separately.
func (p *prefixProxy) promote(c *Catalog, newID vfs.Identity, newPath string) error {
	heldID, heldPaths := p.delayID, p.delayPaths
	heldPath := heldPaths[0]

	heldFP, err := c.fingerprint(heldPath)
	if err != nil {
		return fmt.Errorf("catalog: fingerprint %s: %w", heldPath, err)
	}
	newFP, err := c.fingerprint(newPath)
	if err != nil {
		return fmt.Errorf("catalog: fingerprint %s: %w", newPath, err)
	}

	buckets := map[fingerprint]*hashProxy{}
	shortcut := map[vfs.Identity]fingerprint{newID: newFP, heldID: heldFP}

	if heldFP == newFP {
		hp := newHashDelayMulti(heldID, heldPaths)
		if err := hp.insert(c, newID, []string{newPath}); err != nil {
			return err
		}
		buckets[heldFP] = hp
	} else {
		buckets[newFP] = newHashDelay(newID, newPath)
		buckets[heldFP] = newHashDelayMulti(heldID, heldPaths)
	}

	p.state = stateThunk
	p.buckets = buckets
	p.shortcut = shortcut
	p.delayPaths = nil
	return nil
}

// repeats returns every duplicate set (length ≥ 2) reachable from this
// prefix proxy.
func (p *prefixProxy) repeats() [][]string {
	switch p.state {
	case stateDelay:
		if len(p.delayPaths) >= 2 {
			return [][]string{p.delayPaths}
		}
		return nil
	case stateThunk:
		var all [][]string
		for _, hp := range p.buckets {
			all = append(all, hp.repeats()...)
		}
		return all
	default:
		return nil
	}
}
