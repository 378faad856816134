package catalog

import (
	"fmt"

	"github.com/dupecat/dupecat/internal/hashfn"
	"github.com/dupecat/dupecat/internal/vfs"
)

// hashProxy is level 3 of the sieve: it groups files that already share a
// size and fingerprint, keyed by full digest. Same shape as prefixProxy,
// one level down.
type hashProxy struct {
	state proxyState

	// Delay payload.
	delayID    vfs.Identity
	delayPaths []string

	// Thunk payload.
	buckets  map[hashfn.Digest][]string
	shortcut map[vfs.Identity]hashfn.Digest
}

func newHashDelay(id vfs.Identity, path string) *hashProxy {
	return &hashProxy{state: stateDelay, delayID: id, delayPaths: []string{path}}
}

func newHashDelayMulti(id vfs.Identity, paths []string) *hashProxy {
	return &hashProxy{state: stateDelay, delayID: id, delayPaths: paths}
}

// insert adds paths (all sharing identity id, e.g. several hard links
// discovered together during a prefix-proxy promotion) to this digest
// bucket, never re-digesting an identity already in the shortcut map.
func (hp *hashProxy) insert(c *Catalog, id vfs.Identity, paths []string) error {
	switch hp.state {
	case stateDelay:
		if id == hp.delayID {
			hp.delayPaths = append(hp.delayPaths, paths...)
			return nil
		}
		return hp.promote(c, id, paths)
	case stateThunk:
		if d, ok := hp.shortcut[id]; ok {
			hp.buckets[d] = append(hp.buckets[d], paths...)
			return nil
		}
		d, err := c.digest(paths[0])
		if err != nil {
			return fmt.Errorf("catalog: digest %s: %w", paths[0], err)
		}
		hp.shortcut[id] = d
		hp.buckets[d] = append(hp.buckets[d], paths...)
		return nil
	default:
		return fmt.Errorf("catalog: invalid hash proxy state %d", hp.state)
	}
}

// promote transitions a Delay hash proxy to Thunk on the arrival of a
// second, distinct identity: both files are fully digested, a match
// merges their paths into one bucket, a mismatch buckets them
// separately.
func (hp *hashProxy) promote(c *Catalog, newID vfs.Identity, newPaths []string) error {
	heldID, heldPaths := hp.delayID, hp.delayPaths

	heldDigest, err := c.digest(heldPaths[0])
	if err != nil {
		return fmt.Errorf("catalog: digest %s: %w", heldPaths[0], err)
	}
	newDigest, err := c.digest(newPaths[0])
	if err != nil {
		return fmt.Errorf("catalog: digest %s: %w", newPaths[0], err)
	}

	buckets := map[hashfn.Digest][]string{}
	shortcut := map[vfs.Identity]hashfn.Digest{newID: newDigest, heldID: heldDigest}

	if heldDigest == newDigest {
		buckets[heldDigest] = append(append([]string{}, heldPaths...), newPaths...)
	} else {
		buckets[newDigest] = newPaths
		buckets[heldDigest] = heldPaths
	}

	hp.state = stateThunk
	hp.buckets = buckets
	hp.shortcut = shortcut
	hp.delayPaths = nil
	return nil
}

// repeats returns every bucket (Thunk) or path list (Delay) of length ≥ 2.
func (hp *hashProxy) repeats() [][]string {
	switch hp.state {
	case stateDelay:
		if len(hp.delayPaths) >= 2 {
			return [][]string{hp.delayPaths}
		}
		return nil
	case stateThunk:
		var all [][]string
		for _, paths := range hp.buckets {
			if len(paths) >= 2 {
				all = append(all, paths)
			}
		}
		return all
	default:
		return nil
	}
}
