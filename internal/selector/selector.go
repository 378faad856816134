// Package selector picks the distinguished "true" path out of a duplicate
// set for the actor to leave untouched.
package selector

import (
	"strings"

	"github.com/dupecat/dupecat/internal/vfs"
)

// Selector chooses a representative path from a duplicate set. stat
// resolves a path's metadata on demand rather than precomputing it.
type Selector interface {
	Select(set []string, stat func(string) (vfs.Info, error)) string
}

// ByPathLength selects the path with the fewest components (or the most,
// when Reverse is set).
type ByPathLength struct {
	Reverse bool
}

func pathComponents(p string) int {
	p = strings.Trim(p, "/")
	if p == "" {
		return 0
	}
	return len(strings.Split(p, "/"))
}

func (s ByPathLength) Select(set []string, _ func(string) (vfs.Info, error)) string {
	best := set[0]
	bestScore := pathComponents(best)
	for _, p := range set[1:] {
		score := pathComponents(p)
		if s.Reverse {
			if score > bestScore {
				best, bestScore = p, score
			}
		} else if score < bestScore {
			best, bestScore = p, score
		}
	}
	return best
}

// ByModTime selects the path whose file has the most recent modification
// time (or the oldest, when Reverse is set). A stat failure is treated as
// disqualifying: a path whose metadata can't be read never wins a tie.
type ByModTime struct {
	Reverse bool
}

func (s ByModTime) Select(set []string, stat func(string) (vfs.Info, error)) string {
	best := set[0]
	bestInfo, bestErr := stat(best)
	for _, p := range set[1:] {
		info, err := stat(p)
		if err != nil {
			continue
		}
		if bestErr != nil {
			best, bestInfo, bestErr = p, info, nil
			continue
		}
		newer := info.ModTime.After(bestInfo.ModTime)
		if s.Reverse {
			if info.ModTime.Before(bestInfo.ModTime) {
				best, bestInfo = p, info
			}
		} else if newer {
			best, bestInfo = p, info
		}
	}
	return best
}
