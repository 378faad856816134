// Package actor applies print, delete, or hard-link actions to a
// duplicate set's non-representative paths.
package actor

import (
	"fmt"
	"path/filepath"

	"github.com/dupecat/dupecat/internal/logging"
	"github.com/dupecat/dupecat/internal/selector"
	"github.com/dupecat/dupecat/internal/vfs"
)

// Actor acts on every path in set except representative, and reports the
// number of bytes notionally reclaimed — counted once per distinct
// on-disk identity among the duplicates acted on, since two duplicate
// paths that are already hard links to each other free no additional
// space when both are removed or replaced. A failure on one path is
// logged and does not stop the rest of the set from being attempted.
type Actor interface {
	Act(set []string, representative string) (bytesSaved int64, err error)
}

func otherPaths(set []string, representative string) []string {
	out := make([]string, 0, len(set)-1)
	for _, p := range set {
		if p != representative {
			out = append(out, p)
		}
	}
	return out
}

// Printer emits human-readable lines naming the representative and each
// duplicate, without touching the filesystem.
type Printer struct {
	fs  vfs.FS
	log *logging.Logger
	out func(string, ...any) (int, error)
}

// NewPrinter creates a Printer that writes via out (typically fmt.Printf).
func NewPrinter(fs vfs.FS, log *logging.Logger, out func(string, ...any) (int, error)) *Printer {
	return &Printer{fs: fs, log: log, out: out}
}

func (p *Printer) Act(set []string, representative string) (int64, error) {
	p.out("%q is the true file\n", representative)
	repInfo, repErr := p.fs.Stat(representative)
	if repErr != nil {
		p.log.Warnf("couldn't stat %s: %v", representative, repErr)
	}

	seen := map[vfs.Identity]bool{}
	var saved int64
	for _, dup := range otherPaths(set, representative) {
		p.out("\t%q is a duplicate\n", dup)
		if repErr != nil {
			continue
		}
		dupInfo, statErr := p.fs.Stat(dup)
		if statErr != nil {
			p.log.Warnf("couldn't stat %s: %v", dup, statErr)
			continue
		}
		if id := dupInfo.Identity(); !seen[id] {
			seen[id] = true
			saved += repInfo.Size
		}
	}
	return saved, nil
}

// Deleter removes every non-representative path.
type Deleter struct {
	fs  vfs.FS
	log *logging.Logger
}

func NewDeleter(fs vfs.FS, log *logging.Logger) *Deleter {
	return &Deleter{fs: fs, log: log}
}

func (d *Deleter) Act(set []string, representative string) (int64, error) {
	repInfo, repErr := d.fs.Stat(representative)

	seen := map[vfs.Identity]bool{}
	var saved int64
	for _, dup := range otherPaths(set, representative) {
		dupInfo, statErr := d.fs.Stat(dup)
		if err := d.fs.Remove(dup); err != nil {
			d.log.Warnf("couldn't delete %s: %v", dup, err)
			continue
		}
		if repErr != nil || statErr != nil {
			continue
		}
		if id := dupInfo.Identity(); !seen[id] {
			seen[id] = true
			saved += repInfo.Size
		}
	}
	return saved, nil
}

const tmpSuffix = ".dupecat.tmp"

// Linker replaces every non-representative path with a hard link to the
// representative, refusing to cross device boundaries.
type Linker struct {
	fs  vfs.FS
	log *logging.Logger
}

func NewLinker(fs vfs.FS, log *logging.Logger) *Linker {
	return &Linker{fs: fs, log: log}
}

func (l *Linker) Act(set []string, representative string) (int64, error) {
	repInfo, err := l.fs.Stat(representative)
	if err != nil {
		return 0, fmt.Errorf("actor: stat representative %s: %w", representative, err)
	}

	seen := map[vfs.Identity]bool{}
	var saved int64
	for _, dup := range otherPaths(set, representative) {
		dupInfo, statErr := l.fs.Stat(dup)
		if err := l.replace(dup, representative, repInfo); err != nil {
			l.log.Warnf("couldn't link %s -> %s: %v", dup, representative, err)
			continue
		}
		if statErr != nil {
			continue
		}
		if id := dupInfo.Identity(); !seen[id] {
			seen[id] = true
			saved += repInfo.Size
		}
	}
	return saved, nil
}

// replace links representative into dup's place atomically: a new hard
// link is created at a sibling temp path, then renamed over dup, so the
// operation never leaves a window where dup names nothing at all.
func (l *Linker) replace(dup, representative string, repInfo vfs.Info) error {
	dupDirInfo, err := l.fs.Stat(filepath.Dir(dup))
	if err != nil {
		return fmt.Errorf("stat parent of %s: %w", dup, err)
	}
	if dupDirInfo.Dev != repInfo.Dev {
		return vfs.ErrCrossDevice
	}

	tmp := dup + tmpSuffix
	if err := l.fs.Link(tmp, representative); err != nil {
		return err
	}
	if err := l.fs.Rename(tmp, dup); err != nil {
		_ = l.fs.Remove(tmp)
		return err
	}
	return nil
}

// ForSelector adapts a selector.Selector's Select into the fs.Stat closure
// it needs, sparing every caller from wiring that plumbing themselves.
func ForSelector(fs vfs.FS, sel selector.Selector, set []string) string {
	return sel.Select(set, fs.Stat)
}
