// Package orchestrator wires the walker, catalog, selector, and actor
// into a single walk-catalog-select-act pass, run sequentially with no
// goroutines or channels.
package orchestrator

import (
	"fmt"

	"github.com/dupecat/dupecat/internal/actor"
	"github.com/dupecat/dupecat/internal/catalog"
	"github.com/dupecat/dupecat/internal/hashfn"
	"github.com/dupecat/dupecat/internal/logging"
	"github.com/dupecat/dupecat/internal/progress"
	"github.com/dupecat/dupecat/internal/selector"
	"github.com/dupecat/dupecat/internal/vfs"
	"github.com/dupecat/dupecat/internal/walker"
)

// Config holds everything one run needs.
type Config struct {
	FS                vfs.FS
	Roots             []string
	BlacklistDirs     []string
	BlacklistPatterns []string
	HashFn            hashfn.Func
	Selector          selector.Selector
	Actor             actor.Actor
	ShowProgress      bool
	Log               *logging.Logger
}

// FileError pairs a path with the error encountered processing it,
// collected instead of aborting the run.
type FileError struct {
	Path string
	Err  error
}

func (e *FileError) Error() string { return fmt.Sprintf("%s: %v", e.Path, e.Err) }

// Report summarizes one run: how much was traversed, what was found, and
// what was reclaimed.
type Report struct {
	FilesTraversed   int
	DuplicateSets    [][]string
	BytesRecoverable int64
	Errors           []*FileError
}

// Run performs one walk → catalog → select → act pass.
func Run(cfg Config) (Report, error) {
	w, err := walker.New(cfg.FS, cfg.BlacklistDirs, cfg.BlacklistPatterns, cfg.Log)
	if err != nil {
		return Report{}, fmt.Errorf("orchestrator: %w", err)
	}

	paths, err := w.Walk(cfg.Roots)
	if err != nil {
		return Report{}, fmt.Errorf("orchestrator: walk: %w", err)
	}

	report := Report{FilesTraversed: len(paths)}
	if len(paths) == 0 {
		return report, nil
	}

	bar := progress.New(cfg.ShowProgress, int64(len(paths)))
	cat := catalog.New(cfg.FS, cfg.HashFn)
	for _, p := range paths {
		if err := cat.Insert(p); err != nil {
			report.Errors = append(report.Errors, &FileError{Path: p, Err: err})
			cfg.Log.Warnf("%v", err)
		}
		bar.Add(1)
	}

	sets := cat.DuplicateSets()
	report.DuplicateSets = sets

	for _, set := range sets {
		representative := actor.ForSelector(cfg.FS, cfg.Selector, set)
		saved, err := cfg.Actor.Act(set, representative)
		if err != nil {
			report.Errors = append(report.Errors, &FileError{Path: representative, Err: err})
			cfg.Log.Warnf("%v", err)
			continue
		}
		report.BytesRecoverable += saved
	}

	bar.Finish(stringer("done"))
	return report, nil
}

type stringer string

func (s stringer) String() string { return string(s) }
