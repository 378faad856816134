package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/dupecat/dupecat/internal/actor"
	"github.com/dupecat/dupecat/internal/hashfn"
	"github.com/dupecat/dupecat/internal/logging"
	"github.com/dupecat/dupecat/internal/orchestrator"
	"github.com/dupecat/dupecat/internal/selector"
	"github.com/dupecat/dupecat/internal/vfs"
)

// options holds the CLI flag values runDupecat reads. --path-len and
// --print select the defaults and are bound to locals in newRootCmd only
// so they can take part in the mutual-exclusion checks.
type options struct {
	skipDirs       []string
	skipRegex      []string
	paranoid       bool
	newestFile     bool
	invertSelector bool
	delete         bool
	link           bool
	noProgress     bool
}

// newRootCmd builds the dupecat command: positional root paths plus the
// blacklist, digest, selector, and action flags from the CLI surface
// table.
func newRootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:     "dupecat [paths...]",
		Short:   "Find and act on duplicate files",
		Version: version + " (" + commit + ")",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return runDupecat(args, opts)
		},
	}

	cmd.Flags().StringSliceVarP(&opts.skipDirs, "skip", "x", nil, "Blacklist a directory (repeatable)")
	cmd.Flags().StringSliceVarP(&opts.skipRegex, "skip-re", "o", nil, "Blacklist paths matching a regex (repeatable)")
	cmd.Flags().BoolVarP(&opts.paranoid, "paranoid", "p", false, "Use a 256-bit digest instead of the default 128-bit one")

	var pathLen bool
	cmd.Flags().BoolVar(&pathLen, "path-len", false, "Use the path-length selector (default)")
	cmd.Flags().BoolVar(&opts.newestFile, "newest-file", false, "Use the modification-time selector")
	cmd.MarkFlagsMutuallyExclusive("path-len", "newest-file")

	cmd.Flags().BoolVar(&opts.invertSelector, "invert-selector", false, "Reverse the selector's ordering")

	var printAction bool
	cmd.Flags().BoolVar(&printAction, "print", false, "Print duplicates (default)")
	cmd.Flags().BoolVar(&opts.delete, "delete", false, "Delete non-representative duplicates")
	cmd.Flags().BoolVar(&opts.link, "link", false, "Replace non-representative duplicates with hard links")
	cmd.MarkFlagsMutuallyExclusive("print", "delete", "link")

	cmd.Flags().BoolVar(&opts.noProgress, "no-progress", false, "Disable progress output")

	return cmd
}

func runDupecat(roots []string, opts *options) error {
	log := logging.FromEnv()
	fs := vfs.OS{}

	hashFn := hashfn.Fast
	if opts.paranoid {
		hashFn = hashfn.Paranoid
	}

	var sel selector.Selector
	if opts.newestFile {
		sel = selector.ByModTime{Reverse: opts.invertSelector}
	} else {
		sel = selector.ByPathLength{Reverse: opts.invertSelector}
	}

	var act actor.Actor
	switch {
	case opts.delete:
		act = actor.NewDeleter(fs, log)
	case opts.link:
		act = actor.NewLinker(fs, log)
	default:
		act = actor.NewPrinter(fs, log, fmt.Printf)
	}

	cfg := orchestrator.Config{
		FS:                fs,
		Roots:             roots,
		BlacklistDirs:     opts.skipDirs,
		BlacklistPatterns: opts.skipRegex,
		HashFn:            hashFn,
		Selector:          sel,
		Actor:             act,
		ShowProgress:      !opts.noProgress,
		Log:               log,
	}

	report, err := orchestrator.Run(cfg)
	if err != nil {
		return err
	}

	fmt.Printf("traversed %d files\n", report.FilesTraversed)
	fmt.Printf("found %d duplicate set(s)\n", len(report.DuplicateSets))
	fmt.Printf("%s recoverable\n", humanize.Bytes(uint64(report.BytesRecoverable)))
	return nil
}
