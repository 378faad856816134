// Package walker performs the single-threaded directory traversal that
// discovers candidate regular-file paths: a depth-first walk tracking
// visited files and folders, a directory-prefix and regex blacklist,
// and bounded-depth symlink resolution.
package walker

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/dupecat/dupecat/internal/logging"
	"github.com/dupecat/dupecat/internal/vfs"
)

// maxSymlinkDepth bounds how many single-step symlink resolutions
// dispatch will follow before giving up, matching common OS ELOOP
// conventions. Kept alongside the visited-set check rather than in place
// of it: the visited set avoids redundant work on legitimate repeated
// targets, the depth bound guarantees termination against a pathological
// cycle of ever-distinct symlink names the visited set wouldn't catch.
const maxSymlinkDepth = 40

// Walker discovers regular files reachable from a set of root paths,
// applying directory and regex blacklists and resolving symlinks.
type Walker struct {
	fs vfs.FS
	log *logging.Logger

	blacklistDirs  []string
	blacklistRegex []*regexp.Regexp

	files   map[string]bool
	folders map[string]bool
}

// New creates a Walker over fs, blacklisting any traversed path beginning
// with one of blacklistDirs and any path whose string form matches one of
// blacklistPatterns. Malformed regexes are a fatal start-up error (spec's
// "Malformed blacklist regex... fatal at start-up"), so New returns an
// error rather than panicking.
func New(fs vfs.FS, blacklistDirs, blacklistPatterns []string, log *logging.Logger) (*Walker, error) {
	regexes := make([]*regexp.Regexp, 0, len(blacklistPatterns))
	for _, p := range blacklistPatterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, err
		}
		regexes = append(regexes, re)
	}
	dirs := make([]string, len(blacklistDirs))
	for i, d := range blacklistDirs {
		dirs[i] = filepath.Clean(d)
	}
	return &Walker{
		fs:             fs,
		log:            log,
		blacklistDirs:  dirs,
		blacklistRegex: regexes,
		files:          map[string]bool{},
		folders:        map[string]bool{},
	}, nil
}

// Walk traverses every root and returns the set of discovered regular-file
// paths, each appearing exactly once. Root paths are resolved against the
// current working directory if relative. A root that cannot be resolved or
// stat'd is logged and skipped; if every root is unusable, Walk returns an
// error instead of a silent empty result, since a run with no usable root
// has nothing to do and should fail at start-up rather than report success.
func (w *Walker) Walk(roots []string) ([]string, error) {
	usable := 0
	for _, root := range roots {
		abs, err := filepath.Abs(root)
		if err != nil {
			w.log.Warnf("couldn't resolve %s: %v", root, err)
			continue
		}
		if _, err := w.fs.Lstat(abs); err != nil {
			w.log.Warnf("couldn't stat root %s: %v", abs, err)
			continue
		}
		usable++
		w.dispatch(abs, 0)
	}
	if usable == 0 {
		return nil, fmt.Errorf("walker: no usable root among %v", roots)
	}
	out := make([]string, 0, len(w.files))
	for p := range w.files {
		out = append(out, p)
	}
	return out, nil
}

func (w *Walker) matchesBlacklistRegex(path string) bool {
	for _, re := range w.blacklistRegex {
		if re.MatchString(path) {
			return true
		}
	}
	return false
}

func (w *Walker) shouldHandleFile(path string) bool {
	return !w.files[path] && !w.matchesBlacklistRegex(path)
}

func (w *Walker) shouldTraverseFolder(path string) bool {
	if w.folders[path] || w.matchesBlacklistRegex(path) {
		return false
	}
	for _, dir := range w.blacklistDirs {
		if path == dir || strings.HasPrefix(path, dir+string(filepath.Separator)) {
			return false
		}
	}
	return true
}

// dispatch inspects path, handling a regular file, traversing a directory,
// or following a symlink one step and re-dispatching on its target. depth
// counts only symlink hops, bounding the chain at maxSymlinkDepth.
func (w *Walker) dispatch(path string, depth int) {
	info, err := w.fs.Lstat(path)
	if err != nil {
		w.log.Warnf("couldn't stat %s: %v", path, err)
		return
	}

	switch info.Type {
	case vfs.Regular:
		if w.shouldHandleFile(path) {
			w.files[path] = true
		}
	case vfs.Directory:
		if w.shouldTraverseFolder(path) {
			w.traverseFolder(path, depth)
		}
	case vfs.Symlink:
		if depth >= maxSymlinkDepth {
			w.log.Warnf("too many levels of symbolic links at %s", path)
			return
		}
		target, err := w.fs.Readlink(path)
		if err != nil {
			w.log.Warnf("couldn't resolve symlink %s: %v", path, err)
			return
		}
		w.dispatch(target, depth+1)
	default:
		w.log.Debugf("ignoring %s (not a regular file, directory, or symlink)", path)
	}
}

func (w *Walker) traverseFolder(path string, depth int) {
	w.folders[path] = true

	entries, err := w.fs.List(path)
	if err != nil {
		w.log.Warnf("failed to list contents of %s: %v", path, err)
		return
	}
	for _, e := range entries {
		w.dispatch(e.Path, depth)
	}
}
