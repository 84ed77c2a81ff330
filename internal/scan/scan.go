// Package scan discovers git repositories below a directory.
//
// The walk is pre-order: a directory is checked for a repository marker
// before its children are visited, and finding a repository does not stop
// the descent, so nested repositories (submodule checkouts, vendored
// clones) are reported too. Sibling order follows the directory listing.
//
// Directories are never entered when they are:
//
//   - deeper than [Options.MaxDepth] (the root is depth 0)
//   - named in [DefaultSkip] or [Options.ExtraSkip]
//   - hidden (leading dot) and [Options.IncludeHidden] is false
//   - symbolic links
//   - unreadable (silently skipped)
package scan

import (
	"io/fs"
	"iter"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// Marker is the entry whose presence makes a directory a repository root.
// It may be a directory (regular clone) or a file (worktree, submodule).
const Marker = ".git"

// DefaultMaxDepth is used when no depth is configured.
const DefaultMaxDepth = 5

// DefaultSkip lists directory names that are never descended into.
var DefaultSkip = []string{"vendor", "node_modules", Marker}

// Options controls a scan. The zero value scans only the root itself.
type Options struct {
	MaxDepth      int
	IncludeHidden bool
	ExtraSkip     []string
}

// Walk returns the repository roots under root in discovery order.
// The sequence re-walks the filesystem each time it is ranged over.
func Walk(root string, opts Options) iter.Seq[string] {
	skip := make(map[string]struct{}, len(DefaultSkip)+len(opts.ExtraSkip))
	for _, name := range DefaultSkip {
		skip[name] = struct{}{}
	}
	for _, name := range opts.ExtraSkip {
		if name = strings.TrimSpace(name); name != "" {
			skip[name] = struct{}{}
		}
	}

	w := walker{opts: opts, skip: skip}
	return func(yield func(string) bool) {
		w.walk(root, 0, yield)
	}
}

// Find collects [Walk] into a slice.
func Find(root string, opts Options) []string {
	return slices.Collect(Walk(root, opts))
}

// IsRepo reports whether dir contains a repository marker.
func IsRepo(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, Marker))
	return err == nil
}

type walker struct {
	opts Options
	skip map[string]struct{}
}

// walk returns false once yield asked to stop.
func (w walker) walk(dir string, depth int, yield func(string) bool) bool {
	if depth > w.opts.MaxDepth {
		return true
	}

	if IsRepo(dir) && !yield(dir) {
		return false
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return true
	}

	for _, entry := range entries {
		if w.skipped(entry) {
			continue
		}
		if !w.walk(filepath.Join(dir, entry.Name()), depth+1, yield) {
			return false
		}
	}
	return true
}

func (w walker) skipped(entry fs.DirEntry) bool {
	// DirEntry types come from lstat, so symlinks never report IsDir.
	if entry.Type()&fs.ModeSymlink != 0 || !entry.IsDir() {
		return true
	}
	name := entry.Name()
	if _, ok := w.skip[name]; ok {
		return true
	}
	return !w.opts.IncludeHidden && strings.HasPrefix(name, ".")
}
