package fsops

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/afero"
)

// ListOptions controls ListFiles.
type ListOptions struct {
	ShowHidden bool
	// Pattern is an optional doublestar glob matched against paths relative
	// to the listed directory, e.g. "**/*.go".
	Pattern string
}

// ListFiles recursively lists regular files under dir. Paths are returned
// relative to the sandbox root in slash form, sorted. Hidden entries are
// skipped unless opts.ShowHidden is set; denied directories are never entered.
func (w *Workspace) ListFiles(dir string, opts ListOptions) ([]string, error) {
	abs, err := w.guard.Resolve(dir)
	if err != nil {
		return nil, err
	}
	fi, ok, err := w.stat(abs)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, toolErr(CodeNotFound, "Directory not found - %s", dir)
	}
	if !fi.IsDir() {
		return nil, toolErr(CodeNotADir, "Path is not a directory - %s", dir)
	}
	if opts.Pattern != "" && !doublestar.ValidatePattern(opts.Pattern) {
		return nil, toolErr(CodeInvalidArgument, "Invalid pattern - %s", opts.Pattern)
	}

	var files []string
	err = afero.Walk(w.fs, abs, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if p == abs {
			return nil
		}
		hidden := strings.HasPrefix(info.Name(), ".")
		if info.IsDir() {
			if hidden && !opts.ShowHidden {
				return filepath.SkipDir
			}
			if _, err := w.guard.Resolve(p); err != nil {
				return filepath.SkipDir
			}
			return nil
		}
		if hidden && !opts.ShowHidden {
			return nil
		}
		if opts.Pattern != "" {
			rel, err := filepath.Rel(abs, p)
			if err != nil {
				return err
			}
			if ok, _ := doublestar.Match(opts.Pattern, filepath.ToSlash(rel)); !ok {
				return nil
			}
		}
		files = append(files, w.guard.Rel(p))
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}
