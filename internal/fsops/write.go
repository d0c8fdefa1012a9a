package fsops

import (
	"os"
	"strings"

	"github.com/spf13/afero"
)

// WriteFile writes content to path, creating parent directories as needed.
// With appendMode the content is added to the end of an existing file.
// It returns the number of bytes written.
func (w *Workspace) WriteFile(path, content string, appendMode bool) (int, error) {
	abs, err := w.guard.EnsurePathIsWritable(path)
	if err != nil {
		return 0, err
	}
	if fi, ok, err := w.stat(abs); err != nil {
		return 0, err
	} else if ok && fi.IsDir() {
		return 0, toolErr(CodeNotAFile, "Path is a directory - %s", path)
	}

	flag := os.O_CREATE | os.O_WRONLY | os.O_TRUNC
	if appendMode {
		flag = os.O_CREATE | os.O_WRONLY | os.O_APPEND
	}
	f, err := w.fs.OpenFile(abs, flag, 0o644)
	if err != nil {
		return 0, err
	}
	n, err := f.WriteString(content)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	return n, err
}

// ReplaceInFile replaces oldText with newText in an existing file. Only the
// first occurrence is replaced unless all is set. It returns the number of
// replacements made.
func (w *Workspace) ReplaceInFile(path, oldText, newText string, all bool) (int, error) {
	if oldText == "" {
		return 0, toolErr(CodeInvalidArgument, "old_string must not be empty")
	}
	abs, err := w.guard.ResolveForWrite(path)
	if err != nil {
		return 0, err
	}
	content, err := w.readAbs(abs, path)
	if err != nil {
		return 0, err
	}

	count := strings.Count(content, oldText)
	if count == 0 {
		return 0, toolErr(CodeNoMatch, "String '%s' not found in %s", oldText, path)
	}
	var updated string
	if all {
		updated = strings.ReplaceAll(content, oldText, newText)
	} else {
		updated = strings.Replace(content, oldText, newText, 1)
		count = 1
	}

	fi, err := w.fs.Stat(abs)
	if err != nil {
		return 0, err
	}
	if err := afero.WriteFile(w.fs, abs, []byte(updated), fi.Mode().Perm()); err != nil {
		return 0, err
	}
	return count, nil
}
