package fsops

import (
	"unicode/utf8"

	"github.com/spf13/afero"
)

// ReadFile returns the full content of a UTF-8 text file under the sandbox.
func (w *Workspace) ReadFile(path string) (string, error) {
	abs, err := w.guard.Resolve(path)
	if err != nil {
		return "", err // propagate policy ToolError unchanged
	}
	return w.readAbs(abs, path)
}

func (w *Workspace) readAbs(abs, display string) (string, error) {
	fi, ok, err := w.stat(abs)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", toolErr(CodeNotFound, "File not found - %s", display)
	}
	if fi.IsDir() {
		return "", toolErr(CodeNotAFile, "Path is not a file - %s", display)
	}

	b, err := afero.ReadFile(w.fs, abs)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(b) {
		return "", toolErr(CodeNotText, "Cannot decode file as UTF-8 - %s", display)
	}
	return string(b), nil
}
