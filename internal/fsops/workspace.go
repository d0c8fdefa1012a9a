// Package fsops performs sandboxed filesystem operations for the tools layer.
// Every entry point resolves its paths through safety.Guard before touching
// the filesystem.
package fsops

import (
	"errors"
	"fmt"
	"os"

	"github.com/petasbytes/sandbox-agent/internal/safety"
	"github.com/spf13/afero"
)

// Error codes for ordinary filesystem conditions. Policy rejections use the
// codes defined in package safety.
const (
	CodeNotFound        = "ERR_NOT_FOUND"
	CodeNotAFile        = "ERR_NOT_A_FILE"
	CodeNotADir         = "ERR_NOT_A_DIR"
	CodeNotText         = "ERR_NOT_TEXT"
	CodeAlreadyExists   = "ERR_ALREADY_EXISTS"
	CodeDirNotEmpty     = "ERR_DIR_NOT_EMPTY"
	CodeRootProtected   = "ERR_ROOT_PROTECTED"
	CodeNoMatch         = "ERR_NO_MATCH"
	CodeInvalidArgument = "ERR_INVALID_ARGUMENT"
)

// Workspace is the single gateway between tools and the filesystem.
type Workspace struct {
	fs    afero.Fs
	guard *safety.Guard
}

// New returns a Workspace over fs confined by guard.
func New(fs afero.Fs, guard *safety.Guard) *Workspace {
	return &Workspace{fs: fs, guard: guard}
}

// Root returns the canonical sandbox root.
func (w *Workspace) Root() string { return w.guard.Root() }

// Message returns the human-readable part of err. ToolError bodies are
// JSON, which reads poorly inside an "Error:" tool string.
func Message(err error) string {
	var te safety.ToolError
	if errors.As(err, &te) && te.Message != "" {
		return te.Message
	}
	return err.Error()
}

func toolErr(code, format string, args ...any) error {
	return safety.ToolError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// stat reports whether abs exists. A missing path is not an error.
func (w *Workspace) stat(abs string) (os.FileInfo, bool, error) {
	fi, err := w.fs.Stat(abs)
	if errors.Is(err, os.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return fi, true, nil
}
