package fsops

import (
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// DeleteFile removes a regular file and returns its root-relative path.
func (w *Workspace) DeleteFile(path string) (string, error) {
	abs, err := w.guard.ResolveForWrite(path)
	if err != nil {
		return "", err
	}
	fi, ok, err := w.stat(abs)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", toolErr(CodeNotFound, "File not found - %s", path)
	}
	if fi.IsDir() {
		return "", toolErr(CodeNotAFile, "Path is not a file - %s", path)
	}
	if err := w.fs.Remove(abs); err != nil {
		return "", err
	}
	return w.guard.Rel(abs), nil
}

// CreateDir creates a directory and any missing parents. An existing path is
// an error.
func (w *Workspace) CreateDir(path string) (string, error) {
	abs, err := w.guard.ResolveForWrite(path)
	if err != nil {
		return "", err
	}
	fi, ok, err := w.stat(abs)
	if err != nil {
		return "", err
	}
	if ok {
		if fi.IsDir() {
			return "", toolErr(CodeAlreadyExists, "Directory already exists - %s", path)
		}
		return "", toolErr(CodeAlreadyExists, "Path exists but is not a directory - %s", path)
	}
	if err := w.fs.MkdirAll(abs, 0o755); err != nil {
		return "", err
	}
	return w.guard.Rel(abs), nil
}

// DeleteDir removes a directory. A non-empty directory is only removed when
// force is set. The sandbox root can never be removed.
func (w *Workspace) DeleteDir(path string, force bool) (string, error) {
	abs, err := w.guard.ResolveForWrite(path)
	if err != nil {
		return "", err
	}
	if abs == w.guard.Root() {
		return "", toolErr(CodeRootProtected, "Cannot delete the sandbox root directory")
	}
	fi, ok, err := w.stat(abs)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", toolErr(CodeNotFound, "Directory not found - %s", path)
	}
	if !fi.IsDir() {
		return "", toolErr(CodeNotADir, "Path is not a directory - %s", path)
	}

	if force {
		err = w.fs.RemoveAll(abs)
	} else {
		entries, rerr := afero.ReadDir(w.fs, abs)
		if rerr != nil {
			return "", rerr
		}
		if len(entries) > 0 {
			return "", toolErr(CodeDirNotEmpty, "Directory is not empty - %s. Use force=true to delete non-empty directories", path)
		}
		err = w.fs.Remove(abs)
	}
	if err != nil {
		return "", err
	}
	return w.guard.Rel(abs), nil
}

// MoveFile moves a file into destDir, optionally under newName. destDir is
// created when missing. Existing files are never overwritten. It returns the
// root-relative source and destination paths.
func (w *Workspace) MoveFile(src, destDir, newName string) (string, string, error) {
	srcAbs, err := w.guard.ResolveForWrite(src)
	if err != nil {
		return "", "", err
	}
	fi, ok, err := w.stat(srcAbs)
	if err != nil {
		return "", "", err
	}
	if !ok {
		return "", "", toolErr(CodeNotFound, "File not found - %s", src)
	}
	if fi.IsDir() {
		return "", "", toolErr(CodeNotAFile, "Path is not a file - %s", src)
	}

	name := newName
	if name == "" {
		name = filepath.Base(srcAbs)
	}
	if name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return "", "", toolErr(CodeInvalidArgument, "new_name must be a plain file name - %s", newName)
	}

	dirAbs, err := w.guard.ResolveForWrite(destDir)
	if err != nil {
		return "", "", err
	}
	dstAbs, err := w.guard.ResolveForWrite(filepath.Join(dirAbs, name))
	if err != nil {
		return "", "", err
	}
	if _, exists, err := w.stat(dstAbs); err != nil {
		return "", "", err
	} else if exists {
		return "", "", toolErr(CodeAlreadyExists, "Destination file already exists - %s", w.guard.Rel(dstAbs))
	}

	if di, exists, err := w.stat(dirAbs); err != nil {
		return "", "", err
	} else if exists && !di.IsDir() {
		return "", "", toolErr(CodeNotADir, "Destination path exists but is not a directory - %s", destDir)
	} else if !exists {
		if err := w.fs.MkdirAll(dirAbs, 0o755); err != nil {
			return "", "", err
		}
	}

	if err := w.fs.Rename(srcAbs, dstAbs); err != nil {
		return "", "", err
	}
	return w.guard.Rel(srcAbs), w.guard.Rel(dstAbs), nil
}

// RenameFile renames or moves a file to newPath, creating missing parents.
func (w *Workspace) RenameFile(oldPath, newPath string) (string, string, error) {
	oldAbs, err := w.guard.ResolveForWrite(oldPath)
	if err != nil {
		return "", "", err
	}
	fi, ok, err := w.stat(oldAbs)
	if err != nil {
		return "", "", err
	}
	if !ok {
		return "", "", toolErr(CodeNotFound, "Source file not found - %s", oldPath)
	}
	if fi.IsDir() {
		return "", "", toolErr(CodeNotAFile, "Source path is not a file - %s", oldPath)
	}
	newAbs, err := w.prepareDestination(newPath)
	if err != nil {
		return "", "", err
	}
	if err := w.fs.Rename(oldAbs, newAbs); err != nil {
		return "", "", err
	}
	return w.guard.Rel(oldAbs), w.guard.Rel(newAbs), nil
}

// RenameDir renames or moves a directory to newPath. The sandbox root cannot
// be renamed, and a directory cannot be moved inside itself.
func (w *Workspace) RenameDir(oldPath, newPath string) (string, string, error) {
	oldAbs, err := w.guard.ResolveForWrite(oldPath)
	if err != nil {
		return "", "", err
	}
	if oldAbs == w.guard.Root() {
		return "", "", toolErr(CodeRootProtected, "Cannot rename the sandbox root directory")
	}
	fi, ok, err := w.stat(oldAbs)
	if err != nil {
		return "", "", err
	}
	if !ok {
		return "", "", toolErr(CodeNotFound, "Directory not found - %s", oldPath)
	}
	if !fi.IsDir() {
		return "", "", toolErr(CodeNotADir, "Path is not a directory - %s", oldPath)
	}

	target, err := w.guard.ResolveForWrite(newPath)
	if err != nil {
		return "", "", err
	}
	if strings.HasPrefix(target, oldAbs+string(filepath.Separator)) {
		return "", "", toolErr(CodeInvalidArgument, "Cannot move a directory inside itself - %s", newPath)
	}
	newAbs, err := w.prepareDestination(newPath)
	if err != nil {
		return "", "", err
	}
	if err := w.fs.Rename(oldAbs, newAbs); err != nil {
		return "", "", err
	}
	return w.guard.Rel(oldAbs), w.guard.Rel(newAbs), nil
}

// prepareDestination refuses an existing target and only then creates its
// parent directories.
func (w *Workspace) prepareDestination(newPath string) (string, error) {
	abs, err := w.guard.ResolveForWrite(newPath)
	if err != nil {
		return "", err
	}
	if _, exists, err := w.stat(abs); err != nil {
		return "", err
	} else if exists {
		return "", toolErr(CodeAlreadyExists, "Destination already exists - %s", newPath)
	}
	return w.guard.EnsurePathIsWritable(newPath)
}
