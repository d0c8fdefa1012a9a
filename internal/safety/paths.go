// Package safety confines tool file access to a single sandbox root.
package safety

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// Error codes carried by ToolError.
const (
	CodePathOutsideSandbox = "ERR_PATH_OUTSIDE_SANDBOX"
	CodeDeniedRead         = "ERR_DENIED_READ"
	CodeDeniedWrite        = "ERR_DENIED_WRITE"
)

// ToolError is a machine-readable error body for surfacing back to the agent as JSON.
type ToolError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error returns a compact, single-line JSON string to keep tool_result payloads small.
func (e ToolError) Error() string {
	b, _ := json.Marshal(e)
	return string(b)
}

// Is matches any ToolError with the same code, so callers can test against the
// code sentinels below with errors.Is.
func (e ToolError) Is(target error) bool {
	t, ok := target.(ToolError)
	return ok && t.Code == e.Code
}

// Sentinels for errors.Is.
var (
	ErrPathEscape  = ToolError{Code: CodePathOutsideSandbox}
	ErrDeniedRead  = ToolError{Code: CodeDeniedRead}
	ErrDeniedWrite = ToolError{Code: CodeDeniedWrite}
)

// IsBoundaryViolation reports whether err is a sandbox policy rejection rather
// than an ordinary filesystem condition.
func IsBoundaryViolation(err error) bool {
	return errors.Is(err, ErrPathEscape) || errors.Is(err, ErrDeniedRead) || errors.Is(err, ErrDeniedWrite)
}

// deniedDirs are top-level entries under the root that tools may never touch.
var deniedDirs = []string{".git", ".agent"}

// Guard resolves tool-supplied paths against one sandbox root. The root is
// canonicalised once and never changes.
type Guard struct {
	root  string
	alias string // absolute, pre-symlink form of root as configured
	fs    afero.Fs
}

// NewGuard canonicalises root and returns a Guard bound to it. The root must
// be an existing directory.
func NewGuard(fs afero.Fs, root string) (*Guard, error) {
	if root == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("getwd: %w", err)
		}
		root = cwd
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("abs(root): %w", err)
	}

	// Resolve symlinks so boundary checks compare real locations.
	canonical := abs
	if r, err := filepath.EvalSymlinks(abs); err == nil {
		canonical = r
	}

	fi, err := fs.Stat(canonical)
	if err != nil {
		return nil, fmt.Errorf("sandbox root: %w", err)
	}
	if !fi.IsDir() {
		return nil, fmt.Errorf("sandbox root %s is not a directory", canonical)
	}
	return &Guard{root: canonical, alias: abs, fs: fs}, nil
}

// Root returns the canonical sandbox root.
func (g *Guard) Root() string { return g.root }

// Resolve maps rawPath to a canonical absolute path inside the root.
// Relative paths are joined to the root; absolute paths must already lie under
// it. "." and ".." segments are collapsed lexically, and the real location of
// the deepest existing ancestor must also stay inside the root so symlinks
// cannot be used to escape. Paths under .git/ or .agent/ are denied.
func (g *Guard) Resolve(rawPath string) (string, error) {
	return g.resolve(rawPath, CodeDeniedRead)
}

// ResolveForWrite is Resolve with write-denial semantics for the policy deny list.
func (g *Guard) ResolveForWrite(rawPath string) (string, error) {
	return g.resolve(rawPath, CodeDeniedWrite)
}

// EnsurePathIsWritable validates rawPath for writing and creates any missing
// parent directories. Nothing is created unless validation succeeds.
func (g *Guard) EnsurePathIsWritable(rawPath string) (string, error) {
	p, err := g.ResolveForWrite(rawPath)
	if err != nil {
		return "", err
	}
	if p == g.root {
		return p, nil
	}
	if err := g.fs.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return "", err
	}
	return p, nil
}

// Rel returns abs relative to the root in slash form, for user-facing messages.
func (g *Guard) Rel(abs string) string {
	rel, err := filepath.Rel(g.root, abs)
	if err != nil {
		return abs
	}
	return filepath.ToSlash(rel)
}

func (g *Guard) resolve(rawPath, denyCode string) (string, error) {
	cleaned := strings.TrimSpace(rawPath)
	if cleaned == "" {
		cleaned = "."
	}

	var candidate string
	if filepath.IsAbs(cleaned) {
		candidate = g.rebase(filepath.Clean(cleaned))
	} else {
		candidate = filepath.Join(g.root, cleaned)
	}

	if !g.contains(candidate) {
		return "", ToolError{Code: CodePathOutsideSandbox, Message: fmt.Sprintf("path %q resolves outside the sandbox root", rawPath)}
	}

	actual, err := realPath(candidate)
	if err != nil || !g.contains(actual) {
		return "", ToolError{Code: CodePathOutsideSandbox, Message: fmt.Sprintf("path %q escapes the sandbox root via a symlink", rawPath)}
	}

	// Both the requested path and its real location must clear the deny list.
	for _, rel := range []string{g.Rel(candidate), g.Rel(actual)} {
		if d, ok := deniedDir(rel); ok {
			verb := "reads"
			if denyCode == CodeDeniedWrite {
				verb = "writes"
			}
			return "", ToolError{Code: denyCode, Message: fmt.Sprintf("%s under %s/ are not allowed", verb, d)}
		}
	}
	return candidate, nil
}

func deniedDir(rel string) (string, bool) {
	for _, d := range deniedDirs {
		if rel == d || strings.HasPrefix(rel, d+"/") {
			return d, true
		}
	}
	return "", false
}

// rebase maps an absolute path written against the configured (pre-symlink)
// root onto the canonical root.
func (g *Guard) rebase(p string) string {
	if g.alias == g.root {
		return p
	}
	if rel, ok := within(g.alias, p); ok {
		return filepath.Join(g.root, rel)
	}
	return p
}

func (g *Guard) contains(p string) bool {
	_, ok := within(g.root, p)
	return ok
}

// within reports whether p lies at or under base, using filepath.Rel so that
// partial prefix matches ("/root2" vs "/root") are rejected.
func within(base, p string) (string, bool) {
	rel, err := filepath.Rel(base, p)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) || filepath.IsAbs(rel) {
		return "", false
	}
	return rel, true
}

// realPath resolves symlinks in the deepest existing ancestor of p and rejoins
// the missing tail. A dangling symlink on the way is an error, since writing
// through it would land wherever it points.
func realPath(p string) (string, error) {
	cur := p
	tail := ""
	for {
		if r, err := filepath.EvalSymlinks(cur); err == nil {
			return filepath.Join(r, tail), nil
		}
		if fi, err := os.Lstat(cur); err == nil && fi.Mode()&os.ModeSymlink != 0 {
			return "", fmt.Errorf("dangling symlink %s", cur)
		}
		parent := filepath.Dir(cur)
		if parent == cur {
			return p, nil
		}
		tail = filepath.Join(filepath.Base(cur), tail)
		cur = parent
	}
}
