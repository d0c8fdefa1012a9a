package safety_test

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/petasbytes/sandbox-agent/internal/safety"
)

func TestEnsurePathIsWritable_CreatesParents(t *testing.T) {
	g, root := newGuard(t)

	p, err := g.EnsurePathIsWritable("sub/dir/new.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(p, root+string(filepath.Separator)) {
		t.Fatalf("resolved path %q not under root %q", p, root)
	}
	fi, err := os.Stat(filepath.Join(root, "sub", "dir"))
	if err != nil || !fi.IsDir() {
		t.Fatalf("parent directories not created: %v", err)
	}
	if _, err := os.Stat(p); !os.IsNotExist(err) {
		t.Fatalf("leaf must not be created, stat err=%v", err)
	}
}

func TestEnsurePathIsWritable_NoDirsOnViolation(t *testing.T) {
	g, root := newGuard(t)
	parent := filepath.Dir(root)
	marker := "escape-" + filepath.Base(root)

	_, err := g.EnsurePathIsWritable("../" + marker + "/x/y.txt")
	if !errors.Is(err, safety.ErrPathEscape) {
		t.Fatalf("expected ErrPathEscape, got %v", err)
	}
	if _, err := os.Stat(filepath.Join(parent, marker)); !os.IsNotExist(err) {
		t.Fatalf("directory created outside sandbox")
	}
}

func TestEnsurePathIsWritable_DenyList(t *testing.T) {
	g, root := newGuard(t)

	cases := []struct {
		name string
		rel  string
	}{
		{"git head", ".git/HEAD"},
		{"agent conversation", ".agent/conversation.json"},
		{"agent subdir", ".agent/sub/state.json"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := g.EnsurePathIsWritable(tc.rel); !errors.Is(err, safety.ErrDeniedWrite) {
				t.Fatalf("expected ErrDeniedWrite for %q, got %v", tc.rel, err)
			}
		})
	}
	if _, err := os.Stat(filepath.Join(root, ".agent")); !os.IsNotExist(err) {
		t.Fatal("denied write must not create directories")
	}
}

func TestEnsurePathIsWritable_SymlinkEscapeOnNewFile(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlink test skipped on Windows")
	}
	g, root := newGuard(t)
	outside := t.TempDir()
	if err := os.Symlink(outside, filepath.Join(root, "out")); err != nil {
		t.Skipf("symlink not allowed on this FS: %v", err)
	}

	// Leaf does not exist; parent is a symlink pointing outside.
	if _, err := g.EnsurePathIsWritable("out/newdir/newfile.txt"); !errors.Is(err, safety.ErrPathEscape) {
		t.Fatalf("expected ErrPathEscape, got %v", err)
	}
	if _, err := os.Stat(filepath.Join(outside, "newdir")); !os.IsNotExist(err) {
		t.Fatal("directory created through escaping symlink")
	}
}

func TestRel_SlashForm(t *testing.T) {
	g, root := newGuard(t)
	if got := g.Rel(filepath.Join(root, "a", "b.txt")); got != "a/b.txt" {
		t.Fatalf("got %q", got)
	}
	if got := g.Rel(root); got != "." {
		t.Fatalf("got %q", got)
	}
}
