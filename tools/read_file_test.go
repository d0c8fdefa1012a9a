package tools_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/petasbytes/sandbox-agent/internal/safety"
	"github.com/petasbytes/sandbox-agent/tools"
)

func TestReadFile_Happy(t *testing.T) {
	ws, root := newWorkspace(t)
	writeFixture(t, root, "a.txt", "hi")

	out, err := call(t, tools.ReadFileTool(ws), tools.Params{"file_path": "a.txt"})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if out != "hi" {
		t.Fatalf("got %q", out)
	}
}

func TestReadFile_NotFoundIsErrorString(t *testing.T) {
	ws, _ := newWorkspace(t)
	out, err := call(t, tools.ReadFileTool(ws), tools.Params{"file_path": "does-not-exist.txt"})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if out != "Error: File not found - does-not-exist.txt" {
		t.Fatalf("got %q", out)
	}
}

func TestReadFile_DirectoryPath(t *testing.T) {
	ws, root := newWorkspace(t)
	if err := os.MkdirAll(filepath.Join(root, "sub"), 0o755); err != nil {
		t.Fatalf("prepare: %v", err)
	}
	out, _ := call(t, tools.ReadFileTool(ws), tools.Params{"file_path": "sub"})
	if !strings.HasPrefix(out, "Error: Path is not a file") {
		t.Fatalf("got %q", out)
	}
}

func TestReadFile_DenylistReadsAgent(t *testing.T) {
	ws, root := newWorkspace(t)
	writeFixture(t, root, ".agent/conv.json", "{}")

	_, err := call(t, tools.ReadFileTool(ws), tools.Params{"file_path": ".agent/conv.json"})
	if !errors.Is(err, safety.ErrDeniedRead) {
		t.Fatalf("expected ERR_DENIED_READ, got: %v", err)
	}
}

func TestReadFile_TraversalIsError(t *testing.T) {
	ws, _ := newWorkspace(t)
	_, err := call(t, tools.ReadFileTool(ws), tools.Params{"file_path": "../../etc/passwd"})
	if !errors.Is(err, safety.ErrPathEscape) {
		t.Fatalf("expected ERR_PATH_OUTSIDE_SANDBOX, got: %v", err)
	}
}

func TestReadFile_OffsetLimit(t *testing.T) {
	ws, root := newWorkspace(t)
	writeFixture(t, root, "lines.txt", "l0\nl1\nl2\nl3\nl4")

	out, err := call(t, tools.ReadFileTool(ws), tools.Params{"file_path": "lines.txt", "offset": 1, "limit": 2})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	want := "l1\nl2\n-- truncated; use offset/limit to fetch more --\n"
	if out != want {
		t.Fatalf("got %q want %q", out, want)
	}

	// A window covering the whole file has no sentinel.
	out, _ = call(t, tools.ReadFileTool(ws), tools.Params{"file_path": "lines.txt", "limit": 10})
	if out != "l0\nl1\nl2\nl3\nl4" {
		t.Fatalf("got %q", out)
	}
}

func TestReadFile_LongLineClamped(t *testing.T) {
	ws, root := newWorkspace(t)
	writeFixture(t, root, "long.txt", strings.Repeat("x", 2500)+"\nshort")

	out, _ := call(t, tools.ReadFileTool(ws), tools.Params{"file_path": "long.txt", "limit": 1})
	first := strings.SplitN(out, "\n", 2)[0]
	if len([]rune(first)) != 2000 {
		t.Fatalf("expected line clamped to 2000 runes, got %d", len([]rune(first)))
	}
	if !strings.HasSuffix(out, "-- truncated; use offset/limit to fetch more --\n") {
		t.Fatalf("missing sentinel: %q", out[len(out)-60:])
	}
}
