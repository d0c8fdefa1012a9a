package tools_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/petasbytes/sandbox-agent/internal/fsops"
	"github.com/petasbytes/sandbox-agent/internal/safety"
	"github.com/petasbytes/sandbox-agent/tools"
	"github.com/spf13/afero"
)

func newWorkspace(t *testing.T) (*fsops.Workspace, string) {
	t.Helper()
	fs := afero.NewOsFs()
	g, err := safety.NewGuard(fs, t.TempDir())
	if err != nil {
		t.Fatalf("NewGuard: %v", err)
	}
	return fsops.New(fs, g), g.Root()
}

func writeFixture(t *testing.T, root, rel, content string) {
	t.Helper()
	p := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		t.Fatalf("prepare: %v", err)
	}
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("prepare: %v", err)
	}
}

func call(t *testing.T, def tools.ToolDefinition, params tools.Params) (string, error) {
	t.Helper()
	return def.Function(context.Background(), params)
}
