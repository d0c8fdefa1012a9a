package tools_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/petasbytes/sandbox-agent/tools"
)

func TestBuiltins_AllInTableOrder(t *testing.T) {
	ws, _ := newWorkspace(t)
	defs, err := tools.Builtins(ws).Descriptors()
	if err != nil {
		t.Fatal(err)
	}
	var names []string
	for _, d := range defs {
		names = append(names, d.Name)
		if d.Function == nil || d.Description == "" || d.InputSchema.Type != "object" {
			t.Errorf("incomplete definition for %q", d.Name)
		}
	}
	if diff := cmp.Diff(tools.BuiltinNames(), names); diff != "" {
		t.Fatalf("builtin names (-want +got):\n%s", diff)
	}
}

func TestBuiltins_EnabledFilter(t *testing.T) {
	ws, _ := newWorkspace(t)
	defs, err := tools.Builtins(ws, "sort_data", "read_file").Descriptors()
	if err != nil {
		t.Fatal(err)
	}
	if len(defs) != 2 || defs[0].Name != "read_file" || defs[1].Name != "sort_data" {
		t.Fatalf("unexpected filter result: %v", defs)
	}

	if _, err := tools.Builtins(ws, "read_file", "rm_rf").Descriptors(); err == nil {
		t.Fatal("expected error for unknown builtin")
	}
}

func TestBuiltins_RequiredParams(t *testing.T) {
	ws, _ := newWorkspace(t)
	defs, _ := tools.Builtins(ws).Descriptors()
	want := map[string][]string{
		"read_file":        {"file_path"},
		"write_file":       {"file_path", "content"},
		"edit_file":        {"file_path", "old_string", "new_string"},
		"list_files":       nil,
		"move_file":        {"source_path", "destination_dir"},
		"get_current_time": nil,
		"sort_data":        {"data"},
	}
	for _, d := range defs {
		w, ok := want[d.Name]
		if !ok {
			continue
		}
		if diff := cmp.Diff(w, d.InputSchema.Required); diff != "" {
			t.Errorf("%s required (-want +got):\n%s", d.Name, diff)
		}
	}
}
