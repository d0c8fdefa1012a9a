package tools

import (
	"fmt"

	"github.com/petasbytes/sandbox-agent/internal/fsops"
)

// Builtin tool names.
const (
	ReadFileName        = "read_file"
	WriteFileName       = "write_file"
	EditFileName        = "edit_file"
	ListFilesName       = "list_files"
	DeleteFileName      = "delete_file"
	CreateDirectoryName = "create_directory"
	DeleteDirectoryName = "delete_directory"
	MoveFileName        = "move_file"
	RenameFileName      = "rename_file"
	RenameDirectoryName = "rename_directory"
	GetCurrentTimeName  = "get_current_time"
	SortDataName        = "sort_data"
)

// BuiltinSource supplies the builtin tool table, optionally filtered to an
// enabled subset. It satisfies registry.Source.
type BuiltinSource struct {
	ws      *fsops.Workspace
	enabled []string
}

// Builtins returns the builtin tools bound to ws. With no enabled names every
// builtin is supplied.
func Builtins(ws *fsops.Workspace, enabled ...string) BuiltinSource {
	return BuiltinSource{ws: ws, enabled: enabled}
}

// Descriptors returns the builtin definitions in table order. An enabled name
// that is not a builtin is an error.
func (b BuiltinSource) Descriptors() ([]ToolDefinition, error) {
	all := []ToolDefinition{
		ReadFileTool(b.ws),
		WriteFileTool(b.ws),
		EditFileTool(b.ws),
		ListFilesTool(b.ws),
		DeleteFileTool(b.ws),
		CreateDirectoryTool(b.ws),
		DeleteDirectoryTool(b.ws),
		MoveFileTool(b.ws),
		RenameFileTool(b.ws),
		RenameDirectoryTool(b.ws),
		GetCurrentTimeTool(),
		SortDataTool(),
	}
	if len(b.enabled) == 0 {
		return all, nil
	}

	want := make(map[string]bool, len(b.enabled))
	for _, name := range b.enabled {
		want[name] = true
	}
	out := make([]ToolDefinition, 0, len(b.enabled))
	for _, d := range all {
		if want[d.Name] {
			out = append(out, d)
			delete(want, d.Name)
		}
	}
	for _, name := range b.enabled {
		if want[name] {
			return nil, fmt.Errorf("unknown builtin tool %q", name)
		}
	}
	return out, nil
}

// BuiltinNames lists every builtin tool name in table order.
func BuiltinNames() []string {
	return []string{
		ReadFileName, WriteFileName, EditFileName, ListFilesName,
		DeleteFileName, CreateDirectoryName, DeleteDirectoryName, MoveFileName,
		RenameFileName, RenameDirectoryName, GetCurrentTimeName, SortDataName,
	}
}
