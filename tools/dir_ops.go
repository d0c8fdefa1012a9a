package tools

import (
	"context"
	"fmt"

	"github.com/petasbytes/sandbox-agent/internal/fsops"
)

type CreateDirectoryInput struct {
	DirectoryPath string `json:"directory_path" jsonschema_description:"Path of the directory to create, relative to the sandbox root."`
}

type DeleteDirectoryInput struct {
	DirectoryPath string `json:"directory_path" jsonschema_description:"Path of the directory to delete, relative to the sandbox root."`
	Force         bool   `json:"force,omitempty" jsonschema_description:"Delete even if the directory is not empty (default false)."`
}

// CreateDirectoryTool returns create_directory bound to ws.
func CreateDirectoryTool(ws *fsops.Workspace) ToolDefinition {
	return NewTool(CreateDirectoryName, "Create a directory (and any missing parents) in the sandbox.",
		func(_ context.Context, in CreateDirectoryInput) (string, error) {
			rel, err := ws.CreateDir(in.DirectoryPath)
			if err != nil {
				return failure(err)
			}
			return fmt.Sprintf("Success: Created directory '%s'", rel), nil
		})
}

// DeleteDirectoryTool returns delete_directory bound to ws.
func DeleteDirectoryTool(ws *fsops.Workspace) ToolDefinition {
	return NewTool(DeleteDirectoryName, "Delete a directory in the sandbox. Non-empty directories require force.",
		func(_ context.Context, in DeleteDirectoryInput) (string, error) {
			rel, err := ws.DeleteDir(in.DirectoryPath, in.Force)
			if err != nil {
				return failure(err)
			}
			return fmt.Sprintf("Success: Deleted directory '%s'", rel), nil
		})
}

// RenameDirectoryTool returns rename_directory bound to ws.
func RenameDirectoryTool(ws *fsops.Workspace) ToolDefinition {
	return NewTool(RenameDirectoryName, "Rename or move a directory within the sandbox.", func(_ context.Context, in RenameInput) (string, error) {
		from, to, err := ws.RenameDir(in.OldPath, in.NewPath)
		if err != nil {
			return failure(err)
		}
		return fmt.Sprintf("Success: Renamed directory '%s' to '%s'", from, to), nil
	})
}
