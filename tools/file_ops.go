package tools

import (
	"context"
	"fmt"

	"github.com/petasbytes/sandbox-agent/internal/fsops"
)

type DeleteFileInput struct {
	FilePath string `json:"file_path" jsonschema_description:"Path to the file to delete, relative to the sandbox root."`
}

type MoveFileInput struct {
	SourcePath     string `json:"source_path" jsonschema_description:"Current path of the file."`
	DestinationDir string `json:"destination_dir" jsonschema_description:"Directory to move the file into; created if missing."`
	NewName        string `json:"new_name,omitempty" jsonschema_description:"Optional new file name. Keeps the original name when omitted."`
}

type RenameInput struct {
	OldPath string `json:"old_path" jsonschema_description:"Current path."`
	NewPath string `json:"new_path" jsonschema_description:"New path; must not already exist."`
}

// DeleteFileTool returns delete_file bound to ws.
func DeleteFileTool(ws *fsops.Workspace) ToolDefinition {
	return NewTool(DeleteFileName, "Delete a file in the sandbox.", func(_ context.Context, in DeleteFileInput) (string, error) {
		rel, err := ws.DeleteFile(in.FilePath)
		if err != nil {
			return failure(err)
		}
		return fmt.Sprintf("Success: Deleted file '%s'", rel), nil
	})
}

// MoveFileTool returns move_file bound to ws.
func MoveFileTool(ws *fsops.Workspace) ToolDefinition {
	return NewTool(MoveFileName, "Move a file into another directory in the sandbox. Existing files are never overwritten.",
		func(_ context.Context, in MoveFileInput) (string, error) {
			from, to, err := ws.MoveFile(in.SourcePath, in.DestinationDir, in.NewName)
			if err != nil {
				return failure(err)
			}
			return fmt.Sprintf("Success: Moved file '%s' to '%s'", from, to), nil
		})
}

// RenameFileTool returns rename_file bound to ws.
func RenameFileTool(ws *fsops.Workspace) ToolDefinition {
	return NewTool(RenameFileName, "Rename or move a file within the sandbox.", func(_ context.Context, in RenameInput) (string, error) {
		from, to, err := ws.RenameFile(in.OldPath, in.NewPath)
		if err != nil {
			return failure(err)
		}
		return fmt.Sprintf("Success: Renamed '%s' to '%s'", from, to), nil
	})
}
