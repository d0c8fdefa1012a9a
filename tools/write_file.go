package tools

import (
	"context"
	"fmt"

	"github.com/petasbytes/sandbox-agent/internal/fsops"
)

type WriteFileInput struct {
	FilePath string `json:"file_path" jsonschema_description:"Path to the file to write, relative to the sandbox root."`
	Content  string `json:"content" jsonschema_description:"Content to write to the file."`
	Mode     string `json:"mode,omitempty" jsonschema:"enum=w,enum=a" jsonschema_description:"Write mode: 'w' to overwrite (default) or 'a' to append."`
}

// WriteFileTool returns write_file bound to ws.
func WriteFileTool(ws *fsops.Workspace) ToolDefinition {
	return NewTool(WriteFileName, "Write content to a file in the sandbox, creating parent directories as needed.",
		func(_ context.Context, in WriteFileInput) (string, error) {
			appendMode := in.Mode == "a"
			n, err := ws.WriteFile(in.FilePath, in.Content, appendMode)
			if err != nil {
				return failure(err)
			}
			action := "written to"
			if appendMode {
				action = "appended to"
			}
			return fmt.Sprintf("Success: Content %s %s (%d bytes)", action, in.FilePath, n), nil
		})
}
