package tools

import (
	"context"
	"fmt"

	"github.com/petasbytes/sandbox-agent/internal/fsops"
)

type EditFileInput struct {
	FilePath   string `json:"file_path" jsonschema_description:"Path to the file to edit, relative to the sandbox root."`
	OldString  string `json:"old_string" jsonschema_description:"Exact text to search for and replace."`
	NewString  string `json:"new_string" jsonschema_description:"Text to replace it with."`
	ReplaceAll bool   `json:"replace_all,omitempty" jsonschema_description:"Replace all occurrences (default: only the first)."`
}

var editFileDescription = `Edit an existing file in the sandbox by replacing text.

By default only the first occurrence of old_string is replaced; set replace_all to replace every occurrence.
`

// EditFileTool returns edit_file bound to ws.
func EditFileTool(ws *fsops.Workspace) ToolDefinition {
	return NewTool(EditFileName, editFileDescription, func(_ context.Context, in EditFileInput) (string, error) {
		n, err := ws.ReplaceInFile(in.FilePath, in.OldString, in.NewString, in.ReplaceAll)
		if err != nil {
			return failure(err)
		}
		return fmt.Sprintf("Success: Replaced %d occurrence(s) in %s", n, in.FilePath), nil
	})
}
