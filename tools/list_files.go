package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/petasbytes/sandbox-agent/internal/fsops"
)

type ListFilesInput struct {
	DirectoryPath string `json:"directory_path,omitempty" jsonschema_description:"Directory to list, relative to the sandbox root (defaults to the root)."`
	ShowHidden    bool   `json:"show_hidden,omitempty" jsonschema_description:"Whether to include hidden files and directories (default false)."`
	Pattern       string `json:"pattern,omitempty" jsonschema_description:"Optional glob such as **/*.go, matched against paths relative to directory_path."`
}

// ListFilesTool returns list_files bound to ws.
func ListFilesTool(ws *fsops.Workspace) ToolDefinition {
	return NewTool(ListFilesName, "Recursively list files in a sandbox directory. Results are sorted.",
		func(_ context.Context, in ListFilesInput) (string, error) {
			dir := in.DirectoryPath
			if dir == "" {
				dir = "."
			}
			files, err := ws.ListFiles(dir, fsops.ListOptions{ShowHidden: in.ShowHidden, Pattern: in.Pattern})
			if err != nil {
				return failure(err)
			}
			if len(files) == 0 {
				return fmt.Sprintf("No files found in %s", dir), nil
			}
			plural := "s"
			if len(files) == 1 {
				plural = ""
			}
			return fmt.Sprintf("Found %d file%s in %s:\n\n%s", len(files), plural, dir, strings.Join(files, "\n")), nil
		})
}
