package tools

import (
	"context"
	"strings"

	"github.com/petasbytes/sandbox-agent/internal/fsops"
)

type ReadFileInput struct {
	FilePath string `json:"file_path" jsonschema_description:"Path to the file to read, relative to the sandbox root."`
	Offset   int    `json:"offset,omitempty" jsonschema_description:"Optional 0-based line offset to start reading from."`
	Limit    int    `json:"limit,omitempty" jsonschema_description:"Optional maximum number of lines to return from offset."`
}

const truncationSentinel = "-- truncated; use offset/limit to fetch more --\n"
const maxLineRunes = 2000 // per-line clamp when paging

const readFileDescription = "Read the contents of a file in the sandbox. Returns the full file unless offset or limit is given. Directory paths and paths outside the sandbox are rejected."

// ReadFileTool returns read_file bound to ws.
func ReadFileTool(ws *fsops.Workspace) ToolDefinition {
	return NewTool(ReadFileName, readFileDescription, func(_ context.Context, in ReadFileInput) (string, error) {
		content, err := ws.ReadFile(in.FilePath)
		if err != nil {
			return failure(err)
		}
		if in.Offset <= 0 && in.Limit <= 0 {
			return content, nil
		}
		return page(content, in.Offset, in.Limit), nil
	})
}

// Helper: clamp a string to at most n runes
func clampRunes(s string, n int) (string, bool) {
	r := []rune(s)
	if len(r) <= n {
		return s, false
	}
	return string(r[:n]), true
}

// page selects lines [offset, offset+limit) and appends the sentinel when
// anything was left out or clamped.
func page(content string, offset, limit int) string {
	lines := strings.Split(content, "\n")
	if offset < 0 {
		offset = 0
	}
	if offset > len(lines) {
		offset = len(lines)
	}
	end := len(lines)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}

	truncated := offset > 0 || end < len(lines)
	for i := offset; i < end; i++ {
		if clamped, did := clampRunes(lines[i], maxLineRunes); did {
			lines[i] = clamped
			truncated = true
		}
	}

	out := strings.Join(lines[offset:end], "\n")
	if truncated {
		if !strings.HasSuffix(out, "\n") {
			out += "\n"
		}
		out += truncationSentinel
	}
	return out
}
