package tools

import (
	"context"
	"time"
)

type GetCurrentTimeInput struct{}

// now is replaced in tests.
var now = time.Now

const timeLayout = "2006-01-02 15:04:05 MST"

// GetCurrentTimeTool returns get_current_time.
func GetCurrentTimeTool() ToolDefinition {
	return NewTool(GetCurrentTimeName, "Get the current local date and time.", func(context.Context, GetCurrentTimeInput) (string, error) {
		return now().Format(timeLayout), nil
	})
}
