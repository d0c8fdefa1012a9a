package metrics

import (
	"strings"
	"unicode/utf8"

	"github.com/petasbytes/sandbox-agent/internal/conversation"
)

// Features summarises conversation messages for telemetry without retaining
// any of their content.
type Features struct {
	Messages    int
	TextBytes   int
	TextRunes   int
	Words       int
	Lines       int
	ToolUses    int
	ToolResults int
	ToolErrors  int
	ParamBytes  int
	OutputBytes int
}

// CountFeatures walks every block of msgs. Text counts are summed per block,
// so two one-line blocks count as two lines.
func CountFeatures(msgs ...conversation.Message) Features {
	var f Features
	for _, m := range msgs {
		f.Messages++
		for _, b := range m.Content {
			switch b.Kind {
			case conversation.BlockText:
				f.TextBytes += len(b.Text)
				f.TextRunes += utf8.RuneCountInString(b.Text)
				f.Words += len(strings.Fields(b.Text))
				f.Lines += countLines(b.Text)
			case conversation.BlockToolUse:
				if b.Invocation != nil {
					f.ToolUses++
					f.ParamBytes += len(b.Invocation.Params)
				}
			case conversation.BlockToolResult:
				if b.Result != nil {
					f.ToolResults++
					f.OutputBytes += len(b.Result.Output)
					if b.Result.IsError() {
						f.ToolErrors++
					}
				}
			}
		}
	}
	return f
}

// Fields renders f as an event payload.
func (f Features) Fields() map[string]any {
	return map[string]any{
		"messages":     f.Messages,
		"bytes":        f.TextBytes,
		"runes":        f.TextRunes,
		"words":        f.Words,
		"lines":        f.Lines,
		"tool_uses":    f.ToolUses,
		"tool_results": f.ToolResults,
		"tool_errors":  f.ToolErrors,
		"param_bytes":  f.ParamBytes,
		"output_bytes": f.OutputBytes,
	}
}

// countLines is 0 for "" and one more than the newline count otherwise.
func countLines(s string) int {
	if s == "" {
		return 0
	}
	return 1 + strings.Count(s, "\n")
}
