package provider

import (
	"encoding/json"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/petasbytes/sandbox-agent/internal/conversation"
	"github.com/petasbytes/sandbox-agent/tools"
)

// ToolParams exports tool definitions one-to-one, in order.
func ToolParams(defs []tools.ToolDefinition) []anthropic.ToolUnionParam {
	out := make([]anthropic.ToolUnionParam, 0, len(defs))
	for _, t := range defs {
		schema := anthropic.ToolInputSchemaParam{Required: t.InputSchema.Required}
		if t.InputSchema.Properties != nil && t.InputSchema.Properties.Len() > 0 {
			schema.Properties = t.InputSchema.Properties
		} else {
			schema.Properties = map[string]any{}
		}
		out = append(out, anthropic.ToolUnionParam{OfTool: &anthropic.ToolParam{
			Name:        t.Name,
			Description: anthropic.String(t.Description),
			InputSchema: schema,
		}})
	}
	return out
}

// MessageParams converts the log to API messages. Tool messages become user
// messages carrying tool_result blocks, and consecutive messages of the same
// API role are merged so every request alternates user and assistant.
func MessageParams(msgs []conversation.Message) []anthropic.MessageParam {
	out := make([]anthropic.MessageParam, 0, len(msgs))
	for _, m := range msgs {
		blocks := contentBlocks(m)
		if len(blocks) == 0 {
			continue
		}
		role := anthropic.MessageParamRoleUser
		if m.Role == conversation.RoleAssistant {
			role = anthropic.MessageParamRoleAssistant
		}
		if n := len(out); n > 0 && out[n-1].Role == role {
			out[n-1].Content = append(out[n-1].Content, blocks...)
			continue
		}
		out = append(out, anthropic.MessageParam{Role: role, Content: blocks})
	}
	return out
}

func contentBlocks(m conversation.Message) []anthropic.ContentBlockParamUnion {
	blocks := make([]anthropic.ContentBlockParamUnion, 0, len(m.Content))
	for _, b := range m.Content {
		switch b.Kind {
		case conversation.BlockText:
			if b.Text != "" {
				blocks = append(blocks, anthropic.NewTextBlock(b.Text))
			}
		case conversation.BlockToolUse:
			if inv := b.Invocation; inv != nil {
				input := json.RawMessage(inv.Params)
				if len(input) == 0 {
					input = json.RawMessage(`{}`)
				}
				blocks = append(blocks, anthropic.ContentBlockParamUnion{OfToolUse: &anthropic.ToolUseBlockParam{
					ID:    inv.ID,
					Name:  inv.Name,
					Input: input,
				}})
			}
		case conversation.BlockToolResult:
			if res := b.Result; res != nil {
				blocks = append(blocks, anthropic.NewToolResultBlock(res.ID, res.Output, res.IsError()))
			}
		}
	}
	return blocks
}
