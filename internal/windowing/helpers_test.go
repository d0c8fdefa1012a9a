package windowing_test

import (
	"encoding/json"

	"github.com/petasbytes/sandbox-agent/internal/conversation"
	"github.com/petasbytes/sandbox-agent/internal/windowing"
)

// User message constructor
func U(text string) conversation.Message { return conversation.NewUserMessage(text) }

// Assistant message constructor; each id becomes a tool_use block named "t" with no params.
func A(text string, ids ...string) conversation.Message {
	invs := make([]conversation.ToolInvocation, 0, len(ids))
	for _, id := range ids {
		invs = append(invs, conversation.ToolInvocation{ID: id, Name: "t"})
	}
	return conversation.NewAssistantMessage(text, invs)
}

// Tool-result message constructor
func R(id, output string) conversation.Message {
	return conversation.NewToolMessage(conversation.ToolResult{ID: id, Status: conversation.StatusOK, Output: output})
}

// Error tool-result message constructor
func RErr(id, output string) conversation.Message {
	return conversation.NewToolMessage(conversation.ToolResult{ID: id, Status: conversation.StatusError, Output: output})
}

func invocation(id, name, params string) conversation.ToolInvocation {
	return conversation.ToolInvocation{ID: id, Name: name, Params: json.RawMessage(params)}
}

func single(start int) windowing.Group {
	return windowing.Group{Kind: windowing.GroupSingleton, Start: start, End: start + 1}
}

func pair(start, end int) windowing.Group {
	return windowing.Group{Kind: windowing.GroupPair, Start: start, End: end}
}
