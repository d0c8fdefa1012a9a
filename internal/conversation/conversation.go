package conversation

import (
	"encoding/json"
	"slices"
)

// Role identifies the author of a Message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// Status is the protocol-level outcome of a tool call.
type Status string

const (
	StatusOK    Status = "ok"
	StatusError Status = "error"
)

// ToolInvocation is a request from the model to run a named tool.
// ID is assigned by the model and correlates the invocation with its result.
type ToolInvocation struct {
	ID     string          `json:"id"`
	Name   string          `json:"name"`
	Params json.RawMessage `json:"params,omitempty"`
}

// ToolResult is the outcome of executing a ToolInvocation with the same ID.
type ToolResult struct {
	ID     string `json:"id"`
	Status Status `json:"status"`
	Output string `json:"output"`
}

// IsError reports whether the result failed at the protocol level.
func (r ToolResult) IsError() bool { return r.Status == StatusError }

// BlockKind tags the payload carried by a Block.
type BlockKind string

const (
	BlockText       BlockKind = "text"
	BlockToolUse    BlockKind = "tool_use"
	BlockToolResult BlockKind = "tool_result"
)

// Block is one element of a Message's content. Exactly one payload is set,
// matching Kind.
type Block struct {
	Kind       BlockKind       `json:"type"`
	Text       string          `json:"text,omitempty"`
	Invocation *ToolInvocation `json:"tool_use,omitempty"`
	Result     *ToolResult     `json:"tool_result,omitempty"`
}

func TextBlock(s string) Block { return Block{Kind: BlockText, Text: s} }

func ToolUseBlock(inv ToolInvocation) Block { return Block{Kind: BlockToolUse, Invocation: &inv} }

func ToolResultBlock(res ToolResult) Block { return Block{Kind: BlockToolResult, Result: &res} }

// Message is a single entry in the conversation log.
type Message struct {
	Role    Role    `json:"role"`
	Content []Block `json:"content"`
}

func NewUserMessage(text string) Message {
	return Message{Role: RoleUser, Content: []Block{TextBlock(text)}}
}

// NewAssistantMessage builds an assistant message from streamed text followed by
// the invocations in the order the model emitted them. Empty text is omitted.
func NewAssistantMessage(text string, invs []ToolInvocation) Message {
	content := make([]Block, 0, len(invs)+1)
	if text != "" {
		content = append(content, TextBlock(text))
	}
	for _, inv := range invs {
		content = append(content, ToolUseBlock(inv))
	}
	return Message{Role: RoleAssistant, Content: content}
}

func NewToolMessage(res ToolResult) Message {
	return Message{Role: RoleTool, Content: []Block{ToolResultBlock(res)}}
}

// Text concatenates the text blocks of m.
func (m Message) Text() string {
	var s string
	for _, b := range m.Content {
		if b.Kind == BlockText {
			s += b.Text
		}
	}
	return s
}

// Invocations returns the tool invocations of m in content order.
func (m Message) Invocations() []ToolInvocation {
	var out []ToolInvocation
	for _, b := range m.Content {
		if b.Kind == BlockToolUse && b.Invocation != nil {
			out = append(out, *b.Invocation)
		}
	}
	return out
}

func (m Message) clone() Message {
	c := Message{Role: m.Role, Content: make([]Block, len(m.Content))}
	for i, b := range m.Content {
		if b.Invocation != nil {
			inv := *b.Invocation
			inv.Params = slices.Clone(inv.Params)
			b.Invocation = &inv
		}
		if b.Result != nil {
			res := *b.Result
			b.Result = &res
		}
		c.Content[i] = b
	}
	return c
}
