package engine

import (
	"context"

	"github.com/petasbytes/sandbox-agent/internal/conversation"
	"github.com/petasbytes/sandbox-agent/tools"
)

// EventKind tags a stream Event.
type EventKind int

const (
	EventTextDelta EventKind = iota + 1
	EventToolInvocation
	EventTurnComplete
)

// Event is one item of model output.
type Event struct {
	Kind       EventKind
	Text       string                      // EventTextDelta
	Invocation conversation.ToolInvocation // EventToolInvocation
	StopReason string                      // EventTurnComplete
}

// Stream yields the events of one model response. Next blocks until an event
// is available and returns false at the end of the stream or on error.
type Stream interface {
	Next() bool
	Current() Event
	Err() error
	Close() error
}

// ModelClient starts a streaming model request over the full message log.
type ModelClient interface {
	Send(ctx context.Context, msgs []conversation.Message, defs []tools.ToolDefinition) (Stream, error)
}

// Executor runs a single tool invocation. Implementations report every
// failure inside the returned result.
type Executor interface {
	Execute(ctx context.Context, inv conversation.ToolInvocation) conversation.ToolResult
}

// Sink receives user-visible output in log order.
type Sink interface {
	TextDelta(text string)
	ToolResult(inv conversation.ToolInvocation, res conversation.ToolResult)
}

type nopSink struct{}

func (nopSink) TextDelta(string) {}

func (nopSink) ToolResult(conversation.ToolInvocation, conversation.ToolResult) {}
