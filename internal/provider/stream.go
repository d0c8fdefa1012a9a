package provider

import (
	"encoding/json"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/packages/ssestream"
	"github.com/petasbytes/sandbox-agent/internal/conversation"
	"github.com/petasbytes/sandbox-agent/internal/engine"
)

// stream turns SDK events into engine events. Text is forwarded per delta;
// a tool invocation is emitted once its block is complete.
type stream struct {
	sse *ssestream.Stream[anthropic.MessageStreamEventUnion]
	acc anthropic.Message
	cur engine.Event
	err error
}

func newStream(sse *ssestream.Stream[anthropic.MessageStreamEventUnion]) *stream {
	return &stream{sse: sse}
}

func (s *stream) Next() bool {
	if s.err != nil {
		return false
	}
	for s.sse.Next() {
		event := s.sse.Current()
		if err := s.acc.Accumulate(event); err != nil {
			s.err = err
			return false
		}
		if ev, ok := s.translate(event); ok {
			s.cur = ev
			return true
		}
	}
	return false
}

func (s *stream) translate(event anthropic.MessageStreamEventUnion) (engine.Event, bool) {
	switch ev := event.AsAny().(type) {
	case anthropic.ContentBlockDeltaEvent:
		if delta, ok := ev.Delta.AsAny().(anthropic.TextDelta); ok && delta.Text != "" {
			return engine.Event{Kind: engine.EventTextDelta, Text: delta.Text}, true
		}
	case anthropic.ContentBlockStopEvent:
		if len(s.acc.Content) == 0 {
			return engine.Event{}, false
		}
		block := s.acc.Content[len(s.acc.Content)-1]
		if block.Type != "tool_use" {
			return engine.Event{}, false
		}
		input := block.Input
		if len(input) == 0 {
			input = json.RawMessage(`{}`)
		}
		return engine.Event{Kind: engine.EventToolInvocation, Invocation: conversation.ToolInvocation{
			ID:     block.ID,
			Name:   block.Name,
			Params: append(json.RawMessage(nil), input...),
		}}, true
	case anthropic.MessageStopEvent:
		return engine.Event{Kind: engine.EventTurnComplete, StopReason: string(s.acc.StopReason)}, true
	}
	return engine.Event{}, false
}

func (s *stream) Current() engine.Event { return s.cur }

func (s *stream) Err() error {
	if s.err != nil {
		return s.err
	}
	if err := s.sse.Err(); err != nil {
		return classify(err)
	}
	return nil
}

func (s *stream) Close() error { return s.sse.Close() }
