package engine

import (
	"context"

	"github.com/petasbytes/sandbox-agent/internal/conversation"
	"golang.org/x/sync/errgroup"
)

// executeTools runs one round of invocations and appends a tool message per
// result, in invocation order. On cancellation every invocation that did not
// run still gets an error result so each tool_use stays paired.
func (e *Engine) executeTools(ctx context.Context, invs []conversation.ToolInvocation) error {
	if e.opts.ParallelTools && len(invs) > 1 {
		return e.executeParallel(ctx, invs)
	}
	for i, inv := range invs {
		if err := ctx.Err(); err != nil {
			e.cancelRemaining(invs[i:], err)
			return err
		}
		e.appendResult(inv, e.exec.Execute(ctx, inv))
	}
	return ctx.Err()
}

// executeParallel runs the batch concurrently and appends each result as soon
// as every earlier invocation has been appended.
func (e *Engine) executeParallel(ctx context.Context, invs []conversation.ToolInvocation) error {
	results := make([]conversation.ToolResult, len(invs))
	done := make([]chan struct{}, len(invs))
	var g errgroup.Group
	for i := range invs {
		done[i] = make(chan struct{})
		g.Go(func() error {
			defer close(done[i])
			results[i] = e.exec.Execute(ctx, invs[i])
			return nil
		})
	}
	for i, inv := range invs {
		<-done[i]
		e.appendResult(inv, results[i])
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

func (e *Engine) cancelRemaining(invs []conversation.ToolInvocation, cause error) {
	for _, inv := range invs {
		e.appendResult(inv, conversation.ToolResult{
			ID:     inv.ID,
			Status: conversation.StatusError,
			Output: "tool call canceled: " + cause.Error(),
		})
	}
}

func (e *Engine) appendResult(inv conversation.ToolInvocation, res conversation.ToolResult) {
	e.log.Append(conversation.NewToolMessage(res))
	e.sink.ToolResult(inv, res)
}
