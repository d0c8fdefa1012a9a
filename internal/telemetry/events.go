package telemetry

import (
	"context"

	"github.com/petasbytes/sandbox-agent/internal/conversation"
	"github.com/petasbytes/sandbox-agent/internal/metrics"
)

// Event names.
const (
	EventTurnStarted    = "turn_started"
	EventTurnCompleted  = "turn_completed"
	EventModelRequest   = "model_request"
	EventWindowPrepared = "window_prepared"
	EventToolExec       = "tool_exec"
)

const featuresVersion = "2"

// TurnStarted records the start of a user turn with content features of the
// user message.
func (r *Recorder) TurnStarted(ctx context.Context, user conversation.Message) {
	if !r.Enabled() {
		return
	}
	r.EmitTurn(ctx, EventTurnStarted, map[string]any{
		"features_version": featuresVersion,
		"user":             metrics.CountFeatures(user).Fields(),
	})
}

// TurnCompleted records how a turn ended. added holds the messages the turn
// appended to the log; only their features are written.
func (r *Recorder) TurnCompleted(ctx context.Context, fields map[string]any, added []conversation.Message) {
	if !r.Enabled() {
		return
	}
	out := make(map[string]any, len(fields)+2)
	for k, v := range fields {
		out[k] = v
	}
	out["features_version"] = featuresVersion
	out["added"] = metrics.CountFeatures(added...).Fields()
	r.EmitTurn(ctx, EventTurnCompleted, out)
}
