package telemetry

import (
	"context"

	"github.com/google/uuid"
)

type turnIDKey struct{}

// NewTurnID returns a fresh random turn identifier.
func NewTurnID() string { return uuid.NewString() }

// WithTurnID returns a child context that carries the turn ID.
func WithTurnID(ctx context.Context, id string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, turnIDKey{}, id)
}

// StartTurn attaches a new turn ID to ctx and returns both.
func StartTurn(ctx context.Context) (context.Context, string) {
	id := NewTurnID()
	return WithTurnID(ctx, id), id
}

// TurnIDFromContext returns the turn ID from ctx. An empty ID counts as absent.
func TurnIDFromContext(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	s, ok := ctx.Value(turnIDKey{}).(string)
	if !ok || s == "" {
		return "", false
	}
	return s, true
}
