// Package dispatch validates and executes tool invocations. Every outcome,
// including unknown tools, bad parameters and handler panics, comes back as
// a ToolResult so a single failing call never aborts the turn.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/petasbytes/sandbox-agent/internal/conversation"
	"github.com/petasbytes/sandbox-agent/internal/metrics"
	"github.com/petasbytes/sandbox-agent/internal/registry"
	"github.com/petasbytes/sandbox-agent/internal/telemetry"
	"github.com/petasbytes/sandbox-agent/tools"
)

// ToolExecutionError wraps a handler failure or recovered panic.
type ToolExecutionError struct {
	Tool  string
	Err   error
	Panic bool
}

func (e *ToolExecutionError) Error() string {
	if e.Panic {
		return fmt.Sprintf("tool %s panicked: %v", e.Tool, e.Err)
	}
	return fmt.Sprintf("tool %s failed: %v", e.Tool, e.Err)
}

func (e *ToolExecutionError) Unwrap() error { return e.Err }

// Dispatcher runs invocations against a registry.
type Dispatcher struct {
	registry *registry.Registry
	recorder *telemetry.Recorder
	metrics  *metrics.Collectors
	logger   *slog.Logger
}

type Option func(*Dispatcher)

func WithRecorder(r *telemetry.Recorder) Option { return func(d *Dispatcher) { d.recorder = r } }

func WithMetrics(c *metrics.Collectors) Option { return func(d *Dispatcher) { d.metrics = c } }

func WithLogger(l *slog.Logger) Option { return func(d *Dispatcher) { d.logger = l } }

// New returns a Dispatcher over reg.
func New(reg *registry.Registry, opts ...Option) *Dispatcher {
	d := &Dispatcher{registry: reg, logger: slog.Default()}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Execute runs inv and returns its result. It never panics and never fails.
func (d *Dispatcher) Execute(ctx context.Context, inv conversation.ToolInvocation) conversation.ToolResult {
	start := time.Now()
	out, err := d.run(ctx, inv)

	outcome := metrics.OutcomeOK
	errLabel := ""
	res := conversation.ToolResult{ID: inv.ID, Status: conversation.StatusOK, Output: out}
	if err != nil {
		outcome = metrics.OutcomeError
		errLabel = errorLabel(err)
		res.Status = conversation.StatusError
		res.Output = resultText(err)
	} else if strings.HasPrefix(out, "Error:") {
		outcome = metrics.OutcomeAppError
	}

	elapsed := time.Since(start)
	d.metrics.ObserveTool(inv.Name, outcome, elapsed)

	// Generic error labels only; raw payloads stay out of telemetry.
	fields := map[string]any{
		"tool_name":   inv.Name,
		"duration_ms": elapsed.Milliseconds(),
		"input_size":  len(inv.Params),
		"output_size": len(out),
		"outcome":     outcome,
		"error":       nil,
	}
	if errLabel != "" {
		fields["error"] = errLabel
	}
	d.recorder.EmitTurn(ctx, telemetry.EventToolExec, fields)

	d.logger.Debug("tool executed", "tool", inv.Name, "id", inv.ID, "outcome", outcome, "duration", elapsed)
	return res
}

func (d *Dispatcher) run(ctx context.Context, inv conversation.ToolInvocation) (string, error) {
	def, err := d.registry.Get(inv.Name)
	if err != nil {
		return "", err
	}
	params, err := Validate(inv, def)
	if err != nil {
		return "", err
	}
	return call(ctx, def, params)
}

func call(ctx context.Context, def tools.ToolDefinition, params tools.Params) (out string, err error) {
	defer func() {
		if r := recover(); r != nil {
			out = ""
			err = &ToolExecutionError{Tool: def.Name, Err: fmt.Errorf("%v", r), Panic: true}
		}
	}()
	out, err = def.Function(ctx, params)
	if err != nil {
		return "", &ToolExecutionError{Tool: def.Name, Err: err}
	}
	return out, nil
}

// resultText is the model-facing error text. Handler errors keep their own
// message so sandbox ToolError bodies reach the model intact.
func resultText(err error) string {
	var te *ToolExecutionError
	if errors.As(err, &te) && !te.Panic {
		return te.Err.Error()
	}
	return err.Error()
}

func errorLabel(err error) string {
	var (
		ve *ValidationError
		te *ToolExecutionError
	)
	switch {
	case errors.Is(err, registry.ErrNotFound):
		return "tool not found"
	case errors.As(err, &ve):
		return "invalid params"
	case errors.As(err, &te) && te.Panic:
		return "tool panic"
	default:
		return "tool error"
	}
}
