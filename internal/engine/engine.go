package engine

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/petasbytes/sandbox-agent/internal/conversation"
	"github.com/petasbytes/sandbox-agent/internal/metrics"
	"github.com/petasbytes/sandbox-agent/internal/telemetry"
	"github.com/petasbytes/sandbox-agent/tools"
)

// DefaultMaxToolRounds bounds tool rounds per turn when Options leaves it unset.
const DefaultMaxToolRounds = 10

// State is the engine's position in the turn cycle.
type State int32

const (
	AwaitingInput State = iota
	Streaming
	ExecutingTools
	Terminated
)

func (s State) String() string {
	switch s {
	case AwaitingInput:
		return "awaiting_input"
	case Streaming:
		return "streaming"
	case ExecutingTools:
		return "executing_tools"
	case Terminated:
		return "terminated"
	}
	return "unknown"
}

// Turn outcomes used for metrics and telemetry.
const (
	outcomeCompleted      = "completed"
	outcomeCanceled       = "canceled"
	outcomeError          = "error"
	outcomeRecursionLimit = "recursion_limit"
	outcomeTerminated     = "terminated"
)

// Options tunes a turn.
type Options struct {
	MaxToolRounds             int
	TerminateOnRecursionLimit bool
	// ParallelTools runs the invocations of one round concurrently. Results
	// are still appended in invocation order.
	ParallelTools bool

	Logger   *slog.Logger
	Recorder *telemetry.Recorder
	Metrics  *metrics.Collectors
}

// Config wires an Engine.
type Config struct {
	Client   ModelClient
	Executor Executor
	Tools    []tools.ToolDefinition
	Sink     Sink
	// Log is the conversation to continue. A nil Log starts empty.
	Log *conversation.Log
	Options
}

// Engine runs turns against one conversation log. Submit may be called from
// several goroutines; turns are serialised.
type Engine struct {
	mu         sync.Mutex
	state      atomic.Int32
	terminated atomic.Bool

	client ModelClient
	exec   Executor
	tools  []tools.ToolDefinition
	sink   Sink
	log    *conversation.Log
	opts   Options
}

// New returns an Engine in AwaitingInput.
func New(cfg Config) *Engine {
	if cfg.Log == nil {
		cfg.Log = conversation.NewLog()
	}
	if cfg.Sink == nil {
		cfg.Sink = nopSink{}
	}
	if cfg.MaxToolRounds <= 0 {
		cfg.MaxToolRounds = DefaultMaxToolRounds
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Engine{
		client: cfg.Client,
		exec:   cfg.Executor,
		tools:  cfg.Tools,
		sink:   cfg.Sink,
		log:    cfg.Log,
		opts:   cfg.Options,
	}
}

// State returns the current state.
func (e *Engine) State() State {
	if e.terminated.Load() {
		return Terminated
	}
	return State(e.state.Load())
}

func (e *Engine) setState(s State) { e.state.Store(int32(s)) }

// Log returns the conversation log. It stays readable after termination.
// Callers must not append to it while a turn is running.
func (e *Engine) Log() *conversation.Log { return e.log }

// Terminate moves the engine to Terminated. A running turn stops at its next
// round boundary.
func (e *Engine) Terminate() {
	e.terminated.Store(true)
}

// Submit runs one user turn to completion.
func (e *Engine) Submit(ctx context.Context, text string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.terminated.Load() {
		return ErrTerminated
	}

	ctx, turnID := telemetry.StartTurn(ctx)
	e.opts.Recorder.TurnStarted(ctx, conversation.NewUserMessage(text))
	start := time.Now()
	before := e.log.Len()

	rounds, err := e.runTurn(ctx, text)

	outcome := turnOutcome(err)
	if outcome == outcomeTerminated || errors.Is(err, ErrUnrecoverable) {
		e.terminated.Store(true)
	}
	if !e.terminated.Load() {
		e.setState(AwaitingInput)
	}

	e.opts.Metrics.IncrementTurn(outcome)
	msgs := e.log.Messages()
	e.opts.Recorder.TurnCompleted(ctx, map[string]any{
		"outcome":     outcome,
		"tool_rounds": rounds,
		"duration_ms": time.Since(start).Milliseconds(),
		"log_len":     len(msgs),
	}, msgs[before:])
	e.opts.Logger.Debug("turn finished", "turn_id", turnID, "outcome", outcome, "tool_rounds", rounds, "state", e.State())
	return err
}

func turnOutcome(err error) string {
	var rl *RecursionLimitError
	switch {
	case err == nil:
		return outcomeCompleted
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return outcomeCanceled
	case errors.Is(err, ErrTerminated):
		return outcomeTerminated
	case errors.As(err, &rl):
		return outcomeRecursionLimit
	default:
		return outcomeError
	}
}

// runTurn streams and executes tool rounds until the model stops asking for
// tools. The user message stays staged until the first assistant message is
// complete, so an aborted first request leaves the log untouched.
func (e *Engine) runTurn(ctx context.Context, text string) (int, error) {
	staged := conversation.NewUserMessage(text)
	committed := false
	rounds := 0

	for {
		if e.terminated.Load() {
			return rounds, ErrTerminated
		}

		msgs := e.log.Messages()
		if !committed {
			msgs = append(msgs, staged)
		}

		e.setState(Streaming)
		reply, invs, err := e.stream(ctx, msgs, rounds)
		if err != nil {
			return rounds, err
		}

		if !committed {
			e.log.Append(staged)
			committed = true
		}
		e.log.Append(conversation.NewAssistantMessage(reply, invs))

		if len(invs) == 0 {
			return rounds, nil
		}

		if rounds >= e.opts.MaxToolRounds {
			for _, inv := range invs {
				e.appendResult(inv, conversation.ToolResult{
					ID:     inv.ID,
					Status: conversation.StatusError,
					Output: "tool round limit reached",
				})
			}
			if e.opts.TerminateOnRecursionLimit {
				e.terminated.Store(true)
			}
			return rounds, &RecursionLimitError{Limit: e.opts.MaxToolRounds}
		}

		rounds++
		e.setState(ExecutingTools)
		if err := e.executeTools(ctx, invs); err != nil {
			return rounds, err
		}
	}
}

// stream consumes one model response. Text deltas reach the sink as they
// arrive; invocations are buffered in emission order.
func (e *Engine) stream(ctx context.Context, msgs []conversation.Message, round int) (string, []conversation.ToolInvocation, error) {
	start := time.Now()
	reply, invs, err := e.consume(ctx, msgs)

	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	e.opts.Metrics.IncrementModelRequest(outcome)
	e.opts.Recorder.EmitTurn(ctx, telemetry.EventModelRequest, map[string]any{
		"round":       round,
		"messages":    len(msgs),
		"duration_ms": time.Since(start).Milliseconds(),
		"invocations": len(invs),
		"outcome":     outcome,
	})
	return reply, invs, err
}

func (e *Engine) consume(ctx context.Context, msgs []conversation.Message) (string, []conversation.ToolInvocation, error) {
	s, err := e.client.Send(ctx, msgs, e.tools)
	if err != nil {
		return "", nil, clientError(ctx, err)
	}
	defer s.Close()

	var (
		text     strings.Builder
		invs     []conversation.ToolInvocation
		complete bool
	)
	for !complete && s.Next() {
		if err := ctx.Err(); err != nil {
			return "", nil, err
		}
		ev := s.Current()
		switch ev.Kind {
		case EventTextDelta:
			text.WriteString(ev.Text)
			e.sink.TextDelta(ev.Text)
		case EventToolInvocation:
			invs = append(invs, ev.Invocation)
		case EventTurnComplete:
			complete = true
		}
	}
	if err := ctx.Err(); err != nil {
		return "", nil, err
	}
	if err := s.Err(); err != nil {
		return "", nil, clientError(ctx, err)
	}
	if !complete {
		return "", nil, &ExternalClientError{Err: io.ErrUnexpectedEOF}
	}
	return text.String(), invs, nil
}

// clientError reports cancellation as ctx.Err() and anything else as an
// ExternalClientError.
func clientError(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return &ExternalClientError{Err: err}
}
