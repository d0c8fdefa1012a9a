// Package provider adapts the Anthropic Messages API to the engine's
// streaming ModelClient.
package provider

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/petasbytes/sandbox-agent/internal/conversation"
	"github.com/petasbytes/sandbox-agent/internal/engine"
	"github.com/petasbytes/sandbox-agent/internal/telemetry"
	"github.com/petasbytes/sandbox-agent/internal/windowing"
	"github.com/petasbytes/sandbox-agent/tools"
)

const (
	DefaultModel     = anthropic.ModelClaude3_7SonnetLatest
	DefaultMaxTokens = 1024
)

// ErrWindowOverBudget means the newest message group alone exceeds the token
// budget, so no request can be built without splitting a tool round.
var ErrWindowOverBudget = errors.New("windowing: newest group exceeds token budget; increase the budget or tighten tool output")

// Config shapes every request the client sends.
type Config struct {
	Model        string
	MaxTokens    int64
	SystemPrompt string
	// TokenBudget > 0 enables send windowing.
	TokenBudget int
}

// Option configures an Anthropic client.
type Option func(*Anthropic)

// WithRequestOptions passes SDK request options through, e.g. a base URL or
// HTTP client.
func WithRequestOptions(opts ...option.RequestOption) Option {
	return func(a *Anthropic) { a.requestOpts = append(a.requestOpts, opts...) }
}

func WithRecorder(r *telemetry.Recorder) Option {
	return func(a *Anthropic) { a.recorder = r }
}

func WithLogger(l *slog.Logger) Option {
	return func(a *Anthropic) { a.logger = l }
}

func WithCounter(c windowing.TokenCounter) Option {
	return func(a *Anthropic) { a.counter = c }
}

// Anthropic is an engine.ModelClient backed by Messages.NewStreaming.
type Anthropic struct {
	client      anthropic.Client
	cfg         Config
	counter     windowing.TokenCounter
	recorder    *telemetry.Recorder
	logger      *slog.Logger
	requestOpts []option.RequestOption
}

var _ engine.ModelClient = (*Anthropic)(nil)

// NewAnthropic returns a client authenticated with apiKey.
func NewAnthropic(apiKey string, cfg Config, opts ...Option) (*Anthropic, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("anthropic API key is required")
	}
	if cfg.Model == "" {
		cfg.Model = string(DefaultModel)
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = DefaultMaxTokens
	}

	a := &Anthropic{cfg: cfg, counter: windowing.HeuristicCounter{}, logger: slog.Default()}
	for _, opt := range opts {
		opt(a)
	}
	clientOpts := append([]option.RequestOption{option.WithAPIKey(apiKey)}, a.requestOpts...)
	a.client = anthropic.NewClient(clientOpts...)
	return a, nil
}

// Send starts a streaming request over msgs. The window is cut from msgs
// when a token budget is configured; msgs itself is never modified.
func (a *Anthropic) Send(ctx context.Context, msgs []conversation.Message, defs []tools.ToolDefinition) (engine.Stream, error) {
	window, err := a.window(ctx, msgs)
	if err != nil {
		return nil, err
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(a.cfg.Model),
		MaxTokens: a.cfg.MaxTokens,
		Messages:  MessageParams(window),
	}
	if a.cfg.SystemPrompt != "" {
		params.System = []anthropic.TextBlockParam{{Text: a.cfg.SystemPrompt}}
	}
	if len(defs) > 0 {
		params.Tools = ToolParams(defs)
	}

	a.logger.Debug("model request", "model", a.cfg.Model, "messages", len(params.Messages), "tools", len(params.Tools))
	return newStream(a.client.Messages.NewStreaming(ctx, params)), nil
}

func (a *Anthropic) window(ctx context.Context, msgs []conversation.Message) ([]conversation.Message, error) {
	if a.cfg.TokenBudget <= 0 {
		return msgs, nil
	}
	window, stats := windowing.PrepareSendWindow(msgs, a.cfg.TokenBudget, a.counter)

	a.recorder.EmitTurn(ctx, telemetry.EventWindowPrepared, map[string]any{
		"model":              a.cfg.Model,
		"budget":             stats.Budget,
		"total_estimated":    stats.Total,
		"included_groups":    stats.IncludedGroups,
		"skipped_groups":     stats.SkippedGroups,
		"over_budget_newest": stats.OverBudgetNewest,
	})
	a.logger.Debug("window prepared",
		"budget", stats.Budget,
		"est_total", stats.Total,
		"groups_in", stats.IncludedGroups,
		"groups_skip", stats.SkippedGroups,
		"newest_over", stats.OverBudgetNewest,
	)

	if stats.OverBudgetNewest {
		return nil, ErrWindowOverBudget
	}
	return window, nil
}

// classify marks errors the session cannot recover from.
func classify(err error) error {
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		switch apiErr.StatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			return fmt.Errorf("%w: %w", engine.ErrUnrecoverable, err)
		}
	}
	return err
}
