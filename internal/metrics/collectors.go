package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Tool outcomes.
const (
	OutcomeOK       = "ok"
	OutcomeAppError = "app_error" // handler returned "Error: ..." output
	OutcomeError    = "error"
)

// Collectors holds the agent's prometheus metrics. A nil *Collectors is a
// valid no-op, so components can run without a registry.
type Collectors struct {
	toolCalls     *prometheus.CounterVec
	toolDuration  *prometheus.HistogramVec
	turns         *prometheus.CounterVec
	modelRequests *prometheus.CounterVec
}

// NewCollectors creates the collectors and registers them with registry.
// A nil registry yields nil.
func NewCollectors(registry *prometheus.Registry) *Collectors {
	if registry == nil {
		return nil
	}

	c := &Collectors{
		toolCalls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "agent_tool_calls_total",
				Help: "Total number of tool calls by tool name and outcome",
			},
			[]string{"tool", "outcome"},
		),
		toolDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "agent_tool_duration_seconds",
				Help:    "Tool handler latency",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"tool"},
		),
		turns: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "agent_turns_total",
				Help: "Total number of user turns by outcome",
			},
			[]string{"outcome"},
		),
		modelRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "agent_model_requests_total",
				Help: "Total number of streaming model requests by outcome",
			},
			[]string{"outcome"},
		),
	}

	registry.MustRegister(
		c.toolCalls,
		c.toolDuration,
		c.turns,
		c.modelRequests,
	)
	return c
}

func (c *Collectors) ObserveTool(tool, outcome string, d time.Duration) {
	if c == nil {
		return
	}
	c.toolCalls.WithLabelValues(tool, outcome).Inc()
	c.toolDuration.WithLabelValues(tool).Observe(d.Seconds())
}

func (c *Collectors) IncrementTurn(outcome string) {
	if c != nil {
		c.turns.WithLabelValues(outcome).Inc()
	}
}

func (c *Collectors) IncrementModelRequest(outcome string) {
	if c != nil {
		c.modelRequests.WithLabelValues(outcome).Inc()
	}
}

// ToolCalls exposes the tool counter for inspection in tests.
func (c *Collectors) ToolCalls() *prometheus.CounterVec { return c.toolCalls }

// Turns exposes the turn counter for inspection in tests.
func (c *Collectors) Turns() *prometheus.CounterVec { return c.turns }

// ModelRequests exposes the model request counter for inspection in tests.
func (c *Collectors) ModelRequests() *prometheus.CounterVec { return c.modelRequests }
