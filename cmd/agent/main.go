// Command agent is an interactive chat agent whose tools are confined to a
// sandbox directory.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/petasbytes/sandbox-agent/internal/config"
	"github.com/petasbytes/sandbox-agent/internal/conversation"
	"github.com/petasbytes/sandbox-agent/internal/dispatch"
	"github.com/petasbytes/sandbox-agent/internal/engine"
	"github.com/petasbytes/sandbox-agent/internal/fsops"
	"github.com/petasbytes/sandbox-agent/internal/metrics"
	"github.com/petasbytes/sandbox-agent/internal/provider"
	"github.com/petasbytes/sandbox-agent/internal/registry"
	"github.com/petasbytes/sandbox-agent/internal/safety"
	"github.com/petasbytes/sandbox-agent/internal/telemetry"
	"github.com/petasbytes/sandbox-agent/memory"
	"github.com/petasbytes/sandbox-agent/tools"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

type options struct {
	configPath    string
	model         string
	sandbox       string
	debug         bool
	noDebug       bool
	maxToolRounds int
	parallelTools bool
}

func newRootCmd() *cobra.Command {
	var opts options
	cmd := &cobra.Command{
		Use:   "agent [message]",
		Short: "Chat with a model whose file tools are confined to a sandbox",
		Long: `Without arguments agent starts an interactive session. Type exit, quit or q
to leave and reset to start a new conversation. With a message argument agent
runs that single turn and exits.`,
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts, args)
		},
	}

	bindFlags(cmd, &opts)
	return cmd
}

func bindFlags(cmd *cobra.Command, opts *options) {
	f := cmd.Flags()
	f.StringVar(&opts.configPath, "config", "agent.yaml", "path to the YAML config file")
	f.StringVar(&opts.model, "model", "", "model ID (overrides config)")
	f.StringVar(&opts.sandbox, "sandbox", "", "sandbox root directory (overrides config)")
	f.BoolVar(&opts.debug, "debug", false, "enable debug logging")
	f.BoolVar(&opts.noDebug, "no-debug", false, "disable debug logging even if configured")
	f.IntVar(&opts.maxToolRounds, "max-tool-rounds", 0, "tool rounds allowed per turn (overrides config)")
	f.BoolVar(&opts.parallelTools, "parallel-tools", false, "run the tool calls of one round concurrently")
	cmd.MarkFlagsMutuallyExclusive("debug", "no-debug")
}

// loadConfig reads the config file and applies flags the user set explicitly.
func loadConfig(cmd *cobra.Command, opts options) (*config.Config, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, err
	}
	f := cmd.Flags()
	if f.Changed("model") {
		cfg.Model = opts.model
	}
	if f.Changed("sandbox") {
		cfg.SandboxRoot = opts.sandbox
	}
	if f.Changed("max-tool-rounds") {
		cfg.MaxToolRounds = opts.maxToolRounds
	}
	if f.Changed("parallel-tools") {
		cfg.ParallelTools = opts.parallelTools
	}
	switch {
	case opts.debug:
		cfg.Logging.Level = "debug"
	case opts.noDebug && cfg.Logging.Level == "debug":
		cfg.Logging.Level = "info"
	}
	return cfg, cfg.Validate()
}

func run(cmd *cobra.Command, opts options, args []string) error {
	cfg, err := loadConfig(cmd, opts)
	if err != nil {
		return err
	}
	logger := setupLogger(cfg.Logging, cmd.ErrOrStderr())
	slog.SetDefault(logger)

	apiKey := os.Getenv("ANTHROPIC_API_KEY")
	if apiKey == "" {
		return errors.New("missing ANTHROPIC_API_KEY; export it before running")
	}

	afs := afero.NewOsFs()
	guard, err := safety.NewGuard(afs, cfg.SandboxRoot)
	if err != nil {
		return err
	}
	ws := fsops.New(afs, guard)

	reg := registry.New()
	if err := reg.Discover(tools.Builtins(ws, cfg.EnabledTools...)); err != nil {
		return err
	}

	recorder, err := telemetry.Open(telemetry.Config{Enabled: cfg.Telemetry.Enabled, Dir: cfg.Telemetry.Dir})
	if err != nil {
		return err
	}
	defer recorder.Close()

	var agentMetrics *metrics.Collectors
	if cfg.Metrics.Addr != "" {
		promReg := prometheus.NewRegistry()
		agentMetrics = metrics.NewCollectors(promReg)
		stop := serveMetrics(cfg.Metrics.Addr, promReg, logger)
		defer stop()
	}

	client, err := provider.NewAnthropic(apiKey, provider.Config{
		Model:        cfg.Model,
		MaxTokens:    cfg.MaxTokens,
		SystemPrompt: cfg.SystemPrompt,
		TokenBudget:  cfg.TokenBudget,
	}, provider.WithRecorder(recorder), provider.WithLogger(logger))
	if err != nil {
		return err
	}

	store := memory.NewStore(afs, cfg.PersistPath)
	history, err := store.Load()
	if err != nil {
		return fmt.Errorf("loading conversation: %w", err)
	}

	sess := &session{
		out:    cmd.OutOrStdout(),
		errOut: cmd.ErrOrStderr(),
		store:  store,
		logger: logger,
		newEngine: func(log *conversation.Log, sink engine.Sink) *engine.Engine {
			return engine.New(engine.Config{
				Client: client,
				Executor: dispatch.New(reg,
					dispatch.WithRecorder(recorder),
					dispatch.WithMetrics(agentMetrics),
					dispatch.WithLogger(logger),
				),
				Tools: reg.List(),
				Sink:  sink,
				Log:   log,
				Options: engine.Options{
					MaxToolRounds:             cfg.MaxToolRounds,
					TerminateOnRecursionLimit: cfg.TerminateOnRecursionLimit,
					ParallelTools:             cfg.ParallelTools,
					Logger:                    logger,
					Recorder:                  recorder,
					Metrics:                   agentMetrics,
				},
			})
		},
	}
	sess.start(conversation.NewLog(history...))

	logger.Debug("agent ready",
		"model", cfg.Model,
		"sandbox", guard.Root(),
		"tools", reg.Len(),
		"history", len(history),
	)

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigs)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if len(args) == 1 {
		_, err := sess.turn(ctx, args[0], sigs)
		return err
	}
	return sess.repl(ctx, cmd.InOrStdin(), sigs)
}

// serveMetrics exposes reg on addr until the returned stop function runs.
func serveMetrics(addr string, reg *prometheus.Registry, logger *slog.Logger) (stop func()) {
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", "addr", addr, "error", err)
		}
	}()
	logger.Info("serving metrics", "addr", addr)
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}
}
