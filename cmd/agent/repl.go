package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/petasbytes/sandbox-agent/internal/conversation"
	"github.com/petasbytes/sandbox-agent/internal/engine"
	"github.com/petasbytes/sandbox-agent/memory"
)

// exitGrace bounds how long a second interrupt waits for the canceled turn.
const exitGrace = 2 * time.Second

// session owns the current engine and persists its log after every turn.
type session struct {
	out       io.Writer
	errOut    io.Writer
	store     *memory.Store
	logger    *slog.Logger
	newEngine func(*conversation.Log, engine.Sink) *engine.Engine

	engine *engine.Engine
	sink   *terminalSink
}

func (s *session) start(log *conversation.Log) {
	s.sink = &terminalSink{out: s.out}
	s.engine = s.newEngine(log, s.sink)
}

// reset discards the conversation and starts a fresh engine.
func (s *session) reset() {
	s.start(conversation.NewLog())
	s.persist()
}

func (s *session) persist() {
	if err := s.store.Save(s.engine.Log().Messages()); err != nil {
		s.logger.Warn("failed to save conversation", "path", s.store.Path(), "error", err)
	}
}

// turn submits text. The first signal cancels the turn; a second one asks the
// caller to exit.
func (s *session) turn(ctx context.Context, text string, sigs <-chan os.Signal) (exit bool, err error) {
	turnCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- s.engine.Submit(turnCtx, text) }()

	interrupted := false
	for {
		select {
		case err := <-done:
			s.sink.endMessage()
			s.persist()
			return s.engine.State() == engine.Terminated, s.report(err)
		case <-sigs:
			if interrupted {
				// The turn is already canceled; wait for it to unwind so the
				// results it appended are saved.
				select {
				case <-done:
					s.sink.endMessage()
					s.persist()
				case <-time.After(exitGrace):
					s.logger.Warn("turn did not stop in time; conversation not saved")
				}
				return true, nil
			}
			interrupted = true
			cancel()
			fmt.Fprintln(s.errOut, "\ninterrupted; press Ctrl-C again to exit")
		}
	}
}

// report prints a turn failure and returns it unless the session can carry on.
func (s *session) report(err error) error {
	var rl *engine.RecursionLimitError
	switch {
	case err == nil:
		return nil
	case errors.Is(err, context.Canceled):
		fmt.Fprintln(s.errOut, "turn canceled")
		return nil
	case errors.As(err, &rl):
		fmt.Fprintf(s.errOut, "warning: %v; the turn was stopped\n", err)
		return nil
	case errors.Is(err, engine.ErrUnrecoverable), errors.Is(err, engine.ErrTerminated):
		fmt.Fprintf(s.errOut, "error: %v\n", err)
		return err
	default:
		fmt.Fprintf(s.errOut, "error: %v\n", err)
		return nil
	}
}

func isExit(line string) bool {
	switch strings.ToLower(line) {
	case "exit", "quit", "q":
		return true
	}
	return false
}

// repl reads lines from in until EOF, an exit word, or a signal at the prompt.
func (s *session) repl(ctx context.Context, in io.Reader, sigs <-chan os.Signal) error {
	lines := make(chan string)
	scanErr := make(chan error, 1)
	go func() {
		scanner := bufio.NewScanner(in)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
		scanErr <- scanner.Err()
		close(lines)
	}()

	fmt.Fprintln(s.out, "Chat with Claude (type 'exit' or press Ctrl-C to quit)")
	for {
		userLabel.Fprint(s.out, "You")
		fmt.Fprint(s.out, ": ")

		var line string
		select {
		case <-ctx.Done():
			return nil
		case <-sigs:
			fmt.Fprintln(s.out)
			return nil
		case l, ok := <-lines:
			if !ok {
				fmt.Fprintln(s.out)
				if err := <-scanErr; err != nil {
					s.logger.Warn("stdin read error", "error", err)
				}
				return nil
			}
			line = strings.TrimSpace(l)
		}

		switch {
		case line == "":
			continue
		case isExit(line):
			return nil
		case strings.EqualFold(line, "reset"):
			s.reset()
			fmt.Fprintln(s.out, "conversation reset")
			continue
		}

		exit, err := s.turn(ctx, line, sigs)
		if err != nil || exit {
			return err
		}
	}
}
