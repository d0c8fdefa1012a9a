package main

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/fatih/color"
	"github.com/petasbytes/sandbox-agent/internal/conversation"
)

const summaryRunes = 80

var (
	userLabel      = color.New(color.FgHiBlue)
	assistantLabel = color.New(color.FgHiYellow)
	toolOK         = color.New(color.FgGreen)
	toolFailed     = color.New(color.FgRed)
)

// terminalSink prints streamed text as it arrives and one summary line per
// tool result.
type terminalSink struct {
	out       io.Writer
	inMessage bool
}

func (s *terminalSink) TextDelta(text string) {
	if !s.inMessage {
		assistantLabel.Fprint(s.out, "Claude")
		fmt.Fprint(s.out, ": ")
		s.inMessage = true
	}
	fmt.Fprint(s.out, text)
}

func (s *terminalSink) ToolResult(inv conversation.ToolInvocation, res conversation.ToolResult) {
	s.endMessage()
	c := toolOK
	if res.IsError() || strings.HasPrefix(res.Output, "Error:") {
		c = toolFailed
	}
	c.Fprintf(s.out, "  %s", inv.Name)
	fmt.Fprintf(s.out, " %s\n", summarize(res.Output))
}

// endMessage terminates a partially printed assistant line.
func (s *terminalSink) endMessage() {
	if s.inMessage {
		fmt.Fprintln(s.out)
		s.inMessage = false
	}
}

// summarize returns the first line of s, cut to summaryRunes.
func summarize(s string) string {
	line, _, more := strings.Cut(strings.TrimSpace(s), "\n")
	if utf8.RuneCountInString(line) > summaryRunes {
		line = string([]rune(line)[:summaryRunes])
		more = true
	}
	if more {
		line += " …"
	}
	return line
}
