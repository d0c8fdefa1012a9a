package windowing

import (
	"unicode/utf8"

	"github.com/petasbytes/sandbox-agent/internal/conversation"
)

// TokenCounter estimates input-token cost for messages or groups.
type TokenCounter interface {
	CountMessage(m conversation.Message) int
	CountGroup(g Group, all []conversation.Message) int
}

// HeuristicCounter is the default deterministic estimator.
// Rules:
//   - text blocks: rune count of the text
//   - tool_use blocks: rune count of the tool name plus the raw params
//   - tool_result blocks: rune count of the output
//
// Every block adds a small fixed overhead for minimal formatting.
type HeuristicCounter struct{}

// Fixed per-block overhead for deterministic counts; changing this requires updating the guard test.
const blockOverhead = 4

func (HeuristicCounter) CountMessage(m conversation.Message) int {
	total := 0
	for _, blk := range m.Content {
		total += countBlock(blk)
	}
	return total
}

func (h HeuristicCounter) CountGroup(g Group, all []conversation.Message) int {
	total := 0
	for i := g.Start; i < g.End && i < len(all); i++ {
		total += h.CountMessage(all[i])
	}
	return total
}

func countBlock(blk conversation.Block) int {
	switch blk.Kind {
	case conversation.BlockText:
		return utf8.RuneCountInString(blk.Text) + blockOverhead
	case conversation.BlockToolUse:
		if inv := blk.Invocation; inv != nil {
			return utf8.RuneCountInString(inv.Name) + utf8.RuneCount(inv.Params) + blockOverhead
		}
	case conversation.BlockToolResult:
		if res := blk.Result; res != nil {
			return utf8.RuneCountInString(res.Output) + blockOverhead
		}
	}
	return blockOverhead
}
