// Package windowing selects the newest whole message groups of a conversation
// that fit an input token budget.
package windowing

import (
	"log/slog"

	"github.com/petasbytes/sandbox-agent/internal/conversation"
)

// GroupKind denotes the atomic unit type when preparing a send window.
type GroupKind int

const (
	GroupSingleton GroupKind = iota
	GroupPair
)

// Group describes a contiguous span of messages [Start, End) in the original slice.
// Kind indicates whether it is a singleton or a validated pair.
type Group struct {
	Kind  GroupKind
	Start int // inclusive index into msgs
	End   int // exclusive index into msgs
}

// GroupBlocks groups messages into atomic units that preserve tool-use pairs.
// Invariants:
//   - A pair is an assistant message with tool_use blocks followed by the run of
//     tool messages that answers it.
//   - Parallel completeness: every tool_use id must have a result in the run,
//     and the run may not carry results for ids the assistant never issued.
//   - Error results are treated the same as successful ones.
//
// Anything else is a singleton.
func GroupBlocks(msgs []conversation.Message) []Group {
	groups := make([]Group, 0, len(msgs))
	for i := 0; i < len(msgs); {
		m := msgs[i]
		if m.Role == conversation.RoleAssistant {
			useIDs := toolUseIDs(m)
			if len(useIDs) > 0 {
				end := i + 1
				for end < len(msgs) && msgs[end].Role == conversation.RoleTool {
					end++
				}
				resultIDs := toolResultIDs(msgs[i+1 : end])
				switch {
				case end == i+1:
					slog.Debug("windowing: exclude pair", "reason", "no_results", "idx", i)
				case !coversAll(resultIDs, useIDs):
					slog.Debug("windowing: exclude pair", "reason", "missing_results", "idx", i)
				case !coversAll(useIDs, resultIDs):
					slog.Debug("windowing: exclude pair", "reason", "extra_results", "idx", i)
				default:
					groups = append(groups, Group{Kind: GroupPair, Start: i, End: end})
					i = end
					continue
				}
			}
		}
		groups = append(groups, Group{Kind: GroupSingleton, Start: i, End: i + 1})
		i++
	}
	return groups
}

func toolUseIDs(m conversation.Message) map[string]struct{} {
	ids := make(map[string]struct{})
	for _, inv := range m.Invocations() {
		if inv.ID != "" {
			ids[inv.ID] = struct{}{}
		}
	}
	return ids
}

func toolResultIDs(msgs []conversation.Message) map[string]struct{} {
	ids := make(map[string]struct{})
	for _, m := range msgs {
		for _, b := range m.Content {
			if b.Result != nil && b.Result.ID != "" {
				ids[b.Result.ID] = struct{}{}
			}
		}
	}
	return ids
}

// coversAll checks that every id in required is present in have.
func coversAll(have, required map[string]struct{}) bool {
	for id := range required {
		if _, ok := have[id]; !ok {
			return false
		}
	}
	return true
}
