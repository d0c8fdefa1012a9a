package windowing

import (
	"log/slog"

	"github.com/petasbytes/sandbox-agent/internal/conversation"
)

// Stats summarizes the result of window preparation.
//
// Fields:
//   - Total: estimated tokens for included groups only.
//   - Budget: the input token budget used.
//   - IncludedGroups: number of groups included.
//   - SkippedGroups: total groups minus IncludedGroups.
//   - OverBudgetNewest: true when the newest single group alone exceeds Budget.
type Stats struct {
	Total            int
	Budget           int
	IncludedGroups   int
	SkippedGroups    int
	OverBudgetNewest bool
}

// PrepareSendWindow returns a subslice of msgs (oldest→newest) that fits within
// budget using the TokenCounter, without splitting groups.
//
// Rules:
//   - Include whole groups scanning newest→oldest while total ≤ budget.
//   - The window starts at a user message when it can: leading groups opened
//     by an assistant or tool message are dropped, except the newest group.
//   - If the newest group alone exceeds budget, return an empty window and set OverBudgetNewest.
//   - If budget ≤ 0, return an empty window (OverBudgetNewest set when any groups exist).
func PrepareSendWindow(msgs []conversation.Message, budget int, c TokenCounter) ([]conversation.Message, Stats) {
	if len(msgs) == 0 {
		return nil, Stats{Budget: budget}
	}

	groups := GroupBlocks(msgs)

	if budget <= 0 {
		return nil, Stats{Budget: budget, SkippedGroups: len(groups), OverBudgetNewest: true}
	}

	costs := make([]int, len(groups))
	for i, g := range groups {
		costs[i] = c.CountGroup(g, msgs)
	}

	newest := len(groups) - 1
	if costs[newest] > budget {
		slog.Debug("windowing: newest group over budget", "budget", budget, "cost", costs[newest])
		return nil, Stats{Budget: budget, SkippedGroups: len(groups), OverBudgetNewest: true}
	}

	total := 0
	startIdx := len(groups)
	for gi := newest; gi >= 0; gi-- {
		if total+costs[gi] > budget {
			break
		}
		total += costs[gi]
		startIdx = gi
	}

	for startIdx < newest && msgs[groups[startIdx].Start].Role != conversation.RoleUser {
		total -= costs[startIdx]
		startIdx++
	}

	included := len(groups) - startIdx
	return msgs[groups[startIdx].Start:], Stats{
		Total:          total,
		Budget:         budget,
		IncludedGroups: included,
		SkippedGroups:  len(groups) - included,
	}
}
