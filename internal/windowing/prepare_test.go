package windowing_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/petasbytes/sandbox-agent/internal/conversation"
	"github.com/petasbytes/sandbox-agent/internal/windowing"
)

func roles(msgs []conversation.Message) []conversation.Role {
	out := make([]conversation.Role, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, m.Role)
	}
	return out
}

func TestPrepareSendWindow_BudgetRespected_OrderPreserved(t *testing.T) {
	// Oldest -> newest
	msgs := []conversation.Message{
		U("old"),    // G0: 3 + 4 = 7
		U("ask"),    // G1: 7
		A("", "a"),  // G2: tool_use "t" 1 + 4 = 5
		R("a", "r"), //     1 + 4 = 5 => 10
		U("tail"),   // G3: 8
	}
	budget := 25 // G3(8) + G2(10) + G1(7)

	window, stats := windowing.PrepareSendWindow(msgs, budget, windowing.HeuristicCounter{})

	want := windowing.Stats{Total: 25, Budget: 25, IncludedGroups: 3, SkippedGroups: 1}
	if diff := cmp.Diff(want, stats); diff != "" {
		t.Fatalf("stats (-want +got):\n%s", diff)
	}
	wantRoles := []conversation.Role{conversation.RoleUser, conversation.RoleAssistant, conversation.RoleTool, conversation.RoleUser}
	if diff := cmp.Diff(wantRoles, roles(window)); diff != "" {
		t.Fatalf("roles (-want +got):\n%s", diff)
	}
}

func TestPrepareSendWindow_NeverOpensOnOrphanedPair(t *testing.T) {
	msgs := []conversation.Message{
		U("a much longer opening question"), // G0: 34
		A("", "a"),                          // G1: 10
		R("a", "r"),
		U("tail"), // G2: 8
	}
	// G2 + G1 fit, but a window may not open with the assistant's tool_use.
	window, stats := windowing.PrepareSendWindow(msgs, 20, windowing.HeuristicCounter{})

	want := windowing.Stats{Total: 8, Budget: 20, IncludedGroups: 1, SkippedGroups: 2}
	if diff := cmp.Diff(want, stats); diff != "" {
		t.Fatalf("stats (-want +got):\n%s", diff)
	}
	if len(window) != 1 || window[0].Text() != "tail" {
		t.Fatalf("unexpected window: %+v", window)
	}
}

func TestPrepareSendWindow_NewestPairKeptDuringContinuation(t *testing.T) {
	msgs := []conversation.Message{
		U("a much longer opening question"), // G0: 34
		A("", "a"),                          // G1: 10 (newest)
		R("a", "r"),
	}
	window, stats := windowing.PrepareSendWindow(msgs, 12, windowing.HeuristicCounter{})
	if stats.IncludedGroups != 1 || stats.OverBudgetNewest || len(window) != 2 {
		t.Fatalf("unexpected result: window=%d stats=%+v", len(window), stats)
	}
}

func TestPrepareSendWindow_NewestGroupOverBudget(t *testing.T) {
	msgs := []conversation.Message{
		U("old"),         // G0: 7
		A("", "a"),       // G1: 5
		R("a", "xxxxxx"), //     10 => 15 (newest)
	}

	window, stats := windowing.PrepareSendWindow(msgs, 10, windowing.HeuristicCounter{})

	if len(window) != 0 {
		t.Fatalf("expected empty window; got=%d", len(window))
	}
	if !stats.OverBudgetNewest || stats.IncludedGroups != 0 || stats.SkippedGroups != 2 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}

func TestPrepareSendWindow_NoCapacityBudget_WithGroups(t *testing.T) {
	window, stats := windowing.PrepareSendWindow([]conversation.Message{U("x")}, 0, windowing.HeuristicCounter{})

	if len(window) != 0 || !stats.OverBudgetNewest || stats.SkippedGroups != 1 || stats.IncludedGroups != 0 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}

func TestPrepareSendWindow_EmptyMsgs(t *testing.T) {
	window, stats := windowing.PrepareSendWindow(nil, 123, windowing.HeuristicCounter{})
	if window != nil || stats.Budget != 123 || stats.Total != 0 || stats.OverBudgetNewest {
		t.Fatalf("unexpected result: window=%v stats=%+v", window, stats)
	}
}

func TestPrepareSendWindow_AllFitIncludingOldest(t *testing.T) {
	msgs := []conversation.Message{
		U("oldest"), // 10
		U("mid"),    // 7
		U("new"),    // 7
	}
	window, stats := windowing.PrepareSendWindow(msgs, 24, windowing.HeuristicCounter{})

	if stats.OverBudgetNewest || stats.IncludedGroups != 3 || stats.SkippedGroups != 0 || stats.Total != 24 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
	if diff := cmp.Diff(msgs, window); diff != "" {
		t.Fatalf("window (-want +got):\n%s", diff)
	}
}

func TestPrepareSendWindow_ExactlyOneOlderAlsoFits(t *testing.T) {
	msgs := []conversation.Message{
		U("a"),    // 5
		U("bbbb"), // 8
		U("cc"),   // 6 (newest)
	}
	// 6 + 8 = 14; adding the oldest would make 19.
	window, stats := windowing.PrepareSendWindow(msgs, 14, windowing.HeuristicCounter{})

	if stats.IncludedGroups != 2 || stats.SkippedGroups != 1 || stats.Total != 14 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
	if diff := cmp.Diff(msgs[1:], window); diff != "" {
		t.Fatalf("window (-want +got):\n%s", diff)
	}
}
