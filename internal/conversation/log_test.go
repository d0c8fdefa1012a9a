package conversation_test

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/petasbytes/sandbox-agent/internal/conversation"
)

func TestLog_AppendPreservesOrder(t *testing.T) {
	log := conversation.NewLog()
	inv := conversation.ToolInvocation{ID: "t1", Name: "read_file", Params: json.RawMessage(`{"file_path":"a"}`)}

	log.Append(conversation.NewUserMessage("hi"))
	log.Append(conversation.NewAssistantMessage("looking", []conversation.ToolInvocation{inv}))
	log.Append(conversation.NewToolMessage(conversation.ToolResult{ID: "t1", Status: conversation.StatusOK, Output: "x"}))

	if log.Len() != 3 {
		t.Fatalf("len: got %d want 3", log.Len())
	}
	var roles []conversation.Role
	for _, m := range log.Messages() {
		roles = append(roles, m.Role)
	}
	want := []conversation.Role{conversation.RoleUser, conversation.RoleAssistant, conversation.RoleTool}
	if diff := cmp.Diff(want, roles); diff != "" {
		t.Fatalf("roles mismatch (-want +got):\n%s", diff)
	}
}

func TestLog_EntriesImmutableAfterAppend(t *testing.T) {
	log := conversation.NewLog()
	inv := conversation.ToolInvocation{ID: "t1", Name: "x", Params: json.RawMessage(`{"a":1}`)}
	m := conversation.NewAssistantMessage("text", []conversation.ToolInvocation{inv})
	log.Append(m)

	// Mutating the caller's copy or a returned copy must not reach the log.
	m.Content[0].Text = "changed"
	got := log.Messages()
	got[0].Content[1].Invocation.Name = "changed"
	got[0].Content[1].Invocation.Params[1] = 'X'

	last, ok := log.Last()
	if !ok {
		t.Fatal("expected a last message")
	}
	if last.Text() != "text" {
		t.Fatalf("text mutated: %q", last.Text())
	}
	invs := last.Invocations()
	if len(invs) != 1 || invs[0].Name != "x" || string(invs[0].Params) != `{"a":1}` {
		t.Fatalf("invocation mutated: %+v", invs)
	}
}

func TestNewAssistantMessage_OmitsEmptyText(t *testing.T) {
	m := conversation.NewAssistantMessage("", []conversation.ToolInvocation{{ID: "a", Name: "n"}, {ID: "b", Name: "n"}})
	if len(m.Content) != 2 {
		t.Fatalf("expected only tool_use blocks, got %+v", m.Content)
	}
	if ids := []string{m.Invocations()[0].ID, m.Invocations()[1].ID}; ids[0] != "a" || ids[1] != "b" {
		t.Fatalf("order not preserved: %v", ids)
	}
}

func TestLog_LastOnEmpty(t *testing.T) {
	if _, ok := conversation.NewLog().Last(); ok {
		t.Fatal("expected no last message on empty log")
	}
}
