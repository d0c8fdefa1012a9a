package dispatch_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/petasbytes/sandbox-agent/internal/conversation"
	"github.com/petasbytes/sandbox-agent/internal/dispatch"
	"github.com/petasbytes/sandbox-agent/internal/metrics"
	"github.com/petasbytes/sandbox-agent/internal/registry"
	"github.com/petasbytes/sandbox-agent/internal/telemetry"
	"github.com/petasbytes/sandbox-agent/tools"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

type echoInput struct {
	Text  string  `json:"text"`
	Count int     `json:"count"`
	Mode  string  `json:"mode,omitempty" jsonschema:"enum=loud,enum=quiet"`
	Ratio float64 `json:"ratio,omitempty"`
	Flag  bool    `json:"flag,omitempty"`
}

type noInput struct{}

func echoTool() tools.ToolDefinition {
	return tools.NewTool("echo", "echo text", func(_ context.Context, in echoInput) (string, error) {
		return strings.Repeat(in.Text, in.Count), nil
	})
}

func inv(name, params string) conversation.ToolInvocation {
	return conversation.ToolInvocation{ID: "id-" + name, Name: name, Params: json.RawMessage(params)}
}

func TestValidate_MissingRequiredField(t *testing.T) {
	_, err := dispatch.Validate(inv("echo", `{"count": 2}`), echoTool())
	var ve *dispatch.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if diff := cmp.Diff([]string{"text"}, ve.Fields); diff != "" {
		t.Fatalf("fields (-want +got):\n%s", diff)
	}
}

func TestValidate_WrongTypesInSchemaOrder(t *testing.T) {
	_, err := dispatch.Validate(inv("echo", `{"flag": "yes", "text": 5, "count": 1.5, "mode": "shout", "ratio": "x"}`), echoTool())
	var ve *dispatch.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	want := []string{"text", "count", "mode", "ratio", "flag"}
	if diff := cmp.Diff(want, ve.Fields); diff != "" {
		t.Fatalf("fields (-want +got):\n%s", diff)
	}
}

func TestValidate_IntegerRejectsFractionAndOverflow(t *testing.T) {
	for _, n := range []string{`2.5`, `1e20`, `-1e20`, `9223372036854775808`, `1e400`} {
		_, err := dispatch.Validate(inv("echo", `{"text":"a","count":`+n+`}`), echoTool())
		var ve *dispatch.ValidationError
		if !errors.As(err, &ve) {
			t.Fatalf("count=%s: expected ValidationError, got %v", n, err)
		}
		if diff := cmp.Diff([]string{"count"}, ve.Fields); diff != "" {
			t.Fatalf("count=%s fields (-want +got):\n%s", n, diff)
		}
	}

	params, err := dispatch.Validate(inv("echo", `{"text":"a","count":9223372036854775807}`), echoTool())
	if err != nil {
		t.Fatalf("max int64 should pass: %v", err)
	}
	if got := params["count"]; got != json.Number("9223372036854775807") {
		t.Fatalf("count: %v", got)
	}
}

func TestValidate_UnparseableJSON(t *testing.T) {
	for _, raw := range []string{`{"text":`, `[1,2]`, `"str"`, `{} {}`} {
		_, err := dispatch.Validate(inv("echo", raw), echoTool())
		var ve *dispatch.ValidationError
		if !errors.As(err, &ve) || len(ve.Fields) != 1 || ve.Fields[0] != "$" {
			t.Fatalf("%s: expected ValidationError on $, got %v", raw, err)
		}
	}
}

func TestValidate_AcceptsValidAndNullOptional(t *testing.T) {
	params, err := dispatch.Validate(inv("echo", `{"text":"a","count":2.0,"mode":"quiet","ratio":null}`), echoTool())
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if _, ok := params["ratio"]; ok {
		t.Fatal("null optional should be dropped")
	}
	if _, err := dispatch.Validate(inv("t", ``), tools.GetCurrentTimeTool()); err != nil {
		t.Fatalf("empty params for no-arg tool: %v", err)
	}
}

func newDispatcher(t *testing.T, defs ...tools.ToolDefinition) (*dispatch.Dispatcher, *metrics.Collectors, *bytes.Buffer) {
	t.Helper()
	reg := registry.New()
	if err := reg.Discover(registry.Static(defs)); err != nil {
		t.Fatal(err)
	}
	c := metrics.NewCollectors(prometheus.NewRegistry())
	var buf bytes.Buffer
	d := dispatch.New(reg, dispatch.WithMetrics(c), dispatch.WithRecorder(telemetry.NewRecorder(&buf)))
	return d, c, &buf
}

func TestExecute_Success(t *testing.T) {
	d, c, buf := newDispatcher(t, echoTool())
	ctx := telemetry.WithTurnID(context.Background(), "turn-1")

	res := d.Execute(ctx, inv("echo", `{"text":"ab","count":2}`))
	want := conversation.ToolResult{ID: "id-echo", Status: conversation.StatusOK, Output: "abab"}
	if diff := cmp.Diff(want, res); diff != "" {
		t.Fatalf("result (-want +got):\n%s", diff)
	}
	if got := testutil.ToFloat64(c.ToolCalls().WithLabelValues("echo", metrics.OutcomeOK)); got != 1 {
		t.Fatalf("ok counter: %v", got)
	}

	var ev map[string]any
	if err := json.Unmarshal(buf.Bytes(), &ev); err != nil {
		t.Fatalf("tool_exec event: %v", err)
	}
	if ev["event"] != "tool_exec" || ev["tool_name"] != "echo" || ev["turn_id"] != "turn-1" || ev["error"] != nil {
		t.Fatalf("unexpected event: %v", ev)
	}
	if ev["input_size"] != float64(len(`{"text":"ab","count":2}`)) || ev["output_size"] != float64(4) {
		t.Fatalf("sizes: %v %v", ev["input_size"], ev["output_size"])
	}
	if strings.Contains(buf.String(), "abab") {
		t.Fatal("raw output leaked into telemetry")
	}
}

func TestExecute_UnknownTool(t *testing.T) {
	d, _, buf := newDispatcher(t, echoTool())
	res := d.Execute(context.Background(), inv("nope", `{}`))
	if !res.IsError() || !strings.Contains(res.Output, "tool not found") {
		t.Fatalf("unexpected result: %+v", res)
	}
	if !strings.Contains(buf.String(), `"error":"tool not found"`) {
		t.Fatalf("telemetry: %s", buf.String())
	}
}

func TestExecute_ValidationFailureIsErrorResult(t *testing.T) {
	d, c, _ := newDispatcher(t, echoTool())
	res := d.Execute(context.Background(), inv("echo", `{"count":1}`))
	if !res.IsError() || !strings.Contains(res.Output, "text") {
		t.Fatalf("unexpected result: %+v", res)
	}
	if got := testutil.ToFloat64(c.ToolCalls().WithLabelValues("echo", metrics.OutcomeError)); got != 1 {
		t.Fatalf("error counter: %v", got)
	}
}

func TestExecute_HandlerErrorKeepsMessage(t *testing.T) {
	failing := tools.NewTool("fail", "fails", func(context.Context, noInput) (string, error) {
		return "", errors.New(`{"code":"ERR_PATH_OUTSIDE_SANDBOX","message":"nope"}`)
	})
	d, _, _ := newDispatcher(t, failing)
	res := d.Execute(context.Background(), inv("fail", `{}`))
	want := conversation.ToolResult{ID: "id-fail", Status: conversation.StatusError, Output: `{"code":"ERR_PATH_OUTSIDE_SANDBOX","message":"nope"}`}
	if diff := cmp.Diff(want, res); diff != "" {
		t.Fatalf("result (-want +got):\n%s", diff)
	}
}

func TestExecute_PanicRecovered(t *testing.T) {
	boom := tools.NewTool("boom", "panics", func(context.Context, noInput) (string, error) {
		panic("kaboom")
	})
	d, _, buf := newDispatcher(t, boom)
	res := d.Execute(context.Background(), inv("boom", `{}`))
	if !res.IsError() || !strings.Contains(res.Output, "kaboom") {
		t.Fatalf("unexpected result: %+v", res)
	}
	if !strings.Contains(buf.String(), `"error":"tool panic"`) {
		t.Fatalf("telemetry: %s", buf.String())
	}
}

func TestExecute_AppErrorCountedSeparately(t *testing.T) {
	soft := tools.NewTool("soft", "soft failure", func(context.Context, noInput) (string, error) {
		return "Error: File not found - x", nil
	})
	d, c, buf := newDispatcher(t, soft)
	res := d.Execute(context.Background(), inv("soft", `{}`))
	if res.IsError() {
		t.Fatalf("app-level error must keep status ok: %+v", res)
	}
	if got := testutil.ToFloat64(c.ToolCalls().WithLabelValues("soft", metrics.OutcomeAppError)); got != 1 {
		t.Fatalf("app_error counter: %v", got)
	}
	if !strings.Contains(buf.String(), `"outcome":"app_error"`) {
		t.Fatalf("telemetry: %s", buf.String())
	}
}

func TestExecute_HandlerSeesContext(t *testing.T) {
	type key struct{}
	var seen any
	ctxTool := tools.NewTool("ctx", "reads ctx", func(ctx context.Context, _ noInput) (string, error) {
		seen = ctx.Value(key{})
		return "ok", nil
	})
	d, _, _ := newDispatcher(t, ctxTool)
	d.Execute(context.WithValue(context.Background(), key{}, "v"), inv("ctx", `{}`))
	if seen != "v" {
		t.Fatalf("handler did not receive caller context: %v", seen)
	}
}
