// Package engine drives a conversation turn: it streams model output to a
// Sink, buffers the tool invocations the model emits, executes them through
// an Executor, and streams again until the model answers without tools.
//
// Log order for one turn:
//
//	user(text) -> assistant(text + tool_use...) -> tool(result)... -> assistant(text)
//
// States:
//
//	AwaitingInput -> Streaming -> ExecutingTools -> Streaming -> ... -> AwaitingInput
//	any state -> Terminated
package engine
