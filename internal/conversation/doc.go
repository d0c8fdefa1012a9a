// Package conversation holds the session data model: messages, content blocks,
// tool invocations and results, and the append-only Log.
//
// Ordering:
//
//	user(text) -> assistant(text + tool_use...) -> tool(tool_result)... -> assistant(text)
package conversation
