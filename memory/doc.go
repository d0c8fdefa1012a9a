// Package memory persists the conversation log between sessions.
//
// Persistence model:
//   - The whole log is stored as JSON, tool_use and tool_result blocks included.
//   - Writes replace the file through a temporary sibling so a crash mid-write
//     leaves the previous version intact.
package memory
