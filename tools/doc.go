// Package tools defines the tool extension contract and the builtin tools.
//
// Includes:
//   - ToolDefinition: name, description, ordered JSON input schema, handler.
//   - GenerateSchema[T]() and NewTool[T]: derive the schema from a Go struct
//     and decode validated Params into it.
//   - File tools over fsops.Workspace: read_file, write_file, edit_file,
//     list_files (recursive), delete_file, create_directory, delete_directory,
//     move_file, rename_file, rename_directory.
//   - Utility tools: get_current_time, sort_data.
//   - Builtins: the builtin table as a registry source.
//
// Tools report recoverable failures as "Error: ..." output and sandbox
// violations as errors.
package tools
