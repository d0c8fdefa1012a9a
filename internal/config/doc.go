// Package config loads agent settings from a YAML file.
//
// Values may reference environment variables as ${VAR_NAME}. A missing file
// yields the defaults. After the file, AGT_* variables override single keys:
//
//	AGT_SANDBOX_ROOT     sandbox_root
//	AGT_MODEL            model
//	AGT_MAX_TOOL_ROUNDS  max_tool_rounds
//	AGT_TOKEN_BUDGET     token_budget
//	AGT_OBSERVE_JSON=1   telemetry.enabled
//
// Example:
//
//	model: claude-3-7-sonnet-latest
//	max_tokens: 1024
//	sandbox_root: ./workspace
//	max_tool_rounds: 10
//	parallel_tools: false
//	token_budget: 0          # 0 disables send windowing
//	persist_path: .agent/conversation.json
//	enabled_tools: [read_file, list_files]
//	telemetry:
//	  enabled: false
//	  dir: .agent
//	logging:
//	  level: info            # debug, info, warn, error
//	  format: text           # text, json
//	metrics:
//	  addr: ""               # e.g. 127.0.0.1:9090 serves /metrics
package config
