package tools

import (
	"github.com/petasbytes/sandbox-agent/internal/fsops"
	"github.com/petasbytes/sandbox-agent/internal/safety"
)

// failure maps a workspace error onto the tool output contract. Sandbox
// violations stay errors so the result is flagged; anything else becomes an
// "Error: ..." string for the model to read.
func failure(err error) (string, error) {
	if safety.IsBoundaryViolation(err) {
		return "", err
	}
	return "Error: " + fsops.Message(err), nil
}
