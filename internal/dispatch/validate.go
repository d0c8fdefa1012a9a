package dispatch

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/petasbytes/sandbox-agent/internal/conversation"
	"github.com/petasbytes/sandbox-agent/tools"
)

// ValidationError lists the parameters of one invocation that are missing,
// of the wrong type, or outside their enum. Fields follow schema order; "$"
// stands for the params document as a whole.
type ValidationError struct {
	Tool   string
	Fields []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid parameters for %s: %s", e.Tool, strings.Join(e.Fields, ", "))
}

// Validate decodes inv.Params and checks them against def's schema. Numbers
// are kept as json.Number so integer and number can be told apart. A JSON
// null is treated as an absent value. Properties the schema does not declare
// pass through untouched.
func Validate(inv conversation.ToolInvocation, def tools.ToolDefinition) (tools.Params, error) {
	params := tools.Params{}
	raw := bytes.TrimSpace(inv.Params)
	if len(raw) > 0 && !bytes.Equal(raw, []byte("null")) {
		dec := json.NewDecoder(bytes.NewReader(raw))
		dec.UseNumber()
		if err := dec.Decode(&params); err != nil || dec.More() {
			return nil, &ValidationError{Tool: def.Name, Fields: []string{"$"}}
		}
	}
	for k, v := range params {
		if v == nil {
			delete(params, k)
		}
	}

	var bad []string
	if s := def.InputSchema.Properties; s != nil {
		for pair := s.Oldest(); pair != nil; pair = pair.Next() {
			name, prop := pair.Key, pair.Value
			v, present := params[name]
			if !present {
				if slices.Contains(def.InputSchema.Required, name) {
					bad = append(bad, name)
				}
				continue
			}
			if !hasType(v, prop.Type) || !inEnum(v, prop.Enum) {
				bad = append(bad, name)
				continue
			}
			if prop.Type == "integer" {
				params[name] = integral(v.(json.Number))
			}
		}
	}
	if len(bad) > 0 {
		return nil, &ValidationError{Tool: def.Name, Fields: bad}
	}
	return params, nil
}

func hasType(v any, typ string) bool {
	switch typ {
	case "string":
		_, ok := v.(string)
		return ok
	case "boolean":
		_, ok := v.(bool)
		return ok
	case "number":
		_, ok := v.(json.Number)
		return ok
	case "integer":
		n, ok := v.(json.Number)
		if !ok {
			return false
		}
		if _, err := n.Int64(); err == nil {
			return true
		}
		// Whole floats only, and only those an int64 can hold.
		f, err := n.Float64()
		return err == nil && f == math.Trunc(f) && f >= math.MinInt64 && f < math.MaxInt64
	case "object":
		_, ok := v.(map[string]any)
		return ok
	case "array":
		_, ok := v.([]any)
		return ok
	}
	return false
}

// integral rewrites values such as 2.0 as 2 so handlers can decode them into
// Go integer fields.
func integral(n json.Number) json.Number {
	if _, err := n.Int64(); err == nil {
		return n
	}
	f, _ := n.Float64()
	return json.Number(strconv.FormatInt(int64(f), 10))
}

func inEnum(v any, enum []string) bool {
	if len(enum) == 0 {
		return true
	}
	return slices.Contains(enum, fmt.Sprint(v))
}
