package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Params holds a tool's decoded input, keyed by property name. The dispatcher
// only hands a handler Params that passed schema validation.
type Params map[string]any

// Handler executes a tool. Returning an error marks the result as failed;
// "Error: ..." strings are ordinary output the model can react to.
type Handler func(ctx context.Context, params Params) (string, error)

// Property describes one input parameter.
type Property struct {
	Type        string   `json:"type"`
	Description string   `json:"description,omitempty"`
	Enum        []string `json:"enum,omitempty"`
}

// InputSchema is the JSON-Schema subset tools declare: an object with ordered
// properties and a required list.
type InputSchema struct {
	Type       string                                   `json:"type"`
	Properties *orderedmap.OrderedMap[string, Property] `json:"properties"`
	Required   []string                                 `json:"required,omitempty"`
}

// NewInputSchema returns an empty object schema ready for AddProperty.
func NewInputSchema() InputSchema {
	return InputSchema{Type: "object", Properties: orderedmap.New[string, Property]()}
}

// AddProperty appends a property, marking it required when asked.
func (s *InputSchema) AddProperty(name string, p Property, required bool) {
	if s.Properties == nil {
		s.Properties = orderedmap.New[string, Property]()
	}
	s.Properties.Set(name, p)
	if required {
		s.Required = append(s.Required, name)
	}
}

// ToolDefinition is the extension contract: anything that supplies one of
// these can be registered and offered to the model.
type ToolDefinition struct {
	Name        string
	Description string
	InputSchema InputSchema
	Function    Handler
}

// GenerateSchema derives an InputSchema from the exported fields of T.
// Fields without `omitempty` are required; descriptions come from the
// jsonschema_description tag and enums from `jsonschema:"enum=..."`.
func GenerateSchema[T any]() InputSchema {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	var v T
	reflected := reflector.Reflect(v)

	schema := NewInputSchema()
	if reflected.Properties == nil {
		return schema
	}
	required := map[string]bool{}
	for _, r := range reflected.Required {
		required[r] = true
	}
	for pair := reflected.Properties.Oldest(); pair != nil; pair = pair.Next() {
		p := Property{Type: pair.Value.Type, Description: pair.Value.Description}
		for _, e := range pair.Value.Enum {
			p.Enum = append(p.Enum, fmt.Sprint(e))
		}
		schema.AddProperty(pair.Key, p, required[pair.Key])
	}
	return schema
}

// NewTool builds a ToolDefinition whose schema is generated from T and whose
// handler receives Params decoded into T.
func NewTool[T any](name, description string, handler func(ctx context.Context, input T) (string, error)) ToolDefinition {
	return ToolDefinition{
		Name:        name,
		Description: description,
		InputSchema: GenerateSchema[T](),
		Function: func(ctx context.Context, params Params) (string, error) {
			var input T
			if err := params.Decode(&input); err != nil {
				return "", err
			}
			return handler(ctx, input)
		},
	}
}

// Decode converts p into a typed input struct.
func (p Params) Decode(v any) error {
	b, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode params: %w", err)
	}
	if err := json.Unmarshal(b, v); err != nil {
		return fmt.Errorf("decode params: %w", err)
	}
	return nil
}
