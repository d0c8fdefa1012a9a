// Package registry holds the tools available to a session, in registration
// order.
package registry

import (
	"errors"
	"fmt"

	"github.com/petasbytes/sandbox-agent/tools"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// ErrNotFound is returned by Get for an unregistered name.
var ErrNotFound = errors.New("tool not found")

// RegistrationError reports a descriptor that could not be registered.
type RegistrationError struct {
	Name   string
	Reason string
}

func (e *RegistrationError) Error() string {
	if e.Name == "" {
		return "register tool: " + e.Reason
	}
	return fmt.Sprintf("register tool %q: %s", e.Name, e.Reason)
}

// Source supplies tool descriptors for discovery.
type Source interface {
	Descriptors() ([]tools.ToolDefinition, error)
}

// Static is a fixed list of descriptors.
type Static []tools.ToolDefinition

// Descriptors implements Source.
func (s Static) Descriptors() ([]tools.ToolDefinition, error) { return s, nil }

// Registry maps tool names to definitions. It is populated during setup and
// read-only afterwards, so it carries no lock.
type Registry struct {
	defs *orderedmap.OrderedMap[string, tools.ToolDefinition]
}

// New returns an empty Registry.
func New() *Registry {
	return &Registry{defs: orderedmap.New[string, tools.ToolDefinition]()}
}

// Register validates def and adds it after any previously registered tools.
func (r *Registry) Register(def tools.ToolDefinition) error {
	if def.Name == "" {
		return &RegistrationError{Reason: "empty name"}
	}
	if _, exists := r.defs.Get(def.Name); exists {
		return &RegistrationError{Name: def.Name, Reason: "duplicate name"}
	}
	if def.Function == nil {
		return &RegistrationError{Name: def.Name, Reason: "nil handler"}
	}
	if err := checkSchema(def.InputSchema); err != nil {
		return &RegistrationError{Name: def.Name, Reason: err.Error()}
	}
	r.defs.Set(def.Name, def)
	return nil
}

// Discover registers every descriptor from src. The first failure aborts
// discovery; descriptors registered before it stay registered.
func (r *Registry) Discover(src Source) error {
	defs, err := src.Descriptors()
	if err != nil {
		return fmt.Errorf("discover tools: %w", err)
	}
	for _, def := range defs {
		if err := r.Register(def); err != nil {
			return fmt.Errorf("discover tools: %w", err)
		}
	}
	return nil
}

// Get returns the definition registered under name.
func (r *Registry) Get(name string) (tools.ToolDefinition, error) {
	def, ok := r.defs.Get(name)
	if !ok {
		return tools.ToolDefinition{}, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return def, nil
}

// List returns all definitions in registration order.
func (r *Registry) List() []tools.ToolDefinition {
	out := make([]tools.ToolDefinition, 0, r.defs.Len())
	for pair := r.defs.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, pair.Value)
	}
	return out
}

// Len returns the number of registered tools.
func (r *Registry) Len() int { return r.defs.Len() }

var supportedTypes = map[string]bool{
	"string":  true,
	"number":  true,
	"integer": true,
	"boolean": true,
	"object":  true,
	"array":   true,
}

func checkSchema(s tools.InputSchema) error {
	if s.Type != "object" {
		return fmt.Errorf("schema type must be \"object\", got %q", s.Type)
	}
	declared := map[string]bool{}
	if s.Properties != nil {
		for pair := s.Properties.Oldest(); pair != nil; pair = pair.Next() {
			if pair.Key == "" {
				return errors.New("schema has a property with an empty name")
			}
			if pair.Value.Type == "" {
				return fmt.Errorf("property %q has no type", pair.Key)
			}
			if !supportedTypes[pair.Value.Type] {
				return fmt.Errorf("property %q has unsupported type %q", pair.Key, pair.Value.Type)
			}
			declared[pair.Key] = true
		}
	}
	for _, req := range s.Required {
		if !declared[req] {
			return fmt.Errorf("required property %q is not declared", req)
		}
	}
	return nil
}
