// Package tools exposes SDK operations as callable tools for a
// function-calling language model. Tool arguments are validated against the
// tool's JSON schema before the handler runs.
package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// Handler executes one tool call with raw JSON arguments.
type Handler func(ctx context.Context, args json.RawMessage) (any, error)

// Tool describes one callable operation.
type Tool struct {
	Name        string
	Description string
	// InputSchema is the JSON schema advertised to the model.
	InputSchema json.RawMessage

	schema  *jsonschema.Schema
	handler Handler
}

// Registry holds tools by name and dispatches validated calls to them.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]*Tool
	order []string
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{tools: make(map[string]*Tool)}
}

// Register adds a tool. The schema is compiled up front so malformed schemas
// fail at registration, not at call time.
func (r *Registry) Register(name, description string, schemaJSON []byte, h Handler) error {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(schemaJSON))
	if err != nil {
		return fmt.Errorf("tools: parse schema for %s: %w", name, err)
	}
	compiler := jsonschema.NewCompiler()
	resource := name + ".json"
	if err := compiler.AddResource(resource, doc); err != nil {
		return fmt.Errorf("tools: add schema resource for %s: %w", name, err)
	}
	schema, err := compiler.Compile(resource)
	if err != nil {
		return fmt.Errorf("tools: compile schema for %s: %w", name, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.tools[name]; exists {
		return fmt.Errorf("tools: %s already registered", name)
	}
	r.tools[name] = &Tool{
		Name:        name,
		Description: description,
		InputSchema: json.RawMessage(schemaJSON),
		schema:      schema,
		handler:     h,
	}
	r.order = append(r.order, name)
	return nil
}

// List returns the registered tools in registration order, for advertising
// to the model.
func (r *Registry) List() []Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Tool, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, *r.tools[name])
	}
	return out
}

// Dispatch validates args against the named tool's schema and invokes it.
func (r *Registry) Dispatch(ctx context.Context, name string, args json.RawMessage) (any, error) {
	r.mu.RLock()
	tool, ok := r.tools[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("tools: unknown tool %q", name)
	}

	if len(args) == 0 {
		args = json.RawMessage("{}")
	}
	payload, err := jsonschema.UnmarshalJSON(bytes.NewReader(args))
	if err != nil {
		return nil, fmt.Errorf("tools: parse arguments for %s: %w", name, err)
	}
	if err := tool.schema.Validate(payload); err != nil {
		return nil, fmt.Errorf("tools: invalid arguments for %s: %w", name, err)
	}

	return tool.handler(ctx, args)
}
