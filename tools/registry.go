package tools

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Registry holds all registered tools in registration order.
type Registry struct {
	tools map[Name]Tool
	order []Name
}

// NewRegistry creates a registry holding the given tools.
func NewRegistry(tools ...Tool) *Registry {
	r := &Registry{tools: make(map[Name]Tool)}
	for _, tool := range tools {
		r.Register(tool)
	}
	return r
}

// Register adds a tool to the registry, replacing one with the same name.
func (r *Registry) Register(tool Tool) {
	if _, ok := r.tools[tool.Name()]; !ok {
		r.order = append(r.order, tool.Name())
	}
	r.tools[tool.Name()] = tool
}

// Get retrieves a tool by name
func (r *Registry) Get(name Name) (Tool, bool) {
	tool, ok := r.tools[name]
	return tool, ok
}

// All returns all registered tools
func (r *Registry) All() []Tool {
	result := make([]Tool, 0, len(r.order))
	for _, name := range r.order {
		result = append(result, r.tools[name])
	}
	return result
}

// Catalog renders the tools as a prompt section listing each tool with its
// argument schema.
func (r *Registry) Catalog() string {
	var b strings.Builder
	for _, tool := range r.All() {
		params, err := json.Marshal(tool.Parameters())
		if err != nil {
			params = []byte("{}")
		}
		fmt.Fprintf(&b, "- %s: %s\n  args schema: %s\n", tool.Name(), tool.Description(), params)
	}
	return b.String()
}

// Schema returns the JSON schema of a plan: {"tool": <name>, "args": {...}}.
func (r *Registry) Schema() map[string]any {
	names := make([]string, 0, len(r.order))
	for _, name := range r.order {
		names = append(names, string(name))
	}
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"tool": map[string]any{"type": "string", "enum": names},
			"args": map[string]any{"type": "object"},
		},
		"required": []string{"tool", "args"},
	}
}
