// Package tools provides the tool descriptors and adapters the agent dispatches to.
package tools

// Name identifies one of the tools a plan may select.
type Name string

// Known tool names.
const (
	CalculatorName        Name = "calculator"
	WeatherName           Name = "weather"
	KnowledgeBaseName     Name = "knowledge_base"
	CurrencyConverterName Name = "currency_converter"
)

// Known reports whether n is one of the four dispatchable tools.
func (n Name) Known() bool {
	switch n {
	case CalculatorName, WeatherName, KnowledgeBaseName, CurrencyConverterName:
		return true
	}
	return false
}

// Tool describes a tool to the planner.
type Tool interface {
	// Name returns the unique identifier for this tool.
	Name() Name

	// Description returns a human-readable description for the LLM.
	Description() string

	// Parameters returns the JSON schema for the tool's arguments.
	Parameters() map[string]any
}

// KnowledgeBase describes the knowledge_base tool. Its work is done by the
// knowledge index and the planner, so it only carries a descriptor.
type KnowledgeBase struct{}

func (KnowledgeBase) Name() Name {
	return KnowledgeBaseName
}

func (KnowledgeBase) Description() string {
	return "Answer questions from the local knowledge base of curated articles."
}

func (KnowledgeBase) Parameters() map[string]any {
	return objectSchema(map[string]any{
		"query": stringProperty("The topic or question to look up in the knowledge base"),
	}, "query")
}

func objectSchema(properties map[string]any, required ...string) map[string]any {
	return map[string]any{
		"type":       "object",
		"properties": properties,
		"required":   required,
	}
}

func stringProperty(description string) map[string]any {
	return map[string]any{"type": "string", "description": description}
}

func numberProperty(description string) map[string]any {
	return map[string]any{"type": "number", "description": description}
}
