package planner

import (
	"encoding/json"

	"tool-agent/llm"
	"tool-agent/tools"
)

// Plan is the tool selection produced for one user query.
type Plan struct {
	Tool tools.Name
	Args map[string]any
	// Raw is the model output the plan was parsed from.
	Raw string
}

// Recognized reports whether the plan names one of the dispatchable tools.
func (p Plan) Recognized() bool {
	return p.Tool.Known()
}

// ParsePlan interprets model output as a Plan. Output that is not a JSON
// object with a string "tool" gives a plan with an empty Tool. Missing or
// non-object args become an empty map.
func ParsePlan(text string) Plan {
	plan := Plan{Args: map[string]any{}, Raw: text}

	raw, ok := llm.ExtractJSON(text)
	if !ok {
		return plan
	}
	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		return plan
	}

	if name, ok := fields["tool"].(string); ok {
		plan.Tool = tools.Name(name)
	}
	if args, ok := fields["args"].(map[string]any); ok {
		plan.Args = args
	}
	return plan
}
