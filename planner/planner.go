// Package planner turns user queries into tool plans and renders final
// answers through a generative model.
package planner

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"tool-agent/llm"
	"tool-agent/tools"
)

const logPrefix = "[planner]"

// NoAnswer is returned when the final answer could not be generated.
const NoAnswer = "Sorry, I couldn't generate an answer right now."

// Planner wraps the model calls used by the agent.
type Planner struct {
	client   llm.Client
	registry *tools.Registry
	now      func() time.Time
}

// New creates a planner that offers the tools in registry to the model.
func New(client llm.Client, registry *tools.Registry) *Planner {
	return &Planner{client: client, registry: registry, now: time.Now}
}

// InitiatePlanner asks the model which tool should handle query. It never
// fails: a failed call or unusable output gives an unrecognized plan.
func (p *Planner) InitiatePlanner(ctx context.Context, query string) Plan {
	system := fmt.Sprintf(planSystemPrompt, p.registry.Catalog(), p.now().Format(time.DateOnly))
	out, err := p.client.Generate(ctx, llm.Request{
		System: system,
		Prompt: query,
		JSON:   true,
		Schema: p.registry.Schema(),
	})
	if err != nil {
		log.Printf("%s planning failed: %v", logPrefix, err)
		return Plan{Args: map[string]any{}}
	}

	plan := ParsePlan(out)
	if !plan.Recognized() {
		log.Printf("%s unrecognized plan: %q", logPrefix, truncate(out, 200))
	} else {
		log.Printf("%s plan tool=%s args=%v", logPrefix, plan.Tool, plan.Args)
	}
	return plan
}

// FindTopMatchedTitles asks the model which of titles are relevant to query.
// Non-string items and duplicates are dropped; any failure gives an empty
// slice. Returned titles are not checked against the input list.
func (p *Planner) FindTopMatchedTitles(ctx context.Context, query string, titles []string) []string {
	matched := []string{}
	if len(titles) == 0 {
		return matched
	}

	out, err := p.client.Generate(ctx, llm.Request{
		System: titlesSystemPrompt,
		Prompt: fmt.Sprintf(titlesUserPrompt, query, "- "+strings.Join(titles, "\n- ")),
		JSON:   true,
	})
	if err != nil {
		log.Printf("%s title matching failed: %v", logPrefix, err)
		return matched
	}

	raw, ok := llm.ExtractJSON(out)
	if !ok {
		log.Printf("%s title matching returned no JSON: %q", logPrefix, truncate(out, 200))
		return matched
	}

	var items []any
	var wrapped struct {
		Titles []any `json:"titles"`
	}
	if err := json.Unmarshal(raw, &items); err != nil {
		if err := json.Unmarshal(raw, &wrapped); err != nil {
			log.Printf("%s unexpected title matching output: %v", logPrefix, err)
			return matched
		}
		items = wrapped.Titles
	}

	seen := make(map[string]bool, len(items))
	for _, item := range items {
		title, ok := item.(string)
		if !ok || title == "" || seen[title] {
			continue
		}
		seen[title] = true
		matched = append(matched, title)
	}
	log.Printf("%s matched titles: %v", logPrefix, matched)
	return matched
}

// CallLLMWithKnowledgeBase answers query from the supporting context, which
// is serialized as indented JSON. Strings are passed through as they are.
func (p *Planner) CallLLMWithKnowledgeBase(ctx context.Context, query string, supporting any) string {
	var rendered string
	switch c := supporting.(type) {
	case string:
		rendered = c
	default:
		data, err := json.MarshalIndent(c, "", "  ")
		if err != nil {
			log.Printf("%s cannot serialize context: %v", logPrefix, err)
			return NoAnswer
		}
		rendered = string(data)
	}

	out, err := p.client.Generate(ctx, llm.Request{
		System: answerSystemPrompt,
		Prompt: fmt.Sprintf(answerUserPrompt, query, rendered),
	})
	if err != nil {
		log.Printf("%s answer generation failed: %v", logPrefix, err)
		return NoAnswer
	}
	out = strings.TrimSpace(out)
	if out == "" {
		return NoAnswer
	}
	return out
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
