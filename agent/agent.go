// Package agent routes a user query through the planner to a single tool
// and turns the outcome into one text answer.
package agent

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"

	"tool-agent/knowledge"
	"tool-agent/planner"
	"tool-agent/tools"
)

const logPrefix = "[agent]"

// FallbackMessage is the answer for queries no tool can handle.
const FallbackMessage = "Sorry, I couldn't understand your request."

// Planner selects tools and writes final answers.
type Planner interface {
	InitiatePlanner(ctx context.Context, query string) planner.Plan
	FindTopMatchedTitles(ctx context.Context, query string, titles []string) []string
	CallLLMWithKnowledgeBase(ctx context.Context, query string, supporting any) string
}

// Calculator evaluates calculator arguments to display text.
type Calculator interface {
	Run(args map[string]any) string
}

// WeatherService looks up daily weather history.
type WeatherService interface {
	History(ctx context.Context, args map[string]any) ([]tools.Day, error)
}

// CurrencyService converts amounts between currencies.
type CurrencyService interface {
	Render(ctx context.Context, args map[string]any) (string, error)
}

// KnowledgeIndex answers title lookups over the knowledge base.
type KnowledgeIndex interface {
	ListTitles(ctx context.Context) []string
	Find(ctx context.Context, queries ...string) []knowledge.Entry
}

// ToolError reports a tool invocation that failed outright.
type ToolError struct {
	Tool tools.Name
	Err  error
}

func (e *ToolError) Error() string {
	return fmt.Sprintf("%s: %v", e.Tool, e.Err)
}

func (e *ToolError) Unwrap() error {
	return e.Err
}

// Deps holds the collaborators of an Agent.
type Deps struct {
	Planner    Planner
	Calculator Calculator
	Weather    WeatherService
	Currency   CurrencyService
	Knowledge  KnowledgeIndex
}

// Agent dispatches planned queries to tools.
type Agent struct {
	planner    Planner
	calculator Calculator
	weather    WeatherService
	currency   CurrencyService
	knowledge  KnowledgeIndex
}

// New creates an Agent from its dependencies.
func New(deps Deps) *Agent {
	return &Agent{
		planner:    deps.Planner,
		calculator: deps.Calculator,
		weather:    deps.Weather,
		currency:   deps.Currency,
		knowledge:  deps.Knowledge,
	}
}

// ProcessUserQuery plans query, runs the selected tool and returns the
// answer. Unrecognized plans give FallbackMessage. Errors are returned only
// for service outages and currency conversion failures.
func (a *Agent) ProcessUserQuery(ctx context.Context, query string) (string, error) {
	requestID := uuid.NewString()
	log.Printf("%s [%s] query: %q", logPrefix, requestID, query)

	plan := a.planner.InitiatePlanner(ctx, query)
	if err := ctx.Err(); err != nil {
		return "", err
	}
	log.Printf("%s [%s] selected tool: %q", logPrefix, requestID, plan.Tool)

	switch plan.Tool {
	case tools.CalculatorName:
		return a.calculator.Run(plan.Args), nil
	case tools.WeatherName:
		return a.weatherLookup(ctx, requestID, query, plan.Args)
	case tools.KnowledgeBaseName:
		return a.knowledgeLookup(ctx, requestID, query, plan.Args)
	case tools.CurrencyConverterName:
		answer, err := a.currency.Render(ctx, plan.Args)
		if err != nil {
			log.Printf("%s [%s] currency conversion failed: %v", logPrefix, requestID, err)
			return "", &ToolError{Tool: tools.CurrencyConverterName, Err: err}
		}
		return answer, nil
	default:
		return FallbackMessage, nil
	}
}

func (a *Agent) weatherLookup(ctx context.Context, requestID, query string, args map[string]any) (string, error) {
	var supporting any
	days, err := a.weather.History(ctx, args)
	if err != nil {
		var verr *tools.ValidationError
		if !errors.As(err, &verr) {
			log.Printf("%s [%s] weather lookup failed: %v", logPrefix, requestID, err)
			return "", &ToolError{Tool: tools.WeatherName, Err: err}
		}
		supporting = tools.DescribeFailure(err)
	} else {
		supporting = days
	}

	if err := ctx.Err(); err != nil {
		return "", err
	}
	return a.planner.CallLLMWithKnowledgeBase(ctx, query, supporting), nil
}

func (a *Agent) knowledgeLookup(ctx context.Context, requestID, query string, args map[string]any) (string, error) {
	search, _ := args["query"].(string)
	if search == "" {
		search = query
	}

	titles := a.knowledge.ListTitles(ctx)
	matched := []string{}
	if len(titles) > 0 && !(len(titles) == 1 && titles[0] == knowledge.NoTitles) {
		matched = a.planner.FindTopMatchedTitles(ctx, search, titles)
	}
	entries := a.knowledge.Find(ctx, matched...)
	log.Printf("%s [%s] %d titles, %d matched, %d entries", logPrefix, requestID, len(titles), len(matched), len(entries))

	if err := ctx.Err(); err != nil {
		return "", err
	}
	return a.planner.CallLLMWithKnowledgeBase(ctx, query, entries), nil
}
