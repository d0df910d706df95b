package agent

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tool-agent/knowledge"
	"tool-agent/planner"
	"tool-agent/tools"
)

type answerCall struct {
	query      string
	supporting any
}

type fakePlanner struct {
	plan        planner.Plan
	matched     []string
	answer      string
	titleQuery  string
	titlesSeen  []string
	answerCalls []answerCall
}

func (f *fakePlanner) InitiatePlanner(context.Context, string) planner.Plan {
	return f.plan
}

func (f *fakePlanner) FindTopMatchedTitles(_ context.Context, query string, titles []string) []string {
	f.titleQuery = query
	f.titlesSeen = titles
	return f.matched
}

func (f *fakePlanner) CallLLMWithKnowledgeBase(_ context.Context, query string, supporting any) string {
	f.answerCalls = append(f.answerCalls, answerCall{query: query, supporting: supporting})
	return f.answer
}

type fakeWeather struct {
	days []tools.Day
	err  error
}

func (f *fakeWeather) History(context.Context, map[string]any) ([]tools.Day, error) {
	return f.days, f.err
}

type fakeCurrency struct {
	answer string
	err    error
}

func (f *fakeCurrency) Render(context.Context, map[string]any) (string, error) {
	return f.answer, f.err
}

type fakeKnowledge struct {
	titles  []string
	entries map[string]knowledge.Entry
	queries []string
}

func (f *fakeKnowledge) ListTitles(context.Context) []string {
	return f.titles
}

func (f *fakeKnowledge) Find(_ context.Context, queries ...string) []knowledge.Entry {
	f.queries = queries
	found := []knowledge.Entry{}
	for _, q := range queries {
		if entry, ok := f.entries[q]; ok {
			found = append(found, entry)
		}
	}
	return found
}

func newTestAgent(p *fakePlanner) *Agent {
	return New(Deps{
		Planner:    p,
		Calculator: tools.NewCalculator(),
		Weather:    &fakeWeather{},
		Currency:   &fakeCurrency{answer: "converted"},
		Knowledge:  &fakeKnowledge{},
	})
}

func TestProcessUserQuery_Calculator(t *testing.T) {
	p := &fakePlanner{plan: planner.Plan{
		Tool: tools.CalculatorName,
		Args: map[string]any{"operand": "%", "operator_1": 12.5, "operator_2": float64(243)},
	}}

	answer, err := newTestAgent(p).ProcessUserQuery(context.Background(), "What is 12.5% of 243?")
	require.NoError(t, err)
	assert.Equal(t, "30.375", answer)
	assert.Empty(t, p.answerCalls)
}

func TestProcessUserQuery_CalculatorInvalidArgs(t *testing.T) {
	p := &fakePlanner{plan: planner.Plan{Tool: tools.CalculatorName, Args: map[string]any{}}}

	answer, err := newTestAgent(p).ProcessUserQuery(context.Background(), "add things")
	require.NoError(t, err)
	assert.Equal(t, "Invalid values: Missing required field: operand", answer)
}

func TestProcessUserQuery_CurrencyEndToEnd(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/USD", r.URL.Path)
		_, _ = w.Write([]byte(`{"base":"USD","rates":{"EUR":0.85,"GBP":0.79}}`))
	}))
	defer server.Close()

	p := &fakePlanner{plan: planner.Plan{
		Tool: tools.CurrencyConverterName,
		Args: map[string]any{"from_currency": "USD", "to_currency": "EUR", "amount": float64(100)},
	}}
	a := New(Deps{
		Planner:  p,
		Currency: tools.NewCurrency(server.URL, "key", time.Second),
	})

	answer, err := a.ProcessUserQuery(context.Background(), "Convert 100 USD to EUR")
	require.NoError(t, err)
	assert.Contains(t, answer, "amount is 85.0")
	assert.Contains(t, answer, "conversion rate is 0.85")
}

func TestProcessUserQuery_CurrencyFailure(t *testing.T) {
	p := &fakePlanner{plan: planner.Plan{Tool: tools.CurrencyConverterName, Args: map[string]any{}}}
	a := New(Deps{
		Planner:  p,
		Currency: &fakeCurrency{err: tools.ErrInvalidInput},
	})

	answer, err := a.ProcessUserQuery(context.Background(), "Convert money")
	assert.ErrorIs(t, err, tools.ErrInvalidInput)
	assert.Empty(t, answer)
}

func TestProcessUserQuery_Unrecognized(t *testing.T) {
	testCases := []struct {
		name string
		plan planner.Plan
	}{
		{name: "unknown tool", plan: planner.Plan{Tool: "unknown", Args: map[string]any{}}},
		{name: "no tool", plan: planner.Plan{Args: map[string]any{}}},
		{name: "nil args", plan: planner.Plan{Tool: "translator"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			p := &fakePlanner{plan: tc.plan}
			answer, err := newTestAgent(p).ProcessUserQuery(context.Background(), "Translate hello")
			require.NoError(t, err)
			assert.Equal(t, "Sorry, I couldn't understand your request.", answer)
			assert.Empty(t, p.answerCalls)
		})
	}
}

func TestProcessUserQuery_WeatherTransportFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	server.Close()

	p := &fakePlanner{plan: planner.Plan{
		Tool: tools.WeatherName,
		Args: map[string]any{"city": "Paris", "from_date": "2025-03-13", "to_date": "2025-03-13"},
	}}
	a := New(Deps{
		Planner: p,
		Weather: tools.NewWeather(server.URL, "key", time.Second),
	})

	answer, err := a.ProcessUserQuery(context.Background(), "Weather in Paris yesterday?")
	require.Error(t, err)
	assert.ErrorIs(t, err, tools.ErrTransport)
	var toolErr *ToolError
	require.ErrorAs(t, err, &toolErr)
	assert.Equal(t, tools.WeatherName, toolErr.Tool)
	assert.Empty(t, answer)
	assert.Empty(t, p.answerCalls)
}

func TestProcessUserQuery_WeatherDays(t *testing.T) {
	days := []tools.Day{{Date: "2025-03-13", MaxTempC: 14.2, MinTempC: 6.1, AvgTempC: 10.3, Condition: "Sunny"}}
	p := &fakePlanner{
		plan:   planner.Plan{Tool: tools.WeatherName, Args: map[string]any{}},
		answer: "It was sunny, around 10°C.",
	}
	a := New(Deps{Planner: p, Weather: &fakeWeather{days: days}})

	answer, err := a.ProcessUserQuery(context.Background(), "Weather in Paris yesterday?")
	require.NoError(t, err)
	assert.Equal(t, "It was sunny, around 10°C.", answer)
	require.Len(t, p.answerCalls, 1)
	assert.Equal(t, "Weather in Paris yesterday?", p.answerCalls[0].query)
	assert.Equal(t, days, p.answerCalls[0].supporting)
}

func TestProcessUserQuery_WeatherValidationBecomesContext(t *testing.T) {
	p := &fakePlanner{
		plan:   planner.Plan{Tool: tools.WeatherName, Args: map[string]any{"city": "Paris"}},
		answer: "Please tell me which dates you mean.",
	}
	a := New(Deps{
		Planner: p,
		Weather: tools.NewWeather("http://weather.invalid", "key", time.Second),
	})

	answer, err := a.ProcessUserQuery(context.Background(), "Weather in Paris?")
	require.NoError(t, err)
	assert.Equal(t, "Please tell me which dates you mean.", answer)
	require.Len(t, p.answerCalls, 1)
	assert.Equal(t, "Error from system: Missing required parameters: city, from_date, or to_date", p.answerCalls[0].supporting)
}

func TestProcessUserQuery_KnowledgeBase(t *testing.T) {
	ada := knowledge.Entry{Title: "Ada Lovelace", Detail: "Mathematician"}
	kb := &fakeKnowledge{
		titles:  []string{"Ada Lovelace", "Alan Turing"},
		entries: map[string]knowledge.Entry{"Ada Lovelace": ada},
	}
	p := &fakePlanner{
		plan:    planner.Plan{Tool: tools.KnowledgeBaseName, Args: map[string]any{"query": "Ada Lovelace"}},
		matched: []string{"Ada Lovelace", "Charles Babbage"},
		answer:  "Ada Lovelace was a mathematician.",
	}
	a := New(Deps{Planner: p, Knowledge: kb})

	answer, err := a.ProcessUserQuery(context.Background(), "Who was Ada Lovelace?")
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace was a mathematician.", answer)
	assert.Equal(t, "Ada Lovelace", p.titleQuery)
	assert.Equal(t, kb.titles, p.titlesSeen)
	assert.Equal(t, []string{"Ada Lovelace", "Charles Babbage"}, kb.queries)
	require.Len(t, p.answerCalls, 1)
	assert.Equal(t, "Who was Ada Lovelace?", p.answerCalls[0].query)
	assert.Equal(t, []knowledge.Entry{ada}, p.answerCalls[0].supporting)
}

func TestProcessUserQuery_KnowledgeBaseFallsBackToQuery(t *testing.T) {
	p := &fakePlanner{
		plan:   planner.Plan{Tool: tools.KnowledgeBaseName, Args: map[string]any{"query": 42}},
		answer: "I don't know.",
	}
	a := New(Deps{Planner: p, Knowledge: &fakeKnowledge{titles: []string{"Alan Turing"}}})

	answer, err := a.ProcessUserQuery(context.Background(), "Who was Ada Lovelace?")
	require.NoError(t, err)
	assert.Equal(t, "I don't know.", answer)
	assert.Equal(t, "Who was Ada Lovelace?", p.titleQuery)
	require.Len(t, p.answerCalls, 1)
	assert.Equal(t, []knowledge.Entry{}, p.answerCalls[0].supporting)
}

func TestProcessUserQuery_KnowledgeBaseWithoutTitles(t *testing.T) {
	testCases := []struct {
		name   string
		titles []string
	}{
		{name: "empty corpus", titles: []string{knowledge.NoTitles}},
		{name: "unreadable corpus", titles: []string{}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			kb := &fakeKnowledge{titles: tc.titles}
			p := &fakePlanner{
				plan:    planner.Plan{Tool: tools.KnowledgeBaseName, Args: map[string]any{"query": "Ada Lovelace"}},
				matched: []string{knowledge.NoTitles},
				answer:  "The knowledge base is empty.",
			}

			answer, err := New(Deps{Planner: p, Knowledge: kb}).ProcessUserQuery(context.Background(), "Who was Ada Lovelace?")
			require.NoError(t, err)
			assert.Equal(t, "The knowledge base is empty.", answer)
			assert.Empty(t, p.titleQuery)
			assert.Nil(t, p.titlesSeen)
			assert.Empty(t, kb.queries)
			require.Len(t, p.answerCalls, 1)
			assert.Equal(t, []knowledge.Entry{}, p.answerCalls[0].supporting)
		})
	}
}

func TestProcessUserQuery_KnownToolsAlwaysAnswer(t *testing.T) {
	for _, name := range []tools.Name{tools.CalculatorName, tools.WeatherName, tools.KnowledgeBaseName, tools.CurrencyConverterName} {
		t.Run(string(name), func(t *testing.T) {
			p := &fakePlanner{plan: planner.Plan{Tool: name, Args: map[string]any{}}, answer: "answer"}
			answer, err := newTestAgent(p).ProcessUserQuery(context.Background(), "query")
			require.NoError(t, err)
			assert.NotEmpty(t, answer)
			assert.NotEqual(t, FallbackMessage, answer)
		})
	}
}

func TestProcessUserQuery_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := &fakePlanner{plan: planner.Plan{Tool: tools.CalculatorName, Args: map[string]any{}}}
	_, err := newTestAgent(p).ProcessUserQuery(ctx, "1 + 1")
	assert.True(t, errors.Is(err, context.Canceled))
}
