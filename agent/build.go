package agent

import (
	"context"
	"fmt"
	"log"

	"tool-agent/config"
	"tool-agent/knowledge"
	"tool-agent/llm"
	"tool-agent/planner"
	"tool-agent/tools"
)

// Build wires an Agent from configuration: the LLM back-end, the tool
// adapters and the knowledge index.
func Build(ctx context.Context, cfg *config.Config) (*Agent, error) {
	client, err := llm.New(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("creating LLM client: %w", err)
	}

	calculator := tools.NewCalculator()
	weather := tools.NewWeather(cfg.WeatherURL, cfg.WeatherAPIKey, cfg.HTTPTimeout)
	currency := tools.NewCurrency(cfg.ExchangeRateURL, cfg.ExchangeRateAPIKey, cfg.HTTPTimeout)

	registry := tools.NewRegistry(calculator, weather, tools.KnowledgeBase{}, currency)
	log.Printf("%s registered tools: %d, llm provider: %s", logPrefix, len(registry.All()), cfg.LLMProvider)

	return New(Deps{
		Planner:    planner.New(client, registry),
		Calculator: calculator,
		Weather:    weather,
		Currency:   currency,
		Knowledge:  knowledge.New(cfg.KnowledgeBasePath),
	}), nil
}
