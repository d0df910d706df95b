package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

// Ollama talks to a local Ollama server through its chat endpoint.
type Ollama struct {
	model  string
	url    string
	client *http.Client
}

type ollamaMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ollamaRequest struct {
	Model    string          `json:"model"`
	Messages []ollamaMessage `json:"messages"`
	Format   any             `json:"format,omitempty"`
	Stream   bool            `json:"stream"`
}

type ollamaResponse struct {
	Message ollamaMessage `json:"message"`
}

// NewOllama creates a client for the chat endpoint at url.
func NewOllama(url, model string, timeout time.Duration) *Ollama {
	return &Ollama{
		model: model,
		url:   url,
		client: &http.Client{
			Timeout: timeout, // LLM responses can be slow
		},
	}
}

// Generate sends one system+user exchange and returns the reply content.
func (o *Ollama) Generate(ctx context.Context, req Request) (string, error) {
	reqBody := ollamaRequest{
		Model: o.model,
		Messages: []ollamaMessage{
			{Role: "system", Content: req.System},
			{Role: "user", Content: req.Prompt},
		},
		Stream: false,
	}
	if req.Schema != nil {
		reqBody.Format = req.Schema
	} else if req.JSON {
		reqBody.Format = "json"
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, o.url, bytes.NewBuffer(jsonBody))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := o.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("calling Ollama: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("Ollama returned status %d: %s", resp.StatusCode, string(body))
	}

	var chatResp ollamaResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		return "", fmt.Errorf("parsing response: %w", err)
	}

	content := chatResp.Message.Content
	if len(content) < 500 {
		log.Printf("%s ollama content: %s", logPrefix, content)
	} else {
		log.Printf("%s ollama content (truncated): %s...", logPrefix, content[:500])
	}
	return content, nil
}
