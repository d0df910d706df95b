package llm

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/aiplatform/v1"
	"google.golang.org/api/option"
)

const geminiScope = "https://www.googleapis.com/auth/cloud-platform"

// GeminiConfig selects the Vertex AI model and how to authenticate.
type GeminiConfig struct {
	// APIKey enables Vertex AI express mode. When empty, Application
	// Default Credentials are used.
	APIKey   string
	Project  string
	Location string
	Model    string
	Timeout  time.Duration
}

// Gemini calls Gemini models through the Vertex AI API.
type Gemini struct {
	model   string
	timeout time.Duration
	service *aiplatform.Service
}

// NewGemini creates a Gemini client from cfg.
func NewGemini(ctx context.Context, cfg GeminiConfig) (*Gemini, error) {
	if cfg.APIKey != "" {
		return NewGeminiWithOptions(ctx, publisherModel(cfg.Model), cfg.Timeout, option.WithAPIKey(cfg.APIKey))
	}

	creds, err := google.FindDefaultCredentials(ctx, geminiScope)
	if err != nil {
		return nil, fmt.Errorf("GEMINI_API_KEY is not set and no default credentials were found: %w", err)
	}
	project := cfg.Project
	if project == "" {
		project = creds.ProjectID
	}
	if project == "" {
		return nil, errors.New("GOOGLE_CLOUD_PROJECT is required when using default credentials")
	}

	client := oauth2.NewClient(ctx, creds.TokenSource)
	client.Timeout = cfg.Timeout
	return NewGeminiWithOptions(ctx, projectModel(project, cfg.Location, cfg.Model), cfg.Timeout,
		option.WithHTTPClient(client),
		option.WithEndpoint(fmt.Sprintf("https://%s-aiplatform.googleapis.com/", cfg.Location)),
	)
}

// NewGeminiWithOptions creates a Gemini client for the model resource name
// (publishers/google/models/... or projects/.../models/...).
func NewGeminiWithOptions(ctx context.Context, model string, timeout time.Duration, opts ...option.ClientOption) (*Gemini, error) {
	service, err := aiplatform.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating Vertex AI service: %w", err)
	}
	return &Gemini{model: model, timeout: timeout, service: service}, nil
}

func publisherModel(model string) string {
	return "publishers/google/models/" + model
}

func projectModel(project, location, model string) string {
	return fmt.Sprintf("projects/%s/locations/%s/%s", project, location, publisherModel(model))
}

// Generate runs one generateContent call and concatenates the text parts of
// the first candidate.
func (g *Gemini) Generate(ctx context.Context, req Request) (string, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	body := &aiplatform.GoogleCloudAiplatformV1GenerateContentRequest{
		Contents: []*aiplatform.GoogleCloudAiplatformV1Content{{
			Role:  "user",
			Parts: []*aiplatform.GoogleCloudAiplatformV1Part{{Text: req.Prompt}},
		}},
	}
	if req.System != "" {
		body.SystemInstruction = &aiplatform.GoogleCloudAiplatformV1Content{
			Parts: []*aiplatform.GoogleCloudAiplatformV1Part{{Text: req.System}},
		}
	}
	if req.JSON || req.Schema != nil {
		body.GenerationConfig = &aiplatform.GoogleCloudAiplatformV1GenerationConfig{
			ResponseMimeType: "application/json",
		}
	}

	resp, err := g.service.Projects.Locations.Publishers.Models.GenerateContent(g.model, body).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("calling Gemini: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", errors.New("Gemini returned no candidates")
	}

	var text strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil {
			text.WriteString(part.Text)
		}
	}
	log.Printf("%s gemini content_len=%d", logPrefix, text.Len())
	return text.String(), nil
}
