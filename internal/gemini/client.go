// Package gemini wraps the Gemini generative API for the three calls the
// vault makes: free-text refinement, schema-constrained JSON generation and
// audio transcription.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"
)

const (
	DefaultModel      = "gemini-3-flash-preview"
	refineTemperature = 0.7
)

// ErrEmptyResponse is returned when the model answers with no text.
var ErrEmptyResponse = errors.New("empty model response")

type Config struct {
	APIKey string
	// Model serves refinement and JSON generation.
	Model string
	// TranscribeModel serves audio transcription; defaults to Model.
	TranscribeModel string
	// BaseURL overrides the API endpoint.
	BaseURL string
	// Timeout bounds each call; zero means no limit.
	Timeout time.Duration
}

type Client struct {
	genai           *genai.Client
	model           string
	transcribeModel string
	timeout         time.Duration
}

func New(ctx context.Context, cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.TranscribeModel == "" {
		cfg.TranscribeModel = cfg.Model
	}

	cc := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &Client{
		genai:           client,
		model:           cfg.Model,
		transcribeModel: cfg.TranscribeModel,
		timeout:         cfg.Timeout,
	}, nil
}

func (c *Client) Model() string {
	return c.model
}

func (c *Client) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, c.timeout)
}

func (c *Client) generate(ctx context.Context, model string, contents []*genai.Content, cfg *genai.GenerateContentConfig) (string, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	resp, err := c.genai.Models.GenerateContent(ctx, model, contents, cfg)
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}
	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

// Refine rewrites text following instruction.
func (c *Client) Refine(ctx context.Context, instruction, text string) (string, error) {
	prompt := fmt.Sprintf("%s\n\nInput: %s", instruction, text)
	return c.generate(ctx, c.model, genai.Text(prompt), &genai.GenerateContentConfig{
		Temperature: genai.Ptr[float32](refineTemperature),
	})
}

// GenerateJSON asks for a JSON document matching schema and returns it raw.
func (c *Client) GenerateJSON(ctx context.Context, prompt string, schema *genai.Schema) ([]byte, error) {
	out, err := c.generate(ctx, c.model, genai.Text(prompt), &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   schema,
	})
	if err != nil {
		return nil, err
	}
	return []byte(out), nil
}

// Transcribe returns the spoken words of a single utterance.
func (c *Client) Transcribe(ctx context.Context, audio []byte, mimeType, language string) (string, error) {
	instruction := fmt.Sprintf(
		"Transcribe the speech in this audio clip (language: %s). Reply with the transcript only, no commentary.",
		language,
	)
	parts := []*genai.Part{
		genai.NewPartFromText(instruction),
		genai.NewPartFromBytes(audio, mimeType),
	}
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}

	return c.generate(ctx, c.transcribeModel, contents, &genai.GenerateContentConfig{
		Temperature: genai.Ptr[float32](0),
	})
}
