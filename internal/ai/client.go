package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"
)

// DefaultModels lists the Gemini models tried in order, newest and fastest first.
var DefaultModels = []string{"gemini-2.5-flash", "gemini-2.0-flash", "gemini-1.5-flash"}

// ErrDisabled is returned when no credential is configured.
var ErrDisabled = errors.New("ai advisor disabled")

// Config holds Gemini configuration parameters.
type Config struct {
	APIKey      string
	BaseURL     string
	Models      []string
	Temperature float32
	MaxTokens   int32
	Timeout     time.Duration
}

// GenerateOptions are the sampling parameters sent with every generation call.
type GenerateOptions struct {
	Temperature     float32
	MaxOutputTokens int32
}

// Generator produces raw text for a prompt with a named model.
type Generator interface {
	Generate(ctx context.Context, model, prompt string, opts GenerateOptions) (string, error)
}

// GeminiClient implements Generator against the Gemini API.
type GeminiClient struct {
	client *genai.Client
}

// withDefaults fills unset fields with the advisor defaults.
func (cfg Config) withDefaults() Config {
	models := make([]string, 0, len(cfg.Models))
	for _, m := range cfg.Models {
		if m = strings.TrimPrefix(strings.TrimSpace(m), "models/"); m != "" {
			models = append(models, m)
		}
	}
	if len(models) == 0 {
		models = append(models, DefaultModels...)
	}
	cfg.Models = models
	if cfg.Temperature <= 0 {
		cfg.Temperature = 0.7
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 1024
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return cfg
}

// NewGeminiClient constructs a Gemini-backed Generator if an API key is present.
func NewGeminiClient(ctx context.Context, cfg Config) (*GeminiClient, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, ErrDisabled
	}
	clientCfg := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if base := strings.TrimSpace(cfg.BaseURL); base != "" {
		clientCfg.HTTPOptions = genai.HTTPOptions{BaseURL: base}
	}
	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &GeminiClient{client: client}, nil
}

// Generate calls GenerateContent and returns the concatenated text parts.
func (c *GeminiClient) Generate(ctx context.Context, model, prompt string, opts GenerateOptions) (string, error) {
	if c == nil || c.client == nil {
		return "", ErrDisabled
	}
	resp, err := c.client.Models.GenerateContent(ctx, model, genai.Text(prompt), &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(opts.Temperature),
		MaxOutputTokens: opts.MaxOutputTokens,
	})
	if err != nil {
		return "", fmt.Errorf("gemini request: %w", err)
	}
	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", errors.New("gemini empty response")
	}
	return text, nil
}
