package extract

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

const geminiPrefixLimit = 2000

const geminiPrompt = "Extract the name of any prominent tech company mentioned in this text. " +
	"Return only the company name, nothing else. " +
	"If no tech company is found, return 'none'.\n\nText: %s"

// GeminiConfig describes the primary LLM backend.
type GeminiConfig struct {
	APIKey string
	Model  string
	// BaseURL overrides the Gemini API base URL. Useful for tests.
	BaseURL string
}

// Gemini asks the Gemini generative-language API for a company name. It is
// the first strategy in the cascade and entirely advisory.
type Gemini struct {
	client *genai.Client
	model  string
}

// NewGemini constructs the Gemini strategy.
func NewGemini(ctx context.Context, cfg GeminiConfig) (*Gemini, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("gemini: api key required")
	}
	if strings.TrimSpace(cfg.Model) == "" {
		return nil, errors.New("gemini: model required")
	}

	cc := &genai.ClientConfig{
		APIKey:  strings.TrimSpace(cfg.APIKey),
		Backend: genai.BackendGeminiAPI,
	}
	if strings.TrimSpace(cfg.BaseURL) != "" {
		cc.HTTPOptions.BaseURL = strings.TrimSpace(cfg.BaseURL)
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}
	return &Gemini{client: client, model: strings.TrimSpace(cfg.Model)}, nil
}

func (g *Gemini) Name() string { return "gemini" }

// Extract sends a bounded prefix of the text and parses the single-string
// response. The none sentinel is handled by the engine.
func (g *Gemini) Extract(ctx context.Context, text string) (string, error) {
	resp, err := g.client.Models.GenerateContent(
		ctx,
		g.model,
		genai.Text(fmt.Sprintf(geminiPrompt, prefix(text, geminiPrefixLimit))),
		&genai.GenerateContentConfig{
			Temperature:     genai.Ptr[float32](0.1),
			MaxOutputTokens: 50,
			CandidateCount:  1,
		},
	)
	if err != nil {
		return "", fmt.Errorf("gemini: generate content: %w", err)
	}
	return strings.TrimSpace(resp.Text()), nil
}
