package extract

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	defaultHuggingFaceURL     = "https://api-inference.huggingface.co/models/google/flan-t5-base"
	defaultHuggingFaceTimeout = 10 * time.Second
	huggingFacePrefixLimit    = 1000
)

const huggingFacePrompt = "Extract the name of the prominent tech company mentioned in this text. " +
	"Return only the company name. Text: "

// HuggingFace queries the Hugging Face inference API as the secondary
// strategy. The endpoint works without credentials at a reduced rate limit.
type HuggingFace struct {
	apiKey     string
	url        string
	httpClient *http.Client
}

// HuggingFaceOption customizes the Hugging Face client.
type HuggingFaceOption func(*HuggingFace)

// WithHuggingFaceURL overrides the inference endpoint (useful for tests/mocks).
func WithHuggingFaceURL(url string) HuggingFaceOption {
	return func(h *HuggingFace) {
		if trimmed := strings.TrimSpace(url); trimmed != "" {
			h.url = trimmed
		}
	}
}

// WithHuggingFaceHTTPClient overrides the default HTTP client.
func WithHuggingFaceHTTPClient(client *http.Client) HuggingFaceOption {
	return func(h *HuggingFace) {
		if client != nil {
			h.httpClient = client
		}
	}
}

// NewHuggingFace constructs the Hugging Face strategy. An empty API key is
// allowed; requests are then unauthenticated.
func NewHuggingFace(apiKey string, opts ...HuggingFaceOption) *HuggingFace {
	client := &HuggingFace{
		apiKey:     strings.TrimSpace(apiKey),
		url:        defaultHuggingFaceURL,
		httpClient: &http.Client{Timeout: defaultHuggingFaceTimeout},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

func (h *HuggingFace) Name() string { return "huggingface" }

type huggingFaceRequest struct {
	Inputs     string                `json:"inputs"`
	Parameters huggingFaceParameters `json:"parameters"`
}

type huggingFaceParameters struct {
	MaxLength   int     `json:"max_length"`
	Temperature float64 `json:"temperature"`
}

// Extract posts a bounded prefix of the text. The response may be a list of
// generation records or a bare string depending on the hosted model.
func (h *HuggingFace) Extract(ctx context.Context, text string) (string, error) {
	payload := huggingFaceRequest{
		Inputs: huggingFacePrompt + prefix(text, huggingFacePrefixLimit),
		Parameters: huggingFaceParameters{
			MaxLength:   50,
			Temperature: 0.1,
		},
	}
	encoded, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("huggingface: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.url, bytes.NewReader(encoded))
	if err != nil {
		return "", fmt.Errorf("huggingface: request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if h.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+h.apiKey)
	}

	resp, err := h.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("huggingface: request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("huggingface: read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("huggingface: http %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	return parseHuggingFaceResponse(body)
}

type huggingFaceGeneration struct {
	GeneratedText string `json:"generated_text"`
}

func parseHuggingFaceResponse(body []byte) (string, error) {
	var generations []huggingFaceGeneration
	if err := json.Unmarshal(body, &generations); err == nil {
		if len(generations) == 0 {
			return "", nil
		}
		return strings.TrimSpace(generations[0].GeneratedText), nil
	}

	var bare string
	if err := json.Unmarshal(body, &bare); err == nil {
		return strings.TrimSpace(bare), nil
	}

	return "", fmt.Errorf("huggingface: unexpected response shape: %s", strings.TrimSpace(string(body)))
}
