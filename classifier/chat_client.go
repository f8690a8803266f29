package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/giygas/drug-interactions-api/interfaces"
	"github.com/giygas/drug-interactions-api/logging"
	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
	"golang.org/x/time/rate"
)

// Compile-time check to ensure ChatCompletionClient implements ClassificationBackend
var _ interfaces.ClassificationBackend = (*ChatCompletionClient)(nil)

const defaultMaxTokens = 350

// ChatCompletionConfig configures the chat completions backend
type ChatCompletionConfig struct {
	URL            string
	APIKey         string
	Model          string
	MaxTokens      int
	Timeout        time.Duration
	RequestsPerSec float64
}

// ChatCompletionClient asks an OpenAI compatible chat completions endpoint
// to classify an interaction and returns the model's reply text.
type ChatCompletionClient struct {
	url        string
	apiKey     string
	model      string
	maxTokens  int
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewChatCompletionClient creates a throttled chat completions client
func NewChatCompletionClient(cfg ChatCompletionConfig) *ChatCompletionClient {
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = defaultMaxTokens
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultCallTimeout
	}

	limit := rate.Inf
	burst := 1
	if cfg.RequestsPerSec > 0 {
		limit = rate.Limit(cfg.RequestsPerSec)
		burst = max(1, int(cfg.RequestsPerSec))
	}

	return &ChatCompletionClient{
		url:        cfg.URL,
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
		maxTokens:  cfg.MaxTokens,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		limiter:    rate.NewLimiter(limit, burst),
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatRequest struct {
	Model          string         `json:"model"`
	Messages       []chatMessage  `json:"messages"`
	MaxTokens      int            `json:"max_tokens"`
	Temperature    float64        `json:"temperature"`
	ResponseFormat responseFormat `json:"response_format"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Analyze implements interfaces.ClassificationBackend
func (c *ChatCompletionClient) Analyze(ctx context.Context, req interfaces.ClassificationRequest) (string, error) {
	if c.url == "" {
		return "", fmt.Errorf("no classification endpoint configured")
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limiter: %w", err)
	}

	body, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt(req.Language)},
			{Role: "user", Content: userPrompt(req)},
		},
		MaxTokens:      c.maxTokens,
		ResponseFormat: responseFormat{Type: "json_object"},
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logging.Warn("Failed to close classification response body", "error", err)
		}
	}()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	var decoded chatResponse
	decodeErr := json.Unmarshal(payload, &decoded)

	if resp.StatusCode != http.StatusOK {
		if decodeErr == nil && decoded.Error != nil {
			return "", fmt.Errorf("status %d: %s", resp.StatusCode, decoded.Error.Message)
		}
		return "", fmt.Errorf("status %d", resp.StatusCode)
	}
	if decodeErr != nil {
		return "", fmt.Errorf("failed to decode response: %w", decodeErr)
	}
	if len(decoded.Choices) == 0 {
		return "", fmt.Errorf("response has no choices")
	}

	return decoded.Choices[0].Message.Content, nil
}

func systemPrompt(lang language.Tag) string {
	return strings.Join([]string{
		"You are a pharmacist specialised in drug-drug interactions and you only give accurate, safe information.",
		"Analyse the technical interaction data you are given and reply with a JSON object only.",
		`The JSON object must have exactly 2 keys: "severity" and "explanation".`,
		`For "severity", rate the interaction with exactly one value from this list: ["Contraindicated", "Major", "Moderate", "Minor"].`,
		fmt.Sprintf(`For "explanation", translate the technical data into medical %s, focusing on the mechanism and the danger.`, languageName(lang)),
		"Rely only on the technical data provided and never invent information.",
	}, " ")
}

func userPrompt(req interfaces.ClassificationRequest) string {
	return fmt.Sprintf("Analyse the following drug interaction:\nDrug 1: %s\nDrug 2: %s\nTechnical data: %s",
		req.DrugA, req.DrugB, req.Description)
}

// languageName returns the English name of the language ("Thai")
func languageName(lang language.Tag) string {
	if name := display.Languages(language.English).Name(lang); name != "" {
		return name
	}
	return "English"
}
