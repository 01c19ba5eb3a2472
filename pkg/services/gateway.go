package services

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

// ChatMessage is one prior turn of a conversation, role "user" or "assistant".
type ChatMessage struct {
	Role string
	Text string
}

// ChatResult carries the generated reply together with the total token
// usage (prompt + completion) the provider reported for the exchange.
type ChatResult struct {
	Reply      string
	TokensUsed int64
}

const (
	KindRateLimit = "RateLimitError"
	KindAPIError  = "APIError"
)

// ProviderError is a non-2xx answer from the provider, split into
// rate-limit vs generic API error so the HTTP layer can pick a status.
type ProviderError struct {
	StatusCode int
	Kind       string
	Message    string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider %s (status %d): %s", e.Kind, e.StatusCode, e.Message)
}

// GatewayConfig is passed explicitly so tests can point the gateway at a
// fake server; there is no process-wide client state.
type GatewayConfig struct {
	APIKey      string
	Model       string
	BaseURL     string
	Temperature float64
	HTTPClient  *http.Client
}

// OpenAIGateway calls an OpenAI-compatible chat completions endpoint.
// It performs exactly one request per Complete call; retry policy, if any,
// belongs to the caller.
type OpenAIGateway struct {
	cfg    GatewayConfig
	client *http.Client
}

func NewOpenAIGateway(cfg GatewayConfig) *OpenAIGateway {
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 60 * time.Second}
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com/v1"
	}
	return &OpenAIGateway{cfg: cfg, client: client}
}

type chatCompletionMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionRequest struct {
	Model       string                  `json:"model"`
	Messages    []chatCompletionMessage `json:"messages"`
	Temperature float64                 `json:"temperature"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message chatCompletionMessage `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int64 `json:"prompt_tokens"`
		CompletionTokens int64 `json:"completion_tokens"`
		TotalTokens      int64 `json:"total_tokens"`
	} `json:"usage"`
}

type providerErrorBody struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// Complete sends the system instruction, prior history, and the new user
// message in one request and returns the reply plus actual token usage.
func (g *OpenAIGateway) Complete(ctx context.Context, system string, history []ChatMessage, message string) (*ChatResult, error) {
	msgs := make([]chatCompletionMessage, 0, len(history)+2)
	msgs = append(msgs, chatCompletionMessage{Role: "system", Content: system})
	for _, h := range history {
		role := h.Role
		if role != "user" && role != "assistant" {
			role = "user"
		}
		msgs = append(msgs, chatCompletionMessage{Role: role, Content: h.Text})
	}
	msgs = append(msgs, chatCompletionMessage{Role: "user", Content: message})

	body, err := json.Marshal(chatCompletionRequest{
		Model:       g.cfg.Model,
		Messages:    msgs,
		Temperature: g.cfg.Temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	url := strings.TrimRight(g.cfg.BaseURL, "/") + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+g.cfg.APIKey)

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http error: %w", err)
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read error: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, providerError(resp.StatusCode, respBytes)
	}

	var parsed chatCompletionResponse
	if err := json.Unmarshal(respBytes, &parsed); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return nil, fmt.Errorf("no choices in response")
	}

	return &ChatResult{
		Reply:      strings.TrimSpace(parsed.Choices[0].Message.Content),
		TokensUsed: parsed.Usage.TotalTokens,
	}, nil
}

func providerError(status int, body []byte) *ProviderError {
	msg := strings.TrimSpace(string(body))
	var parsed providerErrorBody
	if err := json.Unmarshal(body, &parsed); err == nil && parsed.Error.Message != "" {
		msg = parsed.Error.Message
	}
	kind := KindAPIError
	if status == http.StatusTooManyRequests {
		kind = KindRateLimit
	}
	return &ProviderError{StatusCode: status, Kind: kind, Message: msg}
}
