// Package llmapi is an HTTP client for OpenAI-compatible chat completion
// endpoints, carrying the chat module's messages and tool definitions over
// the wire format those endpoints share.
package llmapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	chatservice "github.com/Five-Stack-Club/rift-bot/app/modules/chat/application"
)

// APIError is a non-2xx response from the completion API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("completion api status %d: %s", e.StatusCode, e.Message)
}

// Config configures an HTTPClient. BaseURL points at any OpenAI-compatible
// server and defaults to the public OpenAI endpoint.
type Config struct {
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
}

// HTTPClient implements chatservice.CompletionClient over HTTP.
type HTTPClient struct {
	baseURL string
	apiKey  string
	model   string
	http    *http.Client
}

// New builds an HTTPClient for the configured endpoint.
func New(cfg Config) *HTTPClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	model := cfg.Model
	if model == "" {
		model = "gpt-4o-mini"
	}
	return &HTTPClient{
		baseURL: baseURL,
		apiKey:  cfg.APIKey,
		model:   model,
		http:    &http.Client{Timeout: timeout},
	}
}

var _ chatservice.CompletionClient = (*HTTPClient)(nil)

type wireMessage struct {
	Role       string         `json:"role"`
	Content    string         `json:"content"`
	ToolCalls  []wireToolCall `json:"tool_calls,omitempty"`
	ToolCallID string         `json:"tool_call_id,omitempty"`
	Name       string         `json:"name,omitempty"`
}

type wireToolCall struct {
	ID       string       `json:"id"`
	Type     string       `json:"type"`
	Function wireFunction `json:"function"`
}

// wireFunction carries tool call arguments as a JSON-encoded string, which
// is how the completion APIs frame them.
type wireFunction struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

type wireToolDef struct {
	Type     string          `json:"type"`
	Function wireFunctionDef `json:"function"`
}

type wireFunctionDef struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Parameters  json.RawMessage `json:"parameters"`
}

type completionRequest struct {
	Model    string        `json:"model"`
	Messages []wireMessage `json:"messages"`
	Tools    []wireToolDef `json:"tools,omitempty"`
}

type completionResponse struct {
	Choices []struct {
		Message wireMessage `json:"message"`
	} `json:"choices"`
}

type apiErrorBody struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Complete performs one chat completion call.
func (c *HTTPClient) Complete(ctx context.Context, req chatservice.CompletionRequest) (*chatservice.Completion, error) {
	body := completionRequest{
		Model:    c.model,
		Messages: make([]wireMessage, len(req.Messages)),
	}
	for i, m := range req.Messages {
		wm := wireMessage{
			Role:       m.Role,
			Content:    m.Content,
			ToolCallID: m.ToolCallID,
			Name:       m.Name,
		}
		for _, tc := range m.ToolCalls {
			wm.ToolCalls = append(wm.ToolCalls, wireToolCall{
				ID:       tc.ID,
				Type:     "function",
				Function: wireFunction{Name: tc.Name, Arguments: string(tc.Arguments)},
			})
		}
		body.Messages[i] = wm
	}
	for _, t := range req.Tools {
		body.Tools = append(body.Tools, wireToolDef{
			Type:     "function",
			Function: wireFunctionDef{Name: t.Name, Description: t.Description, Parameters: t.Parameters},
		})
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to encode completion request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, err
	}
	raw, readErr := io.ReadAll(resp.Body)
	resp.Body.Close()
	if readErr != nil {
		return nil, readErr
	}

	if resp.StatusCode != http.StatusOK {
		message := strings.TrimSpace(string(raw))
		var apiErr apiErrorBody
		if json.Unmarshal(raw, &apiErr) == nil && apiErr.Error.Message != "" {
			message = apiErr.Error.Message
		}
		return nil, &APIError{StatusCode: resp.StatusCode, Message: message}
	}

	var parsed completionResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("failed to decode completion response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return nil, errors.New("completion response has no choices")
	}

	choice := parsed.Choices[0].Message
	out := &chatservice.Completion{Content: choice.Content}
	for _, tc := range choice.ToolCalls {
		out.ToolCalls = append(out.ToolCalls, chatservice.ToolCall{
			ID:        tc.ID,
			Name:      tc.Function.Name,
			Arguments: json.RawMessage(tc.Function.Arguments),
		})
	}
	return out, nil
}
