// Package llm is the language-model synthesis gateway: an OpenAI-compatible
// transport, a candidate-model chain with bounded JSON repair, a deterministic
// degraded-mode fallback, and an audit log of every attempt.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/af-corp/atlas-planner/internal/types"
)

// Transport performs a single model completion. Implementations fail with
// MODEL_AUTH_MISSING, MODEL_HTTP_ERROR, or MODEL_NETWORK_FAIL domain errors;
// the gateway never assumes availability.
type Transport interface {
	Complete(ctx context.Context, model, prompt string) (string, error)
}

// HTTPTransport talks to an OpenAI-compatible /chat/completions endpoint.
type HTTPTransport struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func NewHTTPTransport(baseURL, apiKey string, timeout time.Duration) *HTTPTransport {
	return &HTTPTransport{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: timeout},
	}
}

type chatRequestBody struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponseBody struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

func (t *HTTPTransport) Complete(ctx context.Context, model, prompt string) (string, error) {
	if t.apiKey == "" {
		return "", types.NewDomainError(types.CodeModelAuthMissing, "No API key available")
	}

	body := chatRequestBody{
		Model:       model,
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
		Temperature: 0.3,
	}
	data, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("marshal completion request: %w", err)
	}

	url := t.baseURL + "/chat/completions"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("create completion request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+t.apiKey)

	resp, err := t.client.Do(httpReq)
	if err != nil {
		return "", types.NewDomainErrorf(types.CodeModelNetworkFail, "Completion request failed", "%v", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", types.NewDomainErrorf(types.CodeModelNetworkFail, "Read completion response", "%v", err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		detail := string(raw)
		if len(detail) > 120 {
			detail = detail[:120]
		}
		return "", types.NewDomainErrorf(types.CodeModelHTTPError, "Provider returned error status", "%d %s", resp.StatusCode, detail)
	}

	var parsed chatResponseBody
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", types.NewDomainErrorf(types.CodeModelHTTPError, "Malformed provider response", "%v", err)
	}
	if len(parsed.Choices) == 0 {
		return "", types.NewDomainError(types.CodeModelHTTPError, "Provider returned no choices")
	}
	return parsed.Choices[0].Message.Content, nil
}
