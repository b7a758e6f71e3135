package ai

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net/http"
	"time"

	cohere "github.com/cohere-ai/cohere-go/v2"
	cohereclient "github.com/cohere-ai/cohere-go/v2/client"
)

// ChatClient abstracts the inference service: given instructions and
// an input message, return the model's free-form text response.
type ChatClient interface {
	Generate(ctx context.Context, instructions, input string) (string, error)
}

// CohereChat implements ChatClient using the Cohere Chat API.
type CohereChat struct {
	client *cohereclient.Client
	model  string
}

// NewCohereChat builds a chat client for the given model.
func NewCohereChat(apiKey, model string) (*CohereChat, error) {
	if apiKey == "" {
		return nil, errors.New("cohere api key is required")
	}
	if model == "" {
		model = "command-r-08-2024"
	}
	// Custom HTTP client forcing HTTP/1.1 to avoid HTTP/2 protocol errors
	httpClient := &http.Client{
		Timeout: 90 * time.Second,
		Transport: &http.Transport{
			TLSNextProto:      make(map[string]func(authority string, c *tls.Conn) http.RoundTripper),
			ForceAttemptHTTP2: false,
		},
	}
	client := cohereclient.NewClient(
		cohereclient.WithToken(apiKey),
		cohereclient.WithHTTPClient(httpClient),
	)
	return &CohereChat{client: client, model: model}, nil
}

// Generate sends instructions as the preamble and input as the user
// message, returning the raw response text.
func (c *CohereChat) Generate(ctx context.Context, instructions, input string) (string, error) {
	resp, err := c.client.Chat(ctx, &cohere.ChatRequest{
		Model:    &c.model,
		Preamble: &instructions,
		Message:  input,
	})
	if err != nil {
		return "", fmt.Errorf("cohere chat error: %w", err)
	}
	if resp == nil {
		return "", errors.New("cohere chat returned empty response")
	}
	return resp.Text, nil
}
