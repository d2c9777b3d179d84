package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	openaiapi "github.com/sashabaranov/go-openai"

	"legal-llama/internal/usecase/summary"
)

const systemPrompt = "You summarize U.S. Congressional bills for a general audience. " +
	"Explain what the bill does, who it affects and any notable provisions, in plain prose. " +
	"Do not repeat phrases and do not invent provisions that are not in the text."

// Client is a summarization model backed by a chat completion API.
type Client struct {
	api   *openaiapi.Client
	model string
}

// NewClient builds a client for the OpenAI API, or for an OpenAI-compatible
// server when baseURL is set.
func NewClient(token, baseURL, model string, httpClient *http.Client) *Client {
	cfg := openaiapi.DefaultConfig(token)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if httpClient != nil {
		cfg.HTTPClient = httpClient
	}
	return &Client{
		api:   openaiapi.NewClientWithConfig(cfg),
		model: model,
	}
}

func (c *Client) Generate(ctx context.Context, req summary.Request) ([]string, error) {
	if strings.TrimSpace(req.Text) == "" {
		return nil, errors.New("empty input text")
	}

	n := req.Params.NumReturnSequences
	if n <= 0 {
		n = 1
	}

	apiReq := openaiapi.ChatCompletionRequest{
		Model:               c.model,
		MaxCompletionTokens: req.Params.MaxLength,
		N:                   n,
		Stream:              false,
		Messages: []openaiapi.ChatCompletionMessage{
			{Role: openaiapi.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openaiapi.ChatMessageRoleUser, Content: req.Text},
		},
	}

	resp, err := c.api.CreateChatCompletion(ctx, apiReq)
	if err != nil {
		return nil, fmt.Errorf("chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, errors.New("openai returned empty response")
	}

	seqs := make([]string, 0, len(resp.Choices))
	for _, choice := range resp.Choices {
		seqs = append(seqs, choice.Message.Content)
	}
	return seqs, nil
}
