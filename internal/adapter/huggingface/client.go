package huggingface

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"legal-llama/internal/usecase/summary"
)

// Client calls a hosted summarization model through the inference API.
type Client struct {
	endpoint string
	token    string
	http     *http.Client
}

func NewClient(endpoint, token string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		endpoint: endpoint,
		token:    token,
		http:     httpClient,
	}
}

type inferenceRequest struct {
	Inputs     string              `json:"inputs"`
	Parameters inferenceParameters `json:"parameters"`
	Options    inferenceOptions    `json:"options"`
}

type inferenceParameters struct {
	NumBeams                  int     `json:"num_beams"`
	NoRepeatNgramSize         int     `json:"no_repeat_ngram_size"`
	LengthPenalty             float64 `json:"length_penalty"`
	MinLength                 int     `json:"min_length"`
	MaxLength                 int     `json:"max_length"`
	NumReturnSequences        int     `json:"num_return_sequences"`
	Truncation                string  `json:"truncation"`
	CleanUpTokenizationSpaces bool    `json:"clean_up_tokenization_spaces"`
}

type inferenceOptions struct {
	WaitForModel bool `json:"wait_for_model"`
	UseCache     bool `json:"use_cache"`
}

type inferenceOutput struct {
	SummaryText   string `json:"summary_text"`
	GeneratedText string `json:"generated_text"`
}

type inferenceError struct {
	Error string `json:"error"`
}

// Generate runs beam search on the remote model and returns the decoded
// sequences with special tokens removed.
func (c *Client) Generate(ctx context.Context, req summary.Request) ([]string, error) {
	if strings.TrimSpace(req.Text) == "" {
		return nil, errors.New("empty input text")
	}

	payload := inferenceRequest{
		Inputs: req.Text,
		Parameters: inferenceParameters{
			NumBeams:           req.Params.NumBeams,
			NoRepeatNgramSize:  req.Params.NoRepeatNgramSize,
			LengthPenalty:      req.Params.LengthPenalty,
			MinLength:          req.Params.MinLength,
			MaxLength:          req.Params.MaxLength,
			NumReturnSequences: req.Params.NumReturnSequences,
			Truncation:         "only_first",
		},
		Options: inferenceOptions{WaitForModel: true},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	if c.token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.token)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr inferenceError
		if json.Unmarshal(respBody, &apiErr) == nil && apiErr.Error != "" {
			return nil, fmt.Errorf("inference error: %s", apiErr.Error)
		}
		return nil, fmt.Errorf("inference error: status %d", resp.StatusCode)
	}

	var outputs []inferenceOutput
	if err := json.Unmarshal(respBody, &outputs); err != nil {
		return nil, fmt.Errorf("decode inference response: %w", err)
	}

	seqs := make([]string, 0, len(outputs))
	for _, out := range outputs {
		text := out.SummaryText
		if text == "" {
			text = out.GeneratedText
		}
		if text != "" {
			seqs = append(seqs, text)
		}
	}
	if len(seqs) == 0 {
		return nil, errors.New("no summary in inference response")
	}
	return seqs, nil
}
