package propublica

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"legal-llama/internal/domain"
	"legal-llama/internal/usecase/bill"
)

const searchPath = "/bills/search.json"

type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

func NewClient(baseURL, apiKey string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http:    httpClient,
	}
}

type searchResponse struct {
	Status  string         `json:"status"`
	Results []searchResult `json:"results"`
}

type searchResult struct {
	NumResults int          `json:"num_results"`
	Bills      []searchBill `json:"bills"`
}

type searchBill struct {
	BillID   string `json:"bill_id"`
	BillType string `json:"bill_type"`
	Number   string `json:"number"`
	Title    string `json:"title"`
}

// SearchBills queries the bill search endpoint, newest first, and returns the
// bills listed under the first result entry.
func (c *Client) SearchBills(ctx context.Context, query string) ([]bill.SearchHit, error) {
	params := url.Values{}
	params.Set("query", query)
	params.Set("sort", "date")
	params.Set("dir", "desc")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+searchPath+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: propublica search: %v", domain.ErrTransport, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: propublica search: %v", domain.ErrTransport, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: propublica search: status %d", domain.ErrTransport, resp.StatusCode)
	}

	var parsed searchResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("%w: propublica search: %v", domain.ErrBadResponse, err)
	}

	if len(parsed.Results) == 0 {
		return nil, nil
	}

	hits := make([]bill.SearchHit, 0, len(parsed.Results[0].Bills))
	for _, b := range parsed.Results[0].Bills {
		hits = append(hits, bill.SearchHit{
			BillID:   b.BillID,
			BillType: b.BillType,
			Number:   b.Number,
			Title:    b.Title,
		})
	}
	return hits, nil
}
