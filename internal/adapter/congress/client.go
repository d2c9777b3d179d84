package congress

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

type textResponse struct {
	TextVersions []textVersion `json:"textVersions"`
}

type textVersion struct {
	Type    string       `json:"type"`
	Formats []textFormat `json:"formats"`
}

type textFormat struct {
	Type string `json:"type"`
	URL  string `json:"url"`
}

// TextVersions lists the published text versions of a bill.
func (c *Client) TextVersions(ctx context.Context, b domain.BillCandidate) ([]bill.TextVersion, error) {
	endpoint := fmt.Sprintf("%s/bill/%s/%s/%s/text?format=json",
		c.baseURL,
		url.PathEscape(b.Congress),
		url.PathEscape(strings.ToLower(b.Type)),
		url.PathEscape(b.Number),
	)

	body, err := c.get(ctx, endpoint, true)
	if err != nil {
		return nil, fmt.Errorf("bill text %s: %w", b, err)
	}

	var parsed textResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("%w: bill text %s: %v", domain.ErrBadResponse, b, err)
	}

	versions := make([]bill.TextVersion, 0, len(parsed.TextVersions))
	for _, v := range parsed.TextVersions {
		formats := make([]bill.Format, 0, len(v.Formats))
		for _, f := range v.Formats {
			formats = append(formats, bill.Format{Type: f.Type, URL: f.URL})
		}
		versions = append(versions, bill.TextVersion{Type: v.Type, Formats: formats})
	}
	return versions, nil
}

// FetchDocument downloads a rendering linked from a text version. The
// documents are public, so no API key is sent.
func (c *Client) FetchDocument(ctx context.Context, docURL string) ([]byte, error) {
	body, err := c.get(ctx, docURL, false)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", docURL, err)
	}
	return body, nil
}

func (c *Client) get(ctx context.Context, endpoint string, withKey bool) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	if withKey && c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrTransport, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrTransport, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: status %d", domain.ErrTransport, resp.StatusCode)
	}
	return body, nil
}
