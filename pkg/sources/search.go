package sources

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/tidwall/gjson"
)

const defaultSearchEndpoint = "https://api.exa.ai/search"

// SearchResult is one hit from the web search collaborator.
type SearchResult struct {
	URL   string
	Title string
}

// Searcher is the external web-search capability the selector defers to.
type Searcher interface {
	Search(ctx context.Context, query string, numResults int) ([]SearchResult, error)
}

// WebSearcher calls a hosted search API (Exa-compatible request/response
// shape). Requests are retried on transient failures.
type WebSearcher struct {
	apiKey   string
	endpoint string
	client   *retryablehttp.Client
}

func NewWebSearcher(apiKey, endpoint string) *WebSearcher {
	if endpoint == "" {
		endpoint = defaultSearchEndpoint
	}
	client := retryablehttp.NewClient()
	client.RetryMax = 3
	client.HTTPClient.Timeout = 30 * time.Second
	client.Logger = nil
	return &WebSearcher{apiKey: apiKey, endpoint: endpoint, client: client}
}

// SetProxy routes all search traffic through the given HTTP proxy.
func (w *WebSearcher) SetProxy(proxy string) error {
	proxyURL, err := url.Parse(proxy)
	if err != nil {
		return fmt.Errorf("invalid proxy URL: %v", err)
	}
	w.client.HTTPClient.Transport = &http.Transport{
		Proxy: http.ProxyURL(proxyURL),
	}
	return nil
}

func (w *WebSearcher) Search(ctx context.Context, query string, numResults int) ([]SearchResult, error) {
	if numResults <= 0 {
		numResults = 10
	}
	body, err := json.Marshal(map[string]interface{}{
		"query":      query,
		"numResults": numResults,
	})
	if err != nil {
		return nil, err
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, w.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", w.apiKey)

	resp, err := w.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("search request failed with HTTP %d", resp.StatusCode)
	}

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(resp.Body); err != nil {
		return nil, err
	}

	var out []SearchResult
	gjson.GetBytes(buf.Bytes(), "results").ForEach(func(_, hit gjson.Result) bool {
		u := hit.Get("url").String()
		if u == "" {
			return true
		}
		out = append(out, SearchResult{URL: u, Title: hit.Get("title").String()})
		return true
	})
	return out, nil
}
