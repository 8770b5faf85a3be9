package extract

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/hashicorp/go-retryablehttp"
	"golang.org/x/net/html"
)

const (
	userAgent = "Mozilla/5.0 (X11; Linux x86_64; rv:109.0) Gecko/20100101 Firefox/115.0"

	// DefaultMaxDocChars is the input-size budget: pages whose visible text
	// exceeds it are rejected rather than truncated, since a truncated page
	// yields partial, misleading records.
	DefaultMaxDocChars = 60000
)

// Page is a fetched source reduced to the parts the extractor needs.
type Page struct {
	URL   string
	Title string
	Text  string
}

// Fetcher downloads a page and reduces it to visible text.
type Fetcher struct {
	client      *retryablehttp.Client
	maxDocChars int
}

func NewFetcher(maxDocChars int) *Fetcher {
	if maxDocChars <= 0 {
		maxDocChars = DefaultMaxDocChars
	}
	client := retryablehttp.NewClient()
	client.RetryMax = 2
	client.HTTPClient.Timeout = 30 * time.Second
	client.Logger = nil
	return &Fetcher{client: client, maxDocChars: maxDocChars}
}

// SetProxy routes page fetches through the given HTTP proxy.
func (f *Fetcher) SetProxy(proxy string) error {
	proxyURL, err := url.Parse(proxy)
	if err != nil {
		return fmt.Errorf("invalid proxy URL: %v", err)
	}
	f.client.HTTPClient.Transport = &http.Transport{
		Proxy: http.ProxyURL(proxyURL),
	}
	return nil
}

// Fetch retrieves pageURL and returns its title and visible text. It fails
// with *ExtractionError: ReasonUnreachable for network/HTTP problems,
// ReasonMalformed for unusable content, ReasonBudget when the reduced text
// exceeds the input-size budget.
func (f *Fetcher) Fetch(ctx context.Context, pageURL string) (*Page, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, &ExtractionError{Source: pageURL, Reason: ReasonUnreachable, Err: err}
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept-Language", "en")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &ExtractionError{Source: pageURL, Reason: ReasonUnreachable, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &ExtractionError{Source: pageURL, Reason: ReasonUnreachable,
			Err: fmt.Errorf("HTTP %d", resp.StatusCode)}
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, &ExtractionError{Source: pageURL, Reason: ReasonMalformed, Err: err}
	}

	title := pageTitle(doc)
	text := visibleText(doc)
	if text == "" {
		return nil, &ExtractionError{Source: pageURL, Reason: ReasonMalformed}
	}
	if utf8.RuneCountInString(text) > f.maxDocChars {
		return nil, &ExtractionError{Source: pageURL, Reason: ReasonBudget}
	}

	return &Page{URL: pageURL, Title: title, Text: text}, nil
}

// visibleText drops script/style/nav noise and collapses whitespace.
func visibleText(doc *goquery.Document) string {
	doc.Find("script, style, noscript, nav, footer, iframe").Remove()
	raw := doc.Find("body").Text()
	return strings.Join(strings.Fields(raw), " ")
}

func pageTitle(doc *goquery.Document) string {
	for _, n := range doc.Nodes {
		if title, ok := traverseTitle(n); ok {
			return strings.ToValidUTF8(strings.TrimSpace(title), "")
		}
	}
	return ""
}

func traverseTitle(n *html.Node) (string, bool) {
	if n.Type == html.ElementNode && n.Data == "title" {
		if n.FirstChild != nil {
			return n.FirstChild.Data, true
		}
		return "", true
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if result, ok := traverseTitle(c); ok {
			return result, ok
		}
	}
	return "", false
}
