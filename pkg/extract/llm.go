package extract

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/roamkit/tripscope/internal/utils"
	"github.com/roamkit/tripscope/pkg/places"
)

// Config controls the LLM-backed extractor.
type Config struct {
	APIKey      string
	Model       string
	Endpoint    string
	MaxDocChars int
	Proxy       string
	HTTPClient  *http.Client
}

const (
	defaultModel    = "gpt-4.1-mini"
	defaultEndpoint = "https://api.openai.com/v1/chat/completions"
)

// LLMExtractor fetches a page, reduces it to text and asks a chat-completions
// endpoint for structured place records.
type LLMExtractor struct {
	apiKey   string
	model    string
	endpoint string
	fetcher  *Fetcher
	client   httpClient
}

type httpClient interface {
	Do(req *http.Request) (*http.Response, error)
}

func NewLLMExtractor(cfg Config) (*LLMExtractor, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, errors.New("extraction requires an API key (set ai.api_key in config or OPENAI_API_KEY)")
	}

	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = defaultModel
	}
	endpoint := strings.TrimSpace(cfg.Endpoint)
	if endpoint == "" {
		endpoint = defaultEndpoint
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 60 * time.Second}
	}

	fetcher := NewFetcher(cfg.MaxDocChars)
	if cfg.Proxy != "" {
		if err := fetcher.SetProxy(cfg.Proxy); err != nil {
			return nil, err
		}
		proxyURL, _ := url.Parse(cfg.Proxy)
		client.Transport = &http.Transport{Proxy: http.ProxyURL(proxyURL)}
	}

	return &LLMExtractor{
		apiKey:   apiKey,
		model:    model,
		endpoint: endpoint,
		fetcher:  fetcher,
		client:   client,
	}, nil
}

func (e *LLMExtractor) Extract(ctx context.Context, pageURL, instruction string) ([]places.Place, error) {
	page, err := e.fetcher.Fetch(ctx, pageURL)
	if err != nil {
		return nil, err
	}

	utils.Log.Debugf("[extract] %s: %d chars of text", pageURL, len(page.Text))

	content, err := e.queryLLM(ctx, page, instruction)
	if err != nil {
		return nil, err
	}

	recs := ParsePlaces(content)
	if len(recs) == 0 {
		return nil, &ExtractionError{Source: pageURL, Reason: ReasonBadOutput,
			Err: errors.New("no usable records in model response")}
	}
	return recs, nil
}

func (e *LLMExtractor) queryLLM(ctx context.Context, page *Page, instruction string) (string, error) {
	userPayload, err := json.Marshal(map[string]string{
		"instruction": instruction,
		"url":         page.URL,
		"title":       page.Title,
		"text":        page.Text,
	})
	if err != nil {
		return "", err
	}

	reqBody, err := json.Marshal(map[string]interface{}{
		"model": e.model,
		"messages": []map[string]string{
			{"role": "system", "content": systemPrompt},
			{"role": "user", "content": string(userPayload)},
		},
		"temperature":     0.1,
		"response_format": map[string]string{"type": "json_object"},
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.endpoint, bytes.NewReader(reqBody))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+e.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return "", &ExtractionError{Source: page.URL, Reason: ReasonUnreachable, Err: err}
	}
	defer resp.Body.Close()

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(resp.Body); err != nil {
		return "", &ExtractionError{Source: page.URL, Reason: ReasonBadOutput, Err: err}
	}

	if resp.StatusCode >= 300 {
		if msg := gjson.GetBytes(buf.Bytes(), "error.message").String(); msg != "" {
			return "", &ExtractionError{Source: page.URL, Reason: ReasonBadOutput, Err: errors.New(msg)}
		}
		return "", &ExtractionError{Source: page.URL, Reason: ReasonBadOutput,
			Err: errors.New(resp.Status)}
	}

	content := strings.TrimSpace(gjson.GetBytes(buf.Bytes(), "choices.0.message.content").String())
	if content == "" {
		return "", &ExtractionError{Source: page.URL, Reason: ReasonBadOutput,
			Err: errors.New("empty model response")}
	}
	return content, nil
}

// ParsePlaces converts the model's JSON answer into place records. Items
// without a name are dropped; unrecognized string attributes land in Extra.
func ParsePlaces(content string) []places.Place {
	var out []places.Place
	gjson.Get(content, "places").ForEach(func(_, item gjson.Result) bool {
		name := strings.TrimSpace(item.Get("name").String())
		if name == "" {
			return true
		}
		p := places.Place{
			Name:           name,
			Description:    item.Get("description").String(),
			Category:       strings.ToLower(item.Get("category").String()),
			Rating:         item.Get("rating").Float(),
			PriceRange:     item.Get("price_range").String(),
			OpeningHours:   item.Get("opening_hours").String(),
			Contact:        item.Get("contact_info").String(),
			Address:        item.Get("address").String(),
			WhyRecommended: item.Get("why_recommended").String(),
		}
		item.Get("interests").ForEach(func(_, tag gjson.Result) bool {
			if t := places.NormalizeInterest(tag.String()); t != "" {
				p.Interests = append(p.Interests, t)
			}
			return true
		})
		item.ForEach(func(key, value gjson.Result) bool {
			switch key.String() {
			case "name", "description", "category", "rating", "price_range",
				"opening_hours", "contact_info", "address", "why_recommended", "interests":
			default:
				if value.Type == gjson.String && value.String() != "" {
					if p.Extra == nil {
						p.Extra = make(map[string]string)
					}
					p.Extra[key.String()] = value.String()
				}
			}
			return true
		})
		out = append(out, p)
		return true
	})
	return out
}

const systemPrompt = `You extract travel recommendations from web page text.

The user message is JSON with "instruction", "url", "title" and "text".
Identify every concrete place, venue or experience the page recommends that
matches the instruction.

Return ONLY JSON following this schema:
{
  "places": [
    {
      "name": "string (required)",
      "category": "landmark|museum|food|market|park|district|religious|historical|experience|other",
      "description": "one sentence",
      "rating": 4.5,
      "price_range": "string",
      "opening_hours": "string",
      "address": "string",
      "interests": ["tag", "tag"],
      "why_recommended": "one sentence"
    }
  ]
}

Omit fields you cannot determine. Never invent places that the text does not
mention. Interests tags must be lowercase single words or short phrases.`
