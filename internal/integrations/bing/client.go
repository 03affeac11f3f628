package bing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"news-summarizer/internal/domain"
	"news-summarizer/internal/integrations/paramstore"
)

const defaultEndpoint = "https://api.bing.microsoft.com/v7.0/news/search"

// newsResponse is the subset of the News Search v7 payload we read.
type newsResponse struct {
	Value []struct {
		Name string `json:"name"`
		URL  string `json:"url"`
	} `json:"value"`
}

// HTTPStatusError captures non-2xx upstream responses.
type HTTPStatusError struct {
	StatusCode int
	Body       string
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("bing: unexpected status %d: %s", e.StatusCode, e.Body)
}

func (e *HTTPStatusError) HTTPStatusCode() int {
	return e.StatusCode
}

// Client searches Bing News for recent articles.
type Client struct {
	endpoint    string
	market      string
	count       int
	httpClient  *http.Client
	getter      paramstore.Getter
	paramPrefix string

	keyMu  sync.Mutex
	apiKey string
}

type Option func(*Client)

func WithEndpoint(endpoint string) Option {
	return func(c *Client) {
		if endpoint = strings.TrimSpace(endpoint); endpoint != "" {
			c.endpoint = endpoint
		}
	}
}

func WithMarket(market string) Option {
	return func(c *Client) {
		if market = strings.TrimSpace(market); market != "" {
			c.market = market
		}
	}
}

// WithCount sets how many results a search returns at most.
func WithCount(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.count = n
		}
	}
}

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// NewClient creates a Client whose subscription key is read from
// <paramPrefix>/bing-api-key on first use.
func NewClient(ps paramstore.Getter, paramPrefix string, opts ...Option) (*Client, error) {
	if ps == nil {
		return nil, errors.New("bing: paramstore getter must not be nil")
	}
	paramPrefix = strings.TrimRight(strings.TrimSpace(paramPrefix), "/")
	if paramPrefix == "" {
		return nil, errors.New("bing: parameter prefix must not be empty")
	}
	c := &Client{
		endpoint:    defaultEndpoint,
		market:      "ja-JP",
		count:       5,
		httpClient:  &http.Client{Timeout: 10 * time.Second},
		getter:      ps,
		paramPrefix: paramPrefix,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// resolveAPIKey caches the key once it has been read. Failures are not
// cached so a later call retries the parameter store.
func (c *Client) resolveAPIKey(ctx context.Context) (string, error) {
	c.keyMu.Lock()
	defer c.keyMu.Unlock()
	if c.apiKey != "" {
		return c.apiKey, nil
	}
	key, err := paramstore.Token(ctx, c.getter, c.paramPrefix+"/bing-api-key")
	if err != nil {
		return "", fmt.Errorf("bing: %w", err)
	}
	c.apiKey = key
	return key, nil
}

// CheckCredentials reports whether the API key can be read.
func (c *Client) CheckCredentials(ctx context.Context) error {
	_, err := c.resolveAPIKey(ctx)
	return err
}

// Search returns up to the configured number of articles for query, newest
// first. Results without a name or URL are dropped.
func (c *Client) Search(ctx context.Context, query string) ([]domain.Article, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, errors.New("bing: query must not be empty")
	}
	apiKey, err := c.resolveAPIKey(ctx)
	if err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("mkt", c.market)
	params.Set("sortBy", "Date")
	params.Set("count", strconv.Itoa(c.count))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("bing: create request: %w", err)
	}
	req.Header.Set("Ocp-Apim-Subscription-Key", apiKey)
	req.Header.Set("Accept", "application/json")

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("bing: request failed: %w", err)
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		buf, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
		return nil, &HTTPStatusError{StatusCode: res.StatusCode, Body: string(buf)}
	}

	var payload newsResponse
	if err := json.NewDecoder(io.LimitReader(res.Body, 1<<20)).Decode(&payload); err != nil {
		return nil, fmt.Errorf("bing: decode response: %w", err)
	}

	articles := make([]domain.Article, 0, len(payload.Value))
	for _, v := range payload.Value {
		a := domain.Article{Title: strings.TrimSpace(v.Name), URL: strings.TrimSpace(v.URL)}
		if !a.Valid() {
			continue
		}
		articles = append(articles, a)
		if len(articles) == c.count {
			break
		}
	}
	return articles, nil
}
