package webfetch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"codeberg.org/readeck/go-readability/v2"
	"github.com/PuerkitoBio/goquery"
	"github.com/microcosm-cc/bluemonday"
)

const (
	defaultTimeout   = 10 * time.Second
	defaultMaxBytes  = 5 << 20
	defaultUserAgent = "Mozilla/5.0 (compatible; news-summarizer/1.0)"
)

// ErrNoContent is returned when a page yields no readable text.
var ErrNoContent = errors.New("webfetch: no readable content")

// StatusError is returned for non-2xx responses.
type StatusError struct {
	StatusCode int
	URL        string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("webfetch: unexpected status %d from %s", e.StatusCode, e.URL)
}

func (e *StatusError) HTTPStatusCode() int {
	return e.StatusCode
}

// Fetcher downloads article pages and extracts their body text.
type Fetcher struct {
	httpClient *http.Client
	userAgent  string
	maxBytes   int64
	policy     *bluemonday.Policy
}

type Option func(*Fetcher)

func WithHTTPClient(httpClient *http.Client) Option {
	return func(f *Fetcher) {
		f.httpClient = httpClient
	}
}

func WithUserAgent(ua string) Option {
	return func(f *Fetcher) {
		if ua = strings.TrimSpace(ua); ua != "" {
			f.userAgent = ua
		}
	}
}

// New returns a Fetcher with a 10 second HTTP timeout.
func New(opts ...Option) *Fetcher {
	f := &Fetcher{
		httpClient: &http.Client{Timeout: defaultTimeout},
		userAgent:  defaultUserAgent,
		maxBytes:   defaultMaxBytes,
		policy:     bluemonday.StrictPolicy(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch retrieves rawURL and returns its paragraph text joined by newlines.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (string, error) {
	pageURL, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return "", fmt.Errorf("webfetch: parse url: %w", err)
	}
	if pageURL.Scheme != "http" && pageURL.Scheme != "https" {
		return "", fmt.Errorf("webfetch: unsupported scheme %q", pageURL.Scheme)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL.String(), nil)
	if err != nil {
		return "", fmt.Errorf("webfetch: create request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	res, err := f.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("webfetch: request failed: %w", err)
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return "", &StatusError{StatusCode: res.StatusCode, URL: pageURL.String()}
	}

	body, err := io.ReadAll(io.LimitReader(res.Body, f.maxBytes))
	if err != nil {
		return "", fmt.Errorf("webfetch: read body: %w", err)
	}

	text, err := f.extract(body, pageURL)
	if err != nil {
		return "", err
	}
	return text, nil
}

// extract prefers the page's <p> elements and falls back to readability when
// none carry text.
func (f *Fetcher) extract(body []byte, pageURL *url.URL) (string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("webfetch: parse html: %w", err)
	}
	doc.Find("script, style, noscript").Remove()

	var paragraphs []string
	doc.Find("p").Each(func(_ int, s *goquery.Selection) {
		if text := f.clean(s.Text()); text != "" {
			paragraphs = append(paragraphs, text)
		}
	})
	if len(paragraphs) > 0 {
		return strings.Join(paragraphs, "\n"), nil
	}

	article, err := readability.FromReader(bytes.NewReader(body), pageURL)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNoContent, err)
	}
	var buf strings.Builder
	if err := article.RenderText(&buf); err != nil {
		return "", fmt.Errorf("%w: %v", ErrNoContent, err)
	}
	var lines []string
	for _, line := range strings.Split(buf.String(), "\n") {
		if text := f.clean(line); text != "" {
			lines = append(lines, text)
		}
	}
	if len(lines) == 0 {
		return "", ErrNoContent
	}
	return strings.Join(lines, "\n"), nil
}

// clean strips residual markup and collapses whitespace.
func (f *Fetcher) clean(s string) string {
	return strings.Join(strings.Fields(html.UnescapeString(f.policy.Sanitize(s))), " ")
}
