package usecase

import (
	"context"
	"errors"
	"strings"
	"sync"

	"news-summarizer/internal/domain"
)

type fakeLedger struct {
	mu          sync.Mutex
	entries     map[string]domain.LedgerEntry
	existsErr   error
	insertErr   error
	existsCalls int
	insertCalls int
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{entries: map[string]domain.LedgerEntry{}}
}

func ledgerKey(partition string, key domain.DedupKey) string {
	return partition + "|" + string(key)
}

func (f *fakeLedger) Exists(_ context.Context, partition string, key domain.DedupKey) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.existsCalls++
	if f.existsErr != nil {
		return false, f.existsErr
	}
	_, ok := f.entries[ledgerKey(partition, key)]
	return ok, nil
}

func (f *fakeLedger) Insert(_ context.Context, e domain.LedgerEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.insertCalls++
	if f.insertErr != nil {
		return f.insertErr
	}
	k := ledgerKey(e.Partition, e.Key)
	if _, ok := f.entries[k]; !ok {
		f.entries[k] = e
	}
	return nil
}

func (f *fakeLedger) has(partition, url string) bool {
	_, ok := f.entries[ledgerKey(partition, domain.NewDedupKey(url))]
	return ok
}

type fakeFetcher struct {
	texts map[string]string
	errs  map[string]error
	calls []string
}

func (f *fakeFetcher) Fetch(_ context.Context, url string) (string, error) {
	f.calls = append(f.calls, url)
	if err := f.errs[url]; err != nil {
		return "", err
	}
	if t, ok := f.texts[url]; ok {
		return t, nil
	}
	return "body of " + url, nil
}

type fakeSummarizer struct {
	errs  map[string]error
	calls []string
}

func (f *fakeSummarizer) Summarize(_ context.Context, text string) (string, error) {
	f.calls = append(f.calls, text)
	if err := f.errs[text]; err != nil {
		return "", err
	}
	return "summary of " + text, nil
}

type fakeStore struct {
	docs []domain.SummaryDocument
	errs map[string]error // keyed by article URL
	err  error
}

func (f *fakeStore) Write(_ context.Context, doc domain.SummaryDocument) error {
	if f.err != nil {
		return f.err
	}
	for url, err := range f.errs {
		if strings.HasSuffix(doc.Body, "("+url+")") {
			return err
		}
	}
	f.docs = append(f.docs, doc)
	return nil
}

type fakeNotifier struct {
	batches [][]domain.NotificationItem
	err     error
}

func (f *fakeNotifier) Send(_ context.Context, batch []domain.NotificationItem) error {
	f.batches = append(f.batches, append([]domain.NotificationItem(nil), batch...))
	return f.err
}

type fakeSearcher struct {
	articles []domain.Article
	err      error
	queries  []string
}

func (f *fakeSearcher) Search(_ context.Context, query string) ([]domain.Article, error) {
	f.queries = append(f.queries, query)
	return f.articles, f.err
}

type fakeLLM struct {
	out      string
	err      error
	model    string
	messages []domain.ChatMessage
	max      int
	calls    int
}

func (f *fakeLLM) Complete(_ context.Context, model string, messages []domain.ChatMessage, maxTokens int) (string, error) {
	f.calls++
	f.model = model
	f.messages = messages
	f.max = maxTokens
	return f.out, f.err
}

type fakeModerator struct {
	flagged bool
	err     error
	calls   int
}

func (f *fakeModerator) Moderate(_ context.Context, _ string) (bool, error) {
	f.calls++
	return f.flagged, f.err
}

type statusErr struct{ code int }

func (e *statusErr) Error() string       { return "upstream failed" }
func (e *statusErr) HTTPStatusCode() int { return e.code }

var errBoom = errors.New("boom")
