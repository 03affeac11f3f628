package usecase

import (
	"context"

	"news-summarizer/internal/domain"
)

// NewsSearcher returns candidate articles for a query.
type NewsSearcher interface {
	Search(ctx context.Context, query string) ([]domain.Article, error)
}

// CredentialChecker reports whether a client can read the secret it needs.
type CredentialChecker interface {
	CheckCredentials(ctx context.Context) error
}

// ContentFetcher returns the readable body text of the page at url.
type ContentFetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// Summarizer turns article text into a Markdown summary.
type Summarizer interface {
	Summarize(ctx context.Context, text string) (string, error)
}

// DedupLedger records which articles have already been stored per partition.
// Insert must succeed when the entry already exists.
type DedupLedger interface {
	Exists(ctx context.Context, partition string, key domain.DedupKey) (bool, error)
	Insert(ctx context.Context, entry domain.LedgerEntry) error
}

// SummaryStore persists rendered summary documents.
type SummaryStore interface {
	Write(ctx context.Context, doc domain.SummaryDocument) error
}

// Notifier delivers the run digest. A nil error means it was sent.
type Notifier interface {
	Send(ctx context.Context, batch []domain.NotificationItem) error
}

// LLMClient is the chat completion surface used by the summarizers.
type LLMClient interface {
	Complete(ctx context.Context, model string, messages []domain.ChatMessage, maxTokens int) (string, error)
}

// Moderator flags unsafe input text.
type Moderator interface {
	Moderate(ctx context.Context, input string) (bool, error)
}
