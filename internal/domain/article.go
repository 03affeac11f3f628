package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
)

// Article is a search result candidate. It only lives for one run.
type Article struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// Valid reports whether both title and URL carry non-whitespace content.
func (a Article) Valid() bool {
	return strings.TrimSpace(a.Title) != "" && strings.TrimSpace(a.URL) != ""
}

// DedupKey identifies an article within a partition. It is the lowercase hex
// SHA-256 of the URL exactly as received.
type DedupKey string

// NewDedupKey hashes the raw URL. No normalization is applied, so
// "http://a/x" and "http://a/x/" produce different keys.
func NewDedupKey(rawURL string) DedupKey {
	sum := sha256.Sum256([]byte(rawURL))
	return DedupKey(hex.EncodeToString(sum[:]))
}

// LedgerEntry records that an article's summary was stored for a partition.
// Entries are written once and never updated.
type LedgerEntry struct {
	Partition string
	Key       DedupKey
	Title     string
	URL       string
	CreatedAt time.Time
}

// SummaryDocument is a rendered Markdown summary ready for the store.
type SummaryDocument struct {
	Name string
	Body string
}

// NotificationItem is one line of the end-of-run digest.
type NotificationItem struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}
