package usecase

import (
	"fmt"
	"strings"
	"time"

	"news-summarizer/internal/domain"
)

const (
	documentTimeLayout = "20060102_150405"
	titleRunesInName   = 30
)

// DocumentName returns "<YYYYMMDD_HHMMSS>_<first 30 runes of title>.md".
// Path separators in the title are replaced so the name stays one segment.
func DocumentName(title string, at time.Time) string {
	r := []rune(strings.TrimSpace(title))
	if len(r) > titleRunesInName {
		r = r[:titleRunesInName]
	}
	short := strings.Map(func(c rune) rune {
		switch c {
		case '/', '\\':
			return '_'
		}
		return c
	}, string(r))
	return fmt.Sprintf("%s_%s.md", at.Format(documentTimeLayout), short)
}

// DocumentBody renders the stored Markdown: heading, summary, source link.
func DocumentBody(title, url, summary, linkLabel string) string {
	return fmt.Sprintf("# %s\n\n%s\n\n[%s](%s)", title, summary, linkLabel, url)
}

func buildDocument(a domain.Article, summary, linkLabel string, at time.Time) domain.SummaryDocument {
	return domain.SummaryDocument{
		Name: DocumentName(a.Title, at),
		Body: DocumentBody(a.Title, a.URL, summary, linkLabel),
	}
}
