package usecase

import (
	"regexp"
	"strings"

	"news-summarizer/internal/domain"
)

const articleInputLimit = 8000

// truncateRunes cuts s to at most n runes without splitting a character.
func truncateRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}

func buildArticlePrompt(text string) []domain.ChatMessage {
	return []domain.ChatMessage{{
		Role: "user",
		Content: "Please summarize the following article into three paragraphs in Markdown format.\n\n" +
			truncateRunes(text, articleInputLimit),
	}}
}

func buildInteractivePrompt(newsText string) []domain.ChatMessage {
	return []domain.ChatMessage{
		{Role: "system", Content: strings.Join([]string{
			"Summarize the following news article in Markdown format.",
			"Include the elements below in your response:",
			"- Title (Heading 1)",
			"- Key points (bullet list)",
			"- Detailed summary (paragraph form)",
			"- A Mermaid diagram that illustrates the article, in a ```mermaid fenced code block",
		}, "\n")},
		{Role: "user", Content: "News article:\n" + newsText},
	}
}

var mermaidBlock = regexp.MustCompile("(?s)```mermaid[ \\t]*\\r?\\n(.*?)```")

// ExtractMermaid returns the body of every ```mermaid fenced block in order.
// Blank blocks are skipped.
func ExtractMermaid(markdown string) []string {
	matches := mermaidBlock.FindAllStringSubmatch(markdown, -1)
	diagrams := make([]string, 0, len(matches))
	for _, m := range matches {
		if d := strings.TrimSpace(m[1]); d != "" {
			diagrams = append(diagrams, d)
		}
	}
	return diagrams
}
