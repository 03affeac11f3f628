package usecase

import (
	"context"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/require"
)

func TestNewLLMSummarizer_Validation(t *testing.T) {
	_, err := NewLLMSummarizer(nil, "m", 0)
	require.Error(t, err)
	_, err = NewLLMSummarizer(&fakeLLM{}, " ", 0)
	require.Error(t, err)

	s, err := NewLLMSummarizer(&fakeLLM{}, "m", 0)
	require.NoError(t, err)
	require.Equal(t, 1500, s.maxTokens)
}

func TestLLMSummarizer_Summarize(t *testing.T) {
	llm := &fakeLLM{out: "three paragraphs"}
	s, err := NewLLMSummarizer(llm, "gpt-5-mini", 1500)
	require.NoError(t, err)

	out, err := s.Summarize(context.Background(), "article body")
	require.NoError(t, err)
	require.Equal(t, "three paragraphs", out)
	require.Equal(t, "gpt-5-mini", llm.model)
	require.Equal(t, 1500, llm.max)
	require.Len(t, llm.messages, 1)
	require.Equal(t, "user", llm.messages[0].Role)
	require.Equal(t, "Please summarize the following article into three paragraphs in Markdown format.\n\narticle body", llm.messages[0].Content)
}

func TestLLMSummarizer_TruncatesLongInput(t *testing.T) {
	llm := &fakeLLM{out: "ok"}
	s, err := NewLLMSummarizer(llm, "m", 0)
	require.NoError(t, err)

	_, err = s.Summarize(context.Background(), strings.Repeat("あ", 9000))
	require.NoError(t, err)
	content := llm.messages[0].Content
	require.True(t, utf8.ValidString(content))
	body := content[strings.Index(content, "\n\n")+2:]
	require.Equal(t, 8000, utf8.RuneCountInString(body))
}

func TestLLMSummarizer_Errors(t *testing.T) {
	s, err := NewLLMSummarizer(&fakeLLM{err: errBoom}, "m", 0)
	require.NoError(t, err)
	_, err = s.Summarize(context.Background(), "text")
	require.ErrorIs(t, err, errBoom)

	_, err = s.Summarize(context.Background(), "  ")
	require.Error(t, err)
}

func TestTruncateRunes(t *testing.T) {
	require.Equal(t, "abc", truncateRunes("abc", 5))
	require.Equal(t, "ab", truncateRunes("abc", 2))
	require.Equal(t, "日本", truncateRunes("日本語", 2))
	require.Equal(t, "", truncateRunes("abc", 0))
}
