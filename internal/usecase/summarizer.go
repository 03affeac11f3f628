package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// LLMSummarizer summarizes article text with a chat model.
type LLMSummarizer struct {
	llm       LLMClient
	model     string
	maxTokens int
}

func NewLLMSummarizer(llm LLMClient, model string, maxTokens int) (*LLMSummarizer, error) {
	if llm == nil {
		return nil, errors.New("usecase: llm client must not be nil")
	}
	model = strings.TrimSpace(model)
	if model == "" {
		return nil, errors.New("usecase: model must not be empty")
	}
	if maxTokens <= 0 {
		maxTokens = 1500
	}
	return &LLMSummarizer{llm: llm, model: model, maxTokens: maxTokens}, nil
}

// Summarize asks for a three-paragraph Markdown summary of the first 8000
// characters of text.
func (s *LLMSummarizer) Summarize(ctx context.Context, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", errors.New("usecase: nothing to summarize")
	}
	out, err := s.llm.Complete(ctx, s.model, buildArticlePrompt(text), s.maxTokens)
	if err != nil {
		return "", fmt.Errorf("usecase: summarize: %w", err)
	}
	return out, nil
}
