package usecase

import (
	"context"
	"errors"
	"strings"
)

const maxInteractiveInput = 100_000

type httpStatusCoder interface {
	HTTPStatusCode() int
}

// SummarizeService backs the interactive endpoint: pasted article text in,
// Markdown summary with an optional Mermaid diagram out.
type SummarizeService struct {
	llm       LLMClient
	moderator Moderator
	model     string
	maxTokens int
}

type SummarizeInput struct {
	NewsText string
}

type SummarizeOutput struct {
	Summary         string
	MermaidDiagrams []string
}

// NewSummarizeService builds the service. moderator may be nil to skip
// input moderation.
func NewSummarizeService(llm LLMClient, moderator Moderator, model string, maxTokens int) (*SummarizeService, error) {
	if llm == nil {
		return nil, errors.New("usecase: llm client must not be nil")
	}
	model = strings.TrimSpace(model)
	if model == "" {
		return nil, errors.New("usecase: model must not be empty")
	}
	return &SummarizeService{llm: llm, moderator: moderator, model: model, maxTokens: maxTokens}, nil
}

func (s *SummarizeService) Summarize(ctx context.Context, in SummarizeInput) (SummarizeOutput, error) {
	text := strings.TrimSpace(in.NewsText)
	if text == "" {
		return SummarizeOutput{}, newError(ErrorInvalidInput, "empty_news_text", nil)
	}
	if len(text) > maxInteractiveInput {
		return SummarizeOutput{}, newError(ErrorInvalidInput, "news_text_too_long", nil)
	}

	if s.moderator != nil {
		flagged, err := s.moderator.Moderate(ctx, text)
		if err != nil {
			return SummarizeOutput{}, upstreamError("moderation", err)
		}
		if flagged {
			return SummarizeOutput{}, newError(ErrorRejectedInput, "moderation_flagged", nil)
		}
	}

	summary, err := s.llm.Complete(ctx, s.model, buildInteractivePrompt(text), s.maxTokens)
	if err != nil {
		return SummarizeOutput{}, upstreamError("openai", err)
	}
	return SummarizeOutput{
		Summary:         summary,
		MermaidDiagrams: ExtractMermaid(summary),
	}, nil
}

func upstreamError(source string, err error) *Error {
	if status, ok := upstreamStatusCode(err); ok && status == 429 {
		return newError(ErrorRateLimited, source+"_rate_limited", err)
	}
	return newError(ErrorUpstream, source+"_error", err)
}

func upstreamStatusCode(err error) (int, bool) {
	var statusErr httpStatusCoder
	if !errors.As(err, &statusErr) {
		return 0, false
	}
	return statusErr.HTTPStatusCode(), true
}
