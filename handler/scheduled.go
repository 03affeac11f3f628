package handler

import (
	"context"
	"errors"
	"log/slog"

	"github.com/aws/aws-lambda-go/events"

	"news-summarizer/internal/domain"
)

// IngestUseCase runs one ingestion pass.
type IngestUseCase interface {
	Run(ctx context.Context) domain.RunResult
}

// Scheduled handles the EventBridge rule that triggers ingestion.
type Scheduled struct {
	uc  IngestUseCase
	log *slog.Logger
}

func NewScheduled(uc IngestUseCase, log *slog.Logger) (*Scheduled, error) {
	if uc == nil {
		return nil, errors.New("handler: ingest use case must not be nil")
	}
	if log == nil {
		log = slog.Default()
	}
	return &Scheduled{uc: uc, log: log}, nil
}

// Handle runs ingestion and returns its tally. Per-article and notification
// failures are part of the result, not an invocation error, so Lambda does
// not retry a run that already stored summaries.
func (s *Scheduled) Handle(ctx context.Context, event events.CloudWatchEvent) (domain.RunResult, error) {
	s.log.Info("scheduled ingestion triggered", "event_id", event.ID, "source", event.Source, "time", event.Time)
	return s.uc.Run(ctx), nil
}
