package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"news-summarizer/internal/domain"
)

// Runner is the part of Pipeline that IngestService drives.
type Runner interface {
	Run(ctx context.Context, candidates []domain.Article, partition string) domain.RunResult
}

// IngestService runs one scheduled ingestion: search, then pipeline.
type IngestService struct {
	searcher      NewsSearcher
	pipeline      Runner
	query         string
	partition     string
	searchTimeout time.Duration
	log           *slog.Logger
	credentials   []CredentialChecker
}

// NewIngestService builds the service. Each credential checker is consulted at
// the start of every run, before any article is searched or fetched.
func NewIngestService(searcher NewsSearcher, pipeline Runner, query, partition string, searchTimeout time.Duration, log *slog.Logger, credentials ...CredentialChecker) (*IngestService, error) {
	if searcher == nil {
		return nil, errors.New("usecase: news searcher must not be nil")
	}
	if pipeline == nil {
		return nil, errors.New("usecase: pipeline must not be nil")
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, errors.New("usecase: search query must not be empty")
	}
	partition = strings.TrimSpace(partition)
	if partition == "" {
		return nil, errors.New("usecase: partition must not be empty")
	}
	if searchTimeout <= 0 {
		searchTimeout = defaultStageTimeout
	}
	if log == nil {
		log = slog.Default()
	}
	for _, c := range credentials {
		if c == nil {
			return nil, errors.New("usecase: credential checker must not be nil")
		}
	}
	return &IngestService{
		searcher:      searcher,
		pipeline:      pipeline,
		query:         query,
		partition:     partition,
		searchTimeout: searchTimeout,
		log:           log,
		credentials:   credentials,
	}, nil
}

// Run searches for candidates and processes them. Missing credentials or a
// failed or empty search end the run with nothing processed.
func (s *IngestService) Run(ctx context.Context) domain.RunResult {
	log := s.log.With("partition", s.partition, "query", s.query)
	if err := s.checkCredentials(ctx); err != nil {
		log.Error("credentials unavailable, nothing to process", "err", err)
		return domain.RunResult{Partition: s.partition}
	}

	searchCtx, cancel := context.WithTimeout(ctx, s.searchTimeout)
	candidates, err := s.searcher.Search(searchCtx, s.query)
	cancel()

	if err != nil {
		log.Error("news search failed, nothing to process", "err", err)
		return domain.RunResult{Partition: s.partition}
	}
	if len(candidates) == 0 {
		log.Info("news search returned no articles")
		return domain.RunResult{Partition: s.partition}
	}
	return s.pipeline.Run(ctx, candidates, s.partition)
}

func (s *IngestService) checkCredentials(ctx context.Context) error {
	for _, c := range s.credentials {
		checkCtx, cancel := context.WithTimeout(ctx, s.searchTimeout)
		err := c.CheckCredentials(checkCtx)
		cancel()
		if err != nil {
			return err
		}
	}
	return nil
}
