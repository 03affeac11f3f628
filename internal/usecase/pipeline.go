package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"news-summarizer/internal/domain"
)

const defaultStageTimeout = 60 * time.Second

// PipelineDeps are the collaborators of a Pipeline. Notifier may be nil, in
// which case runs never notify.
type PipelineDeps struct {
	Fetcher    ContentFetcher
	Summarizer Summarizer
	Store      SummaryStore
	Ledger     DedupLedger
	Notifier   Notifier
}

// Pipeline processes search candidates one at a time: dedup, fetch,
// summarize, store, record. A failure in any stage only affects that article.
type Pipeline struct {
	deps         PipelineDeps
	stageTimeout time.Duration
	linkLabel    string
	log          *slog.Logger
	now          func() time.Time
}

type PipelineOption func(*Pipeline)

func WithStageTimeout(d time.Duration) PipelineOption {
	return func(p *Pipeline) {
		if d > 0 {
			p.stageTimeout = d
		}
	}
}

func WithLinkLabel(label string) PipelineOption {
	return func(p *Pipeline) {
		if label != "" {
			p.linkLabel = label
		}
	}
}

func WithLogger(log *slog.Logger) PipelineOption {
	return func(p *Pipeline) {
		if log != nil {
			p.log = log
		}
	}
}

func withClock(now func() time.Time) PipelineOption {
	return func(p *Pipeline) {
		p.now = now
	}
}

func NewPipeline(deps PipelineDeps, opts ...PipelineOption) (*Pipeline, error) {
	if deps.Fetcher == nil {
		return nil, errors.New("usecase: content fetcher must not be nil")
	}
	if deps.Summarizer == nil {
		return nil, errors.New("usecase: summarizer must not be nil")
	}
	if deps.Store == nil {
		return nil, errors.New("usecase: summary store must not be nil")
	}
	if deps.Ledger == nil {
		return nil, errors.New("usecase: dedup ledger must not be nil")
	}
	p := &Pipeline{
		deps:         deps,
		stageTimeout: defaultStageTimeout,
		linkLabel:    "記事URL",
		log:          slog.Default(),
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Run processes candidates in order and returns the tally. It never fails as
// a whole; per-article and notification errors are logged and counted.
func (p *Pipeline) Run(ctx context.Context, candidates []domain.Article, partition string) domain.RunResult {
	res := domain.RunResult{
		RunID:      newRunID(),
		Partition:  partition,
		Candidates: len(candidates),
	}
	log := p.log.With("run_id", res.RunID, "partition", partition)
	log.Info("ingestion run started", "candidates", len(candidates))

	var batch []domain.NotificationItem
	for _, a := range candidates {
		out := p.process(ctx, a, partition)
		alog := log.With("url", a.URL, "stage", string(out.stage))

		switch out.status {
		case outcomeInvalid:
			res.Invalid++
			alog.Warn("skipping candidate with missing title or url", "title", a.Title)
		case outcomeDuplicate:
			res.Duplicates++
			alog.Info("skipping already processed article")
		case outcomeFailed:
			switch out.stage {
			case stageDedup:
				res.FailedDedupCheck++
			case stageFetch:
				res.FailedFetch++
			case stageSummarize:
				res.FailedSummarize++
			case stageStore:
				res.FailedStore++
			}
			alog.Error("article failed", "err", out.err)
		case outcomeStored:
			res.Succeeded++
			if out.ledgerErr != nil {
				res.FailedLedger++
				alog.Error("summary stored but ledger write failed", "err", out.ledgerErr)
			} else {
				alog.Info("article summarized")
			}
			batch = append(batch, domain.NotificationItem{Title: a.Title, URL: a.URL})
		}
	}

	p.notify(ctx, log, batch, &res)

	log.Info("ingestion run finished",
		"succeeded", res.Succeeded,
		"duplicates", res.Duplicates,
		"invalid", res.Invalid,
		"failed", res.Failed(),
		"ledger_failed", res.FailedLedger,
		"notified", res.Notified,
	)
	return res
}

func (p *Pipeline) process(ctx context.Context, a domain.Article, partition string) articleOutcome {
	if !a.Valid() {
		return articleOutcome{status: outcomeInvalid, stage: stageValidate}
	}
	key := domain.NewDedupKey(a.URL)

	var seen bool
	err := p.withTimeout(ctx, func(ctx context.Context) error {
		var err error
		seen, err = p.deps.Ledger.Exists(ctx, partition, key)
		return err
	})
	if err != nil {
		return failed(stageDedup, err)
	}
	if seen {
		return articleOutcome{status: outcomeDuplicate, stage: stageDedup}
	}

	var text string
	err = p.withTimeout(ctx, func(ctx context.Context) error {
		var err error
		text, err = p.deps.Fetcher.Fetch(ctx, a.URL)
		return err
	})
	if err != nil {
		return failed(stageFetch, err)
	}

	var summary string
	err = p.withTimeout(ctx, func(ctx context.Context) error {
		var err error
		summary, err = p.deps.Summarizer.Summarize(ctx, text)
		return err
	})
	if err != nil {
		return failed(stageSummarize, err)
	}

	now := p.now()
	doc := buildDocument(a, summary, p.linkLabel, now)
	err = p.withTimeout(ctx, func(ctx context.Context) error {
		return p.deps.Store.Write(ctx, doc)
	})
	if err != nil {
		return failed(stageStore, err)
	}

	err = p.withTimeout(ctx, func(ctx context.Context) error {
		return p.deps.Ledger.Insert(ctx, domain.LedgerEntry{
			Partition: partition,
			Key:       key,
			Title:     a.Title,
			URL:       a.URL,
			CreatedAt: now,
		})
	})
	return stored(err)
}

func (p *Pipeline) notify(ctx context.Context, log *slog.Logger, batch []domain.NotificationItem, res *domain.RunResult) {
	if len(batch) == 0 {
		log.Info("no new articles, skipping notification")
		return
	}
	if p.deps.Notifier == nil {
		log.Info("notifications disabled", "items", len(batch))
		return
	}
	res.NotifyAttempted = true
	err := p.withTimeout(ctx, func(ctx context.Context) error {
		return p.deps.Notifier.Send(ctx, batch)
	})
	if err != nil {
		log.Error("notification failed", "stage", string(stageNotify), "items", len(batch), "err", err)
		return
	}
	res.Notified = true
	log.Info("notification sent", "items", len(batch))
}

func (p *Pipeline) withTimeout(ctx context.Context, fn func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, p.stageTimeout)
	defer cancel()
	return fn(ctx)
}

var newRunID = func() string {
	return uuid.NewString()
}
