package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	awssesv2 "github.com/aws/aws-sdk-go-v2/service/sesv2"
	awsssm "github.com/aws/aws-sdk-go-v2/service/ssm"

	"news-summarizer/handler"
	"news-summarizer/internal/config"
	"news-summarizer/internal/integrations/bing"
	"news-summarizer/internal/integrations/openai"
	"news-summarizer/internal/integrations/paramstore"
	"news-summarizer/internal/integrations/s3store"
	"news-summarizer/internal/integrations/ses"
	"news-summarizer/internal/integrations/webfetch"
	"news-summarizer/internal/logging"
	"news-summarizer/internal/repository"
	"news-summarizer/internal/usecase"
)

func main() {
	ctx := context.Background()

	// ---- Configuration (read only here) ----
	cfg, err := config.Load(os.Getenv)
	if err != nil {
		slog.Error("invalid configuration", "err", err)
		os.Exit(1)
	}
	if err := cfg.ValidateIngest(); err != nil {
		slog.Error("invalid configuration", "err", err)
		os.Exit(1)
	}
	log := logging.New(os.Stdout, cfg.LogLevel).With("component", "ingest")
	slog.SetDefault(log)

	// ---- AWS SDK config ----
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		fatal(log, "failed to load AWS config", err)
	}

	// ---- Clients ----
	ssmClient, err := paramstore.New(awsssm.NewFromConfig(awsCfg))
	if err != nil {
		fatal(log, "failed to create SSM client", err)
	}
	ledger, err := repository.New(awsdynamodb.NewFromConfig(awsCfg), cfg.LedgerTable)
	if err != nil {
		fatal(log, "failed to create ledger client", err)
	}
	store, err := s3store.New(awss3.NewFromConfig(awsCfg), cfg.SummaryBucket, cfg.SummaryPrefix, awsCfg.Region)
	if err != nil {
		fatal(log, "failed to create summary store", err)
	}
	if cfg.EnsureBucket {
		if err := store.EnsureBucket(ctx); err != nil {
			fatal(log, "failed to ensure summary bucket", err)
		}
	}
	searcher, err := bing.NewClient(ssmClient, cfg.ParamPrefix,
		bing.WithMarket(cfg.SearchMarket),
		bing.WithCount(cfg.SearchCount),
	)
	if err != nil {
		fatal(log, "failed to create search client", err)
	}
	openaiClient, err := openai.NewClient(ssmClient, cfg.ParamPrefix,
		openai.WithBaseURL(cfg.OpenAIBaseURL),
		openai.WithRequestsPerMinute(cfg.OpenAIRPM),
	)
	if err != nil {
		fatal(log, "failed to create OpenAI client", err)
	}
	summarizer, err := usecase.NewLLMSummarizer(openaiClient, cfg.OpenAIModel, cfg.MaxSummaryTokens)
	if err != nil {
		fatal(log, "failed to create summarizer", err)
	}

	deps := usecase.PipelineDeps{
		Fetcher:    webfetch.New(),
		Summarizer: summarizer,
		Store:      store,
		Ledger:     ledger,
	}
	if cfg.NotificationsEnabled() {
		notifier, err := ses.New(awssesv2.NewFromConfig(awsCfg), cfg.NotifyFrom, cfg.NotifyTo)
		if err != nil {
			fatal(log, "failed to create notifier", err)
		}
		deps.Notifier = notifier
	} else {
		log.Info("notifications disabled, NOTIFY_FROM/NOTIFY_TO not set")
	}

	// ---- Handler ----
	pipeline, err := usecase.NewPipeline(deps,
		usecase.WithStageTimeout(cfg.StageTimeout),
		usecase.WithLinkLabel(cfg.LinkLabel),
		usecase.WithLogger(log),
	)
	if err != nil {
		fatal(log, "failed to create pipeline", err)
	}
	ingest, err := usecase.NewIngestService(searcher, pipeline, cfg.SearchQuery, cfg.Partition, cfg.StageTimeout, log,
		searcher, openaiClient,
	)
	if err != nil {
		fatal(log, "failed to create ingest service", err)
	}
	h, err := handler.NewScheduled(ingest, log)
	if err != nil {
		fatal(log, "failed to create handler", err)
	}

	lambda.Start(h.Handle)
}

func fatal(log *slog.Logger, msg string, err error) {
	log.Error(msg, "err", err)
	os.Exit(1)
}
