package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awsssm "github.com/aws/aws-sdk-go-v2/service/ssm"

	"news-summarizer/handler"
	"news-summarizer/internal/config"
	"news-summarizer/internal/integrations/openai"
	"news-summarizer/internal/integrations/paramstore"
	"news-summarizer/internal/logging"
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
	if err := cfg.ValidateAPI(); err != nil {
		slog.Error("invalid configuration", "err", err)
		os.Exit(1)
	}
	log := logging.New(os.Stdout, cfg.LogLevel).With("component", "api")
	slog.SetDefault(log)

	// ---- AWS SDK config ----
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		log.Error("failed to load AWS config", "err", err)
		os.Exit(1)
	}

	// ---- Clients ----
	ssmClient, err := paramstore.New(awsssm.NewFromConfig(awsCfg))
	if err != nil {
		log.Error("failed to create SSM client", "err", err)
		os.Exit(1)
	}
	openaiClient, err := openai.NewClient(ssmClient, cfg.ParamPrefix,
		openai.WithBaseURL(cfg.OpenAIBaseURL),
		openai.WithRequestsPerMinute(cfg.OpenAIRPM),
	)
	if err != nil {
		log.Error("failed to create OpenAI client", "err", err)
		os.Exit(1)
	}

	// ---- Handler ----
	var moderator usecase.Moderator
	if cfg.ModerateInput {
		moderator = openaiClient
	}
	// The interactive prompt asks for more sections than the batch summary.
	svc, err := usecase.NewSummarizeService(openaiClient, moderator, cfg.OpenAIModel, 2*cfg.MaxSummaryTokens)
	if err != nil {
		log.Error("failed to create summarize service", "err", err)
		os.Exit(1)
	}

	h, err := handler.NewHandler(svc, log)
	if err != nil {
		log.Error("failed to create handler", "err", err)
		os.Exit(1)
	}

	lambda.Start(h.Handle)
}
