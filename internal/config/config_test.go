package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func env(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(env(map[string]string{"PARAM_PREFIX": "/news-summarizer/"}))
	require.NoError(t, err)
	require.Equal(t, "/news-summarizer", cfg.ParamPrefix)
	require.Equal(t, "AI_Tech", cfg.Partition)
	require.Equal(t, "latest technology news", cfg.SearchQuery)
	require.Equal(t, "ja-JP", cfg.SearchMarket)
	require.Equal(t, 5, cfg.SearchCount)
	require.Equal(t, "gpt-5-mini", cfg.OpenAIModel)
	require.Equal(t, 60*time.Second, cfg.StageTimeout)
	require.Equal(t, "記事URL", cfg.LinkLabel)
	require.Equal(t, 1500, cfg.MaxSummaryTokens)
	require.Equal(t, "info", cfg.LogLevel)
	require.False(t, cfg.NotificationsEnabled())
	require.False(t, cfg.ModerateInput)
}

func TestLoad_Overrides(t *testing.T) {
	cfg, err := Load(env(map[string]string{
		"PARAM_PREFIX":    "/p",
		"LEDGER_TABLE":    "ledger",
		"SUMMARY_BUCKET":  "bucket",
		"TOPIC_PARTITION": "Finance",
		"SEARCH_COUNT":    "8",
		"OPENAI_RPM":      "20",
		"STAGE_TIMEOUT":   "15s",
		"NOTIFY_FROM":     "news@example.com",
		"NOTIFY_TO":       "a@example.com, ,b@example.com",
		"MODERATE_INPUT":  "true",
		"ENSURE_BUCKET":   "1",
	}))
	require.NoError(t, err)
	require.Equal(t, "Finance", cfg.Partition)
	require.Equal(t, 8, cfg.SearchCount)
	require.Equal(t, 20, cfg.OpenAIRPM)
	require.Equal(t, 15*time.Second, cfg.StageTimeout)
	require.Equal(t, []string{"a@example.com", "b@example.com"}, cfg.NotifyTo)
	require.True(t, cfg.NotificationsEnabled())
	require.True(t, cfg.ModerateInput)
	require.True(t, cfg.EnsureBucket)
	require.NoError(t, cfg.ValidateIngest())
}

func TestLoad_MalformedValues(t *testing.T) {
	_, err := Load(env(map[string]string{
		"SEARCH_COUNT":   "zero",
		"STAGE_TIMEOUT":  "-1s",
		"MODERATE_INPUT": "maybe",
		"NOTIFY_FROM":    "news@example.com",
	}))
	require.Error(t, err)
	require.Contains(t, err.Error(), "SEARCH_COUNT")
	require.Contains(t, err.Error(), "STAGE_TIMEOUT")
	require.Contains(t, err.Error(), "MODERATE_INPUT")
	require.Contains(t, err.Error(), "NOTIFY_FROM and NOTIFY_TO")
}

func TestValidateIngest_ListsMissingKeys(t *testing.T) {
	cfg, err := Load(env(map[string]string{}))
	require.NoError(t, err)
	err = cfg.ValidateIngest()
	require.EqualError(t, err, "config: required environment variables not set: LEDGER_TABLE, PARAM_PREFIX, SUMMARY_BUCKET")
	require.EqualError(t, cfg.ValidateAPI(), "config: required environment variables not set: PARAM_PREFIX")
}
