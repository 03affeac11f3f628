package config

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Config holds everything read from the environment. Nothing else in the
// module calls os.Getenv.
type Config struct {
	ParamPrefix      string
	LedgerTable      string
	SummaryBucket    string
	SummaryPrefix    string
	Partition        string
	SearchQuery      string
	SearchMarket     string
	SearchCount      int
	OpenAIBaseURL    string
	OpenAIModel      string
	OpenAIRPM        int
	NotifyFrom       string
	NotifyTo         []string
	StageTimeout     time.Duration
	LinkLabel        string
	LogLevel         string
	ModerateInput    bool
	EnsureBucket     bool
	MaxSummaryTokens int
}

const (
	DefaultPartition    = "AI_Tech"
	DefaultSearchQuery  = "latest technology news"
	DefaultSearchMarket = "ja-JP"
	DefaultSearchCount  = 5
	DefaultModel        = "gpt-5-mini"
	DefaultStageTimeout = 60 * time.Second
	DefaultLinkLabel    = "記事URL"
	DefaultSummaryMax   = 1500
)

// Load reads the configuration through getenv, typically os.Getenv.
// Malformed values are reported together in one error.
func Load(getenv func(string) string) (Config, error) {
	get := func(key string) string { return strings.TrimSpace(getenv(key)) }

	cfg := Config{
		ParamPrefix:      strings.TrimRight(get("PARAM_PREFIX"), "/"),
		LedgerTable:      get("LEDGER_TABLE"),
		SummaryBucket:    get("SUMMARY_BUCKET"),
		SummaryPrefix:    get("SUMMARY_PREFIX"),
		Partition:        orDefault(get("TOPIC_PARTITION"), DefaultPartition),
		SearchQuery:      orDefault(get("SEARCH_QUERY"), DefaultSearchQuery),
		SearchMarket:     orDefault(get("SEARCH_MARKET"), DefaultSearchMarket),
		OpenAIBaseURL:    get("OPENAI_BASE_URL"),
		OpenAIModel:      orDefault(get("OPENAI_MODEL"), DefaultModel),
		NotifyFrom:       get("NOTIFY_FROM"),
		NotifyTo:         splitList(get("NOTIFY_TO")),
		LinkLabel:        orDefault(get("LINK_LABEL"), DefaultLinkLabel),
		LogLevel:         orDefault(get("LOG_LEVEL"), "info"),
		SearchCount:      DefaultSearchCount,
		StageTimeout:     DefaultStageTimeout,
		MaxSummaryTokens: DefaultSummaryMax,
	}

	var errs []error
	if v := get("SEARCH_COUNT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			errs = append(errs, fmt.Errorf("SEARCH_COUNT must be a positive integer, got %q", v))
		} else {
			cfg.SearchCount = n
		}
	}
	if v := get("OPENAI_RPM"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			errs = append(errs, fmt.Errorf("OPENAI_RPM must be a non-negative integer, got %q", v))
		} else {
			cfg.OpenAIRPM = n
		}
	}
	if v := get("MAX_SUMMARY_TOKENS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			errs = append(errs, fmt.Errorf("MAX_SUMMARY_TOKENS must be a positive integer, got %q", v))
		} else {
			cfg.MaxSummaryTokens = n
		}
	}
	if v := get("STAGE_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			errs = append(errs, fmt.Errorf("STAGE_TIMEOUT must be a positive duration, got %q", v))
		} else {
			cfg.StageTimeout = d
		}
	}
	for key, dst := range map[string]*bool{
		"MODERATE_INPUT": &cfg.ModerateInput,
		"ENSURE_BUCKET":  &cfg.EnsureBucket,
	} {
		v := get(key)
		if v == "" {
			continue
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s must be a boolean, got %q", key, v))
			continue
		}
		*dst = b
	}
	if (cfg.NotifyFrom == "") != (len(cfg.NotifyTo) == 0) {
		errs = append(errs, errors.New("NOTIFY_FROM and NOTIFY_TO must be set together"))
	}

	if len(errs) > 0 {
		return Config{}, fmt.Errorf("config: %w", errors.Join(errs...))
	}
	return cfg, nil
}

// ValidateIngest checks the keys the scheduled ingestion needs.
func (c Config) ValidateIngest() error {
	return requireKeys(map[string]string{
		"PARAM_PREFIX":   c.ParamPrefix,
		"LEDGER_TABLE":   c.LedgerTable,
		"SUMMARY_BUCKET": c.SummaryBucket,
	})
}

// ValidateAPI checks the keys the interactive endpoint needs.
func (c Config) ValidateAPI() error {
	return requireKeys(map[string]string{
		"PARAM_PREFIX": c.ParamPrefix,
	})
}

// NotificationsEnabled reports whether a sender and recipients are configured.
func (c Config) NotificationsEnabled() bool {
	return c.NotifyFrom != "" && len(c.NotifyTo) > 0
}

func requireKeys(values map[string]string) error {
	var missing []string
	for key, v := range values {
		if v == "" {
			missing = append(missing, key)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	sort.Strings(missing)
	return fmt.Errorf("config: required environment variables not set: %s", strings.Join(missing, ", "))
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
