package usecase

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"news-summarizer/internal/domain"
	"news-summarizer/internal/integrations/openai"
)

type fakeRunner struct {
	calls      int
	candidates []domain.Article
	partition  string
}

func (f *fakeRunner) Run(_ context.Context, candidates []domain.Article, partition string) domain.RunResult {
	f.calls++
	f.candidates = candidates
	f.partition = partition
	return domain.RunResult{Partition: partition, Candidates: len(candidates), Succeeded: len(candidates)}
}

type fakeCredentials struct {
	err   error
	calls int
}

func (f *fakeCredentials) CheckCredentials(_ context.Context) error {
	f.calls++
	return f.err
}

type missingParameter struct{}

func (missingParameter) GetParameter(_ context.Context, name string) (string, error) {
	return "", errors.New("ParameterNotFound: " + name)
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNewIngestService_Validation(t *testing.T) {
	_, err := NewIngestService(nil, &fakeRunner{}, "q", "p", 0, nil)
	require.Error(t, err)
	_, err = NewIngestService(&fakeSearcher{}, nil, "q", "p", 0, nil)
	require.Error(t, err)
	_, err = NewIngestService(&fakeSearcher{}, &fakeRunner{}, " ", "p", 0, nil)
	require.Error(t, err)
	_, err = NewIngestService(&fakeSearcher{}, &fakeRunner{}, "q", "", 0, nil)
	require.Error(t, err)
	_, err = NewIngestService(&fakeSearcher{}, &fakeRunner{}, "q", "p", 0, nil, nil)
	require.Error(t, err)
}

func TestIngest_RunsPipelineWithSearchResults(t *testing.T) {
	searcher := &fakeSearcher{articles: articles("u1", "u2")}
	runner := &fakeRunner{}
	svc, err := NewIngestService(searcher, runner, "latest technology news", "AI_Tech", time.Second, quietLogger())
	require.NoError(t, err)

	res := svc.Run(context.Background())

	require.Equal(t, []string{"latest technology news"}, searcher.queries)
	require.Equal(t, 1, runner.calls)
	require.Equal(t, "AI_Tech", runner.partition)
	require.Len(t, runner.candidates, 2)
	require.Equal(t, 2, res.Succeeded)
}

func TestIngest_SearchFailureProcessesNothing(t *testing.T) {
	runner := &fakeRunner{}
	svc, err := NewIngestService(&fakeSearcher{err: errBoom}, runner, "q", "AI_Tech", time.Second, quietLogger())
	require.NoError(t, err)

	res := svc.Run(context.Background())

	require.Zero(t, runner.calls)
	require.Equal(t, domain.RunResult{Partition: "AI_Tech"}, res)
}

func TestIngest_EmptySearchProcessesNothing(t *testing.T) {
	runner := &fakeRunner{}
	svc, err := NewIngestService(&fakeSearcher{}, runner, "q", "AI_Tech", time.Second, quietLogger())
	require.NoError(t, err)

	res := svc.Run(context.Background())

	require.Zero(t, runner.calls)
	require.Zero(t, res.Candidates)
}

func TestIngest_EndToEndWithPipeline(t *testing.T) {
	f := newFixture()
	p := f.pipeline(t)
	searcher := &fakeSearcher{articles: []domain.Article{{Title: "A", URL: "u1"}, {Title: "B", URL: "u2"}}}
	svc, err := NewIngestService(searcher, p, "q", partition, time.Second, quietLogger())
	require.NoError(t, err)

	first := svc.Run(context.Background())
	require.Equal(t, 2, first.Succeeded)

	second := svc.Run(context.Background())
	require.Equal(t, 2, second.Duplicates)
	require.Len(t, f.notifier.batches, 1)
}

func TestIngest_MissingCredentialsProcessesNothing(t *testing.T) {
	f := newFixture()
	p := f.pipeline(t)
	searcher := &fakeSearcher{articles: articles("http://x/a", "http://x/b", "http://x/c")}
	creds := &fakeCredentials{err: errBoom}
	svc, err := NewIngestService(searcher, p, "q", partition, time.Second, quietLogger(), creds)
	require.NoError(t, err)

	res := svc.Run(context.Background())

	require.Equal(t, 1, creds.calls)
	require.Empty(t, searcher.queries)
	require.Empty(t, f.fetcher.calls)
	require.Empty(t, f.summarizer.calls)
	require.Equal(t, domain.RunResult{Partition: partition}, res)
}

func TestIngest_MissingLLMTokenFetchesNothing(t *testing.T) {
	llm, err := openai.NewClient(missingParameter{}, "/news-summarizer")
	require.NoError(t, err)
	summarizer, err := NewLLMSummarizer(llm, "gpt-4o-mini", 0)
	require.NoError(t, err)

	fetcher := &fakeFetcher{}
	store := &fakeStore{errs: map[string]error{}}
	ledger := newFakeLedger()
	p, err := NewPipeline(PipelineDeps{
		Fetcher:    fetcher,
		Summarizer: summarizer,
		Store:      store,
		Ledger:     ledger,
	}, WithLogger(quietLogger()))
	require.NoError(t, err)

	searcher := &fakeSearcher{articles: articles("http://x/a", "http://x/b", "http://x/c")}
	svc, err := NewIngestService(searcher, p, "q", partition, time.Second, quietLogger(), llm)
	require.NoError(t, err)

	res := svc.Run(context.Background())

	require.Empty(t, fetcher.calls)
	require.Empty(t, store.docs)
	require.Zero(t, res.Candidates)
	require.Zero(t, res.FailedSummarize)
}

func TestIngest_CredentialsCheckedEveryRun(t *testing.T) {
	runner := &fakeRunner{}
	creds := &fakeCredentials{err: errBoom}
	svc, err := NewIngestService(&fakeSearcher{articles: articles("u1")}, runner, "q", "AI_Tech", time.Second, quietLogger(), creds)
	require.NoError(t, err)

	svc.Run(context.Background())
	require.Zero(t, runner.calls)

	creds.err = nil
	res := svc.Run(context.Background())
	require.Equal(t, 2, creds.calls)
	require.Equal(t, 1, runner.calls)
	require.Equal(t, 1, res.Succeeded)
}
