package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"cryptobook/internal/domain"
	"cryptobook/internal/normalize"
	"cryptobook/internal/store"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/trace"
)

var testTracer = trace.NewNoopTracerProvider().Tracer("test")

var runTime = time.Date(2023, 1, 5, 12, 30, 0, 0, time.UTC)

// listing returns n raw quotes; the market cap of quote i is (i+1) B so the
// page order is the reverse of the market cap order.
func listing(n int) []domain.AssetQuote {
	quotes := make([]domain.AssetQuote, 0, n)
	for i := 0; i < n; i++ {
		quotes = append(quotes, domain.AssetQuote{
			Rank:      i + 1,
			Name:      fmt.Sprintf("Coin %d", i),
			Symbol:    fmt.Sprintf("C%d", i),
			Price:     fmt.Sprintf("$%d.50", i+1),
			Change24h: fmt.Sprintf("+%d.1%%", i),
			Volume24h: fmt.Sprintf("$%d M", 100+i),
			MarketCap: fmt.Sprintf("$%d B", i+1),
		})
	}
	return quotes
}

type stubQuotes struct {
	quotes []domain.AssetQuote
	err    error
}

func (s stubQuotes) FetchQuotes(ctx context.Context) ([]domain.AssetQuote, error) {
	return s.quotes, s.err
}

type stubSearcher struct {
	err      error
	assets   []string
	perAsset int
	window   time.Duration
}

func (s *stubSearcher) Search(ctx context.Context, asset string, start, end time.Time, maxResults int) ([]domain.Post, error) {
	s.assets = append(s.assets, asset)
	s.window = end.Sub(start)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.err != nil {
		return nil, s.err
	}
	posts := make([]domain.Post, 0, s.perAsset)
	for i := 0; i < s.perAsset; i++ {
		posts = append(posts, domain.Post{CreatedAt: start, Text: fmt.Sprintf("%s post %d", asset, i), Crypto: asset})
	}
	return posts, nil
}

// cancellingQuotes cancels the run right after the listing is fetched.
type cancellingQuotes struct {
	cancel context.CancelFunc
}

func (s cancellingQuotes) FetchQuotes(ctx context.Context) ([]domain.AssetQuote, error) {
	s.cancel()
	return listing(10), nil
}

type countingTagger struct{}

func (countingTagger) Tag(ctx context.Context, texts []string, asset string, now time.Time) domain.SentimentRow {
	return domain.SentimentRow{Time: now, Crypto: asset, Neutral: len(texts), Count: len(texts)}
}

type failingHistory struct{}

func (failingHistory) AppendAndPersist(ctx context.Context, rows []domain.HistoryRow) (store.AppendResult, error) {
	return store.AppendResult{}, errors.New("disk full")
}

type recordingMirror struct {
	history   int
	sentiment int
}

func (m *recordingMirror) MirrorHistory(ctx context.Context, rows []domain.HistoryRow) (int, error) {
	m.history += len(rows)
	return len(rows), nil
}

func (m *recordingMirror) MirrorSentiment(ctx context.Context, rows []domain.SentimentRow) (int, error) {
	m.sentiment += len(rows)
	return len(rows), nil
}

type fixture struct {
	dir       string
	history   *store.HistoryLog
	sentiment *store.SentimentLog
	posts     *store.PostLog
	searcher  *stubSearcher
	mirror    *recordingMirror
	redis     *fakeRedis
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dir := t.TempDir()
	return &fixture{
		dir:       dir,
		history:   store.NewHistoryLog(filepath.Join(dir, "HistoryDF.csv"), testTracer),
		sentiment: store.NewSentimentLog(filepath.Join(dir, "TwitterDF.csv"), testTracer),
		posts:     store.NewPostLog(filepath.Join(dir, "Tweets.csv"), testTracer),
		searcher:  &stubSearcher{perAsset: 2},
		mirror:    &recordingMirror{},
		redis:     newFakeRedis(),
	}
}

func (f *fixture) service(quotes QuoteSource) *CollectorService {
	return NewCollectorService(testTracer, CollectorConfig{TopN: 10, Window: 30 * time.Minute, MaxResults: 100}, CollectorDeps{
		Quotes:    quotes,
		Searcher:  f.searcher,
		Tagger:    countingTagger{},
		History:   f.history,
		Sentiment: f.sentiment,
		Posts:     f.posts,
		Mirror:    f.mirror,
		Redis:     f.redis,
	})
}

func TestCollectorService_RunOnce(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	res, err := f.service(stubQuotes{quotes: listing(12)}).RunOnce(context.Background(), runTime)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.QuotesParsed != 12 || res.HistoryAppended != 4 || res.SentimentRows != 10 || res.PostsFetched != 20 {
		t.Fatalf("unexpected result: %+v", res)
	}

	table, err := f.history.Load(context.Background())
	if err != nil {
		t.Fatalf("load history: %v", err)
	}
	if len(table.Rows) != 4 || len(table.Symbols) != 10 {
		t.Fatalf("expected 4 rows over 10 symbols, got %d rows %v", len(table.Rows), table.Symbols)
	}
	if table.Symbols[0] != "C11" || table.HasSymbol("C0") || table.HasSymbol("C1") {
		t.Fatalf("expected the 10 largest caps, got %v", table.Symbols)
	}
	for i, row := range table.Rows {
		if row.Category != domain.Categories[i] || !row.Timestamp.Equal(runTime) || len(row.Values) != 10 {
			t.Fatalf("unexpected row %d: %+v", i, row)
		}
	}
	if got := table.Rows[1].Values["C11"]; !got.Equal(decimal.NewFromInt(111)) {
		t.Fatalf("expected C11 volume 111, got %s", got)
	}
	if got := table.Rows[3].Values["C11"]; !got.Equal(decimal.NewFromInt(12000)) {
		t.Fatalf("expected C11 market cap 12000, got %s", got)
	}

	sentiment, err := f.sentiment.Load(context.Background())
	if err != nil {
		t.Fatalf("load sentiment: %v", err)
	}
	if len(sentiment) != 10 || sentiment[0].Crypto != "Coin 11" || sentiment[0].Count != 2 {
		t.Fatalf("unexpected sentiment rows: %+v", sentiment)
	}
	if f.searcher.window != 30*time.Minute {
		t.Fatalf("unexpected search window %v", f.searcher.window)
	}

	posts, err := f.posts.Load(context.Background())
	if err != nil || len(posts) != 20 {
		t.Fatalf("expected 20 posts in snapshot, got %d err=%v", len(posts), err)
	}
	if len(f.redis.data) != 10 {
		t.Fatalf("expected 10 cached quotes, got %d", len(f.redis.data))
	}
	var cached domain.Quote
	if err := json.Unmarshal(f.redis.data["quote:C11"], &cached); err != nil || cached.Name != "Coin 11" {
		t.Fatalf("unexpected cached quote %+v err=%v", cached, err)
	}
	if f.mirror.history != 4 || f.mirror.sentiment != 10 {
		t.Fatalf("unexpected mirror calls: %+v", f.mirror)
	}
}

func TestCollectorService_DollarPriceEndToEnd(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	quotes := listing(10)
	quotes[9].Symbol = "BTC"
	quotes[9].Price = "$20,123.45"
	if _, err := f.service(stubQuotes{quotes: quotes}).RunOnce(context.Background(), runTime); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	table, err := f.history.Load(context.Background())
	if err != nil {
		t.Fatalf("load history: %v", err)
	}
	if got := table.Rows[0].Values["BTC"]; !got.Equal(decimal.RequireFromString("20123.45")) {
		t.Fatalf("expected BTC price 20123.45, got %s", got)
	}
}

func TestCollectorService_UnknownUnitAbortsMarketSide(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	quotes := listing(10)
	quotes[4].Volume24h = "$3 K"

	res, err := f.service(stubQuotes{quotes: quotes}).RunOnce(context.Background(), runTime)
	if !errors.Is(err, normalize.ErrUnknownUnit) {
		t.Fatalf("expected ErrUnknownUnit, got %v", err)
	}
	if res.HistoryAppended != 0 {
		t.Fatalf("expected no history rows, got %d", res.HistoryAppended)
	}
	table, _ := f.history.Load(context.Background())
	if len(table.Rows) != 0 {
		t.Fatalf("history must stay untouched, got %d rows", len(table.Rows))
	}
	if res.SentimentRows != 10 {
		t.Fatalf("expected sentiment side to run, got %d rows", res.SentimentRows)
	}
}

func TestCollectorService_ShortListing(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	res, err := f.service(stubQuotes{quotes: listing(6)}).RunOnce(context.Background(), runTime)
	if !errors.Is(err, ErrShortListing) {
		t.Fatalf("expected ErrShortListing, got %v", err)
	}
	if res.HistoryAppended != 0 || res.SentimentRows != 6 {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestCollectorService_FetchFailureIsFatal(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	_, err := f.service(stubQuotes{err: errors.New("dns")}).RunOnce(context.Background(), runTime)
	if err == nil {
		t.Fatal("expected fetch error")
	}
	if len(f.searcher.assets) != 0 {
		t.Fatal("sentiment side must not run without quotes")
	}
}

func TestCollectorService_SearchFailureDegrades(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.searcher.err = errors.New("429")
	res, err := f.service(stubQuotes{quotes: listing(10)}).RunOnce(context.Background(), runTime)
	if err != nil {
		t.Fatalf("search failures must not fail the run: %v", err)
	}
	if res.SentimentRows != 10 || res.PostsFetched != 0 {
		t.Fatalf("unexpected result: %+v", res)
	}
	if len(res.Errors) != 10 {
		t.Fatalf("expected one warning per asset, got %v", res.Errors)
	}
	rows, _ := f.sentiment.Load(context.Background())
	for _, row := range rows {
		if row.Count != 0 {
			t.Fatalf("expected zero rows, got %+v", row)
		}
	}
}

func TestCollectorService_CancelledRunStoresNoSentiment(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	res, err := f.service(cancellingQuotes{cancel: cancel}).RunOnce(ctx, runTime)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if res.SentimentRows != 0 || res.PostsFetched != 0 {
		t.Fatalf("unexpected result: %+v", res)
	}
	rows, err := f.sentiment.Load(context.Background())
	if err != nil {
		t.Fatalf("load sentiment: %v", err)
	}
	if len(rows) != 0 {
		t.Fatalf("expected no sentiment rows, got %d", len(rows))
	}
	if f.mirror.sentiment != 0 {
		t.Fatalf("expected nothing mirrored, got %d", f.mirror.sentiment)
	}
}

func TestCollectorService_HistoryFailureKeepsSentiment(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	svc := f.service(stubQuotes{quotes: listing(10)})
	svc.history = failingHistory{}

	res, err := svc.RunOnce(context.Background(), runTime)
	if err == nil {
		t.Fatal("expected history error")
	}
	if res.SentimentRows != 10 {
		t.Fatalf("expected sentiment rows despite history failure, got %d", res.SentimentRows)
	}
	if len(f.redis.data) != 0 {
		t.Fatal("quotes must not be cached when history was not written")
	}
}

func TestTopByMarketCap(t *testing.T) {
	t.Parallel()

	quotes := []domain.Quote{
		{Symbol: "A", MarketCap: decimal.NewFromInt(5)},
		{Symbol: "B", MarketCap: decimal.NewFromInt(9)},
		{Symbol: "C", MarketCap: decimal.NewFromInt(5)},
	}
	top := TopByMarketCap(quotes, 2)
	if len(top) != 2 || top[0].Symbol != "B" || top[1].Symbol != "A" {
		t.Fatalf("unexpected order: %+v", top)
	}
	if quotes[0].Symbol != "A" {
		t.Fatal("input must not be reordered")
	}
}

type fakeRedis struct {
	data   map[string][]byte
	setErr error
	getErr error
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{data: make(map[string][]byte)}
}

func (f *fakeRedis) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	if f.setErr != nil {
		return redis.NewStatusResult("", f.setErr)
	}
	switch v := value.(type) {
	case []byte:
		f.data[key] = append([]byte(nil), v...)
	case string:
		f.data[key] = []byte(v)
	default:
		bytes, _ := json.Marshal(v)
		f.data[key] = bytes
	}
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeRedis) Get(ctx context.Context, key string) *redis.StringCmd {
	if f.getErr != nil {
		return redis.NewStringResult("", f.getErr)
	}
	if v, ok := f.data[key]; ok {
		return redis.NewStringResult(string(v), nil)
	}
	return redis.NewStringResult("", redis.Nil)
}
