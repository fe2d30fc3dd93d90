package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sort"
	"time"

	"cryptobook/internal/domain"
	"cryptobook/internal/normalize"
	"cryptobook/internal/snapshot"
	"cryptobook/internal/store"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// ErrShortListing is returned when the page lists fewer assets than the
// collector tracks.
var ErrShortListing = errors.New("listing has fewer quotes than required")

const quoteKeyPrefix = "quote:"

type QuoteSource interface {
	FetchQuotes(ctx context.Context) ([]domain.AssetQuote, error)
}

type SocialSearcher interface {
	Search(ctx context.Context, asset string, start, end time.Time, maxResults int) ([]domain.Post, error)
}

type SentimentTagger interface {
	Tag(ctx context.Context, texts []string, asset string, now time.Time) domain.SentimentRow
}

type HistoryAppender interface {
	AppendAndPersist(ctx context.Context, rows []domain.HistoryRow) (store.AppendResult, error)
}

type SentimentAppender interface {
	AppendAndPersist(ctx context.Context, rows []domain.SentimentRow) (store.AppendResult, error)
}

type PostWriter interface {
	Replace(ctx context.Context, posts []domain.Post) error
}

type HistoryMirror interface {
	MirrorHistory(ctx context.Context, rows []domain.HistoryRow) (int, error)
	MirrorSentiment(ctx context.Context, rows []domain.SentimentRow) (int, error)
}

type RedisClient interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
}

type CollectorConfig struct {
	TopN       int
	Window     time.Duration
	MaxResults int
	CacheTTL   time.Duration
}

// CollectorService runs one scrape-and-tag cycle: the market side appends
// four history rows, the sentiment side appends one row per asset.
type CollectorService struct {
	tracer    trace.Tracer
	cfg       CollectorConfig
	quotes    QuoteSource
	searcher  SocialSearcher
	tagger    SentimentTagger
	history   HistoryAppender
	sentiment SentimentAppender
	posts     PostWriter
	mirror    HistoryMirror
	redis     RedisClient
}

type CollectorDeps struct {
	Quotes    QuoteSource
	Searcher  SocialSearcher
	Tagger    SentimentTagger
	History   HistoryAppender
	Sentiment SentimentAppender
	Posts     PostWriter
	// Mirror and Redis are optional.
	Mirror HistoryMirror
	Redis  RedisClient
}

func NewCollectorService(tracer trace.Tracer, cfg CollectorConfig, deps CollectorDeps) *CollectorService {
	if cfg.TopN <= 0 {
		cfg.TopN = 10
	}
	if cfg.Window <= 0 {
		cfg.Window = 30 * time.Minute
	}
	if cfg.MaxResults <= 0 {
		cfg.MaxResults = 100
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 2 * cfg.Window
	}
	return &CollectorService{
		tracer:    tracer,
		cfg:       cfg,
		quotes:    deps.Quotes,
		searcher:  deps.Searcher,
		tagger:    deps.Tagger,
		history:   deps.History,
		sentiment: deps.Sentiment,
		posts:     deps.Posts,
		mirror:    deps.Mirror,
		redis:     deps.Redis,
	}
}

// RunOnce collects one snapshot stamped with now. A fetch failure aborts the
// run since the sentiment side needs the asset names. Otherwise both sides
// run and their errors are returned joined.
func (s *CollectorService) RunOnce(ctx context.Context, now time.Time) (domain.RunResult, error) {
	ctx, span := s.tracer.Start(ctx, "collector-service.run-once")
	defer span.End()

	var res domain.RunResult
	raw, err := s.quotes.FetchQuotes(ctx)
	if err != nil {
		span.RecordError(err)
		return res, fmt.Errorf("fetch quotes: %w", err)
	}
	res.QuotesParsed = len(raw)

	names, marketErr := s.collectMarket(ctx, raw, now, &res)
	if marketErr != nil {
		res.Errors = append(res.Errors, marketErr.Error())
		log.Printf("market collection error: %v", marketErr)
	}

	sentimentErr := s.collectSentiment(ctx, names, now, &res)
	if sentimentErr != nil {
		res.Errors = append(res.Errors, sentimentErr.Error())
		log.Printf("sentiment collection error: %v", sentimentErr)
	}

	span.SetAttributes(
		attribute.Int("history_appended", res.HistoryAppended),
		attribute.Int("sentiment_rows", res.SentimentRows),
	)
	log.Printf("Collected %d history rows and %d sentiment rows from %d posts",
		res.HistoryAppended, res.SentimentRows, res.PostsFetched)
	return res, errors.Join(marketErr, sentimentErr)
}

// collectMarket returns the names of the tracked assets along with any
// market side error. Names survive normalization and persistence failures.
func (s *CollectorService) collectMarket(ctx context.Context, raw []domain.AssetQuote, now time.Time, res *domain.RunResult) ([]string, error) {
	ctx, span := s.tracer.Start(ctx, "collector-service.collect-market")
	defer span.End()

	quotes, err := normalize.Quotes(raw)
	if err != nil {
		return rawNames(raw, s.cfg.TopN), fmt.Errorf("normalize quotes: %w", err)
	}

	top := TopByMarketCap(quotes, s.cfg.TopN)
	names := make([]string, 0, len(top))
	for _, q := range top {
		names = append(names, q.Name)
	}
	if len(top) < s.cfg.TopN {
		return names, fmt.Errorf("%w: got %d, want %d", ErrShortListing, len(top), s.cfg.TopN)
	}

	rows := snapshot.PivotAll(top, now)
	appended, err := s.history.AppendAndPersist(ctx, rows)
	if err != nil {
		return names, fmt.Errorf("append history: %w", err)
	}
	res.HistoryAppended = appended.Appended

	s.cacheQuotes(ctx, top)
	if s.mirror != nil {
		if _, err := s.mirror.MirrorHistory(ctx, rows); err != nil {
			res.Errors = append(res.Errors, err.Error())
			log.Printf("Warning: %v", err)
		}
	}
	return names, nil
}

func (s *CollectorService) collectSentiment(ctx context.Context, names []string, now time.Time, res *domain.RunResult) error {
	ctx, span := s.tracer.Start(ctx, "collector-service.collect-sentiment")
	defer span.End()

	if len(names) == 0 {
		return nil
	}

	start := now.Add(-s.cfg.Window)
	allPosts := make([]domain.Post, 0, len(names)*s.cfg.MaxResults)
	rows := make([]domain.SentimentRow, 0, len(names))
	for _, name := range names {
		posts, err := s.searcher.Search(ctx, name, start, now, s.cfg.MaxResults)
		if ctxErr := ctx.Err(); ctxErr != nil {
			// an aborted run must not store empty rows for the assets it skipped
			return fmt.Errorf("sentiment run aborted at %s: %w", name, ctxErr)
		}
		if err != nil {
			warning := fmt.Sprintf("search %s: %v", name, err)
			res.Errors = append(res.Errors, warning)
			log.Printf("Warning: %s", warning)
			posts = nil
		}
		allPosts = append(allPosts, posts...)

		texts := make([]string, 0, len(posts))
		for _, p := range posts {
			texts = append(texts, p.Text)
		}
		rows = append(rows, s.tagger.Tag(ctx, texts, name, now))
	}
	res.PostsFetched = len(allPosts)

	if s.posts != nil {
		if err := s.posts.Replace(ctx, allPosts); err != nil {
			res.Errors = append(res.Errors, err.Error())
			log.Printf("Warning: %v", err)
		}
	}

	appended, err := s.sentiment.AppendAndPersist(ctx, rows)
	if err != nil {
		return fmt.Errorf("append sentiment: %w", err)
	}
	res.SentimentRows = appended.Appended

	if s.mirror != nil {
		if _, err := s.mirror.MirrorSentiment(ctx, rows); err != nil {
			res.Errors = append(res.Errors, err.Error())
			log.Printf("Warning: %v", err)
		}
	}
	return nil
}

func (s *CollectorService) cacheQuotes(ctx context.Context, quotes []domain.Quote) {
	if s.redis == nil {
		return
	}
	for _, q := range quotes {
		data, err := json.Marshal(q)
		if err != nil {
			continue
		}
		if err := s.redis.Set(ctx, quoteKeyPrefix+q.Symbol, data, s.cfg.CacheTTL).Err(); err != nil {
			log.Printf("redis cache write error for %s: %v", q.Symbol, err)
		}
	}
}

// TopByMarketCap returns the n quotes with the largest market cap, largest
// first. Equal caps keep page order.
func TopByMarketCap(quotes []domain.Quote, n int) []domain.Quote {
	sorted := append([]domain.Quote(nil), quotes...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].MarketCap.GreaterThan(sorted[j].MarketCap)
	})
	if n > 0 && len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

func rawNames(raw []domain.AssetQuote, n int) []string {
	names := make([]string, 0, n)
	for _, q := range raw {
		if len(names) == n {
			break
		}
		names = append(names, q.Name)
	}
	return names
}
