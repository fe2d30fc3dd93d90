package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"

	"cryptobook/internal/analysis"
	"cryptobook/internal/domain"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var (
	ErrUnknownSymbol = errors.New("unknown symbol")
	ErrNoData        = errors.New("no data collected yet")
)

type HistoryReader interface {
	Load(ctx context.Context) (*domain.HistoryTable, error)
}

type SentimentReader interface {
	Load(ctx context.Context) ([]domain.SentimentRow, error)
}

// AnalysisService answers read-only questions over the collected tables.
// Every call reloads the files, so results reflect the latest run.
type AnalysisService struct {
	tracer    trace.Tracer
	history   HistoryReader
	sentiment SentimentReader
	redis     RedisClient
}

func NewAnalysisService(tracer trace.Tracer, history HistoryReader, sentiment SentimentReader, redisClient RedisClient) *AnalysisService {
	return &AnalysisService{
		tracer:    tracer,
		history:   history,
		sentiment: sentiment,
		redis:     redisClient,
	}
}

func (s *AnalysisService) History(ctx context.Context) (*domain.HistoryTable, error) {
	ctx, span := s.tracer.Start(ctx, "analysis-service.history")
	defer span.End()

	table, err := s.history.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}
	return table, nil
}

func (s *AnalysisService) Sentiment(ctx context.Context) ([]domain.SentimentRow, error) {
	ctx, span := s.tracer.Start(ctx, "analysis-service.sentiment")
	defer span.End()

	rows, err := s.sentiment.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load sentiment: %w", err)
	}
	return rows, nil
}

// Joined returns the joined view restricted to category.
func (s *AnalysisService) Joined(ctx context.Context, category domain.ValueCategory) (domain.JoinedView, error) {
	ctx, span := s.tracer.Start(ctx, "analysis-service.joined")
	defer span.End()
	span.SetAttributes(attribute.String("category", string(category)))

	table, err := s.History(ctx)
	if err != nil {
		return domain.JoinedView{}, err
	}
	sentiment, err := s.Sentiment(ctx)
	if err != nil {
		return domain.JoinedView{}, err
	}

	view := analysis.Join(table, sentiment)
	view.Rows = analysis.CategoryRows(view, category)
	return view, nil
}

// Correlations correlates target with every other column of the category
// view. An empty target defaults to the first symbol.
func (s *AnalysisService) Correlations(ctx context.Context, category domain.ValueCategory, target string) ([]domain.Correlation, string, error) {
	ctx, span := s.tracer.Start(ctx, "analysis-service.correlations")
	defer span.End()

	view, err := s.Joined(ctx, category)
	if err != nil {
		return nil, "", err
	}
	columns := analysis.Columns(view)
	target = strings.TrimSpace(target)
	if target == "" {
		if len(view.Symbols) == 0 {
			return nil, "", ErrNoData
		}
		target = view.Symbols[0]
	}
	if !containsString(columns, target) {
		return nil, "", fmt.Errorf("%w: %s", ErrUnknownSymbol, target)
	}
	return analysis.Correlations(view.Rows, target, columns), target, nil
}

// Latest returns the newest joined row of category.
func (s *AnalysisService) Latest(ctx context.Context, category domain.ValueCategory) (domain.JoinedRow, error) {
	ctx, span := s.tracer.Start(ctx, "analysis-service.latest")
	defer span.End()

	view, err := s.Joined(ctx, category)
	if err != nil {
		return domain.JoinedRow{}, err
	}
	row, ok := analysis.Latest(view.Rows)
	if !ok {
		return domain.JoinedRow{}, ErrNoData
	}
	return row, nil
}

func (s *AnalysisService) TopMover(ctx context.Context) (analysis.Mover, error) {
	ctx, span := s.tracer.Start(ctx, "analysis-service.top-mover")
	defer span.End()

	table, err := s.History(ctx)
	if err != nil {
		return analysis.Mover{}, err
	}
	mover, ok := analysis.TopMover(table)
	if !ok {
		return analysis.Mover{}, ErrNoData
	}
	return mover, nil
}

// LatestQuote returns the cached quote of symbol, or rebuilds it from the
// newest history rows when the cache is cold. A rebuilt quote has no rank
// or name.
func (s *AnalysisService) LatestQuote(ctx context.Context, symbol string) (*domain.Quote, error) {
	ctx, span := s.tracer.Start(ctx, "analysis-service.latest-quote")
	defer span.End()

	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if s.redis != nil {
		cached, err := s.getQuoteCache(ctx, symbol)
		if err != nil {
			log.Printf("redis cache read error: %v", err)
		}
		if cached != nil {
			return cached, nil
		}
	}

	table, err := s.History(ctx)
	if err != nil {
		return nil, err
	}
	if !table.HasSymbol(symbol) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSymbol, symbol)
	}

	quote := &domain.Quote{Symbol: symbol}
	found := false
	for _, category := range domain.Categories {
		row, ok := analysis.LatestHistory(table, category)
		if !ok {
			continue
		}
		v, ok := row.Values[symbol]
		if !ok {
			continue
		}
		found = true
		switch category {
		case domain.CategoryPrice:
			quote.Price = v
		case domain.CategoryVolume:
			quote.Volume24h = v
		case domain.CategoryChange:
			quote.Change24h = v
		case domain.CategoryMarketCap:
			quote.MarketCap = v
		}
	}
	if !found {
		return nil, ErrNoData
	}
	return quote, nil
}

// LatestSentiment returns the newest sentiment row of the asset name,
// matched case-insensitively.
func (s *AnalysisService) LatestSentiment(ctx context.Context, asset string) (domain.SentimentRow, error) {
	ctx, span := s.tracer.Start(ctx, "analysis-service.latest-sentiment")
	defer span.End()

	rows, err := s.Sentiment(ctx)
	if err != nil {
		return domain.SentimentRow{}, err
	}
	asset = strings.TrimSpace(asset)
	for i := len(rows) - 1; i >= 0; i-- {
		if strings.EqualFold(rows[i].Crypto, asset) {
			return rows[i], nil
		}
	}
	return domain.SentimentRow{}, fmt.Errorf("%w: %s", ErrNoData, asset)
}

func (s *AnalysisService) getQuoteCache(ctx context.Context, symbol string) (*domain.Quote, error) {
	data, err := s.redis.Get(ctx, quoteKeyPrefix+symbol).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var quote domain.Quote
	if err := json.Unmarshal(data, &quote); err != nil {
		return nil, err
	}
	return &quote, nil
}

func containsString(values []string, v string) bool {
	for _, s := range values {
		if s == v {
			return true
		}
	}
	return false
}
