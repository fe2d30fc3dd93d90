package main

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"cryptobook/internal/analysis"
	"cryptobook/internal/domain"
	"cryptobook/internal/service"

	"github.com/shopspring/decimal"
)

type stubSource struct {
	view domain.JoinedView
	err  error
}

func (s stubSource) Joined(ctx context.Context, category domain.ValueCategory) (domain.JoinedView, error) {
	return s.view, nil
}

func (s stubSource) Correlations(ctx context.Context, category domain.ValueCategory, target string) ([]domain.Correlation, string, error) {
	return []domain.Correlation{{Column: "ETH", Coefficient: 0.87654, Samples: 12}}, "BTC", nil
}

func (s stubSource) TopMover(ctx context.Context) (analysis.Mover, error) {
	if s.err != nil {
		return analysis.Mover{}, s.err
	}
	return analysis.Mover{Symbol: "SOL", Change24h: decimal.RequireFromString("12.3")}, nil
}

func TestReportRendersLatestAndCorrelations(t *testing.T) {
	minute := time.Date(2023, 1, 5, 12, 30, 0, 0, time.UTC)
	view := domain.JoinedView{
		Symbols: []string{"BTC", "ETH"},
		Assets:  []string{"Bitcoin"},
		Rows: []domain.JoinedRow{{
			HistoryRow: domain.HistoryRow{
				Category: domain.CategoryPrice,
				Values:   map[string]decimal.Decimal{"BTC": decimal.RequireFromString("20123.45")},
			},
			Minute:    minute,
			Sentiment: map[string]domain.Share{"Bitcoin": {Positive: 62.5, Negative: 12.5}},
		}},
	}

	var buf bytes.Buffer
	if err := report(context.Background(), &buf, stubSource{view: view}, []domain.ValueCategory{domain.CategoryPrice}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"Top mover: SOL 12.30%", "Price in $", "20123.45", "Bitcoin % pos Tweets", "62.5", "vs BTC", "0.877"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in report:\n%s", want, out)
		}
	}
}

func TestReportWithoutData(t *testing.T) {
	var buf bytes.Buffer
	if err := report(context.Background(), &buf, stubSource{err: service.ErrNoData}, domain.Categories); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(buf.String(), "No market data collected yet") {
		t.Fatalf("unexpected output: %s", buf.String())
	}
}
