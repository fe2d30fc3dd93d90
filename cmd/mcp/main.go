package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"cryptobook/internal/app"
	"cryptobook/internal/config"
	"cryptobook/internal/domain"

	"github.com/joho/godotenv"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.opentelemetry.io/otel/trace"
)

var (
	loadEnvFunc    = godotenv.Load
	loadConfigFunc = config.Load
)

type analyzer interface {
	Joined(ctx context.Context, category domain.ValueCategory) (domain.JoinedView, error)
	Correlations(ctx context.Context, category domain.ValueCategory, target string) ([]domain.Correlation, string, error)
	Sentiment(ctx context.Context) ([]domain.SentimentRow, error)
}

type tools struct {
	src     analyzer
	timeout time.Duration
}

type CategoryInput struct {
	Category string `json:"category" jsonschema:"price, volume, change or marketcap"`
}

type CorrelationsInput struct {
	Category string `json:"category" jsonschema:"price, volume, change or marketcap"`
	Target   string `json:"target,omitempty" jsonschema:"column to correlate against, defaults to the first symbol"`
}

type SentimentInput struct {
	Crypto string `json:"crypto,omitempty" jsonschema:"asset name such as Bitcoin, all assets when empty"`
	Limit  int    `json:"limit,omitempty" jsonschema:"newest rows to return, default 48"`
}

type SnapshotOutput struct {
	Category  string                  `json:"category"`
	Minute    time.Time               `json:"minute"`
	Values    map[string]string       `json:"values"`
	Sentiment map[string]domain.Share `json:"sentiment"`
}

type CorrelationsOutput struct {
	Category     string               `json:"category"`
	Target       string               `json:"target"`
	Correlations []domain.Correlation `json:"correlations"`
}

type SentimentOutput struct {
	Rows []domain.SentimentRow `json:"rows"`
}

func main() {
	loadEnvFunc()
	cfg := loadConfigFunc()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	tracer := trace.NewNoopTracerProvider().Tracer("cryptobook-mcp")
	t := &tools{
		src:     app.NewAnalysis(cfg, tracer, app.Backends{}),
		timeout: time.Duration(cfg.MCPRequestTimeoutSecs) * time.Second,
	}

	server := newServer(t)
	if err := server.Run(ctx, &mcp.StdioTransport{}); err != nil {
		log.Fatalf("mcp server: %v", err)
	}
}

func newServer(t *tools) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{Name: "cryptobook", Version: "1.0.0"}, nil)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "latest_snapshot",
		Description: "Latest collected values of one market metric with the sentiment shares of the same minute",
	}, t.latestSnapshot)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "correlations",
		Description: "Pearson correlation of one column against every other column of a metric, highest first",
	}, t.correlations)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "sentiment_history",
		Description: "Positive, negative and neutral post counts per collection run",
	}, t.sentimentHistory)
	return server
}

func parseCategory(v string) (domain.ValueCategory, error) {
	category, ok := domain.ParseCategory(v)
	if !ok {
		return "", fmt.Errorf("unsupported category %q, expected one of %s", v, strings.Join(domain.CategorySlugs(), ", "))
	}
	return category, nil
}

func (t *tools) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if t.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, t.timeout)
}

func (t *tools) latestSnapshot(ctx context.Context, req *mcp.CallToolRequest, in CategoryInput) (*mcp.CallToolResult, SnapshotOutput, error) {
	category, err := parseCategory(in.Category)
	if err != nil {
		return nil, SnapshotOutput{}, err
	}
	ctx, cancel := t.withTimeout(ctx)
	defer cancel()

	view, err := t.src.Joined(ctx, category)
	if err != nil {
		return nil, SnapshotOutput{}, err
	}
	if len(view.Rows) == 0 {
		return nil, SnapshotOutput{}, fmt.Errorf("no %s rows collected yet", category.Slug())
	}
	row := view.Rows[len(view.Rows)-1]
	out := SnapshotOutput{
		Category:  string(category),
		Minute:    row.Minute,
		Values:    make(map[string]string, len(row.Values)),
		Sentiment: row.Sentiment,
	}
	for symbol, v := range row.Values {
		out.Values[symbol] = v.String()
	}
	return nil, out, nil
}

func (t *tools) correlations(ctx context.Context, req *mcp.CallToolRequest, in CorrelationsInput) (*mcp.CallToolResult, CorrelationsOutput, error) {
	category, err := parseCategory(in.Category)
	if err != nil {
		return nil, CorrelationsOutput{}, err
	}
	ctx, cancel := t.withTimeout(ctx)
	defer cancel()

	corr, target, err := t.src.Correlations(ctx, category, in.Target)
	if err != nil {
		return nil, CorrelationsOutput{}, err
	}
	return nil, CorrelationsOutput{Category: string(category), Target: target, Correlations: corr}, nil
}

func (t *tools) sentimentHistory(ctx context.Context, req *mcp.CallToolRequest, in SentimentInput) (*mcp.CallToolResult, SentimentOutput, error) {
	ctx, cancel := t.withTimeout(ctx)
	defer cancel()

	rows, err := t.src.Sentiment(ctx)
	if err != nil {
		return nil, SentimentOutput{}, err
	}
	if crypto := strings.TrimSpace(in.Crypto); crypto != "" {
		filtered := make([]domain.SentimentRow, 0, len(rows))
		for _, row := range rows {
			if strings.EqualFold(row.Crypto, crypto) {
				filtered = append(filtered, row)
			}
		}
		rows = filtered
	}
	limit := in.Limit
	if limit <= 0 {
		limit = 48
	}
	if len(rows) > limit {
		rows = rows[len(rows)-limit:]
	}
	return nil, SentimentOutput{Rows: rows}, nil
}
