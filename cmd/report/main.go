package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"

	"cryptobook/internal/analysis"
	"cryptobook/internal/app"
	"cryptobook/internal/config"
	"cryptobook/internal/domain"
	"cryptobook/internal/service"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/joho/godotenv"
	"go.opentelemetry.io/otel/trace"
)

var (
	loadEnvFunc    = godotenv.Load
	loadConfigFunc = config.Load
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

type source interface {
	Joined(ctx context.Context, category domain.ValueCategory) (domain.JoinedView, error)
	Correlations(ctx context.Context, category domain.ValueCategory, target string) ([]domain.Correlation, string, error)
	TopMover(ctx context.Context) (analysis.Mover, error)
}

func main() {
	loadEnvFunc()
	cfg := loadConfigFunc()

	categories := domain.Categories
	if len(os.Args) > 1 {
		category, ok := domain.ParseCategory(os.Args[1])
		if !ok {
			log.Fatalf("usage: go run ./cmd/report [%s]", strings.Join(domain.CategorySlugs(), "|"))
		}
		categories = []domain.ValueCategory{category}
	}

	tracer := trace.NewNoopTracerProvider().Tracer("cryptobook-report")
	src := app.NewAnalysis(cfg, tracer, app.Backends{})
	if err := report(context.Background(), os.Stdout, src, categories); err != nil {
		log.Fatalf("report: %v", err)
	}
}

func report(ctx context.Context, w io.Writer, src source, categories []domain.ValueCategory) error {
	mover, err := src.TopMover(ctx)
	switch {
	case errors.Is(err, service.ErrNoData):
		fmt.Fprintln(w, "No market data collected yet")
		return nil
	case err != nil:
		return err
	}
	fmt.Fprintln(w, titleStyle.Render(fmt.Sprintf("Top mover: %s %s%%", mover.Symbol, mover.Change24h.StringFixed(2))))

	for _, category := range categories {
		view, err := src.Joined(ctx, category)
		if err != nil {
			return fmt.Errorf("join %s: %w", category.Slug(), err)
		}
		fmt.Fprintln(w)
		fmt.Fprintln(w, titleStyle.Render(string(category)))
		if len(view.Rows) == 0 {
			fmt.Fprintln(w, "no rows")
			continue
		}
		fmt.Fprintln(w, latestTable(view, view.Rows[len(view.Rows)-1]))

		corr, target, err := src.Correlations(ctx, category, "")
		if err != nil {
			return fmt.Errorf("correlations %s: %w", category.Slug(), err)
		}
		fmt.Fprintln(w, correlationTable(target, corr))
	}
	return nil
}

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(borderStyle).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
}

// latestTable lists every column of row: symbol values first, then the
// sentiment shares. Null cells render as "-".
func latestTable(view domain.JoinedView, row domain.JoinedRow) *table.Table {
	t := newTable("Column", row.Minute.Format("2006-01-02 15:04"))
	for _, symbol := range view.Symbols {
		cell := "-"
		if v, ok := row.Values[symbol]; ok {
			cell = v.String()
		}
		t.Row(symbol, cell)
	}
	for _, asset := range view.Assets {
		share, ok := row.Sentiment[asset]
		pos, neg := "-", "-"
		if ok {
			pos = strconv.FormatFloat(share.Positive, 'f', 1, 64)
			neg = strconv.FormatFloat(share.Negative, 'f', 1, 64)
		}
		t.Row(analysis.PositiveColumn(asset), pos)
		t.Row(analysis.NegativeColumn(asset), neg)
	}
	return t
}

func correlationTable(target string, corr []domain.Correlation) *table.Table {
	t := newTable("vs "+target, "r", "n")
	for _, c := range corr {
		t.Row(c.Column, strconv.FormatFloat(c.Coefficient, 'f', 3, 64), strconv.Itoa(c.Samples))
	}
	return t
}
