package snapshot

import (
	"time"

	"cryptobook/internal/domain"

	"github.com/shopspring/decimal"
)

// Pivot turns one metric of the quote set into a history row: one value
// column per symbol, labelled with category and stamped with now.
func Pivot(quotes []domain.Quote, category domain.ValueCategory, now time.Time) domain.HistoryRow {
	values := make(map[string]decimal.Decimal, len(quotes))
	for _, q := range quotes {
		if v, ok := q.Value(category); ok {
			values[q.Symbol] = v
		}
	}
	return domain.HistoryRow{
		Category:  category,
		Timestamp: now,
		Values:    values,
		Symbols:   Symbols(quotes),
	}
}

// PivotAll builds the four category rows of one snapshot, all sharing now.
func PivotAll(quotes []domain.Quote, now time.Time) []domain.HistoryRow {
	rows := make([]domain.HistoryRow, 0, len(domain.Categories))
	for _, category := range domain.Categories {
		rows = append(rows, Pivot(quotes, category, now))
	}
	return rows
}

// Symbols returns the quote symbols in quote order.
func Symbols(quotes []domain.Quote) []string {
	out := make([]string, 0, len(quotes))
	for _, q := range quotes {
		out = append(out, q.Symbol)
	}
	return out
}
