// Package analysis joins the market history with sentiment shares and
// derives the per-category views the report surfaces read.
package analysis

import (
	"strings"
	"time"

	"cryptobook/internal/domain"
)

const (
	posColumnSuffix = " % pos Tweets"
	negColumnSuffix = " % neg Tweets"
)

// TruncateMinute drops seconds and everything below.
func TruncateMinute(t time.Time) time.Time {
	return t.UTC().Truncate(time.Minute)
}

// Shares returns the positive and negative percentage of row. A row with no
// posts has no share.
func Shares(row domain.SentimentRow) (domain.Share, bool) {
	if row.Count <= 0 {
		return domain.Share{}, false
	}
	total := float64(row.Count)
	return domain.Share{
		Positive: float64(row.Positive) / total * 100,
		Negative: float64(row.Negative) / total * 100,
	}, true
}

type shareKey struct {
	minute time.Time
	asset  string
}

// Join left-joins sentiment shares onto every history row by minute and asset
// name. Every category row of one snapshot gets the same shares. When two
// sentiment rows fall on the same minute and asset the later one wins.
func Join(table *domain.HistoryTable, sentiment []domain.SentimentRow) domain.JoinedView {
	shares := make(map[shareKey]domain.Share, len(sentiment))
	seen := make(map[string]struct{})
	assets := make([]string, 0)
	for _, row := range sentiment {
		if _, ok := seen[row.Crypto]; !ok {
			seen[row.Crypto] = struct{}{}
			assets = append(assets, row.Crypto)
		}
		key := shareKey{minute: TruncateMinute(row.Time), asset: row.Crypto}
		if share, ok := Shares(row); ok {
			shares[key] = share
		} else {
			delete(shares, key)
		}
	}

	view := domain.JoinedView{Assets: assets}
	if table == nil {
		return view
	}
	view.Symbols = append([]string(nil), table.Symbols...)
	view.Rows = make([]domain.JoinedRow, 0, len(table.Rows))
	for _, row := range table.Rows {
		minute := TruncateMinute(row.Timestamp)
		joined := domain.JoinedRow{
			HistoryRow: row,
			Minute:     minute,
			Sentiment:  make(map[string]domain.Share),
		}
		for _, asset := range assets {
			if share, ok := shares[shareKey{minute: minute, asset: asset}]; ok {
				joined.Sentiment[asset] = share
			}
		}
		view.Rows = append(view.Rows, joined)
	}
	return view
}

// CategoryRows returns the rows of view labelled category, in order.
func CategoryRows(view domain.JoinedView, category domain.ValueCategory) []domain.JoinedRow {
	out := make([]domain.JoinedRow, 0, len(view.Rows)/len(domain.Categories)+1)
	for _, row := range view.Rows {
		if row.Category == category {
			out = append(out, row)
		}
	}
	return out
}

// SplitByCategory returns one view per known category.
func SplitByCategory(view domain.JoinedView) map[domain.ValueCategory]domain.JoinedView {
	out := make(map[domain.ValueCategory]domain.JoinedView, len(domain.Categories))
	for _, category := range domain.Categories {
		out[category] = domain.JoinedView{
			Symbols: view.Symbols,
			Assets:  view.Assets,
			Rows:    CategoryRows(view, category),
		}
	}
	return out
}

// DropIncomplete keeps the rows that have a share for every asset.
func DropIncomplete(rows []domain.JoinedRow, assets []string) []domain.JoinedRow {
	out := make([]domain.JoinedRow, 0, len(rows))
	for _, row := range rows {
		complete := true
		for _, asset := range assets {
			if _, ok := row.Sentiment[asset]; !ok {
				complete = false
				break
			}
		}
		if complete {
			out = append(out, row)
		}
	}
	return out
}

func PositiveColumn(asset string) string { return asset + posColumnSuffix }

func NegativeColumn(asset string) string { return asset + negColumnSuffix }

// Columns lists the column names of view: symbols first, then the positive
// and negative share column of each asset.
func Columns(view domain.JoinedView) []string {
	out := make([]string, 0, len(view.Symbols)+2*len(view.Assets))
	out = append(out, view.Symbols...)
	for _, asset := range view.Assets {
		out = append(out, PositiveColumn(asset), NegativeColumn(asset))
	}
	return out
}

// Value reads column of row as a float. The second result is false for a
// null cell or an unknown column.
func Value(row domain.JoinedRow, column string) (float64, bool) {
	if v, ok := row.Values[column]; ok {
		return v.InexactFloat64(), true
	}
	if asset, ok := strings.CutSuffix(column, posColumnSuffix); ok {
		share, found := row.Sentiment[asset]
		return share.Positive, found
	}
	if asset, ok := strings.CutSuffix(column, negColumnSuffix); ok {
		share, found := row.Sentiment[asset]
		return share.Negative, found
	}
	return 0, false
}
