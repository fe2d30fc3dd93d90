package analysis

import (
	"cryptobook/internal/domain"

	"github.com/shopspring/decimal"
)

// Latest returns the row with the newest timestamp. Ties go to the later row.
func Latest(rows []domain.JoinedRow) (domain.JoinedRow, bool) {
	if len(rows) == 0 {
		return domain.JoinedRow{}, false
	}
	best := 0
	for i := 1; i < len(rows); i++ {
		if !rows[i].Timestamp.Before(rows[best].Timestamp) {
			best = i
		}
	}
	return rows[best], true
}

// LatestHistory returns the newest history row of category.
func LatestHistory(table *domain.HistoryTable, category domain.ValueCategory) (domain.HistoryRow, bool) {
	var (
		found bool
		best  domain.HistoryRow
	)
	if table == nil {
		return best, false
	}
	for _, row := range table.Rows {
		if row.Category != category {
			continue
		}
		if !found || !row.Timestamp.Before(best.Timestamp) {
			best = row
			found = true
		}
	}
	return best, found
}

// Mover is the symbol with the largest 24h change in the latest snapshot.
type Mover struct {
	Symbol    string          `json:"symbol"`
	Change24h decimal.Decimal `json:"change_24h"`
	Row       int64           `json:"row"`
}

// TopMover picks the highest 24h change of the latest change row. Ties go to
// the symbol that comes first in column order.
func TopMover(table *domain.HistoryTable) (Mover, bool) {
	row, ok := LatestHistory(table, domain.CategoryChange)
	if !ok {
		return Mover{}, false
	}
	var (
		mover Mover
		found bool
	)
	for _, symbol := range table.Symbols {
		v, ok := row.Values[symbol]
		if !ok {
			continue
		}
		if !found || v.GreaterThan(mover.Change24h) {
			mover = Mover{Symbol: symbol, Change24h: v, Row: row.Index}
			found = true
		}
	}
	return mover, found
}
